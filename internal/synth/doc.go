// Package synth turns an architecture graph into a Terraform bundle.
//
// Synthesis runs in a fixed order over a copy of the graph:
//
//  1. Expand: a VCN pulls in the gateways, route tables, security lists
//     and subnets it is missing.
//  2. Name: every component gets a collision-free identifier.
//  3. Resolve: required variables a sibling component can satisfy are
//     replaced by references to that sibling.
//  4. Render: each component's template runs over its normalized
//     parameters.
//  5. Assemble: the bootstrap, variables, resources and example-values
//     files are formatted and returned as a Bundle.
//
// The output is a pure function of the input graph and the template
// library.
package synth
