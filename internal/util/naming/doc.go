// Package naming provides consistent naming for generated resources.
//
// Display names chosen by users are turned into Terraform and Mermaid safe
// identifiers with [Identifier]; an [Allocator] hands out collision-free
// identifiers within one synthesis pass. Resources created by topology
// expansion and remote stacks follow fixed patterns derived from their
// parent's display name or the session id.
package naming
