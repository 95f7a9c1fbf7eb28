// Package architecture holds the cloud architecture graph: components,
// the directed connections between them, and the validation findings
// recorded against the graph. Mutations keep connections consistent with
// the component set (removal cascades) and never reach outside the graph.
package architecture
