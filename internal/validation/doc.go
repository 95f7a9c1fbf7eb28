// Package validation checks an architecture against declarative
// connection rules and a fixed set of structural checks. Validation is a
// pure function of the graph and the loaded rules; findings come back in
// a deterministic order.
package validation
