// Package catalog is the resource template library: per service type code
// templates, typed default parameters, required variables and data
// sources, plus the controlled-vocabulary remaps applied before
// rendering. The library is immutable once loaded and safe for
// concurrent use.
package catalog
