// Package selection parses interactive exclusion expressions against an
// enumerated repository list and applies the resulting exclusions.
package selection
