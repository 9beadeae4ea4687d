// Package registry is the name to adapter resolution table.
//
// Adapters are registered explicitly at startup; lookups are exact and
// case-sensitive. The registry contains no generation logic.
package registry
