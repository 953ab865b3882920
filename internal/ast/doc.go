// Package ast holds the arena-backed syntax tree of ownership scripts.
//
// Every node lives in a per-kind arena and is addressed by a 1-based ID;
// the zero ID of each kind means "absent". Accessors such as Exprs.Call
// return (payload, ok) and never panic on a kind mismatch.
package ast
