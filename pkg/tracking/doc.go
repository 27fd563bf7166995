// Package tracking keeps the visit bookkeeping of a visitor and derives the
// read-only summary attached to leads.
package tracking
