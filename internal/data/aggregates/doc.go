// Package aggregates implements the domain aggregate contracts on gorm.
//
// Aggregates compose the table-level repos in internal/data/repos and own
// the transaction boundary of every write, so callers never see a partially
// applied cart change.
package aggregates
