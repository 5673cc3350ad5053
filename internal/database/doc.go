// Package database persists conversion job history in SQLite: one row
// per terminal message, queryable newest-first and pruned on an
// interval.
package database
