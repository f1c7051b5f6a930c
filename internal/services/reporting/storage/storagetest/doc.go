// Package storagetest provides a small, deliberately messy field-sales
// dataset and helpers that load it into a throwaway SQLite database.
//
// The dataset exercises every reconciliation path: salesman codes written
// several ways, fields naming two salesmen, duplicate customers and clinics,
// prefixed accounting ids and products only recognisable by fuzzy match.
package storagetest
