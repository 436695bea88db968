// Package storekey guards the shared key-value store against key injection.
//
// Session records and rate-limit windows live in one Redis keyspace and
// their keys embed externally influenced identifiers. Every key passes
// through the allow-list here before touching the store, so a crafted
// identifier cannot break out of its namespace or address foreign keys.
package storekey
