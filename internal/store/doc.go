// Package store persists users and learning resources in SQLite.
//
// Two tables: users holds one row per messaging-platform user with their
// committed topics as a JSON array (overwritten on every commit), resources
// holds the admin-managed (subject, kind, title, link) catalog. Resource
// kinds are a closed enum validated in Go; the SQL CHECK constraint is only
// a backstop.
package store
