// Package migration applies versioned SQL schema migrations to a SQLite
// database. Migration files are embedded in the binary and named
// {version}_{description}.sql; versions are numeric and applied in ascending
// order exactly once, tracked in a schema_migrations table. Each migration
// runs inside its own transaction.
package migration
