// Package migration applies versioned SQL files to a SQLite database.
//
// Files are read from an fs.FS (usually an embed.FS) and must be named
// {version}_{description}.sql, e.g. "001_initial_schema.sql". Each file runs in
// its own transaction and is recorded in the schema_migrations table, so a
// database is only ever migrated forward once per version.
package migration
