// Package sqlstore implements the repository ports on database/sql. The
// queries are shared by the PostgreSQL and SQLite backends: placeholders are
// numbered and appear in ascending order so that both drivers bind them
// positionally, and upserts use ON CONFLICT which both dialects accept.
package sqlstore
