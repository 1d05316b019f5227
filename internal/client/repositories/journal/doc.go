// Package journal stores receipts of completed uploads and name links in
// the local SQLite database.
package journal
