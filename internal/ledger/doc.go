// Package ledger persists what decant has already processed.
//
// Each service owns one SQLite database holding two tables: unzip_history,
// where a row is written only after an item's output has been fully relocated,
// and pieces, which supplies per-item titles and archive passwords. Migrations
// are embedded and applied on Open; writes retry briefly while the database is
// busy.
package ledger
