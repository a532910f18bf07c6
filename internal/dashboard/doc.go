// Package dashboard is the only component permitted to talk to the
// external row store the operator uses to review and approve items. It
// exposes list_items, append_item, update_fields (optimistic concurrency
// on expected_state), and get_item behind a narrow RowStore interface,
// generalized from this system's Python predecessor's Google Sheets
// integration into a generic HTTP row store, the way this repository's
// daemon isolates its SQLite queue.Store behind a narrow interface
// consumed by workflow.Manager.
package dashboard
