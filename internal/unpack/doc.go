// Package unpack drives the per-item reorganization workflow.
//
// An Engine turns each top-level source entry (a WorkItem) into a canonical
// target layout:
//
//   - member files are grouped into archive units by base name
//   - every unit is extracted (or copied, when it is not an archive) into the
//     item's outbound staging directory
//   - nested archives exposed by extraction are moved to inbound staging and
//     extracted again until none remain
//   - the outbound tree is relocated under the target root and one history
//     record is written
//
// The Ledger is reached only through the History and MetadataSource
// interfaces. Unit failures are logged and skipped; relocation failures abort
// the item.
package unpack
