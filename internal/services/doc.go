// Package services defines shared utilities consumed by the unpack pipeline,
// the ledger, and the service driver.
//
// Key responsibilities:
//   - Context helpers that stamp service names, work item identity keys, stage
//     names, and correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper so callers can decide
//     whether a failure abandons one archive, one work item, or the whole
//     service run.
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// (error handling, observability) stays uniform across the tool.
package services
