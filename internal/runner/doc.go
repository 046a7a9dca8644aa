// Package runner drives decant's per-service loop.
//
// For every selected service a run checks the service directories, opens the
// service ledger, takes the staging lock, wipes staging, processes each
// pending work item in turn, and finishes with a cleanup pass. Work item
// failures are logged and the loop moves on; a ledger or preflight failure
// ends that service's run but never the runs of other services.
package runner
