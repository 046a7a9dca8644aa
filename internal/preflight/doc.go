// Package preflight provides readiness checks for the filesystem paths a
// service depends on.
//
// The runner calls RunService before opening a service's ledger. If any check
// fails the service is skipped for this run, so an unmounted source or target
// volume never leaves half-relocated items behind. The CLI "config validate"
// command prints the same results.
package preflight
