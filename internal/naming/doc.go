// Package naming derives identity keys and target folder names for work items.
package naming
