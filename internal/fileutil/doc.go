// Package fileutil holds the filesystem primitives used by the unpack
// pipeline: verified copies, chunked fragment merging, authoritative moves
// that replace their destination, and recursive file listing.
package fileutil
