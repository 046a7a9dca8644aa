// Package staging manages the per-service scratch directories used while
// unpacking. An Area is wiped at the start of every run and guarded by a
// gofrs/flock lock file so two runs never share scratch space.
package staging
