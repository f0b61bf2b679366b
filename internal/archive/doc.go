// Package archive extracts cached auxiliary tool archives (zip or tar.gz)
// in place, into the directory that holds the archive itself.
package archive
