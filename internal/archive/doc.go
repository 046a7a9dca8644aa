// Package archive recognizes and unpacks the archive formats decant handles.
//
// Format detection is content based: Classify reads a short byte prefix and
// matches it against known magic numbers, never the file extension. Fragment
// helpers recognize the multi-part naming conventions (name.7z.001,
// name.zip.001, name.part001.rar) and gather sibling parts from one
// directory. The Extractor dispatches an ArchiveUnit to the codec registered
// for its format, falling back to concatenating fragments when a codec cannot
// follow the parts on its own.
package archive
