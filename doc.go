// Package save reads and writes the compressed container format used by
// Barotrauma-style .save files.
//
// An archive is a gzip stream of length-prefixed members:
//
//	Member := NameLen:u32 NameUTF16LE[NameLen] BodyLen:u32 Body[BodyLen]
//
// with all integers little-endian. The format is strictly forward-sequential:
// there is no table of contents and no random access. Reader walks members
// one at a time, Writer and Pack produce archives, and List/Extract implement
// the tool-level operations on top of them.
package save
