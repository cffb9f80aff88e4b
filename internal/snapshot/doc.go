// Package snapshot exports a whole storage tree to a single stream and
// imports it back into any storage.
//
// # Format
//
// A snapshot is a zstd-compressed sequence of CBOR records encoded with
// Core Deterministic Encoding (RFC 8949 section 4.2):
//
//	header   format name, version, creation time, source backend
//	folder   one per folder except the root, parents before children
//	file     one per file, carrying content and its SHA-256
//	end      folder and file counts
//
// Import checks every file's content against its recorded digest before
// the file is created, and fails if the end record is missing or its
// counts disagree with what was read.
package snapshot
