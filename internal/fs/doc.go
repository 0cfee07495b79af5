// Package fs provides filesystem abstractions for testability and fault injection.
//
// The package defines two key interfaces:
//
//   - [File]: an open file with positioned reads, writes and Stat
//   - [FileSystem]: the open, rename, remove and mkdir operations used by the
//     file store and the disk block cache
//
// # Implementations
//
//   - [LocalFS]: Production implementation using standard os package
//   - [FaultyFS]: Test utility for fault injection (failed opens, failed or
//     short reads, failed writes)
//
// # Usage
//
// Production code should use fs.Default (which is [LocalFS]):
//
//	f, err := fs.Open(fs.Default, path)
//
// Tests can inject [FaultyFS] to simulate failures:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule(".pfb", fs.Fault{FailReadsFrom: 1024, FailAfterBytes: -1})
//	// inject ffs into component under test
//
// Operations take no context.Context. Local reads are not interruptible at
// the syscall level; blobstore.Blob carries the context for remote stores.
package fs
