// Package tracestore reads and writes keyed, compressed trace matrices.
//
// A store holds named datasets, each a rows × columns matrix of float64
// samples. The layout is a small little-endian container:
//
//	magic "CTRS" | version
//	repeated: key length (u16) | key | rows (u32) | cols (u32) |
//	          codec (u8) | payload length (u64) | xxhash64 (u64) | payload
//
// The payload is the row-major sample matrix compressed with the dataset's
// codec; the checksum covers the uncompressed bytes.
//
// Recordings keep raw fluorescence under the key "data" as a neurons ×
// samples matrix, which LoadTable rebins into a trace.Table.
package tracestore
