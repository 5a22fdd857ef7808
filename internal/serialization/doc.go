// Package serialization stores network state (membrane potentials and any
// other named tensors) in the .snn checkpoint format.
//
// File layout (little-endian):
//
//	0x00  magic "SNNS"
//	0x04  format version (uint32)
//	0x08  flags (uint32)
//	0x0C  header size (uint64)
//	0x14  SHA-256 of the data section (32 bytes)
//	0x34  JSON header
//	....  zero padding to a 64-byte boundary
//	....  tensor data, in header order
//
// Tensors are written in sorted name order so identical states produce
// identical files apart from the creation time.
package serialization
