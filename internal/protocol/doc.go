// Package protocol owns the sync-tracker wire contract.
//
// Ownership boundary:
// - opcodes and the opcode -> payload length table
// - typed command values and the Interpolation/Key data model
// - fixed-width big-endian encoders and the decode cursor
//
// Every inbound command is a 1-byte opcode followed by a fixed-size payload
// whose length is determined by the opcode alone. Outbound GET_TRACK is the
// only variable-length message and is only ever written by the client.
//
// Nothing in this package performs I/O on a live connection except
// ReadRequest, which the controller side uses on a blocking reader.
package protocol
