package protocol

import "errors"

var (
	ErrTruncated      = errors.New("protocol: truncated data")
	ErrTrailingBytes  = errors.New("protocol: trailing bytes after command")
	ErrEmptyFrame     = errors.New("protocol: empty frame")
	ErrNameTooLong    = errors.New("protocol: track name too long")
	ErrNotRequest     = errors.New("protocol: opcode is not a client request")
	ErrUnsupportedCmd = errors.New("protocol: unsupported command")
)
