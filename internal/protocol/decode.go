package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Decode parses one complete inbound command. frame must hold exactly the
// opcode byte plus PayloadLen(opcode) bytes.
func Decode(frame []byte) (Command, error) {
	if len(frame) == 0 {
		return nil, ErrEmptyFrame
	}
	d := NewDecoder(frame)
	b, _ := d.ReadByte()
	op := Opcode(b)

	cmd, err := decodePayload(op, d)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", op, err)
	}
	if d.Remaining() != 0 {
		return nil, fmt.Errorf("decode %s: %w (%d bytes)", op, ErrTrailingBytes, d.Remaining())
	}
	return cmd, nil
}

func decodePayload(op Opcode, d *Decoder) (Command, error) {
	switch op {
	case OpSetKey:
		trackID, err := d.ReadUint32()
		if err != nil {
			return nil, err
		}
		row, err := d.ReadUint32()
		if err != nil {
			return nil, err
		}
		value, err := d.ReadFloat32()
		if err != nil {
			return nil, err
		}
		interp, err := d.ReadByte()
		if err != nil {
			return nil, err
		}
		return SetKey{
			TrackID: trackID,
			Key: Key{
				Row:           row,
				Value:         value,
				Interpolation: InterpolationFromByte(interp),
			},
		}, nil
	case OpDeleteKey:
		trackID, err := d.ReadUint32()
		if err != nil {
			return nil, err
		}
		row, err := d.ReadUint32()
		if err != nil {
			return nil, err
		}
		return DeleteKey{TrackID: trackID, Row: row}, nil
	case OpSetRow:
		row, err := d.ReadUint32()
		if err != nil {
			return nil, err
		}
		return SetRow{Row: row}, nil
	case OpPause:
		flag, err := d.ReadByte()
		if err != nil {
			return nil, err
		}
		return Pause{Flag: flag}, nil
	case OpSaveTracks:
		return SaveTracks{}, nil
	default:
		return Unknown{Op: op}, nil
	}
}

// ReadRequest reads one client request (GET_TRACK or SET_ROW) from a
// blocking reader. The controller side uses it; the client never does.
func ReadRequest(r io.Reader) (Command, error) {
	var op [1]byte
	if _, err := io.ReadFull(r, op[:]); err != nil {
		return nil, err
	}
	switch Opcode(op[0]) {
	case OpGetTrack:
		var lenBuf [4]byte
		if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
			return nil, truncated(err)
		}
		n := binary.BigEndian.Uint32(lenBuf[:])
		if n > MaxTrackNameLen {
			return nil, fmt.Errorf("%w: %d bytes", ErrNameTooLong, n)
		}
		name := make([]byte, n)
		if _, err := io.ReadFull(r, name); err != nil {
			return nil, truncated(err)
		}
		return GetTrack{Name: string(name)}, nil
	case OpSetRow:
		var rowBuf [4]byte
		if _, err := io.ReadFull(r, rowBuf[:]); err != nil {
			return nil, truncated(err)
		}
		return SetRow{Row: binary.BigEndian.Uint32(rowBuf[:])}, nil
	default:
		return nil, fmt.Errorf("%w: opcode %d", ErrNotRequest, op[0])
	}
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncated
	}
	return err
}
