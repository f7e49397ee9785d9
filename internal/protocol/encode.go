package protocol

import (
	"fmt"
	"io"
)

// EncodeGetTrack builds the client request for a track by name.
func EncodeGetTrack(name string) []byte {
	buf := make([]byte, 0, 1+4+len(name))
	buf = append(buf, byte(OpGetTrack))
	buf = appendUint32(buf, uint32(len(name)))
	return append(buf, name...)
}

// EncodeSetRow builds a SET_ROW message. The layout is the same in both
// directions.
func EncodeSetRow(row uint32) []byte {
	buf := make([]byte, 0, FrameLen(OpSetRow))
	buf = append(buf, byte(OpSetRow))
	return appendUint32(buf, row)
}

func EncodeSetKey(trackID uint32, key Key) []byte {
	buf := make([]byte, 0, FrameLen(OpSetKey))
	buf = append(buf, byte(OpSetKey))
	buf = appendUint32(buf, trackID)
	buf = appendUint32(buf, key.Row)
	buf = appendFloat32(buf, key.Value)
	return append(buf, byte(key.Interpolation))
}

func EncodeDeleteKey(trackID, row uint32) []byte {
	buf := make([]byte, 0, FrameLen(OpDeleteKey))
	buf = append(buf, byte(OpDeleteKey))
	buf = appendUint32(buf, trackID)
	return appendUint32(buf, row)
}

func EncodePause(flag uint8) []byte {
	return []byte{byte(OpPause), flag}
}

func EncodeSaveTracks() []byte {
	return []byte{byte(OpSaveTracks)}
}

// Encode serializes any command value to its wire form.
func Encode(cmd Command) ([]byte, error) {
	switch c := cmd.(type) {
	case SetKey:
		return EncodeSetKey(c.TrackID, c.Key), nil
	case DeleteKey:
		return EncodeDeleteKey(c.TrackID, c.Row), nil
	case GetTrack:
		return EncodeGetTrack(c.Name), nil
	case SetRow:
		return EncodeSetRow(c.Row), nil
	case Pause:
		return EncodePause(c.Flag), nil
	case SaveTracks:
		return EncodeSaveTracks(), nil
	case Unknown:
		return []byte{byte(c.Op)}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedCmd, cmd)
	}
}

// EncodeAll concatenates the wire form of cmds in order.
func EncodeAll(cmds ...Command) ([]byte, error) {
	var out []byte
	for _, cmd := range cmds {
		b, err := Encode(cmd)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

// WriteCommand encodes cmd and writes it to w in a single Write call.
func WriteCommand(w io.Writer, cmd Command) error {
	b, err := Encode(cmd)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}
