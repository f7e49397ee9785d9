package protocol

// Handshake greetings. The controller reply is exactly len(ServerGreeting) bytes.
const (
	ClientGreeting = "hello, synctracker!"
	ServerGreeting = "hello, demo!"
)

// Fixed payload sizes, excluding the opcode byte.
const (
	SetKeyPayloadLen     = 4 + 4 + 4 + 1
	DeleteKeyPayloadLen  = 4 + 4
	SetRowPayloadLen     = 4
	PausePayloadLen      = 1
	SaveTracksPayloadLen = 0
)

// MaxTrackNameLen bounds GET_TRACK names read by ReadRequest.
const MaxTrackNameLen = 64 * 1024

// payloadLengths is the inbound command table. Opcodes missing here are
// consumed as zero-payload commands and decode to Unknown.
var payloadLengths = map[Opcode]int{
	OpSetKey:     SetKeyPayloadLen,
	OpDeleteKey:  DeleteKeyPayloadLen,
	OpSetRow:     SetRowPayloadLen,
	OpPause:      PausePayloadLen,
	OpSaveTracks: SaveTracksPayloadLen,
}

// PayloadLen returns the fixed payload size for an inbound opcode.
func PayloadLen(op Opcode) int {
	return payloadLengths[op]
}

// Known reports whether op has an inbound table entry.
func Known(op Opcode) bool {
	_, ok := payloadLengths[op]
	return ok
}

// FrameLen is the total wire size of an inbound command, opcode included.
func FrameLen(op Opcode) int {
	return 1 + PayloadLen(op)
}
