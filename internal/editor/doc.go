// Package editor is a minimal controller used for integration tests and the
// editorctl demo. It assigns track ids in request order and streams commands,
// optionally fragmented, to one client per Conn.
package editor
