// Package tracker owns the client side of a controller session.
//
// Ownership boundary:
// - session state (row, pause flag, requested tracks)
//
// - command dispatch onto that state
//
// - the polling Client facade and Dial
//
// Lifecycle order:
// - dial -> greet -> request tracks -> poll
//
// - poll may run before any track is requested.
//
// A Client is single-goroutine: the host's render loop calls Poll and reads
// Row/Paused between frames. Nothing here blocks longer than the configured
// poll timeout.
package tracker
