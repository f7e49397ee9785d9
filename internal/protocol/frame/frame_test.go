package frame

import (
	"bytes"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/danmuck/synctrack/internal/protocol"
	"github.com/danmuck/synctrack/internal/testutil/chunkreader"
	"github.com/danmuck/synctrack/internal/testutil/testlog"
)

type collector struct {
	frames [][]byte
}

func (c *collector) HandleFrame(frame []byte) error {
	c.frames = append(c.frames, bytes.Clone(frame))
	return nil
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

// drive steps r until src is drained and the machine is back at a header.
func drive(t *testing.T, r *Reassembler, src *chunkreader.Reader, h Handler) {
	t.Helper()
	for i := 0; i < 10_000; i++ {
		if src.Drained() && r.State() == AwaitingHeader {
			return
		}
		if _, err := r.Step(src, h); err != nil && !errors.Is(err, io.EOF) {
			t.Fatalf("step: %v", err)
		}
	}
	t.Fatalf("reassembler did not settle: state=%s buffered=%d", r.State(), r.Buffered())
}

func setKeyWire() []byte {
	return []byte{0, 0, 0, 0, 1, 0, 0, 0, 10, 0x41, 0x20, 0x00, 0x00, 2}
}

func TestSingleChunkDispatchesOnce(t *testing.T) {
	testlog.Start(t)
	wire := setKeyWire()
	r := New()
	c := &collector{}
	drive(t, r, chunkreader.New(chunkreader.Step{B: wire}), c)

	if len(c.frames) != 1 {
		t.Fatalf("expected 1 dispatch, got %d", len(c.frames))
	}
	if !bytes.Equal(c.frames[0], wire) {
		t.Fatalf("frame mismatch: got=%v want=%v", c.frames[0], wire)
	}
	if r.Buffered() != 0 || r.State() != AwaitingHeader {
		t.Fatalf("expected reset after dispatch, state=%s buffered=%d", r.State(), r.Buffered())
	}
}

func TestEveryPartitionMatchesSingleChunk(t *testing.T) {
	testlog.Start(t)
	wire := setKeyWire()
	cuts := len(wire) - 1
	for mask := 0; mask < 1<<cuts; mask++ {
		var sizes []int
		last := 0
		for i := 0; i < cuts; i++ {
			if mask&(1<<i) != 0 {
				sizes = append(sizes, i+1-last)
				last = i + 1
			}
		}
		r := New()
		c := &collector{}
		drive(t, r, chunkreader.Partition(wire, sizes...), c)
		if len(c.frames) != 1 || !bytes.Equal(c.frames[0], wire) {
			t.Fatalf("partition %v: frames=%v", sizes, c.frames)
		}
	}
}

func TestOneByteReadsWithWouldBlockBetween(t *testing.T) {
	testlog.Start(t)
	wire := setKeyWire()
	r := New()
	c := &collector{}
	src := chunkreader.Chunks(wire, 1, ErrWouldBlock)

	prevRemaining := -1
	steps := 0
	for !src.Drained() {
		steps++
		dispatched, err := r.Step(src, c)
		if err != nil {
			t.Fatalf("step %d: %v", steps, err)
		}
		if r.Buffered() > protocol.FrameLen(protocol.OpSetKey) {
			t.Fatalf("buffer overran frame: %d", r.Buffered())
		}
		if r.State() == AwaitingPayload {
			if prevRemaining != -1 && r.Remaining() > prevRemaining {
				t.Fatalf("remaining grew: %d -> %d", prevRemaining, r.Remaining())
			}
			prevRemaining = r.Remaining()
		}
		if dispatched && len(c.frames) != 1 {
			t.Fatalf("unexpected dispatch count %d", len(c.frames))
		}
	}
	if len(c.frames) != 1 || !bytes.Equal(c.frames[0], wire) {
		t.Fatalf("expected exactly one identical dispatch, got %v", c.frames)
	}
	if steps != 2*len(wire) {
		t.Fatalf("expected %d steps, got %d", 2*len(wire), steps)
	}
}

func TestConcatenatedCommandsDispatchInOrder(t *testing.T) {
	testlog.Start(t)
	first := protocol.EncodeSetRow(5)
	second := protocol.EncodePause(1)
	wire := append(append([]byte{}, first...), second...)

	r := New()
	c := &collector{}
	drive(t, r, chunkreader.New(chunkreader.Step{B: wire}), c)

	if len(c.frames) != 2 {
		t.Fatalf("expected 2 dispatches, got %d", len(c.frames))
	}
	if !bytes.Equal(c.frames[0], first) || !bytes.Equal(c.frames[1], second) {
		t.Fatalf("dispatch order mismatch: %v", c.frames)
	}
}

func TestZeroPayloadDispatchesOnHeaderStep(t *testing.T) {
	testlog.Start(t)
	for _, op := range []byte{byte(protocol.OpSaveTracks), byte(protocol.OpGetTrack), 0x42} {
		r := New()
		c := &collector{}
		dispatched, err := r.Step(bytes.NewReader([]byte{op}), c)
		if err != nil {
			t.Fatalf("opcode %d: %v", op, err)
		}
		if !dispatched || len(c.frames) != 1 || !bytes.Equal(c.frames[0], []byte{op}) {
			t.Fatalf("opcode %d: dispatched=%v frames=%v", op, dispatched, c.frames)
		}
	}
}

func TestWouldBlockIsNotAnError(t *testing.T) {
	testlog.Start(t)
	for _, blockErr := range []error{ErrWouldBlock, os.ErrDeadlineExceeded, timeoutErr{}, nil} {
		r := New()
		c := &collector{}
		src := chunkreader.New(chunkreader.Step{Err: blockErr})
		dispatched, err := r.Step(src, c)
		if err != nil || dispatched {
			t.Fatalf("%v: dispatched=%v err=%v", blockErr, dispatched, err)
		}
		if r.State() != AwaitingHeader || r.Buffered() != 0 {
			t.Fatalf("%v: unexpected progress state=%s", blockErr, r.State())
		}
	}
}

func TestPayloadWouldBlockKeepsState(t *testing.T) {
	testlog.Start(t)
	wire := protocol.EncodeDeleteKey(7, 8)
	src := chunkreader.New(
		chunkreader.Step{B: wire[:3]},
		chunkreader.Step{Err: timeoutErr{}},
	)
	src.Idle = ErrWouldBlock
	r := New()
	c := &collector{}

	for i := 0; i < 4; i++ {
		if _, err := r.Step(src, c); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if r.State() != AwaitingPayload || r.Remaining() != protocol.DeleteKeyPayloadLen-2 {
		t.Fatalf("unexpected state=%s remaining=%d", r.State(), r.Remaining())
	}
	src.Push(chunkreader.Step{B: wire[3:]})
	if dispatched, err := r.Step(src, c); err != nil || !dispatched {
		t.Fatalf("final step: dispatched=%v err=%v", dispatched, err)
	}
	if len(c.frames) != 1 || !bytes.Equal(c.frames[0], wire) {
		t.Fatalf("frame mismatch: %v", c.frames)
	}
}

func TestEOFMidPayloadIsSurfacedAndStateKept(t *testing.T) {
	testlog.Start(t)
	wire := protocol.EncodeSetRow(99)
	src := chunkreader.New(chunkreader.Step{B: wire[:2], Err: io.EOF})
	r := New()
	c := &collector{}

	if _, err := r.Step(src, c); err != nil {
		t.Fatalf("header step: %v", err)
	}
	_, err := r.Step(src, c)
	if !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
	if r.State() != AwaitingPayload || r.Buffered() != 2 || r.Remaining() != 3 {
		t.Fatalf("state lost: state=%s buffered=%d remaining=%d", r.State(), r.Buffered(), r.Remaining())
	}
}

func TestHandlerErrorResetsMachine(t *testing.T) {
	testlog.Start(t)
	boom := errors.New("boom")
	r := New()
	dispatched, err := r.Step(bytes.NewReader(protocol.EncodeSaveTracks()), HandlerFunc(func([]byte) error {
		return boom
	}))
	if !dispatched || !errors.Is(err, boom) {
		t.Fatalf("dispatched=%v err=%v", dispatched, err)
	}
	if r.State() != AwaitingHeader || r.Buffered() != 0 {
		t.Fatalf("expected reset, state=%s", r.State())
	}
}

func TestWithLengthsOverridesTable(t *testing.T) {
	testlog.Start(t)
	r := New(WithLengths(func(op protocol.Opcode) int {
		if op == 0x09 {
			return 2
		}
		return protocol.PayloadLen(op)
	}))
	c := &collector{}
	drive(t, r, chunkreader.New(chunkreader.Step{B: []byte{0x09, 0xaa, 0xbb, 5}}), c)
	if len(c.frames) != 2 || !bytes.Equal(c.frames[0], []byte{0x09, 0xaa, 0xbb}) || !bytes.Equal(c.frames[1], []byte{5}) {
		t.Fatalf("unexpected frames: %v", c.frames)
	}
}
