// Package chunkreader provides scripted readers that simulate a non-blocking
// transport delivering bytes in arbitrary fragments.
package chunkreader

import (
	"io"
	"sync"
)

// Step is one scripted read outcome. An empty B returns (0, Err).
type Step struct {
	B   []byte
	Err error
}

// Reader replays steps. A read never crosses a step boundary, so a step
// larger than the caller's buffer is delivered across several reads.
type Reader struct {
	mu    sync.Mutex
	steps []Step
	step  int
	off   int
	// Idle is returned once the script is exhausted.
	Idle error
}

func New(steps ...Step) *Reader {
	return &Reader{steps: steps, Idle: io.EOF}
}

// Chunks scripts data split into fixed-size pieces with an idle step
// (returning idle) between pieces.
func Chunks(data []byte, size int, idle error) *Reader {
	if size <= 0 {
		size = len(data)
	}
	steps := make([]Step, 0, 2*(len(data)/max(size, 1)+1))
	for off := 0; off < len(data); off += size {
		end := min(off+size, len(data))
		steps = append(steps, Step{B: data[off:end]})
		if idle != nil {
			steps = append(steps, Step{Err: idle})
		}
	}
	r := New(steps...)
	if idle != nil {
		r.Idle = idle
	}
	return r
}

// Partition scripts data split at the given cut sizes; leftover bytes form
// the final step.
func Partition(data []byte, sizes ...int) *Reader {
	steps := make([]Step, 0, len(sizes)+1)
	off := 0
	for _, n := range sizes {
		end := min(off+n, len(data))
		steps = append(steps, Step{B: data[off:end]})
		off = end
	}
	if off < len(data) {
		steps = append(steps, Step{B: data[off:]})
	}
	return New(steps...)
}

// Push appends more scripted steps.
func (r *Reader) Push(steps ...Step) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, steps...)
}

// Drained reports whether every scripted byte has been read.
func (r *Reader) Drained() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.step >= len(r.steps)
}

func (r *Reader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for {
		if r.step >= len(r.steps) {
			return 0, r.Idle
		}
		st := r.steps[r.step]
		if len(st.B) == 0 {
			r.step++
			r.off = 0
			return 0, st.Err
		}
		if r.off >= len(st.B) {
			r.step++
			r.off = 0
			continue
		}
		if len(p) == 0 {
			return 0, nil
		}
		n := copy(p, st.B[r.off:])
		r.off += n
		if r.off >= len(st.B) {
			r.step++
			r.off = 0
			return n, st.Err
		}
		return n, nil
	}
}
