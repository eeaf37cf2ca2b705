package movement

import "gonum.org/v1/gonum/stat"

// Window is a fixed-capacity ring buffer of scalar samples. Pushing past
// capacity evicts the oldest sample in O(1).
type Window struct {
	buf   []float64
	head  int
	count int
}

// NewWindow creates a window holding at most size samples.
func NewWindow(size int) *Window {
	if size < 1 {
		size = 1
	}
	return &Window{buf: make([]float64, size)}
}

// Push appends a sample, evicting the oldest if the window is full.
func (w *Window) Push(v float64) {
	w.buf[w.head] = v
	w.head = (w.head + 1) % len(w.buf)
	if w.count < len(w.buf) {
		w.count++
	}
}

// Len returns the number of samples currently held.
func (w *Window) Len() int {
	return w.count
}

// Last returns the most recent sample, or 0 if the window is empty.
func (w *Window) Last() float64 {
	if w.count == 0 {
		return 0
	}
	return w.buf[(w.head-1+len(w.buf))%len(w.buf)]
}

// Values returns the samples in insertion order (oldest first).
func (w *Window) Values() []float64 {
	out := make([]float64, w.count)
	start := (w.head - w.count + len(w.buf)) % len(w.buf)
	for i := 0; i < w.count; i++ {
		out[i] = w.buf[(start+i)%len(w.buf)]
	}
	return out
}

// Mean returns the arithmetic mean of the held samples, or 0 when empty.
func (w *Window) Mean() float64 {
	if w.count == 0 {
		return 0
	}
	return stat.Mean(w.Values(), nil)
}

// StdDev returns the sample standard deviation, or 0 with fewer than two
// samples.
func (w *Window) StdDev() float64 {
	if w.count < 2 {
		return 0
	}
	return stat.StdDev(w.Values(), nil)
}

// Min returns the smallest held sample, or 0 when empty.
func (w *Window) Min() float64 {
	if w.count == 0 {
		return 0
	}
	vals := w.Values()
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// Max returns the largest held sample, or 0 when empty.
func (w *Window) Max() float64 {
	if w.count == 0 {
		return 0
	}
	vals := w.Values()
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// Reset empties the window without reallocating.
func (w *Window) Reset() {
	w.head = 0
	w.count = 0
}
