// ABOUTME: Fixed-size ring buffer over the most recent TRIMP values.
// ABOUTME: Backs the trailing-window monotony and weekly load metrics.
package load

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// window keeps the last len(buf) values in insertion order.
type window struct {
	buf   []float64
	next  int
	count int
}

func newWindow(size int) *window {
	return &window{buf: make([]float64, size)}
}

func (w *window) push(v float64) {
	w.buf[w.next] = v
	w.next = (w.next + 1) % len(w.buf)
	if w.count < len(w.buf) {
		w.count++
	}
}

// full reports whether the window holds size values.
func (w *window) full() bool {
	return w.count == len(w.buf)
}

// values returns the buffered values oldest first.
func (w *window) values() []float64 {
	out := make([]float64, 0, w.count)
	start := (w.next - w.count + len(w.buf)) % len(w.buf)
	for i := 0; i < w.count; i++ {
		out = append(out, w.buf[(start+i)%len(w.buf)])
	}
	return out
}

func (w *window) sum() float64 {
	return floats.Sum(w.values())
}

// monotony is mean/stddev (sample stddev) of the window, 0 when every value is equal.
func (w *window) monotony() float64 {
	vals := w.values()
	if floats.Max(vals) == floats.Min(vals) {
		return 0
	}
	mean, std := stat.MeanStdDev(vals, nil)
	if std == 0 {
		return 0
	}
	return mean / std
}
