package ta

import "gonum.org/v1/gonum/stat"

// Window is a bounded FIFO of observations. Pushing onto a full window drops
// the oldest value.
type Window struct {
	capacity int
	values   []float64
}

func NewWindow(capacity int) *Window {
	if capacity <= 0 {
		capacity = 1
	}
	return &Window{capacity: capacity, values: make([]float64, 0, capacity)}
}

func (w *Window) Push(v float64) {
	if len(w.values) == w.capacity {
		copy(w.values, w.values[1:])
		w.values[len(w.values)-1] = v
		return
	}
	w.values = append(w.values, v)
}

// Values returns the window contents oldest first. The slice is owned by the
// window and must not be modified.
func (w *Window) Values() []float64 {
	return w.values
}

func (w *Window) Len() int {
	return len(w.values)
}

func (w *Window) Cap() int {
	return w.capacity
}

func (w *Window) Last() float64 {
	if len(w.values) == 0 {
		return 0
	}
	return w.values[len(w.values)-1]
}

func (w *Window) Mean() float64 {
	if len(w.values) == 0 {
		return 0
	}
	return stat.Mean(w.values, nil)
}
