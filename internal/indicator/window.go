package indicator

import (
	"github.com/rxtech-lab/mark-trading/pkg/errors"
)

// PriceWindow is a bounded FIFO buffer of the most recent close prices.
// Capacity is fixed at construction to the longest lookback any
// consumer needs, so pushing the next candle is O(1) and the window
// never grows past that bound.
type PriceWindow struct {
	prices []float64
	start  int
	count  int
}

// NewPriceWindow creates a window holding at most capacity prices.
func NewPriceWindow(capacity int) (*PriceWindow, error) {
	if capacity < 1 {
		return nil, errors.Newf(errors.ErrCodeWindowCapacity, "window capacity must be at least 1, got %d", capacity)
	}
	return &PriceWindow{
		prices: make([]float64, capacity),
	}, nil
}

// Push appends a price, evicting the oldest one once the window is full.
func (w *PriceWindow) Push(price float64) {
	if w.count < len(w.prices) {
		w.prices[(w.start+w.count)%len(w.prices)] = price
		w.count++
		return
	}
	w.prices[w.start] = price
	w.start = (w.start + 1) % len(w.prices)
}

// Len returns the number of prices currently held.
func (w *PriceWindow) Len() int {
	return w.count
}

// Cap returns the fixed capacity of the window.
func (w *PriceWindow) Cap() int {
	return len(w.prices)
}

// Last returns the most recently pushed price.
func (w *PriceWindow) Last() (float64, error) {
	if w.count == 0 {
		return 0, errors.NewInsufficientDataError(1, 0, "", "window is empty")
	}
	return w.at(w.count - 1), nil
}

// Snapshot returns a copy of the last n prices in chronological order.
// It fails with an insufficient data error until the window has seen at
// least n prices.
func (w *PriceWindow) Snapshot(n int) ([]float64, error) {
	if n < 1 {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "snapshot size must be at least 1, got %d", n)
	}
	if n > w.count {
		return nil, errors.NewInsufficientDataErrorf(n, w.count, "", "window holds %d of %d required prices", w.count, n)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = w.at(w.count - n + i)
	}
	return out, nil
}

// SnapshotExcludingLast returns a copy of the n prices immediately
// before the newest one, in chronological order. The window must hold
// at least n+1 prices, since the newest is skipped.
func (w *PriceWindow) SnapshotExcludingLast(n int) ([]float64, error) {
	if n < 1 {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "snapshot size must be at least 1, got %d", n)
	}
	if n+1 > w.count {
		return nil, errors.NewInsufficientDataErrorf(n+1, w.count, "", "window holds %d of %d required prices", w.count, n+1)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = w.at(w.count - 1 - n + i)
	}
	return out, nil
}

// Values returns a copy of every price currently held, oldest first.
func (w *PriceWindow) Values() []float64 {
	out := make([]float64, w.count)
	for i := 0; i < w.count; i++ {
		out[i] = w.at(i)
	}
	return out
}

func (w *PriceWindow) at(i int) float64 {
	return w.prices[(w.start+i)%len(w.prices)]
}
