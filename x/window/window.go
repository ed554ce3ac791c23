package window

// Package window provides a fixed-capacity sample window for the
// engine's filter operations. The backing storage is an inline array:
// once a W is embedded in a runtime-state block there are no further
// allocations, and Push/Mean/Median/Min/Max never allocate.

// MaxLen bounds the configurable window length.
const MaxLen = 32

// W holds the N most recent int32 samples.
type W struct {
	buf [MaxLen]int32
	n   int   // configured capacity, 1..MaxLen
	cnt int   // samples held, saturates at n
	idx int   // next write slot
	sum int64 // running sum of held samples
}

// Reset clears the window and sets its capacity. n is pinned to
// [1, MaxLen].
func (w *W) Reset(n int) {
	if n < 1 {
		n = 1
	}
	if n > MaxLen {
		n = MaxLen
	}
	w.n = n
	w.cnt = 0
	w.idx = 0
	w.sum = 0
}

// Push inserts a sample, evicting the oldest once full.
func (w *W) Push(v int32) {
	if w.n == 0 {
		w.n = 1
	}
	if w.cnt == w.n {
		w.sum -= int64(w.buf[w.idx])
	} else {
		w.cnt++
	}
	w.buf[w.idx] = v
	w.sum += int64(v)
	w.idx++
	if w.idx == w.n {
		w.idx = 0
	}
}

// Count returns the number of samples currently held.
func (w *W) Count() int { return w.cnt }

// Mean returns the arithmetic mean of held samples, 0 when empty.
func (w *W) Mean() int32 {
	if w.cnt == 0 {
		return 0
	}
	return int32(w.sum / int64(w.cnt))
}

// Min returns the smallest held sample, 0 when empty.
func (w *W) Min() int32 {
	if w.cnt == 0 {
		return 0
	}
	m := w.buf[w.oldest()]
	for i := 0; i < w.cnt; i++ {
		if v := w.at(i); v < m {
			m = v
		}
	}
	return m
}

// Max returns the largest held sample, 0 when empty.
func (w *W) Max() int32 {
	if w.cnt == 0 {
		return 0
	}
	m := w.buf[w.oldest()]
	for i := 0; i < w.cnt; i++ {
		if v := w.at(i); v > m {
			m = v
		}
	}
	return m
}

// Median returns the middle held sample (lower-middle for an even
// count), 0 when empty. Sorting happens in a stack scratch array.
func (w *W) Median() int32 {
	if w.cnt == 0 {
		return 0
	}
	var scratch [MaxLen]int32
	for i := 0; i < w.cnt; i++ {
		scratch[i] = w.at(i)
	}
	// Insertion sort; windows are small.
	for i := 1; i < w.cnt; i++ {
		v := scratch[i]
		j := i - 1
		for j >= 0 && scratch[j] > v {
			scratch[j+1] = scratch[j]
			j--
		}
		scratch[j+1] = v
	}
	return scratch[(w.cnt-1)/2]
}

func (w *W) oldest() int {
	if w.cnt < w.n {
		return 0
	}
	return w.idx
}

func (w *W) at(i int) int32 {
	return w.buf[(w.oldest()+i)%w.n]
}
