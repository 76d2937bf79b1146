package dataset

import "iter"

// Window is a contiguous range [Start, End) of record ordinals.
type Window struct {
	Start int
	End   int
}

// Len returns the number of records in the window.
func (w Window) Len() int { return w.End - w.Start }

// Windows splits the dataset into contiguous windows of at most size records.
// A size below one yields a single window covering the whole dataset.
func (d *Dataset) Windows(size int) iter.Seq[Window] {
	return func(yield func(Window) bool) {
		n := len(d.rows)
		if size < 1 {
			size = n
		}
		for start := 0; start < n; start += size {
			end := min(start+size, n)
			if !yield(Window{Start: start, End: end}) {
				return
			}
		}
	}
}
