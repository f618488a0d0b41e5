package grid

// GetGridCoords converts a linear cell index into column and row for a grid
// that is cols cells wide.
func GetGridCoords(index, cols int) (x, y int) {
	return index % cols, index / cols
}

// Index converts a column and row into a linear cell index. Both coordinates
// wrap, including negative ones, so the result is always in range.
func Index(x, y, cols, rows int) int {
	return wrap(y, rows)*cols + wrap(x, cols)
}

func wrap(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}
