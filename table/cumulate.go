package table

// Cumulate finds the largest end >= start such that
// headerSize + Σ(sizes[start..end]) <= max, returning end and the
// actual pixel extent consumed. It always advances by at least one
// unit (consuming sizes[start] even if that alone exceeds max), so
// callers can't spin in a zero-progress loop when a single row/column
// is wider than a page. Grounded on original_source tab.c's pagination
// walk in tabi_render, which advances headers+body slices the same way.
func Cumulate(sizes []int, headerSize, start, max int) (end, consumed int) {
	if start >= len(sizes) {
		return start, 0
	}
	total := headerSize
	end = start
	for i := start; i < len(sizes); i++ {
		next := total + sizes[i]
		if next > max && i > start {
			break
		}
		total = next
		end = i
	}
	return end, total - headerSize
}
