package paging

var DEFAULT_PAGE_SIZES = []int{10, 20, 30, 40, 50}

// PageCount is the number of pages needed to show total rows, 0 for no rows.
func PageCount(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// Clamp keeps index*size inside [0, total).
// An empty set always clamps to the first page.
func Clamp(index, total, size int) int {
	if index < 0 {
		return 0
	}
	count := PageCount(total, size)
	if count == 0 {
		return 0
	}
	if index >= count {
		return count - 1
	}
	return index
}

// Window is the half-open row range [Start, End) shown by one page.
type Window struct {
	Start int
	End   int
}

func (w Window) Len() int { return w.End - w.Start }

func PageWindow(index, total, size int) Window {
	if size <= 0 || total <= 0 || index < 0 {
		return Window{}
	}
	start := index * size
	if start >= total {
		return Window{total, total}
	}
	return Window{start, min(start+size, total)}
}

// Slice returns the page at index without copying the backing array.
func Slice[T any](items []T, index, size int) []T {
	w := PageWindow(index, len(items), size)
	return items[w.Start:w.End]
}

// Chunk splits items into consecutive pages of at most size items.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		return [][]T{items}
	}
	chunks := [][]T{}
	for i := 0; i < len(items); i += size {
		chunks = append(chunks, items[i:min(i+size, len(items))])
	}
	return chunks
}

// Reanchor returns the page index that keeps the first row of the
// current page visible after switching from old_size to new_size rows per page.
func Reanchor(index, old_size, new_size int) int {
	if new_size <= 0 || old_size <= 0 || index <= 0 {
		return 0
	}
	return (index * old_size) / new_size
}
