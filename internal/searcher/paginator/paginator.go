// Package paginator splits result slices into fixed-size pages.
package paginator

import (
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

// Paginate splits items into pages of size entries; the last page may be
// shorter. Pages share the backing array of items.
func Paginate[T any](items []T, size int) ([][]T, error) {
	if size < 1 {
		return nil, apperrors.InvalidArgumentf("page size %d must be positive", size)
	}
	pages := make([][]T, 0, len(items)/size+1)
	for lo := 0; lo < len(items); lo += size {
		hi := min(lo+size, len(items))
		pages = append(pages, items[lo:hi:hi])
	}
	return pages, nil
}

// Page returns page number page (1-based) of items and the total page
// count. A page past the end is empty.
func Page[T any](items []T, page, size int) ([]T, int, error) {
	if size < 1 {
		return nil, 0, apperrors.InvalidArgumentf("page size %d must be positive", size)
	}
	if page < 1 {
		return nil, 0, apperrors.InvalidArgumentf("page %d must be positive", page)
	}
	total := len(items) / size
	if len(items)%size != 0 {
		total++
	}
	if page > total {
		return []T{}, total, nil
	}
	lo := (page - 1) * size
	hi := min(lo+size, len(items))
	return items[lo:hi:hi], total, nil
}
