package market

import "gainboard/internal/domain/entities"

// Paginate slices one page out of a view using 1-indexed pages. An
// out-of-range page yields an empty slice, not an error.
func Paginate(view []*entities.Instrument, page, pageSize int) []*entities.Instrument {
	if page < 1 || pageSize <= 0 {
		return nil
	}

	start := (page - 1) * pageSize
	if start >= len(view) {
		return nil
	}

	end := start + pageSize
	if end > len(view) {
		end = len(view)
	}
	return view[start:end]
}

// PageItem is one entry of a pagination control: either a concrete page
// number or an ellipsis gap.
type PageItem struct {
	Number   int
	Ellipsis bool
}

func pageNum(n int) PageItem { return PageItem{Number: n} }

var ellipsis = PageItem{Ellipsis: true}

// PageNumbers lists the page buttons to display for a pagination control.
// Up to 5 pages are listed in full; beyond that the first and last pages
// are always present with a window around the current page and ellipsis
// gaps where pages are elided.
func PageNumbers(totalPages, currentPage int) []PageItem {
	const showPages = 5

	if totalPages <= showPages {
		pages := make([]PageItem, 0, totalPages)
		for i := 1; i <= totalPages; i++ {
			pages = append(pages, pageNum(i))
		}
		return pages
	}

	pages := []PageItem{pageNum(1)}

	if currentPage > 3 {
		pages = append(pages, ellipsis)
	}

	lo := currentPage - 1
	if lo < 2 {
		lo = 2
	}
	hi := currentPage + 1
	if hi > totalPages-1 {
		hi = totalPages - 1
	}
	for i := lo; i <= hi; i++ {
		pages = append(pages, pageNum(i))
	}

	if currentPage < totalPages-2 {
		pages = append(pages, ellipsis)
	}

	return append(pages, pageNum(totalPages))
}

// PageRange reports the 1-based positions of the first and last item shown
// on a page, for "Showing X - Y of Z" style labels. Both are 0 when the
// view is empty.
func PageRange(page, pageSize, total int) (start, end int) {
	if total == 0 || page < 1 || pageSize <= 0 {
		return 0, 0
	}

	start = (page-1)*pageSize + 1
	if start > total {
		return 0, 0
	}

	end = page * pageSize
	if end > total {
		end = total
	}
	return start, end
}
