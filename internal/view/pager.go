package view

// DefaultPageSize is the directory page size.
const DefaultPageSize = 8

// Pager is the pagination cursor over an in-memory list: a 1-based page,
// a fixed page size and the list length. A Size of zero or less means
// DefaultPageSize, so the zero Pager is an empty list on page 1.
type Pager struct {
	Page  int
	Size  int
	Total int
}

// NewPager builds a pager with page clamped into range.
func NewPager(total, size, page int) Pager {
	if size <= 0 {
		size = DefaultPageSize
	}
	if total < 0 {
		total = 0
	}
	p := Pager{Size: size, Total: total}
	p.Page = p.Clamp(page)
	return p
}

// TotalPages is ceil(Total / Size); zero for an empty list.
func (p Pager) TotalPages() int {
	if p.Total <= 0 {
		return 0
	}
	size := p.size()
	return (p.Total + size - 1) / size
}

// Clamp keeps page within [1, TotalPages]. An empty list stays on page 1.
func (p Pager) Clamp(page int) int {
	if last := p.TotalPages(); page > last {
		page = last
	}
	if page < 1 {
		page = 1
	}
	return page
}

// First is the index of the first item on the page.
func (p Pager) First() int {
	return max(0, min((p.page()-1)*p.size(), p.Total))
}

// Last is the index one past the final item on the page.
func (p Pager) Last() int {
	return max(0, min(p.page()*p.size(), p.Total))
}

// HasPrev is false on page 1.
func (p Pager) HasPrev() bool { return p.Page > 1 }

// HasNext is false on the last page.
func (p Pager) HasNext() bool { return p.Page < p.TotalPages() }

// Pages lists the page numbers 1..TotalPages.
func (p Pager) Pages() []int {
	pages := make([]int, p.TotalPages())
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}

func (p Pager) size() int {
	if p.Size <= 0 {
		return DefaultPageSize
	}
	return p.Size
}

func (p Pager) page() int {
	return max(p.Page, 1)
}

// PageOf returns the slice of items shown on p's page.
func PageOf[T any](items []T, p Pager) []T {
	return items[p.First():p.Last()]
}
