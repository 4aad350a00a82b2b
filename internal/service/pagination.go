package service

const (
	defaultPageSize = 10
	maxPageSize     = 100
	maxPageNumber   = 100000
)

// Page describes a requested page. Zero values mean "first page, default size".
type Page struct {
	Number int
	Size   int
}

func (p Page) normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Number > maxPageNumber {
		p.Number = maxPageNumber
	}
	if p.Size < 1 {
		p.Size = defaultPageSize
	}
	if p.Size > maxPageSize {
		p.Size = maxPageSize
	}
	return p
}

func (p Page) offset() int {
	return (p.Number - 1) * p.Size
}

// TotalPages returns how many pages of size hold total items.
func TotalPages(total, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return (total + size - 1) / size
}
