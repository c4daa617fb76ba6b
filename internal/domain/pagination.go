package domain

// Page is a page-number window; Number starts at 1.
type Page struct {
	Number int
	Size   int
}

func (p Page) Offset() int {
	if p.Number <= 1 {
		return 0
	}
	return (p.Number - 1) * p.Size
}

// PageResult carries one page of a counted listing.
type PageResult[T any] struct {
	Items    []T
	Total    int64
	Page     int
	PageSize int
}

func (r PageResult[T]) HasNext() bool {
	return int64(r.Page)*int64(r.PageSize) < r.Total
}
