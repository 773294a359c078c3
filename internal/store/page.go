package store

const (
	DefaultPerPage = 15
	MaxPerPage     = 100
)

type Page struct {
	Number int
	Size   int
}

// NewPage clamps user supplied values into a usable window.
func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = DefaultPerPage
	}
	if size > MaxPerPage {
		size = MaxPerPage
	}
	return Page{Number: number, Size: size}
}

func (p Page) normalized() Page { return NewPage(p.Number, p.Size) }

func (p Page) Offset() int {
	p = p.normalized()
	return (p.Number - 1) * p.Size
}

func (p Page) Limit() int { return p.normalized().Size }

type PageResult[T any] struct {
	Items    []T `json:"data"`
	Total    int `json:"total"`
	Page     int `json:"current_page"`
	PerPage  int `json:"per_page"`
	LastPage int `json:"last_page"`
}

func newPageResult[T any](items []T, total int, p Page) PageResult[T] {
	p = p.normalized()
	if items == nil {
		items = []T{}
	}
	last := (total + p.Size - 1) / p.Size
	if last < 1 {
		last = 1
	}
	return PageResult[T]{Items: items, Total: total, Page: p.Number, PerPage: p.Size, LastPage: last}
}
