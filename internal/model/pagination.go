package model

const (
	DefaultPageSize = 8
	MaxPageSize     = 50
)

// Page is a 1-based page request
type Page struct {
	Number int
	Size   int
}

// NewPage clamps number and size to valid values.
func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

func (p Page) Limit() int {
	if p.Size < 1 {
		return DefaultPageSize
	}
	return p.Size
}

func (p Page) Offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Limit()
}

// InRange reports whether the page exists for total items. Page 1 always exists.
func (p Page) InRange(total int) bool {
	if p.Number <= 1 {
		return true
	}
	return p.Offset() < total
}

// HasNext reports whether another page follows this one.
func (p Page) HasNext(total int) bool {
	return p.Offset()+p.Limit() < total
}

// Paginated is the list envelope returned by list endpoints.
type Paginated[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}
