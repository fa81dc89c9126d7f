package paging

const (
	DefaultSize = 10
	MaxSize     = 2000
)

// Order is one sort criterion of a Pageable.
type Order struct {
	Property string
	Desc     bool
}

// Pageable is a zero-based page request.
type Pageable struct {
	Page int
	Size int
	Sort []Order
}

// Of returns a Pageable clamped to sane bounds.
func Of(page, size int, sort ...Order) Pageable {
	if page < 0 {
		page = 0
	}
	if size < 1 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}
	return Pageable{Page: page, Size: size, Sort: sort}
}

func (p Pageable) Offset() int {
	return p.Page * p.Size
}

// Page is one slice of a larger result set.
type Page[T any] struct {
	Content       []T
	TotalElements int64
	Number        int
	Size          int
}

func NewPage[T any](content []T, pageable Pageable, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}
	return Page[T]{
		Content:       content,
		TotalElements: total,
		Number:        pageable.Page,
		Size:          pageable.Size,
	}
}

func (p Page[T]) TotalPages() int {
	if p.Size <= 0 {
		return 1
	}
	return int((p.TotalElements + int64(p.Size) - 1) / int64(p.Size))
}

func (p Page[T]) IsFirst() bool {
	return p.Number == 0
}

func (p Page[T]) IsLast() bool {
	return p.Number+1 >= p.TotalPages()
}

// Map converts the content of a page, keeping its metadata.
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := make([]U, 0, len(p.Content))
	for _, item := range p.Content {
		out = append(out, fn(item))
	}
	return Page[U]{
		Content:       out,
		TotalElements: p.TotalElements,
		Number:        p.Number,
		Size:          p.Size,
	}
}
