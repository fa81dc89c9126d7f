package httpdto

import (
	"telemed-chat/internal/domain/paging"
)

// PageDTO mirrors paging.Page with its derived fields spelled out.
type PageDTO[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
	First         bool  `json:"first"`
	Last          bool  `json:"last"`
}

func FromPage[S, T any](p paging.Page[S], convert func(S) T) PageDTO[T] {
	converted := paging.Map(p, convert)
	return PageDTO[T]{
		Content:       converted.Content,
		TotalElements: converted.TotalElements,
		TotalPages:    converted.TotalPages(),
		Number:        converted.Number,
		Size:          converted.Size,
		First:         converted.IsFirst(),
		Last:          converted.IsLast(),
	}
}
