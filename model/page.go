package model

// Page is the canonical paginated envelope returned by list endpoints.
// Number is the 0-based index of the page.
type Page[T any] struct {
	Content       []T `json:"content"`
	TotalElements int `json:"totalElements"`
	TotalPages    int `json:"totalPages"`
	Size          int `json:"size"`
	Number        int `json:"number"`
}

// SinglePage wraps a full, unpaginated list as a one-page envelope.
func SinglePage[T any](items []T) Page[T] {
	p := Page[T]{
		Content:       items,
		TotalElements: len(items),
		Size:          len(items),
	}
	if len(items) > 0 {
		p.TotalPages = 1
	}
	return p
}
