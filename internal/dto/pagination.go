package dto

// PageQuery carries 1-based page number and size
type PageQuery struct {
	Page     int `query:"page"`
	PageSize int `query:"page_size"`
}

// Normalize clamps page to >= 1 and page size to [1, maxSize]
func (q PageQuery) Normalize(defaultSize, maxSize int) PageQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = defaultSize
	}
	if q.PageSize > maxSize {
		q.PageSize = maxSize
	}
	return q
}

// Offset is the number of rows before the page
func (q PageQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// Page is a page of results. Next and Previous are page numbers or null.
type Page[T any] struct {
	Count    int64 `json:"count"`
	Next     *int  `json:"next"`
	Previous *int  `json:"previous"`
	Results  []T   `json:"results"`
}

// NewPage builds the envelope for results fetched with q
func NewPage[T any](results []T, total int64, q PageQuery) Page[T] {
	if results == nil {
		results = []T{}
	}

	page := Page[T]{Count: total, Results: results}

	if int64(q.Offset()+len(results)) < total {
		next := q.Page + 1
		page.Next = &next
	}
	if q.Page > 1 {
		previous := q.Page - 1
		page.Previous = &previous
	}

	return page
}
