package services

import "github.com/anonto42/team-feed/backend/internal/repositories"

// Page is one page of a newest-first listing
type Page[T any] struct {
	Items   []T   `json:"items"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
	HasNext bool  `json:"has_next"`
	HasPrev bool  `json:"has_prev"`
}

func newPage[T any](items []T, p repositories.Pagination, total int64) *Page[T] {
	p = p.Normalize()
	pages := int((total + int64(p.PerPage) - 1) / int64(p.PerPage))
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Items:   items,
		Page:    p.Page,
		PerPage: p.PerPage,
		Total:   total,
		Pages:   pages,
		HasNext: p.Page < pages,
		HasPrev: p.Page > 1,
	}
}
