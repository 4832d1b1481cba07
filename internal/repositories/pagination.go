package repositories

// DefaultPerPage is the page size used by the feed and listing endpoints
const DefaultPerPage = 10

// MaxPage and MaxPerPage keep Offset well inside int range
const (
	MaxPage    = 1_000_000
	MaxPerPage = 100
)

// Pagination describes a 1-based page request
type Pagination struct {
	Page    int
	PerPage int
}

// Normalize clamps the page to [1, MaxPage] and the page size to DefaultPerPage
// when unset or MaxPerPage when too large.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

// Offset returns the number of rows to skip
func (p Pagination) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PerPage
}
