package pagination

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// Params carries list query parameters shared by every read-side endpoint.
type Params struct {
	Page      int    `query:"page"`
	Limit     int    `query:"limit"`
	SortOrder string `query:"sortOrder"`
	Search    string `query:"search"`
}

// Normalize clamps page/limit to sane values and defaults the sort order to
// newest-first.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = defaultPage
	}
	if p.Limit < 1 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	if p.SortOrder != "asc" {
		p.SortOrder = "desc"
	}
	return p
}

// Offset returns the number of records to skip for the current page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Page is the envelope returned by paginated endpoints.
type Page struct {
	Items      any  `json:"items"`
	Total      int  `json:"total"`
	PageNumber int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// NewPage assembles the response envelope for a page of items.
func NewPage(items any, total int, p Params) Page {
	totalPages := 0
	if p.Limit > 0 {
		totalPages = (total + p.Limit - 1) / p.Limit
	}
	return Page{
		Items:      items,
		Total:      total,
		PageNumber: p.Page,
		Limit:      p.Limit,
		TotalPages: totalPages,
		HasNext:    p.Page < totalPages,
		HasPrev:    p.Page > 1,
	}
}
