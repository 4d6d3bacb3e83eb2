package filter

import (
	"sort"

	"audti-backend-go/internal/models"
)

// Result is one page of audits plus the totals needed to render pagination.
type Result struct {
	Items      []models.Audit `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
	Pages      []Marker       `json:"pages,omitempty"`
}

// NewResult assembles a result for q from an already paginated slice.
func NewResult(q Query, items []models.Audit, total int) Result {
	q = q.Normalize()
	if items == nil {
		items = []models.Audit{}
	}
	totalPages := TotalPages(total, q.PageSize)
	return Result{
		Items:      items,
		Total:      total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: totalPages,
		Pages:      Window(q.Page, totalPages),
	}
}

// Empty is the result surfaced alongside an error.
func Empty(q Query) Result {
	return NewResult(q, nil, 0)
}

// Apply filters, sorts and paginates audits in memory. The input slice is not modified.
func Apply(audits []models.Audit, q Query) Result {
	q = q.Normalize()

	matched := make([]models.Audit, 0, len(audits))
	for _, a := range audits {
		if q.Matches(a) {
			matched = append(matched, a)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return q.Less(matched[i], matched[j]) })

	total := len(matched)
	start := q.Offset()
	if start > total {
		start = total
	}
	end := start + q.PageSize
	if end > total {
		end = total
	}
	return NewResult(q, matched[start:end], total)
}
