// Package filter describes audit list queries and evaluates them in memory
// when the backing store cannot.
package filter

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"audti-backend-go/internal/models"
)

// SortField is the field audits are ordered by.
type SortField string

// SortDirection is ascending or descending.
type SortDirection string

const (
	SortByDate  SortField = "date"
	SortByTitle SortField = "title"

	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ErrInvalidQuery is returned by Validate.
var ErrInvalidQuery = errors.New("invalid query")

// Query is the declarative description of an audit list request.
// Every With* method except WithPage returns a copy positioned on page 1.
type Query struct {
	Search     string        `json:"search,omitempty"`
	Categories []string      `json:"categories,omitempty"`
	Unit       string        `json:"unit,omitempty"`
	DateFrom   string        `json:"dateFrom,omitempty"`
	DateTo     string        `json:"dateTo,omitempty"`
	SortField  SortField     `json:"sort"`
	SortDir    SortDirection `json:"order"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
}

// New returns the default query: newest audits first, page 1 of 10.
func New() Query {
	return Query{
		SortField: SortByDate,
		SortDir:   Descending,
		Page:      DefaultPage,
		PageSize:  DefaultPageSize,
	}
}

func (q Query) reset() Query {
	q.Page = DefaultPage
	return q
}

func (q Query) WithSearch(search string) Query {
	q.Search = search
	return q.reset()
}

func (q Query) WithCategories(categories ...string) Query {
	q.Categories = append([]string(nil), categories...)
	return q.reset()
}

func (q Query) WithUnit(unit string) Query {
	q.Unit = unit
	return q.reset()
}

// WithDateRange sets both bounds; an empty string leaves that side open.
func (q Query) WithDateRange(from, to string) Query {
	q.DateFrom, q.DateTo = from, to
	return q.reset()
}

func (q Query) WithSort(field SortField, dir SortDirection) Query {
	q.SortField, q.SortDir = field, dir
	return q.reset()
}

// ToggleSort flips the direction when field is already the sort field,
// otherwise sorts ascending by field.
func (q Query) ToggleSort(field SortField) Query {
	if q.SortField == field {
		if q.SortDir == Ascending {
			return q.WithSort(field, Descending)
		}
		return q.WithSort(field, Ascending)
	}
	return q.WithSort(field, Ascending)
}

func (q Query) WithPageSize(size int) Query {
	q.PageSize = size
	return q.reset()
}

// WithPage moves to another page of the same result set.
func (q Query) WithPage(page int) Query {
	q.Page = page
	return q
}

// ClearFilters drops every filter, keeping sort and page size.
func (q Query) ClearFilters() Query {
	q.Search, q.Categories, q.Unit, q.DateFrom, q.DateTo = "", nil, "", "", ""
	return q.reset()
}

// Normalize fills defaults and canonicalizes the query so that equivalent
// queries compare (and hash) equal.
func (q Query) Normalize() Query {
	q.Search = strings.TrimSpace(q.Search)
	q.Unit = strings.TrimSpace(q.Unit)
	q.DateFrom = strings.TrimSpace(q.DateFrom)
	q.DateTo = strings.TrimSpace(q.DateTo)

	if len(q.Categories) > 0 {
		seen := make(map[string]struct{}, len(q.Categories))
		cats := make([]string, 0, len(q.Categories))
		for _, c := range q.Categories {
			c = strings.TrimSpace(c)
			if c == "" {
				continue
			}
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			cats = append(cats, c)
		}
		sort.Strings(cats)
		if len(cats) == 0 {
			cats = nil
		}
		q.Categories = cats
	}

	if q.SortField != SortByDate && q.SortField != SortByTitle {
		q.SortField = SortByDate
	}
	if q.SortDir != Ascending && q.SortDir != Descending {
		q.SortDir = Descending
	}
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	return q
}

// Validate checks the date bounds.
func (q Query) Validate() error {
	for name, value := range map[string]string{"dateFrom": q.DateFrom, "dateTo": q.DateTo} {
		if value == "" {
			continue
		}
		if _, err := time.Parse(models.DateLayout, value); err != nil {
			return fmt.Errorf("%w: %s must be formatted as YYYY-MM-DD", ErrInvalidQuery, name)
		}
	}
	if q.DateFrom != "" && q.DateTo != "" && q.DateFrom > q.DateTo {
		return fmt.Errorf("%w: dateFrom is after dateTo", ErrInvalidQuery)
	}
	return nil
}

// Offset is the number of rows skipped before the current page.
func (q Query) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// CacheKey hashes the normalized query.
func (q Query) CacheKey() string {
	raw, _ := json.Marshal(q.Normalize())
	return strconv.FormatUint(xxhash.Sum64(raw), 16)
}

// Matches applies every filter of q to a.
func (q Query) Matches(a models.Audit) bool {
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(a.Title), needle) &&
			!strings.Contains(strings.ToLower(a.Description), needle) &&
			!strings.Contains(strings.ToLower(a.Auditor), needle) {
			return false
		}
	}
	if len(q.Categories) > 0 && !a.HasCategory(q.Categories...) {
		return false
	}
	if q.Unit != "" && a.Unit != q.Unit {
		return false
	}
	if q.DateFrom != "" && a.Date < q.DateFrom {
		return false
	}
	if q.DateTo != "" && a.Date > q.DateTo {
		return false
	}
	return true
}

// Less orders a before b by the sort field, then by id. Ids are time-ordered,
// so ties fall back to insertion order.
func (q Query) Less(a, b models.Audit) bool {
	var cmp int
	switch q.SortField {
	case SortByTitle:
		cmp = strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	default:
		cmp = strings.Compare(a.Date, b.Date)
	}
	if cmp == 0 {
		cmp = strings.Compare(a.ID, b.ID)
	}
	if q.SortDir == Ascending {
		return cmp < 0
	}
	return cmp > 0
}
