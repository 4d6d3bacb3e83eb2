package filter

// Marker is one slot of the pagination control: a page number or an ellipsis.
type Marker struct {
	Page     int  `json:"page,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
	Current  bool `json:"current,omitempty"`
}

// TotalPages is ceil(total/pageSize).
func TotalPages(total, pageSize int) int {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// Window lays out the pagination control: the first page, the last page and up to
// three pages around current, with gaps collapsed into ellipses. It returns nil
// when there is at most one page, meaning the control is not shown.
func Window(current, totalPages int) []Marker {
	if totalPages <= 1 {
		return nil
	}
	if current < 1 {
		current = 1
	}
	if current > totalPages {
		current = totalPages
	}

	page := func(n int) Marker { return Marker{Page: n, Current: n == current} }
	markers := []Marker{page(1)}

	start := max(2, current-1)
	end := min(totalPages-1, current+1)
	if current <= 3 {
		end = min(totalPages-1, 4)
	}
	if current >= totalPages-2 {
		start = max(2, totalPages-3)
	}

	if start > 2 {
		markers = append(markers, Marker{Ellipsis: true})
	}
	for n := start; n <= end; n++ {
		markers = append(markers, page(n))
	}
	if end < totalPages-1 {
		markers = append(markers, Marker{Ellipsis: true})
	}
	return append(markers, page(totalPages))
}
