package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func render(markers []Marker) []int {
	out := make([]int, 0, len(markers))
	for _, m := range markers {
		if m.Ellipsis {
			out = append(out, 0)
			continue
		}
		out = append(out, m.Page)
	}
	return out
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 5, TotalPages(47, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 5, TotalPages(47, 0), "falls back to the default page size")
}

func TestWindow_SuppressedForSinglePage(t *testing.T) {
	assert.Nil(t, Window(1, TotalPages(10, 10)))
	assert.Nil(t, Window(1, 0))
}

func TestWindow(t *testing.T) {
	// 0 stands for an ellipsis.
	cases := []struct {
		name          string
		current, last int
		want          []int
	}{
		{"two pages", 1, 2, []int{1, 2}},
		{"five pages from start", 1, 5, []int{1, 2, 3, 4, 5}},
		{"five pages at end", 5, 5, []int{1, 2, 3, 4, 5}},
		{"ten pages start", 1, 10, []int{1, 2, 3, 4, 0, 10}},
		{"ten pages third", 3, 10, []int{1, 2, 3, 4, 0, 10}},
		{"ten pages middle", 5, 10, []int{1, 0, 4, 5, 6, 0, 10}},
		{"ten pages near end", 8, 10, []int{1, 0, 7, 8, 9, 10}},
		{"ten pages end", 10, 10, []int{1, 0, 7, 8, 9, 10}},
		{"current clamped", 42, 10, []int{1, 0, 7, 8, 9, 10}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, render(Window(tc.current, tc.last)))
		})
	}
}

func TestWindow_MarksCurrent(t *testing.T) {
	for _, m := range Window(5, 10) {
		assert.Equal(t, m.Page == 5, m.Current)
	}
}
