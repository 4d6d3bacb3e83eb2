package criteria

import (
	"math"
	"sort"
	"strings"

	"audti-backend-go/internal/models"
)

// CustomCategory groups criteria that do not come from a checklist item.
const CustomCategory = "custom"

// Progress is the advisory completion percentage of an audit form: filled
// required fields plus scored criteria over the number of both, rounded.
func Progress(required []string, list []models.Criterion) int {
	total := len(required) + len(list)
	if total == 0 {
		return 0
	}
	done := 0
	for _, v := range required {
		if strings.TrimSpace(v) != "" {
			done++
		}
	}
	for _, c := range list {
		if c.Score > 0 {
			done++
		}
	}
	return int(math.Round(float64(done) / float64(total) * 100))
}

// CategoryScore is the mean score of the criteria of one category.
type CategoryScore struct {
	Category string  `json:"category"`
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
}

// Summary aggregates the scores of a criteria snapshot.
type Summary struct {
	Count        int             `json:"count"`
	Scored       int             `json:"scored"`
	Unscored     int             `json:"unscored"`
	Mean         float64         `json:"mean"`
	WeightedMean float64         `json:"weightedMean"`
	ByCategory   []CategoryScore `json:"byCategory"`
}

// Summarize computes means over every criterion, unset scores included.
// Criteria without a weight count with the default template weight.
func Summarize(list []models.Criterion) Summary {
	s := Summary{Count: len(list), ByCategory: []CategoryScore{}}
	if len(list) == 0 {
		return s
	}

	var sum, weighted, weights float64
	type acc struct{ sum, n float64 }
	perCategory := map[string]*acc{}
	for _, c := range list {
		if c.Score > 0 {
			s.Scored++
		}
		sum += float64(c.Score)

		w := c.Weight
		if w <= 0 {
			w = models.DefaultWeight
		}
		weighted += float64(c.Score * w)
		weights += float64(w)

		cat := c.Category
		if !c.TemplateSourced() || cat == "" {
			cat = CustomCategory
		}
		if perCategory[cat] == nil {
			perCategory[cat] = &acc{}
		}
		perCategory[cat].sum += float64(c.Score)
		perCategory[cat].n++
	}
	s.Unscored = s.Count - s.Scored
	s.Mean = round2(sum / float64(len(list)))
	s.WeightedMean = round2(weighted / weights)

	for cat, a := range perCategory {
		s.ByCategory = append(s.ByCategory, CategoryScore{Category: cat, Count: int(a.n), Mean: round2(a.sum / a.n)})
	}
	sort.Slice(s.ByCategory, func(i, j int) bool { return s.ByCategory[i].Category < s.ByCategory[j].Category })
	return s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
