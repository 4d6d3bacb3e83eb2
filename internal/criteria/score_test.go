package criteria

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audti-backend-go/internal/models"
)

func TestProgress(t *testing.T) {
	assert.Equal(t, 0, Progress(nil, nil))

	list := Reconcile(securityItems(), nil, nil)
	assert.Equal(t, 43, Progress([]string{"Auditoria", "2025-05-15", "Carlos"}, list)) // 3/7

	list, _ = SetScore(list, 0, 5, time.Now())
	assert.Equal(t, 57, Progress([]string{"Auditoria", "2025-05-15", "Carlos"}, list)) // 4/7
	assert.Equal(t, 29, Progress([]string{"Auditoria", " ", ""}, list))                // 2/7

	for i := range list {
		list, _ = SetScore(list, i, 3, time.Now())
	}
	assert.Equal(t, 100, Progress([]string{"a", "b", "c"}, list))
}

func TestSummarize(t *testing.T) {
	list := Reconcile(securityItems(), nil, nil)
	for i, score := range []int{5, 5, 4, 5} {
		var err error
		list, err = SetScore(list, i, score, time.Now())
		require.NoError(t, err)
	}

	s := Summarize(list)
	assert.Equal(t, 4, s.Count)
	assert.Equal(t, 4, s.Scored)
	assert.Equal(t, 0, s.Unscored)
	assert.InDelta(t, 4.75, s.Mean, 1e-9)
	assert.InDelta(t, 4.76, s.WeightedMean, 1e-9) // 81/17
	require.Len(t, s.ByCategory, 1)
	assert.Equal(t, "Segurança", s.ByCategory[0].Category)

	list = append(list, models.Criterion{Description: "extra"})
	s = Summarize(list)
	assert.Equal(t, 1, s.Unscored)
	assert.InDelta(t, 3.8, s.Mean, 1e-9)
	require.Len(t, s.ByCategory, 2)
	assert.Equal(t, CustomCategory, s.ByCategory[1].Category)
	assert.Zero(t, s.ByCategory[1].Mean)

	empty := Summarize(nil)
	assert.Zero(t, empty.Mean)
	assert.NotNil(t, empty.ByCategory)
}
