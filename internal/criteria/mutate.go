package criteria

import (
	"errors"
	"time"

	"audti-backend-go/internal/models"
)

var (
	// ErrTemplateLocked rejects edits that only the checklist template may make.
	ErrTemplateLocked = errors.New("criterion comes from the checklist template and can only change with the category selection")
	// ErrIndexOutOfRange is returned for an index outside the list.
	ErrIndexOutOfRange = errors.New("criterion index out of range")
)

// Patch lists the fields to change on one criterion. Nil fields are left alone.
type Patch struct {
	Description   *string `json:"description,omitempty"`
	Score         *int    `json:"score,omitempty"`
	Justification *string `json:"justification,omitempty"`
}

// Update applies patch to list[index] and returns the new list. The edit is
// stamped with at so a later Reconcile can tell it apart from older
// persisted data. Score bounds are enforced where input enters the system.
func Update(list []models.Criterion, index int, patch Patch, at time.Time) ([]models.Criterion, error) {
	if index < 0 || index >= len(list) {
		return nil, ErrIndexOutOfRange
	}
	target := list[index]
	if patch.Description != nil && target.TemplateSourced() && *patch.Description != target.Description {
		return nil, ErrTemplateLocked
	}

	if patch.Description != nil {
		target.Description = *patch.Description
	}
	if patch.Score != nil {
		target.Score = *patch.Score
	}
	if patch.Justification != nil {
		target.Justification = *patch.Justification
	}
	edited := at
	target.EditedAt = &edited

	out := append([]models.Criterion(nil), list...)
	out[index] = target
	return out, nil
}

// SetScore is Update with only a score.
func SetScore(list []models.Criterion, index, score int, at time.Time) ([]models.Criterion, error) {
	return Update(list, index, Patch{Score: &score}, at)
}

// SetJustification is Update with only a justification.
func SetJustification(list []models.Criterion, index int, text string, at time.Time) ([]models.Criterion, error) {
	return Update(list, index, Patch{Justification: &text}, at)
}

// AddCustom appends an empty custom criterion.
func AddCustom(list []models.Criterion) []models.Criterion {
	out := make([]models.Criterion, len(list), len(list)+1)
	copy(out, list)
	return append(out, models.Criterion{})
}

// Remove deletes a custom criterion. Template-sourced criteria are rejected
// with ErrTemplateLocked and the list is returned unchanged.
func Remove(list []models.Criterion, index int) ([]models.Criterion, error) {
	if index < 0 || index >= len(list) {
		return list, ErrIndexOutOfRange
	}
	if list[index].TemplateSourced() {
		return list, ErrTemplateLocked
	}
	out := make([]models.Criterion, 0, len(list)-1)
	out = append(out, list[:index]...)
	return append(out, list[index+1:]...), nil
}
