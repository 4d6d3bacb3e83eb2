// Package criteria builds and edits the criteria list of an audit form.
//
// Every function here is pure: inputs are never modified and results are
// fresh slices, so handlers and services can call them on shared data.
package criteria

import (
	"strings"

	"audti-backend-go/internal/models"
)

// Reconcile merges the checklist items of the selected categories with the
// responses already persisted for the audit and the criteria currently held
// by the form.
//
// Template-sourced criteria come first, one per item and in item order. For
// each item the score and justification come from the persisted response
// unless the form holds a newer unsaved edit for the same item; without
// either, the criterion starts unset. Entries for items that are no longer
// selected are dropped. Custom criteria follow in their original order. A
// custom criterion whose description repeats a template item (a row saved
// before it carried a back-reference) is folded into that item.
func Reconcile(items []models.ChecklistItem, responses []models.Response, current []models.Criterion) []models.Criterion {
	byItem := latestResponses(responses)

	inForm := make(map[string]models.Criterion)
	for _, c := range current {
		if !c.TemplateSourced() {
			continue
		}
		if _, seen := inForm[c.ChecklistID]; !seen {
			inForm[c.ChecklistID] = c
		}
	}

	out := make([]models.Criterion, 0, len(items)+len(current))
	position := make(map[string]int, len(items)) // description key -> index in out
	fresh := make(map[int]bool)
	emitted := make(map[string]struct{}, len(items))

	for _, item := range items {
		if _, dup := emitted[item.ID]; dup {
			continue
		}
		emitted[item.ID] = struct{}{}

		c := models.Criterion{
			Description: item.Description,
			ChecklistID: item.ID,
			Category:    item.Category,
			Weight:      item.Weight,
		}
		resp, hasResp := byItem[item.ID]
		edit, hasEdit := inForm[item.ID]
		switch {
		case hasResp && (!hasEdit || edit.EditedAt == nil || resp.UpdatedAt.After(*edit.EditedAt)):
			c.Score = resp.Score
			c.Justification = resp.Justification
		case hasEdit:
			c.Score = edit.Score
			c.Justification = edit.Justification
			c.EditedAt = edit.EditedAt
		default:
			fresh[len(out)] = true
		}

		if key := descriptionKey(item.Description); key != "" {
			if _, taken := position[key]; !taken {
				position[key] = len(out)
			}
		}
		out = append(out, c)
	}

	for _, c := range current {
		if c.TemplateSourced() {
			continue
		}
		if idx, ok := position[descriptionKey(c.Description)]; ok {
			if fresh[idx] {
				out[idx].Score = c.Score
				out[idx].Justification = c.Justification
				out[idx].EditedAt = c.EditedAt
				fresh[idx] = false
			}
			continue
		}
		out = append(out, c)
	}
	return out
}

// latestResponses indexes responses by checklist item, keeping the most recently updated one.
func latestResponses(responses []models.Response) map[string]models.Response {
	byItem := make(map[string]models.Response, len(responses))
	for _, r := range responses {
		if r.ChecklistID == "" {
			continue
		}
		if prev, ok := byItem[r.ChecklistID]; ok && !r.UpdatedAt.After(prev.UpdatedAt) {
			continue
		}
		byItem[r.ChecklistID] = r
	}
	return byItem
}

func descriptionKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Snapshot returns the list as it is persisted inside an audit, without session markers.
func Snapshot(list []models.Criterion) []models.Criterion {
	out := make([]models.Criterion, len(list))
	for i, c := range list {
		c.EditedAt = nil
		out[i] = c
	}
	return out
}

// Responses derives one response per template-sourced criterion.
func Responses(auditID string, list []models.Criterion) []models.Response {
	out := make([]models.Response, 0, len(list))
	for _, c := range list {
		if !c.TemplateSourced() {
			continue
		}
		out = append(out, models.Response{
			AuditID:       auditID,
			ChecklistID:   c.ChecklistID,
			Score:         c.Score,
			Justification: c.Justification,
		})
	}
	return out
}
