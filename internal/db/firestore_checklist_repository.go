package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"cloud.google.com/go/firestore"

	"audti-backend-go/internal/models"
)

// maxIn is the Firestore limit on values in an "in" filter.
const maxIn = 30

type firestoreChecklistRepository struct {
	client *firestore.Client
}

// NewFirestoreChecklistRepository creates a ChecklistRepository backed by Firestore.
func NewFirestoreChecklistRepository(client *firestore.Client) ChecklistRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for ChecklistRepository.")
	}
	return &firestoreChecklistRepository{client: client}
}

func setChecklistItemID(item *models.ChecklistItem, id string) { item.ID = id }

// sortChecklist orders items by category, then display order. The template is
// small, so ordering in memory saves a composite index.
func sortChecklist(items []models.ChecklistItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return a.ID < b.ID
	})
}

func (r *firestoreChecklistRepository) List(ctx context.Context) ([]models.ChecklistItem, error) {
	items, err := decodeAll(r.client.Collection(checklistCollection).Documents(ctx), setChecklistItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list checklist items: %w", err)
	}
	sortChecklist(items)
	return items, nil
}

func (r *firestoreChecklistRepository) ListByCategories(ctx context.Context, categories []string) ([]models.ChecklistItem, error) {
	items := []models.ChecklistItem{}
	for start := 0; start < len(categories); start += maxIn {
		end := min(start+maxIn, len(categories))
		query := r.client.Collection(checklistCollection).Where("category", "in", categories[start:end])
		chunk, err := decodeAll(query.Documents(ctx), setChecklistItemID)
		if err != nil {
			return nil, fmt.Errorf("failed to list checklist items by category: %w", err)
		}
		items = append(items, chunk...)
	}
	sortChecklist(items)
	return items, nil
}

func (r *firestoreChecklistRepository) Categories(ctx context.Context) ([]string, error) {
	items, err := decodeAll(r.client.Collection(checklistCollection).Select("category").Documents(ctx), setChecklistItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list checklist categories: %w", err)
	}
	values := make([]string, 0, len(items))
	for _, item := range items {
		values = append(values, item.Category)
	}
	return distinctSorted(values), nil
}

func (r *firestoreChecklistRepository) GetByID(ctx context.Context, itemID string) (*models.ChecklistItem, error) {
	snap, err := r.client.Collection(checklistCollection).Doc(itemID).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get checklist item '%s': %w", itemID, translateError(err))
	}
	var item models.ChecklistItem
	if err := snap.DataTo(&item); err != nil {
		return nil, fmt.Errorf("failed to decode checklist item '%s': %w", itemID, err)
	}
	item.ID = snap.Ref.ID
	return &item, nil
}

func (r *firestoreChecklistRepository) Create(ctx context.Context, item *models.ChecklistItem) error {
	if item.ID == "" {
		return errors.New("checklist item ID cannot be empty for Create operation")
	}
	if _, err := r.client.Collection(checklistCollection).Doc(item.ID).Create(ctx, item); err != nil {
		return fmt.Errorf("failed to create checklist item: %w", translateError(err))
	}
	return nil
}

func (r *firestoreChecklistRepository) CreateMany(ctx context.Context, items []*models.ChecklistItem) error {
	if len(items) == 0 {
		return nil
	}
	col := r.client.Collection(checklistCollection)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		for _, item := range items {
			if item.ID == "" {
				return errors.New("checklist item ID cannot be empty for CreateMany operation")
			}
			if err := tx.Create(col.Doc(item.ID), item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create %d checklist items: %w", len(items), translateError(err))
	}
	return nil
}

func (r *firestoreChecklistRepository) Update(ctx context.Context, item *models.ChecklistItem) error {
	ref := r.client.Collection(checklistCollection).Doc(item.ID)
	_, err := ref.Update(ctx, []firestore.Update{
		{Path: "category", Value: item.Category},
		{Path: "description", Value: item.Description},
		{Path: "weight", Value: item.Weight},
		{Path: "required", Value: item.Required},
		{Path: "order", Value: item.Order},
		{Path: "updatedBy", Value: item.UpdatedBy},
		{Path: "updatedAt", Value: item.UpdatedAt},
	})
	if err != nil {
		return fmt.Errorf("failed to update checklist item '%s': %w", item.ID, translateError(err))
	}
	return nil
}

func (r *firestoreChecklistRepository) Delete(ctx context.Context, itemID string) error {
	if _, err := r.client.Collection(checklistCollection).Doc(itemID).Delete(ctx, firestore.Exists); err != nil {
		return fmt.Errorf("failed to delete checklist item '%s': %w", itemID, translateError(err))
	}
	return nil
}

func (r *firestoreChecklistRepository) DeleteCategory(ctx context.Context, category string) (int, error) {
	query := r.client.Collection(checklistCollection).Where("category", "==", category)
	deleted := 0
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		deleted = 0
		docs, err := tx.Documents(query).GetAll()
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			return ErrNotFound
		}
		for _, doc := range docs {
			if err := tx.Delete(doc.Ref); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete checklist category '%s': %w", category, translateError(err))
	}
	return deleted, nil
}
