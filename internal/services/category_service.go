package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/XaviGIT/budget-app/internal/core"
	"github.com/XaviGIT/budget-app/internal/storage"
)

// CategoryService manages categories, their groups and display ordering,
// and guards deletions against dangling ledger references.
type CategoryService struct {
	store   *storage.Store
	budgets MonthInvalidator
}

func NewCategoryService(store *storage.Store, budgets MonthInvalidator) *CategoryService {
	return &CategoryService{store: store, budgets: budgets}
}

type CategoryInput struct {
	Name    string
	Icon    string
	GroupID string
}

func (s *CategoryService) CreateCategory(ctx context.Context, in CategoryInput) (core.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return core.Category{}, fmt.Errorf("empty category name: %w", core.ErrInvalidArgument)
	}

	category := core.Category{
		ID:      uuid.NewString(),
		Name:    name,
		Icon:    in.Icon,
		GroupID: in.GroupID,
	}
	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		if _, err := q.GetCategoryGroup(ctx, in.GroupID); err != nil {
			return err
		}
		n, err := q.CountCategoriesInGroup(ctx, in.GroupID)
		if err != nil {
			return err
		}
		category.SortOrder = n // append at the end of the group
		return q.CreateCategory(ctx, category)
	})
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return category, nil
}

func (s *CategoryService) UpdateCategory(ctx context.Context, id string, in CategoryInput) (core.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return core.Category{}, fmt.Errorf("empty category name: %w", core.ErrInvalidArgument)
	}

	var updated core.Category
	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		category, err := q.GetCategory(ctx, id)
		if err != nil {
			return err
		}
		if in.GroupID != category.GroupID {
			if _, err := q.GetCategoryGroup(ctx, in.GroupID); err != nil {
				return err
			}
		}
		category.Name = name
		category.Icon = in.Icon
		category.GroupID = in.GroupID
		if err := q.UpdateCategory(ctx, category); err != nil {
			return err
		}
		updated = category
		return nil
	})
	if err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	return updated, nil
}

// DeleteCategory removes a category and its budget assignments. Any
// transaction still referencing it blocks the delete.
func (s *CategoryService) DeleteCategory(ctx context.Context, id string) error {
	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		if _, err := q.GetCategory(ctx, id); err != nil {
			return err
		}
		n, err := q.CountTransactionsByCategory(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("category has %d transactions: %w", n, core.ErrPreconditionFailed)
		}
		if err := q.DeleteAssignmentsByCategory(ctx, id); err != nil {
			return err
		}
		return q.DeleteCategory(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	s.invalidateAll()
	return nil
}

func (s *CategoryService) CreateCategoryGroup(ctx context.Context, name string) (core.CategoryGroup, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.CategoryGroup{}, fmt.Errorf("empty group name: %w", core.ErrInvalidArgument)
	}

	group := core.CategoryGroup{ID: uuid.NewString(), Name: name}
	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		groups, err := q.ListCategoryGroups(ctx)
		if err != nil {
			return err
		}
		group.SortOrder = len(groups)
		return q.CreateCategoryGroup(ctx, group)
	})
	if err != nil {
		return core.CategoryGroup{}, fmt.Errorf("create category group: %w", err)
	}
	return group, nil
}

func (s *CategoryService) UpdateCategoryGroup(ctx context.Context, id, name string) (core.CategoryGroup, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.CategoryGroup{}, fmt.Errorf("empty group name: %w", core.ErrInvalidArgument)
	}

	var updated core.CategoryGroup
	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		group, err := q.GetCategoryGroup(ctx, id)
		if err != nil {
			return err
		}
		group.Name = name
		if err := q.UpdateCategoryGroup(ctx, group); err != nil {
			return err
		}
		updated = group
		return nil
	})
	if err != nil {
		return core.CategoryGroup{}, fmt.Errorf("update category group: %w", err)
	}
	return updated, nil
}

// DeleteCategoryGroup removes a group. With a transfer target the member
// categories move there; without one, the members cascade-delete, and any
// member with transactions blocks the whole delete.
func (s *CategoryService) DeleteCategoryGroup(ctx context.Context, id, transferTo string) error {
	if transferTo == id {
		return fmt.Errorf("transfer target is the deleted group: %w", core.ErrInvalidArgument)
	}

	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		if _, err := q.GetCategoryGroup(ctx, id); err != nil {
			return err
		}

		if transferTo != "" {
			if _, err := q.GetCategoryGroup(ctx, transferTo); err != nil {
				return err
			}
			if err := q.ReassignCategoriesGroup(ctx, id, transferTo); err != nil {
				return err
			}
			return q.DeleteCategoryGroup(ctx, id)
		}

		members, err := q.ListCategoryIDsInGroup(ctx, id)
		if err != nil {
			return err
		}
		for _, categoryID := range members {
			n, err := q.CountTransactionsByCategory(ctx, categoryID)
			if err != nil {
				return err
			}
			if n > 0 {
				return fmt.Errorf("group member category has %d transactions: %w", n, core.ErrPreconditionFailed)
			}
		}
		for _, categoryID := range members {
			if err := q.DeleteAssignmentsByCategory(ctx, categoryID); err != nil {
				return err
			}
			if err := q.DeleteCategory(ctx, categoryID); err != nil {
				return err
			}
		}
		return q.DeleteCategoryGroup(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete category group: %w", err)
	}
	s.invalidateAll()
	return nil
}

// Reorder rewrites the sort order of groups and categories in one unit of
// work. The maps carry the new zero-based positions keyed by id; ids absent
// from the maps keep their order.
func (s *CategoryService) Reorder(ctx context.Context, groupOrder, categoryOrder map[string]int) error {
	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		for id, pos := range groupOrder {
			if err := q.SetCategoryGroupOrder(ctx, id, pos); err != nil {
				return err
			}
		}
		for id, pos := range categoryOrder {
			if err := q.SetCategoryOrder(ctx, id, pos); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("reorder categories: %w", err)
	}
	s.invalidateAll()
	return nil
}

// ListCategoryGroups lists groups in display order.
func (s *CategoryService) ListCategoryGroups(ctx context.Context) ([]core.CategoryGroup, error) {
	return s.store.Queries().ListCategoryGroups(ctx)
}

// ListCategories lists categories in display order.
func (s *CategoryService) ListCategories(ctx context.Context) ([]core.Category, error) {
	return s.store.Queries().ListCategories(ctx)
}

// invalidateAll drops every cached budget month: category structure changes
// reshape the read model for all months at once.
func (s *CategoryService) invalidateAll() {
	if s.budgets != nil {
		s.budgets.InvalidateMonth(core.Month{})
	}
}
