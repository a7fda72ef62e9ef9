package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/XaviGIT/budget-app/internal/core"
)

const categoryColumns = "id, name, icon, group_id, sort_order, budget_policy, budget_amount_cents, budget_target_cents, budget_target_month"

func scanCategory(row interface{ Scan(...any) error }) (core.Category, error) {
	var (
		c           core.Category
		policy      sql.NullString
		amount      sql.NullInt64
		target      sql.NullInt64
		targetMonth sql.NullString
	)
	err := row.Scan(&c.ID, &c.Name, &c.Icon, &c.GroupID, &c.SortOrder,
		&policy, &amount, &target, &targetMonth)
	if err != nil {
		return core.Category{}, err
	}
	c.BudgetPolicy = core.BudgetPolicy(orEmpty(policy))
	if amount.Valid {
		c.BudgetAmount = core.Money{Cents: amount.Int64}
	}
	if target.Valid {
		c.BudgetTarget = core.Money{Cents: target.Int64}
	}
	if targetMonth.Valid && targetMonth.String != "" {
		m, perr := core.ParseMonth(targetMonth.String)
		if perr != nil {
			return core.Category{}, fmt.Errorf("stored target month %q: %w", targetMonth.String, perr)
		}
		c.TargetMonth = m
	}
	return c, nil
}

func (q *Queries) CreateCategoryGroup(ctx context.Context, g core.CategoryGroup) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO category_groups (id, name, sort_order) VALUES (?, ?, ?)`,
		g.ID, g.Name, g.SortOrder)
	if err != nil {
		return fmt.Errorf("insert category group: %w", err)
	}
	return nil
}

func (q *Queries) GetCategoryGroup(ctx context.Context, id string) (core.CategoryGroup, error) {
	var g core.CategoryGroup
	err := q.db.QueryRowContext(ctx,
		`SELECT id, name, sort_order FROM category_groups WHERE id = ?`, id).
		Scan(&g.ID, &g.Name, &g.SortOrder)
	if errors.Is(err, sql.ErrNoRows) {
		return core.CategoryGroup{}, fmt.Errorf("category group %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.CategoryGroup{}, fmt.Errorf("get category group: %w", err)
	}
	return g, nil
}

func (q *Queries) ListCategoryGroups(ctx context.Context) ([]core.CategoryGroup, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, name, sort_order FROM category_groups ORDER BY sort_order, name`)
	if err != nil {
		return nil, fmt.Errorf("list category groups: %w", err)
	}
	defer rows.Close()

	var groups []core.CategoryGroup
	for rows.Next() {
		var g core.CategoryGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.SortOrder); err != nil {
			return nil, fmt.Errorf("scan category group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (q *Queries) UpdateCategoryGroup(ctx context.Context, g core.CategoryGroup) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE category_groups SET name = ? WHERE id = ?`, g.Name, g.ID)
	if err != nil {
		return fmt.Errorf("update category group: %w", err)
	}
	return notFoundIfNoRows(res, "category group", g.ID)
}

func (q *Queries) SetCategoryGroupOrder(ctx context.Context, id string, sortOrder int) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE category_groups SET sort_order = ? WHERE id = ?`, sortOrder, id)
	if err != nil {
		return fmt.Errorf("set group order: %w", err)
	}
	return notFoundIfNoRows(res, "category group", id)
}

func (q *Queries) DeleteCategoryGroup(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM category_groups WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category group: %w", err)
	}
	return notFoundIfNoRows(res, "category group", id)
}

func (q *Queries) CountCategoriesInGroup(ctx context.Context, groupID string) (int, error) {
	var n int
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categories WHERE group_id = ?`, groupID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count categories in group: %w", err)
	}
	return n, nil
}

// ReassignCategoriesGroup moves every category in one group to another.
func (q *Queries) ReassignCategoriesGroup(ctx context.Context, fromGroupID, toGroupID string) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE categories SET group_id = ? WHERE group_id = ?`,
		toGroupID, fromGroupID)
	if err != nil {
		return fmt.Errorf("reassign categories group: %w", err)
	}
	return nil
}

// ListCategoryIDsInGroup returns the ids of a group's member categories.
func (q *Queries) ListCategoryIDsInGroup(ctx context.Context, groupID string) ([]string, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id FROM categories WHERE group_id = ?`, groupID)
	if err != nil {
		return nil, fmt.Errorf("list category ids in group: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan category id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (q *Queries) CreateCategory(ctx context.Context, c core.Category) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, icon, group_id, sort_order, budget_policy, budget_amount_cents, budget_target_cents, budget_target_month)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Icon, c.GroupID, c.SortOrder,
		nullable(string(c.BudgetPolicy)), nullCents(c.BudgetAmount), nullCents(c.BudgetTarget), nullMonth(c.TargetMonth))
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (q *Queries) GetCategory(ctx context.Context, id string) (core.Category, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, fmt.Errorf("category %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// ListCategories returns every category ordered for display: by group
// order first, then by the category's own sort order.
func (q *Queries) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT c.id, c.name, c.icon, c.group_id, c.sort_order, c.budget_policy, c.budget_amount_cents, c.budget_target_cents, c.budget_target_month
		 FROM categories c
		 JOIN category_groups g ON g.id = c.group_id
		 ORDER BY g.sort_order, c.sort_order, c.name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (q *Queries) UpdateCategory(ctx context.Context, c core.Category) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, icon = ?, group_id = ? WHERE id = ?`,
		c.Name, c.Icon, c.GroupID, c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return notFoundIfNoRows(res, "category", c.ID)
}

func (q *Queries) SetCategoryOrder(ctx context.Context, id string, sortOrder int) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE categories SET sort_order = ? WHERE id = ?`, sortOrder, id)
	if err != nil {
		return fmt.Errorf("set category order: %w", err)
	}
	return notFoundIfNoRows(res, "category", id)
}

// SetCategoryBudgetConfig rewrites the budget policy block in one shot.
// A zero policy clears all three budget columns.
func (q *Queries) SetCategoryBudgetConfig(ctx context.Context, c core.Category) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE categories SET budget_policy = ?, budget_amount_cents = ?, budget_target_cents = ?, budget_target_month = ? WHERE id = ?`,
		nullable(string(c.BudgetPolicy)), nullCents(c.BudgetAmount), nullCents(c.BudgetTarget), nullMonth(c.TargetMonth), c.ID)
	if err != nil {
		return fmt.Errorf("set budget config: %w", err)
	}
	return notFoundIfNoRows(res, "category", c.ID)
}

func (q *Queries) DeleteCategory(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return notFoundIfNoRows(res, "category", id)
}

func nullCents(m core.Money) any {
	if m.IsZero() {
		return nil
	}
	return m.Cents
}

func nullMonth(m core.Month) any {
	if m.IsZero() {
		return nil
	}
	return m.String()
}
