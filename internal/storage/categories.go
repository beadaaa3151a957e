package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/levanchungit/qlct/internal/core"
)

// NewCategory carries the caller-supplied fields for category creation.
// Type is fixed for the lifetime of the category.
type NewCategory struct {
	Name     string
	Type     core.TxType
	Icon     core.Icon
	Color    string
	ParentID string
}

// CategoryUpdate is a partial update: nil fields are left untouched.
type CategoryUpdate struct {
	Name     *string
	Icon     *core.Icon
	Color    *string
	ParentID *string
}

// CategoryFilter narrows ListCategories. A nil ParentID means no parent
// filtering; a pointer to "" selects roots only.
type CategoryFilter struct {
	Type     core.TxType
	ParentID *string
}

func (s *Store) CreateCategory(ctx context.Context, userID string, in NewCategory) (string, error) {
	name, err := core.ValidateName(in.Name)
	if err != nil {
		return "", err
	}
	if !in.Type.Postable() {
		return "", core.ErrInvalidType
	}

	id := newID("cat")
	now := nowSec()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO categories(id, user_id, name, type, icon, color, parent_id, created_at, updated_at)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, userID, name, string(in.Type), nullable(in.Icon.Pack()), nullable(in.Color), nullable(in.ParentID), now, now)
	if err != nil {
		return "", fmt.Errorf("insert category: %w", err)
	}

	slog.InfoContext(ctx, "Category created", "id", id, "name", name, "type", in.Type)
	return id, nil
}

func (s *Store) UpdateCategory(ctx context.Context, userID, id string, upd CategoryUpdate) error {
	set := []string{}
	args := []any{}

	if upd.Name != nil {
		name, err := core.ValidateName(*upd.Name)
		if err != nil {
			return err
		}
		set = append(set, "name = ?")
		args = append(args, name)
	}
	if upd.Icon != nil {
		set = append(set, "icon = ?")
		args = append(args, nullable(upd.Icon.Pack()))
	}
	if upd.Color != nil {
		set = append(set, "color = ?")
		args = append(args, nullable(*upd.Color))
	}
	if upd.ParentID != nil {
		set = append(set, "parent_id = ?")
		args = append(args, nullable(*upd.ParentID))
	}

	set = append(set, "updated_at = ?")
	args = append(args, nowSec(), id, userID)

	res, err := s.db.ExecContext(ctx,
		"UPDATE categories SET "+strings.Join(set, ", ")+" WHERE id = ? AND user_id = ?", args...)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("category %s: %w", id, core.ErrNotFound)
	}
	return nil
}

// DeleteCategory deletes unconditionally. Referencing transactions keep
// their row and have category_id set NULL by the schema's referential
// policy, so reporting buckets them as uncategorized.
func (s *Store) DeleteCategory(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM categories WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("category %s: %w", id, core.ErrNotFound)
	}
	slog.InfoContext(ctx, "Category deleted", "id", id)
	return nil
}

func (s *Store) Category(ctx context.Context, userID, id string) (core.Category, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, type, icon, color, parent_id, created_at, updated_at
		 FROM categories WHERE id = ? AND user_id = ?`, id, userID)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, fmt.Errorf("category %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("query category: %w", err)
	}
	return c, nil
}

// ListCategories returns the user's categories ordered by name, optionally
// narrowed by type and parent.
func (s *Store) ListCategories(ctx context.Context, userID string, f CategoryFilter) ([]core.Category, error) {
	where := []string{"user_id = ?"}
	args := []any{userID}

	if f.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(f.Type))
	}
	if f.ParentID != nil {
		if *f.ParentID == "" {
			where = append(where, "parent_id IS NULL")
		} else {
			where = append(where, "parent_id = ?")
			args = append(args, *f.ParentID)
		}
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, type, icon, color, parent_id, created_at, updated_at
		 FROM categories WHERE `+strings.Join(where, " AND ")+` ORDER BY name ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanCategory(r rowScanner) (core.Category, error) {
	var (
		c                      core.Category
		typ                    string
		icon, color, parentID  sql.NullString
		createdAt, updatedAt   sql.NullInt64
	)
	err := r.Scan(&c.ID, &c.UserID, &c.Name, &typ, &icon, &color, &parentID, &createdAt, &updatedAt)
	if err != nil {
		return core.Category{}, err
	}
	c.Type = core.TxType(typ)
	c.Icon = core.ParseIcon(icon.String)
	c.Color = color.String
	c.ParentID = parentID.String
	c.CreatedAt = createdAt.Int64
	c.UpdatedAt = updatedAt.Int64
	return c, nil
}
