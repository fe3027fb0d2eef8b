// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"alumnihub/internal/apperr"
	"alumnihub/internal/models"
	"alumnihub/internal/taxonomy"
	"alumnihub/internal/tree"
)

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db         *sql.DB
	q          DBTX
	maxRetries int
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB, maxRetries int) *CategoryStore {
	return &CategoryStore{db: db, q: db, maxRetries: maxRetries}
}

// InTx runs fn against a copy of the store bound to a serializable
// transaction, retrying on serialization conflicts.
func (s *CategoryStore) InTx(ctx context.Context, fn func(taxonomy.Repository) error) error {
	return RunSerializable(ctx, s.db, s.maxRetries, func(tx *sql.Tx) error {
		return fn(&CategoryStore{db: s.db, q: tx, maxRetries: s.maxRetries})
	})
}

const categoryColumns = `id, name, slug, description, parent_id, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner rowScanner) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Slug, &c.Description,
		&c.ParentID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// categoryWriteErr maps constraint violations on insert or update to the
// domain errors the engine would have returned had it seen the conflicting
// row first.
func categoryWriteErr(op string, err error) error {
	switch pgCode(err) {
	case pgUniqueViolation:
		return apperr.ErrDuplicateSlug
	case pgForeignKeyViolation:
		return apperr.ErrParentNotFound
	}
	return fmt.Errorf("%s category: %w", op, err)
}

// ChildEdges returns the id and parent of every category whose parent is
// one of parentIDs.
func (s *CategoryStore) ChildEdges(ctx context.Context, parentIDs []uuid.UUID) ([]tree.Edge, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT id, parent_id FROM categories WHERE parent_id = ANY($1::uuid[])`,
		uuidArray(parentIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("list child categories: %w", err)
	}
	defer rows.Close()

	var edges []tree.Edge
	for rows.Next() {
		var e tree.Edge
		if err := rows.Scan(&e.ID, &e.ParentID); err != nil {
			return nil, fmt.Errorf("scan child category: %w", err)
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// List returns all categories ordered by name, with topic counts.
func (s *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT c.id, c.name, c.slug, c.description, c.parent_id,
		       c.created_at, c.updated_at,
		       COUNT(t.id) AS topic_count
		FROM categories c
		LEFT JOIN forum_topics t ON t.category_id = c.id
		GROUP BY c.id
		ORDER BY c.name, c.id
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		var c models.Category
		err := rows.Scan(
			&c.ID, &c.Name, &c.Slug, &c.Description,
			&c.ParentID, &c.CreatedAt, &c.UpdatedAt,
			&c.TopicCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// FindBySlug retrieves a category by slug. Returns nil if not found.
func (s *CategoryStore) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE slug = $1`, slug)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	return c, nil
}

// Create inserts a new category and returns it.
func (s *CategoryStore) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	row := s.q.QueryRowContext(ctx, `
		INSERT INTO categories (name, slug, description, parent_id)
		VALUES ($1, $2, $3, $4)
		RETURNING `+categoryColumns,
		c.Name, c.Slug, c.Description, c.ParentID,
	)
	result, err := scanCategory(row)
	if err != nil {
		return nil, categoryWriteErr("create", err)
	}
	return result, nil
}

// Update writes name, slug, description, and parent of an existing category.
func (s *CategoryStore) Update(ctx context.Context, c *models.Category) error {
	_, err := s.q.ExecContext(ctx, `
		UPDATE categories SET
			name = $1, slug = $2, description = $3, parent_id = $4,
			updated_at = NOW()
		WHERE id = $5
	`, c.Name, c.Slug, c.Description, c.ParentID, c.ID)
	if err != nil {
		return categoryWriteErr("update", err)
	}
	return nil
}

// Delete removes a category by ID. The parent_id foreign key is RESTRICT,
// so children must have been promoted first.
func (s *CategoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return apperr.ErrHasDependents
		}
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// PromoteChildren moves every direct child of id under newParent.
func (s *CategoryStore) PromoteChildren(ctx context.Context, id uuid.UUID, newParent *uuid.UUID) (int64, error) {
	res, err := s.q.ExecContext(ctx,
		`UPDATE categories SET parent_id = $1, updated_at = NOW() WHERE parent_id = $2`,
		newParent, id,
	)
	if err != nil {
		return 0, fmt.Errorf("promote child categories: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("promote child categories: %w", err)
	}
	return n, nil
}

// Dependents counts the children and attached content of a category.
func (s *CategoryStore) Dependents(ctx context.Context, id uuid.UUID) (models.CategoryDependents, error) {
	var d models.CategoryDependents
	err := s.q.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM categories   WHERE parent_id = $1),
			(SELECT COUNT(*) FROM forum_topics WHERE category_id = $1),
			(SELECT COUNT(*) FROM news         WHERE category_id = $1),
			(SELECT COUNT(*) FROM articles     WHERE category_id = $1),
			(SELECT COUNT(*) FROM events       WHERE category_id = $1)
	`, id).Scan(&d.Children, &d.Topics, &d.News, &d.Articles, &d.Events)
	if err != nil {
		return d, fmt.Errorf("count category dependents: %w", err)
	}
	return d, nil
}
