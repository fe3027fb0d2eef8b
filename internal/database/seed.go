// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"alumnihub/internal/slug"
)

// seedCategory is a category to create in development, with its children.
type seedCategory struct {
	name        string
	description string
	children    []seedCategory
}

var defaultCategories = []seedCategory{
	{name: "General", description: "Announcements and open discussion"},
	{name: "Networking", description: "Meet fellow alumni", children: []seedCategory{
		{name: "Online Events", description: "Webinars and virtual meetups"},
		{name: "Regional Chapters", description: "Local alumni groups"},
	}},
	{name: "Careers", description: "Jobs, mentoring and career advice", children: []seedCategory{
		{name: "Job Board"},
		{name: "Mentoring"},
	}},
}

var defaultTags = []string{"Reunion", "AI", "Careers", "Research", "Sports"}

// Seed populates an empty database with a starter category tree and tag
// set for development. It does nothing when categories already exist.
func Seed(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}
	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed begin tx: %w", err)
	}
	defer tx.Rollback()

	n, err := seedCategories(ctx, tx, defaultCategories, nil)
	if err != nil {
		return err
	}

	for _, name := range defaultTags {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO tags (name, slug) VALUES ($1, $2) ON CONFLICT (slug) DO NOTHING`,
			name, slug.Generate(name),
		); err != nil {
			return fmt.Errorf("seed tag %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded", "categories", n, "tags", len(defaultTags))
	return nil
}

func seedCategories(ctx context.Context, tx *sql.Tx, cats []seedCategory, parentID *string) (int, error) {
	total := 0
	for _, c := range cats {
		var id string
		err := tx.QueryRowContext(ctx, `
			INSERT INTO categories (name, slug, description, parent_id)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			c.name, slug.Generate(c.name), c.description, parentID,
		).Scan(&id)
		if err != nil {
			return total, fmt.Errorf("seed category %q: %w", c.name, err)
		}
		total++

		n, err := seedCategories(ctx, tx, c.children, &id)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
