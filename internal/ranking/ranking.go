// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package ranking computes the trending-topics and popular-tags listings.
package ranking

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"alumnihub/internal/apperr"
	"alumnihub/internal/models"
)

// Defaults and bounds for listing parameters.
const (
	DefaultWindowDays = 7
	DefaultLimit      = 10
	MaxLimit          = 100
)

// Repository supplies the raw counts the rankings are computed from.
type Repository interface {
	// TopicActivity returns every topic whose last activity falls in
	// [since, until], with the posts and comments created in that range.
	TopicActivity(ctx context.Context, since, until time.Time) ([]models.TopicActivity, error)
	// TagAssociationCounts returns how many items of one relation each tag
	// is attached to. Tags with no associations may be omitted.
	TagAssociationCounts(ctx context.Context, rel models.TagRelation) (map[uuid.UUID]int, error)
	// ListTags returns every tag in a stable order.
	ListTags(ctx context.Context) ([]models.Tag, error)
}

// Engine ranks topics and tags.
type Engine struct {
	repo Repository
	now  func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source used to compute the window start.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine returns an Engine reading from repo.
func NewEngine(repo Repository, opts ...Option) *Engine {
	e := &Engine{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func checkLimit(limit int) error {
	if limit < 1 || limit > MaxLimit {
		return apperr.ValidationWithDetails("validation failed",
			map[string]string{"limit": fmt.Sprintf("must be between 1 and %d", MaxLimit)})
	}
	return nil
}

// TrendingTopics returns up to limit topics ranked by the number of posts
// and comments created in the last windowDays days. Ties go to pinned
// topics, then to the most recent activity. A topic touched inside the
// window without new posts or comments (a pin toggle, say) is listed with
// score 0.
func (e *Engine) TrendingTopics(ctx context.Context, windowDays, limit int) ([]models.TrendingTopic, error) {
	if windowDays < 1 {
		return nil, apperr.ValidationWithDetails("validation failed",
			map[string]string{"window_days": "must be greater than or equal to 1"})
	}
	if err := checkLimit(limit); err != nil {
		return nil, err
	}

	until := e.now()
	since := until.AddDate(0, 0, -windowDays)
	rows, err := e.repo.TopicActivity(ctx, since, until)
	if err != nil {
		return nil, fmt.Errorf("load topic activity: %w", err)
	}

	ranked := make([]models.TrendingTopic, 0, len(rows))
	for _, r := range rows {
		ranked = append(ranked, models.TrendingTopic{
			ForumTopic:   r.Topic,
			Score:        r.PostCount + r.CommentCount,
			PostCount:    r.PostCount,
			CommentCount: r.CommentCount,
		})
	}

	slices.SortFunc(ranked, compareTrending)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

func compareTrending(a, b models.TrendingTopic) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	if a.IsPinned != b.IsPinned {
		if a.IsPinned {
			return -1
		}
		return 1
	}
	if c := b.LastActivityAt.Compare(a.LastActivityAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID.String(), b.ID.String())
}

// PopularTags returns up to limit tags ranked by their total number of
// associations across news, articles, and galleries. Tags with equal
// scores keep the order ListTags returned them in.
func (e *Engine) PopularTags(ctx context.Context, limit int) ([]models.PopularTag, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}

	var (
		tags   []models.Tag
		counts = make([]map[uuid.UUID]int, len(models.TagRelations))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tags, err = e.repo.ListTags(gctx)
		if err != nil {
			return fmt.Errorf("list tags: %w", err)
		}
		return nil
	})
	for i, rel := range models.TagRelations {
		g.Go(func() error {
			m, err := e.repo.TagAssociationCounts(gctx, rel)
			if err != nil {
				return fmt.Errorf("count %s tags: %w", rel, err)
			}
			counts[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ranked := make([]models.PopularTag, len(tags))
	for i, t := range tags {
		pt := models.PopularTag{Tag: t}
		for j, rel := range models.TagRelations {
			n := counts[j][t.ID]
			switch rel {
			case models.TagRelationNews:
				pt.News = n
			case models.TagRelationArticles:
				pt.Articles = n
			case models.TagRelationGalleries:
				pt.Galleries = n
			}
			pt.Score += n
		}
		ranked[i] = pt
	}

	slices.SortStableFunc(ranked, func(a, b models.PopularTag) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}
