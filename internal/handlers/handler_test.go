// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for the handler
// tests: stub services, a miniredis-backed view cache, and a router that
// mounts the handlers the same way the production router does.
package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"alumnihub/internal/apperr"
	"alumnihub/internal/cache"
	"alumnihub/internal/discussion"
	"alumnihub/internal/middleware"
	"alumnihub/internal/models"
	"alumnihub/internal/store"
	"alumnihub/internal/taxonomy"
)

// stubCategories implements CategoryService with overridable funcs.
type stubCategories struct {
	create     func(taxonomy.CreateCategoryInput) (*models.Category, error)
	update     func(uuid.UUID, taxonomy.UpdateCategoryInput) (*models.Category, error)
	reparent   func(uuid.UUID, *uuid.UUID) (*models.Category, error)
	del        func(uuid.UUID, bool) error
	tree       func() ([]models.Category, error)
	breadcrumb func(uuid.UUID) ([]models.Crumb, error)
	treeCalls  int
}

func (s *stubCategories) CreateCategory(_ context.Context, in taxonomy.CreateCategoryInput) (*models.Category, error) {
	return s.create(in)
}

func (s *stubCategories) UpdateCategory(_ context.Context, id uuid.UUID, in taxonomy.UpdateCategoryInput) (*models.Category, error) {
	return s.update(id, in)
}

func (s *stubCategories) ReparentCategory(_ context.Context, id uuid.UUID, p *uuid.UUID) (*models.Category, error) {
	return s.reparent(id, p)
}

func (s *stubCategories) DeleteCategory(_ context.Context, id uuid.UUID, force bool) error {
	return s.del(id, force)
}

func (s *stubCategories) Get(_ context.Context, id uuid.UUID) (*models.Category, error) {
	return nil, apperr.NotFoundf("category %s not found", id)
}

func (s *stubCategories) GetBySlug(_ context.Context, slug string) (*models.Category, error) {
	return &models.Category{ID: uuid.New(), Name: "Careers", Slug: slug}, nil
}

func (s *stubCategories) Tree(context.Context) ([]models.Category, error) {
	s.treeCalls++
	return s.tree()
}

func (s *stubCategories) FlatTree(context.Context) ([]models.Category, error) {
	return []models.Category{}, nil
}

func (s *stubCategories) Breadcrumb(_ context.Context, id uuid.UUID) ([]models.Crumb, error) {
	return s.breadcrumb(id)
}

// stubForum implements DiscussionService, recording the actor it saw.
type stubForum struct {
	actor      models.Actor
	createPost func(topicID uuid.UUID, content string, parentID *uuid.UUID) (*models.ForumPost, error)
	deletePost func(uuid.UUID) error
	listPosts  func(uuid.UUID, models.ListMode, int, int) (*models.PostPage, error)
	toggleErr  error
}

func (s *stubForum) CreateTopic(_ context.Context, actor models.Actor, in discussion.CreateTopicInput) (*models.ForumTopic, error) {
	s.actor = actor
	return &models.ForumTopic{ID: uuid.New(), Title: in.Title, Content: in.Content, AuthorID: actor.ID}, nil
}

func (s *stubForum) GetTopic(_ context.Context, id uuid.UUID) (*models.ForumTopic, error) {
	return &models.ForumTopic{ID: id, Title: "Reunion 2026"}, nil
}

func (s *stubForum) ToggleClosed(_ context.Context, id uuid.UUID, actor models.Actor) (*models.ForumTopic, error) {
	s.actor = actor
	if s.toggleErr != nil {
		return nil, s.toggleErr
	}
	return &models.ForumTopic{ID: id, IsClosed: true}, nil
}

func (s *stubForum) TogglePinned(_ context.Context, id uuid.UUID, actor models.Actor) (*models.ForumTopic, error) {
	s.actor = actor
	if s.toggleErr != nil {
		return nil, s.toggleErr
	}
	return &models.ForumTopic{ID: id, IsPinned: true}, nil
}

func (s *stubForum) CreatePost(_ context.Context, topicID uuid.UUID, actor models.Actor, content string, parentID *uuid.UUID) (*models.ForumPost, error) {
	s.actor = actor
	return s.createPost(topicID, content, parentID)
}

func (s *stubForum) UpdatePost(_ context.Context, id uuid.UUID, actor models.Actor, content string) (*models.ForumPost, error) {
	s.actor = actor
	return &models.ForumPost{ID: id, Content: content, AuthorID: actor.ID}, nil
}

func (s *stubForum) DeletePost(_ context.Context, id uuid.UUID, actor models.Actor) error {
	s.actor = actor
	return s.deletePost(id)
}

func (s *stubForum) AddComment(_ context.Context, postID uuid.UUID, actor models.Actor, content string) (*models.ForumComment, error) {
	s.actor = actor
	return &models.ForumComment{ID: uuid.New(), PostID: postID, AuthorID: actor.ID, Content: content}, nil
}

func (s *stubForum) ListPosts(_ context.Context, topicID uuid.UUID, mode models.ListMode, page, pageSize int) (*models.PostPage, error) {
	return s.listPosts(topicID, mode, page, pageSize)
}

// stubRankings implements RankingService and counts engine calls.
type stubRankings struct {
	trendingCalls int
	tagCalls      int
	gotWindow     int
	gotLimit      int
	err           error
}

func (s *stubRankings) TrendingTopics(_ context.Context, windowDays, limit int) ([]models.TrendingTopic, error) {
	s.trendingCalls++
	s.gotWindow, s.gotLimit = windowDays, limit
	if s.err != nil {
		return nil, s.err
	}
	return []models.TrendingTopic{{ForumTopic: models.ForumTopic{ID: uuid.New(), Title: "Mentoring"}, Score: 4, PostCount: 2, CommentCount: 2}}, nil
}

func (s *stubRankings) PopularTags(_ context.Context, limit int) ([]models.PopularTag, error) {
	s.tagCalls++
	s.gotLimit = limit
	if s.err != nil {
		return nil, s.err
	}
	return []models.PopularTag{{Tag: models.Tag{ID: uuid.New(), Name: "ai", Slug: "ai"}, Score: 3, News: 2, Articles: 1}}, nil
}

// logEntry is one recorded invalidation.
type logEntry struct {
	entityType string
	id         uuid.UUID
	action     string
}

// memLog implements InvalidationLog and CacheLogReader in memory.
type memLog struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *memLog) Log(_ context.Context, entityType string, id uuid.UUID, action string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{entityType, id, action})
}

func (l *memLog) RecentEntries(_ context.Context, limit int) ([]store.CacheLogEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := []store.CacheLogEntry{}
	for i := len(l.entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := l.entries[i]
		out = append(out, store.CacheLogEntry{
			ID:            int64(i + 1),
			EntityType:    e.entityType,
			EntityID:      e.id,
			Action:        e.action,
			InvalidatedAt: time.Now(),
		})
	}
	return out, nil
}

// testViews returns a view cache backed by miniredis.
func testViews(t *testing.T) (*cache.ViewCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return cache.NewViewCache(client, time.Minute), mr
}

// testServer wires the handler groups onto a chi router.
type testServer struct {
	categories *stubCategories
	forum      *stubForum
	rankings   *stubRankings
	log        *memLog
	views      *cache.ViewCache
	mr         *miniredis.Miniredis
	router     http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	views, mr := testViews(t)
	ts := &testServer{
		categories: &stubCategories{},
		forum:      &stubForum{},
		rankings:   &stubRankings{},
		log:        &memLog{},
		views:      views,
		mr:         mr,
	}

	cats := NewCategories(ts.categories, views, ts.log)
	forum := NewForum(ts.forum, views, ts.log)
	ranks := NewRankings(ts.rankings, views)
	admin := NewAdmin(ts.log)

	r := chi.NewRouter()
	r.Use(middleware.LoadActor)
	r.Route("/api", func(r chi.Router) {
		r.Get("/categories/tree", cats.Tree)
		r.Get("/categories/slug/{slug}", cats.GetBySlug)
		r.Get("/categories/{id}", cats.Get)
		r.Get("/categories/{id}/breadcrumb", cats.Breadcrumb)
		r.Get("/topics/{id}", forum.GetTopic)
		r.Get("/topics/{id}/posts", forum.ListPosts)
		r.Get("/trending/topics", ranks.TrendingTopics)
		r.Get("/tags/popular", ranks.PopularTags)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireActor)
			r.Post("/topics", forum.CreateTopic)
			r.Post("/topics/{id}/close", forum.ToggleClosed)
			r.Post("/topics/{id}/pin", forum.TogglePinned)
			r.Post("/topics/{id}/posts", forum.CreatePost)
			r.Patch("/posts/{id}", forum.UpdatePost)
			r.Delete("/posts/{id}", forum.DeletePost)
			r.Post("/posts/{id}/comments", forum.AddComment)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Post("/categories", cats.Create)
			r.Patch("/categories/{id}", cats.Update)
			r.Put("/categories/{id}/parent", cats.Reparent)
			r.Delete("/categories/{id}", cats.Delete)
			r.Get("/admin/cache-log", admin.CacheLog)
		})
	})
	ts.router = r
	return ts
}

// as identifies the caller of a test request.
type as struct {
	id    uuid.UUID
	admin bool
}

var anonymous = as{}

func (ts *testServer) do(t *testing.T, who as, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if who.id != uuid.Nil {
		req.Header.Set(middleware.ActorIDHeader, who.id.String())
		if who.admin {
			req.Header.Set(middleware.ActorRoleHeader, "admin")
		}
	}
	rr := httptest.NewRecorder()
	ts.router.ServeHTTP(rr, req)
	return rr
}

// envelope mirrors response.Envelope with a raw data payload.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *apperr.Error   `json:"error"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), "body: %s", rr.Body.String())
	return env
}

// dataAs decodes the envelope data into dst.
func dataAs(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	env := decodeEnvelope(t, rr)
	require.True(t, env.Success, "body: %s", rr.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

// errorCode returns the error code of a failed response.
func errorCode(t *testing.T, rr *httptest.ResponseRecorder) apperr.Code {
	t.Helper()
	env := decodeEnvelope(t, rr)
	require.NotNil(t, env.Error, "body: %s", rr.Body.String())
	return env.Error.Code
}
