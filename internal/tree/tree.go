// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package tree implements the adjacency-list algorithms shared by the
// category taxonomy and the forum post threads: descendant collection by
// frontier expansion, cycle checks for reparenting, upward walks for
// breadcrumbs, and forest materialization from a flat row set.
//
// Nothing here holds state between calls. Every function works on a
// snapshot supplied by the caller, usually read inside the same
// transaction that will commit the resulting write.
package tree

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrCycle is returned by CheckReparent when the new parent is the node
// itself or one of its descendants.
var ErrCycle = errors.New("tree: reparent would create a cycle")

// ErrStartNotFound is returned by WalkUp when the starting node does not
// resolve.
var ErrStartNotFound = errors.New("tree: start node not found")

// Edge is the structural part of a row: its id and optional parent.
type Edge struct {
	ID       uuid.UUID
	ParentID *uuid.UUID
}

// ChildLister fetches every row whose parent is one of parentIDs in a
// single round trip.
type ChildLister interface {
	ChildEdges(ctx context.Context, parentIDs []uuid.UUID) ([]Edge, error)
}

// IDSet is a set of node ids.
type IDSet map[uuid.UUID]struct{}

// Has reports whether id is in the set.
func (s IDSet) Has(id uuid.UUID) bool {
	_, ok := s[id]
	return ok
}

// Descendants returns the ids of every node below root. The walk expands
// one level per query and visits each node at most once, so it terminates
// even if the stored graph already contains a cycle.
func Descendants(ctx context.Context, l ChildLister, root uuid.UUID) (IDSet, error) {
	visited := IDSet{}
	frontier := []uuid.UUID{root}

	for len(frontier) > 0 {
		edges, err := l.ChildEdges(ctx, frontier)
		if err != nil {
			return nil, fmt.Errorf("expand frontier: %w", err)
		}

		var next []uuid.UUID
		for _, e := range edges {
			if e.ID == root || visited.Has(e.ID) {
				continue
			}
			visited[e.ID] = struct{}{}
			next = append(next, e.ID)
		}
		frontier = next
	}

	return visited, nil
}

// CheckReparent returns ErrCycle if moving id under newParent would make
// id its own ancestor. A nil newParent (move to root) is always safe.
func CheckReparent(ctx context.Context, l ChildLister, id uuid.UUID, newParent *uuid.UUID) error {
	if newParent == nil {
		return nil
	}
	if *newParent == id {
		return ErrCycle
	}

	below, err := Descendants(ctx, l, id)
	if err != nil {
		return err
	}
	if below.Has(*newParent) {
		return ErrCycle
	}
	return nil
}

// WalkUp follows parent pointers from start to the root and returns the
// visited nodes root first. load reports found=false for ids that do not
// resolve: at start that is ErrStartNotFound, further up it ends the walk
// with the partial path. A revisited id also ends the walk.
func WalkUp[T any](
	ctx context.Context,
	start uuid.UUID,
	load func(ctx context.Context, id uuid.UUID) (T, bool, error),
	parentOf func(T) *uuid.UUID,
) ([]T, error) {
	var reversed []T
	seen := IDSet{}

	cur := &start
	for cur != nil {
		if seen.Has(*cur) {
			break
		}
		seen[*cur] = struct{}{}

		node, found, err := load(ctx, *cur)
		if err != nil {
			return nil, fmt.Errorf("load ancestor %s: %w", *cur, err)
		}
		if !found {
			if len(reversed) == 0 {
				return nil, ErrStartNotFound
			}
			break
		}

		reversed = append(reversed, node)
		cur = parentOf(node)
	}

	path := make([]T, len(reversed))
	for i, n := range reversed {
		path[len(reversed)-1-i] = n
	}
	return path, nil
}

// BuildForest materializes a flat row set into nested trees. Roots are the
// rows without a parent; rows whose parent is missing from the set are
// left out, as are rows only reachable through a cycle. attach receives
// each node together with its finished children and its depth (roots are
// depth 0). Sibling order follows the input order.
func BuildForest[T any](
	nodes []T,
	idOf func(T) uuid.UUID,
	parentOf func(T) *uuid.UUID,
	attach func(node *T, children []T, depth int),
) []T {
	byParent := make(map[uuid.UUID][]int, len(nodes))
	var roots []int
	for i, n := range nodes {
		if p := parentOf(n); p != nil {
			byParent[*p] = append(byParent[*p], i)
		} else {
			roots = append(roots, i)
		}
	}

	placed := make(map[uuid.UUID]bool, len(nodes))

	var build func(idxs []int, depth int) []T
	build = func(idxs []int, depth int) []T {
		out := make([]T, 0, len(idxs))
		for _, i := range idxs {
			n := nodes[i]
			id := idOf(n)
			if placed[id] {
				continue
			}
			placed[id] = true

			children := build(byParent[id], depth+1)
			attach(&n, children, depth)
			out = append(out, n)
		}
		return out
	}

	return build(roots, 0)
}

// Flatten walks a forest depth-first and returns every node in display
// order. children extracts a node's nested children.
func Flatten[T any](forest []T, children func(T) []T) []T {
	var result []T
	var walk func([]T)
	walk = func(level []T) {
		for _, n := range level {
			result = append(result, n)
			if kids := children(n); len(kids) > 0 {
				walk(kids)
			}
		}
	}
	walk(forest)
	return result
}
