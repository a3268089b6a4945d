// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

package tag

import "github.com/souqly/souqly-api/internal/platform/constants"

// ParentLookup resolves a tag ID to its parent ID within the pre-move tree
// state. The second return value is false when the ID is unknown.
type ParentLookup func(id string) (parentID *string, ok bool)

// WouldCreateCycle reports whether reparenting movingID under
// proposedParentID would make the tag its own ancestor.
//
// # Algorithm
//
// A tag can never parent itself, so equal IDs are rejected immediately.
// Otherwise the guard walks upward from the proposed parent; encountering
// movingID anywhere in that ancestor chain means the move would fold the
// tag's own subtree above it. Reaching a root without meeting movingID
// proves the move is safe.
//
// # Contract
//
// Every operation that reassigns a tag's parent MUST call this guard
// against the pre-move state and reject with a structured error on true.
// Because all prior moves were themselves guarded, the walk terminates at
// a root; the explicit depth bound only defends against corrupted data.
func WouldCreateCycle(movingID, proposedParentID string, lookup ParentLookup) bool {
	if movingID == proposedParentID {
		return true
	}

	currentID := proposedParentID
	for i := 0; i < constants.MaxNestingDepth; i++ {
		parentID, ok := lookup(currentID)
		if !ok || parentID == nil {
			return false
		}
		if *parentID == movingID {
			return true
		}
		currentID = *parentID
	}

	// Depth bound exhausted without reaching a root: treat the ancestry as
	// suspect and refuse the move.
	return true
}

// ParentLookupFrom builds a [ParentLookup] over a flat snapshot of tags.
func ParentLookupFrom(flat []*Tag) ParentLookup {
	parents := make(map[string]*string, len(flat))
	for _, t := range flat {
		parents[t.ID] = t.ParentID
	}

	return func(id string) (*string, bool) {
		parentID, ok := parents[id]
		return parentID, ok
	}
}

// Depth returns the number of ancestors above the given tag in the
// snapshot, used to enforce the maximum nesting level on create and move.
func Depth(id string, lookup ParentLookup) int {
	depth := 0
	currentID := id
	for i := 0; i < constants.MaxNestingDepth; i++ {
		parentID, ok := lookup(currentID)
		if !ok || parentID == nil {
			return depth
		}
		depth++
		currentID = *parentID
	}
	return depth
}

// Height returns the number of levels below the given tag in the snapshot.
// A leaf has height zero. Moving a tag carries its whole subtree, so the
// nesting bound must hold for the deepest descendant, not just the tag
// itself.
func Height(id string, flat []*Tag) int {
	children := make(map[string][]string, len(flat))
	for _, t := range flat {
		if t.ParentID != nil {
			children[*t.ParentID] = append(children[*t.ParentID], t.ID)
		}
	}
	return subtreeHeight(id, children, constants.MaxNestingDepth)
}

func subtreeHeight(id string, children map[string][]string, bound int) int {
	if bound == 0 {
		return 0
	}
	height := 0
	for _, childID := range children[id] {
		if h := subtreeHeight(childID, children, bound-1) + 1; h > height {
			height = h
		}
	}
	return height
}
