// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

package tag

import "strings"

// MergeScopes combines a scope's own tags with the broader-scope tags it
// has explicitly opted into.
//
// De-duplication is by tag identity, never by name: a tenant tag named
// "Design" and an adopted platform tag also named "Design" are distinct
// entries. When the same identity appears in both sets the own record takes
// precedence. Every tag in the inherited set is annotated with its
// provenance so callers can render origin without a second query.
func MergeScopes(own, inherited []*Tag) []*Tag {
	merged := make([]*Tag, 0, len(own)+len(inherited))
	seen := make(map[string]struct{}, len(own))

	for _, t := range own {
		ownCopy := *t
		ownCopy.InheritedFrom = nil
		merged = append(merged, &ownCopy)
		seen[t.ID] = struct{}{}
	}

	platform := ScopePlatform
	for _, t := range inherited {
		if _, dup := seen[t.ID]; dup {
			continue
		}
		inheritedCopy := *t
		inheritedCopy.InheritedFrom = &platform
		merged = append(merged, &inheritedCopy)
		seen[t.ID] = struct{}{}
	}

	return merged
}

// Filter applies the search and category filters of [ResolveOptions] to a
// merged tag set.
//
// Search is a case-insensitive substring match against name, slug, and
// description; category is an exact match. Filtering happens after the
// merge so inherited and own tags are treated uniformly.
func Filter(tags []*Tag, opts ResolveOptions) []*Tag {
	if opts.Search == nil && opts.Category == nil {
		return tags
	}

	var needle string
	if opts.Search != nil {
		needle = strings.ToLower(strings.TrimSpace(*opts.Search))
	}

	filtered := make([]*Tag, 0, len(tags))
	for _, t := range tags {
		if opts.Category != nil && (t.Category == nil || *t.Category != *opts.Category) {
			continue
		}
		if needle != "" && !matchesSearch(t, needle) {
			continue
		}
		filtered = append(filtered, t)
	}

	return filtered
}

// matchesSearch reports whether the lowercased needle occurs in the tag's
// name, slug, or description.
func matchesSearch(t *Tag, needle string) bool {
	if strings.Contains(strings.ToLower(t.Name), needle) {
		return true
	}
	if strings.Contains(t.Slug, needle) {
		return true
	}
	if t.Description != nil && strings.Contains(strings.ToLower(*t.Description), needle) {
		return true
	}
	return false
}
