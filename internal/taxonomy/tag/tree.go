// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

package tag

import "sort"

// BuildTree converts a flat tag list into the nested hierarchy view.
//
// Children are pre-indexed by parent ID, so construction is O(n log n)
// (the log factor from sibling sorting) rather than the O(n²) a per-node
// scan of the flat list would cost. Tag taxonomies are hundreds of nodes,
// not millions, but tree builds sit behind every taxonomy page load.
//
// Each node carries its depth level (0 for roots) and root-to-node path of
// names. Children is left nil, not an empty slice, for leaves. Siblings are
// sorted by name for a deterministic UI order. Nodes whose parent is absent
// from the input are not reachable from the roots and are dropped.
func BuildTree(flat []*Tag) []*TreeNode {
	byParent := make(map[string][]*Tag)
	for _, t := range flat {
		parentKey := ""
		if t.ParentID != nil {
			parentKey = *t.ParentID
		}
		byParent[parentKey] = append(byParent[parentKey], t)
	}

	for _, siblings := range byParent {
		sort.Slice(siblings, func(i, j int) bool {
			return siblings[i].Name < siblings[j].Name
		})
	}

	return buildSubtree(byParent, "", 0, nil)
}

// buildSubtree assembles the children of parentKey recursively.
func buildSubtree(byParent map[string][]*Tag, parentKey string, level int, path []string) []*TreeNode {
	siblings := byParent[parentKey]
	if len(siblings) == 0 {
		return nil
	}

	nodes := make([]*TreeNode, 0, len(siblings))
	for _, t := range siblings {
		nodePath := make([]string, 0, len(path)+1)
		nodePath = append(nodePath, path...)
		nodePath = append(nodePath, t.Name)

		node := &TreeNode{
			Tag:   *t,
			Level: level,
			Path:  nodePath,
		}
		node.Children = buildSubtree(byParent, t.ID, level+1, nodePath)
		nodes = append(nodes, node)
	}

	return nodes
}

// Flatten walks a tree depth-first and returns the contained tags.
//
// It is the inverse of [BuildTree] up to ordering: the returned set of tag
// identities equals the set the tree was built from.
func Flatten(nodes []*TreeNode) []*Tag {
	var flat []*Tag
	for _, node := range nodes {
		t := node.Tag
		flat = append(flat, &t)
		flat = append(flat, Flatten(node.Children)...)
	}
	return flat
}
