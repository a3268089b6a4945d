// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

package cache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Key derives a deterministic, namespaced cache key from a filter value.
//
// # Format
//
//	cache:<scope>:<collection>:<subkind>:<digest>
//
// where digest is the MD5 hex of the filter's canonical JSON form. Filters
// that are deeply equal after normalization always produce the same key;
// without that property repeat queries would never hit the cache at all.
//
// # Normalization
//
// The filter is marshaled, decoded into generic maps, stripped of null
// values, and re-marshaled. Go's encoder emits map keys in sorted order, so
// field declaration order and "omitted vs explicit nil" construction
// differences both collapse to one canonical byte sequence. This prevents
// the silent cache fragmentation that per-caller filter shapes would cause.
func Key(scope, collection, subkind string, filter any) string {
	canonical := canonicalJSON(filter)
	digest := md5.Sum(canonical)

	return fmt.Sprintf("cache:%s:%s:%s:%s", scope, collection, subkind, hex.EncodeToString(digest[:]))
}

// Pattern returns the wildcard pattern covering every key in a collection's
// namespace, used for coarse invalidation after mutations.
func Pattern(scope, collection string) string {
	return fmt.Sprintf("cache:%s:%s:*", scope, collection)
}

// canonicalJSON serializes v into a stable byte form.
func canonicalJSON(v any) []byte {
	raw, err := json.Marshal(v)
	if err != nil {
		// A filter struct that cannot marshal is a programming error; the
		// raw error string still yields a deterministic (if useless) key.
		return []byte(err.Error())
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return raw
	}

	normalized := pruneNulls(decoded)

	canonical, err := json.Marshal(normalized)
	if err != nil {
		return raw
	}

	return canonical
}

// pruneNulls removes nil-valued map entries recursively so that an omitted
// optional field and an explicit null serialize identically.
func pruneNulls(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		cleaned := make(map[string]any, len(typed))
		for key, value := range typed {
			if value == nil {
				continue
			}
			cleaned[key] = pruneNulls(value)
		}
		return cleaned
	case []any:
		cleaned := make([]any, len(typed))
		for i, value := range typed {
			cleaned[i] = pruneNulls(value)
		}
		return cleaned
	default:
		return v
	}
}
