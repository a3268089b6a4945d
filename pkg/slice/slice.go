// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

// Package slice complements the standard [slices] package with generic
// functional helpers (Map, Filter).
package slice

// Map transforms a slice of type T into a slice of type U.
func Map[T any, U any](input []T, transform func(T) U) []U {
	if input == nil {
		return nil
	}

	result := make([]U, len(input))
	for i, v := range input {
		result[i] = transform(v)
	}

	return result
}

// Filter returns the elements of input for which the predicate is true.
func Filter[T any](input []T, predicate func(T) bool) []T {
	if input == nil {
		return nil
	}

	// Not pre-allocated: heavy filters would waste memory otherwise.
	var result []T
	for _, v := range input {
		if predicate(v) {
			result = append(result, v)
		}
	}

	return result
}
