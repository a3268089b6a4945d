// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

// Package uuidv7 wraps google/uuid to generate time-ordered UUIDv7 values.
//
// # Why UUIDv7?
//
// All Souqly tables use UUIDv7 primary keys. Time-sortable identifiers keep
// inserts clustered-index friendly in PostgreSQL, avoiding the index
// fragmentation that random UUIDv4 keys cause.
package uuidv7

import "github.com/google/uuid"

// New generates a new UUIDv7 string.
//
// # Safety
//
// It panics only if the OS random source is unavailable, which is an
// unrecoverable system-level failure.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("uuidv7: failed to generate UUID: " + err.Error())
	}

	return id.String()
}
