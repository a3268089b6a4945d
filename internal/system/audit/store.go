// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

package audit

import "context"

// Repository defines the persistence contract for the audit trail.
//
// Insert is the only write; the trail has no update or delete path.
type Repository interface {
	Insert(context context.Context, entry *Entry) error
	List(context context.Context, filter ListFilter, limit, offset int) ([]*Entry, int, error)
}
