// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

package audit

import (
	"context"
	"log/slog"

	"github.com/souqly/souqly-api/internal/platform/ctxutil"
	"github.com/souqly/souqly-api/pkg/pagination"
	"github.com/souqly/souqly-api/pkg/uuidv7"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Record appends one entry to the trail, attributing it to the
// authenticated user on the context.
//
// Recording never fails the caller: a persistence error is logged and
// swallowed, because losing one audit entry is better than failing the
// mutation it describes.
func (service *Service) Record(context context.Context, action, resourceType, resourceID string, detail map[string]any) {
	entry := &Entry{
		ID:           uuidv7.New(),
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Detail:       detail,
	}

	if claims := ctxutil.GetAuthUser(context); claims != nil {
		entry.ActorID = &claims.UserID
		if claims.TenantID != "" {
			tenantID := claims.TenantID
			entry.TenantID = &tenantID
		}
	}

	if err := service.repo.Insert(context, entry); err != nil {
		service.logger.ErrorContext(context, "audit_record_failed",
			slog.String("action", action),
			slog.String("resource_type", resourceType),
			slog.String("resource_id", resourceID),
			slog.String("error", err.Error()),
		)
	}
}

// List returns a page of the trail, newest entries first.
func (service *Service) List(context context.Context, filter ListFilter, params pagination.Params) ([]*Entry, int, error) {
	return service.repo.List(context, filter, params.Limit, params.Offset())
}
