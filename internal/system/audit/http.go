// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

package audit

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/souqly/souqly-api/internal/platform/middleware"
	"github.com/souqly/souqly-api/internal/platform/respond"
	"github.com/souqly/souqly-api/internal/platform/sec"
	"github.com/souqly/souqly-api/pkg/pagination"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the trail. Read-only, admin-only.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Use(middleware.RequireRole(sec.RoleAdmin))

	router.Get("/", handler.list)
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query()

	filter := ListFilter{}
	optional := func(key string) *string {
		if value := query.Get(key); value != "" {
			return &value
		}
		return nil
	}
	filter.ActorID = optional("actor_id")
	filter.TenantID = optional("tenant_id")
	filter.Action = optional("action")
	filter.ResourceType = optional("resource_type")
	filter.ResourceID = optional("resource_id")

	params := pagination.FromRequest(request)

	entries, total, err := handler.service.List(request.Context(), filter, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, entries, pagination.NewMeta(params.Page, params.Limit, total))
}
