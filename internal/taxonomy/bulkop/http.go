// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

package bulkop

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/souqly/souqly-api/internal/platform/middleware"
	requestutil "github.com/souqly/souqly-api/internal/platform/request"
	"github.com/souqly/souqly-api/internal/platform/respond"
	"github.com/souqly/souqly-api/internal/platform/sec"
	"github.com/souqly/souqly-api/internal/taxonomy/tag"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the bulk-operation endpoints. Inspection is open
// to any authenticated caller in scope; launching and steering jobs needs
// the operator role.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", handler.list)
	router.Get("/{id}", handler.get)

	router.Group(func(router chi.Router) {
		router.Use(middleware.RequireRole(sec.RoleOperator))

		router.Post("/", handler.start)
		router.Post("/{id}/pause", handler.pause)
		router.Post("/{id}/resume", handler.resume)
		router.Post("/{id}/retry", handler.retry)
	})
}

// scopeFromRequest mirrors the taxonomy scope derivation: tenant-bound
// tokens pin the scope, platform tokens may target a tenant explicitly.
func scopeFromRequest(request *http.Request) (tag.ScopeRef, error) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		return tag.ScopeRef{}, err
	}

	if claims.TenantID != "" {
		return tag.TenantScope(claims.TenantID), nil
	}
	if tenantID := request.URL.Query().Get("tenant_id"); tenantID != "" {
		return tag.TenantScope(tenantID), nil
	}
	return tag.PlatformScope(), nil
}

func (handler *Handler) start(writer http.ResponseWriter, request *http.Request) {
	ref, err := scopeFromRequest(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	actorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input StartInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	op, err := handler.service.Start(request.Context(), ref, actorID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Accepted(writer, op)
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	ref, err := scopeFromRequest(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	operations, err := handler.service.List(request.Context(), ref)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, operations)
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	ref, err := scopeFromRequest(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	op, err := handler.service.Get(request.Context(), ref, requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, op)
}

func (handler *Handler) pause(writer http.ResponseWriter, request *http.Request) {
	handler.steer(writer, request, (*Service).Pause)
}

func (handler *Handler) resume(writer http.ResponseWriter, request *http.Request) {
	handler.steer(writer, request, (*Service).Resume)
}

func (handler *Handler) retry(writer http.ResponseWriter, request *http.Request) {
	handler.steer(writer, request, (*Service).Retry)
}

// steer shares the fetch-and-transition plumbing of pause/resume/retry.
func (handler *Handler) steer(
	writer http.ResponseWriter,
	request *http.Request,
	action func(*Service, context.Context, tag.ScopeRef, string) (*Operation, error),
) {
	ref, err := scopeFromRequest(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	op, err := action(handler.service, request.Context(), ref, requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, op)
}
