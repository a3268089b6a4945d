// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

package tenant

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/souqly/souqly-api/internal/platform/middleware"
	requestutil "github.com/souqly/souqly-api/internal/platform/request"
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

// RegisterRoutes mounts the tenant directory. The whole surface is
// platform administration, so every route requires the admin role; the
// role middleware is applied by the API server when mounting.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Use(middleware.RequireRole(sec.RoleAdmin))

	router.Get("/", handler.list)
	router.Post("/", handler.create)
	router.Get("/{id}", handler.get)
	router.Get("/by-slug/{slug}", handler.getBySlug)
	router.Patch("/{id}", handler.update)
	router.Delete("/{id}", handler.remove)
	router.Post("/{id}/suspend", handler.suspend)
	router.Post("/{id}/reinstate", handler.reinstate)
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	filter := ListFilter{}
	if search := request.URL.Query().Get("search"); search != "" {
		filter.Search = &search
	}
	if status := request.URL.Query().Get("status"); status != "" {
		s := Status(status)
		filter.Status = &s
	}
	if plan := request.URL.Query().Get("plan"); plan != "" {
		p := Plan(plan)
		filter.Plan = &p
	}

	tenants, err := handler.service.List(request.Context(), filter)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)
	total := len(tenants)
	start := min(params.Offset(), total)
	end := min(start+params.Limit, total)

	respond.Paginated(writer, tenants[start:end], pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	t, err := handler.service.Get(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, t)
}

func (handler *Handler) getBySlug(writer http.ResponseWriter, request *http.Request) {
	t, err := handler.service.GetBySlug(request.Context(), requestutil.Param(request, "slug"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, t)
}

func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input CreateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	t, err := handler.service.Create(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, t)
}

func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	var input UpdateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	t, err := handler.service.Update(request.Context(), requestutil.Param(request, "id"), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, t)
}

func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.Delete(request.Context(), requestutil.Param(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) suspend(writer http.ResponseWriter, request *http.Request) {
	t, err := handler.service.Suspend(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, t)
}

func (handler *Handler) reinstate(writer http.ResponseWriter, request *http.Request) {
	t, err := handler.service.Reinstate(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, t)
}
