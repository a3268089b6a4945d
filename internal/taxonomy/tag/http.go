// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

package tag

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/souqly/souqly-api/internal/platform/middleware"
	requestutil "github.com/souqly/souqly-api/internal/platform/request"
	"github.com/souqly/souqly-api/internal/platform/respond"
	"github.com/souqly/souqly-api/internal/platform/sec"
	"github.com/souqly/souqly-api/pkg/convert"
	"github.com/souqly/souqly-api/pkg/pagination"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the taxonomy endpoints. Reads are open to any
// authenticated caller; writes need the operator role and inheritance
// management needs admin.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", handler.list)
	router.Get("/tree", handler.tree)
	router.Get("/{id}", handler.get)

	router.Group(func(router chi.Router) {
		router.Use(middleware.RequireRole(sec.RoleOperator))

		router.Post("/", handler.create)
		router.Patch("/{id}", handler.update)
		router.Patch("/{id}/parent", handler.move)
		router.Delete("/{id}", handler.remove)
		router.Post("/{id}/activate", handler.activate)
		router.Post("/{id}/deactivate", handler.deactivate)
		router.Post("/{id}/entities", handler.attachEntity)
		router.Delete("/{id}/entities/{entityType}/{entityID}", handler.detachEntity)
	})

	router.Group(func(router chi.Router) {
		router.Use(middleware.RequireRole(sec.RoleAdmin))

		router.Post("/{id}/inherit", handler.adopt)
		router.Delete("/{id}/inherit/{tenantID}", handler.unadopt)
	})
}

// scopeFromRequest derives the caller's scope reference. Tenant-bound
// tokens pin the scope; platform tokens default to the shared catalog but
// may act inside a tenant via the tenant_id query parameter.
func scopeFromRequest(request *http.Request) (ScopeRef, error) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		return ScopeRef{}, err
	}

	if claims.TenantID != "" {
		return TenantScope(claims.TenantID), nil
	}
	if tenantID := request.URL.Query().Get("tenant_id"); tenantID != "" {
		return TenantScope(tenantID), nil
	}
	return PlatformScope(), nil
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	ref, err := scopeFromRequest(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	opts := ResolveOptions{
		IncludeInherited: convert.ToBool(request.URL.Query().Get("include_inherited")),
	}
	if search := request.URL.Query().Get("search"); search != "" {
		opts.Search = &search
	}
	if category := request.URL.Query().Get("category"); category != "" {
		opts.Category = &category
	}

	tags, err := handler.service.Resolve(request.Context(), ref, opts)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// Resolution and merging need the full set, so pagination slices the
	// cached result rather than pushing LIMIT into the query.
	params := pagination.FromRequest(request)
	total := len(tags)
	start := min(params.Offset(), total)
	end := min(start+params.Limit, total)

	respond.Paginated(writer, tags[start:end], pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) tree(writer http.ResponseWriter, request *http.Request) {
	ref, err := scopeFromRequest(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	includeInherited := convert.ToBool(request.URL.Query().Get("include_inherited"))

	nodes, err := handler.service.Tree(request.Context(), ref, includeInherited)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, nodes)
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	ref, err := scopeFromRequest(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	t, err := handler.service.Get(request.Context(), ref, requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, t)
}

func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	ref, err := scopeFromRequest(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input CreateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	t, err := handler.service.Create(request.Context(), ref, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, t)
}

func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	ref, err := scopeFromRequest(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input UpdateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	t, err := handler.service.Update(request.Context(), ref, requestutil.Param(request, "id"), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, t)
}

func (handler *Handler) move(writer http.ResponseWriter, request *http.Request) {
	ref, err := scopeFromRequest(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input struct {
		ParentID *string `json:"parent_id"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	t, err := handler.service.Move(request.Context(), ref, requestutil.Param(request, "id"), input.ParentID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, t)
}

func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	ref, err := scopeFromRequest(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Delete(request.Context(), ref, requestutil.Param(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) activate(writer http.ResponseWriter, request *http.Request) {
	handler.setActive(writer, request, true)
}

func (handler *Handler) deactivate(writer http.ResponseWriter, request *http.Request) {
	handler.setActive(writer, request, false)
}

func (handler *Handler) setActive(writer http.ResponseWriter, request *http.Request, active bool) {
	ref, err := scopeFromRequest(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	t, err := handler.service.SetActive(request.Context(), ref, requestutil.Param(request, "id"), active)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, t)
}

func (handler *Handler) adopt(writer http.ResponseWriter, request *http.Request) {
	var input struct {
		TenantID string `json:"tenant_id"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err := handler.service.Adopt(request.Context(), requestutil.Param(request, "id"), input.TenantID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) unadopt(writer http.ResponseWriter, request *http.Request) {
	err := handler.service.Unadopt(request.Context(),
		requestutil.Param(request, "id"), requestutil.Param(request, "tenantID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) attachEntity(writer http.ResponseWriter, request *http.Request) {
	ref, err := scopeFromRequest(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input struct {
		EntityType string `json:"entity_type"`
		EntityID   string `json:"entity_id"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	link, err := handler.service.AttachEntity(request.Context(), ref,
		requestutil.Param(request, "id"), input.EntityType, input.EntityID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, link)
}

func (handler *Handler) detachEntity(writer http.ResponseWriter, request *http.Request) {
	ref, err := scopeFromRequest(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.service.DetachEntity(request.Context(), ref,
		requestutil.Param(request, "id"),
		requestutil.Param(request, "entityType"),
		requestutil.Param(request, "entityID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
