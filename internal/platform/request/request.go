// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts the underlying router's parameter extraction and common body
decoding patterns, ensuring consistent error handling across handlers.
*/
package requestutil

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/souqly/souqly-api/internal/platform/apperr"
	"github.com/souqly/souqly-api/internal/platform/ctxutil"
	"github.com/souqly/souqly-api/internal/platform/sec"
	"github.com/souqly/souqly-api/internal/platform/validate"
)

// DecodeJSON reads the request body and decodes it into the target structure.
// It returns validate.ErrInvalidJSON if decoding fails.
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

// Param retrieves a named URL parameter (UUID/slug) from the request.
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

// Claims extracts the authenticated user claims from the request context.
// Returns nil if the request is anonymous.
func Claims(request *http.Request) *sec.AuthClaims {
	return ctxutil.GetAuthUser(request.Context())
}

// RequiredClaims ensures the request is authenticated and returns the claims.
func RequiredClaims(request *http.Request) (*sec.AuthClaims, error) {
	claims := ctxutil.GetAuthUser(request.Context())
	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}

	return claims, nil
}

// RequiredUserID returns the user ID of the currently authenticated caller.
func RequiredUserID(request *http.Request) (string, error) {
	claims, err := RequiredClaims(request)
	if err != nil {
		return "", err
	}

	return claims.UserID, nil
}
