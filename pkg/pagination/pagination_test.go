// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

package pagination_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/souqly/souqly-api/pkg/pagination"
)

/*
TestFromRequest verifies query parsing and clamping of page/limit values.
*/
func TestFromRequest(t *testing.T) {
	cases := []struct {
		name      string
		url       string
		wantPage  int
		wantLimit int
	}{
		{"defaults", "/tags", pagination.DefaultPage, pagination.DefaultLimit},
		{"explicit", "/tags?page=3&limit=50", 3, 50},
		{"zero page clamps", "/tags?page=0", pagination.DefaultPage, pagination.DefaultLimit},
		{"negative page clamps", "/tags?page=-2", pagination.DefaultPage, pagination.DefaultLimit},
		{"excessive limit clamps", "/tags?limit=5000", pagination.DefaultPage, pagination.DefaultLimit},
		{"garbage falls back", "/tags?page=abc&limit=xyz", pagination.DefaultPage, pagination.DefaultLimit},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			request := httptest.NewRequest("GET", c.url, nil)
			params := pagination.FromRequest(request)
			assert.Equal(t, c.wantPage, params.Page)
			assert.Equal(t, c.wantLimit, params.Limit)
		})
	}
}

func TestParams_Offset(t *testing.T) {
	assert.Equal(t, 0, pagination.Params{Page: 1, Limit: 20}.Offset())
	assert.Equal(t, 0, pagination.Params{Page: 0, Limit: 20}.Offset())
	assert.Equal(t, 40, pagination.Params{Page: 3, Limit: 20}.Offset())
}

func TestNewMeta(t *testing.T) {
	meta := pagination.NewMeta(2, 20, 45)
	assert.Equal(t, 3, meta.TotalPages)
	assert.Equal(t, 45, meta.Total)

	// Zero limit must not divide by zero.
	assert.Equal(t, 0, pagination.NewMeta(1, 0, 45).TotalPages)
}
