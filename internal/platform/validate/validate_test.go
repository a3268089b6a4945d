// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

package validate_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/souqly/souqly-api/internal/platform/apperr"
	"github.com/souqly/souqly-api/internal/platform/validate"
)

/*
TestValidator_Chaining verifies that rules accumulate across a fluent chain
and surface as one VALIDATION_ERROR with per-field details.
*/
func TestValidator_Chaining(t *testing.T) {
	v := &validate.Validator{}
	v.Required("name", "").
		MaxLen("description", "this is far too long", 5).
		OneOf("plan", "platinum", "free", "pro", "enterprise")

	err := v.Err()
	require.Error(t, err)

	var appError *apperr.AppError
	require.True(t, errors.As(err, &appError))
	assert.Equal(t, "VALIDATION_ERROR", appError.Code)
	assert.Len(t, appError.Details, 3)

	fields := make([]string, 0, len(appError.Details))
	for _, detail := range appError.Details {
		fields = append(fields, detail.Field)
	}
	assert.ElementsMatch(t, []string{"name", "description", "plan"}, fields)
}

/*
TestValidator_PassingChain verifies a fully valid chain returns nil.
*/
func TestValidator_PassingChain(t *testing.T) {
	v := &validate.Validator{}
	v.Required("name", "Handmade").
		MaxLen("name", "Handmade", 100).
		Slug("slug", "handmade-goods").
		Email("email", "ops@souqly.app").
		UUID("id", "01936b2a-5555-7aaa-bbbb-0123456789ab").
		Range("limit", 20, 1, 100)

	assert.NoError(t, v.Err())
	assert.False(t, v.HasErrors())
}

func TestValidator_Slug(t *testing.T) {
	cases := []struct {
		value string
		valid bool
	}{
		{"handmade", true},
		{"handmade-goods-2", true},
		{"Handmade", false},
		{"-leading", false},
		{"trailing-", false},
		{"two--hyphens", false},
		{"", false},
	}

	for _, c := range cases {
		v := &validate.Validator{}
		v.Slug("slug", c.value)
		if c.valid {
			assert.NoError(t, v.Err(), "expected %q to be a valid slug", c.value)
		} else {
			assert.Error(t, v.Err(), "expected %q to be rejected", c.value)
		}
	}
}

func TestValidator_UUID(t *testing.T) {
	v := &validate.Validator{}

	// Uppercase input is accepted; the matcher lowercases first.
	v.UUID("id", "01936B2A-5555-7AAA-BBBB-0123456789AB")
	assert.NoError(t, v.Err())

	v = &validate.Validator{}
	v.UUID("id", "not-a-uuid")
	assert.Error(t, v.Err())
}

/*
TestValidator_Custom verifies the escape hatch used for domain-specific
rules like self-parenting guards.
*/
func TestValidator_Custom(t *testing.T) {
	v := &validate.Validator{}
	v.Custom("parent_id", true, "A tag cannot be its own parent")
	v.Custom("kind", false, "never recorded")

	err := v.Err()
	require.Error(t, err)

	var appError *apperr.AppError
	require.True(t, errors.As(err, &appError))
	require.Len(t, appError.Details, 1)
	assert.Equal(t, "A tag cannot be its own parent", appError.Details[0].Message)
}
