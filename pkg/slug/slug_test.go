// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/souqly/souqly-api/pkg/slug"
)

/*
TestFrom_BasicDerivation verifies the plain ASCII happy path.
*/
func TestFrom_BasicDerivation(t *testing.T) {
	assert.Equal(t, "photography", slug.From("Photography"))
	assert.Equal(t, "home-garden", slug.From("Home & Garden"))
}

/*
TestFrom_UnicodeNormalization verifies that accents are stripped rather
than replaced by hyphens.
*/
func TestFrom_UnicodeNormalization(t *testing.T) {
	assert.Equal(t, "decor", slug.From("Décor"))
	assert.Equal(t, "cafe-au-lait", slug.From("Café au Lait"))
}

/*
TestFrom_HyphenCleanup verifies collapse and trim behavior on messy input.
*/
func TestFrom_HyphenCleanup(t *testing.T) {
	assert.Equal(t, "a-b", slug.From("  a --- b  "))
	assert.Equal(t, "", slug.From("!!!"))
}

/*
TestFrom_Deterministic verifies that repeated derivation is stable, which
the per-scope slug uniqueness constraint depends on.
*/
func TestFrom_Deterministic(t *testing.T) {
	first := slug.From("Handmade Jewelry")
	second := slug.From("Handmade Jewelry")
	assert.Equal(t, first, second)
}
