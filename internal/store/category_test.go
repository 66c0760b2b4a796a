// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogql/internal/apperr"
	"blogql/internal/models"
)

func TestCategoryStoreCreateAndFind(t *testing.T) {
	f := newFixtures(t)
	ctx := context.Background()

	c := &models.Category{Name: "Tech", Slug: "tech"}
	require.NoError(t, f.categories.Create(ctx, c))
	assert.NotEqual(t, uuid.Nil, c.ID)

	got, err := f.categories.FindByName(ctx, "Tech")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, c.ID, got.ID)

	got, err = f.categories.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "tech", got.Slug)

	got, err = f.categories.FindByName(ctx, "Nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCategoryStoreDuplicateName(t *testing.T) {
	f := newFixtures(t)
	ctx := context.Background()

	require.NoError(t, f.categories.Create(ctx, &models.Category{Name: "Tech", Slug: "tech"}))
	err := f.categories.Create(ctx, &models.Category{Name: "Tech", Slug: "tech-2"})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestCategoryStoreFindByPostID(t *testing.T) {
	f := newFixtures(t)
	ctx := context.Background()
	author := f.user(t, "a@x.com", models.RoleUser)
	p := f.post(t, author, "Post", "Post content")

	got, err := f.categories.FindByPostID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got, "uncategorised post has no category")

	c := &models.Category{Name: "Tech", Slug: "tech"}
	require.NoError(t, f.categories.Create(ctx, c))
	require.NoError(t, f.posts.SetCategory(ctx, p, &c.ID))

	got, err = f.categories.FindByPostID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, c.ID, got.ID)
}

func TestCategoryStoreListCountsPosts(t *testing.T) {
	f := newFixtures(t)
	ctx := context.Background()
	author := f.user(t, "a@x.com", models.RoleUser)

	tech := &models.Category{Name: "Tech", Slug: "tech"}
	art := &models.Category{Name: "Art", Slug: "art"}
	require.NoError(t, f.categories.Create(ctx, tech))
	require.NoError(t, f.categories.Create(ctx, art))
	require.NoError(t, f.posts.SetCategory(ctx, f.post(t, author, "One", "Content one"), &tech.ID))
	require.NoError(t, f.posts.SetCategory(ctx, f.post(t, author, "Two", "Content two"), &tech.ID))

	items, err := f.categories.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Art", items[0].Name)
	assert.Equal(t, 0, items[0].PostCount)
	assert.Equal(t, "Tech", items[1].Name)
	assert.Equal(t, 2, items[1].PostCount)
}

func TestCategoryStoreDelete(t *testing.T) {
	f := newFixtures(t)
	ctx := context.Background()

	err := f.categories.Delete(ctx, uuid.New())
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
