// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package graph is the GraphQL resolution layer. It maps the schema onto
// the content and account services, resolving nested fields lazily and
// presenting service errors with a stable code.
package graph

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/google/uuid"
	graphql "github.com/graph-gophers/graphql-go"

	"blogql/internal/apperr"
	"blogql/internal/content"
	"blogql/internal/middleware"
	"blogql/internal/models"
	"blogql/internal/policy"
	"blogql/internal/pubsub"
	"blogql/internal/users"
)

//go:embed schema.graphql
var schemaSDL string

// maxQueryDepth bounds nested selections such as post.comments.post.comments.
const maxQueryDepth = 10

// Resolver is the root resolver for queries, mutations and subscriptions.
type Resolver struct {
	content *content.Service
	users   *users.Service
	bus     *pubsub.Bus
}

// NewResolver creates the root resolver.
func NewResolver(c *content.Service, u *users.Service, bus *pubsub.Bus) *Resolver {
	return &Resolver{content: c, users: u, bus: bus}
}

// NewSchema parses the embedded SDL against r.
func NewSchema(r *Resolver) (*graphql.Schema, error) {
	schema, err := graphql.ParseSchema(schemaSDL, r,
		graphql.MaxDepth(maxQueryDepth),
		graphql.PanicHandler(panicHandler{}),
	)
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	return schema, nil
}

// actor returns the authenticated actor of the request, if any.
func actor(ctx context.Context) *policy.Actor {
	return middleware.ActorFromCtx(ctx)
}

// parseID decodes a GraphQL ID into a UUID.
func parseID(id graphql.ID, entity string) (uuid.UUID, error) {
	v, err := uuid.Parse(string(id))
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid %s id %q", entity, string(id))
	}
	return v, nil
}

func toID(id uuid.UUID) graphql.ID {
	return graphql.ID(id.String())
}

// pagination fills omitted page arguments with page 1 of DefaultPageSize.
func pagination(page, pageSize *int32) models.Pagination {
	p := models.Pagination{Page: models.DefaultPage, PageSize: models.DefaultPageSize}
	if page != nil {
		p.Page = int(*page)
	}
	if pageSize != nil {
		p.PageSize = int(*pageSize)
	}
	return p
}

// pageArgs are the optional pagination arguments shared by listings.
type pageArgs struct {
	Page     *int32
	PageSize *int32
}
