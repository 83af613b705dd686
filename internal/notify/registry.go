// Package notify assembles delivery-ready notifications per feed kind.
package notify

import (
	"context"
	"fmt"

	"feedherald/internal/domain"
)

// Builder produces the notification for one record of its feed kind.
type Builder interface {
	Kind() domain.FeedKind
	Build(ctx context.Context, record domain.Record) (domain.Notification, error)
}

// Registry maps feed kinds to their notification builders. Kinds without a
// registered builder are rejected at composition time, not per record.
type Registry struct {
	builders map[domain.FeedKind]Builder
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{builders: map[domain.FeedKind]Builder{}}
}

// Register adds or replaces a builder.
func (r *Registry) Register(builder Builder) {
	if r.builders == nil {
		r.builders = map[domain.FeedKind]Builder{}
	}
	r.builders[builder.Kind()] = builder
}

// Resolve returns the builder for a feed kind or an error if none exists.
func (r *Registry) Resolve(kind domain.FeedKind) (Builder, error) {
	if builder, ok := r.builders[kind]; ok {
		return builder, nil
	}
	return nil, fmt.Errorf("no notification builder registered for feed %s", kind)
}
