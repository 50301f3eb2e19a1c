// Package token issues the opaque per-order identifiers that grant public
// read access to a generated report.
package token

import (
	"context"
	"fmt"

	"surya-backend/internal/models"

	"github.com/google/uuid"
)

// Assigner persists a token onto an order unless one is already set and
// returns the token the order ends up with.
type Assigner interface {
	AssignToken(ctx context.Context, orderID uint, candidate string) (string, error)
}

// Issuer hands out tokens. A token never changes once assigned.
type Issuer struct {
	store Assigner
	gen   func() (string, error)
}

// NewIssuer returns an Issuer backed by store.
func NewIssuer(store Assigner) *Issuer {
	return &Issuer{store: store, gen: newToken}
}

// Ensure returns the order's token, assigning a fresh one on first use.
// order.Token is updated in place.
func (i *Issuer) Ensure(ctx context.Context, order *models.Order) (string, error) {
	if order.Token != nil && *order.Token != "" {
		return *order.Token, nil
	}

	candidate, err := i.gen()
	if err != nil {
		return "", err
	}
	tok, err := i.store.AssignToken(ctx, order.ID, candidate)
	if err != nil {
		return "", err
	}
	order.Token = &tok
	return tok, nil
}

func newToken() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return id.String(), nil
}
