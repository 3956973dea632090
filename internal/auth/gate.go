// Package auth decides who may do what. Every check is a Gate and gates compose left to right.
package auth

import (
	"context"
	"errors"

	"github.com/SAP-F-2025/interview-service/internal/models"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNotAuthorized    = errors.New("not authorized")
)

// Identity is the caller as reported by the identity provider.
type Identity struct {
	UserID string          `json:"user_id"`
	Role   models.UserRole `json:"role"`
}

// Gate returns nil when id may proceed. A nil id is an unauthenticated caller.
type Gate func(id *Identity) error

// Authenticated must come first in every chain.
func Authenticated() Gate {
	return func(id *Identity) error {
		if id == nil || id.UserID == "" {
			return ErrNotAuthenticated
		}
		return nil
	}
}

func HasRole(roles ...models.UserRole) Gate {
	return func(id *Identity) error {
		if id == nil {
			return ErrNotAuthenticated
		}
		for _, r := range roles {
			if id.Role == r {
				return nil
			}
		}
		return ErrNotAuthorized
	}
}

// OwnerOrRole lets the owning user through, and anyone holding one of roles.
func OwnerOrRole(ownerID string, roles ...models.UserRole) Gate {
	byRole := HasRole(roles...)
	return func(id *Identity) error {
		if id == nil {
			return ErrNotAuthenticated
		}
		if ownerID != "" && id.UserID == ownerID {
			return nil
		}
		return byRole(id)
	}
}

// Chain runs gates in order and stops at the first failure.
func Chain(gates ...Gate) Gate {
	return func(id *Identity) error {
		for _, g := range gates {
			if err := g(id); err != nil {
				return err
			}
		}
		return nil
	}
}

// Staff is the gate for admin and interviewer operations.
func Staff() Gate {
	return Chain(Authenticated(), HasRole(models.RoleAdmin, models.RoleInterviewer))
}

// StaffOrOwner is the gate for reads a candidate may perform on their own data.
func StaffOrOwner(ownerID string) Gate {
	return Chain(Authenticated(), OwnerOrRole(ownerID, models.RoleAdmin, models.RoleInterviewer))
}

// Owner is the gate for candidate actions on their own interview.
func Owner(ownerID string) Gate {
	return Chain(Authenticated(), OwnerOrRole(ownerID))
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns nil when the request carried no identity.
func FromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey{}).(*Identity)
	return id
}
