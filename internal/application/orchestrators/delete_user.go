package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"advent/internal/domain/user"
)

// UserStoreForDelete defines the store interface needed by DeleteUser.
type UserStoreForDelete interface {
	GetByID(ctx context.Context, id string) (user.User, error)
	Delete(ctx context.Context, id string) error
}

// DeleteUserDeps holds dependencies for DeleteUser.
type DeleteUserDeps struct {
	UserStore UserStoreForDelete
}

var ErrUserNotFound = errors.New("user not found")

// ExecuteDeleteUser removes a non-admin user.
// PRE: id references an existing user
// POST: User removed, or ErrUserNotFound / user.ErrDeleteAdmin
// INVARIANT: Admin users are never deleted, so at least one admin survives
func ExecuteDeleteUser(ctx context.Context, id string, deps DeleteUserDeps) error {
	if id == "" {
		return ErrUserNotFound
	}

	u, err := deps.UserStore.GetByID(ctx, id)
	if err != nil {
		return ErrUserNotFound
	}

	if u.IsAdmin() {
		slog.Info("admin_event", "event", "delete_rejected", "username", u.Username, "reason", "is_admin")
		return user.ErrDeleteAdmin
	}

	if err := deps.UserStore.Delete(ctx, id); err != nil {
		return err
	}

	slog.Info("admin_event", "event", "user_deleted", "username", u.Username)
	return nil
}
