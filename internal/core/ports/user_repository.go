package ports

import (
	"context"

	"github.com/taskmaster/taskmaster-api/internal/core/domain"
)

// UserRepository defines persistence for user accounts. Email uniqueness is
// enforced at the store level; Create returns domain.ErrEmailTaken on conflict.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}
