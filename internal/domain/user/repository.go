package user

import "context"

// Repository defines the interface for user repository operations
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, userID uint) (*User, error)
	Count(ctx context.Context) (int64, error)
}
