package users

import (
	"context"
	"errors"
)

var (
	ErrNotFound          = errors.New("users: not found")
	ErrDuplicateUsername = errors.New("users: username taken")
)

type Repository interface {
	Insert(ctx context.Context, u User) error
	Get(ctx context.Context, id string) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	Update(ctx context.Context, u User) error
	List(ctx context.Context) ([]User, error)
}
