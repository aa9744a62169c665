package patient

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("patient: not found")

// ErrDuplicateNationalID guards the unique admission constraint.
var ErrDuplicateNationalID = errors.New("patient: national id already admitted")

type Repository interface {
	Insert(ctx context.Context, m Mother) error
	Get(ctx context.Context, id string) (Mother, error)
	GetByNationalID(ctx context.Context, nationalID string) (Mother, error)
	Update(ctx context.Context, m Mother) error
	List(ctx context.Context) ([]Mother, error)
}
