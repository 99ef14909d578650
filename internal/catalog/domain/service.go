package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var ErrNotFound = errors.New("package_not_found")

type Service interface {
	GetByID(ctx context.Context, id snowflake.ID) (*PowerPackage, error)
	ListActive(ctx context.Context) ([]PowerPackage, error)
}
