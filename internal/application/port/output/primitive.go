package output

import (
	"context"

	"gui-agent/internal/domain/entity"
)

type PrimitivePort interface {
	Name() entity.Primitive
	Description() string
	Validate(args []string) error
	Execute(ctx context.Context, args []string) error
}

type PrimitiveRegistry interface {
	Register(p PrimitivePort)
	Get(name entity.Primitive) (PrimitivePort, bool)
	All() []PrimitivePort
	Names() []entity.Primitive
}
