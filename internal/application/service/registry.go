package service

import (
	"sort"

	"gui-agent/internal/application/port/output"
	"gui-agent/internal/domain/entity"
)

var _ output.PrimitiveRegistry = (*PrimitiveRegistryImpl)(nil)

// PrimitiveRegistryImpl is the script allow-list: a statement whose name is
// not registered here never reaches the actuator.
type PrimitiveRegistryImpl struct {
	primitives map[entity.Primitive]output.PrimitivePort
}

func NewPrimitiveRegistry() *PrimitiveRegistryImpl {
	return &PrimitiveRegistryImpl{
		primitives: make(map[entity.Primitive]output.PrimitivePort),
	}
}

func (r *PrimitiveRegistryImpl) Register(p output.PrimitivePort) {
	r.primitives[p.Name()] = p
}

func (r *PrimitiveRegistryImpl) Get(name entity.Primitive) (output.PrimitivePort, bool) {
	p, ok := r.primitives[name]
	return p, ok
}

func (r *PrimitiveRegistryImpl) All() []output.PrimitivePort {
	names := r.Names()
	result := make([]output.PrimitivePort, 0, len(names))
	for _, name := range names {
		result = append(result, r.primitives[name])
	}
	return result
}

func (r *PrimitiveRegistryImpl) Names() []entity.Primitive {
	result := make([]entity.Primitive, 0, len(r.primitives))
	for name := range r.primitives {
		result = append(result, name)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}
