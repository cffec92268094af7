package models

import (
	"fmt"
	"sort"

	"github.com/san-kum/contactlqr/internal/dynamo"
	"github.com/san-kum/contactlqr/internal/multibody"
)

type Registry struct {
	mechanisms map[string]func() *multibody.Mechanism
}

func NewRegistry() *Registry {
	r := &Registry{
		mechanisms: make(map[string]func() *multibody.Mechanism),
	}

	r.mechanisms["pendulum"] = func() *multibody.Mechanism { return NewPendulum().Mechanism() }
	r.mechanisms["cartpole"] = func() *multibody.Mechanism { return NewCartPole().Mechanism() }
	r.mechanisms["double_pendulum"] = func() *multibody.Mechanism { return NewDoublePendulum().Mechanism() }
	r.mechanisms["planar_body"] = func() *multibody.Mechanism { return NewPlanarBody().Mechanism() }

	return r
}

// Register adds or replaces a mechanism constructor.
func (r *Registry) Register(name string, fn func() *multibody.Mechanism) {
	r.mechanisms[name] = fn
}

func (r *Registry) GetMechanism(name string) (*multibody.Mechanism, error) {
	fn, ok := r.mechanisms[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", dynamo.ErrUnknownMechanism, name)
	}
	return fn(), nil
}

func (r *Registry) ListMechanisms() []string {
	names := make([]string, 0, len(r.mechanisms))
	for name := range r.mechanisms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
