package catalog

import (
	"sort"

	"live-quiz-service/internal/domain"
)

// Type separates mutating commands from read-only queries.
type Type string

const (
	TypeCommand Type = "COMMAND"
	TypeQuery   Type = "QUERY"
)

// OperationDescriptor names an operation and the roles allowed to invoke it.
type OperationDescriptor struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Type        Type          `json:"type"`
	Roles       []domain.Role `json:"roles"`
}

// Allows reports whether any of roles is authorized for the operation.
func (d OperationDescriptor) Allows(roles ...domain.Role) bool {
	for _, have := range roles {
		for _, want := range d.Roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// Catalog is an immutable lookup table of operations for one bounded context.
type Catalog struct {
	context string
	ops     map[string]OperationDescriptor
}

// New builds a catalog. Duplicate names panic since catalogs are fixed at startup.
func New(context string, descriptors ...OperationDescriptor) *Catalog {
	ops := make(map[string]OperationDescriptor, len(descriptors))
	for _, d := range descriptors {
		if _, dup := ops[d.Name]; dup {
			panic("catalog: duplicate operation " + d.Name)
		}
		roles := make([]domain.Role, len(d.Roles))
		copy(roles, d.Roles)
		d.Roles = roles
		ops[d.Name] = d
	}
	return &Catalog{context: context, ops: ops}
}

// Context names the bounded context the catalog belongs to.
func (c *Catalog) Context() string { return c.context }

// Contains reports whether name is a member of the catalog. Matching is case-sensitive.
func (c *Catalog) Contains(name string) bool {
	_, ok := c.ops[name]
	return ok
}

// Describe returns the descriptor for name.
func (c *Catalog) Describe(name string) (OperationDescriptor, error) {
	d, ok := c.ops[name]
	if !ok {
		return OperationDescriptor{}, domain.Errorf(domain.KindUnknownOperation, "operation %q is not part of the %s catalog", name, c.context)
	}
	return d, nil
}

// Authorize fails with Unauthorized when name is unknown or none of roles may invoke it.
func (c *Catalog) Authorize(name string, roles ...domain.Role) error {
	d, ok := c.ops[name]
	if !ok {
		return domain.Errorf(domain.KindUnauthorized, "operation %q is not authorized", name)
	}
	if !d.Allows(roles...) {
		return domain.Errorf(domain.KindUnauthorized, "roles %v may not invoke %s", roles, name)
	}
	return nil
}

// Descriptors lists all operations sorted by name.
func (c *Catalog) Descriptors() []OperationDescriptor {
	out := make([]OperationDescriptor, 0, len(c.ops))
	for _, d := range c.ops {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
