package bridge

import (
	"fmt"
	"slices"
)

// Capabilities is one row of the capability table.
type Capabilities struct {
	// Operations are installed in this order.
	Operations []Operation
	// JSONHelper exposes a JSON stringify/parse helper to user scripts of the role.
	JSONHelper bool
}

// Registry maps each role to its capability set. It is immutable once built.
type Registry struct {
	rows map[Role]Capabilities
}

// NewRegistry validates a capability table. Every operation must be one the installer
// knows how to bind, and no role may list an operation twice.
func NewRegistry(rows map[Role]Capabilities) (*Registry, error) {
	cloned := make(map[Role]Capabilities, len(rows))
	for role, row := range rows {
		if role == "" {
			return nil, fmt.Errorf("%w: empty role name", ErrUnknownRole)
		}

		seen := make(map[string]struct{}, len(row.Operations))
		for _, op := range row.Operations {
			if !knownOperation(op) {
				return nil, fmt.Errorf("%w: %q for role %s", ErrUnknownOperation, op.Name, role)
			}
			if _, dup := seen[op.Name]; dup {
				return nil, fmt.Errorf("%w: %q for role %s", ErrDuplicateOperation, op.Name, role)
			}
			seen[op.Name] = struct{}{}
		}

		cloned[role] = Capabilities{
			Operations: cloneOps(row.Operations),
			JSONHelper: row.JSONHelper,
		}
	}
	return &Registry{rows: cloned}, nil
}

// DefaultRegistry returns the chart capability table: the base tier for every role, the
// data tier for JavaScript and UI, and the config tier for JavaScript only.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(map[Role]Capabilities{
		RoleParams: {
			Operations: cloneOps(baseTier),
		},
		RoleJavaScript: {
			Operations: cloneOps(baseTier, dataTier, configTier),
			JSONHelper: true,
		},
		RoleUI: {
			Operations: cloneOps(baseTier, dataTier),
			JSONHelper: true,
		},
		RoleURLs: {
			Operations: cloneOps(baseTier),
		},
	})
	if err != nil {
		panic(fmt.Sprintf("default capability table is invalid: %v", err))
	}
	return r
}

// ForRole returns the ordered operations installed for role.
func (r *Registry) ForRole(role Role) ([]Operation, error) {
	row, ok := r.rows[role]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	return cloneOps(row.Operations), nil
}

// Capabilities returns the full row for role.
func (r *Registry) Capabilities(role Role) (Capabilities, error) {
	row, ok := r.rows[role]
	if !ok {
		return Capabilities{}, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	return Capabilities{Operations: cloneOps(row.Operations), JSONHelper: row.JSONHelper}, nil
}

// Has reports whether role is granted the named operation.
func (r *Registry) Has(role Role, name string) bool {
	row, ok := r.rows[role]
	if !ok {
		return false
	}
	return slices.ContainsFunc(row.Operations, func(op Operation) bool {
		return op.Name == name
	})
}

// Roles returns the roles in the table, sorted.
func (r *Registry) Roles() []Role {
	roles := make([]Role, 0, len(r.rows))
	for role := range r.rows {
		roles = append(roles, role)
	}
	slices.Sort(roles)
	return roles
}

// RolesFor returns the roles granted the named operation, sorted.
func (r *Registry) RolesFor(name string) []Role {
	var roles []Role
	for _, role := range r.Roles() {
		if r.Has(role, name) {
			roles = append(roles, role)
		}
	}
	return roles
}
