package bridge

import (
	"fmt"
	"slices"
)

// Role identifies which slot of a chart the executing script fills. It is fixed for the
// lifetime of a guest context.
type Role string

const (
	// RoleParams resolves chart parameters.
	RoleParams Role = "Params"
	// RoleJavaScript is the general chart scripting slot.
	RoleJavaScript Role = "JavaScript"
	// RoleUI builds the chart's control UI.
	RoleUI Role = "UI"
	// RoleURLs builds data source URLs.
	RoleURLs Role = "Urls"
)

var knownRoles = []Role{RoleParams, RoleJavaScript, RoleUI, RoleURLs}

// Roles returns every defined role in a stable order.
func Roles() []Role {
	return slices.Clone(knownRoles)
}

// ParseRole converts a wire role name into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	return slices.Contains(knownRoles, r)
}

func (r Role) String() string {
	return string(r)
}
