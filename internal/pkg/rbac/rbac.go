package rbac

import (
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
)

const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act
`

// Authorizer answers role/permission questions from an in-memory casbin policy.
type Authorizer struct {
	enforcer *casbin.Enforcer
}

// NewAuthorizer builds the policy from a role to permission map.
func NewAuthorizer(rolePermissions map[user.Role][]user.Permission) (*Authorizer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("rbac: load model: %w", err)
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("rbac: new enforcer: %w", err)
	}

	var rules [][]string
	for role, perms := range rolePermissions {
		for _, perm := range perms {
			obj, act := split(perm)
			rules = append(rules, []string{SubjectFromRole(role), obj, act})
		}
	}
	if len(rules) > 0 {
		if _, err := enforcer.AddPolicies(rules); err != nil {
			return nil, fmt.Errorf("rbac: add policies: %w", err)
		}
	}

	return &Authorizer{enforcer: enforcer}, nil
}

// NewDefaultAuthorizer uses user.RolePermissions.
func NewDefaultAuthorizer() (*Authorizer, error) {
	return NewAuthorizer(user.RolePermissions)
}

func SubjectFromRole(role user.Role) string {
	slug := strings.TrimSpace(strings.ToLower(string(role)))
	if slug == "" {
		slug = "anonymous"
	}
	return "role:" + slug
}

// Can reports whether role holds permission. Unknown roles hold nothing.
func (a *Authorizer) Can(role user.Role, perm user.Permission) (bool, error) {
	obj, act := split(perm)
	return a.enforcer.Enforce(SubjectFromRole(role), obj, act)
}

// Permissions lists everything granted to role.
func (a *Authorizer) Permissions(role user.Role) ([]user.Permission, error) {
	rules, err := a.enforcer.GetFilteredPolicy(0, SubjectFromRole(role))
	if err != nil {
		return nil, err
	}
	perms := make([]user.Permission, 0, len(rules))
	for _, rule := range rules {
		perms = append(perms, user.Permission(rule[1]+"."+rule[2]))
	}
	return perms, nil
}

// split turns "payroll.manage" into ("payroll", "manage").
func split(perm user.Permission) (string, string) {
	obj, act, found := strings.Cut(string(perm), ".")
	if !found {
		return obj, "*"
	}
	return obj, act
}
