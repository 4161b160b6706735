package service

import (
	"fmt"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"

	"github.com/MKhiriev/go-otp-keeper/internal/logger"
	"github.com/MKhiriev/go-otp-keeper/models"
)

// rbacModel matches a role against route patterns (keyMatch2, ":param"
// segments) and an anchored method regex. Roles inherit through g.
const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && keyMatch2(r.obj, p.obj) && regexMatch(r.act, p.act)
`

// routePolicies lists what each role may call. Everything not listed is
// denied.
var routePolicies = [][]string{
	{string(models.RoleUser), "/api/auth/me", "^GET$"},
	{string(models.RoleUser), "/api/accounts", "^GET$"},
	{string(models.RoleUser), "/api/accounts/:id", "^(GET|PUT|DELETE)$"},
	{string(models.RoleUser), "/api/accounts/:id/code", "^GET$"},
	{string(models.RoleUser), "/api/accounts/:id/secret", "^GET$"},
	{string(models.RoleUser), "/api/accounts/:id/remark", "^PUT$"},
	{string(models.RoleUser), "/api/accounts/:id/share", "^POST$"},
	{string(models.RoleUser), "/api/accounts/:id/share/:user", "^DELETE$"},

	{string(models.RoleAdmin), "/api/accounts", "^POST$"},
	{string(models.RoleAdmin), "/api/accounts/import", "^POST$"},
	{string(models.RoleAdmin), "/api/accounts/secret", "^POST$"},
	{string(models.RoleAdmin), "/api/users", "^(GET|POST)$"},
	{string(models.RoleAdmin), "/api/users/:id", "^DELETE$"},
	{string(models.RoleAdmin), "/api/users/:id/password", "^PUT$"},
}

type permissionService struct {
	enforcer *casbin.Enforcer

	logger *logger.Logger
}

// NewPermissionService builds the role enforcer. Administrators inherit
// every user permission.
func NewPermissionService(logger *logger.Logger) (PermissionService, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("error creating permission model: %w", err)
	}

	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("error creating permission enforcer: %w", err)
	}

	if _, err = enforcer.AddPolicies(routePolicies); err != nil {
		return nil, fmt.Errorf("error loading permission policies: %w", err)
	}
	if _, err = enforcer.AddGroupingPolicy(string(models.RoleAdmin), string(models.RoleUser)); err != nil {
		return nil, fmt.Errorf("error loading role inheritance: %w", err)
	}

	logger.Debug().Int("policies", len(routePolicies)).Msg("permission service created")
	return &permissionService{enforcer: enforcer, logger: logger}, nil
}

// Enforce reports whether role may call method on path.
func (p *permissionService) Enforce(role models.Role, path, method string) (bool, error) {
	if !role.Valid() {
		return false, nil
	}

	allowed, err := p.enforcer.Enforce(string(role), path, method)
	if err != nil {
		return false, fmt.Errorf("error enforcing permission: %w", err)
	}
	return allowed, nil
}
