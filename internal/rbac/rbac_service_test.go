package rbac

import (
	"testing"

	"go-leave/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	e, err := NewEnforcer(DefaultPolicies(), DefaultInheritance())
	require.NoError(t, err)
	return NewService(e)
}

func TestRBACService_Enforce(t *testing.T) {
	svc := newTestService(t)

	cases := []struct {
		name     string
		role     string
		resource string
		action   string
		allowed  bool
	}{
		{"employee applies", RoleEmployee, ResourceLeave, ActionCreate, true},
		{"employee cannot decide", RoleEmployee, ResourceTeam, ActionDecide, false},
		{"manager inherits employee", RoleManager, ResourceLeave, ActionCreate, true},
		{"manager decides", RoleManager, ResourceTeam, ActionDecide, true},
		{"manager cannot override", RoleManager, ResourceLeave, ActionOverride, false},
		{"admin inherits manager", RoleAdmin, ResourceTeam, ActionDecide, true},
		{"admin updates balance", RoleAdmin, ResourceBalance, ActionUpdate, true},
		{"unknown role", "guest", ResourceLeave, ActionRead, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			allowed, err := svc.Enforce(domain.EnforceRequest{
				Role:     tc.role,
				Resource: tc.resource,
				Action:   tc.action,
			})
			assert.NoError(t, err)
			assert.Equal(t, tc.allowed, allowed)
		})
	}
}

func TestRBACService_Permissions(t *testing.T) {
	svc := newTestService(t)

	t.Run("employee", func(t *testing.T) {
		perms, err := svc.Permissions(RoleEmployee)
		require.NoError(t, err)
		assert.Len(t, perms, 4)
	})

	t.Run("admin includes inherited", func(t *testing.T) {
		perms, err := svc.Permissions(RoleAdmin)
		require.NoError(t, err)
		assert.Contains(t, perms, domain.PermissionResponse{Resource: ResourceLeave, Action: ActionCreate})
		assert.Contains(t, perms, domain.PermissionResponse{Resource: ResourceAudit, Action: ActionRead})
		assert.Len(t, perms, len(DefaultPolicies()))
	})
}
