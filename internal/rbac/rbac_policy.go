package rbac

// ModelText is a plain RBAC model with role inheritance. Subjects are role
// names taken from the access token.
const ModelText = `[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleAdmin    = "admin"
)

const (
	ResourceLeave   = "leave"
	ResourceBalance = "balance"
	ResourceTeam    = "team"
	ResourceAudit   = "audit"
)

const (
	ActionCreate   = "create"
	ActionRead     = "read"
	ActionCancel   = "cancel"
	ActionDecide   = "decide"
	ActionOverride = "override"
	ActionUpdate   = "update"
)

// Policy is one allow rule.
type Policy struct {
	Role     string
	Resource string
	Action   string
}

// DefaultPolicies grants the least each role needs. Inheritance adds the
// rest: manager includes employee, admin includes manager.
func DefaultPolicies() []Policy {
	return []Policy{
		{RoleEmployee, ResourceLeave, ActionCreate},
		{RoleEmployee, ResourceLeave, ActionCancel},
		{RoleEmployee, ResourceLeave, ActionRead},
		{RoleEmployee, ResourceBalance, ActionRead},

		{RoleManager, ResourceTeam, ActionRead},
		{RoleManager, ResourceTeam, ActionDecide},

		{RoleAdmin, ResourceLeave, ActionOverride},
		{RoleAdmin, ResourceBalance, ActionUpdate},
		{RoleAdmin, ResourceAudit, ActionRead},
	}
}

// DefaultInheritance lists child/parent role pairs.
func DefaultInheritance() [][2]string {
	return [][2]string{
		{RoleManager, RoleEmployee},
		{RoleAdmin, RoleManager},
	}
}
