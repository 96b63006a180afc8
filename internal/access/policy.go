package access

type Role string

const (
	RoleAdmin          Role = "Admin"
	RoleProjectManager Role = "Project Manager"
	RoleDataEntry      Role = "Data Entry"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleProjectManager, RoleDataEntry:
		return true
	}
	return false
}

type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Actor is the authenticated caller a decision is made for.
type Actor struct {
	ID       string
	Username string
	Role     Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Resource identifies who owns the thing being acted on. CreatorID is only
// set for resources that record their own author inside a parent, such as
// QTO items inside a project.
type Resource struct {
	OwnerID   string
	CreatorID string
}

// Policy decides whether actor may perform action on res.
type Policy interface {
	Allow(actor Actor, res Resource, action Action) bool
}

type PolicyFunc func(actor Actor, res Resource, action Action) bool

func (f PolicyFunc) Allow(actor Actor, res Resource, action Action) bool {
	return f(actor, res, action)
}

// Owner allows admins and the resource owner. Used for projects and for
// anything scoped to a project (item create/list, export, import).
var Owner Policy = PolicyFunc(func(actor Actor, res Resource, _ Action) bool {
	return CanAccess(actor, res.OwnerID)
})

// ItemCollaborator allows admins, the item's creator, or the owner of the
// parent project. Applied to QTO item update and delete only.
var ItemCollaborator Policy = PolicyFunc(func(actor Actor, res Resource, _ Action) bool {
	if actor.ID == "" {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	return actor.ID == res.CreatorID || actor.ID == res.OwnerID
})

// CanAccess is the single-owner rule: admins always, everyone else only on
// what they own.
func CanAccess(actor Actor, ownerID string) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.ID != "" && actor.ID == ownerID
}

// CanCreateProject reports whether role may create projects at all.
func CanCreateProject(role Role) bool {
	return role.Valid()
}
