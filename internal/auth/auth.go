// Package auth decides ticket-management authority from a snapshot of the
// actor's roles, independent of any live platform object.
package auth

// ActorSnapshot captures what matters about a member at decision time.
type ActorSnapshot struct {
	IsAdministrator bool
	RoleIDs         []string
}

// CanManageTickets reports whether the actor may claim or close tickets:
// administrators always, otherwise holders of a configured support role.
func CanManageTickets(actor ActorSnapshot, supportRoles []string) bool {
	if actor.IsAdministrator {
		return true
	}
	for _, required := range supportRoles {
		for _, held := range actor.RoleIDs {
			if held == required {
				return true
			}
		}
	}
	return false
}
