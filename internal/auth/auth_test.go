package auth

import "testing"

func TestCanManageTickets(t *testing.T) {
	support := []string{"r1", "r2"}

	cases := []struct {
		name  string
		actor ActorSnapshot
		roles []string
		want  bool
	}{
		{"administrator", ActorSnapshot{IsAdministrator: true}, support, true},
		{"administrator without support roles configured", ActorSnapshot{IsAdministrator: true}, nil, true},
		{"support role holder", ActorSnapshot{RoleIDs: []string{"r2", "r9"}}, support, true},
		{"unrelated roles", ActorSnapshot{RoleIDs: []string{"r9"}}, support, false},
		{"no roles", ActorSnapshot{}, support, false},
		{"no support roles configured", ActorSnapshot{RoleIDs: []string{"r1"}}, nil, false},
	}
	for _, tc := range cases {
		if got := CanManageTickets(tc.actor, tc.roles); got != tc.want {
			t.Fatalf("%s: CanManageTickets = %v, want %v", tc.name, got, tc.want)
		}
	}
}
