package rolecheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func realmRoles(roles ...any) map[string]any {
	return map[string]any{
		"realm_access": map[string]any{"roles": roles},
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		claims   map[string]any
		rolePath string
		want     Decision
	}{
		{
			name:     "no role path configured always authorizes",
			claims:   map[string]any{},
			rolePath: "",
			want:     Decision{IsAdmin: false, IsAuthorized: true, Checked: false},
		},
		{
			name:     "user role authorizes",
			claims:   realmRoles("user"),
			rolePath: "realm_access.roles",
			want:     Decision{IsAdmin: false, IsAuthorized: true, Checked: true},
		},
		{
			name:     "admin role authorizes and flags admin",
			claims:   realmRoles("admin"),
			rolePath: "realm_access.roles",
			want:     Decision{IsAdmin: true, IsAuthorized: true, Checked: true},
		},
		{
			name:     "missing key denies",
			claims:   map[string]any{"realm_access": map[string]any{}},
			rolePath: "realm_access.roles",
			want:     Decision{IsAdmin: false, IsAuthorized: false, Checked: true},
		},
		{
			name:     "empty role list denies",
			claims:   realmRoles(),
			rolePath: "realm_access.roles",
			want:     Decision{IsAdmin: false, IsAuthorized: false, Checked: true},
		},
		{
			name:     "unrelated roles deny",
			claims:   realmRoles("viewer", "reporter"),
			rolePath: "realm_access.roles",
			want:     Decision{IsAdmin: false, IsAuthorized: false, Checked: true},
		},
		{
			name:     "scalar claim value denies",
			claims:   map[string]any{"role": "user"},
			rolePath: "role",
			want:     Decision{IsAdmin: false, IsAuthorized: false, Checked: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.claims, tt.rolePath))
		})
	}
}
