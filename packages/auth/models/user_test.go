package models

import (
	"slices"
	"testing"
)

func TestRolesValue(t *testing.T) {
	v, err := Roles{RoleUser, RoleAdmin}.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if v != `["user","admin"]` {
		t.Fatalf("unexpected value %v", v)
	}

	v, err = Roles(nil).Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if v != `["user"]` {
		t.Fatalf("expected default roles, got %v", v)
	}
}

func TestRolesScan(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  Roles
	}{
		{"string", `["user","admin"]`, Roles{RoleUser, RoleAdmin}},
		{"bytes", []byte(`["admin"]`), Roles{RoleAdmin}},
		{"null", nil, Roles{RoleUser}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Roles
			if err := r.Scan(tt.value); err != nil {
				t.Fatalf("scan: %v", err)
			}
			if !slices.Equal(r, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, r)
			}
		})
	}

	var r Roles
	if err := r.Scan(42); err == nil {
		t.Fatal("expected an error for an integer value")
	}
}

func TestUserRoles(t *testing.T) {
	u := User{Roles: GetDefaultRoles()}
	if !u.HasRole(RoleUser) || u.HasRole(RoleAdmin) {
		t.Fatalf("unexpected roles %v", u.Roles)
	}
	u.AddRole(RoleAdmin)
	u.AddRole(RoleAdmin)
	if len(u.Roles) != 2 || !u.HasRole(RoleAdmin) {
		t.Fatalf("expected admin added once, got %v", u.Roles)
	}
}
