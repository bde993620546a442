package rbac

import (
	"errors"
	"testing"

	"github.com/examplanner/examplanner/internal/platform/httpx"
)

var (
	student    = Actor{ID: "u1", Role: RoleUser}
	admin      = Actor{ID: "a1", Role: RoleAdmin}
	superadmin = Actor{ID: "s1", Role: RoleSuperAdmin}
)

func TestEffectiveTarget(t *testing.T) {
	cases := []struct {
		name      string
		actor     Actor
		requested string
		want      string
	}{
		{"user acts on self", student, "", "u1"},
		{"user cannot redirect to another account", student, "victim", "u1"},
		{"admin defaults to self", admin, "", "a1"},
		{"admin targets explicit id", admin, "u1", "u1"},
		{"superadmin targets explicit id", superadmin, "u1", "u1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := EffectiveTarget(tc.actor, tc.requested); got != tc.want {
				t.Errorf("EffectiveTarget(%v, %q) = %q, want %q", tc.actor, tc.requested, got, tc.want)
			}
		})
	}
}

func TestCanModifyAccount(t *testing.T) {
	if err := CanModifyAccount(admin, RoleSuperAdmin); !errors.Is(err, httpx.ErrForbidden) {
		t.Errorf("admin modifying superadmin: got %v, want forbidden", err)
	}
	if err := CanModifyAccount(superadmin, RoleSuperAdmin); err != nil {
		t.Errorf("superadmin modifying superadmin: got %v, want nil", err)
	}
	if err := CanModifyAccount(student, RoleUser); err != nil {
		t.Errorf("user modifying user: got %v, want nil", err)
	}
}

func TestCanDeleteAccount(t *testing.T) {
	// The superadmin account is undeletable, including by another superadmin.
	if err := CanDeleteAccount(superadmin, "s2", RoleSuperAdmin); !errors.Is(err, httpx.ErrForbidden) {
		t.Errorf("superadmin deleting superadmin: got %v, want forbidden", err)
	}
	if err := CanDeleteAccount(admin, "s1", RoleSuperAdmin); !errors.Is(err, httpx.ErrForbidden) {
		t.Errorf("admin deleting superadmin: got %v, want forbidden", err)
	}
	if err := CanDeleteAccount(student, "other", RoleUser); !errors.Is(err, httpx.ErrForbidden) {
		t.Errorf("user deleting another user: got %v, want forbidden", err)
	}
	if err := CanDeleteAccount(student, "u1", RoleUser); err != nil {
		t.Errorf("user deleting self: got %v, want nil", err)
	}
	if err := CanDeleteAccount(admin, "u1", RoleUser); err != nil {
		t.Errorf("admin deleting user: got %v, want nil", err)
	}
}

func TestCanChangeRole(t *testing.T) {
	if err := CanChangeRole(admin, RoleUser, RoleAdmin); !errors.Is(err, httpx.ErrForbidden) {
		t.Errorf("admin changing role: got %v, want forbidden", err)
	}
	if err := CanChangeRole(superadmin, RoleSuperAdmin, RoleUser); !errors.Is(err, httpx.ErrForbidden) {
		t.Errorf("demoting superadmin: got %v, want forbidden", err)
	}
	if err := CanChangeRole(superadmin, RoleUser, RoleSuperAdmin); !errors.Is(err, httpx.ErrForbidden) {
		t.Errorf("promoting to superadmin: got %v, want forbidden", err)
	}
	if err := CanChangeRole(superadmin, RoleUser, RoleAdmin); err != nil {
		t.Errorf("superadmin promoting user to admin: got %v, want nil", err)
	}
	if err := CanChangeRole(superadmin, RoleAdmin, RoleUser); err != nil {
		t.Errorf("superadmin demoting admin: got %v, want nil", err)
	}
}

func TestCanCreateAdmin(t *testing.T) {
	if err := CanCreateAdmin(admin); !errors.Is(err, httpx.ErrForbidden) {
		t.Errorf("admin creating admin: got %v, want forbidden", err)
	}
	if err := CanCreateAdmin(superadmin); err != nil {
		t.Errorf("superadmin creating admin: got %v, want nil", err)
	}
}

func TestCanAccessResource(t *testing.T) {
	if err := CanAccessResource(student, "someone-else"); !errors.Is(err, httpx.ErrForbidden) {
		t.Errorf("user accessing foreign resource: got %v, want forbidden", err)
	}
	if err := CanAccessResource(student, "u1"); err != nil {
		t.Errorf("user accessing own resource: got %v, want nil", err)
	}
	if err := CanAccessResource(admin, "u1"); err != nil {
		t.Errorf("admin bypassing ownership: got %v, want nil", err)
	}
	if err := CanAccessResource(superadmin, "u1"); err != nil {
		t.Errorf("superadmin bypassing ownership: got %v, want nil", err)
	}
}

func TestImpersonationAndPauseGates(t *testing.T) {
	if err := CanImpersonate(student); !errors.Is(err, httpx.ErrForbidden) {
		t.Errorf("user impersonating: got %v, want forbidden", err)
	}
	if err := CanImpersonate(admin); err != nil {
		t.Errorf("admin impersonating: got %v, want nil", err)
	}
	if err := CanTogglePause(student); !errors.Is(err, httpx.ErrForbidden) {
		t.Errorf("user toggling pause: got %v, want forbidden", err)
	}
	if err := CanTogglePause(admin); err != nil {
		t.Errorf("admin toggling pause: got %v, want nil", err)
	}
}

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"user", "admin", "superadmin"} {
		if _, ok := ParseRole(valid); !ok {
			t.Errorf("ParseRole(%q) rejected a valid role", valid)
		}
	}
	if _, ok := ParseRole("root"); ok {
		t.Error("ParseRole(root) should fail")
	}
	if _, ok := ParseRole(""); ok {
		t.Error("ParseRole(empty) should fail")
	}
}
