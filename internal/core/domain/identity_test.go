package domain

import "testing"

func TestRoleMatches_LegacyPrefix(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"EMPLOYER", "ROLE_EMPLOYER", true},
		{"ROLE_EMPLOYER", "EMPLOYER", true},
		{"ROLE_USER", "ROLE_USER", true},
		{"admin", "ROLE_ADMIN", true},
		{"USER", "ROLE_EMPLOYER", false},
		{"GUEST", "GUEST", false},
		{"", "", false},
	}
	for _, tc := range cases {
		if got := RoleMatches(tc.a, tc.b); got != tc.want {
			t.Errorf("RoleMatches(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestCanonicalRole(t *testing.T) {
	if got := CanonicalRole(" role_employer "); got != RoleEmployer {
		t.Fatalf("expected EMPLOYER, got %q", got)
	}
	if got := CanonicalRole("recruiter"); got.Known() {
		t.Fatalf("unexpected known role %q", got)
	}
}

func TestIdentity_MergeKeepsIDAndRole(t *testing.T) {
	current := Identity{ID: "u1", Email: "a@example.com", Role: RoleUser, FullName: "An"}
	merged := current.Merge(Identity{ID: "other", Role: RoleAdmin, FullName: "An Nguyen", Avatar: "img.png"})

	if merged.ID != "u1" || merged.Role != RoleUser {
		t.Fatalf("id/role must survive merge: %+v", merged)
	}
	if merged.FullName != "An Nguyen" || merged.Avatar != "img.png" {
		t.Fatalf("profile fields not applied: %+v", merged)
	}
	if merged.Email != "a@example.com" {
		t.Fatalf("email dropped: %+v", merged)
	}
}

func TestLandingPage(t *testing.T) {
	cases := map[Role]string{
		RoleAdmin:         PathAdminDashboard,
		"ROLE_EMPLOYER":   PathEmployerDashboard,
		RoleUser:          PathUserDashboard,
		Role("RECRUITER"): PathJobs,
	}
	for role, want := range cases {
		if got := LandingPage(role); got != want {
			t.Errorf("LandingPage(%q) = %q, want %q", role, got, want)
		}
	}
}
