package service

import (
	"errors"
	"testing"

	"github.com/psiborg/task-manager/internal/core/domain"
	"github.com/psiborg/task-manager/internal/core/ports"
)

func TestTaskVisibility_BasePredicateByRole(t *testing.T) {
	cases := []struct {
		role domain.Role
		want ports.TaskFilter
	}{
		{domain.RoleAdmin, ports.TaskFilter{}},
		{domain.RoleManager, ports.TaskFilter{CreatedBy: "id-1"}},
		{domain.RoleUser, ports.TaskFilter{AssignedTo: "id-1"}},
	}
	for _, tc := range cases {
		got, err := TaskVisibility(&domain.Claims{SubjectID: "id-1", Role: tc.role}, ports.TaskQuery{})
		if err != nil {
			t.Fatalf("%s: %v", tc.role, err)
		}
		if got != tc.want {
			t.Errorf("%s: got %+v, want %+v", tc.role, got, tc.want)
		}
	}
}

func TestTaskVisibility_ConjoinsAcceptedFilters(t *testing.T) {
	caller := &domain.Claims{SubjectID: "u1", Role: domain.RoleUser}

	got, err := TaskVisibility(caller, ports.TaskQuery{Status: "complete", Priority: "high"})
	if err != nil {
		t.Fatalf("TaskVisibility: %v", err)
	}
	want := ports.TaskFilter{AssignedTo: "u1", Status: domain.StatusComplete, Priority: domain.PriorityHigh}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestTaskVisibility_IgnoresUnknownFilterValues(t *testing.T) {
	caller := &domain.Claims{SubjectID: "m1", Role: domain.RoleManager}

	got, err := TaskVisibility(caller, ports.TaskQuery{Status: "archived", Priority: "URGENT"})
	if err != nil {
		t.Fatalf("unknown values must be ignored, not rejected: %v", err)
	}
	if got != (ports.TaskFilter{CreatedBy: "m1"}) {
		t.Fatalf("unexpected filter: %+v", got)
	}
}

func TestTaskVisibility_RejectsUnknownRoleAndMissingCaller(t *testing.T) {
	if _, err := TaskVisibility(&domain.Claims{SubjectID: "x", Role: "auditor"}, ports.TaskQuery{}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := TaskVisibility(nil, ports.TaskQuery{}); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestTaskScopes_CoverEveryRole(t *testing.T) {
	for _, r := range []domain.Role{domain.RoleUser, domain.RoleManager, domain.RoleAdmin} {
		if _, ok := taskScopes[r]; !ok {
			t.Errorf("no task scope for role %s", r)
		}
		if _, ok := profileScopes[r]; !ok {
			t.Errorf("no profile scope for role %s", r)
		}
	}
}
