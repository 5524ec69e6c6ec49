package service

import (
	"github.com/psiborg/task-manager/internal/core/domain"
	"github.com/psiborg/task-manager/internal/core/ports"
)

// taskScopes maps a role to the base predicate restricting the tasks it may see.
var taskScopes = map[domain.Role]func(callerID string) ports.TaskFilter{
	domain.RoleAdmin:   func(string) ports.TaskFilter { return ports.TaskFilter{} },
	domain.RoleManager: func(id string) ports.TaskFilter { return ports.TaskFilter{CreatedBy: id} },
	domain.RoleUser:    func(id string) ports.TaskFilter { return ports.TaskFilter{AssignedTo: id} },
}

// TaskVisibility computes the task predicate for caller. Optional filters
// are conjoined only when they hold an accepted value; anything else is
// ignored rather than rejected.
func TaskVisibility(caller *domain.Claims, q ports.TaskQuery) (ports.TaskFilter, error) {
	if caller == nil {
		return ports.TaskFilter{}, domain.ErrUnauthenticated
	}
	scope, ok := taskScopes[caller.Role]
	if !ok {
		return ports.TaskFilter{}, domain.ErrForbidden
	}

	f := scope(caller.SubjectID)
	if s := domain.TaskStatus(q.Status); s.Valid() {
		f.Status = s
	}
	if p := domain.Priority(q.Priority); p.Valid() {
		f.Priority = p
	}
	return f, nil
}
