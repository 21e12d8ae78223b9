package auth

import (
	"github.com/frahmantamala/review-system/internal"
)

// Operation names a guarded service-level action. Authorization runs at the
// service boundary as a plain predicate over (operation, caller, target), so
// every rule is testable without standing up the transport layer.
type Operation string

const (
	OpUserCreate            Operation = "user.create"
	OpUserList              Operation = "user.list"
	OpUserGet               Operation = "user.get"
	OpUserUpdate            Operation = "user.update"
	OpUserUpdateOwnProfile  Operation = "user.update_own_profile"
	OpUserUpdatePerformance Operation = "user.update_performance"
	OpUserDeactivate        Operation = "user.deactivate"
	OpUserDelete            Operation = "user.delete"
	OpUserListReports       Operation = "user.list_reports"
	OpUserListDeptUsers     Operation = "user.list_department_users"
)

// Target identifies the user record an operation acts on, where relevant.
// ManagerID is the target's direct manager, used for the one-level
// "direct manager may view" rule; the walk never recurses up the chain.
type Target struct {
	UserID    int64
	ManagerID *int64
}

// Authorize evaluates the access rule for op against the caller. A nil return
// means allow. Denials use a uniform message so they never leak whether the
// target exists.
func Authorize(op Operation, caller *Caller, target *Target) error {
	if caller == nil {
		return internal.NewUnauthorizedError("Authentication required", internal.ErrCodeInvalidToken)
	}

	switch op {
	case OpUserCreate, OpUserUpdate, OpUserList:
		if caller.Role.Admin() {
			return nil
		}
		return internal.ErrAccessDenied

	case OpUserDeactivate, OpUserDelete:
		if caller.Role == RoleSystemAdmin {
			return nil
		}
		return internal.ErrAccessDenied

	case OpUserGet:
		if caller.Role.Admin() {
			return nil
		}
		if target != nil {
			if target.UserID == caller.ID {
				return nil
			}
			if target.ManagerID != nil && *target.ManagerID == caller.ID {
				return nil
			}
		}
		return internal.ErrAccessDenied

	case OpUserUpdateOwnProfile:
		if target != nil && target.UserID == caller.ID {
			return nil
		}
		return internal.ErrAccessDenied

	case OpUserUpdatePerformance:
		if caller.Role.Admin() {
			return nil
		}
		if target != nil && target.ManagerID != nil && *target.ManagerID == caller.ID {
			return nil
		}
		return internal.ErrAccessDenied

	case OpUserListReports, OpUserListDeptUsers:
		if caller.Role.Qualifying() {
			return nil
		}
		return internal.ErrAccessDenied
	}

	// Unknown operations stay open to any authenticated caller, matching the
	// organization and department mutation endpoints which carry no
	// role restriction.
	return nil
}
