package user

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/review-system/internal"
	"github.com/frahmantamala/review-system/internal/auth"
	"github.com/frahmantamala/review-system/internal/core/events"
)

// Repository defines the data access methods for users.
type Repository interface {
	Create(u *User) error
	GetByID(id int64) (*User, error)
	GetAll(req internal.PageRequest) ([]*User, int64, error)
	GetAllUsers() ([]*User, error)
	GetByManager(managerID int64) ([]*User, error)
	GetInManagedDepartments(managerID int64) ([]*User, error)
	Update(u *User) error
	Delete(id int64) error
	ExistsByUsername(username string) (bool, error)
	ExistsByEmail(email string) (bool, error)
	CountDirectReports(managerID int64) (int64, error)
}

// DepartmentDirectory resolves a user's department for responses and
// assignment checks. Returns (nil, nil) when the department does not exist.
type DepartmentDirectory interface {
	GetDepartmentInfo(id int64) (*DepartmentInfo, error)
}

type Service struct {
	repo       Repository
	depts      DepartmentDirectory
	bus        *events.EventBus
	logger     *slog.Logger
	bcryptCost int
}

func NewService(repo Repository, depts DepartmentDirectory, bus *events.EventBus, logger *slog.Logger, bcryptCost int) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		depts:      depts,
		bus:        bus,
		logger:     logger,
		bcryptCost: bcryptCost,
	}
}

func (s *Service) Create(dto CreateDTO, caller *auth.Caller) (*Response, error) {
	if err := auth.Authorize(auth.OpUserCreate, caller, nil); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	role := auth.Role(dto.Role)
	if dto.Role == "" {
		role = auth.RoleEmployee
	}

	// Advisory pre-checks; the unique constraints in the store are the
	// authoritative guard.
	if taken, err := s.repo.ExistsByUsername(dto.Username); err != nil {
		return nil, internal.NewInternalError("failed to check username", err)
	} else if taken {
		return nil, ErrUsernameTaken
	}
	if taken, err := s.repo.ExistsByEmail(dto.Email); err != nil {
		return nil, internal.NewInternalError("failed to check email", err)
	} else if taken {
		return nil, ErrEmailInUse
	}

	if dto.DepartmentID != nil {
		if err := s.requireDepartment(*dto.DepartmentID); err != nil {
			return nil, err
		}
	}
	if dto.ManagerID != nil {
		if _, err := s.vetManager(*dto.ManagerID); err != nil {
			return nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	u := &User{
		Username:     dto.Username,
		Email:        dto.Email,
		PasswordHash: string(hash),
		FirstName:    dto.FirstName,
		LastName:     dto.LastName,
		Role:         role,
		Active:       true,
		DepartmentID: dto.DepartmentID,
		ManagerID:    dto.ManagerID,
	}

	if err := s.repo.Create(u); err != nil {
		s.logger.Error("failed to create user", "error", err, "username", dto.Username)
		return nil, err
	}

	s.publish(events.UserCreated, u.ID, caller.ID)
	s.logger.Info("user created", "user_id", u.ID, "username", u.Username, "role", u.Role)

	return s.respond(u)
}

func (s *Service) GetAll(req internal.PageRequest, caller *auth.Caller) (*internal.Page[Response], error) {
	if err := auth.Authorize(auth.OpUserList, caller, nil); err != nil {
		return nil, err
	}

	users, total, err := s.repo.GetAll(req)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, err
	}

	responses, err := s.respondAll(users)
	if err != nil {
		return nil, err
	}
	page := internal.NewPage(responses, req, total)
	return &page, nil
}

func (s *Service) GetByID(id int64, caller *auth.Caller) (*Response, error) {
	u, err := s.getForAccess(auth.OpUserGet, id, caller)
	if err != nil {
		return nil, err
	}
	return s.respond(u)
}

// GetOwnProfile resolves the record from the caller's identity, never from a
// path parameter.
func (s *Service) GetOwnProfile(caller *auth.Caller) (*Response, error) {
	if caller == nil {
		return nil, internal.ErrAccessDenied
	}
	u, err := s.repo.GetByID(caller.ID)
	if err != nil {
		return nil, err
	}
	return s.respond(u)
}

// Update is the admin path: any field may change.
func (s *Service) Update(id int64, dto UpdateDTO, caller *auth.Caller) (*Response, error) {
	if err := auth.Authorize(auth.OpUserUpdate, caller, &auth.Target{UserID: id}); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if err := s.applyIdentity(u, dto); err != nil {
		return nil, err
	}
	if dto.Role != nil {
		u.Role = auth.Role(*dto.Role)
	}
	if dto.Active != nil {
		u.Active = *dto.Active
	}
	if dto.DepartmentID.Set {
		if dto.DepartmentID.Valid {
			if err := s.requireDepartment(dto.DepartmentID.Value); err != nil {
				return nil, err
			}
			deptID := dto.DepartmentID.Value
			u.DepartmentID = &deptID
		} else {
			u.DepartmentID = nil
		}
	}
	if dto.ManagerID.Set {
		if dto.ManagerID.Valid {
			if _, err := s.vetManager(dto.ManagerID.Value); err != nil {
				return nil, err
			}
			managerID := dto.ManagerID.Value
			u.ManagerID = &managerID
		} else {
			u.ManagerID = nil
		}
	}

	if err := s.repo.Update(u); err != nil {
		s.logger.Error("failed to update user", "error", err, "user_id", id)
		return nil, err
	}

	s.publish(events.UserUpdated, u.ID, caller.ID)

	return s.respond(u)
}

// UpdateOwnProfile applies only username, email and the name fields. Role,
// active flag, department and manager are dropped from the request without
// error, so a user cannot escalate through this path.
func (s *Service) UpdateOwnProfile(dto UpdateDTO, caller *auth.Caller) (*Response, error) {
	if caller == nil {
		return nil, internal.ErrAccessDenied
	}
	if err := auth.Authorize(auth.OpUserUpdateOwnProfile, caller, &auth.Target{UserID: caller.ID}); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByID(caller.ID)
	if err != nil {
		return nil, err
	}

	if err := s.applyIdentity(u, dto); err != nil {
		return nil, err
	}

	if err := s.repo.Update(u); err != nil {
		s.logger.Error("failed to update own profile", "error", err, "user_id", caller.ID)
		return nil, err
	}

	s.publish(events.UserUpdated, u.ID, caller.ID)

	return s.respond(u)
}

// UpdatePerformance records a review; callable by admins and the target's
// direct manager.
func (s *Service) UpdatePerformance(id int64, dto PerformanceDTO, caller *auth.Caller) (*Response, error) {
	u, err := s.getForAccess(auth.OpUserUpdatePerformance, id, caller)
	if err != nil {
		return nil, err
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if dto.PerformanceRating != nil {
		u.PerformanceRating = dto.PerformanceRating
	}
	if dto.ReviewNotes != nil {
		u.ReviewNotes = dto.ReviewNotes
	}
	if dto.ReviewDate != nil {
		u.ReviewDate = dto.ReviewDate
	}
	if dto.Goals != nil {
		u.Goals = dto.Goals
	}

	if err := s.repo.Update(u); err != nil {
		s.logger.Error("failed to update performance", "error", err, "user_id", id)
		return nil, err
	}

	s.publish(events.UserPerformanceRated, u.ID, caller.ID)
	s.logger.Info("performance review recorded", "user_id", id, "reviewer_id", caller.ID)

	return s.respond(u)
}

// GetUsersInMyDepartments returns every user for admins; for managers, the
// union of users across the departments they manage, deduplicated. Managers
// of no departments get an empty list.
func (s *Service) GetUsersInMyDepartments(caller *auth.Caller) ([]Response, error) {
	if err := auth.Authorize(auth.OpUserListDeptUsers, caller, nil); err != nil {
		return nil, err
	}

	var (
		users []*User
		err   error
	)
	if caller.Role.Admin() {
		users, err = s.repo.GetAllUsers()
	} else {
		users, err = s.repo.GetInManagedDepartments(caller.ID)
	}
	if err != nil {
		s.logger.Error("failed to list department users", "error", err, "caller_id", caller.ID)
		return nil, err
	}

	return s.respondAll(users)
}

// GetMyDirectReports returns users whose manager is the caller.
func (s *Service) GetMyDirectReports(caller *auth.Caller) ([]Response, error) {
	if err := auth.Authorize(auth.OpUserListReports, caller, nil); err != nil {
		return nil, err
	}

	users, err := s.repo.GetByManager(caller.ID)
	if err != nil {
		s.logger.Error("failed to list direct reports", "error", err, "caller_id", caller.ID)
		return nil, err
	}

	return s.respondAll(users)
}

func (s *Service) Deactivate(id int64, caller *auth.Caller) error {
	if err := auth.Authorize(auth.OpUserDeactivate, caller, &auth.Target{UserID: id}); err != nil {
		return err
	}

	u, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}

	u.Active = false
	if err := s.repo.Update(u); err != nil {
		s.logger.Error("failed to deactivate user", "error", err, "user_id", id)
		return err
	}

	s.publish(events.UserDeactivated, id, caller.ID)
	s.logger.Info("user deactivated", "user_id", id)
	return nil
}

func (s *Service) Delete(id int64, caller *auth.Caller) error {
	if err := auth.Authorize(auth.OpUserDelete, caller, &auth.Target{UserID: id}); err != nil {
		return err
	}

	if _, err := s.repo.GetByID(id); err != nil {
		return err
	}

	count, err := s.repo.CountDirectReports(id)
	if err != nil {
		return internal.NewInternalError("failed to count direct reports", err)
	}
	if count > 0 {
		return ErrHasReports
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete user", "error", err, "user_id", id)
		return err
	}

	s.publish(events.UserDeleted, id, caller.ID)
	s.logger.Info("user deleted", "user_id", id)
	return nil
}

// getForAccess loads the record for an operation whose rule depends on the
// target. Denial always wins over not-found: a caller the policy rejects gets
// the same access-denied error whether or not the id exists, so probing ids
// reveals nothing. Callers the policy would admit for any target (admins,
// self on reads) still see the 404.
func (s *Service) getForAccess(op auth.Operation, id int64, caller *auth.Caller) (*User, error) {
	u, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			if authErr := auth.Authorize(op, caller, &auth.Target{UserID: id}); authErr != nil {
				return nil, authErr
			}
		}
		return nil, err
	}

	if err := auth.Authorize(op, caller, &auth.Target{UserID: u.ID, ManagerID: u.ManagerID}); err != nil {
		return nil, err
	}
	return u, nil
}

// applyIdentity patches username, email and name fields, re-checking
// uniqueness when username or email actually change.
func (s *Service) applyIdentity(u *User, dto UpdateDTO) error {
	if dto.Username != nil && *dto.Username != u.Username {
		if taken, err := s.repo.ExistsByUsername(*dto.Username); err != nil {
			return internal.NewInternalError("failed to check username", err)
		} else if taken {
			return ErrUsernameTaken
		}
		u.Username = *dto.Username
	}
	if dto.Email != nil && *dto.Email != u.Email {
		if taken, err := s.repo.ExistsByEmail(*dto.Email); err != nil {
			return internal.NewInternalError("failed to check email", err)
		} else if taken {
			return ErrEmailInUse
		}
		u.Email = *dto.Email
	}
	if dto.FirstName != nil {
		u.FirstName = *dto.FirstName
	}
	if dto.LastName != nil {
		u.LastName = *dto.LastName
	}
	return nil
}

func (s *Service) requireDepartment(deptID int64) error {
	dept, err := s.depts.GetDepartmentInfo(deptID)
	if err != nil {
		return internal.NewInternalError("failed to look up department", err)
	}
	if dept == nil {
		return ErrDepartmentNotFound
	}
	return nil
}

// vetManager confirms the user exists and holds a role eligible to manage
// other users.
func (s *Service) vetManager(managerID int64) (*User, error) {
	manager, err := s.repo.GetByID(managerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrManagerNotFound
		}
		return nil, err
	}
	if !manager.Role.Qualifying() {
		return nil, NewIneligibleManagerError(manager)
	}
	return manager, nil
}

func (s *Service) respond(u *User) (*Response, error) {
	var dept *DepartmentInfo
	if u.DepartmentID != nil {
		var err error
		dept, err = s.depts.GetDepartmentInfo(*u.DepartmentID)
		if err != nil {
			return nil, internal.NewInternalError("failed to look up department", err)
		}
	}

	var manager *User
	if u.ManagerID != nil {
		var err error
		manager, err = s.repo.GetByID(*u.ManagerID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	resp := toResponse(u, dept, manager)
	return &resp, nil
}

func (s *Service) respondAll(users []*User) ([]Response, error) {
	responses := make([]Response, 0, len(users))
	for _, u := range users {
		resp, err := s.respond(u)
		if err != nil {
			return nil, err
		}
		responses = append(responses, *resp)
	}
	return responses, nil
}

func (s *Service) publish(eventType string, entityID, actorID int64) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(context.Background(), events.NewAuditEvent(eventType, entityID, actorID)); err != nil {
		s.logger.Warn("failed to publish audit event", "event_type", eventType, "error", err)
	}
}
