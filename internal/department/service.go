package department

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/review-system/internal"
	"github.com/frahmantamala/review-system/internal/core/events"
)

// Repository defines the data access methods for departments.
type Repository interface {
	Create(dept *Department) error
	GetByID(id int64) (*Department, error)
	GetAll(req internal.PageRequest) ([]*Department, int64, error)
	GetActive() ([]*Department, error)
	SearchByName(name string) ([]*Department, error)
	GetByOrganization(orgID int64) ([]*Department, error)
	Update(dept *Department) error
	Delete(id int64) error
	ExistsByName(name string, orgID int64) (bool, error)
	CountUsers(deptID int64) (int64, error)
}

// OrganizationDirectory resolves the owning organization. Returns (nil, nil)
// when the organization does not exist.
type OrganizationDirectory interface {
	GetOrganizationInfo(id int64) (*OrganizationInfo, error)
}

// ManagerDirectory resolves a user considered for manager assignment.
// Returns (nil, nil) when the user does not exist.
type ManagerDirectory interface {
	GetManagerInfo(id int64) (*ManagerInfo, error)
}

var ErrOrganizationNotFound = internal.NewNotFoundError("Organization not found", internal.ErrCodeOrganizationNotFound)

type Service struct {
	repo     Repository
	orgs     OrganizationDirectory
	managers ManagerDirectory
	bus      *events.EventBus
	logger   *slog.Logger
}

func NewService(repo Repository, orgs OrganizationDirectory, managers ManagerDirectory, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		orgs:     orgs,
		managers: managers,
		bus:      bus,
		logger:   logger,
	}
}

func (s *Service) Create(dto CreateDTO, actorID int64) (*Response, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	org, err := s.orgs.GetOrganizationInfo(dto.OrganizationID)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up organization", err)
	}
	if org == nil {
		return nil, ErrOrganizationNotFound
	}

	if dto.ManagerID != nil {
		if _, err := s.vetManager(*dto.ManagerID); err != nil {
			return nil, err
		}
	}

	// Advisory pre-check; the per-organization unique constraint in the
	// store is the authoritative guard.
	if taken, err := s.repo.ExistsByName(dto.Name, dto.OrganizationID); err != nil {
		return nil, internal.NewInternalError("failed to check department name", err)
	} else if taken {
		return nil, ErrNameTaken
	}

	dept := &Department{
		Name:           dto.Name,
		Description:    dto.Description,
		OrganizationID: dto.OrganizationID,
		ManagerID:      dto.ManagerID,
		Active:         true,
	}

	if err := s.repo.Create(dept); err != nil {
		s.logger.Error("failed to create department", "error", err, "name", dto.Name, "organization_id", dto.OrganizationID)
		return nil, err
	}

	s.publish(events.DepartmentCreated, dept.ID, actorID)
	s.logger.Info("department created", "department_id", dept.ID, "name", dept.Name, "organization_id", dept.OrganizationID)

	return s.respond(dept)
}

func (s *Service) GetByID(id int64) (*Response, error) {
	dept, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	return s.respond(dept)
}

func (s *Service) GetAll(req internal.PageRequest) (*internal.Page[Response], error) {
	depts, total, err := s.repo.GetAll(req)
	if err != nil {
		s.logger.Error("failed to list departments", "error", err)
		return nil, err
	}

	responses, err := s.respondAll(depts)
	if err != nil {
		return nil, err
	}
	page := internal.NewPage(responses, req, total)
	return &page, nil
}

func (s *Service) GetActive() ([]Response, error) {
	depts, err := s.repo.GetActive()
	if err != nil {
		s.logger.Error("failed to list active departments", "error", err)
		return nil, err
	}
	return s.respondAll(depts)
}

func (s *Service) SearchByName(name string) ([]Response, error) {
	depts, err := s.repo.SearchByName(name)
	if err != nil {
		s.logger.Error("department search failed", "error", err, "name", name)
		return nil, err
	}
	return s.respondAll(depts)
}

func (s *Service) GetByOrganization(orgID int64) ([]Response, error) {
	org, err := s.orgs.GetOrganizationInfo(orgID)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up organization", err)
	}
	if org == nil {
		return nil, ErrOrganizationNotFound
	}

	depts, err := s.repo.GetByOrganization(orgID)
	if err != nil {
		s.logger.Error("failed to list departments by organization", "error", err, "organization_id", orgID)
		return nil, err
	}
	return s.respondAll(depts)
}

func (s *Service) Update(id int64, dto UpdateDTO, actorID int64) (*Response, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	dept, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil && *dto.Name != dept.Name {
		if taken, err := s.repo.ExistsByName(*dto.Name, dept.OrganizationID); err != nil {
			return nil, internal.NewInternalError("failed to check department name", err)
		} else if taken {
			return nil, ErrNameTaken
		}
		dept.Name = *dto.Name
	}
	if dto.Description != nil {
		dept.Description = *dto.Description
	}
	if dto.ManagerID.Set {
		if dto.ManagerID.Valid {
			if _, err := s.vetManager(dto.ManagerID.Value); err != nil {
				return nil, err
			}
			managerID := dto.ManagerID.Value
			dept.ManagerID = &managerID
		} else {
			dept.ManagerID = nil
		}
	}
	if dto.Active != nil {
		dept.Active = *dto.Active
	}

	if err := s.repo.Update(dept); err != nil {
		s.logger.Error("failed to update department", "error", err, "department_id", id)
		return nil, err
	}

	s.publish(events.DepartmentUpdated, dept.ID, actorID)

	return s.respond(dept)
}

// RemoveManager clears the manager assignment; it is not an error if the
// department has no manager.
func (s *Service) RemoveManager(id int64, actorID int64) (*Response, error) {
	dept, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	dept.ManagerID = nil
	if err := s.repo.Update(dept); err != nil {
		s.logger.Error("failed to remove department manager", "error", err, "department_id", id)
		return nil, err
	}

	s.publish(events.DepartmentUpdated, dept.ID, actorID)
	s.logger.Info("department manager removed", "department_id", id)

	return s.respond(dept)
}

func (s *Service) Deactivate(id int64, actorID int64) error {
	dept, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}

	dept.Active = false
	if err := s.repo.Update(dept); err != nil {
		s.logger.Error("failed to deactivate department", "error", err, "department_id", id)
		return err
	}

	s.publish(events.DepartmentDeactivated, id, actorID)
	s.logger.Info("department deactivated", "department_id", id)
	return nil
}

func (s *Service) Delete(id int64, actorID int64) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return err
	}

	count, err := s.repo.CountUsers(id)
	if err != nil {
		return internal.NewInternalError("failed to count department users", err)
	}
	if count > 0 {
		return ErrHasUsers
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete department", "error", err, "department_id", id)
		return err
	}

	s.publish(events.DepartmentDeleted, id, actorID)
	s.logger.Info("department deleted", "department_id", id)
	return nil
}

// vetManager confirms the user exists and holds a role eligible to manage a
// department.
func (s *Service) vetManager(managerID int64) (*ManagerInfo, error) {
	manager, err := s.managers.GetManagerInfo(managerID)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up manager", err)
	}
	if manager == nil {
		return nil, ErrManagerNotFound
	}
	if !manager.Role.Qualifying() {
		return nil, NewIneligibleManagerError(manager)
	}
	return manager, nil
}

func (s *Service) respond(dept *Department) (*Response, error) {
	org, err := s.orgs.GetOrganizationInfo(dept.OrganizationID)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up organization", err)
	}

	var manager *ManagerInfo
	if dept.ManagerID != nil {
		manager, err = s.managers.GetManagerInfo(*dept.ManagerID)
		if err != nil {
			return nil, internal.NewInternalError("failed to look up manager", err)
		}
	}

	count, err := s.repo.CountUsers(dept.ID)
	if err != nil {
		return nil, internal.NewInternalError("failed to count department users", err)
	}

	resp := toResponse(dept, org, manager, int(count))
	return &resp, nil
}

func (s *Service) respondAll(depts []*Department) ([]Response, error) {
	responses := make([]Response, 0, len(depts))
	for _, dept := range depts {
		resp, err := s.respond(dept)
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
