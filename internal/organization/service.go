package organization

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/review-system/internal"
	"github.com/frahmantamala/review-system/internal/core/events"
)

// Repository defines the data access methods for organizations.
type Repository interface {
	Create(org *Organization) error
	GetByID(id int64) (*Organization, error)
	GetAll(req internal.PageRequest) ([]*Organization, int64, error)
	GetActive() ([]*Organization, error)
	SearchByName(name string) ([]*Organization, error)
	Update(org *Organization) error
	Delete(id int64) error
	ExistsByName(name string) (bool, error)
	CountDepartments(orgID int64) (int64, error)
}

type Service struct {
	repo   Repository
	bus    *events.EventBus
	logger *slog.Logger
}

func NewService(repo Repository, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		bus:    bus,
		logger: logger,
	}
}

// Create adds a new organization. The name pre-check gives a friendly error;
// the unique constraint in the store is the authoritative guard, and a
// constraint violation surfaces as the same conflict.
func (s *Service) Create(dto CreateDTO, actorID int64) (*Response, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if taken, err := s.repo.ExistsByName(dto.Name); err != nil {
		return nil, internal.NewInternalError("failed to check organization name", err)
	} else if taken {
		return nil, ErrNameTaken
	}

	org := &Organization{
		Name:        dto.Name,
		Description: dto.Description,
		Active:      true,
	}

	if err := s.repo.Create(org); err != nil {
		s.logger.Error("failed to create organization", "error", err, "name", dto.Name)
		return nil, err
	}

	s.publish(events.OrganizationCreated, org.ID, actorID)
	s.logger.Info("organization created", "organization_id", org.ID, "name", org.Name)

	resp := toResponse(org, 0)
	return &resp, nil
}

func (s *Service) GetByID(id int64) (*Response, error) {
	org, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	return s.respond(org)
}

func (s *Service) GetAll(req internal.PageRequest) (*internal.Page[Response], error) {
	orgs, total, err := s.repo.GetAll(req)
	if err != nil {
		s.logger.Error("failed to list organizations", "error", err)
		return nil, err
	}

	responses, err := s.respondAll(orgs)
	if err != nil {
		return nil, err
	}
	page := internal.NewPage(responses, req, total)
	return &page, nil
}

func (s *Service) GetActive() ([]Response, error) {
	orgs, err := s.repo.GetActive()
	if err != nil {
		s.logger.Error("failed to list active organizations", "error", err)
		return nil, err
	}
	return s.respondAll(orgs)
}

func (s *Service) SearchByName(name string) ([]Response, error) {
	orgs, err := s.repo.SearchByName(name)
	if err != nil {
		s.logger.Error("organization search failed", "error", err, "name", name)
		return nil, err
	}
	return s.respondAll(orgs)
}

// Update applies a partial update; only fields set in the patch change.
func (s *Service) Update(id int64, dto UpdateDTO, actorID int64) (*Response, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	org, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil && *dto.Name != org.Name {
		if taken, err := s.repo.ExistsByName(*dto.Name); err != nil {
			return nil, internal.NewInternalError("failed to check organization name", err)
		} else if taken {
			return nil, ErrNameTaken
		}
		org.Name = *dto.Name
	}
	if dto.Description != nil {
		org.Description = *dto.Description
	}
	if dto.Active != nil {
		org.Active = *dto.Active
	}

	if err := s.repo.Update(org); err != nil {
		s.logger.Error("failed to update organization", "error", err, "organization_id", id)
		return nil, err
	}

	s.publish(events.OrganizationUpdated, org.ID, actorID)

	return s.respond(org)
}

// Deactivate soft-deletes: it succeeds regardless of owned departments.
func (s *Service) Deactivate(id int64, actorID int64) error {
	org, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}

	org.Active = false
	if err := s.repo.Update(org); err != nil {
		s.logger.Error("failed to deactivate organization", "error", err, "organization_id", id)
		return err
	}

	s.publish(events.OrganizationDeactivated, id, actorID)
	s.logger.Info("organization deactivated", "organization_id", id)
	return nil
}

// Delete hard-deletes, refused while any department still belongs to the
// organization.
func (s *Service) Delete(id int64, actorID int64) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return err
	}

	count, err := s.repo.CountDepartments(id)
	if err != nil {
		return internal.NewInternalError("failed to count departments", err)
	}
	if count > 0 {
		return ErrHasDepartments
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete organization", "error", err, "organization_id", id)
		return err
	}

	s.publish(events.OrganizationDeleted, id, actorID)
	s.logger.Info("organization deleted", "organization_id", id)
	return nil
}

func (s *Service) respond(org *Organization) (*Response, error) {
	count, err := s.repo.CountDepartments(org.ID)
	if err != nil {
		return nil, internal.NewInternalError("failed to count departments", err)
	}
	resp := toResponse(org, int(count))
	return &resp, nil
}

func (s *Service) respondAll(orgs []*Organization) ([]Response, error) {
	responses := make([]Response, 0, len(orgs))
	for _, org := range orgs {
		resp, err := s.respond(org)
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
