package postgres

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/frahmantamala/review-system/internal"
	"github.com/frahmantamala/review-system/internal/core/database"
	"github.com/frahmantamala/review-system/internal/organization"
)

type OrganizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) organization.Repository {
	return &OrganizationRepository{db: db}
}

func (r *OrganizationRepository) Create(org *organization.Organization) error {
	if err := r.db.Create(org).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return organization.ErrNameTaken
		}
		return err
	}
	return nil
}

func (r *OrganizationRepository) GetByID(id int64) (*organization.Organization, error) {
	var org organization.Organization
	err := r.db.Where("id = ?", id).First(&org).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, organization.ErrNotFound
		}
		return nil, err
	}
	return &org, nil
}

func (r *OrganizationRepository) GetAll(req internal.PageRequest) ([]*organization.Organization, int64, error) {
	var total int64
	if err := r.db.Model(&organization.Organization{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orgs []*organization.Organization
	err := r.db.
		Order(req.OrderClause()).
		Limit(req.Size).
		Offset(req.Offset()).
		Find(&orgs).Error
	if err != nil {
		return nil, 0, err
	}
	return orgs, total, nil
}

func (r *OrganizationRepository) GetActive() ([]*organization.Organization, error) {
	var orgs []*organization.Organization
	err := r.db.Where("active = ?", true).Order("name ASC").Find(&orgs).Error
	return orgs, err
}

func (r *OrganizationRepository) SearchByName(name string) ([]*organization.Organization, error) {
	var orgs []*organization.Organization
	pattern := "%" + strings.ToLower(name) + "%"
	err := r.db.Where("LOWER(name) LIKE ?", pattern).Order("name ASC").Find(&orgs).Error
	return orgs, err
}

func (r *OrganizationRepository) Update(org *organization.Organization) error {
	if err := r.db.Save(org).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return organization.ErrNameTaken
		}
		return err
	}
	return nil
}

func (r *OrganizationRepository) Delete(id int64) error {
	return r.db.Where("id = ?", id).Delete(&organization.Organization{}).Error
}

func (r *OrganizationRepository) ExistsByName(name string) (bool, error) {
	var count int64
	err := r.db.Model(&organization.Organization{}).Where("name = ?", name).Count(&count).Error
	return count > 0, err
}

func (r *OrganizationRepository) CountDepartments(orgID int64) (int64, error) {
	var count int64
	err := r.db.Table("departments").Where("organization_id = ?", orgID).Count(&count).Error
	return count, err
}
