package postgres

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/frahmantamala/review-system/internal"
	"github.com/frahmantamala/review-system/internal/core/database"
	"github.com/frahmantamala/review-system/internal/department"
)

type DepartmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) department.Repository {
	return &DepartmentRepository{db: db}
}

func (r *DepartmentRepository) Create(dept *department.Department) error {
	if err := r.db.Create(dept).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return department.ErrNameTaken
		}
		return err
	}
	return nil
}

func (r *DepartmentRepository) GetByID(id int64) (*department.Department, error) {
	var dept department.Department
	err := r.db.Where("id = ?", id).First(&dept).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, department.ErrNotFound
		}
		return nil, err
	}
	return &dept, nil
}

func (r *DepartmentRepository) GetAll(req internal.PageRequest) ([]*department.Department, int64, error) {
	var total int64
	if err := r.db.Model(&department.Department{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var depts []*department.Department
	err := r.db.
		Order(req.OrderClause()).
		Limit(req.Size).
		Offset(req.Offset()).
		Find(&depts).Error
	if err != nil {
		return nil, 0, err
	}
	return depts, total, nil
}

func (r *DepartmentRepository) GetActive() ([]*department.Department, error) {
	var depts []*department.Department
	err := r.db.Where("active = ?", true).Order("name ASC").Find(&depts).Error
	return depts, err
}

func (r *DepartmentRepository) SearchByName(name string) ([]*department.Department, error) {
	var depts []*department.Department
	pattern := "%" + strings.ToLower(name) + "%"
	err := r.db.Where("LOWER(name) LIKE ?", pattern).Order("name ASC").Find(&depts).Error
	return depts, err
}

func (r *DepartmentRepository) GetByOrganization(orgID int64) ([]*department.Department, error) {
	var depts []*department.Department
	err := r.db.Where("organization_id = ?", orgID).Order("name ASC").Find(&depts).Error
	return depts, err
}

func (r *DepartmentRepository) Update(dept *department.Department) error {
	if err := r.db.Save(dept).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return department.ErrNameTaken
		}
		return err
	}
	return nil
}

func (r *DepartmentRepository) Delete(id int64) error {
	return r.db.Where("id = ?", id).Delete(&department.Department{}).Error
}

func (r *DepartmentRepository) ExistsByName(name string, orgID int64) (bool, error) {
	var count int64
	err := r.db.Model(&department.Department{}).
		Where("name = ? AND organization_id = ?", name, orgID).
		Count(&count).Error
	return count > 0, err
}

func (r *DepartmentRepository) CountUsers(deptID int64) (int64, error) {
	var count int64
	err := r.db.Table("users").Where("department_id = ?", deptID).Count(&count).Error
	return count, err
}

// OrganizationDirectory resolves organizations for the department service
// without importing the organization package.
type OrganizationDirectory struct {
	db *gorm.DB
}

func NewOrganizationDirectory(db *gorm.DB) department.OrganizationDirectory {
	return &OrganizationDirectory{db: db}
}

func (d *OrganizationDirectory) GetOrganizationInfo(id int64) (*department.OrganizationInfo, error) {
	var info department.OrganizationInfo
	err := d.db.Table("organizations").Select("id", "name").Where("id = ?", id).Take(&info).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &info, nil
}

// ManagerDirectory resolves candidate managers from the users table.
type ManagerDirectory struct {
	db *gorm.DB
}

func NewManagerDirectory(db *gorm.DB) department.ManagerDirectory {
	return &ManagerDirectory{db: db}
}

func (d *ManagerDirectory) GetManagerInfo(id int64) (*department.ManagerInfo, error) {
	var info department.ManagerInfo
	err := d.db.Table("users").
		Select("id", "first_name", "last_name", "role", "active").
		Where("id = ?", id).
		Take(&info).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &info, nil
}
