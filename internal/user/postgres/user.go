package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/frahmantamala/review-system/internal"
	"github.com/frahmantamala/review-system/internal/core/database"
	"github.com/frahmantamala/review-system/internal/user"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.Repository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(u *user.User) error {
	if err := r.db.Create(u).Error; err != nil {
		return translateUniqueViolation(err)
	}
	return nil
}

func (r *UserRepository) GetByID(id int64) (*user.User, error) {
	var u user.User
	err := r.db.Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetAll(req internal.PageRequest) ([]*user.User, int64, error) {
	var total int64
	if err := r.db.Model(&user.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []*user.User
	err := r.db.
		Order(req.OrderClause()).
		Limit(req.Size).
		Offset(req.Offset()).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserRepository) GetAllUsers() ([]*user.User, error) {
	var users []*user.User
	err := r.db.Order("last_name ASC, first_name ASC").Find(&users).Error
	return users, err
}

func (r *UserRepository) GetByManager(managerID int64) ([]*user.User, error) {
	var users []*user.User
	err := r.db.Where("manager_id = ?", managerID).Order("last_name ASC, first_name ASC").Find(&users).Error
	return users, err
}

// GetInManagedDepartments returns the union of users across every department
// the given user manages. The join deduplicates users who appear in more
// than one managed department.
func (r *UserRepository) GetInManagedDepartments(managerID int64) ([]*user.User, error) {
	var users []*user.User
	err := r.db.
		Distinct("users.*").
		Joins("JOIN departments ON departments.id = users.department_id").
		Where("departments.manager_id = ?", managerID).
		Order("users.last_name ASC, users.first_name ASC").
		Find(&users).Error
	return users, err
}

func (r *UserRepository) Update(u *user.User) error {
	if err := r.db.Save(u).Error; err != nil {
		return translateUniqueViolation(err)
	}
	return nil
}

func (r *UserRepository) Delete(id int64) error {
	return r.db.Where("id = ?", id).Delete(&user.User{}).Error
}

func (r *UserRepository) ExistsByUsername(username string) (bool, error) {
	var count int64
	err := r.db.Model(&user.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	err := r.db.Model(&user.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) CountDirectReports(managerID int64) (int64, error) {
	var count int64
	err := r.db.Model(&user.User{}).Where("manager_id = ?", managerID).Count(&count).Error
	return count, err
}

// translateUniqueViolation maps a constraint violation to the right domain
// conflict by inspecting which column the constraint covers.
func translateUniqueViolation(err error) error {
	if !database.IsUniqueViolation(err) {
		return err
	}

	detail := err.Error()
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		detail = pgErr.ConstraintName + " " + pgErr.Detail
	}

	switch {
	case strings.Contains(detail, "email"):
		return user.ErrEmailInUse
	case strings.Contains(detail, "username"):
		return user.ErrUsernameTaken
	default:
		return user.ErrUsernameTaken
	}
}

// DepartmentDirectory resolves departments for the user service without
// importing the department package.
type DepartmentDirectory struct {
	db *gorm.DB
}

func NewDepartmentDirectory(db *gorm.DB) user.DepartmentDirectory {
	return &DepartmentDirectory{db: db}
}

func (d *DepartmentDirectory) GetDepartmentInfo(id int64) (*user.DepartmentInfo, error) {
	var info user.DepartmentInfo
	err := d.db.Table("departments").
		Select("departments.id", "departments.name", "organizations.name AS organization_name").
		Joins("JOIN organizations ON organizations.id = departments.organization_id").
		Where("departments.id = ?", id).
		Take(&info).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &info, nil
}
