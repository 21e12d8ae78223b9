package postgres_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/review-system/internal"
	"github.com/frahmantamala/review-system/internal/auth"
	"github.com/frahmantamala/review-system/internal/user"
	userPostgres "github.com/frahmantamala/review-system/internal/user/postgres"
)

func TestUserPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Postgres Suite")
}

type testOrganization struct {
	ID   int64 `gorm:"primaryKey"`
	Name string
}

func (testOrganization) TableName() string {
	return "organizations"
}

type testDepartment struct {
	ID             int64 `gorm:"primaryKey"`
	Name           string
	OrganizationID int64
	ManagerID      *int64
}

func (testDepartment) TableName() string {
	return "departments"
}

var _ = Describe("User Repository", func() {
	var (
		db    *gorm.DB
		repo  user.Repository
		depts user.DepartmentDirectory
	)

	newUser := func(username string, role auth.Role) *user.User {
		return &user.User{
			Username:     username,
			Email:        username + "@example.com",
			PasswordHash: "x",
			FirstName:    "Test",
			LastName:     username,
			Role:         role,
			Active:       true,
		}
	}

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(db.AutoMigrate(&user.User{}, &testOrganization{}, &testDepartment{})).To(Succeed())
		Expect(db.Exec("CREATE UNIQUE INDEX idx_users_username ON users(username)").Error).To(Succeed())
		Expect(db.Exec("CREATE UNIQUE INDEX idx_users_email ON users(email)").Error).To(Succeed())

		repo = userPostgres.NewUserRepository(db)
		depts = userPostgres.NewDepartmentDirectory(db)
	})

	Describe("Create", func() {
		It("should map a duplicate username to the username conflict", func() {
			Expect(repo.Create(newUser("jdoe", auth.RoleEmployee))).To(Succeed())

			dup := newUser("jdoe", auth.RoleEmployee)
			dup.Email = "other@example.com"

			Expect(repo.Create(dup)).To(Equal(user.ErrUsernameTaken))
		})

		It("should map a duplicate email to the email conflict", func() {
			Expect(repo.Create(newUser("jdoe", auth.RoleEmployee))).To(Succeed())

			dup := newUser("other", auth.RoleEmployee)
			dup.Email = "jdoe@example.com"

			Expect(repo.Create(dup)).To(Equal(user.ErrEmailInUse))
		})
	})

	Describe("GetAll", func() {
		It("should sort by last name by default", func() {
			Expect(repo.Create(newUser("zara", auth.RoleEmployee))).To(Succeed())
			Expect(repo.Create(newUser("adam", auth.RoleEmployee))).To(Succeed())

			users, total, err := repo.GetAll(internal.PageRequest{Page: 0, Size: 10, SortBy: "last_name", SortDir: "asc"})

			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(2)))
			Expect(users[0].Username).To(Equal("adam"))
		})
	})

	Describe("GetInManagedDepartments", func() {
		It("should union members across managed departments without duplicates", func() {
			org := testOrganization{Name: "Acme"}
			Expect(db.Create(&org).Error).To(Succeed())

			mgr := newUser("mgr", auth.RoleManager)
			Expect(repo.Create(mgr)).To(Succeed())

			eng := testDepartment{Name: "Engineering", OrganizationID: org.ID, ManagerID: &mgr.ID}
			sales := testDepartment{Name: "Sales", OrganizationID: org.ID, ManagerID: &mgr.ID}
			other := testDepartment{Name: "Support", OrganizationID: org.ID}
			Expect(db.Create(&eng).Error).To(Succeed())
			Expect(db.Create(&sales).Error).To(Succeed())
			Expect(db.Create(&other).Error).To(Succeed())

			u1 := newUser("u1", auth.RoleEmployee)
			u1.DepartmentID = &eng.ID
			Expect(repo.Create(u1)).To(Succeed())

			u2 := newUser("u2", auth.RoleEmployee)
			u2.DepartmentID = &sales.ID
			Expect(repo.Create(u2)).To(Succeed())

			outsider := newUser("outsider", auth.RoleEmployee)
			outsider.DepartmentID = &other.ID
			Expect(repo.Create(outsider)).To(Succeed())

			members, err := repo.GetInManagedDepartments(mgr.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(members).To(HaveLen(2))
			usernames := []string{members[0].Username, members[1].Username}
			Expect(usernames).To(ConsistOf("u1", "u2"))
		})
	})

	Describe("CountDirectReports", func() {
		It("should count users reporting to the manager", func() {
			mgr := newUser("mgr", auth.RoleManager)
			Expect(repo.Create(mgr)).To(Succeed())

			emp := newUser("emp", auth.RoleEmployee)
			emp.ManagerID = &mgr.ID
			Expect(repo.Create(emp)).To(Succeed())

			count, err := repo.CountDirectReports(mgr.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(1)))
		})
	})

	Describe("DepartmentDirectory", func() {
		It("should resolve a department with its organization name", func() {
			org := testOrganization{Name: "Acme"}
			Expect(db.Create(&org).Error).To(Succeed())
			dept := testDepartment{Name: "Engineering", OrganizationID: org.ID}
			Expect(db.Create(&dept).Error).To(Succeed())

			info, err := depts.GetDepartmentInfo(dept.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(info).NotTo(BeNil())
			Expect(info.Name).To(Equal("Engineering"))
			Expect(info.OrganizationName).To(Equal("Acme"))
		})

		It("should return nil for a missing department", func() {
			info, err := depts.GetDepartmentInfo(404)

			Expect(err).NotTo(HaveOccurred())
			Expect(info).To(BeNil())
		})
	})
})
