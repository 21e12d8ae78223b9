package postgres_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/review-system/internal"
	"github.com/frahmantamala/review-system/internal/organization"
	orgPostgres "github.com/frahmantamala/review-system/internal/organization/postgres"
)

func TestOrganizationPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Organization Postgres Suite")
}

type testDepartment struct {
	ID             int64 `gorm:"primaryKey"`
	Name           string
	OrganizationID int64
}

func (testDepartment) TableName() string {
	return "departments"
}

var _ = Describe("Organization Repository", func() {
	var (
		db   *gorm.DB
		repo organization.Repository
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(db.AutoMigrate(&organization.Organization{}, &testDepartment{})).To(Succeed())
		Expect(db.Exec("CREATE UNIQUE INDEX idx_organizations_name ON organizations(name)").Error).To(Succeed())

		repo = orgPostgres.NewOrganizationRepository(db)
	})

	seed := func(name string, active bool) *organization.Organization {
		org := &organization.Organization{Name: name, Active: active}
		Expect(repo.Create(org)).To(Succeed())
		return org
	}

	Describe("Create", func() {
		It("should persist and assign an id", func() {
			org := seed("Acme Corp", true)

			Expect(org.ID).To(BeNumerically(">", 0))

			found, err := repo.GetByID(org.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.Name).To(Equal("Acme Corp"))
		})

		It("should map a unique violation to the name conflict", func() {
			seed("Acme Corp", true)

			err := repo.Create(&organization.Organization{Name: "Acme Corp", Active: true})

			Expect(err).To(Equal(organization.ErrNameTaken))
		})
	})

	Describe("GetByID", func() {
		It("should return not found for an unknown id", func() {
			_, err := repo.GetByID(404)

			Expect(err).To(Equal(organization.ErrNotFound))
		})
	})

	Describe("GetAll", func() {
		It("should page and sort by the requested column", func() {
			seed("Zenith", true)
			seed("Acme", true)
			seed("Midway", false)

			orgs, total, err := repo.GetAll(internal.PageRequest{Page: 0, Size: 2, SortBy: "name", SortDir: "asc"})

			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(3)))
			Expect(orgs).To(HaveLen(2))
			Expect(orgs[0].Name).To(Equal("Acme"))
			Expect(orgs[1].Name).To(Equal("Midway"))
		})
	})

	Describe("GetActive", func() {
		It("should return only active organizations", func() {
			seed("Acme", true)
			seed("Midway", false)

			orgs, err := repo.GetActive()

			Expect(err).NotTo(HaveOccurred())
			Expect(orgs).To(HaveLen(1))
			Expect(orgs[0].Name).To(Equal("Acme"))
		})
	})

	Describe("SearchByName", func() {
		It("should match case-insensitive substrings", func() {
			seed("Acme Corp", true)
			seed("Zenith", true)

			orgs, err := repo.SearchByName("aCmE")

			Expect(err).NotTo(HaveOccurred())
			Expect(orgs).To(HaveLen(1))
			Expect(orgs[0].Name).To(Equal("Acme Corp"))
		})
	})

	Describe("CountDepartments", func() {
		It("should count only the organization's departments", func() {
			acme := seed("Acme", true)
			zenith := seed("Zenith", true)
			Expect(db.Create(&testDepartment{Name: "Engineering", OrganizationID: acme.ID}).Error).To(Succeed())
			Expect(db.Create(&testDepartment{Name: "Sales", OrganizationID: acme.ID}).Error).To(Succeed())
			Expect(db.Create(&testDepartment{Name: "Engineering", OrganizationID: zenith.ID}).Error).To(Succeed())

			count, err := repo.CountDepartments(acme.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(2)))
		})
	})

	Describe("Delete", func() {
		It("should remove the row", func() {
			org := seed("Acme", true)

			Expect(repo.Delete(org.ID)).To(Succeed())

			_, err := repo.GetByID(org.ID)
			Expect(err).To(Equal(organization.ErrNotFound))
		})
	})
})
