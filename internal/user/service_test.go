package user_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"sort"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/review-system/internal"
	"github.com/frahmantamala/review-system/internal/auth"
	"github.com/frahmantamala/review-system/internal/user"
)

func TestUserService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Service Suite")
}

type mockRepository struct {
	users       map[int64]*user.User
	managedDept map[int64][]int64 // manager id -> department ids
	nextID      int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users:       make(map[int64]*user.User),
		managedDept: make(map[int64][]int64),
		nextID:      1,
	}
}

func (m *mockRepository) Create(u *user.User) error {
	for _, existing := range m.users {
		if existing.Username == u.Username {
			return user.ErrUsernameTaken
		}
		if existing.Email == u.Email {
			return user.ErrEmailInUse
		}
	}
	u.ID = m.nextID
	m.nextID++
	m.users[u.ID] = u
	return nil
}

func (m *mockRepository) GetByID(id int64) (*user.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *mockRepository) GetAll(req internal.PageRequest) ([]*user.User, int64, error) {
	all, _ := m.GetAllUsers()
	return all, int64(len(all)), nil
}

func (m *mockRepository) GetAllUsers() ([]*user.User, error) {
	all := make([]*user.User, 0, len(m.users))
	for _, u := range m.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].LastName < all[j].LastName })
	return all, nil
}

func (m *mockRepository) GetByManager(managerID int64) ([]*user.User, error) {
	var reports []*user.User
	for _, u := range m.users {
		if u.ManagerID != nil && *u.ManagerID == managerID {
			reports = append(reports, u)
		}
	}
	return reports, nil
}

func (m *mockRepository) GetInManagedDepartments(managerID int64) ([]*user.User, error) {
	managed := m.managedDept[managerID]
	seen := make(map[int64]bool)
	var members []*user.User
	for _, deptID := range managed {
		for _, u := range m.users {
			if u.DepartmentID != nil && *u.DepartmentID == deptID && !seen[u.ID] {
				seen[u.ID] = true
				members = append(members, u)
			}
		}
	}
	return members, nil
}

func (m *mockRepository) Update(u *user.User) error {
	if _, ok := m.users[u.ID]; !ok {
		return user.ErrNotFound
	}
	copied := *u
	m.users[u.ID] = &copied
	return nil
}

func (m *mockRepository) Delete(id int64) error {
	delete(m.users, id)
	return nil
}

func (m *mockRepository) ExistsByUsername(username string) (bool, error) {
	for _, u := range m.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepository) ExistsByEmail(email string) (bool, error) {
	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepository) CountDirectReports(managerID int64) (int64, error) {
	reports, _ := m.GetByManager(managerID)
	return int64(len(reports)), nil
}

type mockDeptDirectory struct {
	depts map[int64]*user.DepartmentInfo
}

func (m *mockDeptDirectory) GetDepartmentInfo(id int64) (*user.DepartmentInfo, error) {
	return m.depts[id], nil
}

var _ = Describe("User Service", func() {
	var (
		repo    *mockRepository
		depts   *mockDeptDirectory
		service *user.Service

		hrAdmin  *auth.Caller
		sysAdmin *auth.Caller
	)

	testLogger := slog.New(slog.NewTextHandler(io.Discard, nil))

	seedUser := func(username string, role auth.Role) *user.User {
		u := &user.User{
			Username:  username,
			Email:     username + "@example.com",
			FirstName: "Test",
			LastName:  username,
			Role:      role,
			Active:    true,
		}
		Expect(repo.Create(u)).To(Succeed())
		return u
	}

	callerFor := func(u *user.User) *auth.Caller {
		return &auth.Caller{ID: u.ID, Username: u.Username, Role: u.Role, Active: u.Active}
	}

	BeforeEach(func() {
		repo = newMockRepository()
		depts = &mockDeptDirectory{depts: map[int64]*user.DepartmentInfo{
			1: {ID: 1, Name: "Engineering", OrganizationName: "Acme"},
			2: {ID: 2, Name: "Sales", OrganizationName: "Acme"},
		}}
		service = user.NewService(repo, depts, nil, testLogger, bcrypt.MinCost)

		hrAdmin = &auth.Caller{ID: 1000, Username: "hr", Role: auth.RoleHRAdmin, Active: true}
		sysAdmin = &auth.Caller{ID: 1001, Username: "root", Role: auth.RoleSystemAdmin, Active: true}
	})

	Describe("Create", func() {
		validCreate := func() user.CreateDTO {
			return user.CreateDTO{
				Username:  "jdoe",
				Email:     "jdoe@example.com",
				Password:  "s3cret-pass",
				FirstName: "Jane",
				LastName:  "Doe",
				Role:      "EMPLOYEE",
			}
		}

		It("should allow HR admins and default to an active employee", func() {
			resp, err := service.Create(validCreate(), hrAdmin)

			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Role).To(Equal(auth.RoleEmployee))
			Expect(resp.Active).To(BeTrue())
		})

		It("should deny non-admin callers", func() {
			emp := seedUser("emp", auth.RoleEmployee)

			_, err := service.Create(validCreate(), callerFor(emp))

			Expect(err).To(Equal(internal.ErrAccessDenied))
		})

		It("should reject a duplicate username", func() {
			seedUser("jdoe", auth.RoleEmployee)

			dto := validCreate()
			dto.Email = "other@example.com"
			_, err := service.Create(dto, hrAdmin)

			Expect(err).To(Equal(user.ErrUsernameTaken))
		})

		It("should reject an unknown department", func() {
			dto := validCreate()
			deptID := int64(404)
			dto.DepartmentID = &deptID

			_, err := service.Create(dto, hrAdmin)

			Expect(err).To(Equal(user.ErrDepartmentNotFound))
		})

		It("should reject an employee as manager, naming the role", func() {
			emp := seedUser("emp", auth.RoleEmployee)

			dto := validCreate()
			dto.ManagerID = &emp.ID
			_, err := service.Create(dto, hrAdmin)

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeIneligibleManager))
			Expect(appErr.Message).To(ContainSubstring("EMPLOYEE"))
		})

		It("should round-trip department and manager through get-by-id", func() {
			mgr := seedUser("mgr", auth.RoleManager)

			dto := validCreate()
			deptID := int64(1)
			dto.DepartmentID = &deptID
			dto.ManagerID = &mgr.ID
			created, err := service.Create(dto, hrAdmin)
			Expect(err).NotTo(HaveOccurred())

			got, err := service.GetByID(created.ID, sysAdmin)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Role).To(Equal(auth.RoleEmployee))
			Expect(got.Department).NotTo(BeNil())
			Expect(got.Department.Name).To(Equal("Engineering"))
			Expect(got.Manager).NotTo(BeNil())
			Expect(got.Manager.Username).To(Equal("mgr"))
		})
	})

	Describe("GetByID", func() {
		It("should allow the user themself and their direct manager, one level only", func() {
			mgr := seedUser("mgr", auth.RoleManager)
			grandMgr := seedUser("grandmgr", auth.RoleManager)
			mgr.ManagerID = &grandMgr.ID
			Expect(repo.Update(mgr)).To(Succeed())

			emp := seedUser("emp", auth.RoleEmployee)
			emp.ManagerID = &mgr.ID
			Expect(repo.Update(emp)).To(Succeed())

			_, err := service.GetByID(emp.ID, callerFor(emp))
			Expect(err).NotTo(HaveOccurred())

			_, err = service.GetByID(emp.ID, callerFor(mgr))
			Expect(err).NotTo(HaveOccurred())

			_, err = service.GetByID(emp.ID, callerFor(grandMgr))
			Expect(err).To(Equal(internal.ErrAccessDenied))
		})

		It("should deny an unrelated employee", func() {
			emp := seedUser("emp", auth.RoleEmployee)
			other := seedUser("other", auth.RoleEmployee)

			_, err := service.GetByID(emp.ID, callerFor(other))

			Expect(err).To(Equal(internal.ErrAccessDenied))
		})

		It("should give a denied caller the same error whether the id exists or not", func() {
			emp := seedUser("emp", auth.RoleEmployee)
			other := seedUser("other", auth.RoleEmployee)

			_, existingErr := service.GetByID(emp.ID, callerFor(other))
			_, missingErr := service.GetByID(9999, callerFor(other))

			Expect(existingErr).To(Equal(internal.ErrAccessDenied))
			Expect(missingErr).To(Equal(internal.ErrAccessDenied))
		})

		It("should still report not-found to admins", func() {
			_, err := service.GetByID(9999, sysAdmin)

			Expect(err).To(Equal(user.ErrNotFound))
		})
	})

	Describe("UpdateOwnProfile", func() {
		It("should silently drop role, active, department and manager", func() {
			emp := seedUser("emp", auth.RoleEmployee)
			deptID := int64(1)
			emp.DepartmentID = &deptID
			Expect(repo.Update(emp)).To(Succeed())

			var dto user.UpdateDTO
			body := `{"role":"SYSTEM_ADMIN","active":false,"first_name":"X","department_id":null,"manager_id":5}`
			Expect(json.Unmarshal([]byte(body), &dto)).To(Succeed())

			resp, err := service.UpdateOwnProfile(dto, callerFor(emp))

			Expect(err).NotTo(HaveOccurred())
			Expect(resp.FirstName).To(Equal("X"))
			Expect(resp.Role).To(Equal(auth.RoleEmployee))
			Expect(resp.Active).To(BeTrue())
			Expect(resp.Department).NotTo(BeNil())
			Expect(resp.Manager).To(BeNil())
		})

		It("should re-check username uniqueness", func() {
			seedUser("taken", auth.RoleEmployee)
			emp := seedUser("emp", auth.RoleEmployee)

			taken := "taken"
			_, err := service.UpdateOwnProfile(user.UpdateDTO{Username: &taken}, callerFor(emp))

			Expect(err).To(Equal(user.ErrUsernameTaken))
		})
	})

	Describe("Update", func() {
		It("should deny non-admin callers even for their own record", func() {
			emp := seedUser("emp", auth.RoleEmployee)

			name := "X"
			_, err := service.Update(emp.ID, user.UpdateDTO{FirstName: &name}, callerFor(emp))

			Expect(err).To(Equal(internal.ErrAccessDenied))
		})

		It("should let admins change role and clear the manager via null", func() {
			mgr := seedUser("mgr", auth.RoleManager)
			emp := seedUser("emp", auth.RoleEmployee)
			emp.ManagerID = &mgr.ID
			Expect(repo.Update(emp)).To(Succeed())

			var dto user.UpdateDTO
			Expect(json.Unmarshal([]byte(`{"role":"MANAGER","manager_id":null}`), &dto)).To(Succeed())

			resp, err := service.Update(emp.ID, dto, hrAdmin)

			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Role).To(Equal(auth.RoleManager))
			Expect(resp.Manager).To(BeNil())
		})
	})

	Describe("UpdatePerformance", func() {
		var emp *user.User
		var mgr *user.User

		BeforeEach(func() {
			mgr = seedUser("mgr", auth.RoleManager)
			emp = seedUser("emp", auth.RoleEmployee)
			emp.ManagerID = &mgr.ID
			Expect(repo.Update(emp)).To(Succeed())
		})

		It("should let the direct manager record a review", func() {
			rating := 4
			notes := "solid quarter"
			resp, err := service.UpdatePerformance(emp.ID, user.PerformanceDTO{
				PerformanceRating: &rating,
				ReviewNotes:       &notes,
			}, callerFor(mgr))

			Expect(err).NotTo(HaveOccurred())
			Expect(*resp.PerformanceRating).To(Equal(4))
			Expect(*resp.ReviewNotes).To(Equal("solid quarter"))
		})

		It("should reject a rating outside 1 to 5", func() {
			rating := 6
			_, err := service.UpdatePerformance(emp.ID, user.PerformanceDTO{PerformanceRating: &rating}, callerFor(mgr))

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
		})

		It("should deny a manager who is not the target's manager", func() {
			otherMgr := seedUser("other", auth.RoleManager)

			rating := 3
			_, err := service.UpdatePerformance(emp.ID, user.PerformanceDTO{PerformanceRating: &rating}, callerFor(otherMgr))

			Expect(err).To(Equal(internal.ErrAccessDenied))
		})

		It("should not reveal through the error whether a reviewed id exists", func() {
			rating := 3
			_, err := service.UpdatePerformance(9999, user.PerformanceDTO{PerformanceRating: &rating}, callerFor(mgr))

			Expect(err).To(Equal(internal.ErrAccessDenied))

			_, err = service.UpdatePerformance(9999, user.PerformanceDTO{PerformanceRating: &rating}, hrAdmin)
			Expect(err).To(Equal(user.ErrNotFound))
		})
	})

	Describe("GetUsersInMyDepartments", func() {
		It("should deduplicate users across managed departments", func() {
			mgr := seedUser("mgr", auth.RoleManager)
			repo.managedDept[mgr.ID] = []int64{1, 2}

			u1 := seedUser("u1", auth.RoleEmployee)
			d1 := int64(1)
			u1.DepartmentID = &d1
			Expect(repo.Update(u1)).To(Succeed())

			u2 := seedUser("u2", auth.RoleEmployee)
			d2 := int64(2)
			u2.DepartmentID = &d2
			Expect(repo.Update(u2)).To(Succeed())

			members, err := service.GetUsersInMyDepartments(callerFor(mgr))

			Expect(err).NotTo(HaveOccurred())
			Expect(members).To(HaveLen(2))
		})

		It("should return everyone for admins", func() {
			seedUser("a", auth.RoleEmployee)
			seedUser("b", auth.RoleEmployee)

			members, err := service.GetUsersInMyDepartments(hrAdmin)

			Expect(err).NotTo(HaveOccurred())
			Expect(members).To(HaveLen(2))
		})

		It("should deny employees", func() {
			emp := seedUser("emp", auth.RoleEmployee)

			_, err := service.GetUsersInMyDepartments(callerFor(emp))

			Expect(err).To(Equal(internal.ErrAccessDenied))
		})

		It("should return an empty list for a manager of no departments", func() {
			mgr := seedUser("mgr", auth.RoleManager)

			members, err := service.GetUsersInMyDepartments(callerFor(mgr))

			Expect(err).NotTo(HaveOccurred())
			Expect(members).To(BeEmpty())
		})
	})

	Describe("GetMyDirectReports", func() {
		It("should return users whose manager is the caller", func() {
			mgr := seedUser("mgr", auth.RoleManager)
			emp := seedUser("emp", auth.RoleEmployee)
			emp.ManagerID = &mgr.ID
			Expect(repo.Update(emp)).To(Succeed())
			seedUser("loner", auth.RoleEmployee)

			reports, err := service.GetMyDirectReports(callerFor(mgr))

			Expect(err).NotTo(HaveOccurred())
			Expect(reports).To(HaveLen(1))
			Expect(reports[0].Username).To(Equal("emp"))
		})
	})

	Describe("Deactivate", func() {
		It("should be restricted to system admins", func() {
			emp := seedUser("emp", auth.RoleEmployee)

			Expect(service.Deactivate(emp.ID, hrAdmin)).To(Equal(internal.ErrAccessDenied))
			Expect(service.Deactivate(emp.ID, sysAdmin)).To(Succeed())

			got, err := repo.GetByID(emp.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Active).To(BeFalse())
		})
	})

	Describe("Delete", func() {
		It("should refuse while direct reports remain", func() {
			mgr := seedUser("mgr", auth.RoleManager)
			emp := seedUser("emp", auth.RoleEmployee)
			emp.ManagerID = &mgr.ID
			Expect(repo.Update(emp)).To(Succeed())

			err := service.Delete(mgr.ID, sysAdmin)

			Expect(err).To(Equal(user.ErrHasReports))
		})

		It("should remove a user without reports", func() {
			emp := seedUser("emp", auth.RoleEmployee)

			Expect(service.Delete(emp.ID, sysAdmin)).To(Succeed())

			_, err := repo.GetByID(emp.ID)
			Expect(err).To(Equal(user.ErrNotFound))
		})
	})
})
