package auth_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/review-system/internal"
	"github.com/frahmantamala/review-system/internal/auth"
)

var _ = Describe("Authorize", func() {
	employee := &auth.Caller{ID: 1, Role: auth.RoleEmployee, Active: true}
	manager := &auth.Caller{ID: 2, Role: auth.RoleManager, Active: true}
	hrAdmin := &auth.Caller{ID: 3, Role: auth.RoleHRAdmin, Active: true}
	sysAdmin := &auth.Caller{ID: 4, Role: auth.RoleSystemAdmin, Active: true}

	It("should require a caller", func() {
		err := auth.Authorize(auth.OpUserList, nil, nil)

		Expect(err).To(HaveOccurred())
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(401))
	})

	DescribeTable("admin-only operations",
		func(op auth.Operation, caller *auth.Caller, allowed bool) {
			err := auth.Authorize(op, caller, nil)
			if allowed {
				Expect(err).To(BeNil())
			} else {
				Expect(err).To(Equal(internal.ErrAccessDenied))
			}
		},
		Entry("employee cannot create users", auth.OpUserCreate, employee, false),
		Entry("manager cannot create users", auth.OpUserCreate, manager, false),
		Entry("HR admin can create users", auth.OpUserCreate, hrAdmin, true),
		Entry("system admin can create users", auth.OpUserCreate, sysAdmin, true),
		Entry("employee cannot list users", auth.OpUserList, employee, false),
		Entry("HR admin can list users", auth.OpUserList, hrAdmin, true),
		Entry("manager cannot update users", auth.OpUserUpdate, manager, false),
		Entry("system admin can update users", auth.OpUserUpdate, sysAdmin, true),
	)

	DescribeTable("system-admin-only operations",
		func(op auth.Operation, caller *auth.Caller, allowed bool) {
			err := auth.Authorize(op, caller, &auth.Target{UserID: 42})
			if allowed {
				Expect(err).To(BeNil())
			} else {
				Expect(err).To(Equal(internal.ErrAccessDenied))
			}
		},
		Entry("HR admin cannot deactivate", auth.OpUserDeactivate, hrAdmin, false),
		Entry("system admin can deactivate", auth.OpUserDeactivate, sysAdmin, true),
		Entry("HR admin cannot delete", auth.OpUserDelete, hrAdmin, false),
		Entry("system admin can delete", auth.OpUserDelete, sysAdmin, true),
	)

	Describe("get user", func() {
		It("should allow self access", func() {
			target := &auth.Target{UserID: employee.ID}

			Expect(auth.Authorize(auth.OpUserGet, employee, target)).To(BeNil())
		})

		It("should allow the direct manager, exactly one level", func() {
			managerID := manager.ID
			target := &auth.Target{UserID: 42, ManagerID: &managerID}

			Expect(auth.Authorize(auth.OpUserGet, manager, target)).To(BeNil())

			otherManagerID := int64(77)
			indirect := &auth.Target{UserID: 42, ManagerID: &otherManagerID}
			Expect(auth.Authorize(auth.OpUserGet, manager, indirect)).To(Equal(internal.ErrAccessDenied))
		})

		It("should always allow admins", func() {
			target := &auth.Target{UserID: 42}

			Expect(auth.Authorize(auth.OpUserGet, hrAdmin, target)).To(BeNil())
			Expect(auth.Authorize(auth.OpUserGet, sysAdmin, target)).To(BeNil())
		})

		It("should deny everyone else with the uniform message", func() {
			target := &auth.Target{UserID: 42}

			err := auth.Authorize(auth.OpUserGet, employee, target)

			Expect(err).To(Equal(internal.ErrAccessDenied))
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Message).To(Equal("Access denied"))
		})
	})

	Describe("own profile", func() {
		It("should only allow the matching identity", func() {
			Expect(auth.Authorize(auth.OpUserUpdateOwnProfile, employee, &auth.Target{UserID: employee.ID})).To(BeNil())
			Expect(auth.Authorize(auth.OpUserUpdateOwnProfile, sysAdmin, &auth.Target{UserID: employee.ID})).To(Equal(internal.ErrAccessDenied))
		})
	})

	Describe("performance review", func() {
		It("should allow admins and the direct manager only", func() {
			managerID := manager.ID
			target := &auth.Target{UserID: 42, ManagerID: &managerID}

			Expect(auth.Authorize(auth.OpUserUpdatePerformance, manager, target)).To(BeNil())
			Expect(auth.Authorize(auth.OpUserUpdatePerformance, hrAdmin, target)).To(BeNil())
			Expect(auth.Authorize(auth.OpUserUpdatePerformance, employee, target)).To(Equal(internal.ErrAccessDenied))
		})
	})

	Describe("report listings", func() {
		It("should require a qualifying role", func() {
			Expect(auth.Authorize(auth.OpUserListReports, manager, nil)).To(BeNil())
			Expect(auth.Authorize(auth.OpUserListDeptUsers, hrAdmin, nil)).To(BeNil())
			Expect(auth.Authorize(auth.OpUserListReports, employee, nil)).To(Equal(internal.ErrAccessDenied))
		})
	})

	Describe("unknown operations", func() {
		It("should stay open to any authenticated caller", func() {
			Expect(auth.Authorize(auth.Operation("organization.create"), employee, nil)).To(BeNil())
		})
	})
})
