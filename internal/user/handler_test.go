package user_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/review-system/internal"
	"github.com/frahmantamala/review-system/internal/auth"
	"github.com/frahmantamala/review-system/internal/transport"
	"github.com/frahmantamala/review-system/internal/user"
)

// mockServiceAPI stubs the service so handler behavior can be checked in
// isolation.
type mockServiceAPI struct {
	deactivateErr error
	deleteErr     error
}

func (m *mockServiceAPI) Create(dto user.CreateDTO, caller *auth.Caller) (*user.Response, error) {
	return nil, internal.ErrAccessDenied
}

func (m *mockServiceAPI) GetAll(req internal.PageRequest, caller *auth.Caller) (*internal.Page[user.Response], error) {
	return nil, internal.ErrAccessDenied
}

func (m *mockServiceAPI) GetByID(id int64, caller *auth.Caller) (*user.Response, error) {
	return nil, user.ErrNotFound
}

func (m *mockServiceAPI) GetOwnProfile(caller *auth.Caller) (*user.Response, error) {
	return nil, user.ErrNotFound
}

func (m *mockServiceAPI) Update(id int64, dto user.UpdateDTO, caller *auth.Caller) (*user.Response, error) {
	return nil, internal.ErrAccessDenied
}

func (m *mockServiceAPI) UpdateOwnProfile(dto user.UpdateDTO, caller *auth.Caller) (*user.Response, error) {
	return nil, internal.ErrAccessDenied
}

func (m *mockServiceAPI) UpdatePerformance(id int64, dto user.PerformanceDTO, caller *auth.Caller) (*user.Response, error) {
	return nil, internal.ErrAccessDenied
}

func (m *mockServiceAPI) GetUsersInMyDepartments(caller *auth.Caller) ([]user.Response, error) {
	return nil, nil
}

func (m *mockServiceAPI) GetMyDirectReports(caller *auth.Caller) ([]user.Response, error) {
	return nil, nil
}

func (m *mockServiceAPI) Deactivate(id int64, caller *auth.Caller) error {
	return m.deactivateErr
}

func (m *mockServiceAPI) Delete(id int64, caller *auth.Caller) error {
	return m.deleteErr
}

var _ = Describe("User Handler", func() {
	var (
		svc     *mockServiceAPI
		handler *user.Handler
	)

	testLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sysAdmin := &auth.Caller{ID: 1, Username: "root", Role: auth.RoleSystemAdmin, Active: true}

	do := func(method, path string, h http.HandlerFunc) *httptest.ResponseRecorder {
		r := chi.NewRouter()
		r.MethodFunc(method, "/users/{id}", h)
		r.MethodFunc(method, "/users/{id}/deactivate", h)

		req := httptest.NewRequest(method, path, nil)
		req = req.WithContext(auth.ContextWithCaller(req.Context(), sysAdmin))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	BeforeEach(func() {
		svc = &mockServiceAPI{}
		handler = user.NewHandler(transport.NewBaseHandler(testLogger), svc)
	})

	It("should confirm a delete with 200 and a message body", func() {
		rec := do(http.MethodDelete, "/users/7", handler.Delete)

		Expect(rec.Code).To(Equal(http.StatusOK))

		var body map[string]string
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body["message"]).To(Equal("User deleted successfully"))
	})

	It("should confirm a deactivate with 200 and a message body", func() {
		rec := do(http.MethodPatch, "/users/7/deactivate", handler.Deactivate)

		Expect(rec.Code).To(Equal(http.StatusOK))

		var body map[string]string
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body["message"]).To(Equal("User deactivated successfully"))
	})

	It("should map service errors instead of confirming", func() {
		svc.deleteErr = user.ErrHasReports

		rec := do(http.MethodDelete, "/users/7", handler.Delete)

		Expect(rec.Code).To(Equal(http.StatusConflict))
	})
})
