package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"customer-api/internal/domain"
	"customer-api/internal/service/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const goodToken = "good-token"

var testUser = &domain.User{
	ID:        7,
	UUID:      "user-uuid",
	Name:      "Admin",
	Username:  "admin",
	Email:     "admin@example.com",
	IsActive:  true,
	CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
}

type stubAuthSvc struct {
	loginRes   *auth.LoginResult
	loginErr   error
	lastLogin  auth.LoginInput
	logoutAll  *bool
	logoutTok  *domain.AccessToken
	authErr    error
	logoutErr  error
	loginCalls int
}

func (s *stubAuthSvc) Login(_ context.Context, in auth.LoginInput) (*auth.LoginResult, error) {
	s.loginCalls++
	s.lastLogin = in
	return s.loginRes, s.loginErr
}

func (s *stubAuthSvc) Logout(_ context.Context, _ *domain.User, current *domain.AccessToken, allDevices bool) error {
	s.logoutAll = &allDevices
	s.logoutTok = current
	return s.logoutErr
}

func (s *stubAuthSvc) Authenticate(_ context.Context, plain string) (*domain.User, *domain.AccessToken, error) {
	if s.authErr != nil {
		return nil, nil, s.authErr
	}
	if plain != goodToken {
		return nil, nil, domain.ErrUnauthenticated
	}
	return testUser, &domain.AccessToken{ID: 99, UserID: testUser.ID, Name: "api"}, nil
}

type stubCustomerSvc struct {
	customers map[string]*domain.Customer
	page      domain.Page[domain.Customer]
	lastQuery domain.CustomerFilter
	lastData  domain.CustomerData
	createErr error
	updateErr error
	listErr   error
	deleted   map[string]bool
	restored  string
}

func newStubCustomerSvc(cs ...*domain.Customer) *stubCustomerSvc {
	s := &stubCustomerSvc{customers: map[string]*domain.Customer{}, deleted: map[string]bool{}}
	for _, c := range cs {
		s.customers[c.UUID] = c
	}
	return s
}

func (s *stubCustomerSvc) Create(_ context.Context, data domain.CustomerData) (*domain.Customer, error) {
	s.lastData = data
	if s.createErr != nil {
		return nil, s.createErr
	}
	c := &domain.Customer{UUID: "new-uuid", Status: domain.CustomerStatusActive}
	data.Apply(c)
	if c.Status == "" {
		c.Status = domain.CustomerStatusActive
	}
	return c, nil
}

func (s *stubCustomerSvc) Update(_ context.Context, c *domain.Customer, data domain.CustomerData) (*domain.Customer, error) {
	s.lastData = data
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	next := *c
	data.Apply(&next)
	return &next, nil
}

func (s *stubCustomerSvc) Delete(_ context.Context, c *domain.Customer, force bool) error {
	s.deleted[c.UUID] = force
	return nil
}

func (s *stubCustomerSvc) Restore(_ context.Context, c *domain.Customer) (*domain.Customer, error) {
	s.restored = c.UUID
	clone := *c
	clone.DeletedAt = nil
	return &clone, nil
}

func (s *stubCustomerSvc) FindByUUID(_ context.Context, uuid string) (*domain.Customer, error) {
	c, ok := s.customers[uuid]
	if !ok || c.Trashed() {
		return nil, domain.ErrCustomerNotFound
	}
	return c, nil
}

func (s *stubCustomerSvc) FindByUUIDWithTrashed(_ context.Context, uuid string) (*domain.Customer, error) {
	c, ok := s.customers[uuid]
	if !ok {
		return nil, domain.ErrCustomerNotFound
	}
	return c, nil
}

func (s *stubCustomerSvc) Paginate(_ context.Context, f domain.CustomerFilter) (domain.Page[domain.Customer], error) {
	s.lastQuery = f
	return s.page, s.listErr
}

func defaultOptions() Options {
	return Options{RateLimitAPI: 1000, RateLimitLogin: 1000, RateLimitSensitive: 1000}
}

func newTestRouter(t *testing.T, deps Deps, opts Options) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if deps.AuthSvc == nil {
		deps.AuthSvc = &stubAuthSvc{}
	}
	if deps.CustomerSvc == nil {
		deps.CustomerSvc = newStubCustomerSvc()
	}
	router, _ := buildRouter(zap.NewNop(), nil, deps, opts)
	return router
}

func doRequest(router http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func authHeader() map[string]string {
	return map[string]string{"Authorization": "Bearer " + goodToken}
}

type testEnvelope struct {
	Success   bool                `json:"success"`
	Message   string              `json:"message"`
	Data      json.RawMessage     `json:"data"`
	ErrorCode string              `json:"error_code"`
	Errors    map[string][]string `json:"errors"`
	Meta      map[string]any      `json:"meta"`
	Links     map[string]any      `json:"links"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var env testEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), "body=%s", rec.Body.String())
	return env
}
