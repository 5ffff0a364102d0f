package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"customer-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func sampleCustomer(uuid string) *domain.Customer {
	ts := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	return &domain.Customer{
		ID:        1,
		UUID:      uuid,
		Name:      "Jane Doe",
		Email:     "jane@example.com",
		Company:   ptr("Acme"),
		Status:    domain.CustomerStatusPending,
		Metadata:  map[string]any{"tier": "gold"},
		CreatedAt: ts,
		UpdatedAt: ts,
	}
}

func trashedCustomer(uuid string) *domain.Customer {
	c := sampleCustomer(uuid)
	c.DeletedAt = ptr(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	return c
}

func TestCustomersRequireAuth(t *testing.T) {
	router := newTestRouter(t, Deps{}, defaultOptions())

	rec := doRequest(router, http.MethodGet, "/api/v1/customers", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHENTICATED", decodeEnvelope(t, rec).ErrorCode)
}

func TestIndexCustomers_PageEnvelope(t *testing.T) {
	svc := newStubCustomerSvc()
	items := make([]domain.Customer, 10)
	for i := range items {
		items[i] = *sampleCustomer("c" + string(rune('a'+i)))
	}
	svc.page = domain.Page[domain.Customer]{Items: items, Total: 25, Page: 2, PerPage: 10}
	router := newTestRouter(t, Deps{CustomerSvc: svc}, defaultOptions())

	rec := doRequest(router, http.MethodGet,
		"/api/v1/customers?page=2&per_page=10&status=active&search=acme&company=Globex"+
			"&start_date=2024-01-01&end_date=2024-02-01&with_trashed=true&sort_by=name&sort_direction=asc",
		"", authHeader())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, "Customers retrieved successfully", env.Message)

	var data []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Len(t, data, 10)

	assert.Equal(t, map[string]any{
		"current_page": 2.0, "last_page": 3.0, "per_page": 10.0, "total": 25.0, "from": 11.0, "to": 20.0,
	}, env.Meta)
	assert.Contains(t, env.Links["first"], "page=1")
	assert.Contains(t, env.Links["last"], "page=3")
	assert.Contains(t, env.Links["prev"], "page=1")
	assert.Contains(t, env.Links["next"], "page=3")
	assert.Contains(t, env.Links["next"], "status=active")

	f := svc.lastQuery
	assert.Equal(t, "acme", f.Search)
	assert.Equal(t, domain.CustomerStatusActive, f.Status)
	assert.Equal(t, "Globex", f.Company)
	assert.True(t, f.WithTrashed)
	assert.Equal(t, 2, f.Page)
	assert.Equal(t, 10, f.PerPage)
	assert.Equal(t, "name", f.SortBy)
	assert.Equal(t, "asc", f.SortDirection)
	require.NotNil(t, f.StartDate)
	require.NotNil(t, f.EndDate)
	assert.Equal(t, "2024-01-01", f.StartDate.Format(time.DateOnly))
	assert.Equal(t, "2024-02-01", f.EndDate.Format(time.DateOnly))
}

func TestIndexCustomers_EmptyPage(t *testing.T) {
	svc := newStubCustomerSvc()
	svc.page = domain.Page[domain.Customer]{Items: []domain.Customer{}, Page: 1, PerPage: 15}
	router := newTestRouter(t, Deps{CustomerSvc: svc}, defaultOptions())

	rec := doRequest(router, http.MethodGet, "/api/v1/customers", "", authHeader())
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.JSONEq(t, `[]`, string(env.Data))
	assert.Nil(t, env.Meta["from"])
	assert.Nil(t, env.Meta["to"])
	assert.Equal(t, 1.0, env.Meta["last_page"])
	assert.Nil(t, env.Links["prev"])
	assert.Nil(t, env.Links["next"])
}

func TestIndexCustomers_Validation(t *testing.T) {
	cases := []struct {
		name  string
		query string
		field string
	}{
		{"per page too large", "per_page=101", "per_page"},
		{"page below one", "page=0", "page"},
		{"unknown status", "status=archived", "status"},
		{"bad direction", "sort_direction=up", "sort_direction"},
		{"bad date", "start_date=01/02/2024", "start_date"},
		{"end before start", "start_date=2024-02-01&end_date=2024-01-01", "end_date"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newStubCustomerSvc()
			router := newTestRouter(t, Deps{CustomerSvc: svc}, defaultOptions())

			rec := doRequest(router, http.MethodGet, "/api/v1/customers?"+tc.query, "", authHeader())
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			env := decodeEnvelope(t, rec)
			assert.Equal(t, "VALIDATION_ERROR", env.ErrorCode)
			assert.Contains(t, env.Errors, tc.field)
		})
	}
}

func TestIndexCustomers_UnknownSortPassesThrough(t *testing.T) {
	svc := newStubCustomerSvc()
	svc.page = domain.Page[domain.Customer]{Page: 1, PerPage: 15}
	router := newTestRouter(t, Deps{CustomerSvc: svc}, defaultOptions())

	rec := doRequest(router, http.MethodGet, "/api/v1/customers?sort_by=password", "", authHeader())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "password", svc.lastQuery.SortBy)
}

func TestIndexCustomers_ServiceFailure(t *testing.T) {
	svc := newStubCustomerSvc()
	svc.listErr = errors.New("connection reset")
	router := newTestRouter(t, Deps{CustomerSvc: svc}, defaultOptions())

	rec := doRequest(router, http.MethodGet, "/api/v1/customers", "", authHeader())
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "SERVER_ERROR", env.ErrorCode)
	assert.Equal(t, "Internal server error", env.Message)
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

func TestStoreCustomer(t *testing.T) {
	svc := newStubCustomerSvc()
	router := newTestRouter(t, Deps{CustomerSvc: svc}, defaultOptions())

	rec := doRequest(router, http.MethodPost, "/api/v1/customers",
		`{"name":"  New Co ","email":"new@example.com","phone":"555-0100","status":"inactive","metadata":{"vip":true}}`,
		authHeader())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	env := decodeEnvelope(t, rec)
	assert.Equal(t, "Customer created successfully", env.Message)
	var data map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "new-uuid", data["uuid"])
	assert.Equal(t, "New Co", data["name"])
	assert.Equal(t, map[string]any{"value": "inactive", "label": "Inactive"}, data["status"])
	assert.Equal(t, false, data["is_active"])
	assert.Nil(t, data["address"])
	assert.NotContains(t, data, "deleted_at")
	assert.NotContains(t, data, "id")

	assert.Equal(t, "New Co", svc.lastData.Name)
	assert.Equal(t, "555-0100", *svc.lastData.Phone)
	assert.Equal(t, map[string]any{"vip": true}, svc.lastData.Metadata)
}

func TestStoreCustomer_Validation(t *testing.T) {
	router := newTestRouter(t, Deps{}, defaultOptions())

	rec := doRequest(router, http.MethodPost, "/api/v1/customers", `{"email":"not-an-email","status":"gone"}`, authHeader())
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "The given data was invalid.", env.Message)
	assert.Equal(t, []string{"The name field is required."}, env.Errors["name"])
	assert.Equal(t, []string{"The email field must be a valid email address."}, env.Errors["email"])
	assert.Equal(t, []string{"The selected status is invalid."}, env.Errors["status"])
}

func TestStoreCustomer_MetadataMustBeObject(t *testing.T) {
	router := newTestRouter(t, Deps{}, defaultOptions())

	rec := doRequest(router, http.MethodPost, "/api/v1/customers",
		`{"name":"A","email":"a@example.com","metadata":"nope"}`, authHeader())
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, []string{"The metadata field must be an object."}, decodeEnvelope(t, rec).Errors["metadata"])
}

func TestStoreCustomer_DuplicateEmail(t *testing.T) {
	svc := newStubCustomerSvc()
	svc.createErr = domain.ErrCustomerAlreadyExists
	router := newTestRouter(t, Deps{CustomerSvc: svc}, defaultOptions())

	rec := doRequest(router, http.MethodPost, "/api/v1/customers", `{"name":"A","email":"a@example.com"}`, authHeader())
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "CUSTOMER_ALREADY_EXISTS", env.ErrorCode)
	assert.Equal(t, []string{"The email has already been taken."}, env.Errors["email"])
}

func TestShowCustomer(t *testing.T) {
	svc := newStubCustomerSvc(sampleCustomer("abc"), trashedCustomer("gone"))
	router := newTestRouter(t, Deps{CustomerSvc: svc}, defaultOptions())

	rec := doRequest(router, http.MethodGet, "/api/v1/customers/abc", "", authHeader())
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "Customer retrieved successfully", env.Message)
	assert.JSONEq(t, `{
		"uuid":"abc","name":"Jane Doe","email":"jane@example.com","phone":null,"address":null,
		"company":"Acme","status":{"value":"pending","label":"Pending Verification"},
		"metadata":{"tier":"gold"},"is_active":false,
		"created_at":"2024-05-06T07:08:09Z","updated_at":"2024-05-06T07:08:09Z"
	}`, string(env.Data))

	for _, path := range []string{"/api/v1/customers/missing", "/api/v1/customers/gone"} {
		rec = doRequest(router, http.MethodGet, path, "", authHeader())
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		env = decodeEnvelope(t, rec)
		assert.Equal(t, "CUSTOMER_NOT_FOUND", env.ErrorCode)
		assert.Equal(t, "Customer not found.", env.Message)
	}
}

func TestUpdateCustomer(t *testing.T) {
	svc := newStubCustomerSvc(sampleCustomer("abc"))
	router := newTestRouter(t, Deps{CustomerSvc: svc}, defaultOptions())

	rec := doRequest(router, http.MethodPut, "/api/v1/customers/abc",
		`{"name":"Jane Smith","email":"jane.smith@example.com","status":"active"}`, authHeader())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "Customer updated successfully", env.Message)

	var data map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "Jane Smith", data["name"])
	assert.Equal(t, true, data["is_active"])
	assert.Equal(t, "jane.smith@example.com", svc.lastData.Email)

	rec = doRequest(router, http.MethodPut, "/api/v1/customers/abc", `{"name":"x"}`, authHeader())
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doRequest(router, http.MethodPut, "/api/v1/customers/missing",
		`{"name":"x","email":"x@example.com"}`, authHeader())
	assert.Equal(t, http.StatusNotFound, rec.Code)

	svc.updateErr = domain.ErrCustomerAlreadyExists
	rec = doRequest(router, http.MethodPut, "/api/v1/customers/abc",
		`{"name":"x","email":"taken@example.com"}`, authHeader())
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decodeEnvelope(t, rec).Errors, "email")
}

func TestDestroyCustomer(t *testing.T) {
	svc := newStubCustomerSvc(sampleCustomer("abc"), trashedCustomer("gone"))
	router := newTestRouter(t, Deps{CustomerSvc: svc}, defaultOptions())

	rec := doRequest(router, http.MethodDelete, "/api/v1/customers/abc", "", authHeader())
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "Customer deleted successfully", env.Message)
	assert.Empty(t, env.Data)
	force, ok := svc.deleted["abc"]
	require.True(t, ok)
	assert.False(t, force)

	rec = doRequest(router, http.MethodDelete, "/api/v1/customers/gone", "", authHeader())
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRestoreCustomer(t *testing.T) {
	svc := newStubCustomerSvc(trashedCustomer("gone"))
	router := newTestRouter(t, Deps{CustomerSvc: svc}, defaultOptions())

	rec := doRequest(router, http.MethodPost, "/api/v1/customers/gone/restore", "", authHeader())
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "Customer restored successfully", env.Message)
	assert.Equal(t, "gone", svc.restored)

	var data map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.NotContains(t, data, "deleted_at")

	rec = doRequest(router, http.MethodPost, "/api/v1/customers/missing/restore", "", authHeader())
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestForceDeleteCustomer(t *testing.T) {
	svc := newStubCustomerSvc(sampleCustomer("abc"), trashedCustomer("gone"))
	opts := defaultOptions()
	opts.RateLimitSensitive = 2
	router := newTestRouter(t, Deps{CustomerSvc: svc}, opts)

	for _, id := range []string{"abc", "gone"} {
		rec := doRequest(router, http.MethodDelete, "/api/v1/customers/"+id+"/force", "", authHeader())
		require.Equal(t, http.StatusOK, rec.Code, id)
		assert.Equal(t, "Customer permanently deleted", decodeEnvelope(t, rec).Message)
		assert.True(t, svc.deleted[id])
	}

	rec := doRequest(router, http.MethodDelete, "/api/v1/customers/abc/force", "", authHeader())
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", decodeEnvelope(t, rec).ErrorCode)
}

func TestAPILimiterIsPerUser(t *testing.T) {
	opts := defaultOptions()
	opts.RateLimitAPI = 1
	router := newTestRouter(t, Deps{}, opts)

	rec := doRequest(router, http.MethodGet, "/api/v1/me", "", authHeader())
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(router, http.MethodGet, "/api/v1/customers/abc", "", authHeader())
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "TOO_MANY_REQUESTS", env.ErrorCode)
	assert.Equal(t, "Too many requests. Please try again later.", env.Message)
}
