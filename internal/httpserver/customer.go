package httpserver

import (
	"net/http"
	"strings"
	"time"

	"customer-api/internal/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type customerRequest struct {
	Name     string         `json:"name" binding:"required,max=255"`
	Email    string         `json:"email" binding:"required,email,max=255"`
	Phone    *string        `json:"phone" binding:"omitempty,max=50"`
	Address  *string        `json:"address" binding:"omitempty,max=500"`
	Company  *string        `json:"company" binding:"omitempty,max=255"`
	Status   string         `json:"status" binding:"omitempty,oneof=active inactive suspended pending"`
	Metadata map[string]any `json:"metadata"`
}

func (r customerRequest) toData() domain.CustomerData {
	return domain.CustomerData{
		Name:     strings.TrimSpace(r.Name),
		Email:    strings.TrimSpace(r.Email),
		Phone:    r.Phone,
		Address:  r.Address,
		Company:  r.Company,
		Status:   domain.CustomerStatus(r.Status),
		Metadata: r.Metadata,
	}
}

// listCustomersQuery leaves sort_by unchecked: unknown columns fall back to
// the default ordering.
type listCustomersQuery struct {
	Search        string `form:"search" binding:"omitempty,max=255"`
	Status        string `form:"status" binding:"omitempty,oneof=active inactive suspended pending"`
	Company       string `form:"company" binding:"omitempty,max=255"`
	StartDate     string `form:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate       string `form:"end_date" binding:"omitempty,datetime=2006-01-02"`
	WithTrashed   bool   `form:"with_trashed"`
	Page          *int   `form:"page" binding:"omitempty,min=1"`
	PerPage       *int   `form:"per_page" binding:"omitempty,min=1,max=100"`
	SortBy        string `form:"sort_by"`
	SortDirection string `form:"sort_direction" binding:"omitempty,oneof=asc desc"`
}

func (q listCustomersQuery) toFilter() (domain.CustomerFilter, map[string][]string) {
	f := domain.CustomerFilter{
		Search:      q.Search,
		Status:      domain.CustomerStatus(q.Status),
		Company:     q.Company,
		WithTrashed: q.WithTrashed,
		Pagination: domain.Pagination{
			SortBy:        q.SortBy,
			SortDirection: q.SortDirection,
		},
	}
	if q.Page != nil {
		f.Page = *q.Page
	}
	if q.PerPage != nil {
		f.PerPage = *q.PerPage
	}
	// Formats were checked by the binding tags.
	if q.StartDate != "" {
		t, _ := time.Parse(time.DateOnly, q.StartDate)
		f.StartDate = &t
	}
	if q.EndDate != "" {
		t, _ := time.Parse(time.DateOnly, q.EndDate)
		f.EndDate = &t
	}
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		return f, map[string][]string{
			"end_date": {"The end date field must be a date after or equal to start date."},
		}
	}
	return f, nil
}

type customerHandler struct {
	svc    CustomerService
	logger *zap.Logger
}

func (h *customerHandler) index(c *gin.Context) {
	var q listCustomersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeValidation(c, bindingErrors(err))
		return
	}
	filter, fields := q.toFilter()
	if fields != nil {
		writeValidation(c, fields)
		return
	}

	page, err := h.svc.Paginate(c.Request.Context(), filter)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respondPage(c, "Customers retrieved successfully", page, toCustomerResources(page.Items))
}

func (h *customerHandler) store(c *gin.Context) {
	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeValidation(c, bindingErrors(err))
		return
	}
	created, err := h.svc.Create(c.Request.Context(), req.toData())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusCreated, "Customer created successfully", toCustomerResource(created))
}

func (h *customerHandler) show(c *gin.Context) {
	cust, ok := h.load(c, false)
	if !ok {
		return
	}
	respondOK(c, http.StatusOK, "Customer retrieved successfully", toCustomerResource(cust))
}

func (h *customerHandler) update(c *gin.Context) {
	cust, ok := h.load(c, false)
	if !ok {
		return
	}
	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeValidation(c, bindingErrors(err))
		return
	}
	updated, err := h.svc.Update(c.Request.Context(), cust, req.toData())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, "Customer updated successfully", toCustomerResource(updated))
}

func (h *customerHandler) destroy(c *gin.Context) {
	cust, ok := h.load(c, false)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), cust, false); err != nil {
		writeError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, "Customer deleted successfully", nil)
}

func (h *customerHandler) restore(c *gin.Context) {
	cust, ok := h.load(c, true)
	if !ok {
		return
	}
	restored, err := h.svc.Restore(c.Request.Context(), cust)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, "Customer restored successfully", toCustomerResource(restored))
}

func (h *customerHandler) forceDelete(c *gin.Context) {
	cust, ok := h.load(c, true)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), cust, true); err != nil {
		writeError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, "Customer permanently deleted", nil)
}

// load resolves the :uuid path parameter, writing the error response itself
// when the customer cannot be found.
func (h *customerHandler) load(c *gin.Context, withTrashed bool) (*domain.Customer, bool) {
	id := c.Param("uuid")
	var (
		cust *domain.Customer
		err  error
	)
	if withTrashed {
		cust, err = h.svc.FindByUUIDWithTrashed(c.Request.Context(), id)
	} else {
		cust, err = h.svc.FindByUUID(c.Request.Context(), id)
	}
	if err != nil {
		writeError(c, h.logger, err)
		return nil, false
	}
	return cust, true
}
