package httpserver

import (
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindingErrors_FieldMessages(t *testing.T) {
	useWireFieldNames()

	req := customerRequest{
		Name:    string(make([]byte, 256)),
		Email:   "jane",
		Phone:   ptr(string(make([]byte, 51))),
		Company: ptr(""),
		Status:  "archived",
	}
	err := binding.Validator.ValidateStruct(req)
	require.Error(t, err)

	fields := bindingErrors(err)
	assert.Equal(t, map[string][]string{
		"name":   {"The name field must not be greater than 255 characters."},
		"email":  {"The email field must be a valid email address."},
		"phone":  {"The phone field must not be greater than 50 characters."},
		"status": {"The selected status is invalid."},
	}, fields)
}

func TestBindingErrors_QueryFields(t *testing.T) {
	useWireFieldNames()

	per := 500
	err := binding.Validator.ValidateStruct(listCustomersQuery{PerPage: &per, EndDate: "2024-13-01"})
	require.Error(t, err)

	fields := bindingErrors(err)
	assert.Equal(t, []string{"The per page field must not be greater than 100."}, fields["per_page"])
	assert.Equal(t, []string{"The end date field must match the format YYYY-MM-DD."}, fields["end_date"])
}

func TestBindingErrors_Fallback(t *testing.T) {
	fields := bindingErrors(errors.New("strconv.ParseInt: parsing \"abc\": invalid syntax"))
	assert.Contains(t, fields, "request")
}

func TestListQuery_ToFilter(t *testing.T) {
	q := listCustomersQuery{StartDate: "2024-03-01", EndDate: "2024-03-01"}
	f, fields := q.toFilter()
	assert.Nil(t, fields)
	require.NotNil(t, f.StartDate)
	assert.Equal(t, f.StartDate, f.EndDate)
	assert.Zero(t, f.Page)

	q.EndDate = "2024-02-28"
	_, fields = q.toFilter()
	assert.Equal(t, []string{"The end date field must be a date after or equal to start date."}, fields["end_date"])
}
