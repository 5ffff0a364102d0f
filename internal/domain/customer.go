package domain

import "time"

// CustomerStatus is the lifecycle status of a customer record.
type CustomerStatus string

const (
	CustomerStatusActive    CustomerStatus = "active"
	CustomerStatusInactive  CustomerStatus = "inactive"
	CustomerStatusSuspended CustomerStatus = "suspended"
	CustomerStatusPending   CustomerStatus = "pending"
)

// CustomerStatuses lists every valid status in display order.
func CustomerStatuses() []CustomerStatus {
	return []CustomerStatus{
		CustomerStatusActive,
		CustomerStatusInactive,
		CustomerStatusSuspended,
		CustomerStatusPending,
	}
}

// Valid reports whether s is a known status.
func (s CustomerStatus) Valid() bool {
	switch s {
	case CustomerStatusActive, CustomerStatusInactive, CustomerStatusSuspended, CustomerStatusPending:
		return true
	}
	return false
}

// Label returns the human readable name of the status.
func (s CustomerStatus) Label() string {
	switch s {
	case CustomerStatusActive:
		return "Active"
	case CustomerStatusInactive:
		return "Inactive"
	case CustomerStatusSuspended:
		return "Suspended"
	case CustomerStatusPending:
		return "Pending Verification"
	}
	return string(s)
}

// Customer is a customer record. Phone, Address and Company are nullable.
type Customer struct {
	ID        int64
	UUID      string
	Name      string
	Email     string
	Phone     *string
	Address   *string
	Company   *string
	Status    CustomerStatus
	Metadata  map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// IsActive reports whether the customer status is active.
func (c Customer) IsActive() bool {
	return c.Status == CustomerStatusActive
}

// Trashed reports whether the customer has been soft-deleted.
func (c Customer) Trashed() bool {
	return c.DeletedAt != nil
}

// CustomerData is the allow-list of writable customer fields.
type CustomerData struct {
	Name     string
	Email    string
	Phone    *string
	Address  *string
	Company  *string
	Status   CustomerStatus
	Metadata map[string]any
}

// Apply copies the writable fields onto c.
func (d CustomerData) Apply(c *Customer) {
	c.Name = d.Name
	c.Email = d.Email
	c.Phone = d.Phone
	c.Address = d.Address
	c.Company = d.Company
	c.Status = d.Status
	c.Metadata = d.Metadata
}
