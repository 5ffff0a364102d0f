package httpserver

import (
	"time"

	"customer-api/internal/domain"
)

type userResource struct {
	UUID            string     `json:"uuid"`
	Name            string     `json:"name"`
	Username        string     `json:"username"`
	Email           string     `json:"email"`
	IsActive        bool       `json:"is_active"`
	EmailVerifiedAt *time.Time `json:"email_verified_at"`
	CreatedAt       time.Time  `json:"created_at"`
}

type tokenResource struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type statusResource struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type customerResource struct {
	UUID      string         `json:"uuid"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Phone     *string        `json:"phone"`
	Address   *string        `json:"address"`
	Company   *string        `json:"company"`
	Status    statusResource `json:"status"`
	Metadata  map[string]any `json:"metadata"`
	IsActive  bool           `json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt *time.Time     `json:"deleted_at,omitempty"`
}

func toUserResource(u *domain.User) userResource {
	return userResource{
		UUID:            u.UUID,
		Name:            u.Name,
		Username:        u.Username,
		Email:           u.Email,
		IsActive:        u.IsActive,
		EmailVerifiedAt: u.EmailVerifiedAt,
		CreatedAt:       u.CreatedAt,
	}
}

func toCustomerResource(c *domain.Customer) customerResource {
	return customerResource{
		UUID:      c.UUID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		Company:   c.Company,
		Status:    statusResource{Value: string(c.Status), Label: c.Status.Label()},
		Metadata:  c.Metadata,
		IsActive:  c.IsActive(),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		DeletedAt: c.DeletedAt,
	}
}

func toCustomerResources(cs []domain.Customer) []customerResource {
	out := make([]customerResource, 0, len(cs))
	for i := range cs {
		out = append(out, toCustomerResource(&cs[i]))
	}
	return out
}
