package seed

import (
	"context"
	"testing"

	"customer-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memUsers struct {
	items []domain.User
}

func (m *memUsers) Create(_ context.Context, u domain.User) (*domain.User, error) {
	u.ID = int64(len(m.items) + 1)
	m.items = append(m.items, u)
	return &u, nil
}

func (m *memUsers) ExistsByUsername(_ context.Context, username string) (bool, error) {
	for _, u := range m.items {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

type memCustomers struct {
	items []domain.CustomerData
	seen  map[string]bool
}

func (m *memCustomers) Create(_ context.Context, data domain.CustomerData) (*domain.Customer, error) {
	if m.seen == nil {
		m.seen = map[string]bool{}
	}
	if m.seen[data.Email] {
		return nil, domain.ErrCustomerAlreadyExists
	}
	m.seen[data.Email] = true
	m.items = append(m.items, data)
	return &domain.Customer{Email: data.Email}, nil
}

func TestSeeder_UsersIsIdempotent(t *testing.T) {
	users := &memUsers{}
	s := New(users, &memCustomers{}, nil)

	n, err := s.Users(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.Users(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	require.Len(t, users.items, 2)

	admin := users.items[0]
	assert.Equal(t, "admin", admin.Username)
	assert.True(t, admin.IsActive)
	assert.NotEmpty(t, admin.UUID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(DefaultPassword)))
	assert.Equal(t, "testuser", users.items[1].Username)
}

func TestSeeder_CustomersStatusMix(t *testing.T) {
	customers := &memCustomers{}
	s := New(&memUsers{}, customers, nil)

	n, err := s.Customers(context.Background(), 20)
	require.NoError(t, err)
	assert.Equal(t, 20, n)

	counts := map[domain.CustomerStatus]int{}
	for _, c := range customers.items {
		counts[c.Status]++
		assert.Contains(t, c.Email, "@example.com")
	}
	for _, st := range domain.CustomerStatuses() {
		assert.Equal(t, 5, counts[st], st)
	}

	n, err = s.Customers(context.Background(), 20)
	require.NoError(t, err)
	assert.Zero(t, n, "re-running skips existing emails")
}
