package seed

import (
	"context"
	"errors"
	"fmt"

	"customer-api/internal/domain"
	"customer-api/internal/service/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultPassword is the password of every seeded user.
const DefaultPassword = "password"

// UserStore is the subset of the user repository the seeder writes to.
type UserStore interface {
	Create(ctx context.Context, u domain.User) (*domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

// CustomerCreator is the write side of the customer service.
type CustomerCreator interface {
	Create(ctx context.Context, data domain.CustomerData) (*domain.Customer, error)
}

type userSeed struct {
	Name     string
	Username string
	Email    string
}

var defaultUsers = []userSeed{
	{Name: "Admin User", Username: "admin", Email: "admin@example.com"},
	{Name: "Test User", Username: "testuser", Email: "test@example.com"},
}

var (
	firstNames = []string{"Ada", "Grace", "Linus", "Margaret", "Ken", "Barbara", "Dennis", "Frances"}
	lastNames  = []string{"Lovelace", "Hopper", "Torvalds", "Hamilton", "Thompson", "Liskov", "Ritchie", "Allen"}
	companies  = []string{"Acme", "Globex", "Initech", "Umbrella", "Hooli"}
	sources    = []string{"web", "mobile", "api", "import"}
)

// Seeder inserts demo data for manual testing. Re-running it is safe:
// existing users and customer emails are skipped.
type Seeder struct {
	users     UserStore
	customers CustomerCreator
	logger    *zap.Logger
}

func New(users UserStore, customers CustomerCreator, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{users: users, customers: customers, logger: logger.Named("seed")}
}

// Users creates the admin and test accounts. It returns how many were new.
func (s *Seeder) Users(ctx context.Context) (int, error) {
	hash, err := auth.HashPassword(DefaultPassword)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, u := range defaultUsers {
		exists, err := s.users.ExistsByUsername(ctx, u.Username)
		if err != nil {
			return created, fmt.Errorf("check user %s: %w", u.Username, err)
		}
		if exists {
			s.logger.Info("user already present", zap.String("username", u.Username))
			continue
		}
		_, err = s.users.Create(ctx, domain.User{
			UUID:         uuid.NewString(),
			Name:         u.Name,
			Username:     u.Username,
			Email:        u.Email,
			PasswordHash: hash,
			IsActive:     true,
		})
		if err != nil {
			return created, fmt.Errorf("create user %s: %w", u.Username, err)
		}
		created++
		s.logger.Info("user seeded", zap.String("username", u.Username))
	}
	return created, nil
}

// Customers creates n demo customers through the customer service. Statuses
// cycle through every status in order so listings have a predictable mix.
func (s *Seeder) Customers(ctx context.Context, n int) (int, error) {
	created := 0
	for i := 0; i < n; i++ {
		_, err := s.customers.Create(ctx, demoCustomer(i))
		if errors.Is(err, domain.ErrCustomerAlreadyExists) {
			continue
		}
		if err != nil {
			return created, fmt.Errorf("seed customer %d: %w", i, err)
		}
		created++
	}
	s.logger.Info("customers seeded", zap.Int("requested", n), zap.Int("created", created))
	return created, nil
}

func demoCustomer(i int) domain.CustomerData {
	first := firstNames[i%len(firstNames)]
	last := lastNames[(i/len(firstNames))%len(lastNames)]
	statuses := domain.CustomerStatuses()

	phone := fmt.Sprintf("+1-555-%04d", i%10000)
	address := fmt.Sprintf("%d Demo Street", 100+i)
	data := domain.CustomerData{
		Name:    first + " " + last,
		Email:   fmt.Sprintf("customer%04d@example.com", i+1),
		Phone:   &phone,
		Address: &address,
		Status:  statuses[i%len(statuses)],
		Metadata: map[string]any{
			"source": sources[i%len(sources)],
		},
	}
	// Roughly two in three customers have a company.
	if i%3 != 2 {
		company := companies[i%len(companies)]
		data.Company = &company
	}
	return data
}
