package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"

	"customer-api/internal/domain"
	tokenrepo "customer-api/internal/repository/token"
)

const maxIssueAttempts = 5

var errTokenCollision = errors.New("token collision")

type tokenManager struct {
	repo tokenrepo.Repository
}

func newTokenManager(repo tokenrepo.Repository) *tokenManager {
	return &tokenManager{repo: repo}
}

// Issue stores a fresh token for (userID, device), revoking that device's
// previous token, and returns the plaintext secret.
func (m *tokenManager) Issue(ctx context.Context, userID int64, device string) (string, *domain.AccessToken, error) {
	for i := 0; i < maxIssueAttempts; i++ {
		plain, err := randomToken()
		if err != nil {
			return "", nil, err
		}
		stored, err := m.repo.Issue(ctx, domain.AccessToken{
			UserID:    userID,
			Name:      device,
			TokenHash: hashToken(plain),
		})
		if err == nil {
			return plain, stored, nil
		}
		if errors.Is(err, domain.ErrAlreadyExists) {
			continue
		}
		return "", nil, err
	}
	return "", nil, errTokenCollision
}

// Lookup resolves a plaintext token to its stored record.
func (m *tokenManager) Lookup(ctx context.Context, plain string) (*domain.AccessToken, bool, error) {
	if plain == "" {
		return nil, false, nil
	}
	t, err := m.repo.FindByHash(ctx, hashToken(plain))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return t, true, nil
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func hashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
