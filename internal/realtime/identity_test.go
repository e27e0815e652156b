package realtime

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskhive/internal/domain"
	"github.com/phrazzld/taskhive/internal/service/auth"
	"github.com/phrazzld/taskhive/internal/store"
)

// stubJWTService validates tokens against a fixed table. Only the
// methods the validator calls are meaningful.
type stubJWTService struct {
	auth.JWTService
	claims map[string]*auth.Claims
}

func (s *stubJWTService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if claims, ok := s.claims[tokenString]; ok {
		return claims, nil
	}
	return nil, auth.ErrInvalidToken
}

type stubUserStore struct {
	store.UserStore
	users map[uuid.UUID]*domain.User
}

func (s *stubUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if user, ok := s.users[id]; ok {
		return user, nil
	}
	return nil, store.ErrUserNotFound
}

type stubCompanyStore struct {
	store.CompanyStore
	companies map[uuid.UUID]*domain.Company
}

func (s *stubCompanyStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Company, error) {
	if company, ok := s.companies[id]; ok {
		return company, nil
	}
	return nil, store.ErrCompanyNotFound
}

type validatorFixture struct {
	validator *JWTTokenValidator
	userID    uuid.UUID
	companyID uuid.UUID
}

func newValidatorFixture(companyID *uuid.UUID) *validatorFixture {
	userID := uuid.New()

	jwtService := &stubJWTService{claims: map[string]*auth.Claims{
		"valid-token": {UserID: userID, CompanyID: companyID, TokenType: "access"},
		"orphan-token": {
			UserID:    uuid.New(),
			TokenType: "access",
		},
	}}

	users := &stubUserStore{users: map[uuid.UUID]*domain.User{
		userID: {ID: userID, CompanyID: companyID},
	}}

	companies := &stubCompanyStore{companies: map[uuid.UUID]*domain.Company{}}
	f := &validatorFixture{
		validator: NewJWTTokenValidator(jwtService, users, companies),
		userID:    userID,
	}
	if companyID != nil {
		f.companyID = *companyID
		companies.companies[*companyID] = &domain.Company{ID: *companyID, Name: "Acme"}
	}
	return f
}

func TestValidateResolvesIdentity(t *testing.T) {
	t.Parallel()

	companyID := uuid.New()
	f := newValidatorFixture(&companyID)

	identity, err := f.validator.Validate(context.Background(), "valid-token")
	require.NoError(t, err)
	assert.Equal(t, f.userID, identity.UserID)
	assert.Equal(t, companyID, identity.CompanyID)
	assert.Equal(t, "Acme", identity.CompanyName)
}

func TestValidateRejectsMissingToken(t *testing.T) {
	t.Parallel()

	companyID := uuid.New()
	f := newValidatorFixture(&companyID)

	identity, err := f.validator.Validate(context.Background(), "")
	assert.Nil(t, identity)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestValidateRejectsInvalidToken(t *testing.T) {
	t.Parallel()

	companyID := uuid.New()
	f := newValidatorFixture(&companyID)

	identity, err := f.validator.Validate(context.Background(), "forged")
	assert.Nil(t, identity)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestValidateRejectsDeletedUser(t *testing.T) {
	t.Parallel()

	companyID := uuid.New()
	f := newValidatorFixture(&companyID)

	// The claims decode fine but the user record is gone.
	identity, err := f.validator.Validate(context.Background(), "orphan-token")
	assert.Nil(t, identity)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestValidateRejectsUserWithoutCompany(t *testing.T) {
	t.Parallel()

	f := newValidatorFixture(nil)

	identity, err := f.validator.Validate(context.Background(), "valid-token")
	assert.Nil(t, identity)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestValidateRejectsDeletedCompany(t *testing.T) {
	t.Parallel()

	companyID := uuid.New()
	f := newValidatorFixture(&companyID)
	delete(f.validator.companyStore.(*stubCompanyStore).companies, companyID)

	identity, err := f.validator.Validate(context.Background(), "valid-token")
	assert.Nil(t, identity)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
