package realtime

import (
	"context"
	"fmt"

	"github.com/phrazzld/taskhive/internal/domain"
	"github.com/phrazzld/taskhive/internal/service/auth"
	"github.com/phrazzld/taskhive/internal/store"

	"github.com/google/uuid"
)

// Identity is the fully resolved principal behind an authenticated
// websocket connection. CompanyID is never the zero UUID; users without
// a company are rejected during validation.
type Identity struct {
	UserID      uuid.UUID
	CompanyID   uuid.UUID
	CompanyName string
}

// TokenValidator authenticates a bearer token presented during the
// websocket handshake and resolves it to an Identity.
type TokenValidator interface {
	// Validate returns the identity for a valid access token.
	// All failures wrap domain.ErrUnauthorized.
	Validate(ctx context.Context, token string) (*Identity, error)
}

// JWTTokenValidator validates bearer tokens against the JWT service and
// resolves the authenticated user's company from the stores. The lookup
// guards against users deleted or detached from their company after the
// token was issued.
type JWTTokenValidator struct {
	jwtService   auth.JWTService
	userStore    store.UserStore
	companyStore store.CompanyStore
}

// Ensure JWTTokenValidator implements TokenValidator
var _ TokenValidator = (*JWTTokenValidator)(nil)

// NewJWTTokenValidator creates a TokenValidator backed by the given JWT
// service and stores.
func NewJWTTokenValidator(
	jwtService auth.JWTService,
	userStore store.UserStore,
	companyStore store.CompanyStore,
) *JWTTokenValidator {
	return &JWTTokenValidator{
		jwtService:   jwtService,
		userStore:    userStore,
		companyStore: companyStore,
	}
}

// Validate verifies the token signature and claims, then resolves the
// user and company records.
func (v *JWTTokenValidator) Validate(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: missing bearer token", domain.ErrUnauthorized)
	}

	claims, err := v.jwtService.ValidateToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}

	user, err := v.userStore.GetByID(ctx, claims.UserID)
	if err != nil {
		if store.IsNotFoundError(err) {
			// Token outlived the user record.
			return nil, fmt.Errorf("%w: user no longer exists", domain.ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	if user.CompanyID == nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, domain.ErrNoCompany)
	}

	company, err := v.companyStore.GetByID(ctx, *user.CompanyID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: company no longer exists", domain.ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to resolve company: %w", err)
	}

	return &Identity{
		UserID:      user.ID,
		CompanyID:   company.ID,
		CompanyName: company.Name,
	}, nil
}
