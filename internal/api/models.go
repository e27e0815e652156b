package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskhive/internal/domain"
	"github.com/phrazzld/taskhive/internal/service"
	"github.com/phrazzld/taskhive/internal/platform/todos"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Username        string `json:"username"         validate:"required,min=3,max=150"`
	Email           string `json:"email"            validate:"required,email"`
	FirstName       string `json:"first_name"       validate:"max=150"`
	LastName        string `json:"last_name"        validate:"max=150"`
	Phone           string `json:"phone"            validate:"max=30"`
	Password        string `json:"password"         validate:"required,min=12,max=72"`
	PasswordConfirm string `json:"password_confirm" validate:"required"`
	// CompanyName associates the new user with a company, creating it on
	// first use. Optional; users without it have no tenant until assigned.
	CompanyName string `json:"company_name" validate:"max=200"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	UserID       uuid.UUID `json:"user_id"`
	AccessToken  string    `json:"token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token
// refresh endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// CompanyResponse is the embedded company representation on user responses.
type CompanyResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserResponse is the user representation returned by profile and
// company-user endpoints.
type UserResponse struct {
	ID        uuid.UUID        `json:"id"`
	Username  string           `json:"username"`
	Email     string           `json:"email"`
	FirstName string           `json:"first_name"`
	LastName  string           `json:"last_name"`
	Phone     string           `json:"phone"`
	Company   *CompanyResponse `json:"company"`
	CreatedAt time.Time        `json:"date_joined"`
}

// CreateTaskRequest defines the payload for task creation.
type CreateTaskRequest struct {
	Title       string            `json:"title"       validate:"required,max=200"`
	Description string            `json:"description"`
	Status      domain.TaskStatus `json:"status"      validate:"omitempty,oneof=todo in_progress done cancelled"`
	AssignedTo  uuid.UUID         `json:"assigned_to" validate:"required"`
}

// UpdateTaskRequest defines the payload for task updates. Omitted fields
// are left unchanged.
type UpdateTaskRequest struct {
	Title       *string            `json:"title"       validate:"omitempty,min=1,max=200"`
	Description *string            `json:"description"`
	Status      *domain.TaskStatus `json:"status"      validate:"omitempty,oneof=todo in_progress done cancelled"`
	AssignedTo  *uuid.UUID         `json:"assigned_to"`
}

// ExternalTaskEntry is one external todo in the merged response.
type ExternalTaskEntry struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	Source    string `json:"source"`
}

// ExternalTasksResponse merges local tasks with the external todo feed.
type ExternalTasksResponse struct {
	LocalTasks    []*service.TaskDetail `json:"local_tasks"`
	ExternalTasks []ExternalTaskEntry   `json:"external_tasks"`
	MergedCount   int                   `json:"merged_count"`
}

func toExternalEntries(fetched []todos.Todo) []ExternalTaskEntry {
	entries := make([]ExternalTaskEntry, 0, len(fetched))
	for _, t := range fetched {
		entries = append(entries, ExternalTaskEntry{
			ID:        t.ID,
			Title:     t.Title,
			Completed: t.Completed,
			Source:    "external",
		})
	}
	return entries
}

func toUserResponse(user *domain.User, company *domain.Company) UserResponse {
	resp := UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Phone:     user.Phone,
		CreatedAt: user.CreatedAt,
	}
	if company != nil {
		resp.Company = &CompanyResponse{
			ID:          company.ID,
			Name:        company.Name,
			Description: company.Description,
			CreatedAt:   company.CreatedAt,
		}
	}
	return resp
}
