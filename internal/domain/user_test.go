package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	t.Run("creates valid user", func(t *testing.T) {
		t.Parallel()

		user, err := NewUser("alice@example.com", "alice", "correct-horse-battery")
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, "correct-horse-battery", user.Password)
		assert.Nil(t, user.CompanyID)
		assert.False(t, user.CreatedAt.IsZero())
	})

	tests := []struct {
		name     string
		email    string
		username string
		password string
		wantErr  error
	}{
		{
			name:     "empty email",
			email:    "",
			username: "alice",
			password: "correct-horse-battery",
			wantErr:  ErrEmptyEmail,
		},
		{
			name:     "email without at sign",
			email:    "alice.example.com",
			username: "alice",
			password: "correct-horse-battery",
			wantErr:  ErrInvalidEmail,
		},
		{
			name:     "email without domain dot",
			email:    "alice@localhost",
			username: "alice",
			password: "correct-horse-battery",
			wantErr:  ErrInvalidEmail,
		},
		{
			name:     "empty username",
			email:    "alice@example.com",
			username: "",
			password: "correct-horse-battery",
			wantErr:  ErrEmptyUsername,
		},
		{
			name:     "password too short",
			email:    "alice@example.com",
			username: "alice",
			password: "short",
			wantErr:  ErrPasswordTooShort,
		},
		{
			name:     "password too long",
			email:    "alice@example.com",
			username: "alice",
			password: strings.Repeat("x", 73),
			wantErr:  ErrPasswordTooLong,
		},
		{
			name:     "empty password",
			email:    "alice@example.com",
			username: "alice",
			password: "",
			wantErr:  ErrEmptyPassword,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			user, err := NewUser(tc.email, tc.username, tc.password)
			assert.Nil(t, user)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestUserValidateLoadedFromStore(t *testing.T) {
	t.Parallel()

	// A user loaded from the database has a hash but no plaintext password.
	user := &User{
		ID:             uuid.New(),
		Email:          "alice@example.com",
		Username:       "alice",
		HashedPassword: "$2a$10$notarealhashbutnonempty",
	}
	assert.NoError(t, user.Validate())

	user.HashedPassword = ""
	assert.ErrorIs(t, user.Validate(), ErrEmptyPassword)
}

func TestUserDisplayName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		firstName string
		lastName  string
		username  string
		want      string
	}{
		{name: "full name", firstName: "Alice", lastName: "Smith", username: "alice", want: "Alice Smith"},
		{name: "first name only", firstName: "Alice", username: "alice", want: "Alice"},
		{name: "last name only", lastName: "Smith", username: "alice", want: "Smith"},
		{name: "username fallback", username: "alice", want: "alice"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			user := &User{FirstName: tc.firstName, LastName: tc.lastName, Username: tc.username}
			assert.Equal(t, tc.want, user.DisplayName())
		})
	}
}
