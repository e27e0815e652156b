package shared

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceID(t *testing.T) {
	t.Parallel()

	ctx := SetTraceID(context.Background())
	traceID := GetTraceID(ctx)
	require.NotEmpty(t, traceID)
	assert.Len(t, traceID, TraceIDLength*2)

	// Each context gets its own ID.
	other := GetTraceID(SetTraceID(context.Background()))
	assert.NotEqual(t, traceID, other)

	assert.Empty(t, GetTraceID(context.Background()))
}

func TestGetUserID(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	ctx := context.WithValue(context.Background(), UserIDContextKey, userID)

	got, ok := GetUserID(ctx)
	require.True(t, ok)
	assert.Equal(t, userID, got)

	_, ok = GetUserID(context.Background())
	assert.False(t, ok)
}

func TestGetCompanyID(t *testing.T) {
	t.Parallel()

	companyID := uuid.New()
	ctx := context.WithValue(context.Background(), CompanyIDContextKey, companyID)

	got, ok := GetCompanyID(ctx)
	require.True(t, ok)
	assert.Equal(t, companyID, got)

	_, ok = GetCompanyID(context.Background())
	assert.False(t, ok)
}
