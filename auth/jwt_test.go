package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("test-key")

func TestValidateJWT(t *testing.T) {
	id := uuid.New()
	token, err := GenerateJWT("alice", id, testKey, time.Hour)
	require.NoError(t, err)

	claims, err := ValidateJWT(token, testKey)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, id.String(), claims.UUID)

	_, err = ValidateJWT(token, []byte("other-key"))
	assert.Error(t, err)

	expired, err := GenerateJWT("alice", id, testKey, -time.Minute)
	require.NoError(t, err)
	_, err = ValidateJWT(expired, testKey)
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	id := uuid.New()
	var gotID uuid.UUID
	var gotOK bool
	handler := GetJwtAuthMiddleware(testKey)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _, gotOK = Requester(r.Context())
	}))

	token, err := GenerateJWT("alice", id, testKey, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, gotOK)
	assert.Equal(t, id, gotID)

	// anonymous
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, gotOK)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
