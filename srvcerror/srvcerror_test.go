package srvcerror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/programme-lv/competitions/srvcerror"
	"github.com/stretchr/testify/assert"
)

func TestIsCodeSeesThroughWrapping(t *testing.T) {
	err := fmt.Errorf("failed to attach score: %w", srvcerror.ErrDuplicateScore("already scored"))

	assert.True(t, srvcerror.IsCode(err, srvcerror.ErrCodeDuplicateScore))
	assert.False(t, srvcerror.IsCode(err, srvcerror.ErrCodeNotFound))
	assert.False(t, srvcerror.IsCode(errors.New("plain"), srvcerror.ErrCodeDuplicateScore))
	assert.False(t, srvcerror.IsCode(nil, srvcerror.ErrCodeDuplicateScore))
}

func TestStatusCodes(t *testing.T) {
	assert.Equal(t, http.StatusForbidden, srvcerror.ErrAuthorization("no").HttpStatusCode())
	assert.Equal(t, http.StatusConflict, srvcerror.ErrInvalidTransition("no").HttpStatusCode())
	assert.Equal(t, http.StatusConflict, srvcerror.ErrDuplicateScore("no").HttpStatusCode())
	assert.Equal(t, http.StatusNotFound, srvcerror.ErrNotFound("no").HttpStatusCode())
	assert.Equal(t, http.StatusBadRequest, srvcerror.ErrInvalidRequest("no").HttpStatusCode())
	assert.Equal(t, http.StatusUnauthorized, srvcerror.ErrUnauthenticated().HttpStatusCode())
	assert.Equal(t, http.StatusInternalServerError, srvcerror.ErrInternalSE().HttpStatusCode())
}

func TestDebugInfoIsKept(t *testing.T) {
	cause := errors.New("connection reset")
	err := srvcerror.ErrInternalSE().SetDebug(cause)
	assert.Equal(t, cause, err.DebugInfo())
	assert.Equal(t, srvcerror.ErrCodeInternalServerError, err.ErrorCode())
}
