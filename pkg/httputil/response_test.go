package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agendly/scheduler-api/pkg/errors"
)

func testContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	return c, rec
}

func TestRespondWithErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{errors.NewNotFound("appointment", nil), http.StatusNotFound},
		{errors.NewValidation("bad input"), http.StatusBadRequest},
		{errors.NewAvailability("closed"), http.StatusConflict},
		{errors.NewConflict("taken"), http.StatusConflict},
		{errors.NewPermission("not yours"), http.StatusForbidden},
		{errors.Unauthorized(nil), http.StatusUnauthorized},
		{assert.AnError, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		c, rec := testContext()
		RespondWithError(c, tc.err)
		assert.Equal(t, tc.status, rec.Code, "for %v", tc.err)

		var body Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.False(t, body.Success)
		require.NotNil(t, body.Error)
	}
}

func TestRespondWithConfirmation(t *testing.T) {
	c, rec := testContext()
	RespondWithConfirmation(c, "this time is blocked on your schedule, book over it anyway?", "block_override")

	assert.Equal(t, http.StatusConflict, rec.Code)
	var body ConfirmationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.ConfirmationRequired)
	assert.Equal(t, "block_override", body.Context)
}

func TestRespondWithSuccess(t *testing.T) {
	c, rec := testContext()
	RespondWithSuccess(c, map[string]int{"count": 3})

	assert.Equal(t, http.StatusOK, rec.Code)
	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
}
