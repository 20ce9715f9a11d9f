package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/uriel-reyes/sellertools-sub000/pkg/errors"
)

func TestRespondErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", &errors.ErrValidation{Message: "bad input"}, http.StatusBadRequest},
		{"unauthorized", &errors.ErrUnauthorized{Message: "bad credentials"}, http.StatusUnauthorized},
		{"access denied", &errors.ErrAccessDenied{Message: "no store"}, http.StatusForbidden},
		{"not found", &errors.ErrNotFound{Resource: "order", ID: "x"}, http.StatusNotFound},
		{"version conflict", &errors.ErrVersionConflict{Resource: "order", ID: "x", Version: 2}, http.StatusConflict},
		{"remote", &errors.ErrRemote{Operation: "orders", Err: fmt.Errorf("boom")}, http.StatusBadGateway},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			respondError(c, zap.NewNop(), tc.err)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestRespondErrorAccessDeniedPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondError(c, zap.NewNop(), &errors.ErrAccessDenied{Message: "customer has no store-key assigned"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), `"accessDenied"`)
}

func TestParseVersion(t *testing.T) {
	v, err := parseVersion("7")
	assert.NoError(t, err)
	assert.Equal(t, int64(7), v)

	for _, bad := range []string{"", "0", "-1", "abc"} {
		_, err := parseVersion(bad)
		assert.Error(t, err, "version %q should be rejected", bad)
	}
}
