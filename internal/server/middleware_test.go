package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestOperatorTokenMiddleware(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		configured string
		sent       string
		wantStatus int
	}{
		{name: "matching_token", configured: "secret", sent: "secret", wantStatus: http.StatusNoContent},
		{name: "wrong_token", configured: "secret", sent: "nope", wantStatus: http.StatusForbidden},
		{name: "missing_token", configured: "secret", sent: "", wantStatus: http.StatusForbidden},
		{name: "endpoint_disabled", configured: "", sent: "", wantStatus: http.StatusForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			router := gin.New()
			router.POST("/op", OperatorTokenMiddleware(tc.configured), func(c *gin.Context) {
				c.Status(http.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodPost, "/op", nil)
			if tc.sent != "" {
				req.Header.Set(OperatorTokenHeader, tc.sent)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			require.Equal(t, tc.wantStatus, w.Code)
		})
	}
}
