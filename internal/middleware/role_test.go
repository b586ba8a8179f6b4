package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"deptbook/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func routerWithRole(role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if role != "" {
			SetActor(c, domain.Actor{UserID: "u-1", Role: role})
		}
		c.Next()
	})
	router.GET("/admin", AdminOnly(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestAdminOnly(t *testing.T) {
	cases := []struct {
		role string
		want int
	}{
		{role: domain.RoleAdmin, want: http.StatusOK},
		{role: domain.RoleMember, want: http.StatusForbidden},
		{role: "", want: http.StatusUnauthorized},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		routerWithRole(tc.role).ServeHTTP(w, httptest.NewRequest("GET", "/admin", nil))
		assert.Equal(t, tc.want, w.Code, "role=%q", tc.role)
	}
}
