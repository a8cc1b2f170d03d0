package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ar3/our-gruuv-sub014/internal/platform/logger"
)

const testSecret = "test-secret"

func signToken(t *testing.T, personID string, secret string) string {
	t.Helper()
	claims := IdentityClaims{
		PersonID: personID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func newTestRouter(t *testing.T) (*gin.Engine, *uuid.UUID) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	im := NewIdentityMiddleware(log, testSecret)

	var seen uuid.UUID
	router := gin.New()
	router.GET("/me", im.RequireIdentity(), func(c *gin.Context) {
		id, ok := PersonID(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		seen = id
		c.Status(http.StatusOK)
	})
	return router, &seen
}

func TestRequireIdentityValidToken(t *testing.T) {
	router, seen := newTestRouter(t)
	personID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, personID.String(), testSecret))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if *seen != personID {
		t.Fatalf("person id = %s, want %s", *seen, personID)
	}
}

func TestRequireIdentityRejections(t *testing.T) {
	router, _ := newTestRouter(t)

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing_token", header: "", want: http.StatusUnauthorized},
		{name: "wrong_secret", header: "Bearer " + signToken(t, uuid.NewString(), "other-secret"), want: http.StatusUnauthorized},
		{name: "not_a_uuid", header: "Bearer " + signToken(t, "not-a-uuid", testSecret), want: http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}
