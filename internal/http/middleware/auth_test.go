package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/rtb-12/StorySentinel-sub000/internal/platform/logger"
)

func signed(t *testing.T, secret string, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	const secret = "s3cret"
	am := NewAuthMiddleware(logger.Nop(), AuthConfig{Secret: secret, Issuer: "storysentinel"})
	exp := time.Now().Add(time.Hour).Unix()

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"valid", "Bearer " + signed(t, secret, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "ops", "iss": "storysentinel", "exp": exp}), http.StatusOK},
		{"wrong secret", "Bearer " + signed(t, "other", jwt.SigningMethodHS256, jwt.MapClaims{"sub": "ops", "iss": "storysentinel", "exp": exp}), http.StatusUnauthorized},
		{"wrong issuer", "Bearer " + signed(t, secret, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "ops", "iss": "x", "exp": exp}), http.StatusUnauthorized},
		{"wrong alg", "Bearer " + signed(t, secret, jwt.SigningMethodHS512, jwt.MapClaims{"sub": "ops", "iss": "storysentinel", "exp": exp}), http.StatusUnauthorized},
		{"expired", "Bearer " + signed(t, secret, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "ops", "iss": "storysentinel", "exp": time.Now().Add(-time.Minute).Unix()}), http.StatusUnauthorized},
		{"no expiry", "Bearer " + signed(t, secret, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "ops", "iss": "storysentinel"}), http.StatusUnauthorized},
		{"no subject", "Bearer " + signed(t, secret, jwt.SigningMethodHS256, jwt.MapClaims{"iss": "storysentinel", "exp": exp}), http.StatusForbidden},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r := gin.New()
			r.Use(am.RequireAuth())
			r.POST("/x", func(c *gin.Context) { c.String(http.StatusOK, Subject(c)) })

			req := httptest.NewRequest(http.MethodPost, "/x", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status: got=%d want=%d body=%s", rec.Code, tc.want, rec.Body.String())
			}
			if tc.want == http.StatusOK && rec.Body.String() != "ops" {
				t.Fatalf("subject: got=%q want=%q", rec.Body.String(), "ops")
			}
		})
	}
}
