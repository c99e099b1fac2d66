package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/nucmed/petplan/internal/model"
)

type fakeValidator struct {
	claims *model.TokenClaims
	err    error
}

func (f *fakeValidator) ValidateToken(token string) (*model.TokenClaims, error) {
	return f.claims, f.err
}

func authTestRouter(v TokenValidator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewAuthMiddleware(v).Authenticate())
	r.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString(ContextUserID),
			"email":   c.GetString(ContextUserEmail),
		})
	})
	return r
}

func TestAuthenticate_SetsIdentity(t *testing.T) {
	r := authTestRouter(&fakeValidator{claims: &model.TokenClaims{
		UserID: "user-1",
		Email:  "doctor@nucmed.cz",
	}})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-1")
	assert.Contains(t, w.Body.String(), "doctor@nucmed.cz")
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	r := authTestRouter(&fakeValidator{})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_MalformedHeader(t *testing.T) {
	r := authTestRouter(&fakeValidator{})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "token-without-scheme")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_RejectedToken(t *testing.T) {
	r := authTestRouter(&fakeValidator{err: errors.New("expired")})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer stale")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
