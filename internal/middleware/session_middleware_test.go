package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSessionTest() (*gin.Engine, *string) {
	gin.SetMode(gin.TestMode)

	var seen string
	router := gin.New()
	router.Use(SessionMiddleware())
	router.GET("/", func(c *gin.Context) {
		if id, ok := GetSessionID(c); ok {
			seen = id
		}
		c.Status(http.StatusOK)
	})
	return router, &seen
}

func TestSessionMiddleware_IssuesCookieForNewVisitor(t *testing.T) {
	router, seen := setupSessionTest()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	router.ServeHTTP(w, req)

	require.NoError(t, uuid.Validate(*seen))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.Equal(t, *seen, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestSessionMiddleware_ReusesExistingSession(t *testing.T) {
	router, seen := setupSessionTest()

	existing := uuid.NewString()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: existing})
	router.ServeHTTP(w, req)

	assert.Equal(t, existing, *seen)
	assert.Empty(t, w.Result().Cookies(), "no new cookie for a returning visitor")
}

func TestSessionMiddleware_ReplacesMalformedSession(t *testing.T) {
	router, seen := setupSessionTest()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "not-a-uuid"})
	router.ServeHTTP(w, req)

	assert.NotEqual(t, "not-a-uuid", *seen)
	require.NoError(t, uuid.Validate(*seen))
}

func TestGetSessionID_MissingReturnsFalse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := GetSessionID(c)
	assert.False(t, ok)
}
