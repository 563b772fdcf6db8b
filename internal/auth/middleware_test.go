package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iamminhquan/jewelry-store/internal/models"
)

func invokeMiddleware(t *testing.T, ts *TokenService, cookies ...*http.Cookie) (echo.Context, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := ts.AutoRefreshMiddleware(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return c, h(c)
}

func TestMiddlewareAcceptsSignedAccessToken(t *testing.T) {
	ts := newTestService(t)

	raw, err := SignAccessToken(9, models.RoleAdmin, ts.JWTSecret)
	require.NoError(t, err)

	c, err := invokeMiddleware(t, ts, &http.Cookie{Name: "accessToken", Value: raw})
	require.NoError(t, err)

	id, err := AccountID(c)
	require.NoError(t, err)
	require.EqualValues(t, 9, id)
	require.Equal(t, models.RoleAdmin, Role(c))
}

func TestMiddlewareRejectsUnsignedToken(t *testing.T) {
	ts := newTestService(t)

	// alg=none with valid-looking claims. Must be rejected outright, never
	// treated as expired and never handed to the refresh path.
	claims := jwt.MapClaims{
		"sub":  float64(1),
		"role": float64(models.RoleAdmin),
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	refresh, err := SignRefreshToken(1, models.RoleAdmin, ts.RefreshSecret)
	require.NoError(t, err)
	require.NoError(t, SaveRefreshToken(ts.DB, refresh, 1))

	_, err = invokeMiddleware(t, ts,
		&http.Cookie{Name: "accessToken", Value: raw},
		&http.Cookie{Name: "refreshToken", Value: refresh},
	)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusUnauthorized, httpErr.Code)
	require.Equal(t, "invalid access token", httpErr.Message)
}

func TestMiddlewareRotatesExpiredAccessToken(t *testing.T) {
	ts := newTestService(t)

	expired := jwt.MapClaims{
		"sub":  float64(4),
		"role": float64(models.RoleCustomer),
		"exp":  time.Now().Add(-time.Minute).Unix(),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, expired).SignedString(ts.JWTSecret)
	require.NoError(t, err)

	refresh, err := SignRefreshToken(4, models.RoleCustomer, ts.RefreshSecret)
	require.NoError(t, err)
	require.NoError(t, SaveRefreshToken(ts.DB, refresh, 4))

	c, err := invokeMiddleware(t, ts,
		&http.Cookie{Name: "accessToken", Value: raw},
		&http.Cookie{Name: "refreshToken", Value: refresh},
	)
	require.NoError(t, err)

	id, err := AccountID(c)
	require.NoError(t, err)
	require.EqualValues(t, 4, id)

	// The rotated pair comes back as fresh cookies.
	cookies := c.Response().Header().Values("Set-Cookie")
	require.Len(t, cookies, 2)
}
