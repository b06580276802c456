package handler

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/garagecrm/access-api/internal/api/middleware"
	"github.com/garagecrm/access-api/internal/core/domain"
)

// call runs h against req. HTTP errors are rendered the way Echo renders
// them; domain errors are returned for the caller to inspect, since mapping
// them to statuses is the router's job.
func call(t *testing.T, h echo.HandlerFunc, req *http.Request, claims *middleware.Claims, params ...string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if claims != nil {
		middleware.SetClaims(c, *claims)
	}
	if len(params) > 0 {
		var names, values []string
		for i := 0; i+1 < len(params); i += 2 {
			names = append(names, params[i])
			values = append(values, params[i+1])
		}
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}

	err := h(c)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		e.DefaultHTTPErrorHandler(err, c)
		return rec, nil
	}
	return rec, err
}

func jsonRequest(method, target string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func claimsFor(userID string, role domain.Role) *middleware.Claims {
	return &middleware.Claims{UserID: userID, TenantID: "tenant_1", Role: role, Email: userID + "@garage.fr", JTI: "jti-" + userID}
}
