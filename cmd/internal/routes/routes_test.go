package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"holasmile/cmd/internal/auth"
	"holasmile/cmd/internal/service"
	"holasmile/cmd/internal/utils/apierror"
)

var secret = []byte("routes-secret")

// stubSupplies authorizes like the real service and returns canned results.
type stubSupplies struct {
	caller  *auth.Identity
	created *service.SupplyRequest
	edited  *service.EditSupplyRequest
	err     apierror.ErrorResponse
}

func (s *stubSupplies) CreateSupply(_ context.Context, id *auth.Identity, req *service.SupplyRequest) (*service.SupplyResponse, apierror.ErrorResponse) {
	if apierr := auth.Authorize(id, auth.OpSupplyCreate); apierr != nil {
		return nil, apierr
	}
	s.caller, s.created = id, req
	if s.err != nil {
		return nil, s.err
	}
	return &service.SupplyResponse{ID: 1, Name: req.Name}, nil
}

func (s *stubSupplies) EditSupply(_ context.Context, id *auth.Identity, req *service.EditSupplyRequest) (*service.SupplyResponse, apierror.ErrorResponse) {
	s.caller, s.edited = id, req
	return &service.SupplyResponse{ID: req.SupplyID, Name: req.Name}, nil
}

func (s *stubSupplies) ToggleSupply(context.Context, *auth.Identity, int) (*service.SupplyResponse, apierror.ErrorResponse) {
	return nil, apierror.NewNotFound("Supply")
}

func (s *stubSupplies) ListSupplies(_ context.Context, id *auth.Identity) ([]*service.SupplyResponse, apierror.ErrorResponse) {
	if apierr := auth.Authorize(id, auth.OpSupplyView); apierr != nil {
		return nil, apierr
	}
	return []*service.SupplyResponse{{ID: 1, Name: "Gauze"}}, nil
}

func newSupplyServer(stub *stubSupplies) *echo.Echo {
	r := NewSupplyDefault(stub)
	e := echo.New()
	e.Use(auth.Middleware(secret))
	e.GET("/api/supplies", r.GetSupplies)
	e.POST("/api/supplies", r.CreateSupply)
	e.PUT("/api/supplies/:id", r.EditSupply)
	e.PUT("/api/supplies/:id/toggle", r.ToggleSupply)
	return e
}

func call(t *testing.T, e *echo.Echo, method, path, body string, role auth.Role) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if role != "" {
		token, err := auth.SignToken(secret, auth.Identity{UserID: 30, Role: role}, time.Minute)
		if err != nil {
			t.Fatal(err)
		}
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &out)
	}
	return rec, out
}

func TestSupplyRoutes_AnonymousIsUnauthorized(t *testing.T) {
	e := newSupplyServer(&stubSupplies{})

	rec, body := call(t, e, http.MethodPost, "/api/supplies", `{"supply_name":"Gauze"}`, "")
	if rec.Code != http.StatusUnauthorized || body["kind"] != string(apierror.KindUnauthorized) {
		t.Fatalf("expected 401 unauthorized, got %d %v", rec.Code, body)
	}
}

func TestSupplyRoutes_WrongRoleIsForbidden(t *testing.T) {
	e := newSupplyServer(&stubSupplies{})

	rec, _ := call(t, e, http.MethodPost, "/api/supplies", `{"supply_name":"Gauze"}`, auth.RoleReceptionist)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestSupplyRoutes_Create(t *testing.T) {
	stub := &stubSupplies{}
	e := newSupplyServer(stub)

	rec, body := call(t, e, http.MethodPost, "/api/supplies",
		`{"supply_name":"Gauze","unit":"pack","quantity_in_stock":3,"price":2.5,"expiry_date":"2099-01-01"}`, auth.RoleAssistant)
	if rec.Code != http.StatusCreated || body["supply_name"] != "Gauze" {
		t.Fatalf("expected 201, got %d %v", rec.Code, body)
	}
	if stub.caller == nil || stub.caller.UserID != 30 || stub.caller.Role != auth.RoleAssistant {
		t.Fatalf("expected the token identity, got %+v", stub.caller)
	}
	if stub.created.Quantity != 3 || stub.created.Price != 2.5 || stub.created.ExpiryDate != "2099-01-01" {
		t.Fatalf("body not bound: %+v", stub.created)
	}
}

func TestSupplyRoutes_ErrorsKeepTheirStatus(t *testing.T) {
	stub := &stubSupplies{err: apierror.NewConflict("This supply already exists")}
	e := newSupplyServer(stub)

	rec, body := call(t, e, http.MethodPost, "/api/supplies", `{"supply_name":"Gauze"}`, auth.RoleAssistant)
	if rec.Code != http.StatusConflict || body["message"] != "This supply already exists" {
		t.Fatalf("expected 409, got %d %v", rec.Code, body)
	}

	rec, _ = call(t, e, http.MethodPut, "/api/supplies/5/toggle", "", auth.RoleAssistant)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	rec, _ = call(t, e, http.MethodPost, "/api/supplies", `{"supply_name":`, auth.RoleAssistant)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", rec.Code)
	}
}

func TestSupplyRoutes_EditTakesIDFromPath(t *testing.T) {
	stub := &stubSupplies{}
	e := newSupplyServer(stub)

	rec, _ := call(t, e, http.MethodPut, "/api/supplies/abc", `{}`, auth.RoleAssistant)
	if rec.Code != http.StatusBadRequest || stub.edited != nil {
		t.Fatalf("expected 400 before reaching the service, got %d", rec.Code)
	}

	rec, body := call(t, e, http.MethodPut, "/api/supplies/7", `{"supply_id":99,"supply_name":"Gauze"}`, auth.RoleAssistant)
	if rec.Code != http.StatusOK || stub.edited.SupplyID != 7 || body["id"] != float64(7) {
		t.Fatalf("expected path id 7, got %d %+v", rec.Code, stub.edited)
	}
}

func TestSupplyRoutes_List(t *testing.T) {
	e := newSupplyServer(&stubSupplies{})

	rec, body := call(t, e, http.MethodGet, "/api/supplies", "", auth.RoleOwner)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	list, ok := body["supplies"].([]any)
	if !ok || len(list) != 1 {
		t.Fatalf("unexpected body %v", body)
	}
}
