package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"holasmile/cmd/internal/utils/apierror"
)

var secret = []byte("test-secret")

func TestAuthorize(t *testing.T) {
	if apierr := Authorize(nil, OpSupplyView); apierr == nil || apierr.Code() != http.StatusUnauthorized {
		t.Fatalf("nil identity: expected 401, got %v", apierr)
	}
	if apierr := Authorize(&Identity{UserID: 0, Role: RoleOwner}, OpSupplyView); apierr == nil || apierr.Code() != http.StatusUnauthorized {
		t.Fatalf("zero user: expected 401, got %v", apierr)
	}

	cases := []struct {
		op    Operation
		role  Role
		allow bool
	}{
		{OpScheduleRegister, RoleDentist, true},
		{OpScheduleRegister, RoleOwner, false},
		{OpScheduleApprove, RoleOwner, true},
		{OpScheduleApprove, RoleDentist, false},
		{OpSupplyCreate, RoleAssistant, true},
		{OpSupplyCreate, RoleOwner, false},
		{OpSupplyView, RoleReceptionist, true},
		{OpSupplyView, RolePatient, false},
		{OpUserBan, RoleAdministrator, true},
		{OpUserBan, RoleOwner, false},
		{OpWarrantyEdit, RoleReceptionist, true},
		{OpWarrantyEdit, RolePatient, false},
		{OpTransactionCreate, RoleReceptionist, true},
		{OpTransactionCreate, RoleDentist, false},
		{OpNotificationOwn, RolePatient, true},
		{Operation("unknown"), RoleAdministrator, false},
	}
	for _, tc := range cases {
		apierr := Authorize(&Identity{UserID: 5, Role: tc.role}, tc.op)
		switch {
		case tc.allow && apierr != nil:
			t.Errorf("%s as %s: unexpected %v", tc.op, tc.role, apierr)
		case !tc.allow && (apierr == nil || apierr.Kind() != apierror.KindUnauthorized || apierr.Code() != http.StatusForbidden):
			t.Errorf("%s as %s: expected 403, got %v", tc.op, tc.role, apierr)
		}
	}
}

func TestParseRole(t *testing.T) {
	if r, ok := ParseRole(" Owner "); !ok || r != RoleOwner {
		t.Fatalf("expected owner, got %q %t", r, ok)
	}
	if _, ok := ParseRole("janitor"); ok {
		t.Fatal("unknown role accepted")
	}
	if RolePatient.IsStaff() || !RoleAssistant.IsStaff() {
		t.Fatal("staff classification is wrong")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	raw, err := SignToken(secret, Identity{UserID: 9, Role: RoleDentist}, time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	id, err := ParseToken(secret, raw)
	if err != nil || id.UserID != 9 || id.Role != RoleDentist {
		t.Fatalf("unexpected identity %+v (%v)", id, err)
	}

	if _, err = ParseToken([]byte("other"), raw); err == nil {
		t.Fatal("token signed with another key accepted")
	}

	expired, _ := SignToken(secret, Identity{UserID: 9, Role: RoleDentist}, -time.Minute)
	if _, err = ParseToken(secret, expired); err == nil {
		t.Fatal("expired token accepted")
	}

	bogus, _ := SignToken(secret, Identity{UserID: 9, Role: "janitor"}, time.Minute)
	if _, err = ParseToken(secret, bogus); err == nil {
		t.Fatal("token with unknown role accepted")
	}
}

func TestMiddleware(t *testing.T) {
	e := echo.New()
	var seen *Identity
	handler := Middleware(secret)(func(c echo.Context) error {
		seen = FromContext(c)
		return c.NoContent(http.StatusNoContent)
	})

	serve := func(header string) {
		seen = nil
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set(echo.HeaderAuthorization, header)
		}
		if err := handler(e.NewContext(req, httptest.NewRecorder())); err != nil {
			t.Fatal(err)
		}
	}

	raw, _ := SignToken(secret, Identity{UserID: 3, Role: RoleOwner}, time.Minute)
	serve("Bearer " + raw)
	if seen == nil || seen.UserID != 3 {
		t.Fatalf("expected identity 3, got %+v", seen)
	}

	serve("Bearer garbage")
	if seen != nil {
		t.Fatal("invalid token must leave the request anonymous")
	}

	serve("")
	if seen != nil {
		t.Fatal("missing token must leave the request anonymous")
	}
}
