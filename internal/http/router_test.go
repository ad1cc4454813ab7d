package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	intconfig "ridebooking/internal/config"
	h "ridebooking/internal/http/handlers"
	"ridebooking/internal/repositories"
	"ridebooking/internal/services"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repositories.NewMemoryBookingRepo()
	deps := Deps{
		Bookings: services.BookingService{Store: store, StrictStatus: true},
		Auth: services.AuthService{
			Users:    repositories.NewMemoryUserRepo(),
			Sessions: repositories.NewMemorySessionStore(),
			Config: services.AuthConfig{
				Secret:          []byte("router-test"),
				TTL:             time.Hour,
				DefaultUsername: "admin",
				DefaultPassword: "admin123",
				DefaultEmail:    "admin@zoomgorides.com",
			},
		},
		Docs:   services.DocsService{Bookings: store},
		System: h.SystemHandler{Ping: func(context.Context) error { return nil }},
	}
	env := intconfig.Env{CORSOrigins: []string{"http://localhost:3000"}}
	return NewRouter(env, deps)
}

func do(r http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json %q: %v", w.Body.String(), err)
	}
	return out
}

func login(t *testing.T, r http.Handler) string {
	t.Helper()
	w := do(r, http.MethodPost, "/api/admin/login", `{"username":"admin","password":"admin123"}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Header().Get("Set-Cookie"), "zgr_session=") {
		t.Fatalf("session cookie not set")
	}
	return decode(t, w)["token"].(string)
}

const bookingBody = `{
	"service": "tour",
	"vehicle_type": "limousine",
	"pickup_location": "Hotel ZaZa",
	"dropoff_location": "Fort Worth Stockyards",
	"pickup_date": "2025-07-04",
	"pickup_time": "09:15",
	"passengers": "6+",
	"first_name": "Ana",
	"email": "ana@example.com",
	"phone": "555-0101",
	"meet_greet": "on",
	"unexpected": "ignored"
}`

func TestCreateAndFetchBooking(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodPost, "/api/bookings", bookingBody, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	id, _ := body["booking_id"].(string)
	if !regexp.MustCompile(`^ZGR\d{6}$`).MatchString(id) {
		t.Fatalf("unexpected booking id %q", id)
	}
	if body["estimated_price"].(float64) != 300 {
		t.Fatalf("unexpected price %v", body["estimated_price"])
	}

	w = do(r, http.MethodGet, "/api/bookings/"+id, "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	got := decode(t, w)
	if got["passengers"].(float64) != 6 || got["meet_greet"] != true || got["status"] != "pending" {
		t.Fatalf("unexpected booking %v", got)
	}
	if got["pickup_date"] != "2025-07-04" || got["pickup_time"] != "09:15" {
		t.Fatalf("unexpected date/time %v %v", got["pickup_date"], got["pickup_time"])
	}

	if w := do(r, http.MethodGet, "/api/bookings/ZGR000000", "", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestCreateBookingValidation(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodPost, "/api/bookings", `{"service":"airport","passengers":4}`, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	body := decode(t, w)
	if body["error"] != "Missing required field: pickup_location" || body["code"] != "validation_error" {
		t.Fatalf("unexpected error body %v", body)
	}
	if body["request_id"] == "" {
		t.Fatalf("request_id missing")
	}

	w = do(r, http.MethodPost, "/api/bookings", strings.Replace(bookingBody, `"6+"`, `"abc"`, 1), "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad passengers, got %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/api/bookings", `{broken`, ""); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad json, got %d", w.Code)
	}
}

func TestQuoteDoesNotPersist(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodPost, "/api/bookings/quote", `{"service":"event","vehicle":"van","passengers":8}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", w.Code, w.Body.String())
	}
	if decode(t, w)["estimated_price"].(float64) != 243 {
		t.Fatalf("unexpected quote %s", w.Body.String())
	}

	token := login(t, r)
	w = do(r, http.MethodGet, "/api/stats", "", token)
	if decode(t, w)["total_bookings"].(float64) != 0 {
		t.Fatalf("quote created a booking")
	}
}

func TestAdminEndpointsRequireLogin(t *testing.T) {
	r := newTestRouter(t)
	paths := []struct{ method, path string }{
		{http.MethodGet, "/api/bookings"},
		{http.MethodPut, "/api/bookings/ZGR000001"},
		{http.MethodDelete, "/api/bookings/ZGR000001"},
		{http.MethodGet, "/api/bookings/ZGR000001/confirmation.pdf"},
		{http.MethodGet, "/api/stats"},
	}
	for _, p := range paths {
		w := do(r, p.method, p.path, "", "")
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", p.method, p.path, w.Code)
		}
	}

	if w := do(r, http.MethodPost, "/api/admin/login", `{"username":"admin","password":"nope"}`, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/api/admin/login", `{"username":"admin"}`, ""); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without password, got %d", w.Code)
	}

	token := login(t, r)
	if w := do(r, http.MethodGet, "/api/bookings", "", token); w.Code != http.StatusOK {
		t.Fatalf("expected 200 after login, got %d", w.Code)
	}

	w := do(r, http.MethodGet, "/api/admin/check-auth", "", token)
	if decode(t, w)["authenticated"] != true {
		t.Fatalf("check-auth should report authenticated")
	}

	if w := do(r, http.MethodPost, "/api/admin/logout", "", token); w.Code != http.StatusOK {
		t.Fatalf("logout failed: %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/bookings", "", token); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", w.Code)
	}
	w = do(r, http.MethodGet, "/api/admin/check-auth", "", token)
	if decode(t, w)["authenticated"] != false {
		t.Fatalf("check-auth should report logged out")
	}
}

func TestSessionCookieAuthenticates(t *testing.T) {
	r := newTestRouter(t)
	w := do(r, http.MethodPost, "/api/admin/login", `{"username":"admin","password":"admin123"}`, "")
	cookies := w.Result().Cookies()
	if len(cookies) == 0 || !cookies[0].HttpOnly {
		t.Fatalf("expected HttpOnly session cookie")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.AddCookie(cookies[0])
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("cookie auth failed: %d", rec.Code)
	}
}

func TestManageBookingLifecycle(t *testing.T) {
	r := newTestRouter(t)
	token := login(t, r)

	w := do(r, http.MethodPost, "/api/bookings", bookingBody, "")
	id := decode(t, w)["booking_id"].(string)

	w = do(r, http.MethodPut, "/api/bookings/"+id, `{"status":"confirmed","driver_assigned":"Sam","booking_id":"HACKED"}`, token)
	if w.Code != http.StatusOK {
		t.Fatalf("update failed: %d %s", w.Code, w.Body.String())
	}
	updated := decode(t, w)
	if updated["status"] != "confirmed" || updated["driver_assigned"] != "Sam" || updated["booking_id"] != id {
		t.Fatalf("unexpected update result %v", updated)
	}

	w = do(r, http.MethodPut, "/api/bookings/"+id, `{"status":"pending"}`, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for backwards transition, got %d", w.Code)
	}
	w = do(r, http.MethodPut, "/api/bookings/"+id, `{"status":"completed","final_price":"320.456"}`, token)
	if w.Code != http.StatusOK || decode(t, w)["final_price"].(float64) != 320.46 {
		t.Fatalf("complete failed: %d %s", w.Code, w.Body.String())
	}
	if w := do(r, http.MethodPut, "/api/bookings/ZGR000000", `{"admin_notes":"x"}`, token); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on unknown update, got %d", w.Code)
	}

	w = do(r, http.MethodGet, "/api/stats", "", token)
	stats := decode(t, w)
	if stats["completed_bookings"].(float64) != 1 || stats["total_revenue"].(float64) != 320.46 {
		t.Fatalf("unexpected stats %v", stats)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/bookings/"+id+"/confirmation.pdf", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "application/pdf" || !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("pdf download failed: %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}

	w = do(r, http.MethodGet, "/api/bookings?status=completed", "", token)
	if decode(t, w)["total"].(float64) != 1 {
		t.Fatalf("status filter mismatch")
	}
	if w := do(r, http.MethodGet, "/api/bookings?status=archived", "", token); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status filter, got %d", w.Code)
	}

	if w := do(r, http.MethodDelete, "/api/bookings/"+id, "", token); w.Code != http.StatusOK {
		t.Fatalf("delete failed: %d", w.Code)
	}
	if w := do(r, http.MethodDelete, "/api/bookings/"+id, "", token); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", w.Code)
	}
	w = do(r, http.MethodGet, "/api/bookings", "", token)
	page := decode(t, w)
	if page["total"].(float64) != 0 || page["current_page"].(float64) != 1 || page["per_page"].(float64) != 10 {
		t.Fatalf("unexpected page %v", page)
	}
}

func TestHealthAndDBCheck(t *testing.T) {
	r := newTestRouter(t)
	if w := do(r, http.MethodGet, "/api/health", "", ""); w.Code != http.StatusOK {
		t.Fatalf("health: %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/db-check", "", ""); w.Code != http.StatusOK {
		t.Fatalf("db-check: %d", w.Code)
	}

	gin.SetMode(gin.TestMode)
	failing := NewRouter(intconfig.Env{CORSOrigins: []string{"*"}}, Deps{
		System: h.SystemHandler{Ping: func(context.Context) error { return errors.New("down") }},
	})
	if w := do(failing, http.MethodGet, "/api/db-check", "", ""); w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 when db is down, got %d", w.Code)
	}
}

func TestUpdateRejectsNonFiniteFinalPrice(t *testing.T) {
	r := newTestRouter(t)
	token := login(t, r)

	w := do(r, http.MethodPost, "/api/bookings", bookingBody, "")
	id := decode(t, w)["booking_id"].(string)

	for _, raw := range []string{"NaN", "Inf", "-Inf", "+Infinity"} {
		w = do(r, http.MethodPut, "/api/bookings/"+id, `{"final_price":"`+raw+`"}`, token)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("final_price %s: expected 400, got %d %s", raw, w.Code, w.Body.String())
		}
	}

	w = do(r, http.MethodGet, "/api/bookings/"+id, "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := decode(t, w); got["final_price"] != nil {
		t.Fatalf("final price should still be unset, got %v", got["final_price"])
	}
}
