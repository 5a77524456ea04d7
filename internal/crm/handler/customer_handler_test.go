package handler_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/alims/leadcrm/internal/config"
	"github.com/alims/leadcrm/internal/crm/entity"
	"github.com/alims/leadcrm/internal/crm/handler"
	"github.com/alims/leadcrm/internal/crm/repository"
	"github.com/alims/leadcrm/internal/crm/service"
	"github.com/alims/leadcrm/internal/crm/testutil"
)

func setupAPI(t *testing.T) (*repository.Repositories, func(method, path string, body interface{}, token string) map[string]interface{}, func(method, path string, body interface{}, token string) int) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:            testutil.JWTSecret,
			AccessTokenExpire: time.Hour,
			Issuer:            "leadcrm",
		},
		Import: config.ImportConfig{MaxFileBytes: 10 << 20, MaxRows: 1000},
	}
	services := service.NewServices(repos, cfg, nil, nil, zap.NewNop())
	handlers := handler.NewHandlers(services)

	router := testutil.SetupRouter()
	handler.RegisterRoutes(router, handlers, testutil.JWTSecret)

	call := func(method, path string, body interface{}, token string) map[string]interface{} {
		return testutil.ParseResponse(testutil.DoRequest(router, method, path, body, token))
	}
	status := func(method, path string, body interface{}, token string) int {
		return testutil.DoRequest(router, method, path, body, token).Code
	}
	return repos, call, status
}

func TestCustomerLifecycleOverHTTP(t *testing.T) {
	_, call, status := setupAPI(t)

	manager := seedViaRegister(t, call, "boss", entity.RoleManager)
	managerToken := testutil.GenerateTestToken(manager, "Boss", "boss@test.com", entity.RoleManager)

	// create
	resp := call("POST", "/api/v1/customers", map[string]interface{}{
		"name":         "Alice",
		"phone_number": "111222333",
		"area":         "North",
	}, managerToken)
	if resp["code"].(float64) != 0 {
		t.Fatalf("create failed: %v", resp)
	}
	customerID := resp["data"].(map[string]interface{})["id"].(string)

	// duplicate phone rejected
	if code := status("POST", "/api/v1/customers", map[string]interface{}{
		"name":         "Clone",
		"phone_number": "111222333",
	}, managerToken); code != http.StatusConflict {
		t.Errorf("expected 409 for duplicate phone, got %d", code)
	}

	// status transition
	resp = call("POST", fmt.Sprintf("/api/v1/customers/%s/status", customerID), map[string]interface{}{
		"status": entity.StatusInterested,
		"notes":  "called today",
	}, managerToken)
	if resp["code"].(float64) != 0 {
		t.Fatalf("status change failed: %v", resp)
	}

	// invalid status rejected
	if code := status("POST", fmt.Sprintf("/api/v1/customers/%s/status", customerID), map[string]interface{}{
		"status": "LOST",
	}, managerToken); code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid status, got %d", code)
	}

	// history shows the transition
	resp = call("GET", fmt.Sprintf("/api/v1/customers/%s/history", customerID), nil, managerToken)
	entries := resp["data"].([]interface{})
	if len(entries) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(entries))
	}
	entry := entries[0].(map[string]interface{})
	if entry["new_status"].(string) != entity.StatusInterested {
		t.Errorf("unexpected history entry: %v", entry)
	}

	// unauthenticated requests are rejected
	if code := status("GET", "/api/v1/customers", nil, ""); code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", code)
	}
}

func TestRoleGatesOverHTTP(t *testing.T) {
	_, call, status := setupAPI(t)

	counsellor := seedViaRegister(t, call, "helper", entity.RoleCounsellor)
	counsellorToken := testutil.GenerateTestToken(counsellor, "Helper", "helper@test.com", entity.RoleCounsellor)

	// manager-only routes are closed to counsellors
	if code := status("GET", "/api/v1/customers/unassigned", nil, counsellorToken); code != http.StatusForbidden {
		t.Errorf("expected 403 on unassigned listing, got %d", code)
	}
	if code := status("POST", "/api/v1/customers/bulk-assign", map[string]interface{}{
		"customer_ids":  []string{"x"},
		"counsellor_id": counsellor,
	}, counsellorToken); code != http.StatusForbidden {
		t.Errorf("expected 403 on bulk assign, got %d", code)
	}

	// imports are a manager-only surface
	if code := status("POST", "/api/v1/imports", nil, counsellorToken); code != http.StatusForbidden {
		t.Errorf("expected 403 on import run, got %d", code)
	}
	if code := status("GET", "/api/v1/imports", nil, counsellorToken); code != http.StatusForbidden {
		t.Errorf("expected 403 on import history, got %d", code)
	}
}

func TestLoginFlow(t *testing.T) {
	_, call, status := setupAPI(t)

	resp := call("POST", "/api/v1/auth/register", map[string]interface{}{
		"username": "alice",
		"name":     "Alice",
		"email":    "alice@test.com",
		"password": "supersecret1",
	}, "")
	if resp["code"].(float64) != 0 {
		t.Fatalf("register failed: %v", resp)
	}

	resp = call("POST", "/api/v1/auth/login", map[string]interface{}{
		"username": "alice",
		"password": "supersecret1",
	}, "")
	data := resp["data"].(map[string]interface{})
	token, ok := data["token"].(string)
	if !ok || token == "" {
		t.Fatalf("login returned no token: %v", resp)
	}

	// the issued token works against protected routes
	resp = call("GET", "/api/v1/auth/me", nil, token)
	me := resp["data"].(map[string]interface{})
	if me["username"].(string) != "alice" {
		t.Errorf("unexpected identity: %v", me)
	}
	if me["role"].(string) != entity.RoleCounsellor {
		t.Errorf("register should default to counsellor, got %v", me["role"])
	}

	// bad password
	if code := status("POST", "/api/v1/auth/login", map[string]interface{}{
		"username": "alice",
		"password": "wrong",
	}, ""); code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad credentials, got %d", code)
	}
}

// seedViaRegister creates an account through the API and returns its id
func seedViaRegister(t *testing.T, call func(string, string, interface{}, string) map[string]interface{}, username, role string) string {
	t.Helper()
	resp := call("POST", "/api/v1/auth/register", map[string]interface{}{
		"username": username,
		"name":     username,
		"email":    username + "@test.com",
		"password": "supersecret1",
		"role":     role,
	}, "")
	if resp["code"] == nil || resp["code"].(float64) != 0 {
		t.Fatalf("register %s failed: %v", username, resp)
	}
	return resp["data"].(map[string]interface{})["id"].(string)
}
