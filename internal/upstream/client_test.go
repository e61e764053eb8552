package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"systrack/console/internal/config"
	"systrack/console/internal/models"
)

func newTestClient(baseURL string) *Client {
	return NewClient(config.UpstreamConfig{BaseURL: baseURL, Timeout: 2 * time.Second}, zerolog.Nop(), nil)
}

func TestLoginSendsCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/users/login" {
			t.Errorf("got %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["email"] != "it@corp.test" || body["password"] != "hunter22" {
			t.Errorf("body = %v", body)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"token": "bearer-token", "role": "superadmin", "id": "u1", "name": "Priya",
		})
	}))
	defer srv.Close()

	creds, err := newTestClient(srv.URL).Login(context.Background(), "it@corp.test", "hunter22")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if creds.Token != "bearer-token" || creds.Role != "superadmin" {
		t.Errorf("creds = %+v", creds)
	}
}

func TestBearerHeaderTravels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer the-token" {
			t.Errorf("Authorization = %q", got)
		}
		json.NewEncoder(w).Encode(PartsPage{TotalPages: 1})
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).Parts(context.Background(), "the-token", 1, 10); err != nil {
		t.Fatalf("Parts: %v", err)
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "401 is an auth rejection",
			status: http.StatusUnauthorized,
			body:   `{"message":"Invalid token"}`,
			check: func(t *testing.T, err error) {
				var authErr *AuthError
				if !errors.As(err, &authErr) {
					t.Fatalf("err = %T", err)
				}
				if authErr.Message != "Invalid token" {
					t.Errorf("message = %q", authErr.Message)
				}
			},
		},
		{
			name:   "403 is an auth rejection",
			status: http.StatusForbidden,
			body:   `{"message":"Unauthorized access"}`,
			check: func(t *testing.T, err error) {
				var authErr *AuthError
				if !errors.As(err, &authErr) {
					t.Fatalf("err = %T", err)
				}
			},
		},
		{
			name:   "404 is not-found",
			status: http.StatusNotFound,
			body:   `{"message":"Part not found"}`,
			check: func(t *testing.T, err error) {
				var notFound *NotFoundError
				if !errors.As(err, &notFound) {
					t.Fatalf("err = %T", err)
				}
			},
		},
		{
			name:   "field errors become validation",
			status: http.StatusBadRequest,
			body:   `{"errors":{"serialNumber":"Serial number already exists"}}`,
			check: func(t *testing.T, err error) {
				var valErr *ValidationError
				if !errors.As(err, &valErr) {
					t.Fatalf("err = %T", err)
				}
				if valErr.Fields["serialNumber"] != "Serial number already exists" {
					t.Errorf("fields = %v", valErr.Fields)
				}
			},
		},
		{
			name:   "409 keeps the message verbatim",
			status: http.StatusConflict,
			body:   `{"message":"Employee already has a system assigned"}`,
			check: func(t *testing.T, err error) {
				var conflict *ConflictError
				if !errors.As(err, &conflict) {
					t.Fatalf("err = %T", err)
				}
				if conflict.Message != "Employee already has a system assigned" {
					t.Errorf("message = %q", conflict.Message)
				}
			},
		},
		{
			name:   "500 is a generic api error",
			status: http.StatusInternalServerError,
			body:   `{"message":"boom"}`,
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				if !errors.As(err, &apiErr) {
					t.Fatalf("err = %T", err)
				}
				if apiErr.StatusCode != http.StatusInternalServerError {
					t.Errorf("status = %d", apiErr.StatusCode)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestClient(srv.URL).Systems(context.Background(), "token")
			if err == nil {
				t.Fatal("expected an error")
			}
			tt.check(t, err)
		})
	}
}

func TestTransportFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	_, err := newTestClient(srv.URL).Systems(context.Background(), "token")
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("err = %T, want NetworkError", err)
	}
}

func TestVerifyRoleGuardsRequiredValue(t *testing.T) {
	if _, err := newTestClient("http://unused").VerifyRole(context.Background(), "token", models.RoleNone); err == nil {
		t.Fatal("VerifyRole accepted an unverifiable role")
	}
}

func TestVerifyRoleReturnsServerAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/users/superadmin" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{"role": "superadmin"})
	}))
	defer srv.Close()

	role, err := newTestClient(srv.URL).VerifyRole(context.Background(), "token", models.RoleSuperAdmin)
	if err != nil {
		t.Fatalf("VerifyRole: %v", err)
	}
	if role != models.RoleSuperAdmin {
		t.Errorf("role = %q", role)
	}
}

func TestPartByBarcodeEscapesImageName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.EscapedPath() != "/api/part/barcode/IMG_2024%20rack.png" {
			t.Errorf("path = %s", r.URL.EscapedPath())
		}
		json.NewEncoder(w).Encode(models.Part{ID: "p1", Barcode: "IMG_2024 rack.png"})
	}))
	defer srv.Close()

	part, err := newTestClient(srv.URL).PartByBarcode(context.Background(), "token", "IMG_2024 rack.png")
	if err != nil {
		t.Fatalf("PartByBarcode: %v", err)
	}
	if part.ID != "p1" {
		t.Errorf("part = %+v", part)
	}
}
