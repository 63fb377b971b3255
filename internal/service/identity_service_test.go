package service_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/training-management-api/internal/airline"
	"github.com/training-management-api/internal/auth"
	"github.com/training-management-api/internal/config"
	"github.com/training-management-api/internal/mocks"
	"github.com/training-management-api/internal/models"
	"github.com/training-management-api/internal/service"
)

const testSecret = "test-secret"

func newAirlineServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-API-Key")
		switch {
		case r.URL.Path == "/user" && key == "pilot-key":
			w.Write([]byte(`{"data":{"id":"42","name":"Jane Doe","pilotId":"VA042"}}`))
		case r.URL.Path == "/pilots/VA001" && key == "admin-key":
			w.Write([]byte(`{"data":{"id":"1","name":"Ace Pilot","pilotId":"VA001"}}`))
		case strings.HasPrefix(r.URL.Path, "/pilots/"):
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func newIdentityServices(baseURL string, admin *auth.AdminCredential) (*service.Services, *mocks.MockStaffRepository) {
	repos := mocks.NewRepositories()
	cfg := &config.Config{Auth: config.AuthConfig{JWTSecret: testSecret, JWTIssuer: "test", SessionTTL: time.Hour}}
	client := airline.NewClient(config.AirlineConfig{BaseURL: baseURL, Timeout: time.Second}, zerolog.Nop())
	svc := service.NewServices(repos, service.Dependencies{
		Airline:  client,
		Notifier: mocks.NewMockNotifier(false),
		Admin:    admin,
	}, cfg, zerolog.Nop())
	return svc, repos.Staff.(*mocks.MockStaffRepository)
}

func TestIdentityService_VerifyEnrichesWithStaffRole(t *testing.T) {
	server := newAirlineServer(t)
	svc, staff := newIdentityServices(server.URL, auth.NewAdminCredential("", ""))
	ctx := context.Background()

	v, err := svc.Identity.Verify(ctx, "pilot-key")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if v.User.Role != models.RoleStaff || len(v.User.Permissions) != 0 || v.User.Source != models.SourceAirline {
		t.Errorf("Unexpected unregistered user: %+v", v.User)
	}

	staff.Staff["s1"] = &models.StaffMember{
		ID:             "s1",
		CredentialHash: auth.HashCredential("pilot-key"),
		Role:           models.RoleTrainer,
		Status:         "active",
	}
	v, err = svc.Identity.Verify(ctx, "pilot-key")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if v.User.Role != models.RoleTrainer || v.User.StaffID != "s1" || v.User.PilotID != "VA042" {
		t.Errorf("Unexpected staff user: %+v", v.User)
	}
	if v.SessionToken == "" {
		t.Fatal("Expected a session token")
	}

	claims, err := svc.Identity.Session(v.SessionToken)
	if err != nil {
		t.Fatalf("Session failed: %v", err)
	}
	if claims.UserID != "42" || claims.Role != string(models.RoleTrainer) {
		t.Errorf("Unexpected claims: %+v", claims)
	}

	_, err = svc.Identity.Session("not-a-token")
	expectKind(t, err, service.ErrUnauthorized)
}

func TestIdentityService_StaffChangesDropCachedIdentity(t *testing.T) {
	server := newAirlineServer(t)
	repos := mocks.NewRepositories()
	profiles := mocks.NewMockProfileCache()
	client := airline.NewClient(config.AirlineConfig{BaseURL: server.URL, Timeout: time.Second}, zerolog.Nop())
	svc := service.NewServices(repos, service.Dependencies{
		Airline:  client,
		Notifier: mocks.NewMockNotifier(false),
		Cache:    profiles,
		Admin:    auth.NewAdminCredential("", ""),
	}, &config.Config{}, zerolog.Nop())
	ctx := context.Background()

	verifyRole := func(want models.Role) {
		t.Helper()
		v, err := svc.Identity.Verify(ctx, "pilot-key")
		if err != nil {
			t.Fatalf("Verify failed: %v", err)
		}
		if v.User.Role != want {
			t.Fatalf("Expected role %s, got %s", want, v.User.Role)
		}
		if got, expected := strings.Join(v.User.Permissions, ","), strings.Join(models.PermissionsFor(want), ","); got != expected {
			t.Errorf("Expected permissions %q, got %q", expected, got)
		}
	}

	// A verify before the staff record exists caches the plain Staff role
	verifyRole(models.RoleStaff)

	member, err := svc.Staff.Create(ctx, &models.CreateStaffRequest{APIKey: "pilot-key", Name: "Jane Doe", Role: models.RoleAdmin})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	verifyRole(models.RoleAdmin)
	if _, ok := profiles.Get(ctx, "pilot-key"); !ok {
		t.Fatal("Expected the verified identity to be cached")
	}

	trainer := models.RoleTrainer
	if _, err := svc.Staff.Update(ctx, member.ID, &models.UpdateStaffRequest{Role: &trainer}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	verifyRole(models.RoleTrainer)

	if err := svc.Staff.Delete(ctx, member.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	verifyRole(models.RoleStaff)
}

func TestIdentityService_BootstrapFallback(t *testing.T) {
	tests := []struct {
		name  string
		admin *auth.AdminCredential
		key   string
		want  service.ErrorKind
	}{
		{"admin key accepted", auth.NewAdminCredential("admin-key", ""), "admin-key", ""},
		{"wrong key rejected", auth.NewAdminCredential("admin-key", ""), "other-key", service.ErrUpstream},
		{"no admin configured", auth.NewAdminCredential("", ""), "admin-key", service.ErrUpstream},
		{"empty key", auth.NewAdminCredential("admin-key", ""), " ", service.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// nothing listens on this address
			svc, _ := newIdentityServices("http://127.0.0.1:1", tt.admin)

			v, err := svc.Identity.Verify(context.Background(), tt.key)
			if tt.want != "" {
				expectKind(t, err, tt.want)
				if tt.want == service.ErrUpstream && !strings.HasPrefix(err.(*service.Error).Message, "Failed to verify API key") {
					t.Errorf("Unexpected message: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Verify failed: %v", err)
			}
			if v.User.Role != models.RoleAdmin || v.User.Source != models.SourceFallback {
				t.Errorf("Unexpected fallback user: %+v", v.User)
			}
			if len(v.User.Permissions) != len(models.PermissionsFor(models.RoleAdmin)) {
				t.Errorf("Admin should carry every admin permission, got %v", v.User.Permissions)
			}
		})
	}
}

func TestIdentityService_Pilot(t *testing.T) {
	server := newAirlineServer(t)
	ctx := context.Background()

	svc, _ := newIdentityServices(server.URL, auth.NewAdminCredential("admin-key", ""))
	pilot, err := svc.Identity.Pilot(ctx, "VA001")
	if err != nil {
		t.Fatalf("Pilot failed: %v", err)
	}
	if pilot.Name != "Ace Pilot" {
		t.Errorf("Unexpected pilot: %+v", pilot)
	}

	_, err = svc.Identity.Pilot(ctx, "VA999")
	expectKind(t, err, service.ErrNotFound)

	svc, _ = newIdentityServices(server.URL, auth.NewAdminCredential("", ""))
	_, err = svc.Identity.Pilot(ctx, "VA001")
	expectKind(t, err, service.ErrUnavailable)
}
