package handlers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/codebench-edu/console-service/internal/models"
)

// fakeJWT builds an unsigned three-segment token whose payload is the
// given claims. The signature segment is garbage; expiry checking never
// looks at it.
func fakeJWT(t *testing.T, claims map[string]interface{}) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"RS256","typ":"JWT"}`))
	payload, err := json.Marshal(claims)
	if err != nil {
		t.Fatalf("Failed to marshal claims: %v", err)
	}
	return fmt.Sprintf("%s.%s.sig", header, base64.RawURLEncoding.EncodeToString(payload))
}

func TestCheckTokenExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		token   string
		wantErr string
	}{
		{
			name:  "valid future expiry",
			token: fakeJWT(t, map[string]interface{}{"exp": now.Add(time.Hour).Unix()}),
		},
		{
			name:    "expired token",
			token:   fakeJWT(t, map[string]interface{}{"exp": now.Add(-time.Hour).Unix()}),
			wantErr: "token expired",
		},
		{
			name:    "expiry exactly now",
			token:   fakeJWT(t, map[string]interface{}{"exp": now.Unix()}),
			wantErr: "token expired",
		},
		{
			name:    "missing exp claim",
			token:   fakeJWT(t, map[string]interface{}{"sub": "user-1"}),
			wantErr: "token has no expiry",
		},
		{
			name:    "two segments",
			token:   "header.payload",
			wantErr: "malformed token",
		},
		{
			name:    "empty token",
			token:   "",
			wantErr: "malformed token",
		},
		{
			name:    "payload not base64",
			token:   "header.!!not-base64!!.sig",
			wantErr: "malformed token payload",
		},
		{
			name:    "payload not json",
			token:   "header." + base64.RawURLEncoding.EncodeToString([]byte("plain text")) + ".sig",
			wantErr: "malformed token payload",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkTokenExpiry(tt.token, now)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected token to pass, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Expected error %q, got nil", tt.wantErr)
			}
			if err.Error() != tt.wantErr {
				t.Errorf("Expected error %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestExtractBearerToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		header    string
		wantToken string
		wantOK    bool
	}{
		{name: "valid bearer", header: "Bearer abc.def.ghi", wantToken: "abc.def.ghi", wantOK: true},
		{name: "lowercase scheme", header: "bearer abc.def.ghi", wantToken: "abc.def.ghi", wantOK: true},
		{name: "missing header", header: "", wantOK: false},
		{name: "wrong scheme", header: "Basic dXNlcjpwYXNz", wantOK: false},
		{name: "no token", header: "Bearer", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				c.Request.Header.Set("Authorization", tt.header)
			}

			token, ok := extractBearerToken(c)
			if ok != tt.wantOK {
				t.Fatalf("Expected ok=%v, got %v", tt.wantOK, ok)
			}
			if ok && token != tt.wantToken {
				t.Errorf("Expected token %q, got %q", tt.wantToken, token)
			}
			if !ok && w.Code != http.StatusUnauthorized {
				t.Errorf("Expected 401 on rejection, got %d", w.Code)
			}
		})
	}
}

func TestMapCasdoorRoleToUserRole(t *testing.T) {
	cam := &CasdoorAuthMiddleware{}

	tests := []struct {
		casdoorType string
		want        models.UserRole
	}{
		{casdoorType: "admin", want: models.RoleAdmin},
		{casdoorType: "Administrator", want: models.RoleAdmin},
		{casdoorType: "teacher", want: models.RoleTeacher},
		{casdoorType: "INSTRUCTOR", want: models.RoleTeacher},
		{casdoorType: "student", want: models.RoleStudent},
		{casdoorType: "", want: models.RoleStudent},
		{casdoorType: "something-else", want: models.RoleStudent},
	}

	for _, tt := range tests {
		if got := cam.mapCasdoorRoleToUserRole(tt.casdoorType); got != tt.want {
			t.Errorf("mapCasdoorRoleToUserRole(%q) = %q, want %q", tt.casdoorType, got, tt.want)
		}
	}
}
