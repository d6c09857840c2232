package config

import (
	"strings"
	"testing"
)

func TestLoadRequiresSecret(t *testing.T) {
	tests := []struct {
		name    string
		secret  string
		wantErr string
	}{
		{name: "missing", secret: "", wantErr: "JWT_SECRET is not set"},
		{name: "too short", secret: "short-secret", wantErr: "at least 32 bytes"},
		{name: "long enough", secret: strings.Repeat("s", MinSecretLength)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", tt.secret)
			t.Setenv("DB_TYPE", "sqlite")

			cfg, err := Load()
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Load() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if string(cfg.TokenSecret) != tt.secret {
				t.Errorf("TokenSecret = %q", cfg.TokenSecret)
			}
		})
	}
}

func TestLoadRequiresURLForServerDatabases(t *testing.T) {
	t.Setenv("JWT_SECRET", strings.Repeat("s", MinSecretLength))
	t.Setenv("DB_TYPE", "postgres")
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load() succeeded without DATABASE_URL for postgres")
	}

	t.Setenv("DATABASE_URL", "postgres://localhost/finplan")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DatabaseType != "postgres" {
		t.Errorf("DatabaseType = %q", cfg.DatabaseType)
	}
}
