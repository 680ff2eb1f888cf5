package config

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("ACCESS_MODE", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("JWT_TTL", "")
	t.Setenv("APP_ENV", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Access.Mode != AccessModeStrict {
		t.Errorf("access mode = %q, want %q", cfg.Access.Mode, AccessModeStrict)
	}
	if cfg.Access.DenyAsNotFound {
		t.Error("deny-as-not-found should default to false")
	}
	if cfg.Database.Driver != DriverPostgres {
		t.Errorf("driver = %q, want %q", cfg.Database.Driver, DriverPostgres)
	}
	if cfg.JWT.TTL != 7*24*time.Hour {
		t.Errorf("jwt ttl = %v", cfg.JWT.TTL)
	}
}

func TestLoadConfigAccessMode(t *testing.T) {
	tests := []struct {
		name    string
		mode    string
		wantErr bool
	}{
		{"strict", "strict", false},
		{"read open", "read_open", false},
		{"upper case", "READ_OPEN", false},
		{"unknown", "public", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ACCESS_MODE", tt.mode)
			t.Setenv("ACCESS_DENY_AS_NOT_FOUND", "true")

			cfg, err := LoadConfig()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for mode %q", tt.mode)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadConfig: %v", err)
			}
			if !cfg.Access.DenyAsNotFound {
				t.Error("deny-as-not-found not picked up")
			}
		})
	}
}

func TestValidateRejectsDefaultSecretInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for default JWT secret in production")
	}
}

func TestLoadConfigRejectsBadDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestLoadConfigStorage(t *testing.T) {
	t.Setenv("STORAGE_TYPE", "S3")
	t.Setenv("S3_BUCKET", "profile-pictures")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Storage.Type != StorageS3 || cfg.Storage.S3.Bucket != "profile-pictures" {
		t.Fatalf("storage = %+v", cfg.Storage)
	}

	t.Setenv("STORAGE_TYPE", "ftp")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for unsupported storage type")
	}
}
