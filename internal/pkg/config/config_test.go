package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	return Config{
		Server:   ServerConfig{Port: 8080, ReadTimeout: 10, WriteTimeout: 10},
		Database: DatabaseConfig{Host: "localhost", Port: 5432, User: "mtlmap", DBName: "mtlmap"},
		Storage:  StorageConfig{Driver: DriverPostgres, DataDir: "./data"},
		NATS:     NATSConfig{URL: "nats://localhost:4222", Enabled: true},
		Valkey:   ValkeyConfig{Addr: "localhost:6379", TTLSeconds: 300},
		Temporal: TemporalConfig{TaskQueue: "mtlmap-import"},
	}
}

func TestValidate_OK(t *testing.T) {
	c := validConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_MemoryDriverSkipsDatabase(t *testing.T) {
	c := validConfig()
	c.Storage.Driver = DriverMemory
	c.Database = DatabaseConfig{}
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	c := validConfig()
	c.Server.Port = 0
	c.Storage.Driver = "sqlite"
	c.Valkey.TTLSeconds = -1

	err := c.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"server.port", "storage.driver", "valkey.ttl_seconds"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestValkeyEnabled(t *testing.T) {
	if (ValkeyConfig{Addr: "x:6379", TTLSeconds: 0}).Enabled() {
		t.Error("ttl 0 should disable the cache")
	}
	if (ValkeyConfig{TTLSeconds: 60}).Enabled() {
		t.Error("empty addr should disable the cache")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("MTLMAP_STORAGE_DRIVER", "memory")
	t.Setenv("MTLMAP_SERVER_PORT", "9090")

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Driver != DriverMemory || cfg.Server.Port != 9090 {
		t.Errorf("env not applied: %+v %+v", cfg.Storage, cfg.Server)
	}
	if cfg.Telemetry.ServiceName != "test" {
		t.Errorf("service name = %q", cfg.Telemetry.ServiceName)
	}
}
