package config

import "testing"

func validConfig() Config {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		Database: DatabaseConfig{
			Addrs: []string{"localhost:6379"},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_ChannelKinds(t *testing.T) {
	cfg := validConfig()
	cfg.Channels.Defaults = []ChannelConfig{
		{Key: "transcript", Kind: "vector", Weight: 0.5},
		{Key: "lexical", Kind: "text", Weight: 0.5},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error for valid channel kinds: %v", err)
	}

	cfg.Channels.Defaults = []ChannelConfig{
		{Key: "transcript", Kind: "graph", Weight: 0.5},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid channel kind")
	}

	expected := `channels.defaults.transcript.kind must be "vector" or "text", got "graph"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_DuplicateChannelKey(t *testing.T) {
	cfg := validConfig()
	cfg.Channels.Defaults = []ChannelConfig{
		{Key: "transcript", Kind: "vector", Weight: 0.5},
		{Key: "transcript", Kind: "vector", Weight: 0.5},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for duplicate channel key")
	}
}

func TestValidate_NegativeChannelWeight(t *testing.T) {
	cfg := validConfig()
	cfg.Channels.Defaults = []ChannelConfig{
		{Key: "transcript", Kind: "vector", Weight: -0.1},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative channel weight")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 10 {
		t.Errorf("expected WriteTimeoutSec=10, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Channels.TimeoutMS != 2000 {
		t.Errorf("expected channel TimeoutMS=2000, got %d", cfg.Channels.TimeoutMS)
	}
	if len(cfg.Channels.Defaults) != 4 {
		t.Fatalf("expected 4 default channels, got %d", len(cfg.Channels.Defaults))
	}
	if cfg.Channels.Defaults[0].Key != "transcript" || cfg.Channels.Defaults[0].Weight != 0.35 {
		t.Errorf("unexpected first default channel: %+v", cfg.Channels.Defaults[0])
	}
	if cfg.Fusion.ContentWeight != 0.35 || cfg.Fusion.PersonWeight != 0.65 {
		t.Errorf("unexpected fusion defaults: %+v", cfg.Fusion)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Database: DatabaseConfig{ReadinessTimeout: 15},
		Channels: ChannelsConfig{
			TimeoutMS: 500,
			Defaults:  []ChannelConfig{{Key: "transcript", Kind: "vector", Weight: 1}},
		},
		Fusion: FusionConfig{ContentWeight: 0.5, PersonWeight: 0.5},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Channels.TimeoutMS != 500 {
		t.Errorf("expected TimeoutMS=500, got %d", cfg.Channels.TimeoutMS)
	}
	if len(cfg.Channels.Defaults) != 1 {
		t.Errorf("expected configured channels kept, got %+v", cfg.Channels.Defaults)
	}
	if cfg.Fusion.ContentWeight != 0.5 {
		t.Errorf("expected ContentWeight=0.5, got %v", cfg.Fusion.ContentWeight)
	}
}
