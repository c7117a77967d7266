package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/muurk/zdb/internal/mapfile"
	"github.com/muurk/zdb/internal/transport"
)

func TestGetConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}
	if !strings.Contains(configDir, "zdb") {
		t.Errorf("GetConfigDir() = %v, should contain 'zdb'", configDir)
	}
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}
	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Port != 7340 {
		t.Errorf("Default().Port = %v, want 7340", cfg.Port)
	}
	if cfg.Framing != transport.LengthPrefixName {
		t.Errorf("Default().Framing = %q, want %q", cfg.Framing, transport.LengthPrefixName)
	}
	if cfg.OverlayPrefix != mapfile.DefaultOverlayPrefix {
		t.Errorf("Default().OverlayPrefix = %q, want %q", cfg.OverlayPrefix, mapfile.DefaultOverlayPrefix)
	}
	if len(cfg.TableSymbols) != 4 {
		t.Errorf("Default().TableSymbols has %d entries, want 4", len(cfg.TableSymbols))
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() error = %v", err)
	}

	cfg.TableSymbols[0] = "changed"
	if mapfile.DefaultTableSymbols[0] == "changed" {
		t.Error("Default() shares its TableSymbols slice with mapfile.DefaultTableSymbols")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"port zero", func(c *Config) { c.Port = 0 }, "port 0"},
		{"port too large", func(c *Config) { c.Port = 70000 }, "port 70000"},
		{"no host", func(c *Config) { c.Host = "" }, "host is required"},
		{"no host with discovery", func(c *Config) { c.Host = ""; c.Discover = true }, ""},
		{"bad framing", func(c *Config) { c.Framing = "base64" }, "unknown framing"},
		{"bad transport", func(c *Config) { c.Transport = "serial" }, "unknown transport"},
		{"websocket without url", func(c *Config) { c.Transport = "websocket" }, "ws://"},
		{"websocket", func(c *Config) { c.Transport = "websocket"; c.URL = "ws://localhost:7340/" }, ""},
		{"no map", func(c *Config) { c.MapFile = "" }, "map_file"},
		{"no prefix", func(c *Config) { c.OverlayPrefix = "" }, "overlay_prefix"},
		{"no table symbols", func(c *Config) { c.TableSymbols = nil }, "table_symbols must name 4 tables, got 0"},
		{"extra table symbol", func(c *Config) { c.TableSymbols = append(c.TableSymbols, "gExtraTable") }, "got 5"},
		{"blank table symbol", func(c *Config) { c.TableSymbols[1] = "" }, "table_symbols[1]"},
		{"spaced table symbol", func(c *Config) { c.TableSymbols[2] = "g Table" }, "table_symbols[2]"},
		{"custom table symbols", func(c *Config) { c.TableSymbols = []string{"a", "b", "c", "d"} }, ""},
		{"negative retries", func(c *Config) { c.ConnectRetries = -1 }, "connect_retries"},
		{"negative timeout", func(c *Config) { c.ReplyTimeout = -time.Second }, "timeouts"},
		{"bad log level", func(c *Config) { c.LogLevel = "chatty" }, "unknown log level"},
		{"bad version", func(c *Config) { c.Version = 2 }, "unsupported config version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Port = 0
	cfg.MapFile = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() error = nil")
	}
	for _, want := range []string{"port", "map_file"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error = %v, want it to mention %q", err, want)
		}
	}
}

func TestSaveAndLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "zdb.yaml")

	cfg := Default()
	cfg.Host = "10.0.0.5"
	cfg.Framing = transport.HexHeaderName
	cfg.ReplyTimeout = 3 * time.Second
	cfg.AwaitAcks = true
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.HasPrefix(string(data), "# zdb Configuration File") {
		t.Error("saved file should start with the header comment")
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file should not remain after Save()")
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if loaded.Host != "10.0.0.5" {
		t.Errorf("Host = %q, want %q", loaded.Host, "10.0.0.5")
	}
	if loaded.Framing != transport.HexHeaderName {
		t.Errorf("Framing = %q, want %q", loaded.Framing, transport.HexHeaderName)
	}
	if loaded.ReplyTimeout != 3*time.Second {
		t.Errorf("ReplyTimeout = %v, want 3s", loaded.ReplyTimeout)
	}
	if !loaded.AwaitAcks {
		t.Error("AwaitAcks = false, want true")
	}
}

func TestLoadFilePartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zdb.yaml")
	content := "version: 1\nhost: emu.local\nconnect_timeout: 750ms\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Host != "emu.local" {
		t.Errorf("Host = %q, want %q", cfg.Host, "emu.local")
	}
	if cfg.ConnectTimeout != 750*time.Millisecond {
		t.Errorf("ConnectTimeout = %v, want 750ms", cfg.ConnectTimeout)
	}
	if cfg.Port != DefaultPort {
		t.Errorf("Port = %d, want default %d", cfg.Port, DefaultPort)
	}
	if cfg.MapFile != DefaultMapFile {
		t.Errorf("MapFile = %q, want default %q", cfg.MapFile, DefaultMapFile)
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
	}{
		{"malformed yaml", "host: [unclosed\n"},
		{"wrong version", "version: 9\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_")+".yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}
			if _, err := LoadFile(path); err == nil {
				t.Error("LoadFile() error = nil, want error")
			}
		})
	}
}

func TestLoadSearchOrder(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	work := t.TempDir()
	if oldWD, err := os.Getwd(); err != nil {
		t.Fatal(err)
	} else {
		if err := os.Chdir(work); err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { _ = os.Chdir(oldWD) })
	}

	// Nothing on disk: defaults.
	cfg, path, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if path != "" || cfg.Host != DefaultHost {
		t.Errorf("Load() = (%q, %q), want defaults", cfg.Host, path)
	}

	// The per-user file is found next.
	userCfg := Default()
	userCfg.Host = "user-host"
	userPath := filepath.Join(xdg, "zdb", "config.yaml")
	if err := userCfg.Save(userPath); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if runtimeUsesXDG() {
		cfg, path, err = Load("")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if path != userPath || cfg.Host != "user-host" {
			t.Errorf("Load() = (%q, %q), want (%q, %q)", cfg.Host, path, "user-host", userPath)
		}
	}

	// The working-directory file wins over the per-user one.
	localCfg := Default()
	localCfg.Host = "local-host"
	if err := localCfg.Save(LocalConfigFile); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	cfg, path, err = Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if path != LocalConfigFile || cfg.Host != "local-host" {
		t.Errorf("Load() = (%q, %q), want (%q, %q)", cfg.Host, path, "local-host", LocalConfigFile)
	}

	// An explicit path wins over both and must exist.
	cfg, path, err = Load(userPath)
	if err != nil {
		t.Fatalf("Load(explicit) error = %v", err)
	}
	if path != userPath || cfg.Host != "user-host" {
		t.Errorf("Load(explicit) = (%q, %q), want (%q, %q)", cfg.Host, path, "user-host", userPath)
	}
	if _, _, err := Load(filepath.Join(work, "missing.yaml")); err == nil {
		t.Error("Load(missing explicit path) error = nil, want error")
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	if err := CreateDefaultConfig(path, false); err != nil {
		t.Fatalf("CreateDefaultConfig() error = %v", err)
	}
	if err := CreateDefaultConfig(path, false); err == nil {
		t.Error("CreateDefaultConfig() over an existing file error = nil, want error")
	}
	if err := CreateDefaultConfig(path, true); err != nil {
		t.Errorf("CreateDefaultConfig(force) error = %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default file does not validate: %v", err)
	}
}

func TestDialConfig(t *testing.T) {
	cfg := Default()
	cfg.Host = "emu"
	cfg.Port = 9000
	dc := cfg.DialConfig()
	if dc.Address != "emu:9000" {
		t.Errorf("DialConfig().Address = %q, want %q", dc.Address, "emu:9000")
	}
	if dc.Retries != DefaultConnectRetries {
		t.Errorf("DialConfig().Retries = %d, want %d", dc.Retries, DefaultConnectRetries)
	}
}

func runtimeUsesXDG() bool {
	return runtime.GOOS != "windows" && runtime.GOOS != "darwin"
}
