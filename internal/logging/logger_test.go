package logging

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"debug", zapcore.DebugLevel, false},
		{"INFO", zapcore.InfoLevel, false},
		{"warn", zapcore.WarnLevel, false},
		{"warning", zapcore.WarnLevel, false},
		{" error ", zapcore.ErrorLevel, false},
		{"verbose", zapcore.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestInitializeSilentByDefault(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "")
	if err := Initialize(""); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if GetLogger().Core().Enabled(zapcore.ErrorLevel) {
		t.Error("logger should be a no-op when no level is configured")
	}
}

func TestInitializeFromEnv(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "warn")
	if err := Initialize(""); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	defer SetLogger(zap.NewNop())

	if !GetLogger().Core().Enabled(zapcore.WarnLevel) {
		t.Error("warn level should be enabled")
	}
	if GetLogger().Core().Enabled(zapcore.InfoLevel) {
		t.Error("info level should be disabled")
	}
}

func TestInitializeRejectsUnknownLevel(t *testing.T) {
	if err := Initialize("chatty"); err == nil {
		t.Error("Initialize(\"chatty\") should fail")
	}
}

func TestLogFrame(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(zap.NewNop())

	LogFrame(nil, "sent", []byte("info\x00"))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d log entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["direction"] != "sent" {
		t.Errorf("direction = %v, want sent", fields["direction"])
	}
	if fields["hex"] != "696e666f00" {
		t.Errorf("hex = %v, want 696e666f00", fields["hex"])
	}
	if fields["ascii"] != "info." {
		t.Errorf("ascii = %v, want info.", fields["ascii"])
	}
}

func TestLogFrameSkippedAboveDebug(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	SetLogger(zap.New(core))
	defer SetLogger(zap.NewNop())

	LogFrame(nil, "received", []byte("success"))

	if logs.Len() != 0 {
		t.Errorf("got %d entries, want none at info level", logs.Len())
	}
}

func TestHexDumpTruncates(t *testing.T) {
	data := make([]byte, 300)
	got := HexDump(data)
	if !strings.HasSuffix(got, "...") {
		t.Errorf("HexDump() of 300 bytes should be truncated, got len %d", len(got))
	}
	if len(got) != 2*256+3 {
		t.Errorf("HexDump() length = %d, want %d", len(got), 2*256+3)
	}
	if HexDump(nil) != "" {
		t.Error("HexDump(nil) should be empty")
	}
}
