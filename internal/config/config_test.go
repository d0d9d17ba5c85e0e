package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestGetFileFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile")
	if err := os.WriteFile(path, []byte("  acep7\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PALETTE_PROFILE_FILE", path)

	if got := Get("PALETTE_PROFILE", "bw"); got != "acep7" {
		t.Errorf("Get = %q, want acep7", got)
	}
	t.Setenv("PALETTE_PROFILE", "gameboy")
	if got := Get("PALETTE_PROFILE", "bw"); got != "gameboy" {
		t.Errorf("direct value should win, got %q", got)
	}
}

func TestTypedGetters(t *testing.T) {
	t.Setenv("T_INT", "12")
	t.Setenv("T_BAD_INT", "twelve")
	t.Setenv("T_FLOAT", "0.75")
	t.Setenv("T_BOOL", "Yes")
	t.Setenv("T_DUR", "2d")

	if got := GetInt("T_INT", 1); got != 12 {
		t.Errorf("GetInt = %d", got)
	}
	if got := GetInt("T_BAD_INT", 1); got != 1 {
		t.Errorf("GetInt fallback = %d", got)
	}
	if got := GetFloat("T_FLOAT", 1); got != 0.75 {
		t.Errorf("GetFloat = %v", got)
	}
	if !GetBool("T_BOOL", false) {
		t.Error("GetBool = false")
	}
	if got := GetDuration("T_DUR", time.Second); got != 48*time.Hour {
		t.Errorf("GetDuration = %v", got)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "90s", want: 90 * time.Second},
		{in: " 7D ", want: 7 * 24 * time.Hour},
		{in: "1h30m", want: 90 * time.Minute},
		{in: "xd", wantErr: true},
		{in: "soon", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseDuration(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseDuration(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestGetBoolValues(t *testing.T) {
	for val, want := range map[string]bool{"on": true, "OFF": false, "1": true, "no": false} {
		t.Setenv("T_FLAG", val)
		if got := GetBool("T_FLAG", !want); got != want {
			t.Errorf("GetBool(%q) = %v", val, got)
		}
	}
	t.Setenv("T_FLAG", "maybe")
	if !GetBool("T_FLAG", true) {
		t.Error("unparsable value should fall back to default")
	}
}

func TestLoadDefaults(t *testing.T) {
	s := Load()
	if s.Order != 5 || s.Mode != "pair" || s.Resize != "none" || s.Strength != 1 {
		t.Errorf("unexpected defaults %+v", s)
	}
	if s.Workers != runtime.GOMAXPROCS(0) {
		t.Errorf("Workers = %d", s.Workers)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DITHER_ORDER", "3")
	t.Setenv("DITHER_MODE", "Bayer")
	t.Setenv("OUTPUT_WIDTH", "600")
	t.Setenv("RESIZE_MODE", "FIT")
	t.Setenv("LOG_FORMAT", "json")

	s := Load()
	if s.Order != 3 || s.Mode != "bayer" || s.Width != 600 || s.Resize != "fit" || s.LogFormat != "json" {
		t.Errorf("unexpected settings %+v", s)
	}
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name          string
		modify        func(*Settings)
		errorContains string
	}{
		{name: "valid", modify: func(*Settings) {}},
		{name: "order too large", modify: func(s *Settings) { s.Order = 9 }, errorContains: "Order=9"},
		{name: "negative workers", modify: func(s *Settings) { s.Workers = -1 }, errorContains: "Workers"},
		{name: "unknown mode", modify: func(s *Settings) { s.Mode = "atkinson" }, errorContains: `Mode must be one of`},
		{name: "unknown resize", modify: func(s *Settings) { s.Resize = "stretch" }, errorContains: "Resize"},
		{name: "zero strength", modify: func(s *Settings) { s.Strength = 0 }, errorContains: "Strength"},
		{
			name: "both palette sources",
			modify: func(s *Settings) {
				s.Profile = "bw"
				s.PaletteImage = "palette.png"
			},
			errorContains: "mutually exclusive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Load()
			tt.modify(&s)
			err := s.Validate()
			if tt.errorContains == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errorContains) {
				t.Errorf("error = %v, want containing %q", err, tt.errorContains)
			}
		})
	}
}
