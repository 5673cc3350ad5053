package startup

import (
	"path/filepath"
	"testing"
)

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()
	if info.Version == "" {
		t.Error("Version is empty")
	}
	if info.GoVersion == "" {
		t.Error("GoVersion is empty")
	}
	if info.OS == "" || info.Arch == "" {
		t.Error("OS/Arch are empty")
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("STARTUP_TEST_KEY", "value")
	if got := getEnv("STARTUP_TEST_KEY", "fallback"); got != "value" {
		t.Errorf("getEnv = %q, want %q", got, "value")
	}
	if got := getEnv("STARTUP_TEST_MISSING", "fallback"); got != "fallback" {
		t.Errorf("getEnv = %q, want fallback", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		fallback bool
		want     bool
	}{
		{name: "true", value: "true", fallback: false, want: true},
		{name: "false", value: "false", fallback: true, want: false},
		{name: "numeric true", value: "1", fallback: false, want: true},
		{name: "invalid uses fallback", value: "banana", fallback: true, want: true},
		{name: "empty uses fallback", value: "", fallback: true, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv("STARTUP_TEST_BOOL", tt.value)
			} else {
				t.Setenv("STARTUP_TEST_BOOL", "")
			}
			if got := getEnvBool("STARTUP_TEST_BOOL", tt.fallback); got != tt.want {
				t.Errorf("getEnvBool(%q, %v) = %v, want %v", tt.value, tt.fallback, got, tt.want)
			}
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		fallback int
		want     int
	}{
		{name: "valid", value: "42", fallback: 10, want: 42},
		{name: "invalid uses fallback", value: "abc", fallback: 10, want: 10},
		{name: "zero rejected", value: "0", fallback: 10, want: 10},
		{name: "negative rejected", value: "-5", fallback: 10, want: 10},
		{name: "empty uses fallback", value: "", fallback: 10, want: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("STARTUP_TEST_INT", tt.value)
			if got := getEnvInt("STARTUP_TEST_INT", tt.fallback); got != tt.want {
				t.Errorf("getEnvInt(%q, %d) = %d, want %d", tt.value, tt.fallback, got, tt.want)
			}
		})
	}
}

func TestEnsureWritableDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "deep")
	if err := ensureWritableDir(dir); err != nil {
		t.Errorf("ensureWritableDir(%q): %v", dir, err)
	}
}

func TestOrNone(t *testing.T) {
	if got := orNone(""); got != "(none)" {
		t.Errorf("orNone(\"\") = %q, want (none)", got)
	}
	if got := orNone("/data"); got != "/data" {
		t.Errorf("orNone(/data) = %q, want /data", got)
	}
}
