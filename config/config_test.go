package config

import "testing"

func TestGetString(t *testing.T) {
	cfg := map[string]string{"PORT": "9090", "EMPTY": ""}

	if got := GetString(cfg, "PORT", "8080"); got != "9090" {
		t.Errorf("GetString(PORT) = %q", got)
	}
	if got := GetString(cfg, "EMPTY", "fallback"); got != "" {
		t.Errorf("GetString(EMPTY) = %q, want empty value over default", got)
	}
	if got := GetString(cfg, "MISSING", "fallback"); got != "fallback" {
		t.Errorf("GetString(MISSING) = %q", got)
	}
	if got := GetString(nil, "PORT", "8080"); got != "8080" {
		t.Errorf("GetString(nil map) = %q", got)
	}
}

func TestGetInt(t *testing.T) {
	cfg := map[string]string{"LIMIT": "25", "BAD": "not-a-number"}

	if got := GetInt(cfg, "LIMIT", 10); got != 25 {
		t.Errorf("GetInt(LIMIT) = %d", got)
	}
	if got := GetInt(cfg, "BAD", 10); got != 10 {
		t.Errorf("GetInt(BAD) = %d, want default", got)
	}
	if got := GetInt(cfg, "MISSING", 10); got != 10 {
		t.Errorf("GetInt(MISSING) = %d", got)
	}
}

func TestGetBool(t *testing.T) {
	cfg := map[string]string{"ON": "true", "OFF": "0", "BAD": "maybe"}

	if !GetBool(cfg, "ON", false) {
		t.Error("GetBool(ON) = false")
	}
	if GetBool(cfg, "OFF", true) {
		t.Error("GetBool(OFF) = true")
	}
	if !GetBool(cfg, "BAD", true) {
		t.Error("GetBool(BAD) should fall back to default")
	}
	if GetBool(cfg, "MISSING", false) {
		t.Error("GetBool(MISSING) = true")
	}
}

func TestSplit(t *testing.T) {
	key, value := split("DATABASE_URL=postgres://localhost/studio?sslmode=disable")
	if key != "DATABASE_URL" || value != "postgres://localhost/studio?sslmode=disable" {
		t.Errorf("split() = %q, %q", key, value)
	}

	key, value = split("LONELY")
	if key != "LONELY" || value != "" {
		t.Errorf("split(no equals) = %q, %q", key, value)
	}
}
