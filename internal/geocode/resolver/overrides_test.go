package resolver

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseOverrides(t *testing.T) {
	data := []byte(`
overrides:
  - name: "Station Noord"
    query: "Station Noord, Buikslotermeerplein, Amsterdam, Netherlands"
  - name: "VU medisch centrum"
    query: "Amsterdam UMC locatie VUmc, De Boelelaan, Amsterdam, Netherlands"
`)
	got, err := ParseOverrides(data)
	if err != nil {
		t.Fatalf("ParseOverrides() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 overrides, got %d", len(got))
	}
	if got["Station Noord"] != "Station Noord, Buikslotermeerplein, Amsterdam, Netherlands" {
		t.Errorf("Unexpected query %q", got["Station Noord"])
	}
}

func TestParseOverridesInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"missing query", "overrides:\n  - name: Dam\n"},
		{"missing name", "overrides:\n  - query: \"Dam, Amsterdam\"\n"},
		{"duplicate", "overrides:\n  - {name: Dam, query: a}\n  - {name: Dam, query: b}\n"},
		{"not yaml", "overrides: [\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseOverrides([]byte(tc.data)); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

func TestLoadOverrides(t *testing.T) {
	got, err := LoadOverrides("")
	if err != nil || got != nil {
		t.Errorf("Empty path should yield nothing, got %v, %v", got, err)
	}

	path := filepath.Join(t.TempDir(), "overrides.yml")
	if err := os.WriteFile(path, []byte("overrides:\n  - {name: Dam, query: \"Dam, Amsterdam, Netherlands\"}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err = LoadOverrides(path)
	if err != nil {
		t.Fatalf("LoadOverrides() error: %v", err)
	}
	if got["Dam"] != "Dam, Amsterdam, Netherlands" {
		t.Errorf("Unexpected overrides %v", got)
	}

	if _, err := LoadOverrides(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Error("Expected error for missing file")
	}
}
