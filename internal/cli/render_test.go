package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestArtifactBasePath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		token  string
		want   string
	}{
		{"empty output uses token", "", "0xabc", "0xabc"},
		{"strips svg extension", "map.svg", "0xabc", "map"},
		{"strips png extension", "out/map.png", "0xabc", "out/map"},
		{"strips pdf extension", "map.pdf", "0xabc", "map"},
		{"keeps unknown extension", "map.data", "0xabc", "map.data"},
		{"keeps bare path", "maps/uni", "0xabc", "maps/uni"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := artifactBasePath(tt.output, tt.token)
			if got != tt.want {
				t.Errorf("artifactBasePath(%q, %q) = %q, want %q", tt.output, tt.token, got, tt.want)
			}
		})
	}
}

func TestWriteArtifactsSingleFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "map.svg")

	err := writeArtifacts(artifactWriteParams{
		artifacts: map[string][]byte{"svg": []byte("<svg/>")},
		formats:   []string{"svg"},
		token:     "0xabc",
		output:    path,
	})
	if err != nil {
		t.Fatalf("writeArtifacts() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != "<svg/>" {
		t.Errorf("output contents = %q, want %q", data, "<svg/>")
	}
}

func TestWriteArtifactsMultipleFormats(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "map")

	err := writeArtifacts(artifactWriteParams{
		artifacts: map[string][]byte{
			"svg": []byte("<svg/>"),
			"png": []byte{0x89, 0x50},
		},
		formats: []string{"svg", "png"},
		token:   "0xabc",
		output:  base + ".svg",
	})
	if err != nil {
		t.Fatalf("writeArtifacts() error: %v", err)
	}

	for _, format := range []string{"svg", "png"} {
		if _, err := os.Stat(base + "." + format); err != nil {
			t.Errorf("expected %s artifact at %s.%s: %v", format, base, format, err)
		}
	}
}

func TestParseFormats(t *testing.T) {
	got := parseFormats("")
	if len(got) != 1 || got[0] != "svg" {
		t.Errorf("parseFormats(\"\") = %v, want [svg]", got)
	}

	got = parseFormats("svg,png,pdf")
	if len(got) != 3 {
		t.Errorf("parseFormats(\"svg,png,pdf\") = %v, want 3 formats", got)
	}
}
