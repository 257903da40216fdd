package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigShow_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	output, err := runCommand(t, "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v\n%s", err, output)
	}

	for _, expected := range []string{
		"Settings source:",
		"name:          newscollector",
		"host_port:      8000",
		"dir:             newscollector",
		"connect_timeout: 10s",
		"python_bin:     python3",
		"enabled: false",
	} {
		if !strings.Contains(output, expected) {
			t.Errorf("Expected output to contain %q, got:\n%s", expected, output)
		}
	}
}

func TestConfigShow_NeverPrintsNotificationURL(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	settings := `notification:
  enabled: true
  shoutrrr_url: slack://secret-token@channel
`
	if err := os.WriteFile(filepath.Join(dir, "ncdeploy.yaml"), []byte(settings), 0o600); err != nil {
		t.Fatal(err)
	}

	output, err := runCommand(t, "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v\n%s", err, output)
	}

	if strings.Contains(output, "secret-token") {
		t.Error("config show must not print the notification URL, it embeds credentials")
	}
	if !strings.Contains(output, "url:     (set)") {
		t.Errorf("Expected masked URL marker, got:\n%s", output)
	}
}

func TestConfigShow_ReadsSettingsFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	settings := `container:
  host_port: 9000
`
	if err := os.WriteFile(filepath.Join(dir, "ncdeploy.yaml"), []byte(settings), 0o600); err != nil {
		t.Fatal(err)
	}

	output, err := runCommand(t, "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v\n%s", err, output)
	}
	if !strings.Contains(output, "host_port:      9000") {
		t.Errorf("Expected host_port from the settings file, got:\n%s", output)
	}
}
