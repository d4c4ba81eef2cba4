package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.conf")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("unable to write temp config: %s", err)
	}
	return path
}

func TestReadStringMap(t *testing.T) {
	path := writeTempConfig(t, `
# a comment
listen-host = 0.0.0.0
Listen-Port = 6697

server-name = mock.server
`)

	got, err := ReadStringMap(path)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	want := map[string]string{
		"listen-host": "0.0.0.0",
		"listen-port": "6697",
		"server-name": "mock.server",
	}

	if len(got) != len(want) {
		t.Fatalf("got %d keys, want %d: %#v", len(got), len(want), got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("key %s: got %q want %q", k, got[k], v)
		}
	}
}

func TestReadStringMapDuplicateKey(t *testing.T) {
	path := writeTempConfig(t, "a = 1\na = 2\n")

	if _, err := ReadStringMap(path); err == nil {
		t.Fatalf("expected error for duplicate key")
	}
}

func TestReadStringMapMissingFile(t *testing.T) {
	if _, err := ReadStringMap(filepath.Join(t.TempDir(), "does-not-exist")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
