package lockfile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFile(t *testing.T) {
	lf, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if lf.Version != Version {
		t.Errorf("Version: want %d, got %d", Version, lf.Version)
	}
	if lf.HasLanguage("fr") {
		t.Error("empty lock file should have no languages")
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()

	lf, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	lf.SetChecksums("fr", map[string]string{
		"greeting":   "Hello",
		"nested.bye": "Goodbye",
	})
	if err := lf.Save(); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	again, err := Load(dir)
	if err != nil {
		t.Fatalf("re-Load error: %v", err)
	}
	if !again.HasLanguage("fr") {
		t.Fatal("fr missing after round trip")
	}
	if got := again.Checksums["fr"]["greeting"]; got != Checksum("Hello") {
		t.Errorf("greeting checksum: want %s, got %s", Checksum("Hello"), got)
	}
}

func TestStale(t *testing.T) {
	lf, err := Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	lf.SetChecksums("fr", map[string]string{
		"a": "one",
		"b": "two",
	})

	tests := []struct {
		name   string
		leaves map[string]string
		want   []string
	}{
		{"nothing changed", map[string]string{"a": "one", "b": "two"}, nil},
		{"one changed", map[string]string{"a": "one", "b": "TWO"}, []string{"b"}},
		{"new key", map[string]string{"a": "one", "b": "two", "c": "three"}, []string{"c"}},
		{"changed and new, sorted", map[string]string{"a": "ONE", "b": "two", "c": "x"}, []string{"a", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lf.Stale("fr", tt.leaves)
			if len(got) != len(tt.want) {
				t.Fatalf("Stale: want %v, got %v", tt.want, got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("Stale: want %v, got %v", tt.want, got)
				}
			}
		})
	}
}

func TestStale_UnknownLanguage(t *testing.T) {
	lf, err := Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	got := lf.Stale("de", map[string]string{"a": "one"})
	if len(got) != 1 || got[0] != "a" {
		t.Errorf("all keys should be stale for an unrecorded language, got %v", got)
	}
}

func TestLoad_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, LockFileName), []byte("{not yaml: ["), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Error("want error for corrupt lock file, got nil")
	}
}

func TestChecksum_Stable(t *testing.T) {
	if Checksum("Hello") != Checksum("Hello") {
		t.Error("checksum not deterministic")
	}
	if Checksum("Hello") == Checksum("hello") {
		t.Error("distinct values should not collide")
	}
}
