package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
)

const sampleHTML = `<div class="widget-keyfacts"><div data-cuarto="4"><span class="tiempo">04:20</span> (A) A2: TIRO DE 3 ANOTADO</div></div>`

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path, err := Save(dir, "2401", sampleHTML)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if path != filepath.Join(dir, "2401.html.zst") {
		t.Errorf("unexpected path %s", path)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != sampleHTML {
		t.Errorf("round-trip mismatch: %q", got)
	}
	if id := GameID(path); id != "2401" {
		t.Errorf("GameID = %q, want 2401", id)
	}
}

func TestLoadPlainHTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "2402.html")
	if err := os.WriteFile(path, []byte(sampleHTML), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != sampleHTML {
		t.Errorf("unexpected content %q", got)
	}
	if id := GameID(path); id != "2402" {
		t.Errorf("GameID = %q, want 2402", id)
	}
}

func TestLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.html.zst")
	if err := os.WriteFile(path, []byte("not zstd at all"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for corrupt snapshot")
	}
	if !errors.Is(err, ErrParse) {
		t.Errorf("expected ErrParse mark, got %v", err)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.html.zst"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if errors.Is(err, ErrParse) {
		t.Error("a missing file is not a decode failure")
	}
}
