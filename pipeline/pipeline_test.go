package pipeline

import (
	"context"
	"errors"
	"html"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/openlocale/transcat/catalog"
	"github.com/openlocale/transcat/lockfile"
)

func TestTargetPath(t *testing.T) {
	tests := []struct {
		name    string
		srcPath string
		srcLang string
		dstLang string
		want    string
	}{
		{"plain filename", "config/locales/en.yml", "en", "fr", "config/locales/fr.yml"},
		{"embedded lang token", "app.en.yml", "en", "fr", "app.fr.yml"},
		{"lang dir not replaced mid-word", "sweden.yml", "en", "fr", "sweden.fr.yml"},
		{"first delimited occurrence wins", "en.things/en.yml", "en", "de", "de.things/en.yml"},
		{"bare start of string", "en.yml", "en", "pt", "pt.yml"},
		{"windows separator", `locales\en.yml`, "en", "fr", `locales\fr.yml`},
		{"no token at all", "strings.yml", "en", "fr", "strings.fr.yml"},
		{"no extension fallback", "catalog", "en", "fr", "catalog.fr"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TargetPath(tt.srcPath, tt.srcLang, tt.dstLang)
			if got != tt.want {
				t.Errorf("TargetPath(%q, %q, %q): want %q, got %q", tt.srcPath, tt.srcLang, tt.dstLang, tt.want, got)
			}
		})
	}
}

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const sourceYAML = `en:
  greeting: "hi"
  nested:
    bye: "later"
`

func TestRun_DebugUppercase(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "en.yml", sourceYAML)

	opts := Options{
		SourcePath: src,
		Targets:    []string{"fr"},
		Debug:      strings.ToUpper,
	}
	if err := Run(context.Background(), opts); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	out, err := catalog.ParseFile(filepath.Join(dir, "fr.yml"))
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if out.Lang != "fr" {
		t.Errorf("top-level key: want fr, got %q", out.Lang)
	}
	flat := out.Root.Flatten()
	if flat["greeting"] != "HI" {
		t.Errorf("greeting: want HI, got %q", flat["greeting"])
	}
	if flat["nested.bye"] != "LATER" {
		t.Errorf("nested.bye: want LATER, got %q", flat["nested.bye"])
	}
}

// markupTranslator exercises the real escape/markup round trip: it honors
// notranslate spans, uppercases translatable text, and entity-encodes
// ampersands the way real translation APIs tend to.
type markupTranslator struct {
	calls int
}

const (
	spanOpen  = `<span class="notranslate">`
	spanClose = `</span>`
)

func (m *markupTranslator) Translate(ctx context.Context, text, from, to string) (string, error) {
	m.calls++
	var b strings.Builder
	for len(text) > 0 {
		if strings.HasPrefix(text, spanOpen) {
			end := strings.Index(text, spanClose)
			if end < 0 {
				return "", errors.New("unterminated notranslate span")
			}
			end += len(spanClose)
			b.WriteString(text[:end])
			text = text[end:]
			continue
		}
		if text[0] == '<' {
			end := strings.IndexByte(text, '>')
			if end < 0 {
				return "", errors.New("unterminated tag")
			}
			b.WriteString(text[:end+1])
			text = text[end+1:]
			continue
		}
		if text[0] == '&' {
			b.WriteString(html.EscapeString("&"))
		} else {
			b.WriteString(strings.ToUpper(text[:1]))
		}
		text = text[1:]
	}
	return b.String(), nil
}

func TestRun_FullMarkupPath(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "en.yml", `en:
  greeting: "hi %{name}"
  shop: "fish & chips"
`)

	tr := &markupTranslator{}
	opts := Options{
		SourcePath: src,
		Targets:    []string{"de"},
		Translator: tr,
	}
	if err := Run(context.Background(), opts); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if tr.calls != 1 {
		t.Errorf("translator calls: want 1, got %d", tr.calls)
	}

	out, err := catalog.ParseFile(filepath.Join(dir, "de.yml"))
	if err != nil {
		t.Fatal(err)
	}
	flat := out.Root.Flatten()
	// The placeholder was inside a notranslate span, so it came through
	// without being uppercased; the entity encoding was reversed.
	if flat["greeting"] != "HI %{name}" {
		t.Errorf("greeting: want %q, got %q", "HI %{name}", flat["greeting"])
	}
	if flat["shop"] != "FISH & CHIPS" {
		t.Errorf("shop: want %q, got %q", "FISH & CHIPS", flat["shop"])
	}
}

func TestRun_NonDestructiveMerge(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "en.yml", sourceYAML)

	// First run populates fr.yml.
	opts := Options{SourcePath: src, Targets: []string{"fr"}, Debug: strings.ToUpper}
	if err := Run(context.Background(), opts); err != nil {
		t.Fatal(err)
	}

	// Hand-edit a translation.
	writeSource(t, dir, "fr.yml", `fr:
  greeting: "salut"
  nested:
    bye: "LATER"
`)

	// Second run must keep the hand-edited value.
	if err := Run(context.Background(), opts); err != nil {
		t.Fatal(err)
	}
	out, err := catalog.ParseFile(filepath.Join(dir, "fr.yml"))
	if err != nil {
		t.Fatal(err)
	}
	flat := out.Root.Flatten()
	if flat["greeting"] != "salut" {
		t.Errorf("greeting: hand edit lost, got %q", flat["greeting"])
	}
	if flat["nested.bye"] != "LATER" {
		t.Errorf("nested.bye: want LATER, got %q", flat["nested.bye"])
	}
}

func TestRun_OverwriteDiscardsExisting(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "en.yml", sourceYAML)
	writeSource(t, dir, "fr.yml", `fr:
  greeting: "salut"
`)

	opts := Options{
		SourcePath: src,
		Targets:    []string{"fr"},
		Debug:      strings.ToUpper,
		Overwrite:  true,
	}
	if err := Run(context.Background(), opts); err != nil {
		t.Fatal(err)
	}

	out, err := catalog.ParseFile(filepath.Join(dir, "fr.yml"))
	if err != nil {
		t.Fatal(err)
	}
	if v := out.Root.Flatten()["greeting"]; v != "HI" {
		t.Errorf("greeting: want HI, got %q", v)
	}
}

// failingTranslator fails on one language to verify the run keeps going.
type failingTranslator struct {
	failLang string
}

func (f *failingTranslator) Translate(ctx context.Context, text, from, to string) (string, error) {
	if to == f.failLang {
		return "", errors.New("quota exceeded")
	}
	return text, nil
}

func TestRun_OneLanguageFailsOthersSucceed(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "en.yml", sourceYAML)

	opts := Options{
		SourcePath: src,
		Targets:    []string{"fr", "de"},
		Translator: &failingTranslator{failLang: "fr"},
	}
	err := Run(context.Background(), opts)
	if err == nil {
		t.Fatal("want error, got nil")
	}
	if !strings.Contains(err.Error(), "fr") {
		t.Errorf("error should name the failed language: %v", err)
	}

	if _, statErr := os.Stat(filepath.Join(dir, "fr.yml")); !errors.Is(statErr, os.ErrNotExist) {
		t.Error("fr.yml should not exist after a failed translation")
	}
	if _, statErr := os.Stat(filepath.Join(dir, "de.yml")); statErr != nil {
		t.Errorf("de.yml should exist: %v", statErr)
	}
}

func TestRun_MissingSource(t *testing.T) {
	opts := Options{
		SourcePath: filepath.Join(t.TempDir(), "nope.yml"),
		Targets:    []string{"fr"},
		Debug:      strings.ToUpper,
	}
	if err := Run(context.Background(), opts); err == nil {
		t.Fatal("want error for missing source, got nil")
	}
}

func TestRun_NoTranslatorConfigured(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "en.yml", sourceYAML)

	err := Run(context.Background(), Options{SourcePath: src, Targets: []string{"fr"}})
	if err == nil || !strings.Contains(err.Error(), "no translator") {
		t.Fatalf("want no-translator error, got %v", err)
	}
}

func TestRun_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "en.yml", sourceYAML)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Run(ctx, Options{SourcePath: src, Targets: []string{"fr"}, Debug: strings.ToUpper})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestRun_RecordsLockChecksums(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "en.yml", sourceYAML)

	lock, err := lockfile.Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	opts := Options{
		SourcePath: src,
		Targets:    []string{"fr"},
		Debug:      strings.ToUpper,
		Lock:       lock,
	}
	if err := Run(context.Background(), opts); err != nil {
		t.Fatal(err)
	}

	if !lock.HasLanguage("fr") {
		t.Fatal("lock should record fr")
	}
	srcCat, err := catalog.ParseFile(src)
	if err != nil {
		t.Fatal(err)
	}
	if stale := lock.Stale("fr", srcCat.Root.Flatten()); len(stale) != 0 {
		t.Errorf("freshly translated language should have no stale keys, got %v", stale)
	}
}
