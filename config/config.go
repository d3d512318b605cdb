// Package config implements auto-detection of the locale catalog layout:
// which directory holds the catalogs, which file is the source, and which
// sibling files are existing translations of it.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/openlocale/transcat/catalog"
)

// candidateDirs are the directories searched under the project root, in
// order. The first one containing catalog files wins.
var candidateDirs = []string{
	"config/locales",
	"locales",
	"translations",
	".",
}

// Project holds the detected catalog layout.
type Project struct {
	// Dir is the directory containing the catalog files.
	Dir string
	// SourceFile is the source catalog path.
	SourceFile string
	// SourceLang is the source language code (the source catalog's
	// top-level key).
	SourceLang string
	// Targets maps existing target language codes to their file paths.
	Targets map[string]string
}

// TargetLangs returns the detected target languages, sorted.
func (p *Project) TargetLangs() []string {
	langs := make([]string, 0, len(p.Targets))
	for lang := range p.Targets {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// foundCatalog is one parseable catalog file found during the scan.
type foundCatalog struct {
	path string
	lang string
}

// Detect scans root for locale catalogs and picks the source file.
// Files sharing a name pattern (the language token replaced) are grouped;
// within the chosen group, "en" is preferred as source, otherwise the
// alphabetically first language.
func Detect(root string) (*Project, error) {
	for _, dir := range candidateDirs {
		full := filepath.Join(root, dir)
		found := scanDir(full)
		if len(found) == 0 {
			continue
		}
		return buildProject(full, found)
	}
	return nil, fmt.Errorf("no locale catalogs found under %s", root)
}

// DetectFile builds a Project around an explicitly given source catalog,
// still discovering sibling translations.
func DetectFile(sourcePath string) (*Project, error) {
	src, err := catalog.ParseFile(sourcePath)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(sourcePath)
	found := scanDir(dir)

	proj := &Project{
		Dir:        dir,
		SourceFile: sourcePath,
		SourceLang: src.Lang,
		Targets:    make(map[string]string),
	}

	srcPattern := patternKey(filepath.Base(sourcePath), src.Lang)
	for _, fc := range found {
		if fc.path == sourcePath || filepath.Clean(fc.path) == filepath.Clean(sourcePath) {
			continue
		}
		if patternKey(filepath.Base(fc.path), fc.lang) == srcPattern {
			proj.Targets[fc.lang] = fc.path
		}
	}
	return proj, nil
}

// scanDir returns all parseable catalog files directly inside dir.
func scanDir(dir string) []foundCatalog {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var found []foundCatalog
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yml") && !strings.HasSuffix(name, ".yaml") {
			continue
		}
		path := filepath.Join(dir, name)
		cat, err := catalog.ParseFile(path)
		if err != nil {
			continue
		}
		found = append(found, foundCatalog{path: path, lang: cat.Lang})
	}
	return found
}

func buildProject(dir string, found []foundCatalog) (*Project, error) {
	// Group files by their name with the language token blanked out, so
	// en.yml/fr.yml and app.en.yml/app.fr.yml form separate groups.
	groups := make(map[string][]foundCatalog)
	for _, fc := range found {
		key := patternKey(filepath.Base(fc.path), fc.lang)
		groups[key] = append(groups[key], fc)
	}

	// Pick the group containing "en", otherwise the largest one.
	var best []foundCatalog
	for _, group := range groups {
		if hasLang(group, "en") {
			best = group
			break
		}
		if len(group) > len(best) {
			best = group
		}
	}

	sort.Slice(best, func(i, j int) bool { return best[i].lang < best[j].lang })

	src := best[0]
	for _, fc := range best {
		if fc.lang == "en" {
			src = fc
			break
		}
	}

	proj := &Project{
		Dir:        dir,
		SourceFile: src.path,
		SourceLang: src.lang,
		Targets:    make(map[string]string),
	}
	for _, fc := range best {
		if fc.lang != src.lang {
			proj.Targets[fc.lang] = fc.path
		}
	}
	return proj, nil
}

func hasLang(group []foundCatalog, lang string) bool {
	for _, fc := range group {
		if fc.lang == lang {
			return true
		}
	}
	return false
}

// patternKey blanks the first delimited "<lang>." token out of a file name
// so translations of the same catalog group together.
func patternKey(name, lang string) string {
	token := lang + "."
	for i := 0; ; {
		idx := strings.Index(name[i:], token)
		if idx < 0 {
			return name
		}
		idx += i
		if idx == 0 || name[idx-1] == '.' {
			return name[:idx] + "*." + name[idx+len(token):]
		}
		i = idx + 1
	}
}
