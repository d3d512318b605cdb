// Package pipeline orchestrates a full catalog translation run:
// load → encode → escape → translate → unescape → decode → rename →
// merge → persist, once per target language.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/openlocale/transcat/catalog"
	"github.com/openlocale/transcat/escape"
	"github.com/openlocale/transcat/lockfile"
	"github.com/openlocale/transcat/markup"
	"github.com/openlocale/transcat/merge"
	"github.com/openlocale/transcat/translate"
)

// Options configures one pipeline run. Lifecycle is scoped to that run:
// no state survives it apart from the files written.
type Options struct {
	// SourcePath is the source catalog file. Its single top-level key is
	// the source language.
	SourcePath string
	// Targets are the target language codes.
	Targets []string
	// Translator performs the external translation. Ignored when Debug
	// is set.
	Translator translate.Translator
	// Debug, when non-nil, replaces the external translator entirely:
	// it is applied leaf-by-leaf to the decoded mapping, bypassing the
	// escape/translate/unescape round trip.
	Debug translate.DebugFunc
	// Overwrite disables merging with existing target files: fresh
	// translations always win.
	Overwrite bool
	// Lock, when non-nil, records source leaf checksums per translated
	// target. The caller is responsible for saving it.
	Lock *lockfile.LockFile
	// OnLog emits progress messages.
	OnLog func(format string, args ...any)
}

func (o *Options) log(format string, args ...any) {
	if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

// Run translates the source catalog into every target language. Languages
// are processed sequentially; a failure aborts that language but the
// remaining ones are still attempted, and the failures are reported
// together at the end.
func Run(ctx context.Context, opts Options) error {
	src, err := catalog.ParseFile(opts.SourcePath)
	if err != nil {
		return err
	}

	if opts.Debug == nil && opts.Translator == nil {
		return fmt.Errorf("no translator configured")
	}

	// The encoded source document is built once and reused read-only for
	// every target language.
	var doc string
	if opts.Debug == nil {
		doc = markup.Encode(src.Root)
	}

	var failed []string
	for _, lang := range opts.Targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := runLanguage(ctx, src, doc, lang, opts); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			opts.log("Error translating %s: %v", lang, err)
			failed = append(failed, lang)
			continue
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("%d language(s) failed: %s", len(failed), strings.Join(failed, ", "))
	}
	return nil
}

// runLanguage translates the source catalog into one target language and
// persists the result. No file is written when translation fails.
func runLanguage(ctx context.Context, src *catalog.Catalog, doc, lang string, opts Options) error {
	var translated *catalog.Mapping

	if opts.Debug != nil {
		translated = src.Root.MapLeaves(opts.Debug)
	} else {
		escaped := escape.Escape(doc)
		out, err := opts.Translator.Translate(ctx, escaped, src.Lang, lang)
		if err != nil {
			return fmt.Errorf("translating to %s: %w", lang, err)
		}
		translated, err = markup.Decode(escape.Unescape(out))
		if err != nil {
			return fmt.Errorf("decoding translated document for %s: %w", lang, err)
		}
	}

	// The external translator knows nothing about the language-key
	// convention, so the top-level key is renamed here.
	result := &catalog.Catalog{Lang: lang, Root: translated}

	path := TargetPath(opts.SourcePath, src.Lang, lang)

	if !opts.Overwrite {
		old, err := catalog.ParseFile(path)
		switch {
		case err == nil:
			result.Root = merge.Merge(result.Root, old.Root)
		case errors.Is(err, os.ErrNotExist):
			// No prior translations to preserve.
		default:
			return fmt.Errorf("reading existing catalog %s: %w", path, err)
		}
	}

	if err := result.WriteFile(path); err != nil {
		return err
	}

	if opts.Lock != nil {
		opts.Lock.SetChecksums(lang, src.Root.Flatten())
	}

	opts.log("Wrote %s", path)
	return nil
}

// TargetPath derives the output path for a target language: the first
// occurrence of the source language code followed by a dot, delimited on
// the left by a path separator or dot (or the string start), is replaced
// with the target language code.
//
//	TargetPath("config/locales/en.yml", "en", "fr") → "config/locales/fr.yml"
//	TargetPath("app.en.yml", "en", "fr")            → "app.fr.yml"
func TargetPath(srcPath, srcLang, dstLang string) string {
	token := srcLang + "."
	for i := 0; ; {
		idx := strings.Index(srcPath[i:], token)
		if idx < 0 {
			break
		}
		idx += i
		if idx == 0 || srcPath[idx-1] == '/' || srcPath[idx-1] == '\\' || srcPath[idx-1] == '.' {
			return srcPath[:idx] + dstLang + "." + srcPath[idx+len(token):]
		}
		i = idx + 1
	}
	// No delimited occurrence: fall back to appending the language before
	// the extension so distinct targets never collide.
	if dot := strings.LastIndexByte(srcPath, '.'); dot > 0 {
		return srcPath[:dot] + "." + dstLang + srcPath[dot:]
	}
	return srcPath + "." + dstLang
}
