// transcat — translates YAML locale catalogs between languages using
// external AI translation providers, preserving keys, placeholders, and
// previously reviewed translations.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/openlocale/transcat/catalog"
	"github.com/openlocale/transcat/config"
	"github.com/openlocale/transcat/i18n"
	"github.com/openlocale/transcat/langmeta"
	"github.com/openlocale/transcat/lockfile"
	"github.com/openlocale/transcat/pipeline"
	"github.com/openlocale/transcat/settings"
	"github.com/openlocale/transcat/translate"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Global flag
// ---------------------------------------------------------------------------

var rootDir string

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "transcat",
		Short: "Translate YAML locale catalogs using AI providers",
		Long: `transcat — YAML locale catalog translator.

Takes a Rails-style locale catalog (one top-level language key, nested
string maps below) and produces translated sibling catalogs, preserving
keys, %{placeholders}, and previously reviewed translations.

Commands:
  status      Show detected catalogs and translation coverage
  translate   Translate the source catalog into target languages
  auth        Manage provider API keys

Providers:
  google         Google AI (Gemini) — API key
  groq           Groq — API key
  ollama         Ollama local server — no key
  custom-openai  Custom OpenAI-compatible endpoint`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global persistent flag — inherited by all subcommands
	root.PersistentFlags().StringVar(&rootDir, "root", ".", "Project root directory")

	root.AddCommand(
		newStatusCmd(),
		newTranslateCmd(),
		newAuthCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	// .env is a dev convenience for TRANSCAT_API_KEY etc.; absence is fine.
	_ = godotenv.Load()
	i18n.Init("")

	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("transcat version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}
}

// ---------------------------------------------------------------------------
// status
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show detected catalogs and translation coverage",
		Long: `Show the detected source catalog, existing translations, and
per-target coverage. Targets whose source text changed since their last
translation run are flagged as stale. Does not modify any files.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := detectProject(file)
			if err != nil {
				return err
			}
			return runStatus(proj)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Source catalog file (default: auto-detect)")

	return cmd
}

func runStatus(proj *config.Project) error {
	src, err := catalog.ParseFile(proj.SourceFile)
	if err != nil {
		return err
	}
	srcLeaves := src.Root.Flatten()

	fmt.Fprintf(os.Stderr, "\n%s%s%s\n", colorBlue, i18n.T("Source"), colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	fmt.Fprintf(os.Stderr, "  File:       %s\n", proj.SourceFile)
	fmt.Fprintf(os.Stderr, "  Language:   %s (%s)\n", proj.SourceLang, langmeta.Native(proj.SourceLang))
	fmt.Fprintf(os.Stderr, "  Keys:       %d\n", len(srcLeaves))
	fmt.Fprintln(os.Stderr)

	if len(proj.Targets) == 0 {
		logInfo("No existing translations found next to %s", proj.SourceFile)
		logInfo("Run: transcat translate --to <lang> --provider <provider> --model <model>")
		return nil
	}

	lock, err := lockfile.Load(proj.Dir)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "%s%s%s\n", colorBlue, i18n.T("Targets"), colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	fmt.Fprintf(os.Stderr, "\n%-8s %-12s %-10s %-8s %s\n", "Lang", "Translated", "Missing", "Stale", "File")
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))

	for _, lang := range proj.TargetLangs() {
		path := proj.Targets[lang]
		cat, err := catalog.ParseFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%-8s %-12s %-10s %-8s %s\n", lang, "error", "-", "-", path)
			continue
		}

		targetLeaves := cat.Root.Flatten()
		translated, missing := 0, 0
		for key := range srcLeaves {
			if v, ok := targetLeaves[key]; ok && v != "" {
				translated++
			} else {
				missing++
			}
		}

		stale := "-"
		if lock.HasLanguage(lang) {
			stale = fmt.Sprintf("%d", len(lock.Stale(lang, srcLeaves)))
		}

		fmt.Fprintf(os.Stderr, "%-8s %-12d %-10d %-8s %s\n", lang, translated, missing, stale, path)
	}

	fmt.Fprintln(os.Stderr)
	return nil
}

// ---------------------------------------------------------------------------
// translate
// ---------------------------------------------------------------------------

func newTranslateCmd() *cobra.Command {
	var (
		file string
		to   string

		provider string
		apiKey   string
		model    string
		baseURL  string

		overwrite bool
		offline   bool
		verbose   bool

		timeout    time.Duration
		proxy      string
		maxRetries int
	)

	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Translate the source catalog into target languages",
		Long: `Translate the source catalog into one or more target languages.

By default existing target files are merged non-destructively: values
already present in a target catalog are kept, only new keys receive the
fresh translation. Use --overwrite to retranslate everything.

Examples:
  # Translate into French and German using Google AI
  transcat translate --to fr,de --provider google --model gemini-2.5-flash

  # Retranslate from scratch, discarding prior translations
  transcat translate --to fr --provider groq --model llama-3.3-70b-versatile --overwrite

  # Local model, no API key
  transcat translate --to es --provider ollama --model llama3.2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(translateArgs{
				file: file, to: to,
				provider: provider, apiKey: apiKey, model: model, baseURL: baseURL,
				overwrite: overwrite, offline: offline, verbose: verbose,
				timeout: timeout, proxy: proxy, maxRetries: maxRetries,
			})
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Source catalog file (default: auto-detect)")
	cmd.Flags().StringVar(&to, "to", "", "Target languages (comma-separated, default: detected targets)")

	cmd.Flags().StringVar(&provider, "provider", "", "Provider: google, groq, ollama, custom-openai")
	cmd.Flags().StringVar(&model, "model", "", "Model name")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key (or TRANSCAT_API_KEY env var)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Custom API base URL")

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing translations instead of merging")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Enable detailed logging")

	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Request timeout (0 = provider default)")
	cmd.Flags().StringVar(&proxy, "proxy", "", "HTTP/HTTPS proxy URL")
	cmd.Flags().IntVar(&maxRetries, "max-retries", 3, "Maximum retries on rate limit (429)")

	// Offline pass-through translator for smoke-testing file plumbing
	cmd.Flags().BoolVar(&offline, "offline", false, "Copy source text instead of calling a provider")
	_ = cmd.Flags().MarkHidden("offline")

	_ = cmd.RegisterFlagCompletionFunc("provider", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{
			"google\tGoogle AI (Gemini) — API key required",
			"groq\tGroq — API key required",
			"ollama\tOllama local server",
			"custom-openai\tCustom OpenAI-compatible endpoint",
		}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

type translateArgs struct {
	file, to                         string
	provider, apiKey, model, baseURL string
	overwrite, offline, verbose      bool
	timeout                          time.Duration
	proxy                            string
	maxRetries                       int
}

func runTranslate(a translateArgs) error {
	proj, err := detectProject(a.file)
	if err != nil {
		return err
	}

	targets, err := resolveTargets(a.to, proj)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return fmt.Errorf("no target languages: pass --to, e.g. --to fr,de")
	}

	opts := pipeline.Options{
		SourcePath: proj.SourceFile,
		Targets:    targets,
		Overwrite:  a.overwrite,
		OnLog: func(format string, args ...any) {
			logInfo(format, args...)
		},
	}

	if a.offline {
		opts.Debug = func(s string) string { return s }
		logInfo("Offline mode: copying source text")
	} else {
		tr, err := buildTranslator(a)
		if err != nil {
			return err
		}
		opts.Translator = tr
	}

	lock, err := lockfile.Load(proj.Dir)
	if err != nil {
		return err
	}
	opts.Lock = lock

	var names []string
	for _, lang := range targets {
		names = append(names, fmt.Sprintf("%s (%s)", lang, langmeta.Native(lang)))
	}
	logInfo("Source: %s [%s]", proj.SourceFile, proj.SourceLang)
	logInfo("Translating: %s", strings.Join(names, ", "))

	// Graceful cancellation on Ctrl-C
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		logWarning("Interrupted...")
		cancel()
	}()

	if err := pipeline.Run(ctx, opts); err != nil {
		return err
	}

	if err := lock.Save(); err != nil {
		logWarning("Could not save lock file: %v", err)
	}

	logSuccess("%s", i18n.T("Translation complete!"))
	return nil
}

// detectProject resolves the catalog layout from an explicit file or by
// scanning the project root.
func detectProject(file string) (*config.Project, error) {
	if file != "" {
		return config.DetectFile(file)
	}
	return config.Detect(rootDir)
}

// resolveTargets parses and validates the --to flag, falling back to the
// detected existing targets.
func resolveTargets(to string, proj *config.Project) ([]string, error) {
	var targets []string
	if to != "" {
		for _, lang := range strings.Split(to, ",") {
			lang = strings.TrimSpace(lang)
			if lang == "" {
				continue
			}
			if _, err := language.Parse(lang); err != nil {
				return nil, fmt.Errorf("invalid language code %q: %w", lang, err)
			}
			targets = append(targets, lang)
		}
	} else {
		targets = proj.TargetLangs()
	}

	// The source language never translates into itself.
	filtered := targets[:0]
	for _, lang := range targets {
		if lang != proj.SourceLang {
			filtered = append(filtered, lang)
		}
	}
	return filtered, nil
}

// buildTranslator assembles the API translator from flags, environment,
// and the credential store.
func buildTranslator(a translateArgs) (translate.Translator, error) {
	if a.provider == "" {
		return nil, fmt.Errorf("no provider specified: use --provider (google, groq, ollama, custom-openai)")
	}
	if a.model == "" {
		return nil, fmt.Errorf("no model specified: use --model")
	}

	prov, ok := translate.DefaultProviders()[a.provider]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q", a.provider)
	}

	envCfg, err := translate.EnvDefaults()
	if err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	// Flag > environment > credential store
	key := a.apiKey
	if key == "" {
		key = envCfg.APIKey
	}
	if key == "" {
		key = settings.GetAPIKey(a.provider)
	}

	prov.APIKey = key
	prov.Model = a.model
	if a.baseURL != "" {
		prov.BaseURL = a.baseURL
	}
	if a.proxy != "" {
		prov.Proxy = a.proxy
	} else if envCfg.Proxy != "" {
		prov.Proxy = envCfg.Proxy
	}
	if a.timeout > 0 {
		prov.Timeout = a.timeout
	} else if envCfg.Timeout > 0 {
		prov.Timeout = envCfg.Timeout
	}

	if prov.BaseURL == "" {
		return nil, fmt.Errorf("provider %s needs --base-url", a.provider)
	}
	if key == "" && (a.provider == translate.ProviderGoogle || a.provider == translate.ProviderGroq) {
		return nil, fmt.Errorf("provider %s needs an API key: pass --api-key, set TRANSCAT_API_KEY, or run 'transcat auth set %s <key>'", a.provider, a.provider)
	}

	tr := translate.NewAPITranslator(prov)
	tr.Verbose = a.verbose
	if a.maxRetries > 0 {
		tr.MaxRetries = a.maxRetries
	} else if envCfg.MaxRetries > 0 {
		tr.MaxRetries = envCfg.MaxRetries
	}

	logInfo("Provider: %s, Model: %s", prov.Name, prov.Model)
	return tr, nil
}

// ---------------------------------------------------------------------------
// auth
// ---------------------------------------------------------------------------

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage provider API keys",
		Long: `Manage API keys for translation providers.

Keys are stored in ` + settings.FilePath() + ` with 0600 permissions.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "set <provider> <api-key>",
			Short: "Store an API key for a provider",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				if _, ok := translate.DefaultProviders()[args[0]]; !ok {
					return fmt.Errorf("unknown provider %q", args[0])
				}
				if err := settings.SetAPIKey(args[0], args[1]); err != nil {
					return err
				}
				logSuccess("%s", i18n.T("API key saved."))
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove <provider>",
			Short: "Remove a stored API key",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := settings.Remove(args[0]); err != nil {
					return err
				}
				logSuccess("%s", i18n.T("API key removed."))
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List providers with stored keys",
			Run: func(cmd *cobra.Command, args []string) {
				ids := settings.Providers()
				if len(ids) == 0 {
					logInfo("No stored credentials (%s)", settings.FilePath())
					return
				}
				for _, id := range ids {
					fmt.Fprintf(os.Stderr, "  %s\n", id)
				}
			},
		},
	)

	return cmd
}
