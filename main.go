// subkit — Subtitle Kit: subtitle file translator with concurrent worker pool.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/minios-linux/subkit/config"
	"github.com/minios-linux/subkit/i18n"
	"github.com/minios-linux/subkit/langmeta"
	"github.com/minios-linux/subkit/quota"
	"github.com/minios-linux/subkit/settings"
	"github.com/minios-linux/subkit/subtitle"
	"github.com/minios-linux/subkit/translate"
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
		Use:   "subkit",
		Short: "Subtitle Kit: translate subtitle files with machine translation",
		Long: `subkit — Subtitle Kit: translate SRT/WebVTT subtitle files.

Splits a subtitle file into per-cue translation units, dispatches them
through a bounded worker pool against the provider's API with retry and
rate limiting, and writes the translated file next to the source
(movie.srt -> movie.ru.srt). Ctrl-C cancels gracefully: in-flight
requests finish, already-paid-for translations are kept.

Commands:
  status      Show detected subtitle files and quota usage
  translate   Translate subtitle files
  auth        Manage provider credentials
  languages   List supported languages

Providers:
  deepl       DeepL API (free and pro keys, auto-detected)
  openai      OpenAI-compatible chat endpoint (api.openai.com, Ollama, vLLM)`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global persistent flag — inherited by all subcommands
	root.PersistentFlags().StringVar(&rootDir, "root", ".", "Project root directory")

	root.AddCommand(
		newStatusCmd(),
		newTranslateCmd(),
		newAuthCmd(),
		newLanguagesCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version (display version information)
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("subkit version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}

	return cmd
}

// ---------------------------------------------------------------------------
// status (read-only: project info + quota)
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show detected subtitle files and quota usage",
		Long: `Show auto-detected subtitle files, their languages, missing
translations, and the local character-quota ledger. Does not modify any
files. With --remote, also queries the provider's usage endpoint.`,
		Run: func(cmd *cobra.Command, args []string) {
			runStatus(remote)
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "Also query the provider's usage endpoint")

	return cmd
}

func runStatus(remote bool) {
	proj := config.Detect(rootDir)

	fmt.Fprintf(os.Stderr, "\n%s%s%s\n", colorBlue, i18n.T("Project"), colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	fmt.Fprintf(os.Stderr, "  Name:       %s\n", proj.Name)
	fmt.Fprintf(os.Stderr, "  Root:       %s\n", proj.Root)
	fmt.Fprintf(os.Stderr, "  Source:     %s\n", langDisplay(proj.SourceLang))
	if len(proj.Languages) > 0 {
		fmt.Fprintf(os.Stderr, "  Languages:  %s\n", strings.Join(proj.Languages, ", "))
	}

	sf, err := config.LoadSubkitFile(rootDir)
	if err != nil {
		logError("%v", err)
	} else if sf != nil {
		fmt.Fprintf(os.Stderr, "  Config:     %s (%d target(s))\n", config.SubkitFileName, len(sf.Targets))
	}

	fmt.Fprintf(os.Stderr, "\n%s%s%s\n", colorBlue, i18n.T("Subtitle files"), colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	if len(proj.Files) == 0 {
		fmt.Fprintln(os.Stderr, "  (none found)")
	}
	for _, f := range proj.Files {
		cues, _, err := subtitle.DecodeFile(f.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %-40s %s%v%s\n", relPath(proj.Root, f.Path), colorRed, err, colorReset)
			continue
		}
		lang := f.Lang
		if lang == "" {
			lang = proj.SourceLang
		}
		line := fmt.Sprintf("  %-40s %-5s %4d cue(s), %d chars",
			relPath(proj.Root, f.Path), lang, len(cues), subtitle.SourceChars(cues))
		if missing := proj.Missing(f.Base, proj.Languages); f.Lang == "" && len(missing) > 0 {
			line += fmt.Sprintf("  %smissing: %s%s", colorYellow, strings.Join(missing, ", "), colorReset)
		}
		fmt.Fprintln(os.Stderr, line)
	}

	fmt.Fprintf(os.Stderr, "\n%s%s%s\n", colorBlue, i18n.T("Character quota"), colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	ledger, err := quota.Load()
	if err != nil {
		logError("Reading quota ledger: %v", err)
	} else {
		fmt.Fprintf(os.Stderr, "  Local ledger:  %s\n", ledger.Summary(quota.DefaultLimit))
	}

	if remote {
		showRemoteUsage()
	}
	fmt.Fprintln(os.Stderr)
}

// showRemoteUsage queries DeepL's /v2/usage endpoint for the
// authoritative quota consumption.
func showRemoteUsage() {
	key := settings.ResolveAPIKey(translate.ProviderDeepL, "")
	if key == "" {
		fmt.Fprintf(os.Stderr, "  Remote usage:  %snot available (no DeepL key)%s\n", colorYellow, colorReset)
		return
	}

	prov, _ := translate.ResolveProvider(translate.ProviderDeepL)
	prov.APIKey = key
	client := translate.NewDeepLClient(prov)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	count, limit, err := client.Usage(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  Remote usage:  %s%v%s\n", colorRed, err, colorReset)
		return
	}
	pct := 0.0
	if limit > 0 {
		pct = float64(count) / float64(limit) * 100
	}
	fmt.Fprintf(os.Stderr, "  Remote usage:  %d / %d characters used (%.1f%%)\n", count, limit, pct)
}

// ---------------------------------------------------------------------------
// languages (supported language table)
// ---------------------------------------------------------------------------

func newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List supported languages",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(os.Stderr, "\n%s%s%s\n", colorBlue, i18n.T("Supported languages"), colorReset)
			fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
			for _, code := range langmeta.Supported() {
				m := langmeta.Resolve(code)
				api, _ := langmeta.APICode(code)
				fmt.Fprintf(os.Stderr, "  %-7s %s %-24s (API: %s)\n", code, m.Flag, m.Name, api)
			}
			fmt.Fprintln(os.Stderr)
		},
	}
}

// ---------------------------------------------------------------------------
// translate
// ---------------------------------------------------------------------------

func newTranslateCmd() *cobra.Command {
	var a translateArgs

	cmd := &cobra.Command{
		Use:   "translate [file...]",
		Short: "Translate subtitle files",
		Long: `Translate subtitle files using a machine translation provider.

Without file arguments, targets come from .subkit.yaml when present, or
from auto-detection: untagged subtitle files in the project root and a
subtitles/ subdirectory are treated as sources, language-tagged siblings
(movie.ru.srt) as existing translations.

Each (file, language) pair runs as one job: cues are dispatched to a
bounded worker pool, throttled by a shared rate limiter, retried on
transient provider failures, and reassembled in original order. Ctrl-C
cancels gracefully: in-flight requests finish and their translations
are kept; a second Ctrl-C aborts immediately.

Examples:
  # Translate movie.srt into Russian and German with DeepL
  subkit translate movie.srt --to ru,de

  # Translate everything the project detection finds
  subkit translate --to ru

  # Use a local Ollama server instead of DeepL
  subkit translate movie.srt --to fr --provider openai \
      --base-url http://localhost:11434/v1 --model llama3.2`,
		Run: func(cmd *cobra.Command, args []string) {
			a.files = args
			runTranslate(a)
		},
	}

	// Language selection
	cmd.Flags().StringVar(&a.from, "from", "", "Source language (default: from file name tag, else en)")
	cmd.Flags().StringVar(&a.to, "to", "", "Target languages, comma-separated (default: detected project languages)")

	// Provider selection
	cmd.Flags().StringVar(&a.provider, "provider", translate.ProviderDeepL, "Translation provider: deepl, openai")
	cmd.Flags().StringVar(&a.apiKey, "api-key", "", "API key (or SUBKIT_API_KEY / DEEPL_API_KEY / OPENAI_API_KEY env var)")
	cmd.Flags().StringVar(&a.baseURL, "base-url", "", "Custom API base URL")
	cmd.Flags().StringVar(&a.model, "model", "", "Model name (openai provider)")

	// Pipeline tuning
	cmd.Flags().IntVar(&a.workers, "workers", 4, "Parallel translation workers per job")
	cmd.Flags().IntVar(&a.maxAttempts, "max-attempts", 3, "Attempts per cue on transient failures")
	cmd.Flags().Float64Var(&a.rps, "rps", 10, "Outbound requests per second, shared by all workers")
	cmd.Flags().IntVar(&a.burst, "burst", 5, "Rate limiter burst size")
	cmd.Flags().DurationVar(&a.timeout, "timeout", 0, "Per-request timeout (0 = provider default)")

	// Output
	cmd.Flags().StringVar(&a.outDir, "output", "", "Output directory (default: alongside the source file)")
	cmd.Flags().BoolVar(&a.overwrite, "overwrite", false, "Overwrite existing translation files")

	cmd.Flags().BoolVar(&a.dryRun, "dry-run", false, "Show what would be translated without calling the provider")
	cmd.Flags().BoolVar(&a.verbose, "verbose", false, "Enable detailed logging")

	_ = cmd.RegisterFlagCompletionFunc("provider", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{
			"deepl\tDeepL API (free and pro keys)",
			"openai\tOpenAI-compatible chat endpoint",
		}, cobra.ShellCompDirectiveNoFileComp
	})

	_ = cmd.RegisterFlagCompletionFunc("to", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return langmeta.Supported(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

type translateArgs struct {
	files []string

	from, to string

	provider, apiKey, baseURL, model string

	workers, maxAttempts int
	rps                  float64
	burst                int
	timeout              time.Duration

	outDir    string
	overwrite bool

	dryRun, verbose bool
}

// task is one (file, target language) translation job.
type task struct {
	label   string
	path    string
	outPath string
	srcLang string
	dstLang string
	cues    []subtitle.Cue
	codec   subtitle.Codec
}

func runTranslate(a translateArgs) {
	prov, err := resolveProvider(a)
	if err != nil {
		logError("%v", err)
		os.Exit(1)
	}

	tasks, err := collectTasks(a)
	if err != nil {
		logError("%v", err)
		os.Exit(1)
	}
	if len(tasks) == 0 {
		logSuccess("%s", i18n.T("Nothing to translate"))
		return
	}

	totalChars := 0
	for _, t := range tasks {
		totalChars += subtitle.SourceChars(t.cues)
	}

	if a.dryRun {
		for _, t := range tasks {
			logInfo("%s: %d cue(s), %d chars -> %s", t.label, len(t.cues),
				subtitle.SourceChars(t.cues), relPath(".", t.outPath))
		}
		logInfo("Total: %d task(s), %d source characters", len(tasks), totalChars)
		return
	}

	logInfo("Provider: %s, %d worker(s), %d task(s)", prov.Name, a.workers, len(tasks))

	// Local quota ledger (DeepL's free tier is character-metered)
	var ledger *quota.File
	if prov.ID == translate.ProviderDeepL {
		ledger, err = quota.Load()
		if err != nil {
			logWarning("Quota ledger unavailable: %v", err)
		} else if ledger.Exceeded(quota.DefaultLimit, int64(totalChars)) {
			used, remaining := ledger.Stats(quota.DefaultLimit)
			logWarning("This run submits ~%d characters but only %d of %d remain this month (used %d)",
				totalChars, remaining, quota.DefaultLimit, used)
		}
	}

	client := translate.NewClient(prov)

	// The credential check happens inside translate.Start; endpoints
	// that need no key (local OpenAI-compatible servers) skip it.
	var creds translate.Credentials
	if providerNeedsKey(prov) {
		creds = translate.StaticKey(prov.APIKey)
	}

	// First Ctrl-C cancels the running job gracefully, a second aborts.
	var (
		jobMu       sync.Mutex
		currentJob  *translate.Job
		interrupted atomic.Bool
	)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		interrupted.Store(true)
		logWarning("Interrupted, letting in-flight requests finish (Ctrl-C again to abort)")
		jobMu.Lock()
		if currentJob != nil {
			currentJob.Cancel()
		}
		jobMu.Unlock()
		<-sigCh
		os.Exit(130)
	}()

	exitCode := 0
	allTranslated := true
	for _, t := range tasks {
		if interrupted.Load() {
			allTranslated = false
			break
		}

		opts := translate.Options{
			Client:      client,
			Credentials: creds,
			Workers:     a.workers,
			MaxAttempts: a.maxAttempts,
			RPS:         a.rps,
			Burst:       a.burst,
			Timeout:     a.timeout,
			OnProgress: func(done, total int) {
				pct := 0
				if total > 0 {
					pct = done * 100 / total
				}
				fmt.Fprintf(os.Stderr, "\r  %-24s %s %d/%d", t.label, progressBar(pct, 30), done, total)
			},
		}
		if a.verbose {
			opts.OnLog = func(format string, args ...any) {
				fmt.Fprint(os.Stderr, "\r\033[K")
				logInfo(format, args...)
			}
			opts.OnError = func(format string, args ...any) {
				fmt.Fprint(os.Stderr, "\r\033[K")
				logError(format, args...)
			}
		}

		job, err := translate.Start(context.Background(), t.cues, t.srcLang, t.dstLang, opts)
		if err != nil {
			logError("%s: %v", t.label, err)
			exitCode = 1
			allTranslated = false
			break
		}

		jobMu.Lock()
		currentJob = job
		jobMu.Unlock()

		summary, waitErr := job.Wait(context.Background())
		fmt.Fprintln(os.Stderr)

		jobMu.Lock()
		currentJob = nil
		jobMu.Unlock()

		if waitErr != nil {
			logError("%s: %v", t.label, waitErr)
			exitCode = 1
			allTranslated = false
			continue
		}

		if ledger != nil {
			ledger.Add(succeededSourceChars(t.cues, job.Results()))
		}

		if summary.Succeeded == 0 {
			logError("%s: %s, output not written", t.label, summary)
			exitCode = 1
			allTranslated = false
			continue
		}

		if err := subtitle.WriteFile(t.outPath, job.Output(), t.codec); err != nil {
			logError("%s: %v", t.label, err)
			exitCode = 1
			allTranslated = false
			continue
		}

		switch summary.Status {
		case translate.StatusSuccess:
			logSuccess("%s: %s -> %s", t.label, summary, relPath(".", t.outPath))
		default:
			logWarning("%s: %s -> %s (untranslated cues keep the source text)",
				t.label, summary, relPath(".", t.outPath))
			allTranslated = false
		}
	}

	if ledger != nil {
		if err := ledger.Save(); err != nil {
			logWarning("Saving quota ledger: %v", err)
		}
	}

	if interrupted.Load() {
		logWarning("Translation interrupted, partial progress saved")
		os.Exit(exitCode)
	}
	if allTranslated {
		logSuccess("%s", i18n.T("Translation complete!"))
	}
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

// resolveProvider builds the provider configuration from flags, the
// environment, and the credential store.
func resolveProvider(a translateArgs) (translate.Provider, error) {
	prov, err := translate.ResolveProvider(a.provider)
	if err != nil {
		return translate.Provider{}, err
	}

	prov.APIKey = settings.ResolveAPIKey(prov.ID, a.apiKey)

	if a.baseURL != "" {
		prov.BaseURL = a.baseURL
	} else if stored := settings.GetBaseURL(prov.ID); stored != "" {
		prov.BaseURL = stored
	}
	if a.model != "" {
		prov.Model = a.model
	}
	if a.timeout > 0 {
		prov.Timeout = a.timeout
	}

	if providerNeedsKey(prov) && prov.APIKey == "" {
		return translate.Provider{}, fmt.Errorf(
			"no API key for provider %q: pass --api-key, set %s, or run 'subkit auth login --provider %s'",
			prov.ID, settings.EnvVarForProvider(prov.ID), prov.ID)
	}

	return prov, nil
}

// providerNeedsKey reports whether a provider configuration requires an
// API key. Self-hosted OpenAI-compatible endpoints don't.
func providerNeedsKey(prov translate.Provider) bool {
	if prov.ID == translate.ProviderDeepL {
		return true
	}
	return strings.Contains(prov.BaseURL, "api.openai.com")
}

// collectTasks resolves the (file, language) pairs to translate, in
// order: explicit file arguments, .subkit.yaml targets, auto-detection.
func collectTasks(a translateArgs) ([]task, error) {
	flagLangs, err := parseLangs(a.to)
	if err != nil {
		return nil, err
	}

	if len(a.files) > 0 {
		return tasksFromFiles(a, flagLangs)
	}

	sf, err := config.LoadSubkitFile(rootDir)
	if err != nil {
		return nil, err
	}
	if sf != nil {
		return tasksFromSubkitFile(a, sf, flagLangs)
	}

	return tasksFromDetection(a, flagLangs)
}

func tasksFromFiles(a translateArgs, flagLangs []string) ([]task, error) {
	if len(flagLangs) == 0 {
		return nil, fmt.Errorf("no target languages: pass --to, e.g. --to ru,de")
	}

	var tasks []task
	for _, path := range a.files {
		cues, codec, err := subtitle.DecodeFile(path)
		if err != nil {
			return nil, err
		}
		base, fileLang := config.SplitLangTag(filepath.Base(path))
		srcLang := sourceLang(a.from, fileLang)
		src := config.SubtitleFile{Path: path, Base: base, Lang: fileLang}

		for _, lang := range flagLangs {
			if lang == srcLang {
				continue
			}
			outPath := config.OutputPath(src, lang, a.outDir)
			if !a.overwrite && fileExists(outPath) {
				logInfo("%s: %s translation exists, skipping (use --overwrite)", filepath.Base(path), lang)
				continue
			}
			tasks = append(tasks, task{
				label:   base + " -> " + lang,
				path:    path,
				outPath: outPath,
				srcLang: srcLang,
				dstLang: lang,
				cues:    cues,
				codec:   codec,
			})
		}
	}
	return tasks, nil
}

func tasksFromSubkitFile(a translateArgs, sf *config.SubkitFile, flagLangs []string) ([]task, error) {
	resolved, err := sf.Resolve(rootDir)
	if err != nil {
		return nil, err
	}

	var tasks []task
	for _, rt := range resolved {
		langs := rt.Languages
		if len(flagLangs) > 0 {
			langs = intersectLanguages(langs, flagLangs)
		}
		if len(langs) == 0 {
			logWarning("target %q: no languages to translate", rt.Target.Name)
			continue
		}

		cues, codec, err := subtitle.DecodeFile(rt.AbsPath)
		if err != nil {
			return nil, fmt.Errorf("target %q: %w", rt.Target.Name, err)
		}
		srcLang := sourceLang(a.from, rt.Target.SourceLang)

		for _, lang := range langs {
			if lang == srcLang {
				continue
			}
			outPath := rt.OutputPath(lang)
			if !a.overwrite && fileExists(outPath) {
				logInfo("%s: %s translation exists, skipping (use --overwrite)", rt.Target.Name, lang)
				continue
			}
			tasks = append(tasks, task{
				label:   rt.Target.Name + " -> " + lang,
				path:    rt.AbsPath,
				outPath: outPath,
				srcLang: srcLang,
				dstLang: lang,
				cues:    cues,
				codec:   codec,
			})
		}
	}
	return tasks, nil
}

func tasksFromDetection(a translateArgs, flagLangs []string) ([]task, error) {
	proj := config.Detect(rootDir)
	if a.from != "" {
		proj.SourceLang = langmeta.Normalize(a.from)
	}

	langs := flagLangs
	if len(langs) == 0 {
		langs = filterOutLang(proj.Languages, proj.SourceLang)
	}
	if len(langs) == 0 {
		return nil, fmt.Errorf("no target languages: pass --to, e.g. --to ru,de")
	}

	sources := proj.Sources()
	if len(sources) == 0 {
		return nil, fmt.Errorf("no subtitle files found in %s (looked for: %s)",
			proj.Root, strings.Join(subtitle.Formats(), ", "))
	}

	var tasks []task
	for _, src := range sources {
		cues, codec, err := subtitle.DecodeFile(src.Path)
		if err != nil {
			return nil, err
		}
		for _, lang := range langs {
			if lang == proj.SourceLang {
				continue
			}
			outPath := config.OutputPath(src, lang, a.outDir)
			if !a.overwrite && (proj.HasTranslation(src.Base, lang) || fileExists(outPath)) {
				logInfo("%s: %s translation exists, skipping (use --overwrite)", src.Base, lang)
				continue
			}
			tasks = append(tasks, task{
				label:   src.Base + " -> " + lang,
				path:    src.Path,
				outPath: outPath,
				srcLang: proj.SourceLang,
				dstLang: lang,
				cues:    cues,
				codec:   codec,
			})
		}
	}
	return tasks, nil
}

// ---------------------------------------------------------------------------
// auth (credential management)
// ---------------------------------------------------------------------------

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage provider credentials",
		Long: `Manage API keys for translation providers.

Keys are stored in the subkit data directory with 0600 permissions.

Lookup order at translation time:
  1. --api-key flag
  2. SUBKIT_API_KEY environment variable
  3. Provider environment variable (DEEPL_API_KEY, OPENAI_API_KEY)
  4. The credential store

Examples:
  subkit auth login --provider deepl       Store a DeepL key
  subkit auth login --provider openai      Store an OpenAI key + endpoint
  subkit auth logout --provider deepl      Remove the DeepL key
  subkit auth logout                       Remove all credentials
  subkit auth list                         Show stored credentials`,
	}

	cmd.AddCommand(
		newAuthLoginCmd(),
		newAuthLogoutCmd(),
		newAuthListCmd(),
	)

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an API key for a provider",
		Run: func(cmd *cobra.Command, args []string) {
			switch provider {
			case translate.ProviderDeepL:
				authLoginAPIKey(translate.ProviderDeepL, "DeepL",
					"https://www.deepl.com/your-account/keys",
					"subkit translate movie.srt --to ru")
			case translate.ProviderOpenAI:
				authLoginOpenAI()
			default:
				logError("Unknown provider %q (valid: %s)", provider,
					strings.Join(translate.ProviderIDs(), ", "))
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVar(&provider, "provider", translate.ProviderDeepL, "Provider to authenticate: deepl, openai")

	return cmd
}

func authLoginAPIKey(providerID, name, helpURL, example string) {
	fmt.Fprintf(os.Stderr, "\n%s%s — API Key Setup%s\n", colorBlue, name, colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	fmt.Fprintln(os.Stderr)

	if helpURL != "" {
		fmt.Fprintf(os.Stderr, "  Get your API key from: %s%s%s\n\n", colorGreen, helpURL, colorReset)
	}

	existing, _ := settings.GetAPIKey(providerID)
	if existing != "" {
		fmt.Fprintf(os.Stderr, "  Current key: %s%s%s\n", colorYellow, settings.MaskKey(existing), colorReset)
		fmt.Fprintf(os.Stderr, "  Enter new key to replace, or press Enter to keep: ")
	} else {
		fmt.Fprintf(os.Stderr, "  Enter API key: ")
	}

	key := readLine()
	if key == "" {
		if existing != "" {
			logInfo("Keeping existing key")
			return
		}
		logError("No API key provided")
		os.Exit(1)
	}

	if err := settings.SetAPIKey(providerID, key); err != nil {
		logError("Failed to save API key: %v", err)
		os.Exit(1)
	}

	logSuccess("%s API key saved!", name)
	fmt.Fprintf(os.Stderr, "\n  You can now use: %s\n\n", example)
}

func authLoginOpenAI() {
	fmt.Fprintf(os.Stderr, "\n%sOpenAI-Compatible Endpoint%s\n", colorBlue, colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	fmt.Fprintln(os.Stderr)

	existing := settings.Get(translate.ProviderOpenAI)

	if existing != nil && existing.BaseURL != "" {
		fmt.Fprintf(os.Stderr, "  Current endpoint: %s%s%s\n", colorYellow, existing.BaseURL, colorReset)
		fmt.Fprintf(os.Stderr, "  Enter new endpoint URL, or press Enter to keep: ")
	} else {
		fmt.Fprintf(os.Stderr, "  Enter endpoint URL (Enter for https://api.openai.com/v1): ")
	}
	baseURL := readLine()
	if baseURL == "" && existing != nil {
		baseURL = existing.BaseURL
	}

	if existing != nil && existing.Key != "" {
		fmt.Fprintf(os.Stderr, "  Current key: %s%s%s\n", colorYellow, settings.MaskKey(existing.Key), colorReset)
		fmt.Fprintf(os.Stderr, "  Enter new API key, or press Enter to keep: ")
	} else {
		fmt.Fprintf(os.Stderr, "  Enter API key (or press Enter if not required): ")
	}
	key := readLine()
	if key == "" && existing != nil {
		key = existing.Key
	}

	if err := settings.SetAPIKeyWithBaseURL(translate.ProviderOpenAI, key, baseURL); err != nil {
		logError("Failed to save credentials: %v", err)
		os.Exit(1)
	}

	logSuccess("OpenAI endpoint saved!")
	fmt.Fprintf(os.Stderr, "\n  You can now use: subkit translate movie.srt --to ru --provider openai\n\n")
}

func newAuthLogoutCmd() *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove stored credentials",
		Long: `Remove stored credentials for one or all providers.

If --provider is not specified, credentials for ALL providers are removed.`,
		Run: func(cmd *cobra.Command, args []string) {
			if provider != "" {
				if _, err := translate.ResolveProvider(provider); err != nil {
					logError("%v", err)
					os.Exit(1)
				}
				if err := settings.Remove(provider); err != nil {
					logError("Failed to remove %s credentials: %v", provider, err)
					os.Exit(1)
				}
				logSuccess("%s credentials removed", provider)
				return
			}

			if err := settings.RemoveAll(); err != nil {
				logError("Failed to remove credentials: %v", err)
				os.Exit(1)
			}
			logSuccess("All stored credentials removed")
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Provider to logout (default: all)")

	return cmd
}

func newAuthListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show stored credentials and status",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(os.Stderr, "\n%s%s%s\n", colorBlue, i18n.T("Stored credentials"), colorReset)
			fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))

			for _, id := range translate.ProviderIDs() {
				entry := settings.Get(id)
				switch {
				case entry != nil && entry.Key != "":
					status := fmt.Sprintf("%sconfigured%s (key: %s)", colorGreen, colorReset, settings.MaskKey(entry.Key))
					if entry.BaseURL != "" {
						status += fmt.Sprintf("\n  %14s endpoint: %s", "", entry.BaseURL)
					}
					fmt.Fprintf(os.Stderr, "  %-14s %s\n", id, status)
				case entry != nil && entry.BaseURL != "":
					fmt.Fprintf(os.Stderr, "  %-14s %sconfigured%s (no key)\n  %14s endpoint: %s\n",
						id, colorGreen, colorReset, "", entry.BaseURL)
				default:
					fmt.Fprintf(os.Stderr, "  %-14s %snot configured%s\n", id, colorRed, colorReset)
				}
			}

			fmt.Fprintf(os.Stderr, "\n  %sEnvironment Variables%s\n", colorYellow, colorReset)
			envs := []string{"SUBKIT_API_KEY"}
			for _, id := range translate.ProviderIDs() {
				if env := settings.EnvVarForProvider(id); env != "" {
					envs = append(envs, env)
				}
			}
			for _, env := range envs {
				if val := os.Getenv(env); val != "" {
					fmt.Fprintf(os.Stderr, "  %-15s %s%s%s\n", env+":", colorGreen, settings.MaskKey(val), colorReset)
				} else {
					fmt.Fprintf(os.Stderr, "  %-15s %snot set%s\n", env+":", colorRed, colorReset)
				}
			}
			fmt.Fprintln(os.Stderr)
		},
	}
}

// ---------------------------------------------------------------------------
// Shared helpers
// ---------------------------------------------------------------------------

// progressBar renders a colored bar: red when barely started, yellow in
// the middle, green when done. percent is clamped to [0, 100].
func progressBar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	filled := percent * width / 100
	color := colorYellow
	switch {
	case percent >= 100:
		color = colorGreen
	case percent < 34:
		color = colorRed
	}

	return color + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) +
		colorReset + fmt.Sprintf(" %3d%%", percent)
}

// parseLangs splits a comma-separated language list and validates every
// code against the language registry.
func parseLangs(list string) ([]string, error) {
	if strings.TrimSpace(list) == "" {
		return nil, nil
	}
	var langs []string
	for _, part := range strings.Split(list, ",") {
		code := langmeta.Normalize(part)
		if code == "" {
			continue
		}
		if !langmeta.IsSupported(code) {
			return nil, fmt.Errorf("unknown language %q (see 'subkit languages')", strings.TrimSpace(part))
		}
		langs = append(langs, code)
	}
	return langs, nil
}

// sourceLang picks the job source language: explicit flag first, then
// the language inferred from context, then English.
func sourceLang(flag, inferred string) string {
	if flag != "" {
		return langmeta.Normalize(flag)
	}
	if inferred != "" {
		return inferred
	}
	return "en"
}

// intersectLanguages keeps the languages of available that also appear
// in filter, preserving available's order.
func intersectLanguages(available, filter []string) []string {
	want := make(map[string]bool, len(filter))
	for _, lang := range filter {
		want[strings.TrimSpace(lang)] = true
	}
	var out []string
	for _, lang := range available {
		if want[lang] {
			out = append(out, lang)
		}
	}
	return out
}

// filterOutLang returns langs without every occurrence of lang.
func filterOutLang(langs []string, lang string) []string {
	var out []string
	for _, l := range langs {
		if l != lang {
			out = append(out, l)
		}
	}
	return out
}

// succeededSourceChars counts the source characters of cues whose unit
// was translated. This is what the provider billed for.
func succeededSourceChars(cues []subtitle.Cue, results map[int]translate.UnitResult) int64 {
	var n int64
	for _, c := range cues {
		if res, ok := results[c.Index]; ok && res.Err == nil {
			n += int64(utf8.RuneCountInString(c.Text))
		}
	}
	return n
}

// langDisplay formats a language code with its native name.
func langDisplay(code string) string {
	m := langmeta.Resolve(code)
	if m.Name == code {
		return code
	}
	return fmt.Sprintf("%s (%s)", code, m.Name)
}

// relPath shortens path relative to base for display, falling back to
// the full path.
func relPath(base, path string) string {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return path
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(absBase, absPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

// fileExists returns true if path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func readLine() string {
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(scanner.Text())
}
