// reskit — Resource Kit: .resx resource file manager for localized string families.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/minios-linux/reskit/config"
	"github.com/minios-linux/reskit/discovery"
	"github.com/minios-linux/reskit/i18n"
	"github.com/minios-linux/reskit/langconfig"
	"github.com/minios-linux/reskit/prompt"
	"github.com/minios-linux/reskit/resx"
	"github.com/minios-linux/reskit/syncstate"
	"github.com/minios-linux/reskit/updater"
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
// Global flags
// ---------------------------------------------------------------------------

var (
	rootDir string
	verbose bool
)

// ---------------------------------------------------------------------------
// Toolchain
// ---------------------------------------------------------------------------

// toolchain bundles the collaborators every command needs, built from the
// project root and its optional .reskit.yaml.
type toolchain struct {
	finder   *discovery.Finder
	resolver *langconfig.Resolver
	store    *resx.Store
	orch     *updater.Orchestrator
}

func newToolchain() (*toolchain, error) {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	cf, err := config.Load(rootDir)
	if err != nil {
		return nil, err
	}

	var dopts discovery.Options
	var lopts langconfig.Options
	if cf != nil {
		dopts.Extension = cf.ResourceExt
		dopts.CultureLiterals = cf.Cultures
		lopts.Names = cf.Languages
		lopts.FallbackPrimary = cf.Primary
		lopts.FallbackSecondary = cf.Secondary
	}

	finder := discovery.NewFinder(rootDir, &dopts)
	resolver := langconfig.NewResolver(&lopts)
	store := resx.NewStore(log)

	return &toolchain{
		finder:   finder,
		resolver: resolver,
		store:    store,
		orch:     updater.New(finder, resolver, store, nil, log),
	}, nil
}

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "reskit",
		Short: "Resource Kit: .resx resource file manager",
		Long: `reskit — Resource Kit: manager for .resx resource file families.

A family is a base file (Strings.resx) plus its culture-tagged siblings
(Strings.de.resx, Strings.fr.resx). reskit discovers families, resolves
which languages they carry, and adds new keys to every file of a family
in one step, with automatic backups.

Commands:
  status    Show discovered families and their language configuration
  add       Add a key to a resource family
  check     Check whether a key exists in a family
  keys      List all keys of a family`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global persistent flags — inherited by all subcommands
	root.PersistentFlags().StringVar(&rootDir, "root", ".", "Project root directory")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	root.AddCommand(
		newStatusCmd(),
		newAddCmd(),
		newCheckCmd(),
		newKeysCmd(),
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
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("reskit version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}
}

// ---------------------------------------------------------------------------
// status (read-only: families + language configuration)
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show discovered families and their language configuration",
		Long: `Scan the project root for resource files, group them into families,
and show the resolved language pair of each family. Does not modify
any files.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tc, err := newToolchain()
			if err != nil {
				return err
			}
			runStatus(tc)
			return nil
		},
	}
}

func runStatus(tc *toolchain) {
	absRoot, _ := filepath.Abs(rootDir)
	fmt.Fprintf(os.Stderr, "\n%sProject%s\n", colorBlue, colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	fmt.Fprintf(os.Stderr, "  Root:       %s\n", absRoot)

	families := tc.finder.Families()
	if len(families) == 0 {
		logInfo("%s", i18n.T("No resource files found"))
		return
	}
	fmt.Fprintf(os.Stderr, "  Families:   "+i18n.N("%d family", "%d families", len(families))+"\n\n", len(families))

	state, err := syncstate.Load(rootDir)
	if err != nil {
		logWarning("%v", err)
		state = nil
	}
	if state != nil {
		if pruneSyncState(state, families) > 0 {
			if err := state.Save(); err != nil {
				logWarning("%v", err)
			}
		}
		if verbose {
			logInfo("sync state: %s", state.Summary())
		}
	}

	for _, base := range families {
		files := tc.finder.FindFiles(base)
		cfg := tc.resolver.Resolve(files)
		line := familyLine(base, files, cfg)
		if n := pendingCount(tc, state, base); n > 0 {
			line += fmt.Sprintf(", %d pending", n)
		}
		fmt.Fprintln(os.Stderr, "  "+line)
	}
	fmt.Fprintln(os.Stderr)
}

// pruneSyncState drops tracked families that no longer exist on disk and
// returns how many were removed.
func pruneSyncState(state *syncstate.File, families []string) int {
	present := make(map[string]bool, len(families))
	for _, f := range families {
		present[f] = true
	}
	removed := 0
	for _, name := range state.FamilyNames() {
		if !present[name] {
			state.RemoveFamily(name)
			removed++
		}
	}
	return removed
}

// pendingCount reports how many keys of the family's default file are
// new or changed since the last recorded sync.
func pendingCount(tc *toolchain, state *syncstate.File, base string) int {
	if state == nil {
		return 0
	}
	// A project that never recorded a sync has nothing to compare against.
	if families, _ := state.Stats(); families == 0 {
		return 0
	}
	def := tc.finder.FindDefaultFile(base)
	if def == nil {
		return 0
	}
	doc, err := resx.ParseFile(def.Path)
	if err != nil {
		return 0
	}
	return len(state.Pending(base, doc.Values()))
}

// familyLine renders one status row, e.g.
// "Strings: 2 files, English/German" or "Labels: 1 file, English (single file)".
func familyLine(base string, files []discovery.Descriptor, cfg langconfig.Config) string {
	count := fmt.Sprintf(i18n.N("%d file", "%d files", len(files)), len(files))
	langs := cfg.PrimaryDisplayName + "/" + cfg.SecondaryDisplayName
	if !cfg.HasMultipleLanguages {
		langs = cfg.PrimaryDisplayName + " (single file)"
	}
	return fmt.Sprintf("%s: %s, %s", base, count, langs)
}

// ---------------------------------------------------------------------------
// add (write: new key across a family)
// ---------------------------------------------------------------------------

func newAddCmd() *cobra.Command {
	var (
		primaryValue   string
		secondaryValue string
		className      string
	)

	cmd := &cobra.Command{
		Use:   "add <base-name> [key]",
		Short: "Add a key to a resource family",
		Long: `Add a new key to every file of a resource family.

With two files, the primary value goes into the base file and the
secondary value into the culture-tagged sibling. With a single file,
the secondary value is stored as the entry's comment. Missing values
are collected interactively. Every modified file gets a timestamped
backup first.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tc, err := newToolchain()
			if err != nil {
				return err
			}
			key := ""
			if len(args) > 1 {
				key = args[1]
			}
			ctx, stop := cancelOnInterrupt(cmd.Context())
			defer stop()
			return runAdd(ctx, tc, args[0], key, primaryValue, secondaryValue, className)
		},
	}

	cmd.Flags().StringVar(&primaryValue, "value", "", "Primary language value (skips the prompt)")
	cmd.Flags().StringVar(&secondaryValue, "secondary", "", "Secondary language value")
	cmd.Flags().StringVar(&className, "class", "", "Look the family up by its generated accessor class name")

	return cmd
}

func runAdd(ctx context.Context, tc *toolchain, baseName, key, primaryValue, secondaryValue, className string) error {
	if className != "" {
		files := tc.finder.FindFilesByGeneratedClassName(className)
		if len(files) > 0 {
			baseName = files[0].BaseName
		}
	}

	files := tc.finder.FindFiles(baseName)
	cfg := tc.resolver.Resolve(files)

	if key != "" && !resx.ValidKey(key) {
		return fmt.Errorf("%s: %q", i18n.T("Invalid resource key"), key)
	}

	// Collect missing values interactively; the flag path skips survey.
	if key == "" || primaryValue == "" {
		var p prompt.Prompter = prompt.SurveyPrompter{}
		res, err := p.Collect(prompt.Request{
			Key:            key,
			PrimaryLabel:   tc.resolver.TranslationLabel(cfg.PrimaryLanguage),
			SecondaryLabel: tc.resolver.TranslationLabel(cfg.SecondaryLanguage),
		})
		if err != nil {
			return err
		}
		key = res.Key
		if primaryValue == "" {
			primaryValue = res.PrimaryValue
		}
		if secondaryValue == "" {
			secondaryValue = res.SecondaryValue
		}
	}

	if tc.finder.KeyExists(baseName, key) {
		return fmt.Errorf("%s: %q", i18n.T("Resource key already exists"), key)
	}

	if !tc.orch.AddKey(ctx, baseName, key, primaryValue, secondaryValue) {
		return fmt.Errorf("%s: %s/%s", i18n.T("Update failed"), baseName, key)
	}

	// Record the primary value so status doesn't report the fresh key as
	// pending. Best-effort; a failed recording never fails the add.
	if secondaryValue != "" {
		if state, err := syncstate.Load(rootDir); err == nil {
			state.Record(baseName, key, primaryValue)
			if err := state.Save(); err != nil {
				logWarning("%v", err)
			}
		}
	}

	logSuccess("%s: %s/%s", i18n.T("Key added"), baseName, key)
	return nil
}

// ---------------------------------------------------------------------------
// check (read-only: key presence)
// ---------------------------------------------------------------------------

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <base-name> <key>",
		Short: "Check whether a key exists in a family",
		Long: `Report whether any file of the family already defines the key.
The lookup is case-insensitive. Exits non-zero when the key is absent.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tc, err := newToolchain()
			if err != nil {
				return err
			}
			if !tc.finder.KeyExists(args[0], args[1]) {
				return fmt.Errorf("key %q not found in family %q", args[1], args[0])
			}
			logInfo("key %q exists in family %q", args[1], args[0])
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// keys (read-only: key listing)
// ---------------------------------------------------------------------------

func newKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys <base-name>",
		Short: "List all keys of a family",
		Long:  `Print the union of keys across every file of the family, one per line.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tc, err := newToolchain()
			if err != nil {
				return err
			}
			keys := tc.finder.ExistingKeys(args[0])
			if len(keys) == 0 {
				logInfo("%s", i18n.T("No resource files found"))
				return nil
			}
			for _, k := range sortedKeys(keys) {
				fmt.Println(k)
			}
			return nil
		},
	}
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// cancelOnInterrupt wires SIGINT into a context so an in-flight update
// stops between writes, never mid-file.
func cancelOnInterrupt(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt)
}
