package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/rdmo-deploy/rdmoctl/internal/platform"
	"github.com/rdmo-deploy/rdmoctl/internal/preflight"
	"github.com/rdmo-deploy/rdmoctl/internal/schema"
	"github.com/rdmo-deploy/rdmoctl/internal/settings"
)

var (
	checkPreflight bool
	checkFix       bool
	checkWatch     bool
	checkDocument  string
)

// newChecker is replaced in tests.
var newChecker = preflight.New

func init() {
	checkCmd.Flags().BoolVar(&checkPreflight, "preflight", false, "Also check directories, database, caches and identity providers")
	checkCmd.Flags().BoolVar(&checkFix, "fix", false, "Restrict env file permissions to the owner when a check fails")
	checkCmd.Flags().BoolVar(&checkWatch, "watch", false, "Re-run the checks whenever an env file changes")
	checkCmd.Flags().StringVar(&checkDocument, "document", "", "Validate an exported settings file (from show --format yaml|json) instead of building")
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Resolve and validate the deployment settings",
	Long: `Build the settings from the environment and the selected .env file, validate
the result against the settings schema, and optionally run preflight checks.

  rdmoctl check                    # resolve and validate
  rdmoctl check --preflight        # also reach database, caches and providers
  rdmoctl check --preflight --fix  # chmod 0600 env files that are too open
  rdmoctl check --watch            # re-run when an env file changes
  rdmoctl check --document s.yaml  # validate an exported settings file`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if checkDocument != "" {
			return checkExported(out, checkDocument)
		}
		if checkWatch {
			return watchChecks(cmd.Context(), out)
		}
		failures := runChecks(cmd.Context(), out)
		if failures > 0 {
			return fmt.Errorf("%d check(s) failed", failures)
		}
		return nil
	},
}

func checkExported(out io.Writer, path string) error {
	res, err := schema.ValidateFile(path)
	if err != nil {
		return err
	}
	if res.Valid {
		fmt.Fprintf(out, "  [ OK ] %s is valid\n", path)
		return nil
	}
	printIssues(out, res.Issues)
	return fmt.Errorf("%s: %d schema issue(s)", path, len(res.Issues))
}

func printIssues(out io.Writer, issues []schema.ValidationIssue) {
	for _, issue := range issues {
		path := issue.Path
		if path == "" {
			path = "/"
		}
		fmt.Fprintf(out, "  [FAIL] schema %s: %s\n", path, issue.Message)
	}
}

// runChecks prints one line per check and returns the number of failures.
func runChecks(ctx context.Context, out io.Writer) int {
	if ctx == nil {
		ctx = context.Background()
	}

	fmt.Fprintln(out, "Settings check:")
	s, err := buildSettings()
	if err != nil {
		fmt.Fprintf(out, "  [FAIL] %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "  [ OK ] %s settings built from %s\n", s.Environment.Name, s.Environment.EnvFile)
	fmt.Fprintf(out, "  [ OK ] fragments: %s\n", strings.Join(s.Fragments, ", "))

	failures := 0
	res, err := schema.ValidateDocument(s.Document())
	switch {
	case err != nil:
		fmt.Fprintf(out, "  [FAIL] schema: %v\n", err)
		failures++
	case !res.Valid:
		printIssues(out, res.Issues)
		failures += len(res.Issues)
	default:
		fmt.Fprintln(out, "  [ OK ] schema valid")
	}

	if !checkPreflight {
		return failures
	}

	fmt.Fprintln(out, "Preflight check:")
	results := newChecker().RunAll(ctx, s)
	for _, r := range results {
		switch {
		case r.Skipped:
			fmt.Fprintf(out, "  [SKIP] %s: %s\n", r.Name, r.Detail)
		case r.Passed:
			fmt.Fprintf(out, "  [ OK ] %s: %s\n", r.Name, r.Detail)
		case checkFix && isEnvFileCheck(r):
			if fixed := fixEnvFile(out, s, r); fixed {
				continue
			}
			failures++
		default:
			fmt.Fprintf(out, "  [FAIL] %s: %s\n", r.Name, r.Detail)
			failures++
		}
	}
	return failures
}

func isEnvFileCheck(r preflight.Result) bool {
	return strings.HasPrefix(r.Name, "Env file ")
}

// fixEnvFile makes the env file named by a failed permission check private.
func fixEnvFile(out io.Writer, s *settings.Settings, r preflight.Result) bool {
	name := strings.TrimPrefix(r.Name, "Env file ")
	var path string
	for _, candidate := range []string{s.Environment.EnvFile, s.Site.MultisiteDBEnvFile} {
		if candidate != "" && filepath.Base(candidate) == name {
			path = candidate
			break
		}
	}
	if path == "" {
		fmt.Fprintf(out, "  [FAIL] %s: %s\n", r.Name, r.Detail)
		return false
	}
	if err := platform.Chmod(path, platform.PrivateMode); err != nil {
		fmt.Fprintf(out, "  [FAIL] %s: %v\n", r.Name, err)
		return false
	}
	fmt.Fprintf(out, "  [FIX ] %s: set mode %04o on %s\n", r.Name, platform.PrivateMode, path)
	return true
}

// watchChecks runs the checks, then again on every write to an env file
// until interrupted.
func watchChecks(ctx context.Context, out io.Writer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer watcher.Close()

	base, err := filepath.Abs(baseDir())
	if err != nil {
		return fmt.Errorf("resolving base directory: %w", err)
	}
	dirs := []string{base}
	runChecks(ctx, out)
	if s, err := buildSettings(); err == nil && s.Site.MultisiteDBEnvFile != "" {
		if dir := filepath.Dir(s.Site.MultisiteDBEnvFile); dir != base {
			dirs = append(dirs, dir)
		}
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	fmt.Fprintf(out, "Watching %s for env file changes. Press Ctrl+C to stop.\n", strings.Join(dirs, ", "))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var done <-chan struct{}
	if ctx != nil {
		done = ctx.Done()
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !strings.HasSuffix(event.Name, ".env") {
				continue
			}
			log.WithField("file", event.Name).Info("env file changed")
			fmt.Fprintf(out, "\n%s changed\n", filepath.Base(event.Name))
			runChecks(ctx, out)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("file watcher error")
		case <-sigChan:
			fmt.Fprintln(out, "Stopped watching.")
			return nil
		case <-done:
			return nil
		}
	}
}
