package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rdmo-deploy/rdmoctl/internal/envfile"
)

var envShowNoRedact bool

func init() {
	envShowCmd.Flags().BoolVar(&envShowNoRedact, "no-redact", false, "Show values without redaction")

	envCmd.AddCommand(envListCmd)
	envCmd.AddCommand(envShowCmd)
	rootCmd.AddCommand(envCmd)
}

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Inspect deployment environment files",
	Long:  `List and print the .env files of the deployment.`,
}

var envListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show all .env files in the base directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		base, err := filepath.Abs(baseDir())
		if err != nil {
			return fmt.Errorf("resolving base directory: %w", err)
		}
		files, err := envfile.Discover(base)
		if err != nil {
			return fmt.Errorf("listing env files: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(files) == 0 {
			fmt.Fprintf(out, "No .env files found in %s.\n", base)
			return nil
		}

		rows := make([][]string, 0, len(files))
		for _, path := range files {
			mode := "?"
			if info, err := os.Stat(path); err == nil {
				mode = fmt.Sprintf("%04o", info.Mode().Perm())
			}
			rows = append(rows, []string{filepath.Base(path), mode, environmentOf(path)})
		}
		fmt.Fprintln(out, renderTable([]string{"File", "Mode", "Environment"}, rows, nil))
		return nil
	},
}

func environmentOf(path string) string {
	switch filepath.Base(path) {
	case envfile.ProductionFile:
		return string(envfile.Production)
	case envfile.DevelopmentFile:
		return string(envfile.Development)
	}
	return ""
}

var envShowCmd = &cobra.Command{
	Use:   "show <production|development|path>",
	Short: "Print env file contents (redacted by default)",
	Long: `Print the contents of a .env file with sensitive values redacted.

  rdmoctl env show production     # shows .env
  rdmoctl env show development    # shows .DEBUG.env
  rdmoctl env show sites/a.env    # shows any other file

Use --no-redact to show actual values.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveEnvTarget(args[0])
		if err != nil {
			return err
		}

		entries, err := envfile.ParseEntries(path)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintln(out, "(empty)")
			return nil
		}

		fmt.Fprintf(out, "# %s\n", path)
		for _, e := range entries {
			value := e.Value
			if !envShowNoRedact {
				value = envfile.RedactValue(e.Key, e.Value)
			}
			fmt.Fprintf(out, "%s=%s\n", e.Key, value)
		}
		return nil
	},
}

// resolveEnvTarget maps an environment name to its file under the base
// directory. Anything else is taken as a path, relative to the base
// directory unless absolute.
func resolveEnvTarget(target string) (string, error) {
	base, err := filepath.Abs(baseDir())
	if err != nil {
		return "", fmt.Errorf("resolving base directory: %w", err)
	}
	if env, err := envfile.ParseEnvironment(target); err == nil {
		return envfile.Path(base, env), nil
	}
	if filepath.IsAbs(target) {
		return target, nil
	}
	return filepath.Join(base, target), nil
}
