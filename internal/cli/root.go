package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rdmo-deploy/rdmoctl/internal/branding"
	"github.com/rdmo-deploy/rdmoctl/internal/config"
	"github.com/rdmo-deploy/rdmoctl/internal/envvar"
	"github.com/rdmo-deploy/rdmoctl/internal/logging"
	"github.com/rdmo-deploy/rdmoctl/internal/settings"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	flagBaseDir  string
	flagLogLevel string

	log = logrus.New()
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagBaseDir, "base-dir", "", "Deployment root holding .env and manage.py (default: config base_dir, then the working directory)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (default: config log_level)")
}

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` resolves the settings of an RDMO deployment from the environment and its
.env files, validates them, and runs manage.py with the result.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Load()
		level := flagLogLevel
		if level == "" {
			level = config.Get(config.KeyLogLevel)
		}
		log = logging.New(level, cmd.ErrOrStderr())
	},
}

// ExitError carries an exit code that main passes to os.Exit unchanged.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	err := rootCmd.Execute()
	var exitErr *ExitError
	if err != nil && !errors.As(err, &exitErr) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

// baseDir returns the deployment root from --base-dir or the config file.
// Empty means the working directory.
func baseDir() string {
	if flagBaseDir != "" {
		return flagBaseDir
	}
	return config.Get(config.KeyBaseDir)
}

// buildSettings resolves the deployment settings against the process
// environment.
func buildSettings() (*settings.Settings, error) {
	s, err := settings.Build(settings.Options{BaseDir: baseDir(), Env: envvar.OS()})
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"env":      s.Environment.Name,
		"provider": s.Auth.Provider.Kind(),
	}).Debug("settings built")
	return s, nil
}
