package cli

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rdmo-deploy/rdmoctl/internal/config"
	"github.com/rdmo-deploy/rdmoctl/internal/logging"
	"github.com/rdmo-deploy/rdmoctl/internal/manage"
)

func init() {
	rootCmd.AddCommand(manageCmd)
}

var manageCmd = &cobra.Command{
	Use:   "manage [args...]",
	Short: "Run manage.py with the resolved settings",
	Long: `Resolve the settings, export the variables loaded from the env files and
DJANGO_SETTINGS_MODULE, then run manage.py with the given arguments.
Leading --base-dir and --log-level flags are read by rdmoctl; everything else
after "manage" is passed to manage.py unchanged.

  rdmoctl manage migrate
  rdmoctl manage createsuperuser --username admin
  rdmoctl manage --base-dir /srv/rdmo check --deploy`,
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, rawArgs []string) error {
		args := consumeRootFlags(rawArgs)
		if flagLogLevel != "" {
			log = logging.New(flagLogLevel, cmd.ErrOrStderr())
		}

		s, err := buildSettings()
		if err != nil {
			return err
		}

		runner := &manage.Runner{
			Python: config.Get(config.KeyPython),
			Stdin:  cmd.InOrStdin(),
			Stdout: cmd.OutOrStdout(),
			Stderr: cmd.ErrOrStderr(),
		}
		files, err := logging.AttachFiles(log, s.Logging.Dir)
		if err != nil {
			log.WithError(err).Warn("file logging disabled")
		} else {
			defer files.Close()
		}
		entry := log.WithFields(logrus.Fields{
			logging.FieldLogger: "rdmoctl.manage",
			"script":            manage.Script(s),
			"module":            s.Environment.Module,
		})
		entry.WithField("args", strings.Join(args, " ")).Debug("running manage.py")

		code, err := runner.Run(cmd.Context(), s, args)
		if err != nil {
			entry.WithError(err).Error("manage.py did not start")
			return fmt.Errorf("running manage.py: %w", err)
		}
		entry.WithField("code", code).Debug("manage.py exited")
		if code != 0 {
			return &ExitError{Code: code}
		}
		return nil
	},
}

// consumeRootFlags strips leading --base-dir and --log-level flags, which
// cobra leaves in args when flag parsing is disabled, and an optional "--"
// separator. Everything after is passed to manage.py.
func consumeRootFlags(args []string) []string {
	targets := map[string]*string{"--base-dir": &flagBaseDir, "--log-level": &flagLogLevel}
	for len(args) > 0 {
		arg := args[0]
		if arg == "--" {
			return args[1:]
		}
		name, value, hasValue := strings.Cut(arg, "=")
		target, ok := targets[name]
		if !ok {
			return args
		}
		if hasValue {
			*target = value
			args = args[1:]
			continue
		}
		if len(args) < 2 {
			return args[1:]
		}
		*target = args[1]
		args = args[2:]
	}
	return args
}
