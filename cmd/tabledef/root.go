package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/JonMunkholm/tabledef/internal/logging"
	"github.com/JonMunkholm/tabledef/internal/rest"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const version = "0.1.0"

var (
	errInvalid = errors.New("invalid definition")
	errUsage   = errors.New("usage")
)

// Profile keys. Each can come from a flag, a TABLEDEF_* variable or the
// profile file, in that order of precedence.
const (
	cfgKeyURL      = "url"
	cfgKeyServlet  = "servlet"
	cfgKeyUsername = "username"
	cfgKeyPassword = "password"
	cfgKeyTimeout  = "timeout"
)

const (
	profileName = ".tabledef"
	profileType = "yaml"
	envPrefix   = "TABLEDEF"
)

// app holds state shared by all commands of one invocation.
type app struct {
	configFile string
	output     string
	verbose    bool

	v      *viper.Viper
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "tabledef",
		Short: "Table definition tool",
		Long: `tabledef checks, formats and inspects table definition files
(.properties) and queries a running table server.

Server access is configured by flags, TABLEDEF_* environment variables or a
YAML profile (.tabledef.yaml in the working or home directory):

  url: http://localhost:8080
  servlet: tables
  username: admin
  password: secret
  timeout: 30s`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.init,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "profile file (default: .tabledef.yaml in . or $HOME)")
	pf.StringVarP(&a.output, "output", "o", "text", "output format: text, json or yaml")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "log debug output to stderr")
	pf.String("url", "", "server base URL, e.g. http://localhost:8080")
	pf.String("servlet", "tables", "servlet path segment")
	pf.String("user", "", "basic auth user")
	pf.String("password", "", "basic auth password")
	pf.Duration("timeout", rest.DefaultTimeout, "request timeout")

	for key, flag := range map[string]string{
		cfgKeyURL:      "url",
		cfgKeyServlet:  "servlet",
		cfgKeyUsername: "user",
		cfgKeyPassword: "password",
		cfgKeyTimeout:  "timeout",
	} {
		// Only fails for a nil flag.
		_ = a.v.BindPFlag(key, pf.Lookup(flag))
	}

	root.AddCommand(
		newValidateCmd(a),
		newFmtCmd(a),
		newShowCmd(a),
		newPullCmd(a),
		newServicesCmd(a),
		newInfoCmd(a),
		newDataCmd(a),
		newUpdateCmd(a),
	)
	return root
}

// init sets up logging and reads the profile.
func (a *app) init(cmd *cobra.Command, args []string) error {
	switch a.output {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("%w: unknown output format %q", errUsage, a.output)
	}

	level := "error"
	if a.verbose {
		level = "debug"
	}
	a.logger = logging.New(cmd.ErrOrStderr(), level, "text")
	slog.SetDefault(a.logger)

	return a.loadProfile()
}

// loadProfile reads the YAML profile. A missing default profile is not an
// error; a missing --config file is.
func (a *app) loadProfile() error {
	a.v.SetEnvPrefix(envPrefix)
	a.v.AutomaticEnv()

	if a.configFile != "" {
		a.v.SetConfigFile(a.configFile)
	} else {
		a.v.SetConfigName(profileName)
		a.v.SetConfigType(profileType)
		a.v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			a.v.AddConfigPath(home)
		}
	}

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read profile: %w", err)
	}
	a.logger.Debug("profile loaded", "file", a.v.ConfigFileUsed())
	return nil
}

// client builds a server client from the profile.
func (a *app) client() (*rest.Client, error) {
	url := a.v.GetString(cfgKeyURL)
	if url == "" {
		return nil, fmt.Errorf("%w: no server URL; set --url, TABLEDEF_URL or url in the profile", errUsage)
	}

	c := rest.NewClient(url, a.v.GetString(cfgKeyServlet), a.v.GetString(cfgKeyUsername), a.v.GetString(cfgKeyPassword))
	c.HTTPClient.Timeout = a.v.GetDuration(cfgKeyTimeout) // Zero disables
	return c, nil
}
