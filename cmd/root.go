package cmd

import (
	"os"
	"strings"
	"time"

	"github.com/AzielCF/telebridge/core/config"
	"github.com/AzielCF/telebridge/pkg/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "telebridge",
	Short: "Relay media from t.me links through a Telegram bot",
	Long: `telebridge fetches messages from t.me links with a user session,
downloads their media and re-uploads it through a bot session.`,
}

func init() {
	// Load environment variables first
	utils.LoadConfig(".")

	time.Local = time.UTC

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	initFlags()

	cobra.OnInitialize(initEnvConfig, initApp)
}

// initEnvConfig builds config.Global from the environment and lets
// explicitly passed flags override it.
func initEnvConfig() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("[CONFIG] failed to load configuration: %v", err)
	}

	if v := viper.GetString("app_port"); v != "" {
		cfg.App.Port = v
	}
	if viper.GetBool("app_debug") {
		cfg.App.Debug = true
	}
	if v := viper.GetString("app_base_path"); v != "" {
		cfg.App.BasePath = strings.TrimRight(v, "/")
	}
	if f := rootCmd.PersistentFlags().Lookup("basic-auth"); f != nil && f.Changed {
		cfg.App.BasicAuth, _ = rootCmd.PersistentFlags().GetStringSlice("basic-auth")
	}
	if v := viper.GetInt64("max_file_size"); v > 0 {
		cfg.Relay.MaxFileSize = v
	}
	if v := viper.GetString("relay_target"); v != "" {
		cfg.Relay.Target = v
	}
	if v := viper.GetString("path_temp"); v != "" {
		cfg.Paths.Temp = v
	}
}

func initFlags() {
	flags := rootCmd.PersistentFlags()

	flags.StringP("port", "p", "", "change port number with --port <number> | example: --port=8080")
	flags.BoolP("debug", "d", false, "hide or displaying log with --debug <true/false> | example: --debug=true")
	flags.String("base-path", "", `base path for subpath deployment --base-path <string> | example: --base-path="/relay"`)
	flags.StringSliceP("basic-auth", "b", nil, "basic auth credential | -b=yourUsername:yourPassword")
	flags.Int64("max-file-size", 0, "largest media file to relay, in bytes | example: --max-file-size=104857600")
	flags.String("relay-target", "", `where the bot uploads media: self, @username or a chat id | example: --relay-target="@my_archive"`)
	flags.String("temp-dir", "", `directory for downloaded media | example: --temp-dir="/tmp/telebridge"`)

	bindings := map[string]string{
		"app_port":      "port",
		"app_debug":     "debug",
		"app_base_path": "base-path",
		"max_file_size": "max-file-size",
		"relay_target":  "relay-target",
		"path_temp":     "temp-dir",
	}
	for key, name := range bindings {
		if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			logrus.WithError(err).Warnf("[CONFIG] failed to bind flag %s", name)
		}
	}
}

func initApp() {
	if config.Global.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if err := utils.CreateFolder(config.Global.Paths.Storages, config.Global.Paths.Temp); err != nil {
		logrus.Errorln(err)
	}
	logrus.Debugf("[CONFIG] %v", config.GetAllSettings())
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
