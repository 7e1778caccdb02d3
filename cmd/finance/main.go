package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"finance-tracker/internal/config"
	"finance-tracker/internal/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	cfg     *config.Config
	rootCmd = &cobra.Command{
		Use:   "finance",
		Short: "Personal finance tracker backend",
		Long: `finance serves the personal finance API and runs its background
processes: the notification worker and the goal deadline scheduler.`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./finance.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (text, json)")

	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(workerCmd())
	rootCmd.AddCommand(schedulerCmd())
	rootCmd.AddCommand(scanDeadlinesCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("finance")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("FINANCE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	config.LoadEnvFile()
	cfg = config.Load()
	applyOverrides(cfg)

	l, err := logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	l.Debug("configuration loaded",
		"environment", cfg.Server.Environment,
		"database_driver", cfg.Database.Driver,
		"amqp_enabled", cfg.AMQP.Enabled(),
		"smtp_enabled", cfg.SMTP.Enabled())

	return nil
}

// applyOverrides lets flags, FINANCE_* variables and the config file take
// precedence over the plain environment for the settings viper knows about.
func applyOverrides(c *config.Config) {
	if v := viper.GetString("logging.level"); v != "" {
		c.Logging.Level = v
	}
	if v := viper.GetString("logging.format"); v != "" {
		c.Logging.Format = v
	}
	if v := viper.GetString("server.port"); v != "" {
		c.Server.Port = v
	}
	if v := viper.GetString("database.driver"); v != "" {
		c.Database.Driver = strings.ToLower(v)
	}
	if v := viper.GetString("database.sqlite_path"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := viper.GetString("amqp.url"); v != "" {
		c.AMQP.URL = v
	}
}
