package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mobileinsight/wsdissector/log"
	"github.com/mobileinsight/wsdissector/wsdissector-app/config"
	"github.com/mobileinsight/wsdissector/x/catalog"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "wsdissector",
		Short: "Wireshark dissector wrapper",
		Long: "Feeds raw cellular radio-interface messages (WCDMA/LTE RRC, NAS PDUs) to the\n" +
			"external ws_dissector process over the AWW protocol and prints the dissection.\n\n" +
			"Reads \"TYPE HEXPAYLOAD\" lines from standard input, one message per line.",
		RunE: runApp,
	}

	decodeCmd = &cobra.Command{
		Use:   "decode TYPE HEXPAYLOAD",
		Short: "Decode a single message and exit",
		Args:  cobra.ExactArgs(2),
		RunE:  runDecode,
	}

	selftestCmd = &cobra.Command{
		Use:   "selftest",
		Short: "Decode a fixed set of sample messages against the real dissector",
		RunE:  runSelftest,
	}

	typesCmd = &cobra.Command{
		Use:   "types",
		Short: "List supported message types and their AWW codes",
		Run:   runTypes,
	}

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		RunE:  runConfig,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run:   runVersion,
	}
)

func main() {
	if err := execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func execute() error {
	initCommands()
	return rootCmd.Execute()
}

func initCommands() {
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(selftestCmd)
	rootCmd.AddCommand(typesCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config",
		"wsdissector-app/configs/config.yaml", "config file path")
	rootCmd.PersistentFlags().String("log-level", "", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-pretty", false, "enable pretty logging")

	// Decoder flags
	rootCmd.PersistentFlags().String("executable", "", "path of the ws_dissector binary")
	rootCmd.PersistentFlags().String("library-dir", "", "directory containing libwireshark")
	rootCmd.PersistentFlags().Duration("response-timeout", 0, "per-request response timeout (0 waits forever)")

	// Metrics flags
	rootCmd.PersistentFlags().Bool("metrics", false, "enable metrics")
	rootCmd.PersistentFlags().Int("metrics-port", 0, "metrics server port")
}

// loadConfig loads the config file and overlays any changed flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(cmd, cfg)
	return cfg, nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flag("log-level").Changed {
		cfg.Log.Level, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flag("log-pretty").Changed {
		cfg.Log.Pretty, _ = cmd.Flags().GetBool("log-pretty")
	}

	if cmd.Flag("executable").Changed {
		cfg.Decoder.ExecutablePath, _ = cmd.Flags().GetString("executable")
	}
	if cmd.Flag("library-dir").Changed {
		cfg.Decoder.LibraryDir, _ = cmd.Flags().GetString("library-dir")
	}
	if cmd.Flag("response-timeout").Changed {
		cfg.Decoder.ResponseTimeout, _ = cmd.Flags().GetDuration("response-timeout")
	}

	if cmd.Flag("metrics").Changed {
		cfg.Metrics.Enabled, _ = cmd.Flags().GetBool("metrics")
	}
	if cmd.Flag("metrics-port").Changed {
		cfg.Metrics.Port, _ = cmd.Flags().GetInt("metrics-port")
	}
}

func runApp(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := log.New(cfg.Log.Level, cfg.Log.Pretty)

	logger.Info().
		Str("version", Version).
		Str("git_commit", GitCommit).
		Str("go_version", runtime.Version()).
		Msg("Build information")

	logger.Info().
		Str("config_file", cfgFile).
		Str("executable", cfg.Decoder.ExecutablePath).
		Str("library_dir", cfg.Decoder.LibraryDir).
		Dur("response_timeout", cfg.Decoder.ResponseTimeout).
		Bool("metrics_enabled", cfg.Metrics.Enabled).
		Msg("Configuration loaded")

	app, err := NewApp(cfg, logger.Logger)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	return app.Run(cmd.Context())
}

func runDecode(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := log.New(cfg.Log.Level, cfg.Log.Pretty)
	app, err := NewApp(cfg, logger.Logger)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	return app.DecodeOne(cmd.Context(), args[0], args[1])
}

func runSelftest(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := log.New(cfg.Log.Level, cfg.Log.Pretty)
	app, err := NewApp(cfg, logger.Logger)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	return app.Selftest(cmd.Context())
}

func runTypes(*cobra.Command, []string) {
	for _, name := range catalog.Names() {
		code, _ := catalog.Lookup(name)
		fmt.Printf("%-22s %d\n", name, code)
	}
}

func runConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	fmt.Print(string(out))
	return nil
}

func runVersion(*cobra.Command, []string) {
	fmt.Printf("wsdissector\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Time: %s\n", BuildTime)
	fmt.Printf("Git Commit: %s\n", GitCommit)
	fmt.Printf("Go Version: %s\n", runtime.Version())
	fmt.Printf("OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
}
