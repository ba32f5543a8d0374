package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hannajonsd/leakscan/analyzer"
	"github.com/hannajonsd/leakscan/finding"
)

var (
	cfgFile  string
	format   string
	workers  int
	skipDirs []string
	verbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "leakscan",
	Short: "Static detector for resource leaks and leaky guard clauses",
	Long: `leakscan scans source trees for two per-file defect classes:
resources that are acquired but never released, and null guards that
neither exit nor narrow before the guarded value is used.`,
	Run: nil,
}

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan a directory for resource leaks and narrowing violations",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScan,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default .leakscan.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	scanCmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text or json")
	scanCmd.Flags().IntVarP(&workers, "workers", "w", 0, "concurrent file workers (0 = one per CPU)")
	scanCmd.Flags().StringSliceVar(&skipDirs, "skip-dir", nil, "additional directory names to skip")

	rootCmd.AddCommand(scanCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".leakscan")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}
	viper.SetEnvPrefix("LEAKSCAN")
	viper.AutomaticEnv()
	viper.ReadInConfig()
}

func runScan(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve scan root: %w", err)
	}
	if info, err := os.Stat(root); err != nil {
		return fmt.Errorf("scan root: %w", err)
	} else if !info.IsDir() {
		return fmt.Errorf("scan root %s is not a directory", root)
	}

	if !cmd.Flags().Changed("format") && viper.IsSet("format") {
		format = viper.GetString("format")
	}
	if !cmd.Flags().Changed("workers") && viper.IsSet("workers") {
		workers = viper.GetInt("workers")
	}
	if skip := viper.GetStringSlice("skip_dirs"); len(skip) > 0 {
		skipDirs = append(skipDirs, skip...)
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	if verbose {
		cmd.Flags().Visit(func(f *pflag.Flag) {
			log.Debug("flag override", "name", f.Name, "value", f.Value.String())
		})
	}

	var writer finding.Writer
	switch format {
	case "text":
		writer = finding.NewTextWriter(os.Stdout)
	case "json":
		writer = finding.NewJSONWriter(os.Stdout)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}

	a := analyzer.New(analyzer.Config{
		Root:     root,
		SkipDirs: skipDirs,
		Workers:  workers,
		Verbose:  verbose,
	}, log)

	findings, err := a.Run(cmd.Context())
	if err != nil {
		return err
	}
	return writer.Write(findings)
}
