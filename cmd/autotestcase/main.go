package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"autotestcase/internal/config"
	"autotestcase/internal/console"
	"autotestcase/internal/engine"
	"autotestcase/internal/export"
	"autotestcase/internal/extract"
	"autotestcase/internal/generator"
	"autotestcase/internal/logging"
)

var version = "dev"

var (
	// Global flags
	verbose    bool
	configPath string

	// Generate flags
	outputPath     string
	engineOverride string
	modelOverride  string
	timeout        time.Duration

	// newEngine is swapped in tests.
	newEngine = engine.NewFromConfig
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "autotestcase <input_file>",
	Short: "Generate manual test cases from requirement documents using AI",
	Long: `autotestcase reads a requirement document (PDF, DOCX or TXT), asks an
LLM engine (OpenAI or Google Gemini) to derive manual test cases from it, and
writes them to an Excel workbook ready for manual execution.

Examples:
  autotestcase requirements.pdf
  autotestcase login.docx -o out/login_cases.xlsx -c config.yaml
  autotestcase notes.txt --engine gemini --model gemini-2.5-pro`,
	Version:       version,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogging(config.DefaultConfig().Logging)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logging.Sync()
	},
	RunE: runGenerate,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Configuration file path")

	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "testcases.xlsx", "Output Excel file path")
	rootCmd.Flags().StringVar(&engineOverride, "engine", "", "Override the configured AI engine (openai, gemini)")
	rootCmd.Flags().StringVar(&modelOverride, "model", "", "Override the configured model for the selected engine")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "Overall timeout for the generation request")

	rootCmd.AddCommand(sampleCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		console.New(os.Stderr).Failure("Error: %v", err)
		os.Exit(1)
	}
}

// initLogging installs the process logger; --verbose forces debug level.
func initLogging(cfg config.LoggingConfig) error {
	opts := logging.Options{Level: cfg.Level, Format: cfg.Format, File: cfg.File}
	if verbose {
		opts.Level = "debug"
	}
	return logging.Initialize(opts)
}

// runGenerate executes the document -> engine -> workbook pipeline.
func runGenerate(cmd *cobra.Command, args []string) (err error) {
	inputPath := args[0]
	out := console.New(cmd.OutOrStdout())

	if _, err := os.Stat(inputPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("input file %q not found", inputPath)
		}
		return fmt.Errorf("cannot access input file: %w", err)
	}

	out.Step("📖", "Reading requirement document: %s", inputPath)
	text, err := extract.FromFile(inputPath)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return errors.New("no text content found in the document")
	}
	out.Success("Extracted %d characters from document", utf8.RuneCountInString(text))

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err = initLogging(cfg.Logging); err != nil {
		return err
	}

	runID := uuid.NewString()
	logging.Boot("run %s: loaded %s (engine=%s)", runID, configPath, cfg.Engine())
	audit := logging.NewAuditLogger(runID)
	audit.FileRead(inputPath, utf8.RuneCountInString(text), nil)
	defer func() { audit.RunEnd(err) }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	eng, err := newEngine(ctx, cfg)
	if err != nil {
		return err
	}
	out.Step("🤖", "Using AI engine: %s (model: %s)", cfg.Engine(), eng.Model())
	audit.RunStart(inputPath, cfg.Engine(), eng.Model())

	out.Step("🧪", "Generating test cases...")
	started := time.Now()
	cases, err := generator.New(eng).Generate(ctx, text)
	audit.LLMCall(eng.Name(), len(cases), time.Since(started), err)
	if err != nil {
		return err
	}
	if len(cases) == 0 {
		return errors.New("no test cases were generated")
	}
	out.Success("Generated %d test cases", len(cases))

	out.Step("💾", "Saving test cases to: %s", outputPath)
	opts := export.Options{
		SheetName:       cfg.Output.SheetName,
		DefaultPriority: cfg.Output.DefaultPriority,
		DefaultStatus:   cfg.Output.DefaultStatus,
		MaxColumnWidth:  cfg.Output.MaxColumnWidth,
		RunID:           audit.RunID(),
	}
	err = export.SaveWorkbook(cases, outputPath, opts)
	audit.FileWrite(outputPath, len(cases)+1, err)
	if err != nil {
		return err
	}
	out.Success("Excel file saved successfully: %s", outputPath)

	out.Done("Test case generation completed successfully!")
	return nil
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if engineOverride != "" {
		logging.BootDebug("engine overridden by flag: %s -> %s", cfg.AIEngine, engineOverride)
		cfg.AIEngine = engineOverride
	}
	if modelOverride != "" {
		logging.BootDebug("model overridden by flag: %s", modelOverride)
		switch cfg.Engine() {
		case "openai":
			cfg.OpenAI.Model = modelOverride
		case "gemini":
			cfg.Gemini.Model = modelOverride
		}
	}

	if err := cfg.Validate(); err != nil {
		logging.BootError("invalid configuration in %s: %v", configPath, err)
		return nil, err
	}
	return cfg, nil
}
