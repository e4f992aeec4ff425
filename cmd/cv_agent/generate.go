package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-tailor/internal/config"
	"github.com/jonathan/cv-tailor/internal/pipeline"
	"github.com/jonathan/cv-tailor/internal/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate [cv|cover-letter]",
	Short: "Generate a tailored CV or cover letter",
	Long: `Analyzes a job posting, ranks the profile's experience against it, adapts
content through the configured model, and prints a structured document as JSON.

Configuration can be loaded from a JSON file using --config. Command-line
arguments override config file values.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"cv", "cover-letter"},
	RunE:      runGenerate,
}

var (
	genConfigPath  string
	genJob         string
	genJobURL      string
	genProfilePath string
	genProvider    string
	genEndpointURL string
	genModelID     string
	genAPIKey      string
	genMaxBullets  int
	genUseBrowser  bool
	genVerbose     bool
	genDatabaseURL string
	genOutput      string
)

func init() {
	generateCmd.Flags().StringVar(&genConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	generateCmd.Flags().StringVarP(&genJob, "job", "j", "", "Path to job posting text file (mutually exclusive with --job-url)")
	generateCmd.Flags().StringVar(&genJobURL, "job-url", "", "URL to fetch job posting from (mutually exclusive with --job)")
	generateCmd.Flags().StringVarP(&genProfilePath, "profile", "p", "", "Path to the YAML professional profile")
	generateCmd.Flags().StringVar(&genProvider, "provider", "", `Completion provider: "local" or "gemini"`)
	generateCmd.Flags().StringVar(&genEndpointURL, "endpoint-url", "", "Local completion endpoint base URL")
	generateCmd.Flags().StringVar(&genModelID, "model", "", "Model identifier")
	generateCmd.Flags().StringVar(&genAPIKey, "api-key", "", "Provider API key (defaults to CVTAILOR_API_KEY or GEMINI_API_KEY env var)")
	generateCmd.Flags().IntVar(&genMaxBullets, "max-bullets", 0, "Maximum bullets per experience")
	generateCmd.Flags().BoolVar(&genUseBrowser, "use-browser", false, "Use headless browser for SPA sites (requires Chrome)")
	generateCmd.Flags().BoolVarP(&genVerbose, "verbose", "v", false, "Print detailed debug information")
	generateCmd.Flags().StringVar(&genDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	generateCmd.Flags().StringVarP(&genOutput, "output", "o", "", "Write the document JSON to a file instead of stdout")

	rootCmd.AddCommand(generateCmd)
}

func documentKind(arg string) (types.DocumentKind, error) {
	switch arg {
	case "cv":
		return types.KindCV, nil
	case "cover-letter":
		return types.KindCoverLetter, nil
	default:
		return "", fmt.Errorf("unknown document kind %q (expected cv or cover-letter)", arg)
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	kind, err := documentKind(args[0])
	if err != nil {
		return err
	}

	cfg, err := loadConfig(genConfigPath, genVerbose)
	if err != nil {
		return err
	}

	// CLI overrides: only apply flags that were explicitly set.
	if cmd.Flags().Changed("job") {
		cfg.Job = genJob
	}
	if cmd.Flags().Changed("job-url") {
		cfg.JobURL = genJobURL
	}
	if cmd.Flags().Changed("profile") {
		cfg.ProfilePath = genProfilePath
	}
	if cmd.Flags().Changed("provider") {
		cfg.Provider = genProvider
	}
	if cmd.Flags().Changed("endpoint-url") {
		cfg.EndpointURL = genEndpointURL
	}
	if cmd.Flags().Changed("model") {
		cfg.ModelID = genModelID
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = genAPIKey
	}
	if cmd.Flags().Changed("max-bullets") {
		cfg.MaxBullets = genMaxBullets
	}
	if cmd.Flags().Changed("use-browser") {
		cfg.UseBrowser = genUseBrowser
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = genVerbose
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = genDatabaseURL
	}

	cfg = cfg.MergeWithDefaults(config.Defaults())

	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Job == "" && cfg.JobURL == "" {
		return fmt.Errorf("either --job or --job-url must be provided (via flag or config)")
	}

	jobInput := cfg.JobURL
	if cfg.Job != "" {
		data, err := os.ReadFile(cfg.Job)
		if err != nil {
			return fmt.Errorf("failed to read job file: %w", err)
		}
		jobInput = string(data)
	}

	application, err := buildApp(ctx, &cfg)
	if err != nil {
		return err
	}
	defer application.close()

	doc, err := application.pipeline.Run(ctx, pipeline.Options{
		JobInput:   jobInput,
		Kind:       kind,
		MaxBullets: cfg.MaxBullets,
		Verbose:    cfg.Verbose,
	})
	if err != nil {
		return err
	}

	return writeDocument(doc, genOutput)
}

func writeDocument(doc *types.ComposedDocument, path string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	if path == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	fmt.Printf("Document written to %s\n", path)
	return nil
}
