// Command musicgen is the command-line front end for music-generation jobs.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/book-expert/logger"
	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/thaitrn/musicgen-service/internal/config"
	"github.com/thaitrn/musicgen-service/internal/core"
	"github.com/thaitrn/musicgen-service/internal/diag"
	"github.com/thaitrn/musicgen-service/internal/musicgen"
	"github.com/thaitrn/musicgen-service/internal/musicgen/genutils"
	"github.com/thaitrn/musicgen-service/internal/remote"
)

const (
	cliLogFileName = "musicgen-cli.log"

	smokeDefaultPrompt   = "happy upbeat electronic dance music"
	smokeDefaultDuration = 3.0

	spinnerRefreshInterval = 120 * time.Millisecond
	spinnerType            = 14
	spinnerWidth           = 10
)

var (
	genPrompt      string
	genDuration    float64
	genModel       string
	genOutput      string
	genFilename    string
	genTopK        int
	genTopP        float64
	genTemperature float64
	genCFGCoef     float64

	smokePrompt   string
	smokeDuration float64
	smokeModel    string
)

// appContext bundles what every subcommand needs after setup.
type appContext struct {
	cfg    *config.Config
	log    *logger.Logger
	engine *musicgen.Engine
}

func main() {
	err := NewRootCmd().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// NewRootCmd builds the musicgen command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "musicgen",
		Short:         "musicgen drives text-to-music generation jobs",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(
		newGenerateCmd(),
		newTestCmd(),
		newHealthCmd(),
		newModelsCmd(),
		newSmokeCmd(),
	)

	return rootCmd
}

func newGenerateCmd() *cobra.Command {
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one music clip from a text prompt",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runGenerate()
		},
	}

	generateCmd.Flags().StringVarP(&genPrompt, "prompt", "p", "",
		"text description of the music to generate")
	generateCmd.Flags().Float64VarP(&genDuration, "duration", "d", core.DefaultDuration,
		"clip duration in seconds")
	generateCmd.Flags().StringVarP(&genModel, "model", "m", string(core.ModelSmall),
		"model size: small, medium or large")
	generateCmd.Flags().StringVarP(&genOutput, "output", "o", "",
		"output directory (defaults to the configured one)")
	generateCmd.Flags().StringVarP(&genFilename, "filename", "f", "",
		"custom filename (default: auto-generated)")
	generateCmd.Flags().IntVar(&genTopK, "top-k", core.DefaultTopK,
		"top-k sampling parameter")
	generateCmd.Flags().Float64Var(&genTopP, "top-p", core.DefaultTopP,
		"top-p sampling parameter")
	generateCmd.Flags().Float64Var(&genTemperature, "temperature", core.DefaultTemperature,
		"sampling temperature")
	generateCmd.Flags().Float64Var(&genCFGCoef, "cfg-coef", core.DefaultCFGCoef,
		"classifier-free guidance coefficient")

	_ = generateCmd.MarkFlagRequired("prompt")

	return generateCmd
}

func newTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Generate three short sample clips as an installation check",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runTest()
		},
	}
}

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check engine service health and exit",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runHealth()
		},
	}
}

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the engine's available model checkpoints",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runModels()
		},
	}
}

func newSmokeCmd() *cobra.Command {
	smokeCmd := &cobra.Command{
		Use:   "smoke",
		Short: "Run the remote smoke test against the hosted endpoint",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runSmoke()
		},
	}

	smokeCmd.Flags().StringVar(&smokePrompt, "prompt", smokeDefaultPrompt,
		"prompt sent to the hosted endpoint")
	smokeCmd.Flags().Float64Var(&smokeDuration, "duration", smokeDefaultDuration,
		"requested clip duration in seconds")
	smokeCmd.Flags().StringVar(&smokeModel, "model", string(core.ModelSmall),
		"model size for the hosted generation")

	return smokeCmd
}

// setup loads the environment overlay and configuration, initializes the
// logger, and wires the generation backend.
func setup() (*appContext, error) {
	// A local .env may carry endpoint URLs and NATS credentials; absence
	// is not an error.
	_ = godotenv.Load()

	bootstrapLog, err := logger.New(os.TempDir(), cliLogFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to create bootstrap logger: %w", err)
	}

	cfg, err := config.Load(bootstrapLog)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log := bootstrapLog

	if cfg.Paths.BaseLogsDir != "" {
		finalLog, logErr := logger.New(cfg.Paths.BaseLogsDir, cliLogFileName)
		if logErr != nil {
			return nil, fmt.Errorf("failed to create logger: %w", logErr)
		}

		log = finalLog
	}

	dirsErr := prepareDirs(cfg)
	if dirsErr != nil {
		return nil, dirsErr
	}

	generator, err := buildGenerator(cfg, log)
	if err != nil {
		return nil, err
	}

	return &appContext{
		cfg:    cfg,
		log:    log,
		engine: musicgen.NewEngine(generator, cfg, log),
	}, nil
}

// prepareDirs creates the output and model directories up front, matching
// what the container entrypoint guarantees before the service starts.
func prepareDirs(cfg *config.Config) error {
	outputErr := genutils.EnsureDir(cfg.Paths.OutputDir)
	if outputErr != nil {
		return outputErr
	}

	return genutils.EnsureDir(cfg.Paths.ModelsDir)
}

// buildGenerator selects the local binary backend when one is configured,
// and the HTTP engine service otherwise.
func buildGenerator(cfg *config.Config, log *logger.Logger) (core.Generator, error) {
	if cfg.Engine.BinaryPath != "" {
		generator, err := musicgen.NewBinaryGenerator(cfg.Engine.BinaryPath, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create binary backend: %w", err)
		}

		return generator, nil
	}

	timeout := time.Duration(cfg.Engine.TimeoutSeconds) * time.Second

	return musicgen.NewHTTPClient(cfg.Engine.GetServiceURL(), timeout), nil
}

func runGenerate() error {
	app, err := setup()
	if err != nil {
		return err
	}
	defer app.log.Close()

	model, err := core.ParseModelSize(genModel)
	if err != nil {
		return err
	}

	req := core.GenerationRequest{
		Prompt:      genPrompt,
		Duration:    genDuration,
		Model:       model,
		TopK:        genTopK,
		TopP:        genTopP,
		Temperature: genTemperature,
		CFGCoef:     genCFGCoef,
	}

	validationErr := req.Validate()
	if validationErr != nil {
		return validationErr
	}

	outputDir := genOutput
	if outputDir == "" {
		outputDir = app.cfg.Paths.OutputDir
	}

	printDiagnostics(outputDir)

	var result *musicgen.ClipResult

	genErr := runWithSpinner("Generating music...", func(ctx context.Context) error {
		clip, clipErr := app.engine.GenerateClip(ctx, req, outputDir, genFilename)
		if clipErr != nil {
			return clipErr
		}

		result = clip

		return nil
	})
	if genErr != nil {
		app.log.Error("Generation failed: %v", genErr)

		return genErr
	}

	printClip(result)

	return nil
}

func runTest() error {
	app, err := setup()
	if err != nil {
		return err
	}
	defer app.log.Close()

	outputDir := app.cfg.Paths.OutputDir
	printDiagnostics(outputDir)

	healthErr := app.engine.CheckHealth(context.Background())
	if healthErr != nil {
		return healthErr
	}

	var results []*musicgen.ClipResult

	genErr := runWithSpinner("Generating sample clips...", func(ctx context.Context) error {
		clips, clipsErr := app.engine.GenerateSampleClips(ctx, outputDir)
		if clipsErr != nil {
			return clipsErr
		}

		results = clips

		return nil
	})
	if genErr != nil {
		app.log.Error("Sample clip run failed: %v", genErr)

		return genErr
	}

	for _, result := range results {
		printClip(result)
	}

	fmt.Printf("Generated %d clips in %s\n", len(results), outputDir)

	return nil
}

func runHealth() error {
	app, err := setup()
	if err != nil {
		return err
	}
	defer app.log.Close()

	healthErr := app.engine.CheckHealth(context.Background())
	if healthErr != nil {
		fmt.Printf("musicgen service is not healthy: %v\n", healthErr)

		return healthErr
	}

	fmt.Println("musicgen service is healthy")

	return nil
}

func runModels() error {
	app, err := setup()
	if err != nil {
		return err
	}
	defer app.log.Close()

	timeout := time.Duration(app.cfg.Engine.TimeoutSeconds) * time.Second
	client := musicgen.NewHTTPClient(app.cfg.Engine.GetServiceURL(), timeout)

	ctx, cancel := context.WithTimeout(context.Background(), musicgen.HealthCheckTimeout)
	defer cancel()

	models, err := client.ListModels(ctx)
	if err != nil {
		return err
	}

	for _, model := range models {
		fmt.Printf("%-8s %-10s %s\n", model.Name, model.Parameters, model.Description)
	}

	return nil
}

func runSmoke() error {
	app, err := setup()
	if err != nil {
		return err
	}
	defer app.log.Close()

	remoteCfg := app.cfg.Remote
	timeout := time.Duration(remoteCfg.TimeoutSeconds) * time.Second

	client, err := remote.NewClient(
		remoteCfg.GenerateURL,
		remoteCfg.HealthURL,
		remoteCfg.ModelsURL,
		timeout,
	)
	if err != nil {
		return err
	}

	ctx := context.Background()

	health, healthErr := client.Health(ctx)
	if healthErr != nil {
		return healthErr
	}

	fmt.Println("Health:")
	fmt.Println(health)

	models, modelsErr := client.ListModels(ctx)
	if modelsErr == nil {
		fmt.Println("Models:")
		fmt.Println(models)
	}

	return smokeGenerate(ctx, app, client)
}

func smokeGenerate(ctx context.Context, app *appContext, client *remote.Client) error {
	req := remote.GenerateRequest{
		Prompt:      smokePrompt,
		Duration:    smokeDuration,
		Temperature: core.DefaultTemperature,
		CFGCoef:     core.DefaultCFGCoef,
		ModelSize:   smokeModel,
	}

	fmt.Printf("Generating %.1fs clip for %q ...\n", req.Duration, req.Prompt)
	start := time.Now()

	resp, pretty, genErr := client.Generate(ctx, req)
	if pretty != "" {
		fmt.Println(pretty)
	}

	if genErr != nil {
		app.log.Error("Remote generation failed: %v", genErr)

		return genErr
	}

	fmt.Printf("Remote generation took %s\n", time.Since(start).Round(time.Second))

	if resp.AudioData == "" {
		return nil
	}

	dirErr := genutils.EnsureDir(app.cfg.Paths.OutputDir)
	if dirErr != nil {
		return dirErr
	}

	savePath := filepath.Join(
		app.cfg.Paths.OutputDir,
		genutils.ClipFileName(req.ModelSize, req.Prompt, time.Now()),
	)

	size, saveErr := client.SaveAudio(resp, savePath)
	if saveErr != nil {
		return saveErr
	}

	fmt.Printf("Saved %s (%s)\n", savePath, genutils.FormatFileSize(int64(size)))

	return nil
}

// printDiagnostics reports host resources before a run. Failures here are
// informational only and never block generation.
func printDiagnostics(outputDir string) {
	report, err := diag.Collect(outputDir)
	if err != nil {
		return
	}

	fmt.Print(report.String())
}

func printClip(result *musicgen.ClipResult) {
	fmt.Printf("Saved: %s\n", result.Path)
	fmt.Printf("  Duration: %s\n", genutils.FormatDuration(result.Duration))
	fmt.Printf("  Sample rate: %dHz\n", result.SampleRate)
	fmt.Printf("  File size: %s\n", genutils.FormatFileSize(result.SizeBytes))
}

// runWithSpinner runs fn while rendering an indeterminate spinner, since
// generation time scales with the requested duration and model size.
func runWithSpinner(description string, fn func(context.Context) error) error {
	bar := progressbar.NewOptions64(
		-1,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(spinnerWidth),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSpinnerType(spinnerType),
		progressbar.OptionSetRenderBlankState(true),
	)

	done := make(chan error, 1)

	go func() {
		done <- fn(context.Background())
	}()

	ticker := time.NewTicker(spinnerRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case err := <-done:
			_ = bar.Finish()

			return err
		case <-ticker.C:
			_ = bar.Add(1)
		}
	}
}
