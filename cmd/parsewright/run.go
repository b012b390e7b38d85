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

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"parsewright/internal/agent"
	"parsewright/internal/config"
	"parsewright/internal/fixtures"
	"parsewright/internal/llm"
	"parsewright/internal/pdftext"
	"parsewright/internal/ux"
	"parsewright/internal/validator"
)

// promptHeadRows of the expected CSV travel into prompts as evidence.
const promptHeadRows = 5

// timeRounding keeps verdict durations readable.
const timeRounding = 10 * time.Millisecond

var runCmd = &cobra.Command{
	Use:   "run [target]",
	Short: "Generate and validate a parser for a target institution",
	Long: `Runs the full refinement loop for one target:
  1. Preflight: check fixtures, API key, and schema
  2. Generate: ask the model for a parser
  3. Persist: write the artifact to the parser directory
  4. Validate: run the validation subprocess against the fixture pair
  5. Refine: on failure, feed the code and error trace back and retry

Example:
  parsewright run icici`,
	Args: cobra.ExactArgs(1),
	RunE: runTarget,
}

func runTarget(cmd *cobra.Command, args []string) error {
	target := args[0]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if cfg.LLM.APIKey == "" {
		return fmt.Errorf("no API key: set GEMINI_API_KEY or llm.api_key in %s", configPath)
	}

	bundle := fixtures.NewBundle(target, cfg.Agent.FixtureRoot)
	if missing := bundle.Check(); len(missing) > 0 {
		return fmt.Errorf("missing fixtures for %s:\n  %s", target, strings.Join(missing, "\n  "))
	}

	runID := uuid.New().String()
	logger.Info("starting refinement loop",
		zap.String("run_id", runID),
		zap.String("target", target),
		zap.Int("max_attempts", cfg.Agent.MaxAttempts),
		zap.String("model", cfg.LLM.Model))

	sample, err := pdftext.Sample(bundle.SamplePDF(), cfg.Agent.SampleLimit)
	if err != nil {
		// The loop can still work from the expected CSV alone.
		logger.Warn("PDF text extraction failed", zap.Error(err))
	}

	head, err := bundle.ExpectedHead(promptHeadRows)
	if err != nil {
		return err
	}

	client, err := llm.NewGeminiClient(llm.GeminiConfig{
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.GetLLMTimeout(),
	})
	if err != nil {
		return err
	}
	defer client.Close()

	runner := &validator.Runner{
		Command:       validatorCommand(cfg),
		SuccessMarker: cfg.Validator.SuccessMarker,
		Timeout:       cfg.GetValidatorTimeout(),
		Dir:           workspace,
	}

	writer := &agent.ArtifactWriter{ParserDir: cfg.Agent.ParserDir}
	prompts := &agent.PromptBuilder{
		Target:       target,
		Language:     cfg.Agent.Language,
		Columns:      bundle.SchemaColumns(),
		PDFSample:    sample,
		ExpectedHead: head,
	}

	loop := agent.NewLoop(agent.LoopConfig{
		Target:      target,
		MaxAttempts: cfg.Agent.MaxAttempts,
		OnAttemptStart: func(attempt, max int) {
			fmt.Println(ux.AttemptHeader(attempt, max))
		},
		OnVerdict: func(a agent.Attempt) {
			fmt.Println(ux.Verdict(string(a.Verdict), a.Duration.Round(timeRounding).String()))
		},
	}, client, runner, writer, prompts)

	res, err := loop.Run(ctx)
	if err != nil {
		reason := err.Error()
		if errors.Is(err, agent.ErrExhausted) {
			reason = fmt.Sprintf("retry budget of %d exhausted", cfg.Agent.MaxAttempts)
		}
		fmt.Println(ux.FailureBanner(target, reason))
		logger.Error("loop failed",
			zap.String("run_id", runID),
			zap.String("state", string(res.State)),
			zap.Int("attempts", len(res.Attempts)))
		return err
	}

	fmt.Println(ux.SuccessBanner(target, res.ArtifactPath))
	logger.Info("loop succeeded",
		zap.String("run_id", runID),
		zap.Int("attempts", len(res.Attempts)))
	return nil
}

// validatorCommand returns the configured argv template, defaulting to
// self-execution of the built-in harness.
func validatorCommand(cfg *config.Config) []string {
	if len(cfg.Validator.Command) > 0 {
		return cfg.Validator.Command
	}
	exe, err := os.Executable()
	if err != nil {
		exe = "parsewright"
	}
	argv := []string{exe, "verify", "{target}"}
	if configPath != config.DefaultConfigPath {
		argv = append(argv, "--config", configPath)
	}
	return argv
}
