package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/Gopalakrishnan-va/job-search-agent-langgraph/internal/ai/gemini"
	"github.com/Gopalakrishnan-va/job-search-agent-langgraph/internal/apify"
	"github.com/Gopalakrishnan-va/job-search-agent-langgraph/internal/logger"
	"github.com/Gopalakrishnan-va/job-search-agent-langgraph/internal/metering"
	"github.com/Gopalakrishnan-va/job-search-agent-langgraph/internal/pipeline"
	"github.com/Gopalakrishnan-va/job-search-agent-langgraph/internal/profile"
	"github.com/Gopalakrishnan-va/job-search-agent-langgraph/internal/scoring"
	"github.com/Gopalakrishnan-va/job-search-agent-langgraph/internal/secrets"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var runCmd = &cobra.Command{
	Use:   "run [resume-file]",
	Short: "Search for jobs matching the given resume and score them",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		resumeFile := ""
		if len(args) > 0 {
			resumeFile = args[0]
		}
		run(cmd, resumeFile)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation before scoring found jobs")
	runCmd.Flags().StringP("output", "o", "", "write the result JSON to this file instead of stdout")
	runCmd.Flags().StringP("location", "l", "", "preferred job location, overrides the one from the resume")
	runCmd.Flags().StringP("work-mode", "w", "", "work mode preference: Remote, Hybrid, On-site or Any")
	runCmd.Flags().Int("radius", 0, "search radius in miles around the location")
	runCmd.Flags().Int("min-salary", 0, "minimum yearly salary in USD")

	viper.BindPFlag("search.location", runCmd.Flags().Lookup("location"))
	viper.BindPFlag("search.work-mode", runCmd.Flags().Lookup("work-mode"))
	viper.BindPFlag("search.radius", runCmd.Flags().Lookup("radius"))
	viper.BindPFlag("search.min-salary", runCmd.Flags().Lookup("min-salary"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command, resumeFile string) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config == nil {
		config = &Config{}
	}

	logger.Info("starting the job-search-agent", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	prefs := config.Search
	if prefs == nil {
		prefs = &pipeline.SearchPreferences{}
	}
	if prefs.WorkMode != "" && !profile.ValidWorkMode(prefs.WorkMode) {
		logger.Fatal("invalid work mode preference",
			zap.String("work-mode", prefs.WorkMode),
			zap.Strings("accepted", profile.WorkModes),
		)
	}

	resume, err := resolveResume(config, resumeFile)
	if err != nil {
		logger.Fatal(
			"loading the resume",
			zap.Error(err),
			zap.String("hint", "pass a resume file argument or set the 'resume-file' or 'resume-text' key in the configuration file"),
		)
	}

	if provider := config.AI.providerName(); provider != "" && provider != "gemini" {
		logger.Fatal("unsupported ai provider", zap.String("provider", provider))
	}

	apifyToken, err := resolveApifyToken(config)
	if err != nil {
		logger.Fatal(
			"loading apify token",
			zap.Error(err),
			zap.String("hint", "set the APIFY_TOKEN or APIFY_TOKEN_FILE environment variable or the 'apify.token' key in the configuration file"),
		)
	}

	geminiKey, err := resolveGeminiKey(config)
	if err != nil {
		logger.Fatal(
			"loading gemini api key",
			zap.Error(err),
			zap.String("hint", "set the GEMINI_API_KEY or GEMINI_API_KEY_FILE environment variable or the 'ai.gemini.api-key' key in the configuration file"),
		)
	}

	gcfg := config.AI.geminiConfig()
	completer, err := gemini.New(ctx, geminiKey, gcfg.Model, gcfg.MaxRetries, logger)
	if err != nil {
		logger.Fatal("creating the gemini client", zap.Error(err))
	}

	logger.Info("using gemini model", zap.String("model", completer.Model()))

	client := apify.New(apifyToken, logger)

	var meter metering.Meter
	datasetID := viper.GetString("apify.dataset-id")
	if datasetID != "" {
		meter = metering.NewDatasetMeter(client, datasetID, logger)
	} else {
		meter = metering.NewLogMeter(logger)
	}

	var approver pipeline.Approver
	if autoApprove, _ := cmd.Flags().GetBool("auto-approve"); !autoApprove {
		approver = &promptApprover{logger: logger}
	}

	p := pipeline.New(pipeline.Deps{
		Analyzer: profile.NewAnalyzer(completer, meter, gcfg.MaxLogLength, logger),
		Fetcher:  apify.NewFetcher(client, logger),
		Scorer:   scoring.NewScorer(completer, meter, &scoring.Config{MaxLogLength: gcfg.MaxLogLength}, logger),
		Meter:    meter,
		Approver: approver,
		Logger:   logger,
	})

	envelope, err := p.Run(ctx, resume, prefs)
	if err != nil {
		if errors.Is(err, pipeline.ErrAborted) {
			logger.Info("exiting", zap.String("reason", "got no from prompt"))
			return
		}
		logger.Fatal("running the search", zap.Error(err))
	}

	if err := writeResult(cmd, envelope); err != nil {
		logger.Fatal("writing the result", zap.Error(err))
	}
}

// geminiConfig returns the gemini settings with nil intermediate sections
// flattened away.
func (c *AIConfig) geminiConfig() GeminiConfig {
	if c == nil || c.Gemini == nil {
		return GeminiConfig{}
	}
	return *c.Gemini
}

func (c *AIConfig) providerName() string {
	if c == nil {
		return ""
	}
	return strings.TrimSpace(strings.ToLower(c.Provider))
}

// resolveResume picks the resume text from the file argument, the configured
// resume file or the inline config text, in that order.
func resolveResume(config *Config, resumeFile string) (string, error) {
	if resumeFile == "" {
		resumeFile = strings.TrimSpace(config.ResumeFile)
	}

	if resumeFile != "" {
		data, err := os.ReadFile(resumeFile)
		if err != nil {
			return "", fmt.Errorf("reading resume file %q: %w", resumeFile, err)
		}
		return string(data), nil
	}

	if text := strings.TrimSpace(config.ResumeText); text != "" {
		return text, nil
	}

	return "", errors.New("resume is not configured")
}

func resolveApifyToken(config *Config) (string, error) {
	src := secrets.Source{Name: "apify token"}
	if config.Apify != nil {
		src.Value = config.Apify.Token
		src.File = config.Apify.TokenFile
	}
	if src.Value == "" {
		src.Value = viper.GetString("apify.token")
	}
	if src.File == "" {
		src.File = viper.GetString("apify.token-file")
	}
	return secrets.Load(src)
}

func resolveGeminiKey(config *Config) (string, error) {
	src := secrets.Source{Name: "gemini api key"}
	if config.AI != nil && config.AI.Gemini != nil {
		src.Value = config.AI.Gemini.APIKey
		src.File = config.AI.Gemini.APIKeyFile
	}
	if src.Value == "" {
		src.Value = viper.GetString("ai.gemini.api-key")
	}
	if src.File == "" {
		src.File = viper.GetString("ai.gemini.api-key-file")
	}
	return secrets.Load(src)
}

// promptApprover asks for confirmation on the terminal before the billable
// scoring phase starts.
type promptApprover struct {
	logger *zap.Logger
}

func (a *promptApprover) Approve(_ context.Context, jobCount int) (bool, error) {
	a.logger.Info("jobs ready for scoring", zap.Int("count", jobCount))

	prompt := promptui.Select{
		Label: fmt.Sprintf("Score %d jobs with AI?", jobCount),
		Items: []string{PromptYes, PromptNo},
	}

	_, answer, err := prompt.Run()
	if err != nil {
		return false, err
	}

	return answer == PromptYes, nil
}

func writeResult(cmd *cobra.Command, envelope *pipeline.ResultEnvelope) error {
	pretty, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	pretty = append(pretty, '\n')

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		_, err = os.Stdout.Write(pretty)
		return err
	}

	if err := os.WriteFile(output, pretty, 0o644); err != nil {
		return fmt.Errorf("write result file: %w", err)
	}

	return nil
}
