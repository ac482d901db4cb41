package profile

import (
	"context"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/Gopalakrishnan-va/job-search-agent-langgraph/internal/ai"
	"github.com/Gopalakrishnan-va/job-search-agent-langgraph/internal/metering"
	"github.com/Gopalakrishnan-va/job-search-agent-langgraph/internal/util"

	"go.uber.org/zap"
)

//go:embed prompt.md
var promptTemplate string

//go:embed schema.json
var profileSchema string

const defaultMaxLogLength = 200

// Analyzer turns free-text resumes into candidate profiles with a single
// structured-extraction call to the language model.
type Analyzer struct {
	completer ai.Completer
	meter     metering.Meter
	logger    *zap.Logger
	maxLogLen int
}

func NewAnalyzer(completer ai.Completer, meter metering.Meter, maxLogLength int, logger *zap.Logger) *Analyzer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Analyzer{
		completer: completer,
		meter:     meter,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// Analyze extracts the candidate profile from the resume text. A resume that
// cannot be parsed aborts the run: unlike scoring there is no safe fallback.
// The resume_parse event is charged only when extraction succeeds.
func (a *Analyzer) Analyze(ctx context.Context, resumeText string) (*CandidateProfile, error) {
	resumeText = strings.TrimSpace(resumeText)
	if resumeText == "" {
		return nil, ErrEmptyResume
	}

	prompt := strings.ReplaceAll(promptTemplate, "{{RESUME_TEXT}}", resumeText)

	a.logger.Debug("resume extraction request",
		zap.Int("resume_length", utf8.RuneCountInString(resumeText)),
		zap.String("prompt_preview", util.TruncateForLog(prompt, a.maxLogLen)),
	)

	raw, err := a.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, &ExtractionError{Cause: err}
	}

	a.logger.Debug("resume extraction response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", util.TruncateForLog(raw, a.maxLogLen)),
	)

	var parsed CandidateProfile
	if err := ai.DecodeStructured(raw, profileSchema, &parsed); err != nil {
		return nil, &ExtractionError{Cause: err, Raw: raw}
	}

	// An empty skill list is unusual but not an error: the pipeline still
	// proceeds and scoring works from the remaining profile fields.
	if parsed.Skills == nil {
		parsed.Skills = []string{}
	}

	a.meter.Emit(ctx, metering.EventResumeParse)

	a.logger.Info("resume parsed",
		zap.String("desired_role", parsed.DesiredRole),
		zap.Int("skills", len(parsed.Skills)),
	)

	return &parsed, nil
}
