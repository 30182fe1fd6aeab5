package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/job-matcher/internal/matching"
	"github.com/spigell/job-matcher/internal/utils"
)

type jsonGenerator interface {
	GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (string, error)
}

// Analyzer implements matching.Analyzer on top of Gemini. All jobs go out in one request.
type Analyzer struct {
	generator jsonGenerator
	logger    *zap.Logger
	maxLogLen int
}

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

func NewAnalyzer(generator jsonGenerator, maxLogLength int, logger *zap.Logger) *Analyzer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Analyzer{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// Analyze returns results in the order the model produced them.
// Every failure is logged and reported as matching.ErrAnalysisFailed.
func (a *Analyzer) Analyze(ctx context.Context, resume string, jobs []matching.JobDescription) ([]matching.MatchResult, error) {
	results, err := a.analyze(ctx, resume, jobs)
	if err != nil {
		a.logger.Error("job match analysis failed", zap.Int("jobs", len(jobs)), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", matching.ErrAnalysisFailed, err)
	}
	return results, nil
}

func (a *Analyzer) analyze(ctx context.Context, resume string, jobs []matching.JobDescription) ([]matching.MatchResult, error) {
	if a.generator == nil {
		return nil, errors.New("gemini generator is not configured")
	}

	prompt, err := buildPrompt(resume, jobs)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("gemini generate content request",
		zap.Int("jobs", len(jobs)),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, a.maxLogLen)),
	)

	raw, err := a.generator.GenerateJSON(ctx, prompt, matchResultsSchema())
	if err != nil {
		return nil, err
	}

	a.logger.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
	)

	results, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	for _, r := range results {
		if _, ok := matching.FindJob(jobs, r.JobID); !ok {
			a.logger.Warn("model returned a result for an unknown job", zap.String("job_id", r.JobID))
		}
	}

	return results, nil
}

type jobPayload struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func buildPrompt(resume string, jobs []matching.JobDescription) (string, error) {
	payload := make([]jobPayload, 0, len(jobs))
	for _, job := range jobs {
		payload = append(payload, jobPayload{ID: job.ID, Title: job.Title, Description: job.Description})
	}

	jobsJSON, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal jobs payload: %w", err)
	}

	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Resume:\n{{RESUME}}\n\nJobs:\n{{JOBS_JSON}}\n\nJSON Response:"
	}

	// Jobs first: the resume is user text and may itself contain the placeholder.
	prompt := strings.ReplaceAll(template, "{{JOBS_JSON}}", string(jobsJSON))
	prompt = strings.Replace(prompt, "{{RESUME}}", resume, 1)
	return prompt, nil
}

type rawMissingSkill struct {
	Skill   *string `json:"skill"`
	Context *string `json:"context"`
}

type rawResult struct {
	JobID           *string           `json:"jobId"`
	JobTitle        *string           `json:"jobTitle"`
	MatchPercentage *float64          `json:"matchPercentage"`
	Summary         *string           `json:"summary"`
	MatchingSkills  []string          `json:"matchingSkills"`
	MissingSkills   []rawMissingSkill `json:"missingSkills"`
}

// parseResponse accepts only a JSON array whose items carry every MatchResult field.
func parseResponse(raw string) ([]matching.MatchResult, error) {
	cleaned := extractJSON(raw)
	if cleaned == "" {
		return nil, errors.New("empty gemini response")
	}

	var items []rawResult
	if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}
	if items == nil {
		return nil, errors.New("gemini response is not an array")
	}

	results := make([]matching.MatchResult, 0, len(items))
	for i, item := range items {
		if item.JobID == nil || item.JobTitle == nil || item.MatchPercentage == nil || item.Summary == nil ||
			item.MatchingSkills == nil || item.MissingSkills == nil {
			return nil, fmt.Errorf("result %d: missing required fields", i)
		}

		missing := make([]matching.MissingSkill, 0, len(item.MissingSkills))
		for j, m := range item.MissingSkills {
			if m.Skill == nil || m.Context == nil {
				return nil, fmt.Errorf("result %d: missing skill %d needs skill and context", i, j)
			}
			missing = append(missing, matching.MissingSkill{
				Skill:   strings.TrimSpace(*m.Skill),
				Context: strings.TrimSpace(*m.Context),
			})
		}

		results = append(results, matching.MatchResult{
			JobID:           strings.TrimSpace(*item.JobID),
			JobTitle:        strings.TrimSpace(*item.JobTitle),
			MatchPercentage: *item.MatchPercentage,
			Summary:         strings.TrimSpace(*item.Summary),
			MatchingSkills:  item.MatchingSkills,
			MissingSkills:   missing,
		})
	}

	if err := matching.ValidateResults(results); err != nil {
		return nil, err
	}

	return results, nil
}

// extractJSON strips markdown code fences the model sometimes adds despite the instructions.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	return strings.TrimSpace(raw)
}
