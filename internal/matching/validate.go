package matching

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

const (
	msgIncompleteInput = "Please fill in your resume and all job titles and descriptions."
	msgNoJobs          = "Please add at least one job description."
)

// ValidationError describes input that must be fixed before an analysis can run.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// IsValidationError reports whether err carries a ValidationError.
func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

// Validate checks the form before anything is sent to the analyzer.
// Blank means empty after trimming whitespace.
func Validate(resume string, jobs []JobDescription) error {
	if strings.TrimSpace(resume) == "" {
		return &ValidationError{Message: msgIncompleteInput}
	}
	if len(jobs) == 0 {
		return &ValidationError{Message: msgNoJobs}
	}
	for _, job := range jobs {
		if strings.TrimSpace(job.Title) == "" || strings.TrimSpace(job.Description) == "" {
			return &ValidationError{Message: msgIncompleteInput}
		}
	}
	return nil
}

// ValidateResults checks the shape of analyzer output.
func ValidateResults(results []MatchResult) error {
	if results == nil {
		return errors.New("results must be an array")
	}
	for i, r := range results {
		if strings.TrimSpace(r.JobID) == "" {
			return fmt.Errorf("result %d: jobId is required", i)
		}
		if math.IsNaN(r.MatchPercentage) || r.MatchPercentage < 0 || r.MatchPercentage > 100 {
			return fmt.Errorf("result %d: matchPercentage %v out of range", i, r.MatchPercentage)
		}
		if r.MatchingSkills == nil {
			return fmt.Errorf("result %d: matchingSkills is required", i)
		}
		if r.MissingSkills == nil {
			return fmt.Errorf("result %d: missingSkills is required", i)
		}
		for j, m := range r.MissingSkills {
			if strings.TrimSpace(m.Skill) == "" || strings.TrimSpace(m.Context) == "" {
				return fmt.Errorf("result %d: missing skill %d needs skill and context", i, j)
			}
		}
	}
	return nil
}

// SortByMatch orders results best match first. Equal scores keep their order.
func SortByMatch(results []MatchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchPercentage > results[j].MatchPercentage
	})
}
