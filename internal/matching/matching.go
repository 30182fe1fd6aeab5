package matching

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	defaultJobID = "job-1"
	jobIDPrefix  = "job-"
)

// ErrAnalysisFailed is returned by analyzers for any failure of the remote call.
// Its message is the only text shown to the user.
var ErrAnalysisFailed = errors.New("failed to analyze job matches, please try again")

type JobDescription struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type MissingSkill struct {
	Skill   string `json:"skill"`
	Context string `json:"context"`
}

type MatchResult struct {
	JobID           string         `json:"jobId"`
	JobTitle        string         `json:"jobTitle"`
	MatchPercentage float64        `json:"matchPercentage"`
	Summary         string         `json:"summary"`
	MatchingSkills  []string       `json:"matchingSkills"`
	MissingSkills   []MissingSkill `json:"missingSkills"`
}

// Analyzer scores a resume against all jobs with a single remote call.
// Implementations return results in the order the remote service produced them.
type Analyzer interface {
	Analyze(ctx context.Context, resume string, jobs []JobDescription) ([]MatchResult, error)
}

// NewJob returns a blank job with a freshly generated id.
func NewJob() JobDescription {
	return JobDescription{ID: jobIDPrefix + uuid.NewString()}
}

// DefaultJobs is the job list used when nothing usable was persisted.
func DefaultJobs() []JobDescription {
	return []JobDescription{{ID: defaultJobID}}
}

// CloneJobs returns a copy that can be handed out without sharing the backing array.
func CloneJobs(jobs []JobDescription) []JobDescription {
	if jobs == nil {
		return nil
	}
	out := make([]JobDescription, len(jobs))
	copy(out, jobs)
	return out
}

// FindJob returns the job with the given id.
func FindJob(jobs []JobDescription, id string) (JobDescription, bool) {
	for _, job := range jobs {
		if job.ID == id {
			return job, true
		}
	}
	return JobDescription{}, false
}

const (
	BandStrong = "strong"
	BandFair   = "fair"
	BandWeak   = "weak"
)

// ScoreBand buckets a match percentage the same way the result view colours it.
func ScoreBand(pct float64) string {
	switch {
	case pct >= 80:
		return BandStrong
	case pct >= 60:
		return BandFair
	default:
		return BandWeak
	}
}

func (r MatchResult) String() string {
	return fmt.Sprintf("%s (%s): %.0f%%", strings.TrimSpace(r.JobTitle), r.JobID, r.MatchPercentage)
}
