package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/job-matcher/internal/matching"
)

// EncodeJobs serializes the job list for the jobs slot.
func EncodeJobs(jobs []matching.JobDescription) (string, error) {
	if jobs == nil {
		jobs = []matching.JobDescription{}
	}
	data, err := json.Marshal(jobs)
	if err != nil {
		return "", fmt.Errorf("marshal jobs: %w", err)
	}
	return string(data), nil
}

// DecodeJobs never fails: absent, malformed or empty data yields the default list.
func DecodeJobs(raw string, ok bool) []matching.JobDescription {
	jobs, err := decodeJobs(raw, ok)
	if err != nil || len(jobs) == 0 {
		return matching.DefaultJobs()
	}
	return jobs
}

func decodeJobs(raw string, ok bool) ([]matching.JobDescription, error) {
	if !ok || raw == "" {
		return nil, nil
	}
	var jobs []matching.JobDescription
	if err := json.Unmarshal([]byte(raw), &jobs); err != nil {
		return nil, fmt.Errorf("unmarshal jobs: %w", err)
	}
	return jobs, nil
}

// Snapshot is what survives between sessions.
type Snapshot struct {
	Resume string
	Jobs   []matching.JobDescription
}

// LoadState reads both slots. Read and parse errors are logged and treated as absent.
func LoadState(ctx context.Context, store Store, logger *zap.Logger) Snapshot {
	if logger == nil {
		logger = zap.NewNop()
	}

	var snap Snapshot

	resume, _, err := store.Load(ctx, KeyResume)
	if err != nil {
		logger.Warn("loading stored resume", zap.Error(err))
		resume = ""
	}
	snap.Resume = resume

	rawJobs, ok, err := store.Load(ctx, KeyJobs)
	if err != nil {
		logger.Warn("loading stored jobs", zap.Error(err))
		ok = false
	}
	if _, err := decodeJobs(rawJobs, ok); err != nil {
		logger.Warn("stored jobs are malformed, falling back to defaults", zap.Error(err))
	}
	snap.Jobs = DecodeJobs(rawJobs, ok)

	return snap
}
