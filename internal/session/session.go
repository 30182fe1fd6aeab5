package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/job-matcher/internal/debounce"
	"github.com/spigell/job-matcher/internal/matching"
	"github.com/spigell/job-matcher/internal/storage"
)

// ErrBusy is returned when an analysis is already in flight.
var ErrBusy = errors.New("analysis is already running")

// Field names a mutable part of a job.
type Field string

const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
)

func ParseField(s string) (Field, error) {
	switch f := Field(s); f {
	case FieldTitle, FieldDescription:
		return f, nil
	default:
		return "", fmt.Errorf("unknown job field %q (expected %q or %q)", s, FieldTitle, FieldDescription)
	}
}

// State is a point-in-time copy of the form model.
type State struct {
	Resume    string                    `json:"resume"`
	Jobs      []matching.JobDescription `json:"jobs"`
	Results   []matching.MatchResult    `json:"results"`
	IsLoading bool                      `json:"isLoading"`
	Error     *string                   `json:"error"`
}

type Option func(*Controller)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDebounce sets the quiet period before edits are persisted.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) { c.delay = d }
}

// WithDebounceOptions passes options to both persistence debouncers.
func WithDebounceOptions(opts ...debounce.Option) Option {
	return func(c *Controller) { c.debounceOpts = append(c.debounceOpts, opts...) }
}

// Controller owns the form model and is safe for concurrent use.
type Controller struct {
	analyzer matching.Analyzer
	store    storage.Store
	logger   *zap.Logger

	delay        time.Duration
	debounceOpts []debounce.Option
	resumeSaver  *debounce.Debouncer
	jobsSaver    *debounce.Debouncer

	mu        sync.Mutex
	resume    string
	jobs      []matching.JobDescription
	results   []matching.MatchResult
	isLoading bool
	errMsg    *string
}

// New restores résumé and jobs from the store and returns a ready controller.
func New(ctx context.Context, analyzer matching.Analyzer, store storage.Store, opts ...Option) *Controller {
	c := &Controller{
		analyzer: analyzer,
		store:    store,
		logger:   zap.NewNop(),
		delay:    debounce.DefaultDelay,
		results:  []matching.MatchResult{},
	}
	for _, opt := range opts {
		opt(c)
	}

	c.resumeSaver = debounce.New(c.delay, c.debounceOpts...)
	c.jobsSaver = debounce.New(c.delay, c.debounceOpts...)

	snap := storage.LoadState(ctx, store, c.logger)
	c.resume = snap.Resume
	c.jobs = snap.Jobs

	return c
}

func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := State{
		Resume:    c.resume,
		Jobs:      matching.CloneJobs(c.jobs),
		Results:   append([]matching.MatchResult{}, c.results...),
		IsLoading: c.isLoading,
	}
	if c.errMsg != nil {
		msg := *c.errMsg
		state.Error = &msg
	}
	return state
}

func (c *Controller) SetResume(text string) {
	c.mu.Lock()
	c.resume = text
	c.mu.Unlock()

	c.resumeSaver.Trigger(c.persistResume)
}

func (c *Controller) AddJob() matching.JobDescription {
	return c.AddJobWith("", "")
}

// AddJobWith appends a job with a fresh id and the given content.
func (c *Controller) AddJobWith(title, description string) matching.JobDescription {
	job := matching.NewJob()
	job.Title = title
	job.Description = description

	c.mu.Lock()
	c.jobs = append(c.jobs, job)
	c.mu.Unlock()

	c.jobsSaver.Trigger(c.persistJobs)
	return job
}

// RemoveJob drops the job with id. Removing the last job is allowed.
func (c *Controller) RemoveJob(id string) bool {
	c.mu.Lock()
	idx := c.indexOf(id)
	if idx == -1 {
		c.mu.Unlock()
		return false
	}
	jobs := make([]matching.JobDescription, 0, len(c.jobs)-1)
	jobs = append(jobs, c.jobs[:idx]...)
	c.jobs = append(jobs, c.jobs[idx+1:]...)
	c.mu.Unlock()

	c.jobsSaver.Trigger(c.persistJobs)
	return true
}

// UpdateJob replaces one field of the job. It reports false when id is unknown.
func (c *Controller) UpdateJob(id string, field Field, value string) (bool, error) {
	if _, err := ParseField(string(field)); err != nil {
		return false, err
	}

	c.mu.Lock()
	idx := c.indexOf(id)
	if idx == -1 {
		c.mu.Unlock()
		return false, nil
	}
	jobs := matching.CloneJobs(c.jobs)
	switch field {
	case FieldTitle:
		jobs[idx].Title = value
	case FieldDescription:
		jobs[idx].Description = value
	}
	c.jobs = jobs
	c.mu.Unlock()

	c.jobsSaver.Trigger(c.persistJobs)
	return true, nil
}

// JobByID looks up a job for the full-description view of a result.
func (c *Controller) JobByID(id string) (matching.JobDescription, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return matching.FindJob(c.jobs, id)
}

func (c *Controller) indexOf(id string) int {
	for i, job := range c.jobs {
		if job.ID == id {
			return i
		}
	}
	return -1
}

// Submit validates the form and runs one analysis.
//
// A validation failure sets the error and keeps previous results. Otherwise
// results are cleared before the call, replaced by the sorted results on
// success, and left empty on failure. The loading flag is always cleared.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.isLoading {
		c.mu.Unlock()
		return ErrBusy
	}

	if err := matching.Validate(c.resume, c.jobs); err != nil {
		c.setError(err.Error())
		c.mu.Unlock()
		return err
	}

	resume := c.resume
	jobs := matching.CloneJobs(c.jobs)
	c.errMsg = nil
	c.isLoading = true
	c.results = []matching.MatchResult{}
	c.mu.Unlock()

	c.logger.Info("starting job match analysis", zap.Int("jobs", len(jobs)))
	started := time.Now()

	results, err := c.analyze(ctx, resume, jobs)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.isLoading = false

	if err != nil {
		c.logger.Debug("job match analysis failed", zap.Error(err))
		c.setError(matching.ErrAnalysisFailed.Error())
		if errors.Is(err, matching.ErrAnalysisFailed) {
			return err
		}
		return fmt.Errorf("%w: %w", matching.ErrAnalysisFailed, err)
	}

	matching.SortByMatch(results)
	c.results = results

	c.logger.Info("job match analysis finished",
		zap.Int("results", len(results)),
		zap.Duration("took", time.Since(started)),
	)
	return nil
}

func (c *Controller) analyze(ctx context.Context, resume string, jobs []matching.JobDescription) ([]matching.MatchResult, error) {
	if c.analyzer == nil {
		return nil, errors.New("analyzer is not configured")
	}

	results, err := c.analyzer.Analyze(ctx, resume, jobs)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []matching.MatchResult{}
	}
	return results, nil
}

func (c *Controller) setError(msg string) {
	c.errMsg = &msg
}

func (c *Controller) persistResume() {
	c.mu.Lock()
	value := c.resume
	c.mu.Unlock()

	if err := c.store.Save(context.Background(), storage.KeyResume, value); err != nil {
		c.logger.Warn("saving resume", zap.Error(err))
		return
	}
	c.logger.Debug("resume saved", zap.Int("length", len(value)))
}

func (c *Controller) persistJobs() {
	c.mu.Lock()
	jobs := matching.CloneJobs(c.jobs)
	c.mu.Unlock()

	raw, err := storage.EncodeJobs(jobs)
	if err != nil {
		c.logger.Warn("encoding jobs", zap.Error(err))
		return
	}
	if err := c.store.Save(context.Background(), storage.KeyJobs, raw); err != nil {
		c.logger.Warn("saving jobs", zap.Error(err))
		return
	}
	c.logger.Debug("jobs saved", zap.Int("count", len(jobs)))
}

// Flush writes pending edits now instead of waiting for the quiet period.
func (c *Controller) Flush() {
	c.resumeSaver.Flush()
	c.jobsSaver.Flush()
}

// Close flushes pending edits and stops both timers.
func (c *Controller) Close() {
	c.Flush()
	c.Discard()
}

// Discard stops both timers without writing pending edits.
func (c *Controller) Discard() {
	c.resumeSaver.Stop()
	c.jobsSaver.Stop()
}
