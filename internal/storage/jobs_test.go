package storage

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/job-matcher/internal/matching"
)

func TestJobsRoundTrip(t *testing.T) {
	jobs := []matching.JobDescription{
		{ID: "job-1", Title: "Go Developer", Description: "Build APIs\nwith Go"},
		{ID: "job-2", Title: "SRE", Description: "Kubernetes, \"Terraform\""},
	}

	raw, err := EncodeJobs(jobs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	decoded := DecodeJobs(raw, true)
	if !reflect.DeepEqual(decoded, jobs) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", decoded, jobs)
	}
}

func TestDecodeJobsFallsBackToDefault(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  string
		ok   bool
	}{
		{name: "absent", ok: false},
		{name: "empty string", raw: "", ok: true},
		{name: "malformed", raw: "{not json", ok: true},
		{name: "wrong shape", raw: `{"id":"job-1"}`, ok: true},
		{name: "empty list", raw: "[]", ok: true},
		{name: "null", raw: "null", ok: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := DecodeJobs(tc.raw, tc.ok)
			if !reflect.DeepEqual(got, matching.DefaultJobs()) {
				t.Fatalf("expected default jobs, got %+v", got)
			}
		})
	}
}

type failingStore struct{}

func (failingStore) Load(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk on fire")
}

func (failingStore) Save(context.Context, string, string) error { return nil }

func TestLoadStateToleratesBrokenStorage(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)

	snap := LoadState(context.Background(), failingStore{}, zap.New(core))

	if snap.Resume != "" {
		t.Fatalf("expected empty resume, got %q", snap.Resume)
	}
	if !reflect.DeepEqual(snap.Jobs, matching.DefaultJobs()) {
		t.Fatalf("expected default jobs, got %+v", snap.Jobs)
	}
	if observed.Len() != 2 {
		t.Fatalf("expected 2 warnings, got %d", observed.Len())
	}
}

func TestLoadStateReadsSlots(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	jobs := []matching.JobDescription{{ID: "job-7", Title: "Data Engineer", Description: "Spark"}}
	raw, err := EncodeJobs(jobs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Save(ctx, KeyJobs, raw); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Save(ctx, KeyResume, "X"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := LoadState(ctx, store, nil)
	if snap.Resume != "X" {
		t.Fatalf("expected resume X, got %q", snap.Resume)
	}
	if !reflect.DeepEqual(snap.Jobs, jobs) {
		t.Fatalf("unexpected jobs: %+v", snap.Jobs)
	}
}

func TestLoadStateMalformedJobsIsWarnedNotFatal(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	_ = store.Save(ctx, KeyJobs, "[{broken")

	core, observed := observer.New(zapcore.WarnLevel)
	snap := LoadState(ctx, store, zap.New(core))

	if !reflect.DeepEqual(snap.Jobs, matching.DefaultJobs()) {
		t.Fatalf("expected default jobs, got %+v", snap.Jobs)
	}
	if observed.FilterMessage("stored jobs are malformed, falling back to defaults").Len() != 1 {
		t.Fatalf("expected malformed warning, got %v", observed.All())
	}
}
