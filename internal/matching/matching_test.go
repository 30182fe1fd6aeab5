package matching

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	filled := []JobDescription{{ID: "a", Title: "Go Developer", Description: "Build services"}}

	tests := []struct {
		name    string
		resume  string
		jobs    []JobDescription
		wantErr string
	}{
		{name: "valid", resume: "Go, Kubernetes", jobs: filled},
		{name: "empty resume", resume: "", jobs: filled, wantErr: msgIncompleteInput},
		{name: "whitespace resume", resume: " \n\t", jobs: filled, wantErr: msgIncompleteInput},
		{name: "no jobs", resume: "Go", jobs: nil, wantErr: msgNoJobs},
		{
			name:    "blank title",
			resume:  "Go",
			jobs:    append(filled, JobDescription{ID: "b", Title: "  ", Description: "x"}),
			wantErr: msgIncompleteInput,
		},
		{
			name:    "blank description",
			resume:  "Go",
			jobs:    []JobDescription{{ID: "b", Title: "SRE", Description: ""}},
			wantErr: msgIncompleteInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := Validate(tt.resume, tt.jobs)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !IsValidationError(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if err.Error() != tt.wantErr {
				t.Fatalf("expected %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestSortByMatchIsStableDescending(t *testing.T) {
	results := []MatchResult{
		{JobID: "a", MatchPercentage: 42},
		{JobID: "b", MatchPercentage: 91},
		{JobID: "c", MatchPercentage: 91},
	}

	SortByMatch(results)

	got := make([]string, 0, len(results))
	for _, r := range results {
		got = append(got, r.JobID)
	}

	if strings.Join(got, ",") != "b,c,a" {
		t.Fatalf("unexpected order: %v", got)
	}
}

func TestValidateResults(t *testing.T) {
	t.Parallel()

	valid := MatchResult{
		JobID:           "a",
		JobTitle:        "Go Developer",
		MatchPercentage: 75,
		MatchingSkills:  []string{"Go"},
		MissingSkills:   []MissingSkill{{Skill: "Rust", Context: "Used for the storage engine."}},
	}

	if err := ValidateResults([]MatchResult{valid}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := ValidateResults([]MatchResult{}); err != nil {
		t.Fatalf("empty array should be accepted: %v", err)
	}

	if err := ValidateResults(nil); err == nil {
		t.Fatal("expected error for nil results")
	}

	broken := []func(r *MatchResult){
		func(r *MatchResult) { r.JobID = "" },
		func(r *MatchResult) { r.MatchPercentage = 120 },
		func(r *MatchResult) { r.MatchPercentage = -1 },
		func(r *MatchResult) { r.MatchingSkills = nil },
		func(r *MatchResult) { r.MissingSkills = nil },
		func(r *MatchResult) { r.MissingSkills = []MissingSkill{{Skill: "Rust"}} },
	}

	for i, mutate := range broken {
		r := valid
		r.MissingSkills = append([]MissingSkill(nil), valid.MissingSkills...)
		mutate(&r)
		if err := ValidateResults([]MatchResult{r}); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}

func TestNewJobGeneratesUniqueIDs(t *testing.T) {
	first := NewJob()
	second := NewJob()

	if first.ID == second.ID {
		t.Fatalf("expected unique ids, got %q twice", first.ID)
	}
	if !strings.HasPrefix(first.ID, jobIDPrefix) {
		t.Fatalf("unexpected id format: %q", first.ID)
	}
	if first.Title != "" || first.Description != "" {
		t.Fatalf("expected blank job, got %+v", first)
	}
}

func TestScoreBand(t *testing.T) {
	cases := map[float64]string{100: BandStrong, 80: BandStrong, 79.9: BandFair, 60: BandFair, 59: BandWeak, 0: BandWeak}
	for pct, want := range cases {
		if got := ScoreBand(pct); got != want {
			t.Fatalf("ScoreBand(%v) = %q, want %q", pct, got, want)
		}
	}
}
