package headhunter

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := New(zap.NewNop(), "")
	c.APIURL = srv.URL
	return c
}

func TestGetVacancyConvertsToJob(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/vacancies/42" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "" {
			t.Errorf("anonymous client must not send authorization header")
		}
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		defer gz.Close()
		_ = json.NewEncoder(gz).Encode(map[string]any{
			"id":            "42",
			"name":          "Go Developer",
			"employer":      map[string]any{"id": "1", "name": "Acme"},
			"alternate_url": "https://hh.ru/vacancy/42",
			"description":   "<p>We build <strong>payments</strong>.</p><ul><li>Go</li><li>PostgreSQL</li></ul>",
			"key_skills":    []map[string]string{{"name": "Go"}, {"name": "gRPC"}},
		})
	})

	vacancy, err := c.GetVacancy(context.Background(), "42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	job, err := vacancy.ToJob()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if job.Title != "Go Developer (Acme)" {
		t.Fatalf("unexpected title: %q", job.Title)
	}

	for _, want := range []string{"We build payments.", "- Go", "- PostgreSQL", "Key skills: Go, gRPC", "Source: https://hh.ru/vacancy/42"} {
		if !strings.Contains(job.Description, want) {
			t.Fatalf("expected description to contain %q, got:\n%s", want, job.Description)
		}
	}
	if strings.Contains(job.Description, "<") {
		t.Fatalf("expected html to be stripped: %s", job.Description)
	}
}

func TestGetVacancyBadStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	})

	if _, err := c.GetVacancy(context.Background(), "1"); err == nil {
		t.Fatal("expected error for bad status")
	}
}

func TestSearchPagesUntilLimit(t *testing.T) {
	requests := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		if got := r.URL.Query().Get("text"); got != "golang" {
			t.Errorf("unexpected text param %q", got)
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		items := []map[string]any{
			{"id": fmt.Sprintf("%d-a", page), "name": "A"},
			{"id": fmt.Sprintf("%d-b", page), "name": "B"},
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": items, "found": 10, "pages": 5, "page": page, "per_page": 2,
		})
	})

	vacancies, err := c.Search(context.Background(), &SearchParams{Text: "golang", Limit: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if vacancies.Len() != 3 {
		t.Fatalf("expected 3 vacancies, got %d", vacancies.Len())
	}
	if requests != 2 {
		t.Fatalf("expected 2 page requests, got %d", requests)
	}
	if ids := strings.Join(vacancies.IDs(), ","); ids != "0-a,0-b,1-a" {
		t.Fatalf("unexpected ids: %s", ids)
	}
}

func TestSearchRequiresText(t *testing.T) {
	c := New(nil, "")
	if _, err := c.Search(context.Background(), &SearchParams{}); err == nil {
		t.Fatal("expected error without search text")
	}
}

func TestExcludeEmployers(t *testing.T) {
	v := &Vacancies{Items: []*Vacancy{{ID: "1"}, {ID: "2"}, {ID: "3"}}}
	v.Items[0].Employer.ID = "acme"
	v.Items[1].Employer.ID = "globex"
	v.Items[2].Employer.ID = "acme"

	removed := v.ExcludeEmployers([]string{"acme"})

	if strings.Join(removed, ",") != "1,3" {
		t.Fatalf("unexpected removed ids: %v", removed)
	}
	if strings.Join(v.IDs(), ",") != "2" {
		t.Fatalf("unexpected remaining ids: %v", v.IDs())
	}
	if got := v.ExcludeEmployers(nil); got != nil {
		t.Fatalf("expected nothing removed, got %v", got)
	}
}
