package headhunter

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/spigell/job-matcher/internal/matching"
)

type Vacancies struct {
	Items []*Vacancy
}

type Vacancy struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
	Employer struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"employer,omitempty"`
	AlternateURL string `json:"alternate_url,omitempty"`
	Description  string `json:"description,omitempty"`
	KeySkills    []struct {
		Name string `json:"name,omitempty"`
	} `json:"key_skills,omitempty"`
	Snippet struct {
		Requirement    string `json:"requirement,omitempty"`
		Responsibility string `json:"responsibility,omitempty"`
	} `json:"snippet,omitempty"`
}

func (v *Vacancies) Len() int {
	return len(v.Items)
}

func (v *Vacancies) IDs() []string {
	ids := make([]string, 0, len(v.Items))
	for _, vacancy := range v.Items {
		ids = append(ids, vacancy.ID)
	}
	return ids
}

// ExcludeEmployers drops vacancies posted by the given employer ids and returns the dropped vacancy ids.
func (v *Vacancies) ExcludeEmployers(employers []string) []string {
	if len(employers) == 0 {
		return nil
	}

	skip := make(map[string]struct{}, len(employers))
	for _, id := range employers {
		skip[id] = struct{}{}
	}

	var removed []string
	kept := v.Items[:0]
	for _, vacancy := range v.Items {
		if _, ok := skip[vacancy.Employer.ID]; ok {
			removed = append(removed, vacancy.ID)
			continue
		}
		kept = append(kept, vacancy)
	}
	v.Items = kept

	return removed
}

// Title is the job title shown in the form: the vacancy name plus the employer.
func (va *Vacancy) Title() string {
	if va.Employer.Name == "" {
		return strings.TrimSpace(va.Name)
	}
	return fmt.Sprintf("%s (%s)", strings.TrimSpace(va.Name), strings.TrimSpace(va.Employer.Name))
}

// Text renders the HTML description as plain text and appends key skills.
func (va *Vacancy) Text() (string, error) {
	description := va.Description
	if description == "" {
		description = strings.TrimSpace(va.Snippet.Requirement + "\n" + va.Snippet.Responsibility)
	}

	text, err := htmlToText(description)
	if err != nil {
		return "", fmt.Errorf("vacancy %s description: %w", va.ID, err)
	}

	if len(va.KeySkills) > 0 {
		skills := make([]string, 0, len(va.KeySkills))
		for _, s := range va.KeySkills {
			skills = append(skills, s.Name)
		}
		text = strings.TrimSpace(text + "\n\nKey skills: " + strings.Join(skills, ", "))
	}

	if va.AlternateURL != "" {
		text = strings.TrimSpace(text + "\n\nSource: " + va.AlternateURL)
	}

	return text, nil
}

// ToJob converts the vacancy into a job description without an id.
func (va *Vacancy) ToJob() (matching.JobDescription, error) {
	text, err := va.Text()
	if err != nil {
		return matching.JobDescription{}, err
	}
	return matching.JobDescription{Title: va.Title(), Description: text}, nil
}

var blockElements = "p, li, br, div, h1, h2, h3, h4, h5, h6, tr"

func htmlToText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	doc.Find("li").Each(func(_ int, s *goquery.Selection) {
		s.PrependHtml("- ")
	})
	doc.Find(blockElements).Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	lines := strings.Split(doc.Text(), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n"), nil
}
