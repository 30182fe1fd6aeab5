package headhunter

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/mitchellh/mapstructure"
)

const (
	SearchPath = "/vacancies"
)

type SearchParams struct {
	Text       string `mapstructure:"text"`
	Areas      []int  `mapstructure:"area"`
	Experience string `mapstructure:"experience"`
	Period     uint   `mapstructure:"period"`
	// Limit caps the number of returned vacancies.
	Limit int `mapstructure:"limit"`
}

func (p *SearchParams) values() url.Values {
	q := url.Values{}
	if p.Text != "" {
		q.Set("text", p.Text)
	}
	for _, area := range p.Areas {
		q.Add("area", strconv.Itoa(area))
	}
	if p.Experience != "" {
		q.Set("experience", p.Experience)
	}
	if p.Period > 0 {
		q.Set("period", strconv.FormatUint(uint64(p.Period), 10))
	}
	perPageValue := perPage
	if p.Limit > 0 && p.Limit < perPage {
		perPageValue = p.Limit
	}
	q.Set("per_page", strconv.Itoa(perPageValue))
	return q
}

// Search returns vacancy previews. Previews carry no description; use GetVacancy for that.
func (c *Client) Search(ctx context.Context, params *SearchParams) (*Vacancies, error) {
	if params == nil || params.Text == "" {
		return nil, fmt.Errorf("search text is required")
	}

	items, err := c.GetItems(ctx, c.APIURL+SearchPath, params.values(), params.Limit)
	if err != nil {
		return nil, fmt.Errorf("search vacancies: %w", err)
	}

	var vacancies []*Vacancy
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &vacancies,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(items); err != nil {
		return nil, fmt.Errorf("decode vacancies: %w", err)
	}

	return &Vacancies{Items: vacancies}, nil
}
