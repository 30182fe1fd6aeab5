package gemini

import "google.golang.org/genai"

var resultFields = []string{"jobId", "jobTitle", "matchPercentage", "summary", "matchingSkills", "missingSkills"}

func float64Ptr(v float64) *float64 { return &v }

// matchResultsSchema mirrors matching.MatchResult. Every field is required.
func matchResultsSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"jobId": {
					Type:        genai.TypeString,
					Description: "The id of the job, copied from the input.",
				},
				"jobTitle": {
					Type:        genai.TypeString,
					Description: "The title of the job, copied from the input.",
				},
				"matchPercentage": {
					Type:        genai.TypeNumber,
					Description: "How well the resume matches the job, from 0 to 100.",
					Minimum:     float64Ptr(0),
					Maximum:     float64Ptr(100),
				},
				"summary": {
					Type:        genai.TypeString,
					Description: "A concise explanation of the match percentage.",
				},
				"matchingSkills": {
					Type:        genai.TypeArray,
					Description: "Up to 5 key skills present in both the resume and the job.",
					Items:       &genai.Schema{Type: genai.TypeString},
				},
				"missingSkills": {
					Type:        genai.TypeArray,
					Description: "Up to 5 key skills required by the job but missing from the resume.",
					Items: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"skill": {
								Type:        genai.TypeString,
								Description: "The missing skill.",
							},
							"context": {
								Type:        genai.TypeString,
								Description: "One sentence on why this skill matters for the job.",
							},
						},
						Required:         []string{"skill", "context"},
						PropertyOrdering: []string{"skill", "context"},
					},
				},
			},
			Required:         resultFields,
			PropertyOrdering: resultFields,
		},
	}
}
