package scoring

import (
	"fmt"
	"strings"

	"hirehub-ranking/internal/domain/ports/adapter"
)

const systemPrompt = `You are an experienced technical recruiter. Score how well one candidate's resume fits one job.
Return a single JSON object and nothing else, with these fields:
total_score, technical_score, experience_score, education_score, soft_skills_score (numbers 0-100),
technical_strengths, technical_gaps, experience_strengths, experience_gaps,
education_strengths, education_gaps (arrays of short strings), analysis (two or three sentences).
Judge only what the resume states. Do not reward keyword stuffing.`

func buildUserPrompt(job adapter.JobProfile, resume string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Job: %s\n\n", job.Title)
	if job.Description != "" {
		b.WriteString(job.Description)
		b.WriteString("\n\n")
	}
	writeList(&b, "Requirements", job.Requirements)
	writeList(&b, "Skills", job.Skills)
	b.WriteString("# Resume\n\n")
	b.WriteString(resume)
	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n", title)
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", it)
	}
	b.WriteString("\n")
}
