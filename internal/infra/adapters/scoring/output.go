package scoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"hirehub-ranking/internal/domain"
	"hirehub-ranking/internal/domain/model"
)

// analysisSchema is the shape every provider must return for one candidate.
const analysisSchema = `{
  "type": "object",
  "required": ["total_score", "technical_score", "experience_score", "education_score", "soft_skills_score"],
  "properties": {
    "candidateId":          {"type": "string"},
    "total_score":          {"type": "number", "minimum": 0, "maximum": 100},
    "technical_score":      {"type": "number", "minimum": 0, "maximum": 100},
    "experience_score":     {"type": "number", "minimum": 0, "maximum": 100},
    "education_score":      {"type": "number", "minimum": 0, "maximum": 100},
    "soft_skills_score":    {"type": "number", "minimum": 0, "maximum": 100},
    "technical_strengths":  {"type": "array", "items": {"type": "string"}},
    "technical_gaps":       {"type": "array", "items": {"type": "string"}},
    "experience_strengths": {"type": "array", "items": {"type": "string"}},
    "experience_gaps":      {"type": "array", "items": {"type": "string"}},
    "education_strengths":  {"type": "array", "items": {"type": "string"}},
    "education_gaps":       {"type": "array", "items": {"type": "string"}},
    "analysis":             {"type": "string"}
  }
}`

var compiledSchema = mustCompile(analysisSchema)

func mustCompile(src string) *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("analysis.json", bytes.NewReader([]byte(src))); err != nil {
		panic(fmt.Sprintf("add schema: %v", err))
	}
	s, err := c.Compile("analysis.json")
	if err != nil {
		panic(fmt.Sprintf("compile schema: %v", err))
	}
	return s
}

type candidateAnalysis struct {
	CandidateID         string   `json:"candidateId"`
	TotalScore          float64  `json:"total_score"`
	TechnicalScore      float64  `json:"technical_score"`
	ExperienceScore     float64  `json:"experience_score"`
	EducationScore      float64  `json:"education_score"`
	SoftSkillsScore     float64  `json:"soft_skills_score"`
	TechnicalStrengths  []string `json:"technical_strengths"`
	TechnicalGaps       []string `json:"technical_gaps"`
	ExperienceStrengths []string `json:"experience_strengths"`
	ExperienceGaps      []string `json:"experience_gaps"`
	EducationStrengths  []string `json:"education_strengths"`
	EducationGaps       []string `json:"education_gaps"`
	Analysis            string   `json:"analysis"`
}

func (c candidateAnalysis) toResult(candidateID string) *model.ScoreResult {
	return &model.ScoreResult{
		CandidateID: candidateID,
		Score:       c.TotalScore,
		Analysis: model.Analysis{
			Technical:       model.CategoryScore{Score: c.TechnicalScore, Strengths: nonNil(c.TechnicalStrengths), Gaps: nonNil(c.TechnicalGaps)},
			Experience:      model.CategoryScore{Score: c.ExperienceScore, Strengths: nonNil(c.ExperienceStrengths), Gaps: nonNil(c.ExperienceGaps)},
			Education:       model.CategoryScore{Score: c.EducationScore, Strengths: nonNil(c.EducationStrengths), Gaps: nonNil(c.EducationGaps)},
			SoftSkillsScore: c.SoftSkillsScore,
			Summary:         c.Analysis,
		},
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// parseAnalysis validates raw model output and converts it into a ScoreResult.
func parseAnalysis(raw []byte, candidateID string) (*model.ScoreResult, error) {
	raw = stripFences(raw)
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidScoreOutput, err)
	}
	if err := compiledSchema.Validate(v); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidScoreOutput, err)
	}
	var out candidateAnalysis
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidScoreOutput, err)
	}
	return out.toResult(candidateID), nil
}

// stripFences drops a ```json fence some models wrap around their answer.
func stripFences(raw []byte) []byte {
	s := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(s, "```") {
		return []byte(s)
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return []byte(strings.TrimSpace(s))
}
