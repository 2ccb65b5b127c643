package engine

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/visitlens/visitlens/internal/domain"
)

// stripFences removes markdown code fences and stray backticks the model
// sometimes wraps around JSON despite instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	s = strings.Trim(s, "`")
	return strings.TrimSpace(s)
}

// decodeQuestion parses and validates a generated question.
func decodeQuestion(raw string) (domain.Question, error) {
	var q domain.Question
	if err := json.Unmarshal([]byte(stripFences(raw)), &q); err != nil {
		return domain.Question{}, fmt.Errorf("engine.decodeQuestion: %w", err)
	}
	if q.Text == "" {
		return domain.Question{}, fmt.Errorf("engine.decodeQuestion: missing question text")
	}
	if len(q.Options) < 3 {
		return domain.Question{}, fmt.Errorf("engine.decodeQuestion: %d options, want >= 3", len(q.Options))
	}
	return q, nil
}

// decodeAnalysis parses a content analysis response.
func decodeAnalysis(raw string) (domain.ContentAnalysis, error) {
	var a domain.ContentAnalysis
	if err := json.Unmarshal([]byte(stripFences(raw)), &a); err != nil {
		return domain.ContentAnalysis{}, fmt.Errorf("engine.decodeAnalysis: %w", err)
	}
	if len(a.Topics) == 0 {
		return domain.ContentAnalysis{}, fmt.Errorf("engine.decodeAnalysis: no topics")
	}
	return a, nil
}

// genericPhrases disqualify a classification section as filler.
var genericPhrases = []string{
	"the website provides",
	"information about",
	"contains information",
}

// decodeClassification parses a classification response and rejects
// low-quality output: missing fields, generic filler, or sections too short
// to be a real summary.
func decodeClassification(raw string) (domain.Classification, error) {
	var c domain.Classification
	if err := json.Unmarshal([]byte(stripFences(raw)), &c); err != nil {
		return domain.Classification{}, fmt.Errorf("engine.decodeClassification: %w", err)
	}
	if len(c.Interests) == 0 || len(c.RelevantSections) == 0 {
		return domain.Classification{}, fmt.Errorf("engine.decodeClassification: missing interests or sections")
	}
	for _, section := range c.RelevantSections {
		if len(section) < 50 {
			return domain.Classification{}, fmt.Errorf("engine.decodeClassification: section too short")
		}
		lower := strings.ToLower(section)
		for _, phrase := range genericPhrases {
			if strings.Contains(lower, phrase) {
				return domain.Classification{}, fmt.Errorf("engine.decodeClassification: generic section")
			}
		}
	}
	return c, nil
}
