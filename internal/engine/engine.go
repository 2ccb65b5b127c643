// Package engine generates clarifying questions and the final interest
// classification from scraped page content. The OpenAI implementation is
// best-effort: every operation degrades to a deterministic fallback rather
// than failing the dialogue.
package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/visitlens/visitlens/internal/domain"
)

// Engine produces questions and classifications for one dialogue.
type Engine interface {
	// AnalyzeContent summarizes raw page text into topics, audience and
	// sections.
	AnalyzeContent(ctx context.Context, content string) (domain.ContentAnalysis, error)

	// NextQuestion generates a follow-up question given the analysis and
	// the answers so far. previous is empty for the first question.
	NextQuestion(ctx context.Context, analysis domain.ContentAnalysis, previous []domain.QA) (domain.Question, error)

	// ShouldClassify reports whether enough signal exists to classify now
	// instead of asking another question.
	ShouldClassify(ctx context.Context, analysis domain.ContentAnalysis, responses []domain.QA) (bool, error)

	// Classify produces the terminal classification.
	Classify(ctx context.Context, analysis domain.ContentAnalysis, responses []domain.QA) (domain.Classification, error)
}

// defaultAnalysis is served when content analysis fails outright.
func defaultAnalysis() domain.ContentAnalysis {
	return domain.ContentAnalysis{
		Topics:   []string{"General Content"},
		Audience: []string{"Website Visitors"},
		Sections: []string{"Main Content"},
	}
}

// firstFallbackQuestion opens the dialogue when question generation fails
// before anything has been asked.
func firstFallbackQuestion() domain.Question {
	return domain.Question{
		Text: "What interests you about this website?",
		Options: []string{
			"Products and Features",
			"Company Information",
			"Support and Help",
			"Other",
		},
	}
}

// followupFallbackQuestion keeps the dialogue moving when generation fails
// mid-conversation.
func followupFallbackQuestion() domain.Question {
	return domain.Question{
		Text: "What specific information are you looking for on this website?",
		Options: []string{
			"More details about what was mentioned",
			"Different topic or section",
			"Specific features or capabilities",
			"Additional information",
		},
	}
}

// fallbackClassification derives a focused classification from the last
// answer and any analysis sections that mention it.
func fallbackClassification(analysis domain.ContentAnalysis, responses []domain.QA) domain.Classification {
	if len(responses) == 0 {
		return domain.Classification{
			Interests:        []string{"Interest in specific product features and capabilities"},
			RelevantSections: []string{"Advanced features and capabilities designed for optimal performance."},
		}
	}

	mainInterest := responses[len(responses)-1].Answer

	var relevant []string
	keywords := strings.Fields(strings.ToLower(mainInterest))
	for _, section := range analysis.Sections {
		lower := strings.ToLower(section)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				relevant = append(relevant, section)
				break
			}
		}
		if len(relevant) == 2 {
			break
		}
	}

	if len(relevant) == 0 {
		relevant = []string{
			"Latest features include advanced performance capabilities and innovative technology integrations.",
			"Comprehensive functionality offering enhanced user experience and productivity improvements.",
		}
	}

	return domain.Classification{
		Interests:        []string{fmt.Sprintf("Interest in %s and related content", mainInterest)},
		RelevantSections: relevant,
		PrimaryInterest:  mainInterest,
	}
}
