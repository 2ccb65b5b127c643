package engine

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/visitlens/visitlens/internal/domain"
)

const analyzeSystemPrompt = `Analyze this website content and extract key information.
Return a JSON object with these exact keys:
{
  "topics": ["topic1", "topic2", ...],
  "audience": ["audience1", "audience2", ...],
  "sections": ["section1", "section2", ...]
}
IMPORTANT: Return only the JSON object, no markdown formatting or backticks.`

const questionSystemPrompt = `You are a website visitor classifier.
Generate relevant questions to understand visitor interests or industry based on the website's content.

Rules:
1. Questions should be specific to the website content
2. Options should be based on actual content topics and sections
3. Include 3-5 distinct, specific options
4. Never repeat previous questions
5. Make questions progressively more specific based on previous answers
6. Keep language neutral and professional

Return in this exact JSON format without any markdown:
{
    "question": "Your specific question here?",
    "options": ["Specific Option 1", "Specific Option 2", "Specific Option 3", "Specific Option 4"]
}`

const classifySystemPrompt = `You are analyzing a user's website interaction.
Create a detailed classification that includes their specific interests or industry and relevant content details.

Rules:
1. Describe interests or industry based on their specific responses and interactions
2. For relevant_sections, provide 2-3 detailed content summaries that directly relate to their
   expressed interests, include specific details from the website content, and are written as
   complete, informative sentences

Return in this JSON format:
{
    "interests": ["user's primary interest or industry in short phrases"],
    "relevant_sections": ["Detailed summary of specific relevant content"]
}
Do not include any markdown, code snippets, or explanations. Return only the JSON object.`

const shouldClassifyPrompt = `Analyze these user responses and determine if we have enough specific
information to generate a meaningful classification of their interests or industry.

Return true only if:
1. Responses show clear interest or industry in specific topics
2. We have enough context to identify relevant content sections
3. Additional questions would not significantly improve understanding

Return only 'true' or 'false'`

// OpenAI implements Engine against the OpenAI chat completion API.
type OpenAI struct {
	client              *openai.Client
	contentModel        string
	questionModel       string
	classificationModel string
	logger              zerolog.Logger
}

// NewOpenAI creates an Engine backed by the OpenAI API.
func NewOpenAI(apiKey, contentModel, questionModel, classificationModel string) *OpenAI {
	return &OpenAI{
		client:              openai.NewClient(apiKey),
		contentModel:        contentModel,
		questionModel:       questionModel,
		classificationModel: classificationModel,
		logger:              log.With().Str("component", "engine").Logger(),
	}
}

func (o *OpenAI) complete(ctx context.Context, model, system, user string, temperature float32) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}

var errNoChoices = &emptyCompletionError{}

type emptyCompletionError struct{}

func (*emptyCompletionError) Error() string { return "engine: completion returned no choices" }

// AnalyzeContent summarizes page text. Failures degrade to a generic
// analysis so a dialogue can still start.
func (o *OpenAI) AnalyzeContent(ctx context.Context, content string) (domain.ContentAnalysis, error) {
	if content == "" {
		return defaultAnalysis(), nil
	}

	raw, err := o.complete(ctx, o.contentModel, analyzeSystemPrompt, content, 0.7)
	if err != nil {
		o.logger.Error().Err(err).Msg("content analysis failed, using default")
		return defaultAnalysis(), nil
	}

	analysis, err := decodeAnalysis(raw)
	if err != nil {
		o.logger.Error().Err(err).Msg("content analysis undecodable, using default")
		return defaultAnalysis(), nil
	}

	return analysis, nil
}

// NextQuestion generates the next clarifying question.
func (o *OpenAI) NextQuestion(ctx context.Context, analysis domain.ContentAnalysis, previous []domain.QA) (domain.Question, error) {
	contextBlob, err := json.MarshalIndent(map[string]any{
		"content_analysis":   analysis,
		"previous_responses": previous,
	}, "", "  ")
	if err != nil {
		return firstFallbackQuestion(), nil
	}

	var sb strings.Builder
	sb.WriteString("Context: ")
	sb.Write(contextBlob)
	sb.WriteString("\n\nGenerate a natural follow-up question based on the website's content and user's journey.\n")
	if len(previous) == 0 {
		sb.WriteString("This is the first question: focus on understanding their primary interest or industry.")
	} else {
		sb.WriteString("Explore deeper based on their previous answer: " + previous[len(previous)-1].Answer)
	}

	raw, err := o.complete(ctx, o.questionModel, questionSystemPrompt, sb.String(), 0.7)
	if err != nil {
		o.logger.Error().Err(err).Msg("question generation failed, using fallback")
		return o.fallbackFor(previous), nil
	}

	q, err := decodeQuestion(raw)
	if err != nil {
		o.logger.Error().Err(err).Str("raw", raw).Msg("generated question invalid, using fallback")
		return o.fallbackFor(previous), nil
	}

	return q, nil
}

func (o *OpenAI) fallbackFor(previous []domain.QA) domain.Question {
	if len(previous) == 0 {
		return firstFallbackQuestion()
	}
	return followupFallbackQuestion()
}

// ShouldClassify asks the model whether another question would add signal.
// On failure it defaults to classifying once two answers exist.
func (o *OpenAI) ShouldClassify(ctx context.Context, analysis domain.ContentAnalysis, responses []domain.QA) (bool, error) {
	blob, err := json.Marshal(map[string]any{
		"content_analysis": analysis,
		"responses":        responses,
	})
	if err != nil {
		return len(responses) >= 2, nil
	}

	raw, err := o.complete(ctx, o.questionModel, shouldClassifyPrompt, string(blob), 0.3)
	if err != nil {
		o.logger.Error().Err(err).Msg("classification decision failed, using response-count default")
		return len(responses) >= 2, nil
	}

	return strings.EqualFold(strings.TrimSpace(raw), "true"), nil
}

// Classify produces the terminal classification, degrading to a focused
// fallback built from the visitor's answers when the model output fails
// validation.
func (o *OpenAI) Classify(ctx context.Context, analysis domain.ContentAnalysis, responses []domain.QA) (domain.Classification, error) {
	analysisBlob, _ := json.MarshalIndent(analysis, "", "  ")
	responsesBlob, _ := json.MarshalIndent(responses, "", "  ")

	user := "Context:\nContent Analysis: " + string(analysisBlob) +
		"\nUser Responses: " + string(responsesBlob) +
		"\n\nCreate a focused classification that accurately describes their specific interests" +
		" based on their responses and provides detailed summaries of the most relevant content."

	raw, err := o.complete(ctx, o.classificationModel, classifySystemPrompt, user, 0.7)
	if err != nil {
		o.logger.Error().Err(err).Msg("classification failed, using focused fallback")
		return fallbackClassification(analysis, responses), nil
	}

	c, err := decodeClassification(raw)
	if err != nil {
		o.logger.Error().Err(err).Msg("classification invalid, using focused fallback")
		return fallbackClassification(analysis, responses), nil
	}

	return c, nil
}
