package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/sashabaranov/go-openai"

	"github.com/umputun/dcwatch/pkg/config"
	"github.com/umputun/dcwatch/pkg/domain"
)

// ErrInvalidClassification returned when the model reply doesn't satisfy the classification contract
var ErrInvalidClassification = errors.New("invalid classification")

// ErrDisabled returned when no api key configured
var ErrDisabled = errors.New("classification disabled")

const (
	clipTranscriptBudget    = 30000
	meetingTranscriptBudget = 60000
	descriptionBudget       = 4000
	noTranscript            = "(no transcript available)"
)

// Classifier uses LLM to classify data center mentions
type Classifier struct {
	client      *openai.Client
	config      config.LLMConfig
	replySchema string
}

// Request is a single mention to classify
type Request struct {
	Title       string
	Description string
	SourceName  string
	Transcript  string // empty when not available
	Bucket      domain.Bucket
}

// NewClassifier creates a new LLM classifier
func NewClassifier(cfg config.LLMConfig) *Classifier {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientConfig.BaseURL = cfg.Endpoint
	}
	if cfg.Timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Classifier{
		client:      openai.NewClientWithConfig(clientConfig),
		config:      cfg,
		replySchema: replySchemaJSON(),
	}
}

const systemPrompt = `You are a news classifier for a data center monitoring service. You read news articles, video descriptions, video transcripts and social posts about data centers in the United States and extract structured facts.

Importance criteria:
- high: active opposition (protests, petitions), upcoming votes or hearings, new major announcements, lawsuits filed
- medium: general coverage of existing projects, routine permit updates, environmental studies released
- low: passing mentions, opinion pieces, industry analysis without local specifics

Relevance score is an integer from 1 to 10 telling how much the item is about a specific US data center project or local decision. 10 means the item is entirely about such a project, 1 means data centers are barely mentioned or the location can't be determined.

Respond ONLY with a single JSON object, no markdown and no commentary.`

// Classify sends a single mention to the model and returns validated classification.
// Reply violating the contract gives an error wrapping ErrInvalidClassification.
func (c *Classifier) Classify(ctx context.Context, req Request) (*domain.Classification, error) {
	if c.config.APIKey == "" {
		return nil, ErrDisabled
	}

	chatReq := openai.ChatCompletionRequest{
		Model:       c.config.Model,
		Temperature: float32(c.config.Temperature),
		MaxTokens:   c.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: c.buildPrompt(req)},
		},
	}
	if c.config.UseJSONMode {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("llm request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from llm")
	}

	res, err := parseReply(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidClassification, err)
	}
	return res, nil
}

// buildPrompt creates bucket specific user prompt
func (c *Classifier) buildPrompt(req Request) string {
	transcriptBudget, summarySpec := clipTranscriptBudget, "2-3 sentence plain-English summary of the key points"
	if req.Bucket == domain.BucketPublicMeeting {
		transcriptBudget = meetingTranscriptBudget
		summarySpec = "4-6 sentence summary of the meeting covering decisions made, votes taken " +
			"and the main speakers for and against the data center"
	}

	topics := make([]string, 0, len(domain.Topics))
	for _, t := range domain.Topics {
		topics = append(topics, string(t))
	}

	var sb strings.Builder
	sb.WriteString("Extract from the item below:\n")
	sb.WriteString("1. location: the US city, county and state where the data center activity happens; ")
	sb.WriteString("state is a two-letter code, city and county are null when unknown\n")
	sb.WriteString("2. companies: companies involved (developers, operators, utilities), empty array if none\n")
	sb.WriteString("3. govEntities: government bodies involved (boards, commissions, councils), empty array if none\n")
	sb.WriteString(fmt.Sprintf("4. topics: one or more of: %s\n", strings.Join(topics, ", ")))
	sb.WriteString("5. importance: high, medium or low\n")
	sb.WriteString(fmt.Sprintf("6. summary: %s\n", summarySpec))
	sb.WriteString("7. relevanceScore: integer from 1 to 10\n\n")

	sb.WriteString("Reply JSON schema:\n")
	sb.WriteString(c.replySchema)
	sb.WriteString("\n\n")

	if req.Bucket == domain.BucketPublicMeeting {
		sb.WriteString("Item type: recording of a public government meeting\n")
	}
	sb.WriteString(fmt.Sprintf("Title: %s\n", req.Title))
	if req.SourceName != "" {
		sb.WriteString(fmt.Sprintf("Source: %s\n", req.SourceName))
	}
	sb.WriteString(fmt.Sprintf("Description:\n%s\n\n", truncate(req.Description, descriptionBudget)))

	transcript := noTranscript
	if strings.TrimSpace(req.Transcript) != "" {
		transcript = truncate(req.Transcript, transcriptBudget)
	}
	sb.WriteString(fmt.Sprintf("Transcript:\n%s\n", transcript))
	return sb.String()
}

// reply describes the expected model answer, used to render json schema for the prompt
type reply struct {
	Location struct {
		City   *string `json:"city" jsonschema:"description=City name or null"`
		County *string `json:"county" jsonschema:"description=County name or null"`
		State  string  `json:"state" jsonschema:"description=Two-letter US state code,minLength=2,maxLength=2"`
	} `json:"location"`
	Companies      []string `json:"companies"`
	GovEntities    []string `json:"govEntities"`
	Topics         []string `json:"topics" jsonschema:"minItems=1,enum=zoning,enum=opposition,enum=environmental,enum=announcement,enum=government,enum=legal"`
	Importance     string   `json:"importance" jsonschema:"enum=high,enum=medium,enum=low"`
	Summary        string   `json:"summary" jsonschema:"minLength=1"`
	RelevanceScore int      `json:"relevanceScore" jsonschema:"minimum=1,maximum=10"`
}

func replySchemaJSON() string {
	r := &jsonschema.Reflector{DoNotReference: true, ExpandedStruct: true}
	schema := r.Reflect(&reply{})
	schema.Version = ""
	data, err := json.Marshal(schema)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// wireReply keeps raw fields so type mismatches are detected instead of zeroed
type wireReply struct {
	Location *struct {
		City   *string `json:"city"`
		County *string `json:"county"`
		State  *string `json:"state"`
	} `json:"location"`
	Companies      json.RawMessage `json:"companies"`
	GovEntities    json.RawMessage `json:"govEntities"`
	Topics         json.RawMessage `json:"topics"`
	Importance     *string         `json:"importance"`
	Summary        *string         `json:"summary"`
	RelevanceScore json.RawMessage `json:"relevanceScore"`
}

// parseReply converts model text to Classification, the first '{' to the last '}' span is decoded
func parseReply(content string) (*domain.Classification, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || start >= end {
		return nil, errors.New("no json object found in response")
	}

	var w wireReply
	if err := json.Unmarshal([]byte(content[start:end+1]), &w); err != nil {
		return nil, fmt.Errorf("failed to parse json object: %w", err)
	}

	res := domain.Classification{}

	if w.Location == nil || w.Location.State == nil {
		return nil, errors.New("location state is missing")
	}
	state, err := domain.ParseState(*w.Location.State)
	if err != nil {
		return nil, err
	}
	res.Location = domain.Place{State: state, City: optString(w.Location.City), County: optString(w.Location.County)}

	if res.Companies, err = stringList("companies", w.Companies); err != nil {
		return nil, err
	}
	if res.GovEntities, err = stringList("govEntities", w.GovEntities); err != nil {
		return nil, err
	}

	rawTopics, err := stringList("topics", w.Topics)
	if err != nil {
		return nil, err
	}
	if len(rawTopics) == 0 {
		return nil, errors.New("topics are missing")
	}
	for _, t := range rawTopics {
		topic, err := domain.ParseTopic(t)
		if err != nil {
			return nil, err
		}
		res.Topics = append(res.Topics, topic)
	}

	if w.Importance == nil {
		return nil, errors.New("importance is missing")
	}
	if res.Importance, err = domain.ParseImportance(*w.Importance); err != nil {
		return nil, err
	}

	if w.Summary == nil || strings.TrimSpace(*w.Summary) == "" {
		return nil, errors.New("summary is empty")
	}
	res.Summary = strings.TrimSpace(*w.Summary)

	if res.RelevanceScore, err = relevanceScore(w.RelevanceScore); err != nil {
		return nil, err
	}
	return &res, nil
}

// stringList decodes a required array of strings, null and missing are rejected
func stringList(name string, raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("%s is missing", name)
	}
	var res []string
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("%s is not an array of strings", name)
	}
	out := make([]string, 0, len(res))
	for _, s := range res {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

// relevanceScore accepts json numbers with integer value in 1..10
func relevanceScore(raw json.RawMessage) (int, error) {
	if len(raw) == 0 {
		return 0, errors.New("relevanceScore is missing")
	}
	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("relevanceScore %s is not a number", raw)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("relevanceScore %s is not an integer", raw)
	}
	if f < 1 || f > 10 {
		return 0, fmt.Errorf("relevanceScore %s out of range", raw)
	}
	return int(f), nil
}

func optString(s *string) string {
	if s == nil {
		return ""
	}
	v := strings.TrimSpace(*s)
	if strings.EqualFold(v, "null") || strings.EqualFold(v, "unknown") {
		return ""
	}
	return v
}

// truncate limits text to n runes
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
