package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/dcwatch/pkg/config"
	"github.com/umputun/dcwatch/pkg/domain"
)

const validReply = `{
  "location": {"city": "Ashburn", "county": "Loudoun County", "state": "VA"},
  "companies": ["Amazon Web Services", "Dominion Energy"],
  "govEntities": ["Loudoun County Board of Supervisors"],
  "topics": ["zoning", "opposition"],
  "importance": "high",
  "summary": "The board voted 5-4 to approve rezoning for a 1.2 million sq ft campus. Residents plan to appeal.",
  "relevanceScore": 9
}`

func newTestServer(t *testing.T, content string, check func(req openai.ChatCompletionRequest)) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if check != nil {
			check(req)
		}

		resp := openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: content}}},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestClassifier_Classify(t *testing.T) {
	server := newTestServer(t, "Here is the classification:\n```json\n"+validReply+"\n```", func(req openai.ChatCompletionRequest) {
		assert.Equal(t, "gpt-4o-mini", req.Model)
		assert.Equal(t, 1024, req.MaxTokens)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
		assert.Contains(t, req.Messages[1].Content, "Title: County approves data center")
		assert.Contains(t, req.Messages[1].Content, "Source: Loudoun Times")
		assert.Contains(t, req.Messages[1].Content, "relevanceScore")
		assert.Contains(t, req.Messages[1].Content, noTranscript)
		assert.Nil(t, req.ResponseFormat)
	})
	defer server.Close()

	c := NewClassifier(config.LLMConfig{Endpoint: server.URL + "/v1", APIKey: "test-key", Model: "gpt-4o-mini",
		Temperature: 0.2, MaxTokens: 1024})
	res, err := c.Classify(context.Background(), Request{Title: "County approves data center",
		Description: "Board vote", SourceName: "Loudoun Times"})
	require.NoError(t, err)

	assert.Equal(t, domain.Place{City: "Ashburn", County: "Loudoun County", State: "VA"}, res.Location)
	assert.Equal(t, []string{"Amazon Web Services", "Dominion Energy"}, res.Companies)
	assert.Equal(t, []string{"Loudoun County Board of Supervisors"}, res.GovEntities)
	assert.Equal(t, []domain.Topic{domain.TopicZoning, domain.TopicOpposition}, res.Topics)
	assert.Equal(t, domain.ImportanceHigh, res.Importance)
	assert.Contains(t, res.Summary, "voted 5-4")
	assert.Equal(t, 9, res.RelevanceScore)
}

func TestClassifier_JSONMode(t *testing.T) {
	server := newTestServer(t, validReply, func(req openai.ChatCompletionRequest) {
		require.NotNil(t, req.ResponseFormat)
		assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, req.ResponseFormat.Type)
	})
	defer server.Close()

	c := NewClassifier(config.LLMConfig{Endpoint: server.URL + "/v1", APIKey: "test-key", Model: "m", UseJSONMode: true})
	res, err := c.Classify(context.Background(), Request{Title: "t"})
	require.NoError(t, err)
	assert.Equal(t, 9, res.RelevanceScore)
}

func TestClassifier_InvalidReply(t *testing.T) {
	server := newTestServer(t, `{"location":{"state":"ZZ"},"topics":["zoning"],"importance":"high","summary":"s","relevanceScore":8}`, nil)
	defer server.Close()

	c := NewClassifier(config.LLMConfig{Endpoint: server.URL + "/v1", APIKey: "test-key", Model: "m"})
	_, err := c.Classify(context.Background(), Request{Title: "t"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidClassification)
}

func TestClassifier_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"server exploded"}}`))
	}))
	defer server.Close()

	c := NewClassifier(config.LLMConfig{Endpoint: server.URL + "/v1", APIKey: "test-key", Model: "m"})
	_, err := c.Classify(context.Background(), Request{Title: "t"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidClassification)
	assert.Contains(t, err.Error(), "llm request failed")
}

func TestClassifier_NoAPIKey(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { calls.Add(1) }))
	defer server.Close()

	c := NewClassifier(config.LLMConfig{Endpoint: server.URL + "/v1", Model: "m"})
	_, err := c.Classify(context.Background(), Request{Title: "t"})
	assert.ErrorIs(t, err, ErrDisabled)
	assert.Zero(t, calls.Load())
}

func TestClassifier_buildPrompt(t *testing.T) {
	c := NewClassifier(config.LLMConfig{APIKey: "k"})
	long := strings.Repeat("a", 70000)

	t.Run("news clip", func(t *testing.T) {
		p := c.buildPrompt(Request{Title: "clip", Description: long, Transcript: long, Bucket: domain.BucketNewsClip})
		assert.Contains(t, p, "2-3 sentence")
		assert.NotContains(t, p, "public government meeting")
		assert.Contains(t, p, strings.Repeat("a", descriptionBudget)+"...\n")
		assert.NotContains(t, p, strings.Repeat("a", clipTranscriptBudget+1))
		assert.Contains(t, p, strings.Repeat("a", clipTranscriptBudget))
		for _, topic := range domain.Topics {
			assert.Contains(t, p, string(topic))
		}
	})

	t.Run("public meeting", func(t *testing.T) {
		p := c.buildPrompt(Request{Title: "meeting", Transcript: long, Bucket: domain.BucketPublicMeeting})
		assert.Contains(t, p, "4-6 sentence")
		assert.Contains(t, p, "votes taken")
		assert.Contains(t, p, "public government meeting")
		assert.Contains(t, p, strings.Repeat("a", meetingTranscriptBudget))
		assert.NotContains(t, p, strings.Repeat("a", meetingTranscriptBudget+1))
	})

	t.Run("blank transcript gives placeholder", func(t *testing.T) {
		p := c.buildPrompt(Request{Title: "x", Transcript: "  \n"})
		assert.Contains(t, p, "Transcript:\n"+noTranscript)
	})
}

func TestReplySchema(t *testing.T) {
	var schema map[string]any
	require.NoError(t, json.Unmarshal([]byte(replySchemaJSON()), &schema))
	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok, "schema has properties")
	for _, key := range []string{"location", "companies", "govEntities", "topics", "importance", "summary", "relevanceScore"} {
		assert.Contains(t, props, key)
	}
}

func TestParseReply(t *testing.T) {
	base := func(mod func(m map[string]any)) string {
		m := map[string]any{
			"location":       map[string]any{"city": nil, "county": "Maricopa County", "state": "AZ"},
			"companies":      []string{"Microsoft"},
			"govEntities":    []string{},
			"topics":         []string{"announcement"},
			"importance":     "medium",
			"summary":        "Microsoft plans a new campus.",
			"relevanceScore": 7,
		}
		if mod != nil {
			mod(m)
		}
		data, err := json.Marshal(m)
		require.NoError(t, err)
		return string(data)
	}

	tests := []struct {
		name    string
		content string
		wantErr bool
		check   func(t *testing.T, c *domain.Classification)
	}{
		{name: "valid", content: base(nil), check: func(t *testing.T, c *domain.Classification) {
			assert.Equal(t, domain.Place{County: "Maricopa County", State: "AZ"}, c.Location)
			assert.Equal(t, 7, c.RelevanceScore)
			assert.Empty(t, c.GovEntities)
		}},
		{name: "score 1 accepted", content: base(func(m map[string]any) { m["relevanceScore"] = 1 })},
		{name: "score 10 accepted", content: base(func(m map[string]any) { m["relevanceScore"] = 10 })},
		{name: "integral float accepted", content: strings.Replace(base(nil), `"relevanceScore":7`, `"relevanceScore":7.0`, 1)},
		{name: "missing companies", content: base(func(m map[string]any) { delete(m, "companies") }), wantErr: true},
		{name: "null companies", content: base(func(m map[string]any) { m["companies"] = nil }), wantErr: true},
		{name: "missing gov entities", content: base(func(m map[string]any) { delete(m, "govEntities") }), wantErr: true},
		{name: "lowercase state", content: base(func(m map[string]any) {
			m["location"] = map[string]any{"county": "Maricopa County", "state": "az"}
		}), wantErr: true},
		{name: "capitalized topic", content: base(func(m map[string]any) { m["topics"] = []string{"Zoning"} }), wantErr: true},
		{name: "uppercase importance", content: base(func(m map[string]any) { m["importance"] = "HIGH" }), wantErr: true},
		{name: "unknown state", content: base(func(m map[string]any) {
			m["location"] = map[string]any{"state": "ZZ"}
		}), wantErr: true},
		{name: "missing state", content: base(func(m map[string]any) { m["location"] = map[string]any{"city": "Austin"} }), wantErr: true},
		{name: "missing location", content: base(func(m map[string]any) { delete(m, "location") }), wantErr: true},
		{name: "empty topics", content: base(func(m map[string]any) { m["topics"] = []string{} }), wantErr: true},
		{name: "missing topics", content: base(func(m map[string]any) { delete(m, "topics") }), wantErr: true},
		{name: "unknown topic", content: base(func(m map[string]any) { m["topics"] = []string{"zoning", "weather"} }), wantErr: true},
		{name: "bad importance", content: base(func(m map[string]any) { m["importance"] = "urgent" }), wantErr: true},
		{name: "empty summary", content: base(func(m map[string]any) { m["summary"] = " " }), wantErr: true},
		{name: "score 0", content: base(func(m map[string]any) { m["relevanceScore"] = 0 }), wantErr: true},
		{name: "score 11", content: base(func(m map[string]any) { m["relevanceScore"] = 11 }), wantErr: true},
		{name: "fractional score", content: base(func(m map[string]any) { m["relevanceScore"] = 7.5 }), wantErr: true},
		{name: "string score", content: base(func(m map[string]any) { m["relevanceScore"] = "8" }), wantErr: true},
		{name: "missing score", content: base(func(m map[string]any) { delete(m, "relevanceScore") }), wantErr: true},
		{name: "companies not array", content: base(func(m map[string]any) { m["companies"] = "Microsoft" }), wantErr: true},
		{name: "gov entities not array", content: base(func(m map[string]any) { m["govEntities"] = 42 }), wantErr: true},
		{name: "no json", content: "I can't classify this", wantErr: true},
		{name: "broken json", content: `{"location": {`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := parseReply(tt.content)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, res)
			if tt.check != nil {
				tt.check(t, res)
			}
		})
	}
}
