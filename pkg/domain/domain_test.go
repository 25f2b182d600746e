package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseState(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "VA", want: "VA"},
		{in: "DC", want: "DC"},
		{in: "va", wantErr: true},
		{in: " TX ", wantErr: true},
		{in: "ZZ", wantErr: true},
		{in: "", wantErr: true},
		{in: "Virginia", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseState(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Len(t, States, 51)
}

func TestParseTopic(t *testing.T) {
	topic, err := ParseTopic("zoning")
	require.NoError(t, err)
	assert.Equal(t, TopicZoning, topic)

	_, err = ParseTopic("Zoning")
	require.Error(t, err)
	_, err = ParseTopic("weather")
	require.Error(t, err)
}

func TestParseImportance(t *testing.T) {
	imp, err := ParseImportance("high")
	require.NoError(t, err)
	assert.Equal(t, ImportanceHigh, imp)

	_, err = ParseImportance("HIGH")
	require.Error(t, err)
	_, err = ParseImportance("urgent")
	require.Error(t, err)
}

func TestLocationKey(t *testing.T) {
	k := NewLocationKey(Place{City: " Ashburn ", State: "va"})
	assert.Equal(t, LocationKey{City: "Ashburn", County: "", State: "VA"}, k)
	assert.Equal(t, "Ashburn, VA", k.String())

	k = NewLocationKey(Place{County: "Loudoun County", State: "VA"})
	assert.Equal(t, "Loudoun County, VA", k.String())
}

func TestNewClip(t *testing.T) {
	pub := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	item := RawItem{URL: "https://www.youtube.com/watch?v=abc", ExternalID: "abc", Title: "hearing",
		SourceType: SourceYouTube, Bucket: BucketPublicMeeting, DurationSecs: 3600, PublishedAt: &pub}
	c := NewClip(item, Classification{RelevanceScore: 8, Summary: "s"})
	assert.Equal(t, "abc", c.ExternalID)
	assert.Equal(t, BucketPublicMeeting, c.Bucket)
	assert.Equal(t, 8, c.Classification.RelevanceScore)
	assert.True(t, item.IsVideo())
	assert.Equal(t, time.Hour, CycleStats{StartedAt: pub, FinishedAt: pub.Add(time.Hour)}.Duration())
}
