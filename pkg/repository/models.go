package repository

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// jsonList stores a string slice as a JSON array column
type jsonList []string

// Value implements driver.Valuer
func (l jsonList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, fmt.Errorf("marshal list: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (l *jsonList) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*l = jsonList{}
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("unsupported list type %T", src)
	}
	if len(data) == 0 {
		*l = jsonList{}
		return nil
	}
	var res []string
	if err := json.Unmarshal(data, &res); err != nil {
		return fmt.Errorf("unmarshal list: %w", err)
	}
	*l = res
	return nil
}

// clipRow is the clips table row
type clipRow struct {
	ID             int64          `db:"id"`
	URL            string         `db:"url"`
	ExternalID     sql.NullString `db:"external_id"`
	Title          string         `db:"title"`
	Content        string         `db:"content"`
	SourceName     string         `db:"source_name"`
	SourceType     string         `db:"source_type"`
	PublishedAt    sql.NullTime   `db:"published_at"`
	DiscoveredAt   time.Time      `db:"discovered_at"`
	Bucket         string         `db:"bucket"`
	DurationSecs   int            `db:"duration_secs"`
	Transcript     sql.NullString `db:"transcript"`
	ThumbnailPath  sql.NullString `db:"thumbnail_path"`
	LocationID     sql.NullInt64  `db:"location_id"`
	Companies      jsonList       `db:"companies"`
	GovEntities    jsonList       `db:"gov_entities"`
	Topics         jsonList       `db:"topics"`
	Importance     string         `db:"importance"`
	Summary        string         `db:"summary"`
	RelevanceScore int            `db:"relevance_score"`
	City           string         `db:"city"`
	County         string         `db:"county"`
	State          string         `db:"state"`
	RawPayload     sql.NullString `db:"raw_payload"`
}

// locationRow is the locations table row
type locationRow struct {
	ID        int64           `db:"id"`
	City      string          `db:"city"`
	County    string          `db:"county"`
	State     string          `db:"state"`
	Latitude  sql.NullFloat64 `db:"latitude"`
	Longitude sql.NullFloat64 `db:"longitude"`
	ClipCount int             `db:"clip_count"`
	FirstSeen time.Time       `db:"first_seen"`
}

// runRow is the runs table row
type runRow struct {
	ID               int64     `db:"id"`
	StartedAt        time.Time `db:"started_at"`
	FinishedAt       time.Time `db:"finished_at"`
	Fetched          int       `db:"fetched"`
	Processed        int       `db:"processed"`
	SkippedDuplicate int       `db:"skipped_duplicate"`
	SkippedRelevance int       `db:"skipped_relevance"`
	Errors           int       `db:"errors"`
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
