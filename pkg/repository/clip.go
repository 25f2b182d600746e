package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/umputun/dcwatch/pkg/domain"
)

// ErrDuplicateClip is returned when a clip with the same url or external id already exists
var ErrDuplicateClip = errors.New("duplicate clip")

// ClipRepository handles clip-related database operations
type ClipRepository struct {
	db *sqlx.DB
}

// NewClipRepository creates a new clip repository
func NewClipRepository(db *sqlx.DB) *ClipRepository {
	return &ClipRepository{db: db}
}

// ClipExists checks whether a clip with the given url or external id is already stored.
// Empty external id matches nothing.
func (r *ClipRepository) ClipExists(ctx context.Context, url, externalID string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM clips
			WHERE url = ? OR (? != '' AND external_id = ?)
		)
	`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, url, externalID, externalID); err != nil {
		return false, fmt.Errorf("check clip exists: %w", err)
	}
	return exists, nil
}

// SaveClip upserts the clip location and inserts the clip in one transaction, then sets clip ID
// and location ID. Location clip_count is unchanged when the insert fails. Retries on lock
// contention, returns ErrDuplicateClip on url or external id conflict.
func (r *ClipRepository) SaveClip(ctx context.Context, clip *domain.Clip, place domain.ResolvedPlace) error {
	if place.Key.State == "" {
		return fmt.Errorf("save clip %s: location state is missing", clip.URL)
	}
	if clip.DiscoveredAt.IsZero() {
		clip.DiscoveredAt = time.Now().UTC()
	}

	return withLockRetry(ctx, func() error {
		tx, err := r.db.BeginTxx(ctx, nil)
		if err != nil {
			if isLockError(err) {
				return err
			}
			return fmt.Errorf("begin transaction: %w", err)
		}
		defer tx.Rollback()

		loc, err := upsertLocation(ctx, tx, place.Key, place.Coords)
		if err != nil {
			return err
		}

		row := toClipRow(clip)
		row.LocationID = sql.NullInt64{Int64: loc.ID, Valid: true}
		id, err := insertClip(ctx, tx, row)
		if err != nil {
			return err
		}

		if err := tx.Commit(); err != nil {
			if isLockError(err) {
				return err
			}
			return fmt.Errorf("commit clip %s: %w", clip.URL, err)
		}
		clip.ID, clip.LocationID = id, &loc.ID
		return nil
	})
}

// insertClip adds a clip row and returns its id, lock errors are returned unwrapped for retry
func insertClip(ctx context.Context, e sqlx.ExtContext, row *clipRow) (int64, error) {
	query := `
		INSERT INTO clips (
			url, external_id, title, content, source_name, source_type, published_at,
			discovered_at, bucket, duration_secs, transcript, thumbnail_path, location_id,
			companies, gov_entities, topics, importance, summary, relevance_score,
			city, county, state, raw_payload
		) VALUES (
			:url, :external_id, :title, :content, :source_name, :source_type, :published_at,
			:discovered_at, :bucket, :duration_secs, :transcript, :thumbnail_path, :location_id,
			:companies, :gov_entities, :topics, :importance, :summary, :relevance_score,
			:city, :county, :state, :raw_payload
		)
	`

	result, err := sqlx.NamedExecContext(ctx, e, query, row)
	if err != nil {
		if isLockError(err) {
			return 0, err
		}
		if isUniqueError(err) {
			return 0, fmt.Errorf("create clip %s: %w", row.URL, ErrDuplicateClip)
		}
		return 0, fmt.Errorf("create clip: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get insert id: %w", err)
	}
	return id, nil
}

// GetClip retrieves a clip by ID
func (r *ClipRepository) GetClip(ctx context.Context, id int64) (*domain.Clip, error) {
	var row clipRow
	err := r.db.GetContext(ctx, &row, "SELECT * FROM clips WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("clip %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get clip: %w", err)
	}
	return row.toDomain(), nil
}

// CountClips returns total number of stored clips
func (r *ClipRepository) CountClips(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM clips"); err != nil {
		return 0, fmt.Errorf("count clips: %w", err)
	}
	return count, nil
}

func toClipRow(c *domain.Clip) *clipRow {
	row := &clipRow{
		URL:            c.URL,
		ExternalID:     nullString(c.ExternalID),
		Title:          c.Title,
		Content:        c.Content,
		SourceName:     c.SourceName,
		SourceType:     string(c.SourceType),
		DiscoveredAt:   c.DiscoveredAt,
		Bucket:         string(c.Bucket),
		DurationSecs:   c.DurationSecs,
		Transcript:     nullString(c.Transcript),
		ThumbnailPath:  nullString(c.ThumbnailPath),
		Companies:      jsonList(c.Classification.Companies),
		GovEntities:    jsonList(c.Classification.GovEntities),
		Importance:     string(c.Classification.Importance),
		Summary:        c.Classification.Summary,
		RelevanceScore: c.Classification.RelevanceScore,
		City:           c.Classification.Location.City,
		County:         c.Classification.Location.County,
		State:          c.Classification.Location.State,
	}
	if c.PublishedAt != nil {
		row.PublishedAt = sql.NullTime{Time: c.PublishedAt.UTC(), Valid: true}
	}
	if c.LocationID != nil {
		row.LocationID = sql.NullInt64{Int64: *c.LocationID, Valid: true}
	}
	topics := make(jsonList, 0, len(c.Classification.Topics))
	for _, t := range c.Classification.Topics {
		topics = append(topics, string(t))
	}
	row.Topics = topics
	if len(c.RawPayload) > 0 {
		row.RawPayload = sql.NullString{String: string(c.RawPayload), Valid: true}
	}
	return row
}

func (r *clipRow) toDomain() *domain.Clip {
	c := &domain.Clip{
		ID:            r.ID,
		URL:           r.URL,
		ExternalID:    r.ExternalID.String,
		Title:         r.Title,
		Content:       r.Content,
		SourceName:    r.SourceName,
		SourceType:    domain.SourceType(r.SourceType),
		DiscoveredAt:  r.DiscoveredAt,
		Bucket:        domain.Bucket(r.Bucket),
		DurationSecs:  r.DurationSecs,
		Transcript:    r.Transcript.String,
		ThumbnailPath: r.ThumbnailPath.String,
		Classification: domain.Classification{
			Location:       domain.Place{City: r.City, County: r.County, State: r.State},
			Companies:      []string(r.Companies),
			GovEntities:    []string(r.GovEntities),
			Importance:     domain.Importance(r.Importance),
			Summary:        r.Summary,
			RelevanceScore: r.RelevanceScore,
		},
	}
	if r.PublishedAt.Valid {
		t := r.PublishedAt.Time
		c.PublishedAt = &t
	}
	if r.LocationID.Valid {
		id := r.LocationID.Int64
		c.LocationID = &id
	}
	for _, t := range r.Topics {
		c.Classification.Topics = append(c.Classification.Topics, domain.Topic(t))
	}
	if r.RawPayload.Valid {
		c.RawPayload = []byte(r.RawPayload.String)
	}
	return c
}
