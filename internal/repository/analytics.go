package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/templui/securedocs/internal/model"
)

const defaultEventLimit = 100

type AnalyticsRepository interface {
	CreateEvent(event *model.AccessEvent) error
	Counters(documentID string) (*model.DocumentCounters, error)
	IncrementCounter(documentID string, action model.Action) error
	Summary(documentID string, since time.Time) (*model.AccessSummary, error)
	Events(filter model.EventFilter) ([]*model.AccessEvent, error)
}

type analyticsRepository struct {
	db *sqlx.DB
	qb sq.StatementBuilderType
}

func NewAnalyticsRepository(db *sqlx.DB) AnalyticsRepository {
	return &analyticsRepository{
		db: db,
		qb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *analyticsRepository) CreateEvent(event *model.AccessEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO access_events (id, document_id, user_id, action, outcome, reason, ip_address, user_agent, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(query,
		event.ID,
		event.DocumentID,
		event.UserID,
		event.Action,
		event.Outcome,
		event.Reason,
		event.IPAddress,
		event.UserAgent,
		event.CreatedAt,
	)
	return err
}

// Counters returns zero counters for documents that were never accessed.
func (r *analyticsRepository) Counters(documentID string) (*model.DocumentCounters, error) {
	c := &model.DocumentCounters{}
	query := `SELECT document_id, views, downloads, updated_at FROM document_counters WHERE document_id = $1`

	err := r.db.Get(c, query, documentID)
	if errors.Is(err, sql.ErrNoRows) {
		return &model.DocumentCounters{DocumentID: documentID}, nil
	}
	if err != nil {
		return nil, err
	}

	return c, nil
}

// IncrementCounter is a plain read-modify-write. Concurrent increments of the
// same document can be lost; the access_events table stays authoritative.
func (r *analyticsRepository) IncrementCounter(documentID string, action model.Action) error {
	c, err := r.Counters(documentID)
	if err != nil {
		return err
	}

	switch action {
	case model.ActionView:
		c.Views++
	case model.ActionDownload:
		c.Downloads++
	default:
		return fmt.Errorf("no counter for action %q", action)
	}

	query := `
		INSERT INTO document_counters (document_id, views, downloads, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (document_id) DO UPDATE
		SET views = excluded.views, downloads = excluded.downloads, updated_at = excluded.updated_at
	`
	_, err = r.db.Exec(query, documentID, c.Views, c.Downloads, time.Now().UTC())
	return err
}

type outcomeCount struct {
	Action  model.Action `db:"action"`
	Outcome string       `db:"outcome"`
	Count   int64        `db:"n"`
}

func (r *analyticsRepository) Summary(documentID string, since time.Time) (*model.AccessSummary, error) {
	counters, err := r.Counters(documentID)
	if err != nil {
		return nil, err
	}

	summary := &model.AccessSummary{
		DocumentID: documentID,
		Counters:   *counters,
		Allowed:    map[model.Action]int64{},
		Denied:     map[model.Action]int64{},
	}

	where := sq.And{sq.Eq{"document_id": documentID}}
	if !since.IsZero() {
		where = append(where, sq.GtOrEq{"created_at": since.UTC()})
	}

	query, args, err := r.qb.
		Select("action", "outcome", "COUNT(*) AS n").
		From("access_events").
		Where(where).
		GroupBy("action", "outcome").
		ToSql()
	if err != nil {
		return nil, err
	}

	var counts []outcomeCount
	err = r.db.Select(&counts, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count events: %w", err)
	}
	for _, c := range counts {
		if c.Outcome == model.OutcomeAllowed {
			summary.Allowed[c.Action] += c.Count
		} else {
			summary.Denied[c.Action] += c.Count
		}
	}

	query, args, err = r.qb.
		Select("COUNT(DISTINCT ip_address)").
		From("access_events").
		Where(where).
		ToSql()
	if err != nil {
		return nil, err
	}
	err = r.db.Get(&summary.UniqueIPs, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count visitors: %w", err)
	}

	query, args, err = r.qb.
		Select("created_at").
		From("access_events").
		Where(where).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}
	var last time.Time
	err = r.db.Get(&last, query, args...)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to load last access: %w", err)
	}
	if err == nil {
		summary.LastAccess = &last
	}

	return summary, nil
}

// Events returns the newest events first.
func (r *analyticsRepository) Events(filter model.EventFilter) ([]*model.AccessEvent, error) {
	q := r.qb.Select("*").From("access_events").OrderBy("created_at DESC")

	if filter.DocumentID != "" {
		q = q.Where(sq.Eq{"document_id": filter.DocumentID})
	}
	if filter.Action != "" {
		q = q.Where(sq.Eq{"action": filter.Action})
	}
	if filter.Outcome != "" {
		q = q.Where(sq.Eq{"outcome": filter.Outcome})
	}
	if !filter.Since.IsZero() {
		q = q.Where(sq.GtOrEq{"created_at": filter.Since.UTC()})
	}

	limit := filter.Limit
	if limit == 0 {
		limit = defaultEventLimit
	}
	q = q.Limit(limit)

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var events []*model.AccessEvent
	err = r.db.Select(&events, query, args...)
	if err != nil {
		return nil, err
	}

	return events, nil
}
