package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var mentorEventColumns = []string{
	"id", "timestamp", "kind", "source", "latency_ms",
	"success", "error_message", "prompt", "answer",
}

// mentorEventRepo implements MentorEventRepo on the mentor_events table.
type mentorEventRepo struct {
	db *sql.DB
	b  *entsql.DialectBuilder
}

func (r *mentorEventRepo) Append(ctx context.Context, data MentorEventData) error {
	query, args := r.b.Insert(mentorEventTable).
		Columns("timestamp", "kind", "source", "latency_ms", "success", "error_message", "prompt", "answer").
		Values(
			time.Now().UnixMilli(),
			data.Kind,
			data.Source,
			data.LatencyMs,
			data.Success,
			data.ErrorMessage,
			data.Prompt,
			data.Answer,
		).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save mentor event: %w", err)
	}
	return nil
}

func (r *mentorEventRepo) Query(ctx context.Context, opts QueryOpts) ([]MentorEvent, error) {
	sel := r.b.Select(mentorEventColumns...).From(r.b.Table(mentorEventTable))

	var preds []*entsql.Predicate
	if opts.Kind != "" {
		preds = append(preds, entsql.EQ("kind", opts.Kind))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("timestamp", opts.From.UnixMilli()))
	}
	if len(preds) > 0 {
		sel = sel.Where(entsql.And(preds...))
	}
	sel = sel.OrderBy(entsql.Desc("id"))
	if opts.Limit > 0 {
		sel = sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query mentor events: %w", err)
	}
	defer rows.Close()

	var events []MentorEvent
	for rows.Next() {
		e, err := scanMentorEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func (r *mentorEventRepo) Get(ctx context.Context, id int) (*MentorEvent, error) {
	query, args := r.b.Select(mentorEventColumns...).
		From(r.b.Table(mentorEventTable)).
		Where(entsql.EQ("id", id)).
		Query()

	e, err := scanMentorEvent(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return e, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMentorEvent(row scanner) (*MentorEvent, error) {
	var (
		e  MentorEvent
		ts int64
	)
	err := row.Scan(
		&e.ID, &ts, &e.Kind, &e.Source, &e.LatencyMs,
		&e.Success, &e.ErrorMessage, &e.Prompt, &e.Answer,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan mentor event: %w", err)
	}
	e.Timestamp = time.UnixMilli(ts).UTC()
	return &e, nil
}
