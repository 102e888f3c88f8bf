package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// PgFTS implements Searcher using PostgreSQL full-text search as a fallback.
type PgFTS struct {
	db *sql.DB
}

// NewPgFTS creates a PostgreSQL FTS searcher.
func NewPgFTS(db *sql.DB) *PgFTS {
	return &PgFTS{db: db}
}

// Healthy always returns true. If Postgres is down the whole app is down.
func (p *PgFTS) Healthy() bool {
	return true
}

// Search executes a UNION ALL query across tasks, gifts, and events using
// plainto_tsquery and ts_rank, with ts_headline for event snippets.
func (p *PgFTS) Search(q Query) ([]Result, int, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, 0, nil
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	tsQuery := "plainto_tsquery('english', $1)"
	args := []any{q.Text, q.ProjectID}

	var subQueries []string

	if q.FilterType == "" || q.FilterType == ResultTask {
		subQueries = append(subQueries, fmt.Sprintf(`
			SELECT 'task'::text AS type, t.id, t.title,
				''::text AS snippet,
				ph.project_id,
				ts_rank(t.fts, %s) AS rank
			FROM tasks t
			JOIN phases ph ON ph.id = t.phase_id
			WHERE t.fts @@ %s AND ph.project_id = $2`, tsQuery, tsQuery))
	}

	if q.FilterType == "" || q.FilterType == ResultGift {
		subQueries = append(subQueries, fmt.Sprintf(`
			SELECT 'gift'::text AS type, g.id, g.name AS title,
				''::text AS snippet,
				g.project_id,
				ts_rank(g.fts, %s) AS rank
			FROM gifts g
			WHERE g.fts @@ %s AND g.project_id = $2`, tsQuery, tsQuery))
	}

	if q.FilterType == "" || q.FilterType == ResultEvent {
		subQueries = append(subQueries, fmt.Sprintf(`
			SELECT 'event'::text AS type, e.id, e.title,
				ts_headline('english', coalesce(e.description, ''), %s, 'MaxFragments=1,MaxWords=30') AS snippet,
				e.project_id,
				ts_rank(e.fts, %s) AS rank
			FROM events e
			WHERE e.fts @@ %s AND e.project_id = $2`, tsQuery, tsQuery, tsQuery))
	}

	if len(subQueries) == 0 {
		return nil, 0, nil
	}

	countSQL := fmt.Sprintf("SELECT count(*) FROM (%s) sub",
		strings.Join(subQueries, " UNION ALL "))

	dataSQL := fmt.Sprintf(`SELECT type, id, title, snippet, project_id
		FROM (%s) sub
		ORDER BY rank DESC
		LIMIT %d OFFSET %d`,
		strings.Join(subQueries, " UNION ALL "),
		limit, offset)

	ctx := context.Background()

	var total int
	if err := p.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgfts count: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgfts query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var typ string
		if err := rows.Scan(&typ, &r.ID, &r.Title, &r.Snippet, &r.ProjectID); err != nil {
			return nil, 0, fmt.Errorf("pgfts scan: %w", err)
		}
		r.Type = ResultType(typ)
		results = append(results, r)
	}

	return results, total, rows.Err()
}

// LoadAllRecords returns all searchable records for full reindexing.
func (p *PgFTS) LoadAllRecords(ctx context.Context) ([]TaskRecord, []GiftRecord, []EventRecord, error) {
	taskRows, err := p.db.QueryContext(ctx, `
		SELECT t.id, t.title, t.phase_id, ph.project_id
		FROM tasks t
		JOIN phases ph ON ph.id = t.phase_id
	`)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load tasks: %w", err)
	}
	defer taskRows.Close()

	tasks := make([]TaskRecord, 0)
	for taskRows.Next() {
		var t TaskRecord
		if err := taskRows.Scan(&t.ID, &t.Title, &t.PhaseID, &t.ProjectID); err != nil {
			return nil, nil, nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := taskRows.Err(); err != nil {
		return nil, nil, nil, fmt.Errorf("iterate tasks: %w", err)
	}

	giftRows, err := p.db.QueryContext(ctx, `
		SELECT id, name, project_id
		FROM gifts
	`)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load gifts: %w", err)
	}
	defer giftRows.Close()

	gifts := make([]GiftRecord, 0)
	for giftRows.Next() {
		var g GiftRecord
		if err := giftRows.Scan(&g.ID, &g.Name, &g.ProjectID); err != nil {
			return nil, nil, nil, fmt.Errorf("scan gift: %w", err)
		}
		gifts = append(gifts, g)
	}
	if err := giftRows.Err(); err != nil {
		return nil, nil, nil, fmt.Errorf("iterate gifts: %w", err)
	}

	eventRows, err := p.db.QueryContext(ctx, `
		SELECT id, title, location, description, project_id
		FROM events
	`)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load events: %w", err)
	}
	defer eventRows.Close()

	events := make([]EventRecord, 0)
	for eventRows.Next() {
		var e EventRecord
		if err := eventRows.Scan(&e.ID, &e.Title, &e.Location, &e.Description, &e.ProjectID); err != nil {
			return nil, nil, nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := eventRows.Err(); err != nil {
		return nil, nil, nil, fmt.Errorf("iterate events: %w", err)
	}

	return tasks, gifts, events, nil
}
