package search

import (
	"context"
	"log/slog"
)

// Service is the facade that tries Meilisearch first and falls back to PG FTS.
type Service struct {
	meili *Meili
	pgfts *PgFTS
}

// NewService creates a search service. meili may be nil if Meilisearch is
// not configured.
func NewService(meili *Meili, pgfts *PgFTS) *Service {
	return &Service{meili: meili, pgfts: pgfts}
}

// Search tries Meilisearch if healthy, otherwise falls back to PG FTS.
func (s *Service) Search(q Query) Response {
	if s.meili != nil && s.meili.Healthy() {
		results, total, err := s.meili.Search(q)
		if err == nil {
			return Response{Results: nonNil(results), Total: total, Query: q.Text}
		}
		slog.Warn("meilisearch error, falling back to pgfts", "error", err)
	}

	results, total, err := s.pgfts.Search(q)
	if err != nil {
		slog.Error("pgfts search failed", "error", err)
		return Response{Results: []Result{}, Total: 0, Query: q.Text}
	}
	return Response{Results: nonNil(results), Total: total, Query: q.Text}
}

// IndexTask indexes a task (fire-and-forget to Meilisearch).
func (s *Service) IndexTask(t TaskRecord) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.IndexTask(t); err != nil {
			slog.Warn("index task failed", "id", t.ID, "error", err)
		}
	}()
}

// IndexGift indexes a gift (fire-and-forget to Meilisearch).
func (s *Service) IndexGift(g GiftRecord) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.IndexGift(g); err != nil {
			slog.Warn("index gift failed", "id", g.ID, "error", err)
		}
	}()
}

// IndexEvent indexes an event (fire-and-forget to Meilisearch).
func (s *Service) IndexEvent(e EventRecord) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.IndexEvent(e); err != nil {
			slog.Warn("index event failed", "id", e.ID, "error", err)
		}
	}()
}

// DeleteTask removes a task from the search index (fire-and-forget).
func (s *Service) DeleteTask(id string) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.DeleteTask(id); err != nil {
			slog.Warn("delete task from index failed", "id", id, "error", err)
		}
	}()
}

// DeleteGift removes a gift from the search index (fire-and-forget).
func (s *Service) DeleteGift(id string) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.DeleteGift(id); err != nil {
			slog.Warn("delete gift from index failed", "id", id, "error", err)
		}
	}()
}

// DeleteEvent removes an event from the search index (fire-and-forget).
func (s *Service) DeleteEvent(id string) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.DeleteEvent(id); err != nil {
			slog.Warn("delete event from index failed", "id", id, "error", err)
		}
	}()
}

// ReindexAllFromPG reindexes all searchable entities from PostgreSQL into
// Meilisearch. Called at boot when Meilisearch is configured.
func (s *Service) ReindexAllFromPG(ctx context.Context) {
	if s.meili == nil || !s.meili.Healthy() || s.pgfts == nil {
		return
	}
	tasks, gifts, events, err := s.pgfts.LoadAllRecords(ctx)
	if err != nil {
		slog.Error("reindex load failed", "error", err)
		return
	}
	if err := s.meili.IndexTasks(tasks); err != nil {
		slog.Warn("reindex tasks failed", "error", err)
	}
	if err := s.meili.IndexGifts(gifts); err != nil {
		slog.Warn("reindex gifts failed", "error", err)
	}
	if err := s.meili.IndexEvents(events); err != nil {
		slog.Warn("reindex events failed", "error", err)
	}
}

func nonNil(r []Result) []Result {
	if r == nil {
		return []Result{}
	}
	return r
}
