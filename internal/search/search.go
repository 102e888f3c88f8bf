package search

// ResultType identifies the kind of entity in a search result.
type ResultType string

const (
	ResultTask  ResultType = "task"
	ResultGift  ResultType = "gift"
	ResultEvent ResultType = "event"
)

// Result is a single search hit returned to the caller.
type Result struct {
	Type      ResultType `json:"type"`
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Snippet   string     `json:"snippet"`
	ProjectID string     `json:"projectId"`
}

// Query describes a search request. ProjectID is always set; callers
// resolve project access before searching.
type Query struct {
	Text       string
	FilterType ResultType // empty = all types
	ProjectID  string
	Limit      int
	Offset     int
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// Searcher can execute a full-text search.
type Searcher interface {
	Search(q Query) ([]Result, int, error)
	Healthy() bool
}

// Indexer can push entities into a search index.
type Indexer interface {
	IndexTask(t TaskRecord) error
	IndexGift(g GiftRecord) error
	IndexEvent(e EventRecord) error
	DeleteTask(id string) error
	DeleteGift(id string) error
	DeleteEvent(id string) error
}

// TaskRecord is the data we index for a roadmap task.
type TaskRecord struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	PhaseID   string `json:"phaseId"`
	ProjectID string `json:"projectId"`
}

// GiftRecord is the data we index for a registry gift.
type GiftRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ProjectID string `json:"projectId"`
}

// EventRecord is the data we index for an itinerary event.
type EventRecord struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Location    string `json:"location"`
	Description string `json:"description"`
	ProjectID   string `json:"projectId"`
}
