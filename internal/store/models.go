package store

import "time"

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	AvatarURL    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Project struct {
	ID        string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProjectMembership is a project as seen from one collaborator's dashboard.
type ProjectMembership struct {
	Project
	Role              string
	CollaboratorCount int
}

type Collaborator struct {
	UserID    string
	ProjectID string
	Role      string
	CreatedAt time.Time
	// Joined user fields for team listings
	UserName      string
	UserEmail     string
	UserAvatarURL string
}

type Phase struct {
	ID        string
	ProjectID string
	Title     string
	SortOrder int
	Tasks     []Task
}

type Task struct {
	ID            string
	PhaseID       string
	Title         string
	SortOrder     int
	IsCompleted   bool
	Deadline      *time.Time
	EstimatedCost float64
	ActualCost    float64
	AssignedToID  *string
	// Joined assignee fields, nil when unassigned
	AssignedToName *string
}

type Event struct {
	ID          string
	ProjectID   string
	Title       string
	TimeOfDay   string
	Date        time.Time
	Location    string
	Description string
	SortOrder   int
}

type Gift struct {
	ID        string
	ProjectID string
	Name      string
	Price     float64
	ImageURL  string
	URL       string
	TakenBy   *string
	Message   *string
}

type BudgetItem struct {
	ID        string
	ProjectID string
	Category  string
	Name      string
	Estimated float64
	Actual    float64
	Paid      float64
}

type Guest struct {
	ID        string
	ProjectID string
	Name      string
	Email     string
	Attending bool
	Dietary   string
	PlusOne   bool
	CreatedAt time.Time
}

type WeddingDetails struct {
	ProjectID     string
	Partner1Name  string
	Partner2Name  string
	Location      string
	Date          *time.Time
	CoverImageURL string
	Gallery       []GalleryImage
}

type GalleryImage struct {
	ID        string
	ProjectID string
	URL       string
}

// TaskStats is the roadmap progress rollup for a project overview.
type TaskStats struct {
	Total     int
	Completed int
}

// BudgetTotals sums the coarse budget ledger for a project overview.
type BudgetTotals struct {
	Estimated float64
	Actual    float64
	Paid      float64
}
