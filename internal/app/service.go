package app

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"time"

	"hitched/api/internal/assistant"
	"hitched/api/internal/auth"
	"hitched/api/internal/authpw"
	"hitched/api/internal/config"
	"hitched/api/internal/export"
	"hitched/api/internal/history"
	"hitched/api/internal/products"
	"hitched/api/internal/rbac"
	"hitched/api/internal/roadmap"
	"hitched/api/internal/search"
	"hitched/api/internal/store"
	"hitched/api/internal/util"
)

type Session struct {
	Token        string
	RefreshToken string
	UserID       string
	UserName     string
	UserEmail    string
	ExpiresAt    time.Time
}

type dataStore interface {
	GetUserByEmail(ctx context.Context, email string) (store.User, error)
	GetUserByID(ctx context.Context, userID string) (store.User, error)
	CreateUser(ctx context.Context, user store.User) error
	UpdateUserPassword(ctx context.Context, userID, passwordHash string) error

	CreateProject(ctx context.Context, project store.Project, ownerUserID string) error
	GetProject(ctx context.Context, projectID string) (store.Project, error)
	ListProjectsForUser(ctx context.Context, userID string) ([]store.ProjectMembership, error)
	DeleteProject(ctx context.Context, projectID string) error
	TouchProject(ctx context.Context, projectID string) error
	ProjectTaskStats(ctx context.Context, projectID string) (store.TaskStats, error)
	ProjectBudgetTotals(ctx context.Context, projectID string) (store.BudgetTotals, error)
	CollaboratorCount(ctx context.Context, projectID string) (int, error)
	NextEvent(ctx context.Context, projectID string) (*store.Event, error)

	GetCollaborator(ctx context.Context, userID, projectID string) (store.Collaborator, error)
	ListCollaborators(ctx context.Context, projectID string) ([]store.Collaborator, error)
	AddCollaborator(ctx context.Context, c store.Collaborator) error
	RemoveCollaborator(ctx context.Context, userID, projectID string) error

	ListPhases(ctx context.Context, projectID string) ([]store.Phase, error)
	ReconcileRoadmap(ctx context.Context, projectID string, incoming []roadmap.PhaseInput, newID func(prefix string) string) error
	GetTaskProject(ctx context.Context, taskID string) (string, error)
	ToggleTask(ctx context.Context, taskID string, isCompleted bool) error
	AssignTask(ctx context.Context, taskID string, userID *string) error
	UpdateTaskDetails(ctx context.Context, taskID string, deadline *time.Time, estimatedCost, actualCost float64, isCompleted bool) error

	ListEvents(ctx context.Context, projectID string) ([]store.Event, error)
	CreateEvent(ctx context.Context, event store.Event) error
	UpdateEvent(ctx context.Context, event store.Event) error
	DeleteEvent(ctx context.Context, eventID, projectID string) error
	ReorderEvents(ctx context.Context, projectID string, items []store.EventOrder) error

	ListGifts(ctx context.Context, projectID string) ([]store.Gift, error)
	GetGift(ctx context.Context, giftID string) (store.Gift, error)
	CreateGift(ctx context.Context, gift store.Gift) error
	UpdateGift(ctx context.Context, gift store.Gift) error
	DeleteGift(ctx context.Context, giftID, projectID string) error
	SetGiftClaimant(ctx context.Context, giftID, projectID string, takenBy *string) error
	ClaimGift(ctx context.Context, giftID, guestName, message string) error

	ListBudgetItems(ctx context.Context, projectID string) ([]store.BudgetItem, error)
	CreateBudgetItem(ctx context.Context, item store.BudgetItem) error
	UpdateBudgetItem(ctx context.Context, item store.BudgetItem) error
	DeleteBudgetItem(ctx context.Context, itemID, projectID string) error
	ListCostedPhases(ctx context.Context, projectID string) ([]store.Phase, error)

	CreateGuest(ctx context.Context, guest store.Guest) error
	ListGuests(ctx context.Context, projectID string) ([]store.Guest, error)

	GetWeddingDetails(ctx context.Context, projectID string) (store.WeddingDetails, error)
	UpsertWeddingDetails(ctx context.Context, details store.WeddingDetails) error
	AddGalleryImage(ctx context.Context, image store.GalleryImage) error
	DeleteGalleryImage(ctx context.Context, imageID, projectID string) error
	ListGalleryImages(ctx context.Context, projectID string) ([]store.GalleryImage, error)

	Ping(ctx context.Context) error
}

// sessionStore holds refresh tokens. Postgres serves by default; Redis
// takes over when configured.
type sessionStore interface {
	SaveRefreshSession(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error
	LookupRefreshSession(ctx context.Context, tokenHash string) (store.User, error)
	RevokeRefreshSession(ctx context.Context, tokenHash string) error
}

type snapshotService interface {
	Snapshot(projectID string, phases []history.SnapshotPhase, author, message string) (history.CommitInfo, error)
	History(projectID string, limit int) ([]history.CommitInfo, error)
	GetSnapshot(projectID, hash string) ([]history.SnapshotPhase, error)
}

type searchService interface {
	Search(q search.Query) search.Response
	IndexTask(t search.TaskRecord)
	IndexGift(g search.GiftRecord)
	IndexEvent(e search.EventRecord)
	DeleteTask(id string)
	DeleteGift(id string)
	DeleteEvent(id string)
}

type exportService interface {
	Export(ctx context.Context, req export.Request) (*export.Result, error)
}

type mediaService interface {
	Upload(ctx context.Context, projectID, contentType string, r io.Reader, size int64) (string, error)
	Delete(ctx context.Context, objectURL string) error
}

type productSearcher interface {
	IsConfigured() bool
	Search(ctx context.Context, query string) ([]products.Product, error)
}

type assistantService interface {
	IsConfigured() bool
	Ask(ctx context.Context, message string, current assistant.RoadmapContext) (assistant.Reply, error)
}

type emailSender interface {
	IsConfigured() bool
	SendCollaboratorInvite(to, inviteeName, inviterName, projectTitle, role string) error
	SendRSVPNotification(to, plannerName, guestName, projectTitle string, attending bool) error
}

// Deps carries the optional collaborators; any of them may be nil and
// the matching endpoints degrade gracefully.
type Deps struct {
	Sessions  sessionStore
	Search    searchService
	Snapshots snapshotService
	Exporter  exportService
	Media     mediaService
	Products  productSearcher
	Assistant assistantService
	Email     emailSender
}

type Service struct {
	cfg       config.Config
	store     dataStore
	tokens    *auth.Manager
	passwords *authpw.Service
	sessions  sessionStore
	search    searchService
	snapshots snapshotService
	exporter  exportService
	media     mediaService
	products  productSearcher
	assistant assistantService
	email     emailSender
}

func New(cfg config.Config, dataStore *store.PostgresStore, deps Deps) *Service {
	sessions := deps.Sessions
	if sessions == nil {
		sessions = dataStore
	}
	return &Service{
		cfg:       cfg,
		store:     dataStore,
		tokens:    auth.NewManager(cfg.JWTSecret, cfg.AccessTTL),
		passwords: authpw.NewService(dataStore),
		sessions:  sessions,
		search:    deps.Search,
		snapshots: deps.Snapshots,
		exporter:  deps.Exporter,
		media:     deps.Media,
		products:  deps.Products,
		assistant: deps.Assistant,
		email:     deps.Email,
	}
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) SMTPConfigured() bool {
	return s.email != nil && s.email.IsConfigured()
}

// SignUp registers a user and starts a session.
func (s *Service) SignUp(ctx context.Context, name, email, password string) (Session, error) {
	user, err := s.passwords.SignUp(ctx, authpw.SignUpRequest{
		Name:     name,
		Email:    email,
		Password: password,
	})
	if err != nil {
		if errors.Is(err, authpw.ErrEmailExists) {
			return Session{}, domainError(http.StatusConflict, "EMAIL_EXISTS", "Email already registered", nil)
		}
		return Session{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error(), nil)
	}
	return s.issueSession(ctx, user)
}

// SignIn checks credentials and starts a session.
func (s *Service) SignIn(ctx context.Context, email, password string) (Session, error) {
	user, err := s.passwords.SignIn(ctx, email, password)
	if err != nil {
		return Session{}, domainError(http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password", nil)
	}
	return s.issueSession(ctx, user)
}

// Refresh rotates a refresh token and issues a new access token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	tokenHash := auth.HashToken(refreshToken)
	found, err := s.sessions.LookupRefreshSession(ctx, tokenHash)
	if err != nil {
		return Session{}, domainError(http.StatusUnauthorized, "UNAUTHORIZED", "Refresh token invalid", nil)
	}
	// Session backends may return only the user id.
	user, err := s.store.GetUserByID(ctx, found.ID)
	if err != nil {
		return Session{}, domainError(http.StatusUnauthorized, "UNAUTHORIZED", "Refresh token invalid", nil)
	}
	if err := s.sessions.RevokeRefreshSession(ctx, tokenHash); err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, user)
}

// Logout revokes the refresh token. Access tokens simply expire.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.sessions.RevokeRefreshSession(ctx, auth.HashToken(refreshToken))
}

// ChangePassword rotates the password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, session Session, currentPassword, newPassword string) error {
	err := s.passwords.ChangePassword(ctx, session.UserID, currentPassword, newPassword)
	if err != nil {
		if errors.Is(err, authpw.ErrInvalidCredentials) {
			return domainError(http.StatusUnauthorized, "INVALID_CREDENTIALS", "Current password is incorrect", nil)
		}
		return domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error(), nil)
	}
	return nil
}

func (s *Service) issueSession(ctx context.Context, user store.User) (Session, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.AccessTTL)

	token, err := s.tokens.Issue(user.ID, user.Name, user.Email)
	if err != nil {
		return Session{}, err
	}

	refresh := util.NewID("rft") + util.NewID("")
	refreshExpires := now.Add(s.cfg.RefreshTTL)
	if err := s.sessions.SaveRefreshSession(ctx, auth.HashToken(refresh), user.ID, refreshExpires); err != nil {
		return Session{}, err
	}

	return Session{
		Token:        token,
		RefreshToken: refresh,
		UserID:       user.ID,
		UserName:     user.Name,
		UserEmail:    user.Email,
		ExpiresAt:    expiresAt,
	}, nil
}

// SessionFromToken validates an access token. Claims carry everything a
// request needs, so there is no database read per request.
func (s *Service) SessionFromToken(ctx context.Context, token string) (Session, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return Session{}, err
	}
	return Session{
		Token:     token,
		UserID:    claims.UserID,
		UserName:  claims.Name,
		UserEmail: claims.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// viewerRole resolves the caller's role on a project. An empty role
// means no membership; callers decide between hiding and forbidding.
func (s *Service) viewerRole(ctx context.Context, userID, projectID string) (rbac.Role, error) {
	c, err := s.store.GetCollaborator(ctx, userID, projectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return rbac.Role(c.Role), nil
}

// requireCapability is the access gate for project-scoped operations.
// Non-member reads get NOT_FOUND so project existence is never revealed;
// non-member writes and members lacking the capability get FORBIDDEN.
// Roles are resolved fresh on every call.
func (s *Service) requireCapability(ctx context.Context, session Session, projectID string, cap rbac.Capability) (rbac.Role, error) {
	role, err := s.viewerRole(ctx, session.UserID, projectID)
	if err != nil {
		return "", err
	}
	if role == "" {
		if cap == rbac.CapView {
			return "", domainError(http.StatusNotFound, "NOT_FOUND", "Project not found", nil)
		}
		return "", domainError(http.StatusForbidden, "FORBIDDEN", "Forbidden", nil)
	}
	if !rbac.Can(role, cap) {
		return "", domainError(http.StatusForbidden, "FORBIDDEN", "Forbidden", nil)
	}
	return role, nil
}
