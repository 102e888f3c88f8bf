package app

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hitched/api/internal/auth"
	"hitched/api/internal/rbac"
	"hitched/api/internal/store"
)

func issueToken(t *testing.T, svc *Service, userID, name, email string) string {
	t.Helper()
	token, err := svc.tokens.Issue(userID, name, email)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func doRequest(t *testing.T, server *HTTPServer, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewBuffer(raw)
	} else {
		reader = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoint(t *testing.T) {
	svc := newTestService(&fakeStore{})
	server := NewHTTPServer(svc, "*", nil)

	rr := doRequest(t, server, http.MethodGet, "/api/health", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var response map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if response["ok"] != true {
		t.Errorf("expected ok=true, got %v", response["ok"])
	}
}

func TestReadyEndpointReportsDatabaseDown(t *testing.T) {
	fs := &fakeStore{pingFn: func(context.Context) error { return sql.ErrConnDone }}
	server := NewHTTPServer(newTestService(fs), "*", nil)

	rr := doRequest(t, server, http.MethodGet, "/api/ready", "", nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	server := NewHTTPServer(newTestService(&fakeStore{}), "*", nil)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/projects"},
		{http.MethodGet, "/api/projects/prj_1/roadmap"},
		{http.MethodPost, "/api/tasks/tsk_1/toggle"},
	}
	for _, tc := range paths {
		rr := doRequest(t, server, tc.method, tc.path, "", nil)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", tc.method, tc.path, rr.Code)
		}
	}
}

func TestExpiredTokenIsUnauthorized(t *testing.T) {
	svc := newTestService(&fakeStore{})
	svc.tokens = auth.NewManager("test-secret", -time.Hour)
	server := NewHTTPServer(svc, "*", nil)

	token, err := svc.tokens.Issue("usr_1", "Alex", "alex@example.com")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	rr := doRequest(t, server, http.MethodGet, "/api/projects", token, nil)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for expired token, got %d", rr.Code)
	}
}

func TestRoleMatrixOverHTTP(t *testing.T) {
	const projectID = "prj_1"
	fs := &fakeStore{
		getProjectFn: func(_ context.Context, id string) (store.Project, error) {
			if id == projectID {
				return store.Project{ID: id, Title: "Summer Wedding"}, nil
			}
			return store.Project{}, sql.ErrNoRows
		},
		getCollaboratorFn: func(_ context.Context, uid, pid string) (store.Collaborator, error) {
			roles := map[string]rbac.Role{
				"usr_owner":  rbac.RoleOwner,
				"usr_editor": rbac.RoleEditor,
				"usr_viewer": rbac.RoleViewer,
			}
			if role, ok := roles[uid]; ok && pid == projectID {
				return store.Collaborator{UserID: uid, ProjectID: pid, Role: string(role)}, nil
			}
			return store.Collaborator{}, sql.ErrNoRows
		},
	}
	svc := newTestService(fs)
	server := NewHTTPServer(svc, "*", nil)

	tokens := map[string]string{
		"usr_owner":    issueToken(t, svc, "usr_owner", "Owner", "owner@example.com"),
		"usr_editor":   issueToken(t, svc, "usr_editor", "Editor", "editor@example.com"),
		"usr_viewer":   issueToken(t, svc, "usr_viewer", "Viewer", "viewer@example.com"),
		"usr_stranger": issueToken(t, svc, "usr_stranger", "Stranger", "stranger@example.com"),
	}

	cases := []struct {
		name   string
		user   string
		method string
		path   string
		body   any
		want   int
	}{
		{"owner reads project", "usr_owner", http.MethodGet, "/api/projects/prj_1", nil, http.StatusOK},
		{"viewer reads project", "usr_viewer", http.MethodGet, "/api/projects/prj_1", nil, http.StatusOK},
		{"stranger read hidden", "usr_stranger", http.MethodGet, "/api/projects/prj_1", nil, http.StatusNotFound},
		{"viewer cannot save gift", "usr_viewer", http.MethodPost, "/api/projects/prj_1/gifts", map[string]any{"name": "Toaster"}, http.StatusForbidden},
		{"editor saves gift", "usr_editor", http.MethodPost, "/api/projects/prj_1/gifts", map[string]any{"name": "Toaster"}, http.StatusOK},
		{"stranger write forbidden", "usr_stranger", http.MethodPost, "/api/projects/prj_1/gifts", map[string]any{"name": "Toaster"}, http.StatusForbidden},
		{"editor cannot invite", "usr_editor", http.MethodPost, "/api/projects/prj_1/team", map[string]any{"email": "x@example.com", "role": "VIEWER"}, http.StatusForbidden},
		{"editor cannot delete project", "usr_editor", http.MethodDelete, "/api/projects/prj_1", nil, http.StatusForbidden},
		{"owner deletes project", "usr_owner", http.MethodDelete, "/api/projects/prj_1", nil, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := doRequest(t, server, tc.method, tc.path, tokens[tc.user], tc.body)
			if rr.Code != tc.want {
				t.Errorf("expected %d, got %d (body %s)", tc.want, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestSignUpSignInRefreshFlow(t *testing.T) {
	users := map[string]store.User{}
	fs := &fakeStore{}
	fs.createUserFn = func(_ context.Context, user store.User) error {
		users[user.Email] = user
		return nil
	}
	fs.getUserByEmailFn = func(_ context.Context, email string) (store.User, error) {
		user, ok := users[email]
		if !ok {
			return store.User{}, sql.ErrNoRows
		}
		return user, nil
	}
	fs.getUserByIDFn = func(_ context.Context, id string) (store.User, error) {
		for _, user := range users {
			if user.ID == id {
				return user, nil
			}
		}
		return store.User{}, sql.ErrNoRows
	}
	svc := newTestService(fs)
	server := NewHTTPServer(svc, "*", nil)

	rr := doRequest(t, server, http.MethodPost, "/api/auth/signup", "", map[string]any{
		"name":     "Alex",
		"email":    "alex@example.com",
		"password": "correct-horse-battery",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d (%s)", rr.Code, rr.Body.String())
	}
	var signup map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &signup); err != nil {
		t.Fatalf("parse signup: %v", err)
	}
	if signup["accessToken"] == "" || signup["refreshToken"] == "" {
		t.Fatal("expected tokens in signup response")
	}

	rr = doRequest(t, server, http.MethodPost, "/api/auth/signin", "", map[string]any{
		"email":    "alex@example.com",
		"password": "wrong",
	})
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("bad password: expected 401, got %d", rr.Code)
	}

	rr = doRequest(t, server, http.MethodPost, "/api/auth/signin", "", map[string]any{
		"email":    "alex@example.com",
		"password": "correct-horse-battery",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("signin: expected 200, got %d (%s)", rr.Code, rr.Body.String())
	}
	var signin map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &signin); err != nil {
		t.Fatalf("parse signin: %v", err)
	}

	rr = doRequest(t, server, http.MethodPost, "/api/auth/refresh", "", map[string]any{
		"refreshToken": signin["refreshToken"],
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("refresh: expected 200, got %d (%s)", rr.Code, rr.Body.String())
	}

	// The rotated-out token is dead.
	rr = doRequest(t, server, http.MethodPost, "/api/auth/refresh", "", map[string]any{
		"refreshToken": signin["refreshToken"],
	})
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("stale refresh: expected 401, got %d", rr.Code)
	}
}

func TestSessionEndpointWithoutToken(t *testing.T) {
	server := NewHTTPServer(newTestService(&fakeStore{}), "*", nil)

	rr := doRequest(t, server, http.MethodGet, "/api/session", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var response map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if response["authenticated"] != false {
		t.Errorf("expected authenticated=false, got %v", response["authenticated"])
	}
}

func TestPublicWeddingSurface(t *testing.T) {
	date := time.Date(2027, 6, 12, 0, 0, 0, 0, time.UTC)
	taken := "Jordan"
	fs := &fakeStore{
		getProjectFn: func(_ context.Context, id string) (store.Project, error) {
			if id == "prj_1" {
				return store.Project{ID: id, Title: "Summer Wedding"}, nil
			}
			return store.Project{}, sql.ErrNoRows
		},
		getWeddingDetailsFn: func(_ context.Context, id string) (store.WeddingDetails, error) {
			return store.WeddingDetails{ProjectID: id, Partner1Name: "Alex", Partner2Name: "Sam", Date: &date}, nil
		},
		listGiftsFn: func(context.Context, string) ([]store.Gift, error) {
			return []store.Gift{
				{ID: "gft_1", Name: "Toaster", TakenBy: &taken},
				{ID: "gft_2", Name: "Kettle"},
			}, nil
		},
	}
	server := NewHTTPServer(newTestService(fs), "*", nil)

	rr := doRequest(t, server, http.MethodGet, "/api/public/weddings/prj_1", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var response struct {
		Gifts []map[string]any `json:"gifts"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if len(response.Gifts) != 2 {
		t.Fatalf("expected 2 gifts, got %d", len(response.Gifts))
	}
	for _, gift := range response.Gifts {
		if _, leaked := gift["takenBy"]; leaked {
			t.Error("public payload must not reveal claimant names")
		}
	}
	if response.Gifts[0]["isTaken"] != true || response.Gifts[1]["isTaken"] != false {
		t.Errorf("unexpected availability flags: %v", response.Gifts)
	}

	rr = doRequest(t, server, http.MethodGet, "/api/public/weddings/prj_unknown", "", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown wedding, got %d", rr.Code)
	}
}

func TestPublicRSVPCreatesGuest(t *testing.T) {
	var created store.Guest
	fs := &fakeStore{
		getProjectFn: func(_ context.Context, id string) (store.Project, error) {
			if id == "prj_1" {
				return store.Project{ID: id, Title: "Summer Wedding"}, nil
			}
			return store.Project{}, sql.ErrNoRows
		},
		createGuestFn: func(_ context.Context, guest store.Guest) error {
			created = guest
			return nil
		},
	}
	server := NewHTTPServer(newTestService(fs), "*", nil)

	rr := doRequest(t, server, http.MethodPost, "/api/public/weddings/prj_1/rsvp", "", map[string]any{
		"name":      "Riley",
		"attending": true,
		"plusOne":   true,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rr.Code, rr.Body.String())
	}
	if created.Name != "Riley" || !created.Attending || !created.PlusOne {
		t.Errorf("unexpected guest: %+v", created)
	}

	rr = doRequest(t, server, http.MethodPost, "/api/public/weddings/prj_1/rsvp", "", map[string]any{"name": "  "})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for blank name, got %d", rr.Code)
	}
}

func TestPublicClaimGiftConflict(t *testing.T) {
	fs := &fakeStore{
		getGiftFn: func(_ context.Context, id string) (store.Gift, error) {
			if id == "gft_1" {
				return store.Gift{ID: id, ProjectID: "prj_1", Name: "Toaster"}, nil
			}
			return store.Gift{}, sql.ErrNoRows
		},
		claimGiftFn: func(context.Context, string, string, string) error {
			return store.ErrGiftClaimed
		},
	}
	server := NewHTTPServer(newTestService(fs), "*", nil)

	rr := doRequest(t, server, http.MethodPost, "/api/public/gifts/gft_1/claim", "", map[string]any{"guestName": "Riley"})
	if rr.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d (%s)", rr.Code, rr.Body.String())
	}
}
