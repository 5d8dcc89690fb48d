package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/campusquest/api/internal/blob"
	"github.com/campusquest/api/internal/database"
	"github.com/campusquest/api/internal/docstore"
	"github.com/campusquest/api/internal/journey"
	"github.com/campusquest/api/internal/quest"
	"github.com/campusquest/api/internal/users"
)

func testRouter(t *testing.T) *chi.Mux {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	docs, err := docstore.New(ctx, db)
	if err != nil {
		t.Fatalf("init docstore: %v", err)
	}
	us := users.New(docs)
	qs := quest.New(docs, us, blob.Local{Dir: t.TempDir()})
	je := journey.New(us)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	addRoutes(r, logger, Deps{
		DB:       db,
		Docs:     docs,
		Users:    us,
		Quests:   qs,
		Journeys: je,
	})
	return r
}

func registerUser(t *testing.T, r *chi.Mux, name, email string) AuthResponse {
	t.Helper()
	body, _ := json.Marshal(RegisterRequest{Name: name, Email: email, Password: "password123"})
	req := httptest.NewRequest(http.MethodPost, "/api/register", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("register %s: expected 200, got %d: %s", email, w.Code, w.Body.String())
	}
	var resp AuthResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Token == "" {
		t.Fatalf("register %s: empty token", email)
	}
	return resp
}

func questForm(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	fw, err := mw.CreateFormFile("image", "proof.jpg")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	fw.Write([]byte("not-really-a-jpeg"))
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func doAuth(r *chi.Mux, method, path, token string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterAndLogin(t *testing.T) {
	r := testRouter(t)
	registerUser(t, r, "Maria", "maria@example.com")

	body, _ := json.Marshal(LoginRequest{Email: "maria@example.com", Password: "password123"})
	req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp AuthResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Name != "Maria" {
		t.Errorf("expected name 'Maria', got %q", resp.Name)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	r := testRouter(t)
	registerUser(t, r, "Maria", "maria@example.com")

	body, _ := json.Marshal(RegisterRequest{Name: "Other", Email: "maria@example.com", Password: "password123"})
	req := httptest.NewRequest(http.MethodPost, "/api/register", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	r := testRouter(t)
	registerUser(t, r, "Maria", "maria@example.com")

	body, _ := json.Marshal(LoginRequest{Email: "maria@example.com", Password: "wrong-password"})
	req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestCreateQuestRequiresAuth(t *testing.T) {
	r := testRouter(t)
	buf, ct := questForm(t, map[string]string{"name": "Nope"})

	req := httptest.NewRequest(http.MethodPost, "/api/quests", buf)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestQuestLifecycle(t *testing.T) {
	r := testRouter(t)
	creator := registerUser(t, r, "Creator", "creator@example.com")
	hunter := registerUser(t, r, "Hunter", "hunter@example.com")

	// Create.
	buf, ct := questForm(t, map[string]string{
		"name":   "Find the sundial",
		"emoji":  "🕰️",
		"lat":    "49.41",
		"lng":    "8.69",
		"radius": "60",
		"reward": "50",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/quests", buf)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer "+creator.Token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created QuestView
	json.NewDecoder(w.Body).Decode(&created)
	if created.Reward != 50 {
		t.Errorf("expected reward 50, got %d", created.Reward)
	}
	if created.ImageURL == "" {
		t.Error("expected non-empty image url")
	}

	// Listed.
	w = doAuth(r, http.MethodGet, "/api/quests", hunter.Token, nil)
	var listed []QuestView
	json.NewDecoder(w.Body).Decode(&listed)
	if len(listed) != 1 {
		t.Fatalf("expected 1 open quest, got %d", len(listed))
	}

	// Accept, then accept again.
	w = doAuth(r, http.MethodPost, "/api/quests/"+created.ID+"/accept", hunter.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("accept: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	w = doAuth(r, http.MethodPost, "/api/quests/"+created.ID+"/accept", hunter.Token, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("re-accept: expected 409, got %d", w.Code)
	}

	// Submit proof.
	buf, ct = questForm(t, nil)
	req = httptest.NewRequest(http.MethodPost, "/api/quests/"+created.ID+"/submission", buf)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer "+hunter.Token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("submit: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Hunter can't approve.
	body, _ := json.Marshal(ApproveRequest{UserID: hunter.UserID})
	w = doAuth(r, http.MethodPost, "/api/quests/"+created.ID+"/approve", hunter.Token, bytes.NewReader(body))
	if w.Code != http.StatusForbidden {
		t.Fatalf("approve by non-creator: expected 403, got %d", w.Code)
	}

	// Creator approves.
	body, _ = json.Marshal(ApproveRequest{UserID: hunter.UserID})
	w = doAuth(r, http.MethodPost, "/api/quests/"+created.ID+"/approve", creator.Token, bytes.NewReader(body))
	if w.Code != http.StatusOK {
		t.Fatalf("approve: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Hunter got the reward and the quest id was cleaned up.
	w = doAuth(r, http.MethodGet, "/api/me", hunter.Token, nil)
	var me MeResponse
	json.NewDecoder(w.Body).Decode(&me)
	if me.SpendablePoints != 50 || me.LeaderBoardPoints != 50 {
		t.Errorf("expected 50/50 points, got %d/%d", me.SpendablePoints, me.LeaderBoardPoints)
	}
	if len(me.AcceptedQuests) != 0 {
		t.Errorf("expected accepted quests cleared, got %v", me.AcceptedQuests)
	}

	// Closed quest is gone.
	w = doAuth(r, http.MethodGet, "/api/quests", hunter.Token, nil)
	listed = nil
	json.NewDecoder(w.Body).Decode(&listed)
	if len(listed) != 0 {
		t.Errorf("expected no open quests, got %d", len(listed))
	}
	w = doAuth(r, http.MethodGet, "/api/quests/"+created.ID, hunter.Token, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get closed quest: expected 404, got %d", w.Code)
	}
}

func TestCloseForbiddenForNonCreator(t *testing.T) {
	r := testRouter(t)
	creator := registerUser(t, r, "Creator", "creator@example.com")
	other := registerUser(t, r, "Other", "other@example.com")

	buf, ct := questForm(t, map[string]string{
		"name":   "Quad statue selfie",
		"radius": "40",
		"reward": "10",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/quests", buf)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer "+creator.Token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var created QuestView
	json.NewDecoder(w.Body).Decode(&created)

	w = doAuth(r, http.MethodPost, "/api/quests/"+created.ID+"/close", other.Token, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}

	w = doAuth(r, http.MethodPost, "/api/quests/"+created.ID+"/close", creator.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("close by creator: expected 200, got %d: %s", w.Code, w.Body.String())
	}
}
