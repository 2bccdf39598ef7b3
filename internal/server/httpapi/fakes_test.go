package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/aiinterview/internal/common"
	"github.com/dmitrijs2005/aiinterview/internal/logging"
	"github.com/dmitrijs2005/aiinterview/internal/server/ai/heygen"
	"github.com/dmitrijs2005/aiinterview/internal/server/ai/openai"
	"github.com/dmitrijs2005/aiinterview/internal/server/config"
	"github.com/dmitrijs2005/aiinterview/internal/server/credentials"
	"github.com/dmitrijs2005/aiinterview/internal/server/models"
	"github.com/dmitrijs2005/aiinterview/internal/server/services"
	"github.com/stretchr/testify/require"
)

// fakeAuth issues opaque tokens "access-<id>" / "refresh-<id>".
type fakeAuth struct {
	mu        sync.Mutex
	users     map[int64]*models.User
	passwords map[int64]string
	revoked   map[string]bool
	nextID    int64
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{users: map[int64]*models.User{}, passwords: map[int64]string{}, revoked: map[string]bool{}}
}

func (f *fakeAuth) add(u *models.User, password string) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	u.ID = f.nextID
	u.CreatedAt = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	f.users[u.ID] = u
	f.passwords[u.ID] = password
	return u
}

func pairFor(u *models.User) *services.TokenPair {
	id := strconv.FormatInt(u.ID, 10)
	return &services.TokenPair{AccessToken: "access-" + id, RefreshToken: "refresh-" + id}
}

func (f *fakeAuth) Register(ctx context.Context, role models.Role, in services.RegisterInput) (*models.User, *services.TokenPair, error) {
	if in.Email == "" {
		return nil, nil, common.NewValidationError("Missing required field: email")
	}
	f.mu.Lock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, in.Email) {
			f.mu.Unlock()
			return nil, nil, common.ErrorConflict
		}
	}
	f.mu.Unlock()

	u := f.add(&models.User{
		Email: in.Email, FirstName: in.FirstName, LastName: in.LastName, Role: role,
		Candidate: in.Candidate, Employer: in.Employer,
	}, in.Password)
	return u, pairFor(u), nil
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (*models.User, *services.TokenPair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, u := range f.users {
		if strings.EqualFold(u.Email, email) && f.passwords[id] == password {
			return u, pairFor(u), nil
		}
	}
	return nil, nil, common.ErrInvalidLogin
}

// lookup resolves "<prefix><id>" without consulting users, so a token can
// outlive its user.
func (f *fakeAuth) lookup(tok, prefix string) (*services.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.revoked[tok] {
		return nil, common.ErrTokenRevoked
	}
	if tok == "expired" {
		return nil, common.ErrTokenExpired
	}
	if !strings.HasPrefix(tok, prefix) {
		return nil, common.ErrInvalidToken
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(tok, prefix), 10, 64)
	if err != nil {
		return nil, common.ErrInvalidToken
	}
	role := models.RoleCandidate
	if u, ok := f.users[id]; ok {
		role = u.Role
	}
	return &services.Identity{UserID: id, Role: role, TokenID: tok, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (f *fakeAuth) Refresh(ctx context.Context, tok string) (string, error) {
	id, err := f.lookup(tok, "refresh-")
	if err != nil {
		return "", err
	}
	return "access-" + strconv.FormatInt(id.UserID, 10), nil
}

func (f *fakeAuth) Authenticate(ctx context.Context, tok string) (*services.Identity, error) {
	return f.lookup(tok, "access-")
}

func (f *fakeAuth) GetProfile(ctx context.Context, id *services.Identity) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id.UserID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeAuth) Logout(ctx context.Context, id *services.Identity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked[id.TokenID] = true
	f.revoked["refresh-"+strconv.FormatInt(id.UserID, 10)] = true
	return nil
}

type fakeInterviews struct {
	mu    sync.Mutex
	items map[int64]*models.Interview
	next  int64
}

func newFakeInterviews() *fakeInterviews {
	return &fakeInterviews{items: map[int64]*models.Interview{}}
}

func (f *fakeInterviews) Create(ctx context.Context, caller *services.Identity, in services.CreateInterviewInput) (*models.Interview, error) {
	if caller.Role != models.RoleEmployer {
		return nil, common.ErrorForbidden
	}
	if in.Title == "" {
		return nil, common.NewValidationError("Missing required field: title")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	it := &models.Interview{
		ID: f.next, Title: in.Title, Description: in.Description, Status: models.InterviewPending,
		CandidateID: in.CandidateID, EmployerID: caller.UserID, ScheduledAt: in.ScheduledAt,
		CreatedAt: time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC),
	}
	f.items[it.ID] = it
	return it, nil
}

func (f *fakeInterviews) List(ctx context.Context, caller *services.Identity) ([]*models.Interview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Interview{}
	for _, it := range f.items {
		if it.CandidateID == caller.UserID || it.EmployerID == caller.UserID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeInterviews) Get(ctx context.Context, caller *services.Identity, id int64) (*models.Interview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if it.CandidateID != caller.UserID && it.EmployerID != caller.UserID {
		return nil, common.ErrorForbidden
	}
	return it, nil
}

func (f *fakeInterviews) UpdateStatus(ctx context.Context, caller *services.Identity, id int64, upd services.StatusUpdate) (*models.Interview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if it.EmployerID != caller.UserID {
		return nil, common.ErrorForbidden
	}
	if !it.Status.CanTransitionTo(upd.Status) {
		return nil, common.ErrInvalidTransition
	}
	it.Status = upd.Status
	it.Score = upd.Score
	it.Feedback = upd.Feedback
	return it, nil
}

type fakeResumes struct{}

func (fakeResumes) UploadURL(ctx context.Context, caller *services.Identity, fileName string) (*services.ResumeUpload, error) {
	if caller.Role != models.RoleCandidate {
		return nil, common.ErrorForbidden
	}
	key := "resumes/1/x.pdf"
	return &services.ResumeUpload{
		UploadURL:   "http://s3.local/resumes/" + key + "?X-Amz-Signature=abc",
		ResumeURL:   "http://s3.local/resumes/" + key,
		Key:         key,
		ContentType: "application/pdf",
		ExpiresAt:   time.Date(2024, 5, 1, 12, 15, 0, 0, time.UTC),
	}, nil
}

func (fakeResumes) ConfirmUpload(ctx context.Context, caller *services.Identity, key string) (string, error) {
	if caller.Role != models.RoleCandidate {
		return "", common.ErrorForbidden
	}
	if key != "resumes/1/x.pdf" {
		return "", common.NewValidationError("Resume has not been uploaded")
	}
	return "http://s3.local/resumes/" + key, nil
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(ctx context.Context) error { return p.err }

// testEnv bundles a server with the fakes behind it.
type testEnv struct {
	srv        *Server
	auth       *fakeAuth
	interviews *fakeInterviews
	openAI     *credentials.Store
	heygenKey  *credentials.KeyStore
}

type envOption func(*testing.T, *config.Config, *Deps)

func withOpenAIVendor(h http.HandlerFunc) envOption {
	return func(t *testing.T, cfg *config.Config, d *Deps) {
		vendor := httptest.NewServer(h)
		t.Cleanup(vendor.Close)
		d.OpenAI = credentials.NewStore("", func(key string) *openai.Client {
			return openai.New(key, vendor.URL+"/v1", vendor.Client())
		}, time.Second)
	}
}

func withHeygenVendor(h http.HandlerFunc) envOption {
	return func(t *testing.T, cfg *config.Config, d *Deps) {
		vendor := httptest.NewServer(h)
		t.Cleanup(vendor.Close)
		d.Heygen = heygen.New(vendor.URL, vendor.Client(), nil)
	}
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.AuthRateLimit = 0

	env := &testEnv{auth: newFakeAuth(), interviews: newFakeInterviews(), heygenKey: credentials.NewKeyStore("")}
	d := Deps{
		Auth:       env.auth,
		Interviews: env.interviews,
		Resumes:    fakeResumes{},
		OpenAI:     credentials.NewStore("", func(key string) *openai.Client { return openai.New(key, "http://127.0.0.1:1/v1", nil) }, time.Second),
		HeygenKey:  env.heygenKey,
		Heygen:     heygen.New("http://127.0.0.1:1", nil, nil),
		DB:         fakePinger{},
	}
	for _, o := range opts {
		o(t, cfg, &d)
	}

	env.openAI = d.OpenAI
	env.srv = NewServer(cfg, logging.Nop{}, d)
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body string, headers ...string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

func bearer(tok string) []string {
	return []string{"Authorization", "Bearer " + tok}
}
