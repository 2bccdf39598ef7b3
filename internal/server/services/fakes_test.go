package services

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/aiinterview/internal/common"
	"github.com/dmitrijs2005/aiinterview/internal/dbx"
	"github.com/dmitrijs2005/aiinterview/internal/server/config"
	"github.com/dmitrijs2005/aiinterview/internal/server/models"
	interviewsrepo "github.com/dmitrijs2005/aiinterview/internal/server/repositories/interviews"
	"github.com/dmitrijs2005/aiinterview/internal/server/repositories/revokedtokens"
	usersrepo "github.com/dmitrijs2005/aiinterview/internal/server/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 30 * 24 * time.Hour,
		S3Region:                     "us-east-1",
		S3RootUser:                   "minioadmin",
		S3RootPassword:               "minioadmin",
		S3BaseEndpoint:               "http://127.0.0.1:9000/",
		S3Bucket:                     "resumes",
	}
}

// fakeUsersRepo is an in-memory users.Repository keyed by lower-cased email.
type fakeUsersRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*models.User

	getErr    error
	createErr error
	resumeErr error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byID: map[int64]*models.User{}}
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, existing := range f.byID {
		if strings.EqualFold(existing.Email, u.Email) {
			return nil, common.ErrorConflict
		}
	}
	f.nextID++
	cp := *u
	cp.ID = f.nextID
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	f.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byID {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsersRepo) SetResumeURL(ctx context.Context, id int64, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resumeErr != nil {
		return f.resumeErr
	}
	u, ok := f.byID[id]
	if !ok || u.Role != models.RoleCandidate {
		return common.ErrorNotFound
	}
	if u.Candidate == nil {
		u.Candidate = &models.CandidateProfile{}
	}
	u.Candidate.ResumeURL = url
	return nil
}

// put stores u directly, bypassing Create.
func (f *fakeUsersRepo) put(u *models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[u.ID] = u
	if u.ID > f.nextID {
		f.nextID = u.ID
	}
}

type fakeInterviewsRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*models.Interview

	createErr error
	updateErr error
	lastMove  *interviewsrepo.StatusChange
}

func newFakeInterviewsRepo() *fakeInterviewsRepo {
	return &fakeInterviewsRepo{byID: map[int64]*models.Interview{}}
}

func (f *fakeInterviewsRepo) Create(ctx context.Context, it *models.Interview) (*models.Interview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	cp := *it
	cp.ID = f.nextID
	cp.Status = models.InterviewPending
	cp.CreatedAt = time.Now()
	f.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeInterviewsRepo) GetByID(ctx context.Context, id int64) (*models.Interview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *it
	return &cp, nil
}

func (f *fakeInterviewsRepo) list(match func(*models.Interview) bool) []*models.Interview {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Interview, 0)
	for _, it := range f.byID {
		if match(it) {
			cp := *it
			out = append(out, &cp)
		}
	}
	return out
}

func (f *fakeInterviewsRepo) ListByCandidate(ctx context.Context, id int64) ([]*models.Interview, error) {
	return f.list(func(it *models.Interview) bool { return it.CandidateID == id }), nil
}

func (f *fakeInterviewsRepo) ListByEmployer(ctx context.Context, id int64) ([]*models.Interview, error) {
	return f.list(func(it *models.Interview) bool { return it.EmployerID == id }), nil
}

func (f *fakeInterviewsRepo) UpdateStatus(ctx context.Context, id int64, change interviewsrepo.StatusChange) (*models.Interview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	it, ok := f.byID[id]
	if !ok || it.Status != change.From {
		return nil, common.ErrInvalidTransition
	}
	f.lastMove = &change
	it.Status = change.To
	if change.Score != nil {
		it.Score = change.Score
	}
	if change.Feedback != "" {
		it.Feedback = change.Feedback
	}
	it.CompletedAt = change.CompletedAt
	cp := *it
	return &cp, nil
}

type fakeDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Time

	revokeErr error
	checkErr  error
}

func newFakeDenylist() *fakeDenylist {
	return &fakeDenylist{revoked: map[string]time.Time{}}
}

func (f *fakeDenylist) Revoke(ctx context.Context, jti string, userID int64, exp time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.revokeErr != nil {
		return f.revokeErr
	}
	f.revoked[jti] = exp
	return nil
}

func (f *fakeDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.checkErr != nil {
		return false, f.checkErr
	}
	_, ok := f.revoked[jti]
	return ok, nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	i *fakeInterviewsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository { return m.u }
func (m *fakeRepoManager) Interviews(db dbx.DBTX) interviewsrepo.Repository { return m.i }
func (m *fakeRepoManager) RevokedTokens(db dbx.DBTX) revokedtokens.Repository { return nil }
