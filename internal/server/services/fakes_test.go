package services

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/y2k2/globa/internal/common"
	"github.com/y2k2/globa/internal/dbx"
	"github.com/y2k2/globa/internal/logging"
	"github.com/y2k2/globa/internal/server/models"
	"github.com/y2k2/globa/internal/server/push"
	"github.com/y2k2/globa/internal/server/repositories/analyses"
	"github.com/y2k2/globa/internal/server/repositories/foldershares"
	"github.com/y2k2/globa/internal/server/repositories/keywords"
	"github.com/y2k2/globa/internal/server/repositories/notifications"
	"github.com/y2k2/globa/internal/server/repositories/quizzes"
	"github.com/y2k2/globa/internal/server/repositories/records"
	"github.com/y2k2/globa/internal/server/repositories/sections"
	"github.com/y2k2/globa/internal/server/repositories/users"
)

var errDB = errors.New("connection reset")

// memDB is an in-memory backing store shared by all fake repositories.
// failOn names an operation ("keywords.find", "records.delete", ...) that returns errDB.
type memDB struct {
	mu            sync.Mutex
	users         map[int64]*models.User
	records       map[int64]*models.Record
	sections      map[int64][]models.Section
	quizzes       map[int64][]models.Quiz
	analyses      map[int64][]models.Analysis
	keywords      map[int64][]models.Keyword
	shares        map[int64][]models.FolderShare
	notifications []models.Notification
	deletes       []string
	failOn        string
}

func newMemDB() *memDB {
	return &memDB{
		users:    map[int64]*models.User{},
		records:  map[int64]*models.Record{},
		sections: map[int64][]models.Section{},
		quizzes:  map[int64][]models.Quiz{},
		analyses: map[int64][]models.Analysis{},
		keywords: map[int64][]models.Keyword{},
		shares:   map[int64][]models.FolderShare{},
	}
}

func (m *memDB) fail(op string) error {
	if m.failOn == op {
		return fmt.Errorf("db error: %w", errDB)
	}
	return nil
}

func strPtr(s string) *string { return &s }

func newUser(id int64, token string, uploadNotify, shareNotify bool) *models.User {
	u := &models.User{ID: id, Name: fmt.Sprintf("user-%d", id), UploadNotify: uploadNotify, ShareNotify: shareNotify}
	if token != "" {
		u.NotificationToken = strPtr(token)
	}
	return u
}

// seedComplete stores user 1 and record 42 in folder 7 with 3 sections,
// 2 quizzes, 5 analyses and 4 keywords.
func seedComplete(m *memDB) {
	m.users[1] = newUser(1, "tok-1", true, true)
	m.records[42] = &models.Record{ID: 42, FolderID: 7, UserID: 1, Title: "Lecture 3", StorageKey: strPtr("records/42.m4a")}
	m.sections[42] = []models.Section{
		{ID: 1, RecordID: 42}, {ID: 2, RecordID: 42}, {ID: 3, RecordID: 42},
	}
	m.quizzes[42] = []models.Quiz{{ID: 1, RecordID: 42}, {ID: 2, RecordID: 42}}
	m.analyses[1] = []models.Analysis{{ID: 1, SectionID: 1}, {ID: 2, SectionID: 1}}
	m.analyses[2] = []models.Analysis{{ID: 3, SectionID: 2}}
	m.analyses[3] = []models.Analysis{{ID: 4, SectionID: 3}, {ID: 5, SectionID: 3}}
	m.keywords[42] = []models.Keyword{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}
}

// seedShares grants folder 7 to the uploader, an eligible user, an opted-out
// user and a user without a device.
func seedShares(m *memDB) {
	m.shares[7] = []models.FolderShare{
		{ID: 1, FolderID: 7, OwnerID: 1, TargetUser: *newUser(1, "tok-1", true, true)},
		{ID: 2, FolderID: 7, OwnerID: 1, TargetUser: *newUser(2, "tok-2", true, true)},
		{ID: 3, FolderID: 7, OwnerID: 1, TargetUser: *newUser(3, "tok-3", true, false)},
		{ID: 4, FolderID: 7, OwnerID: 1, TargetUser: *newUser(4, "", true, true)},
	}
}

type fakeUsers struct{ m *memDB }

func (f fakeUsers) FindByID(_ context.Context, id int64) (*models.User, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if err := f.m.fail("users.find"); err != nil {
		return nil, err
	}
	u, ok := f.m.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

type fakeRecords struct{ m *memDB }

func (f fakeRecords) FindByID(_ context.Context, id int64) (*models.Record, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if err := f.m.fail("records.find"); err != nil {
		return nil, err
	}
	r, ok := f.m.records[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *r
	return &cp, nil
}

func (f fakeRecords) Delete(_ context.Context, id int64) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if err := f.m.fail("records.delete"); err != nil {
		return err
	}
	f.m.deletes = append(f.m.deletes, "records")
	delete(f.m.records, id)
	return nil
}

type fakeSections struct{ m *memDB }

func (f fakeSections) FindAllByRecordID(_ context.Context, id int64) ([]models.Section, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if err := f.m.fail("sections.find"); err != nil {
		return nil, err
	}
	return append([]models.Section(nil), f.m.sections[id]...), nil
}

func (f fakeSections) DeleteByRecordID(_ context.Context, id int64) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if err := f.m.fail("sections.delete"); err != nil {
		return err
	}
	f.m.deletes = append(f.m.deletes, "sections")
	delete(f.m.sections, id)
	return nil
}

type fakeQuizzes struct{ m *memDB }

func (f fakeQuizzes) FindAllByRecordID(_ context.Context, id int64) ([]models.Quiz, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if err := f.m.fail("quizzes.find"); err != nil {
		return nil, err
	}
	return append([]models.Quiz(nil), f.m.quizzes[id]...), nil
}

func (f fakeQuizzes) DeleteByRecordID(_ context.Context, id int64) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if err := f.m.fail("quizzes.delete"); err != nil {
		return err
	}
	f.m.deletes = append(f.m.deletes, "quizzes")
	delete(f.m.quizzes, id)
	return nil
}

type fakeAnalyses struct{ m *memDB }

func (f fakeAnalyses) FindAllBySectionID(_ context.Context, id int64) ([]models.Analysis, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if err := f.m.fail("analyses.find"); err != nil {
		return nil, err
	}
	return append([]models.Analysis(nil), f.m.analyses[id]...), nil
}

func (f fakeAnalyses) DeleteByRecordID(_ context.Context, recordID int64) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if err := f.m.fail("analyses.delete"); err != nil {
		return err
	}
	f.m.deletes = append(f.m.deletes, "analyses")
	for _, s := range f.m.sections[recordID] {
		delete(f.m.analyses, s.ID)
	}
	return nil
}

type fakeKeywords struct{ m *memDB }

func (f fakeKeywords) FindAllByRecordID(_ context.Context, id int64) ([]models.Keyword, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if err := f.m.fail("keywords.find"); err != nil {
		return nil, err
	}
	return append([]models.Keyword(nil), f.m.keywords[id]...), nil
}

func (f fakeKeywords) DeleteByRecordID(_ context.Context, id int64) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if err := f.m.fail("keywords.delete"); err != nil {
		return err
	}
	f.m.deletes = append(f.m.deletes, "keywords")
	delete(f.m.keywords, id)
	return nil
}

type fakeNotifications struct{ m *memDB }

func (f fakeNotifications) Create(_ context.Context, n *models.Notification) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if err := f.m.fail("notifications.create"); err != nil {
		return err
	}
	n.ID = int64(len(f.m.notifications) + 1)
	f.m.notifications = append(f.m.notifications, *n)
	return nil
}

func (f fakeNotifications) ListByToUser(_ context.Context, userID int64, limit, offset int) ([]models.Notification, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if err := f.m.fail("notifications.list"); err != nil {
		return nil, err
	}
	var out []models.Notification
	for _, n := range f.m.notifications {
		if n.ToUserID == userID {
			out = append(out, n)
		}
	}
	if offset >= len(out) {
		return []models.Notification{}, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeShares struct{ m *memDB }

func (f fakeShares) FindAllByFolderID(_ context.Context, id int64) ([]models.FolderShare, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if err := f.m.fail("shares.find"); err != nil {
		return nil, err
	}
	return append([]models.FolderShare(nil), f.m.shares[id]...), nil
}

type fakeRepoManager struct{ m *memDB }

func (r fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (r fakeRepoManager) Users(dbx.DBTX) users.Repository              { return fakeUsers{r.m} }
func (r fakeRepoManager) Records(dbx.DBTX) records.Repository          { return fakeRecords{r.m} }
func (r fakeRepoManager) Sections(dbx.DBTX) sections.Repository        { return fakeSections{r.m} }
func (r fakeRepoManager) Quizzes(dbx.DBTX) quizzes.Repository          { return fakeQuizzes{r.m} }
func (r fakeRepoManager) Analyses(dbx.DBTX) analyses.Repository        { return fakeAnalyses{r.m} }
func (r fakeRepoManager) Keywords(dbx.DBTX) keywords.Repository        { return fakeKeywords{r.m} }
func (r fakeRepoManager) Notifications(dbx.DBTX) notifications.Repository {
	return fakeNotifications{r.m}
}
func (r fakeRepoManager) FolderShares(dbx.DBTX) foldershares.Repository { return fakeShares{r.m} }

type fakeGateway struct {
	mu       sync.Mutex
	sent     []push.Message
	batches  [][]push.Message
	sendErr  error
	batchErr error
	// failTokens are counted as per-recipient failures in batches.
	failTokens map[string]bool
}

func (g *fakeGateway) Send(_ context.Context, m push.Message) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sendErr != nil {
		return g.sendErr
	}
	g.sent = append(g.sent, m)
	return nil
}

func (g *fakeGateway) SendBatch(_ context.Context, msgs []push.Message) (push.BatchResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.batches = append(g.batches, msgs)
	if g.batchErr != nil {
		return push.BatchResult{}, g.batchErr
	}
	var res push.BatchResult
	for _, m := range msgs {
		if g.failTokens[m.Token] {
			res.FailureCount++
		} else {
			res.SuccessCount++
		}
	}
	return res, nil
}

type fakeStore struct {
	deleted []string
	err     error
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	if s.err != nil {
		return s.err
	}
	s.deleted = append(s.deleted, key)
	return nil
}

// logBuffer captures JSON log lines.
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *logBuffer) lines(level string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, l := range strings.Split(strings.TrimSpace(b.buf.String()), "\n") {
		if strings.Contains(l, `"level":"`+level+`"`) {
			out = append(out, l)
		}
	}
	return out
}

type fixture struct {
	db      *sql.DB
	mock    sqlmock.Sqlmock
	mem     *memDB
	gateway *fakeGateway
	store   *fakeStore
	logs    *logBuffer
	svc     *CompletionService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	f := &fixture{
		db:      db,
		mock:    mock,
		mem:     newMemDB(),
		gateway: &fakeGateway{},
		store:   &fakeStore{},
		logs:    &logBuffer{},
	}
	logger := logging.NewJSONLogger(f.logs, "debug")
	rm := fakeRepoManager{f.mem}
	d := NewDispatcher(db, rm, f.gateway, logger)
	f.svc = NewCompletionService(db, rm, d, f.store, logger)
	return f
}
