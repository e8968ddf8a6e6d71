package service

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nnptud/lms-backend/internal/config"
	"github.com/nnptud/lms-backend/internal/model"
	"github.com/nnptud/lms-backend/internal/repository"
	"github.com/rs/zerolog"
)

// memDB is an in-memory stand-in for the PostgreSQL schema. Each fake store
// below is a view on it, mirroring the constraints the repositories rely on.
type memDB struct {
	mu          sync.Mutex
	seq         int
	users       map[int]model.User
	classes     map[int]model.Class
	members     map[[2]int]model.ClassMembership
	assignments map[int]model.Assignment
	submissions map[int]model.Submission
	grades      map[int]model.Grade // by submission id
	comments    map[int]model.Comment
	now         func() time.Time
}

func newMemDB() *memDB {
	return &memDB{
		users:       map[int]model.User{},
		classes:     map[int]model.Class{},
		members:     map[[2]int]model.ClassMembership{},
		assignments: map[int]model.Assignment{},
		submissions: map[int]model.Submission{},
		grades:      map[int]model.Grade{},
		comments:    map[int]model.Comment{},
		now:         time.Now,
	}
}

func (db *memDB) nextID() int {
	db.seq++
	return db.seq
}

// ─── Users ─────────────────────────────────────────────────────────

type fakeUsers struct{ db *memDB }

func (f fakeUsers) GetByID(_ context.Context, id int) (*model.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	u, ok := f.db.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (f fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, u := range f.db.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f fakeUsers) Create(_ context.Context, u *model.User) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, existing := range f.db.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return repository.ErrDuplicateEmail
		}
	}
	u.ID = f.db.nextID()
	u.CreatedAt = f.db.now()
	u.UpdatedAt = u.CreatedAt
	f.db.users[u.ID] = *u
	return nil
}

func (f fakeUsers) List(_ context.Context, flt model.UserFilter) ([]model.User, int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []model.User{}
	for _, u := range f.db.users {
		if flt.Role != nil && u.Role != *flt.Role {
			continue
		}
		if flt.Status != nil && u.Status != *flt.Status {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	total := len(out)
	if flt.Limit > 0 {
		if flt.Offset >= len(out) {
			return []model.User{}, total, nil
		}
		end := flt.Offset + flt.Limit
		if end > len(out) {
			end = len(out)
		}
		out = out[flt.Offset:end]
	}
	return out, total, nil
}

func (f fakeUsers) UpdateStatus(_ context.Context, id int, status model.UserStatus) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	u, ok := f.db.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Status = status
	f.db.users[id] = u
	return nil
}

// ─── Classes ───────────────────────────────────────────────────────

type fakeClasses struct {
	db *memDB
	// codeExistsHook, when set, overrides CodeExists for collision tests.
	codeExistsHook func(code string) bool
}

func (f *fakeClasses) GetByID(_ context.Context, id int) (*model.Class, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	c, ok := f.db.classes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (f *fakeClasses) GetActiveByCode(_ context.Context, code string) (*model.Class, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, c := range f.db.classes {
		if c.Code == code && c.Status == model.ClassStatusActive {
			c := c
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeClasses) CodeExists(_ context.Context, code string) (bool, error) {
	if f.codeExistsHook != nil {
		return f.codeExistsHook(code), nil
	}
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, c := range f.db.classes {
		if c.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeClasses) Create(_ context.Context, c *model.Class) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, existing := range f.db.classes {
		if existing.Code == c.Code {
			return repository.ErrDuplicateCode
		}
	}
	c.ID = f.db.nextID()
	c.CreatedAt = f.db.now()
	c.UpdatedAt = c.CreatedAt
	f.db.classes[c.ID] = *c
	return nil
}

func (f *fakeClasses) Update(_ context.Context, c *model.Class) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.classes[c.ID]; !ok {
		return repository.ErrNotFound
	}
	c.UpdatedAt = f.db.now()
	f.db.classes[c.ID] = *c
	return nil
}

func (f *fakeClasses) Delete(_ context.Context, id int) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.classes[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.db.classes, id)
	for k := range f.db.members {
		if k[0] == id {
			delete(f.db.members, k)
		}
	}
	for aid, a := range f.db.assignments {
		if a.ClassID == id {
			delete(f.db.assignments, aid)
		}
	}
	return nil
}

func (f *fakeClasses) List(_ context.Context, flt model.ClassFilter) ([]model.ClassSummary, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []model.ClassSummary{}
	for _, c := range f.db.classes {
		if flt.Status != nil && c.Status != *flt.Status {
			continue
		}
		if flt.TeacherID != nil && c.TeacherID != *flt.TeacherID {
			continue
		}
		if flt.MemberID != nil {
			m, ok := f.db.members[[2]int{c.ID, *flt.MemberID}]
			if !ok || m.Status != model.MembershipStatusActive {
				continue
			}
		}
		out = append(out, model.ClassSummary{Class: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ─── Memberships ───────────────────────────────────────────────────

type fakeMembers struct{ db *memDB }

func (f fakeMembers) Get(_ context.Context, classID, userID int) (*model.ClassMembership, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	m, ok := f.db.members[[2]int{classID, userID}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &m, nil
}

func (f fakeMembers) Upsert(_ context.Context, classID, userID int, status model.MembershipStatus) (*model.ClassMembership, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	key := [2]int{classID, userID}
	m, ok := f.db.members[key]
	if !ok {
		m = model.ClassMembership{ID: f.db.nextID(), ClassID: classID, UserID: userID, JoinedAt: f.db.now()}
	}
	m.Status = status
	m.UpdatedAt = f.db.now()
	f.db.members[key] = m
	return &m, nil
}

func (f fakeMembers) ListActiveMembers(_ context.Context, classID int) ([]model.Member, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []model.Member{}
	for k, m := range f.db.members {
		if k[0] != classID || m.Status != model.MembershipStatusActive {
			continue
		}
		u := f.db.users[k[1]]
		out = append(out, model.Member{UserID: u.ID, Name: u.Name, Email: u.Email, JoinedAt: m.JoinedAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// ─── Assignments ───────────────────────────────────────────────────

type fakeAssignments struct{ db *memDB }

func (f fakeAssignments) GetByID(_ context.Context, id int) (*model.Assignment, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	a, ok := f.db.assignments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (f fakeAssignments) Create(_ context.Context, a *model.Assignment) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.classes[a.ClassID]; !ok {
		return repository.ErrForeignKey
	}
	a.ID = f.db.nextID()
	a.CreatedAt = f.db.now()
	a.UpdatedAt = a.CreatedAt
	f.db.assignments[a.ID] = *a
	return nil
}

func (f fakeAssignments) Update(_ context.Context, a *model.Assignment) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.assignments[a.ID]; !ok {
		return repository.ErrNotFound
	}
	a.UpdatedAt = f.db.now()
	f.db.assignments[a.ID] = *a
	return nil
}

func (f fakeAssignments) Delete(_ context.Context, id int) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.assignments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.db.assignments, id)
	return nil
}

func (f fakeAssignments) ListByClass(_ context.Context, classID int) ([]model.Assignment, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []model.Assignment{}
	for _, a := range f.db.assignments {
		if a.ClassID == classID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f fakeAssignments) ListForStudent(_ context.Context, studentID int) ([]model.StudentAssignment, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []model.StudentAssignment{}
	for _, a := range f.db.assignments {
		c := f.db.classes[a.ClassID]
		m, ok := f.db.members[[2]int{c.ID, studentID}]
		if c.Status != model.ClassStatusActive || !ok || m.Status != model.MembershipStatusActive {
			continue
		}
		item := model.StudentAssignment{Assignment: a, Class: model.ClassRef{ID: c.ID, Name: c.Name}}
		for _, s := range f.db.submissions {
			if s.AssignmentID == a.ID && s.StudentID == studentID {
				s := s
				item.MySubmission = &s
			}
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Assignment.ID < out[j].Assignment.ID })
	return out, nil
}

// ─── Submissions ───────────────────────────────────────────────────

type fakeSubmissions struct{ db *memDB }

func (f fakeSubmissions) withGrade(s model.Submission) *model.Submission {
	if g, ok := f.db.grades[s.ID]; ok {
		s.Grade = &g
	}
	return &s
}

func (f fakeSubmissions) GetByID(_ context.Context, id int) (*model.Submission, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	s, ok := f.db.submissions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return f.withGrade(s), nil
}

func (f fakeSubmissions) GetByAssignmentAndStudent(_ context.Context, assignmentID, studentID int) (*model.Submission, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, s := range f.db.submissions {
		if s.AssignmentID == assignmentID && s.StudentID == studentID {
			return f.withGrade(s), nil
		}
	}
	return nil, repository.ErrNotFound
}

// Upsert mirrors the ON CONFLICT (assignment_id, student_id) statement:
// empty content or file keep the stored value.
func (f fakeSubmissions) Upsert(_ context.Context, s *model.Submission) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for id, existing := range f.db.submissions {
		if existing.AssignmentID != s.AssignmentID || existing.StudentID != s.StudentID {
			continue
		}
		if s.Content == nil {
			s.Content = existing.Content
		}
		if s.FileURL == nil {
			s.FileURL = existing.FileURL
		}
		s.ID = id
		s.LastUpdatedAt = s.SubmittedAt
		f.db.submissions[id] = *s
		return nil
	}
	s.ID = f.db.nextID()
	s.LastUpdatedAt = s.SubmittedAt
	f.db.submissions[s.ID] = *s
	return nil
}

func (f fakeSubmissions) ListByAssignment(_ context.Context, assignmentID int) ([]model.Submission, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []model.Submission{}
	for _, s := range f.db.submissions {
		if s.AssignmentID == assignmentID {
			out = append(out, *f.withGrade(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ─── Grades ────────────────────────────────────────────────────────

type fakeGrades struct{ db *memDB }

func (f fakeGrades) GetBySubmission(_ context.Context, submissionID int) (*model.Grade, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	g, ok := f.db.grades[submissionID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &g, nil
}

func (f fakeGrades) Upsert(_ context.Context, g *model.Grade) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if existing, ok := f.db.grades[g.SubmissionID]; ok {
		g.ID = existing.ID
	} else {
		g.ID = f.db.nextID()
	}
	f.db.grades[g.SubmissionID] = *g
	return nil
}

func (f fakeGrades) HighestForAssignment(_ context.Context, assignmentID int) (float64, bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	top, found := 0.0, false
	for subID, g := range f.db.grades {
		if f.db.submissions[subID].AssignmentID != assignmentID {
			continue
		}
		if !found || g.Score > top {
			top, found = g.Score, true
		}
	}
	return top, found, nil
}

// ─── Comments ──────────────────────────────────────────────────────

type fakeComments struct{ db *memDB }

func (f fakeComments) GetByID(_ context.Context, id int) (*model.Comment, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	c, ok := f.db.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (f fakeComments) Create(_ context.Context, c *model.Comment) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	c.ID = f.db.nextID()
	c.CreatedAt = f.db.now()
	c.UpdatedAt = c.CreatedAt
	f.db.comments[c.ID] = *c
	return nil
}

func (f fakeComments) Update(_ context.Context, c *model.Comment) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.comments[c.ID]; !ok {
		return repository.ErrNotFound
	}
	c.UpdatedAt = f.db.now()
	f.db.comments[c.ID] = *c
	return nil
}

func (f fakeComments) Delete(_ context.Context, id int) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.comments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.db.comments, id)
	return nil
}

func (f fakeComments) List(_ context.Context, flt model.CommentFilter) ([]model.Comment, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []model.Comment{}
	for _, c := range f.db.comments {
		switch {
		case flt.AssignmentID != nil && c.AssignmentID != nil && *c.AssignmentID == *flt.AssignmentID:
		case flt.SubmissionID != nil && c.SubmissionID != nil && *c.SubmissionID == *flt.SubmissionID:
		default:
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ─── Notifier ──────────────────────────────────────────────────────

type published struct {
	Topic string
	Event model.EventName
	Data  any
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []published
}

func (n *recordingNotifier) Publish(_ context.Context, topic string, event model.EventName, data any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, published{Topic: topic, Event: event, Data: data})
}

func (n *recordingNotifier) topics() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.Topic)
	}
	return out
}

func (n *recordingNotifier) reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = nil
}

// ─── Fixture ───────────────────────────────────────────────────────

// fakeClock is a settable clock shared by every service in a fixture.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	db       *memDB
	clock    *fakeClock
	notifier *recordingNotifier
	classes  *fakeClasses

	auth       *AuthService
	users      *UserService
	access     *AccessService
	class      *ClassService
	assignment *AssignmentService
	submission *SubmissionService
	grade      *GradeService
	comment    *CommentService
}

func newFixture() *fixture {
	clock := &fakeClock{t: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	db := newMemDB()
	db.now = clock.Now

	cfg := &config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: 4,
	}
	log := zerolog.Nop()

	classes := &fakeClasses{db: db}
	users := fakeUsers{db}
	members := fakeMembers{db}
	assignments := fakeAssignments{db}
	submissions := fakeSubmissions{db}
	notifier := &recordingNotifier{}

	access := NewAccessService(classes, members, assignments, submissions)
	auth := NewAuthService(cfg, users, log)
	auth.now = clock.Now

	sub := NewSubmissionService(submissions, assignments, members, access, notifier, log)
	sub.now = clock.Now
	grade := NewGradeService(fakeGrades{db}, submissions, access, notifier, log)
	grade.now = clock.Now

	return &fixture{
		db:         db,
		clock:      clock,
		notifier:   notifier,
		classes:    classes,
		auth:       auth,
		users:      NewUserService(users, auth, log),
		access:     access,
		class:      NewClassService(classes, members, assignments, users, access, log),
		assignment: NewAssignmentService(assignments, fakeGrades{db}, access, log),
		submission: sub,
		grade:      grade,
		comment:    NewCommentService(fakeComments{db}, access, notifier, log),
	}
}

// addUser stores an ACTIVE user directly and returns its actor.
func (f *fixture) addUser(role model.Role, name string) *model.Actor {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	id := f.db.nextID()
	email := strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com"
	f.db.users[id] = model.User{ID: id, Name: name, Email: email, Role: role, Status: model.UserStatusActive}
	return &model.Actor{ID: id, Email: email, Name: name, Role: role}
}

// addClass stores a class directly, bypassing join code generation.
func (f *fixture) addClass(teacher *model.Actor, code string) *model.Class {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	c := model.Class{ID: f.db.nextID(), Name: "Class " + code, Code: code, TeacherID: teacher.ID, Status: model.ClassStatusActive}
	f.db.classes[c.ID] = c
	return &c
}

// setMembership stores a membership row directly.
func (f *fixture) setMembership(classID, userID int, status model.MembershipStatus) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	f.db.members[[2]int{classID, userID}] = model.ClassMembership{ID: f.db.nextID(), ClassID: classID, UserID: userID, Status: status}
}

// addAssignment stores an assignment directly.
func (f *fixture) addAssignment(classID int, due *time.Time, allowLate bool) *model.Assignment {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	a := model.Assignment{ID: f.db.nextID(), ClassID: classID, Title: "Essay", DueDate: due, AllowLate: allowLate, MaxScore: model.DefaultMaxScore}
	f.db.assignments[a.ID] = a
	return &a
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func timePtr(t time.Time) *time.Time { return &t }

func itoa(i int) string { return strconv.Itoa(i) }
