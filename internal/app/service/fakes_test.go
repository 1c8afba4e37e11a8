package service

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"time"

	"school_admin/internal/common"
	"school_admin/internal/domain/model"
	"school_admin/internal/domain/repository"
)

// In-memory repository fakes. Repositories accept a nil *sql.Tx, and the
// services run unwrapped when constructed without a db, so the fakes ignore
// transactions entirely.

type fakeUserRepo struct {
	users map[string]*model.User // by id
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (r *fakeUserRepo) add(u model.User) {
	cp := u
	r.users[u.ID] = &cp
}

func (r *fakeUserRepo) Create(ctx context.Context, tx *sql.Tx, user *model.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return common.ErrConflict
		}
	}
	r.add(*user)
	return nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindByIDAndRole(ctx context.Context, id string, role model.Role) (*model.User, error) {
	u, ok := r.users[id]
	if !ok || u.Role != role {
		return nil, common.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindTeacherBySubjectClass(ctx context.Context, subjectClassID string) (*model.User, error) {
	for _, u := range r.users {
		if u.Role != model.RoleTeacher {
			continue
		}
		for _, scID := range u.SubjectClassIDs {
			if scID == subjectClassID {
				cp := *u
				return &cp, nil
			}
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) FindStudentsBySubjectClass(ctx context.Context, subjectClassID string) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		if u.Role != model.RoleStudent {
			continue
		}
		for _, scID := range u.SubjectClassIDs {
			if scID == subjectClassID {
				out = append(out, *u)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeUserRepo) List(ctx context.Context, role model.Role, filter repository.UserFilter, page, limit int) ([]model.User, int, error) {
	var out []model.User
	for _, u := range r.users {
		if u.Role != role {
			continue
		}
		if filter.Name != nil && !strings.Contains(strings.ToLower(u.Name), strings.ToLower(*filter.Name)) {
			continue
		}
		if filter.Blocked != nil && u.Blocked != *filter.Blocked {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, tx *sql.Tx, id, name, email string) error {
	u, ok := r.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.Name = name
	u.Email = email
	return nil
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, id, hashedPassword string) error {
	u, ok := r.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.HashedPassword = hashedPassword
	return nil
}

func (r *fakeUserRepo) SetBlocked(ctx context.Context, id string, role model.Role, blocked bool) error {
	u, ok := r.users[id]
	if !ok || u.Role != role {
		return common.ErrNotFound
	}
	u.Blocked = blocked
	return nil
}

func (r *fakeUserRepo) SetBlockedBySubjectClass(ctx context.Context, subjectClassID string, blocked bool) error {
	for _, u := range r.users {
		if u.Role != model.RoleStudent {
			continue
		}
		for _, scID := range u.SubjectClassIDs {
			if scID == subjectClassID {
				u.Blocked = blocked
				break
			}
		}
	}
	return nil
}

func (r *fakeUserRepo) ReplaceAssignments(ctx context.Context, tx *sql.Tx, userID string, subjectClassIDs []string) error {
	u, ok := r.users[userID]
	if !ok {
		return common.ErrNotFound
	}
	u.SubjectClassIDs = append([]string(nil), subjectClassIDs...)
	return nil
}

func (r *fakeUserRepo) GetAssignments(ctx context.Context, userID string) ([]string, error) {
	u, ok := r.users[userID]
	if !ok {
		return nil, common.ErrNotFound
	}
	return append([]string(nil), u.SubjectClassIDs...), nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, tx *sql.Tx, id string) error {
	if _, ok := r.users[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

type fakeClassRepo struct {
	classes []model.Class
}

func (r *fakeClassRepo) Create(ctx context.Context, class *model.Class) error {
	r.classes = append(r.classes, *class)
	return nil
}

func (r *fakeClassRepo) List(ctx context.Context) ([]model.Class, error) {
	out := append([]model.Class(nil), r.classes...)
	sort.Slice(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out, nil
}

func (r *fakeClassRepo) Count(ctx context.Context) (int, error) {
	return len(r.classes), nil
}

type fakeSubjectRepo struct {
	subjects map[string]*model.Subject
}

func newFakeSubjectRepo() *fakeSubjectRepo {
	return &fakeSubjectRepo{subjects: make(map[string]*model.Subject)}
}

func (r *fakeSubjectRepo) Create(ctx context.Context, subject *model.Subject) error {
	for _, s := range r.subjects {
		if s.Name == subject.Name || s.Slug == subject.Slug {
			return common.ErrConflict
		}
	}
	cp := *subject
	r.subjects[subject.ID] = &cp
	return nil
}

func (r *fakeSubjectRepo) FindByName(ctx context.Context, name string) (*model.Subject, error) {
	for _, s := range r.subjects {
		if s.Name == name {
			cp := *s
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeSubjectRepo) FindBySlug(ctx context.Context, subjectSlug string) (*model.Subject, error) {
	for _, s := range r.subjects {
		if s.Slug == subjectSlug {
			cp := *s
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeSubjectRepo) List(ctx context.Context) ([]model.Subject, error) {
	var out []model.Subject
	for _, s := range r.subjects {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type fakeSubjectClassRepo struct {
	scs map[string]*model.SubjectClass
}

func newFakeSubjectClassRepo() *fakeSubjectClassRepo {
	return &fakeSubjectClassRepo{scs: make(map[string]*model.SubjectClass)}
}

func (r *fakeSubjectClassRepo) add(sc model.SubjectClass) {
	cp := sc
	r.scs[sc.ID] = &cp
}

func (r *fakeSubjectClassRepo) Create(ctx context.Context, sc *model.SubjectClass) error {
	for _, existing := range r.scs {
		if existing.SubjectID == sc.SubjectID && existing.ClassID == sc.ClassID {
			return common.ErrConflict
		}
	}
	r.add(*sc)
	return nil
}

func (r *fakeSubjectClassRepo) FindByID(ctx context.Context, id string) (*model.SubjectClass, error) {
	sc, ok := r.scs[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *sc
	return &cp, nil
}

func (r *fakeSubjectClassRepo) FindByIDs(ctx context.Context, ids []string) ([]model.SubjectClass, error) {
	var out []model.SubjectClass
	for _, id := range ids {
		if sc, ok := r.scs[id]; ok {
			out = append(out, *sc)
		}
	}
	return out, nil
}

func (r *fakeSubjectClassRepo) List(ctx context.Context, filter model.SubjectClassFilter) ([]model.SubjectClass, error) {
	var out []model.SubjectClass
	for _, sc := range r.scs {
		if filter.SubjectID != nil && sc.SubjectID != *filter.SubjectID {
			continue
		}
		if filter.ClassID != nil && sc.ClassID != *filter.ClassID {
			continue
		}
		if filter.InUse != nil && sc.InUse != *filter.InUse {
			continue
		}
		out = append(out, *sc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeSubjectClassRepo) SetInUse(ctx context.Context, tx *sql.Tx, ids []string, inUse bool) error {
	for _, id := range ids {
		if sc, ok := r.scs[id]; ok {
			sc.InUse = inUse
		}
	}
	return nil
}

type fakeTermRepo struct {
	terms []*model.Term // insertion order, newest appended last
}

func (r *fakeTermRepo) Create(ctx context.Context, term *model.Term) error {
	cp := *term
	r.terms = append(r.terms, &cp)
	return nil
}

func (r *fakeTermRepo) FindByID(ctx context.Context, id string) (*model.Term, error) {
	for _, t := range r.terms {
		if t.ID == id {
			cp := *t
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeTermRepo) List(ctx context.Context) ([]model.Term, error) {
	out := make([]model.Term, 0, len(r.terms))
	for i := len(r.terms) - 1; i >= 0; i-- {
		out = append(out, *r.terms[i])
	}
	return out, nil
}

func (r *fakeTermRepo) FindCurrent(ctx context.Context) (*model.Term, error) {
	for _, t := range r.terms {
		if t.Current {
			cp := *t
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeTermRepo) ClearCurrent(ctx context.Context) error {
	for _, t := range r.terms {
		t.Current = false
	}
	return nil
}

func (r *fakeTermRepo) SetCurrent(ctx context.Context, id string) error {
	for _, t := range r.terms {
		t.Current = t.ID == id
	}
	return nil
}

func (r *fakeTermRepo) Delete(ctx context.Context, id string) error {
	for i, t := range r.terms {
		if t.ID == id {
			r.terms = append(r.terms[:i], r.terms[i+1:]...)
			return nil
		}
	}
	return common.ErrNotFound
}

func (r *fakeTermRepo) Count(ctx context.Context) (int, error) {
	return len(r.terms), nil
}

type fakeExamRepo struct {
	exams     map[string]*model.Exam
	questions map[string]*model.Question
}

func newFakeExamRepo() *fakeExamRepo {
	return &fakeExamRepo{
		exams:     make(map[string]*model.Exam),
		questions: make(map[string]*model.Question),
	}
}

func (r *fakeExamRepo) CreateQuestion(ctx context.Context, q *model.Question) error {
	cp := *q
	r.questions[q.ID] = &cp
	return nil
}

func (r *fakeExamRepo) CreateExam(ctx context.Context, exam *model.Exam) error {
	cp := *exam
	cp.Questions = nil
	r.exams[exam.ID] = &cp
	return nil
}

func (r *fakeExamRepo) FindExamByID(ctx context.Context, id string) (*model.Exam, error) {
	exam, ok := r.exams[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *exam
	cp.Questions = nil
	for _, qID := range exam.QuestionIDs {
		if q, ok := r.questions[qID]; ok {
			cp.Questions = append(cp.Questions, *q)
		}
	}
	return &cp, nil
}

func (r *fakeExamRepo) GetQuestionsByExamID(ctx context.Context, examID string) ([]model.Question, error) {
	exam, err := r.FindExamByID(ctx, examID)
	if err != nil {
		return nil, err
	}
	return exam.Questions, nil
}

func (r *fakeExamRepo) UpdateStartTime(ctx context.Context, id string, startTime time.Time, rescheduled bool) error {
	exam, ok := r.exams[id]
	if !ok {
		return common.ErrNotFound
	}
	exam.StartTime = startTime
	exam.Rescheduled = rescheduled
	return nil
}

func (r *fakeExamRepo) ListByTeacher(ctx context.Context, teacherID, nameFilter string) ([]model.Exam, error) {
	var out []model.Exam
	for _, e := range r.exams {
		if e.TeacherID != teacherID {
			continue
		}
		if nameFilter != "" && !strings.Contains(strings.ToLower(e.Name), strings.ToLower(nameFilter)) {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeExamRepo) ListBySubjectClasses(ctx context.Context, subjectClassIDs []string, nameFilter string) ([]model.Exam, error) {
	wanted := make(map[string]bool, len(subjectClassIDs))
	for _, id := range subjectClassIDs {
		wanted[id] = true
	}
	var out []model.Exam
	for _, e := range r.exams {
		if !wanted[e.SubjectClassID] {
			continue
		}
		if nameFilter != "" && !strings.Contains(strings.ToLower(e.Name), strings.ToLower(nameFilter)) {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeExamRepo) ListAll(ctx context.Context) ([]model.Exam, error) {
	var out []model.Exam
	for _, e := range r.exams {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeExamRepo) ListBetween(ctx context.Context, from, to time.Time) ([]model.Exam, error) {
	var out []model.Exam
	for _, e := range r.exams {
		if e.StartTime.Before(from) || !e.StartTime.Before(to) {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeResponseRepo struct {
	responses []model.Response
}

func (r *fakeResponseRepo) Insert(ctx context.Context, response *model.Response) error {
	for _, existing := range r.responses {
		if existing.QuestionID == response.QuestionID && existing.StudentID == response.StudentID {
			return nil // first answer wins
		}
	}
	r.responses = append(r.responses, *response)
	return nil
}

func (r *fakeResponseRepo) ListByExamAndStudent(ctx context.Context, examID, studentID string) ([]model.Response, error) {
	var out []model.Response
	for _, resp := range r.responses {
		if resp.ExamID == examID && resp.StudentID == studentID {
			out = append(out, resp)
		}
	}
	return out, nil
}

type fakeResultRepo struct {
	results map[string]*model.Result // keyed exam_id + "/" + student_id
	upserts int
}

func newFakeResultRepo() *fakeResultRepo {
	return &fakeResultRepo{results: make(map[string]*model.Result)}
}

func resultKey(examID, studentID string) string {
	return examID + "/" + studentID
}

func (r *fakeResultRepo) Upsert(ctx context.Context, result *model.Result) error {
	r.upserts++
	key := resultKey(result.ExamID, result.StudentID)
	if existing, ok := r.results[key]; ok {
		existing.Marks = result.Marks
		existing.CorrectQuestions = result.CorrectQuestions
		existing.IncorrectQuestions = result.IncorrectQuestions
		return nil
	}
	cp := *result
	r.results[key] = &cp
	return nil
}

func (r *fakeResultRepo) Find(ctx context.Context, examID, studentID string) (*model.Result, error) {
	result, ok := r.results[resultKey(examID, studentID)]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *result
	return &cp, nil
}

func (r *fakeResultRepo) ListByExam(ctx context.Context, examID string) ([]model.Result, error) {
	var out []model.Result
	for _, result := range r.results {
		if result.ExamID == examID {
			out = append(out, *result)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentID < out[j].StudentID })
	return out, nil
}

type fakeLock struct {
	held     bool
	acquires int
}

func (l *fakeLock) Acquire(ctx context.Context) (bool, error) {
	l.acquires++
	if l.held {
		return false, nil
	}
	l.held = true
	return true, nil
}

func (l *fakeLock) Release(ctx context.Context) error {
	l.held = false
	return nil
}

type fakeEpochs struct {
	bumps int
}

func (e *fakeEpochs) Bump(ctx context.Context) error {
	e.bumps++
	return nil
}
