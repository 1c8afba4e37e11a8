package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"school_admin/internal/common"
	"school_admin/internal/domain/model"

	"github.com/google/uuid"
)

type examFixture struct {
	svc      *ExamService
	examRepo *fakeExamRepo
	scRepo   *fakeSubjectClassRepo
	termRepo *fakeTermRepo
	userRepo *fakeUserRepo
	sc       *model.SubjectClass
	teacher  model.User
}

func newExamFixture(t *testing.T) *examFixture {
	t.Helper()

	examRepo := newFakeExamRepo()
	scRepo := newFakeSubjectClassRepo()
	termRepo := &fakeTermRepo{}
	userRepo := newFakeUserRepo()

	seedTerm(termRepo, 2023, 1)

	sc := seedSubjectClass(scRepo, true)
	teacher := model.User{
		ID:              uuid.NewString(),
		Name:            "Mrs. Okafor",
		Role:            model.RoleTeacher,
		SubjectClassIDs: []string{sc.ID},
	}
	userRepo.add(teacher)

	return &examFixture{
		svc:      NewExamService(examRepo, scRepo, termRepo, userRepo),
		examRepo: examRepo,
		scRepo:   scRepo,
		termRepo: termRepo,
		userRepo: userRepo,
		sc:       sc,
		teacher:  teacher,
	}
}

func validCreateExamRequest(scID string) CreateExamRequest {
	return CreateExamRequest{
		Name:           "Mathematics Mid-Term",
		SubjectClassID: scID,
		Questions: []QuestionInput{
			{Text: "1+1?", OptionA: "2", OptionB: "3", OptionC: "4", OptionD: "5", CorrectOption: model.OptionA},
			{Text: "2+2?", OptionA: "3", OptionB: "4", OptionC: "5", OptionD: "6", CorrectOption: model.OptionB},
		},
		StartTime: time.Now().Add(48 * time.Hour).Format(time.RFC3339),
	}
}

func TestCreateExam(t *testing.T) {
	f := newExamFixture(t)

	exam, err := f.svc.CreateExam(context.Background(), validCreateExamRequest(f.sc.ID))
	if err != nil {
		t.Fatalf("CreateExam failed: %v", err)
	}
	if exam.TeacherID != f.teacher.ID {
		t.Errorf("owner must come from the subject-class assignment, got %s", exam.TeacherID)
	}
	if exam.QuestionNumber != model.DefaultQuestionNumber {
		t.Errorf("expected default question number %d, got %d", model.DefaultQuestionNumber, exam.QuestionNumber)
	}
	if exam.Duration != model.DefaultDurationMinutes {
		t.Errorf("expected default duration %d, got %d", model.DefaultDurationMinutes, exam.Duration)
	}
	if len(exam.QuestionIDs) != 2 {
		t.Errorf("expected 2 questions attached, got %d", len(exam.QuestionIDs))
	}
	if exam.Rescheduled {
		t.Error("new exam must not be flagged rescheduled")
	}
}

func TestCreateExamRejectsIdleSubjectClass(t *testing.T) {
	f := newExamFixture(t)
	idle := seedSubjectClass(f.scRepo, false)

	_, err := f.svc.CreateExam(context.Background(), validCreateExamRequest(idle.ID))
	if !errors.Is(err, common.ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest for idle subject-class, got %v", err)
	}
	exams, _ := f.examRepo.ListAll(context.Background())
	if len(exams) != 0 {
		t.Errorf("no exam row expected, got %d", len(exams))
	}
}

func TestCreateExamNoTeacherLeavesQuestionsOrphaned(t *testing.T) {
	f := newExamFixture(t)
	// In use but with nobody assigned: questions persist, the exam does not.
	unstaffed := seedSubjectClass(f.scRepo, true)

	_, err := f.svc.CreateExam(context.Background(), validCreateExamRequest(unstaffed.ID))
	if !errors.Is(err, common.ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest without an assigned teacher, got %v", err)
	}
	exams, _ := f.examRepo.ListAll(context.Background())
	if len(exams) != 0 {
		t.Errorf("no exam row expected, got %d", len(exams))
	}
	if len(f.examRepo.questions) != 2 {
		t.Errorf("questions written before the failure should remain, got %d", len(f.examRepo.questions))
	}
}

func TestCreateExamBadStartTime(t *testing.T) {
	f := newExamFixture(t)
	req := validCreateExamRequest(f.sc.ID)
	req.StartTime = "tomorrow at noon"

	_, err := f.svc.CreateExam(context.Background(), req)
	if !errors.Is(err, common.ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest for malformed start time, got %v", err)
	}
	if len(f.examRepo.questions) != 0 {
		t.Errorf("time is validated before questions are written, got %d questions", len(f.examRepo.questions))
	}
}

func TestRescheduleExam(t *testing.T) {
	f := newExamFixture(t)
	exam, err := f.svc.CreateExam(context.Background(), validCreateExamRequest(f.sc.ID))
	if err != nil {
		t.Fatalf("CreateExam failed: %v", err)
	}

	newStart := time.Now().Add(96 * time.Hour).UTC().Truncate(time.Second)
	updated, err := f.svc.RescheduleExam(context.Background(), exam.ID, newStart.Format(time.RFC3339))
	if err != nil {
		t.Fatalf("RescheduleExam failed: %v", err)
	}
	if !updated.Rescheduled {
		t.Error("exam not flagged rescheduled")
	}
	if !updated.StartTime.Equal(newStart) {
		t.Errorf("start time not moved: want %v got %v", newStart, updated.StartTime)
	}
}

func TestRescheduleMissingExam(t *testing.T) {
	f := newExamFixture(t)

	_, err := f.svc.RescheduleExam(context.Background(), uuid.NewString(), time.Now().Format(time.RFC3339))
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetExamByIDStripsAnswersForStudents(t *testing.T) {
	f := newExamFixture(t)
	exam, err := f.svc.CreateExam(context.Background(), validCreateExamRequest(f.sc.ID))
	if err != nil {
		t.Fatalf("CreateExam failed: %v", err)
	}

	got, err := f.svc.GetExamByID(context.Background(), exam.ID, model.RoleStudent)
	if err != nil {
		t.Fatalf("GetExamByID failed: %v", err)
	}
	for _, q := range got.Questions {
		if q.CorrectOption != "" {
			t.Errorf("answer key leaked to student for question %s", q.ID)
		}
	}

	got, err = f.svc.GetExamByID(context.Background(), exam.ID, model.RoleTeacher)
	if err != nil {
		t.Fatalf("GetExamByID failed: %v", err)
	}
	for _, q := range got.Questions {
		if q.CorrectOption == "" {
			t.Errorf("answer key missing for teacher view, question %s", q.ID)
		}
	}
}

func TestGetExamByIDKeepsTermAfterRotation(t *testing.T) {
	f := newExamFixture(t)
	exam, err := f.svc.CreateExam(context.Background(), validCreateExamRequest(f.sc.ID))
	if err != nil {
		t.Fatalf("CreateExam failed: %v", err)
	}

	// Advance to the next term; the exam stays pinned to the one it was
	// created under.
	f.termRepo.ClearCurrent(context.Background())
	seedTerm(f.termRepo, 2023, 2)

	got, err := f.svc.GetExamByID(context.Background(), exam.ID, model.RoleTeacher)
	if err != nil {
		t.Fatalf("GetExamByID failed: %v", err)
	}
	if got.Term == nil {
		t.Fatal("exam term missing after rotation")
	}
	if got.Term.ID != exam.TermID {
		t.Errorf("expected term %s, got %s", exam.TermID, got.Term.ID)
	}
}

func TestListExamsByStudent(t *testing.T) {
	f := newExamFixture(t)
	exam, err := f.svc.CreateExam(context.Background(), validCreateExamRequest(f.sc.ID))
	if err != nil {
		t.Fatalf("CreateExam failed: %v", err)
	}

	student := model.User{
		ID:              uuid.NewString(),
		Role:            model.RoleStudent,
		SubjectClassIDs: []string{f.sc.ID},
	}
	f.userRepo.add(student)

	listing, err := f.svc.ListExamsByStudent(context.Background(), student.ID, "")
	if err != nil {
		t.Fatalf("ListExamsByStudent failed: %v", err)
	}
	if listing.Count != 1 || listing.Exams[0].ID != exam.ID {
		t.Errorf("expected the student's exam, got %+v", listing)
	}
}

func TestListExamsByDate(t *testing.T) {
	f := newExamFixture(t)

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	req := validCreateExamRequest(f.sc.ID)
	req.StartTime = day.Add(9 * time.Hour).Format(time.RFC3339)
	inside, err := f.svc.CreateExam(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateExam failed: %v", err)
	}

	req = validCreateExamRequest(f.sc.ID)
	req.Name = "Next Day Exam"
	req.StartTime = day.Add(25 * time.Hour).Format(time.RFC3339)
	if _, err := f.svc.CreateExam(context.Background(), req); err != nil {
		t.Fatalf("CreateExam failed: %v", err)
	}

	listing, err := f.svc.ListExamsByDate(context.Background(), day)
	if err != nil {
		t.Fatalf("ListExamsByDate failed: %v", err)
	}
	if listing.Count != 1 || listing.Exams[0].ID != inside.ID {
		t.Errorf("expected only the same-day exam, got %+v", listing)
	}
}
