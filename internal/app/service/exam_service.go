package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"school_admin/internal/common"
	"school_admin/internal/domain/model"
	"school_admin/internal/domain/repository"

	"github.com/google/uuid"
)

type ExamService struct {
	examRepo repository.ExamRepository
	scRepo   repository.SubjectClassRepository
	termRepo repository.TermRepository
	userRepo repository.UserRepository
}

func NewExamService(
	examRepo repository.ExamRepository,
	scRepo repository.SubjectClassRepository,
	termRepo repository.TermRepository,
	userRepo repository.UserRepository,
) *ExamService {
	return &ExamService{examRepo: examRepo, scRepo: scRepo, termRepo: termRepo, userRepo: userRepo}
}

type QuestionInput struct {
	Text          string       `json:"question" validate:"required"`
	OptionA       string       `json:"option_a" validate:"required"`
	OptionB       string       `json:"option_b" validate:"required"`
	OptionC       string       `json:"option_c" validate:"required"`
	OptionD       string       `json:"option_d" validate:"required"`
	CorrectOption model.Option `json:"correct_option" validate:"required,oneof=A B C D"`
}

type CreateExamRequest struct {
	Name           string          `json:"name" validate:"required"`
	SubjectClassID string          `json:"subject_class_id" validate:"required,uuid"`
	Questions      []QuestionInput `json:"questions" validate:"required,min=1,dive"`
	StartTime      string          `json:"start_time" validate:"required"` // RFC3339
	Duration       int             `json:"duration" validate:"omitempty,min=1"`
	QuestionNumber int             `json:"question_number" validate:"omitempty,min=1"`
}

// CreateExam builds an exam for an in-use subject-class. Questions are
// persisted one by one before the exam row; a failure partway leaves the
// earlier questions orphaned. The owning teacher is resolved from the
// subject-class assignment, never taken from the caller.
func (s *ExamService) CreateExam(ctx context.Context, req CreateExamRequest) (*model.Exam, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}

	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("invalid start_time, want RFC3339: %w", common.ErrBadRequest)
	}

	sc, err := s.scRepo.FindByID(ctx, req.SubjectClassID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("subject for class does not exist: %w", common.ErrBadRequest)
		}
		return nil, err
	}
	if !sc.InUse {
		return nil, fmt.Errorf("subject for class is not in use: %w", common.ErrBadRequest)
	}

	questionIDs := make([]string, 0, len(req.Questions))
	questions := make([]model.Question, 0, len(req.Questions))
	for _, in := range req.Questions {
		q := model.Question{
			ID:            uuid.NewString(),
			Text:          in.Text,
			OptionA:       in.OptionA,
			OptionB:       in.OptionB,
			OptionC:       in.OptionC,
			OptionD:       in.OptionD,
			CorrectOption: in.CorrectOption,
		}
		if err := s.examRepo.CreateQuestion(ctx, &q); err != nil {
			return nil, err
		}
		questionIDs = append(questionIDs, q.ID)
		questions = append(questions, q)
	}

	term, err := s.termRepo.FindCurrent(ctx)
	if err != nil {
		return nil, err
	}

	teacher, err := s.userRepo.FindTeacherBySubjectClass(ctx, req.SubjectClassID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("exam for subject class has no teacher assigned: %w", common.ErrBadRequest)
		}
		return nil, err
	}

	exam := &model.Exam{
		ID:             uuid.NewString(),
		Name:           req.Name,
		SubjectClassID: req.SubjectClassID,
		TeacherID:      teacher.ID,
		TermID:         term.ID,
		QuestionIDs:    questionIDs,
		QuestionNumber: req.QuestionNumber,
		StartTime:      startTime,
		Duration:       req.Duration,
	}
	if exam.QuestionNumber == 0 {
		exam.QuestionNumber = model.DefaultQuestionNumber
	}
	if exam.Duration == 0 {
		exam.Duration = model.DefaultDurationMinutes
	}

	if err := s.examRepo.CreateExam(ctx, exam); err != nil {
		return nil, err
	}
	exam.Questions = questions
	return exam, nil
}

// RescheduleExam moves the exam's start and flags it rescheduled. Nothing
// stops moving an exam into the past or rescheduling repeatedly.
func (s *ExamService) RescheduleExam(ctx context.Context, examID, newStartTime string) (*model.Exam, error) {
	startTime, err := time.Parse(time.RFC3339, newStartTime)
	if err != nil {
		return nil, fmt.Errorf("invalid start_time, want RFC3339: %w", common.ErrBadRequest)
	}
	if err := s.examRepo.UpdateStartTime(ctx, examID, startTime, true); err != nil {
		return nil, err
	}
	return s.examRepo.FindExamByID(ctx, examID)
}

// GetExamByID returns the exam with its questions, subject-class, and term
// populated. Callers below teacher tier never see the answer key.
func (s *ExamService) GetExamByID(ctx context.Context, examID string, callerRole model.Role) (*model.Exam, error) {
	exam, err := s.examRepo.FindExamByID(ctx, examID)
	if err != nil {
		return nil, err
	}
	if sc, err := s.scRepo.FindByID(ctx, exam.SubjectClassID); err == nil {
		exam.SubjectClass = sc
	}
	if term, err := s.termRepo.FindByID(ctx, exam.TermID); err == nil {
		exam.Term = term
	}
	if !callerRole.AtLeast(model.RoleTeacher) {
		exam.StripCorrectOptions()
	}
	return exam, nil
}

type ExamListing struct {
	Exams []model.Exam `json:"exams"`
	Count int          `json:"count"`
}

func (s *ExamService) ListExamsByTeacher(ctx context.Context, teacherID, nameFilter string) (*ExamListing, error) {
	exams, err := s.examRepo.ListByTeacher(ctx, teacherID, nameFilter)
	if err != nil {
		return nil, err
	}
	return &ExamListing{Exams: exams, Count: len(exams)}, nil
}

// ListExamsByStudent lists exams scheduled for any of the student's
// subject-classes.
func (s *ExamService) ListExamsByStudent(ctx context.Context, studentID, nameFilter string) (*ExamListing, error) {
	student, err := s.userRepo.FindByIDAndRole(ctx, studentID, model.RoleStudent)
	if err != nil {
		return nil, err
	}
	exams, err := s.examRepo.ListBySubjectClasses(ctx, student.SubjectClassIDs, nameFilter)
	if err != nil {
		return nil, err
	}
	return &ExamListing{Exams: exams, Count: len(exams)}, nil
}

func (s *ExamService) ListAllExams(ctx context.Context) (*ExamListing, error) {
	exams, err := s.examRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return &ExamListing{Exams: exams, Count: len(exams)}, nil
}

// ListExamsByDate returns the exams starting within the day beginning at date.
func (s *ExamService) ListExamsByDate(ctx context.Context, date time.Time) (*ExamListing, error) {
	exams, err := s.examRepo.ListBetween(ctx, date, date.Add(24*time.Hour))
	if err != nil {
		return nil, err
	}
	return &ExamListing{Exams: exams, Count: len(exams)}, nil
}
