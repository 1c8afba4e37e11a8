package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"school_admin/internal/common"
	"school_admin/internal/domain/model"
	"school_admin/internal/domain/repository"

	"github.com/google/uuid"
)

type ResponseService struct {
	responseRepo repository.ResponseRepository
	resultRepo   repository.ResultRepository
	examRepo     repository.ExamRepository
	userRepo     repository.UserRepository
}

func NewResponseService(
	responseRepo repository.ResponseRepository,
	resultRepo repository.ResultRepository,
	examRepo repository.ExamRepository,
	userRepo repository.UserRepository,
) *ResponseService {
	return &ResponseService{
		responseRepo: responseRepo,
		resultRepo:   resultRepo,
		examRepo:     examRepo,
		userRepo:     userRepo,
	}
}

type ResponseInput struct {
	ExamID       string       `json:"exam_id" validate:"required,uuid"`
	StudentID    string       `json:"student_id" validate:"required,uuid"`
	QuestionID   string       `json:"question_id" validate:"required,uuid"`
	OptionPicked model.Option `json:"option_picked" validate:"required,oneof=A B C D"`
}

type SubmitResponsesRequest struct {
	Responses []ResponseInput `json:"responses" validate:"required,min=1,dive"`
}

// SubmitResponses stores one student's answers to one exam and grades the
// pair. Every entry must share the same student and exam; a batch mixing
// either is rejected before anything is written. Re-answered questions are
// ignored: the first stored answer wins.
func (s *ResponseService) SubmitResponses(ctx context.Context, req SubmitResponsesRequest) (*model.Result, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}

	studentID := req.Responses[0].StudentID
	examID := req.Responses[0].ExamID
	for _, in := range req.Responses {
		if in.StudentID != studentID {
			return nil, fmt.Errorf("batch spans more than one student: %w", common.ErrBadRequest)
		}
		if in.ExamID != examID {
			return nil, fmt.Errorf("batch spans more than one exam: %w", common.ErrBadRequest)
		}
	}

	// Every answered question must belong to the exam being answered.
	exam, err := s.examRepo.FindExamByID(ctx, examID)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(exam.Questions))
	for _, q := range exam.Questions {
		known[q.ID] = true
	}
	for _, in := range req.Responses {
		if !known[in.QuestionID] {
			return nil, fmt.Errorf("question %s is not part of exam %s: %w", in.QuestionID, examID, common.ErrBadRequest)
		}
	}

	for _, in := range req.Responses {
		response := &model.Response{
			ID:           uuid.NewString(),
			ExamID:       in.ExamID,
			StudentID:    in.StudentID,
			QuestionID:   in.QuestionID,
			OptionPicked: in.OptionPicked,
		}
		if err := s.responseRepo.Insert(ctx, response); err != nil {
			return nil, err
		}
	}

	return s.GradeStudentExam(ctx, studentID, examID)
}

// GradeStudentExam scores the student's stored responses against the exam's
// answer key and upserts the result keyed on (exam, student). Unanswered
// questions appear in neither partition. A response whose question is not
// part of the exam means the store is corrupt and grading aborts.
func (s *ResponseService) GradeStudentExam(ctx context.Context, studentID, examID string) (*model.Result, error) {
	if studentID == "" || examID == "" {
		return nil, fmt.Errorf("student and exam ids are required: %w", common.ErrBadRequest)
	}

	exam, err := s.examRepo.FindExamByID(ctx, examID)
	if err != nil {
		return nil, err // common.ErrNotFound when the exam is absent
	}

	responses, err := s.responseRepo.ListByExamAndStudent(ctx, examID, studentID)
	if err != nil {
		return nil, err
	}

	questionsByID := make(map[string]model.Question, len(exam.Questions))
	for _, q := range exam.Questions {
		questionsByID[q.ID] = q
	}

	result := &model.Result{
		ID:                 uuid.NewString(),
		ExamID:             examID,
		StudentID:          studentID,
		CorrectQuestions:   []model.AnswerPair{},
		IncorrectQuestions: []model.AnswerPair{},
	}
	for _, resp := range responses {
		question, ok := questionsByID[resp.QuestionID]
		if !ok {
			return nil, fmt.Errorf("response %s references question %s outside exam %s: %w",
				resp.ID, resp.QuestionID, examID, common.ErrInternalServer)
		}
		pair := model.AnswerPair{QuestionID: resp.QuestionID, OptionPicked: resp.OptionPicked}
		if question.CorrectOption == resp.OptionPicked {
			result.Marks++
			result.CorrectQuestions = append(result.CorrectQuestions, pair)
		} else {
			result.IncorrectQuestions = append(result.IncorrectQuestions, pair)
		}
	}

	if err := s.resultRepo.Upsert(ctx, result); err != nil {
		return nil, err
	}
	log.Printf("Graded exam %s for student %s: %d marks", examID, studentID, result.Marks)
	return result, nil
}

// GetResult returns the persisted result, or (nil, nil) when the pair has
// not been graded. It never computes a result as a side effect; grading is
// only ever explicit.
func (s *ResponseService) GetResult(ctx context.Context, studentID, examID string) (*model.Result, error) {
	result, err := s.resultRepo.Find(ctx, examID, studentID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return result, nil
}

// GetResultsForExam is the teacher view: every graded result annotated with
// the student's name, plus a marks-less entry for each enrolled student who
// has not been graded yet.
func (s *ResponseService) GetResultsForExam(ctx context.Context, examID string) ([]model.ExamResultEntry, error) {
	exam, err := s.examRepo.FindExamByID(ctx, examID)
	if err != nil {
		return nil, err
	}

	results, err := s.resultRepo.ListByExam(ctx, examID)
	if err != nil {
		return nil, err
	}
	enrolled, err := s.userRepo.FindStudentsBySubjectClass(ctx, exam.SubjectClassID)
	if err != nil {
		return nil, err
	}

	graded := make(map[string]bool, len(results))
	entries := make([]model.ExamResultEntry, 0, len(enrolled))
	for _, r := range results {
		graded[r.StudentID] = true
		marks := r.Marks
		entries = append(entries, model.ExamResultEntry{
			StudentID:   r.StudentID,
			StudentName: r.StudentName,
			Marks:       &marks,
		})
	}
	for _, st := range enrolled {
		if graded[st.ID] {
			continue
		}
		entries = append(entries, model.ExamResultEntry{
			StudentID:   st.ID,
			StudentName: st.Name,
		})
	}
	return entries, nil
}
