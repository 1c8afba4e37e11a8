package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"school_admin/internal/common"
	"school_admin/internal/domain/model"
)

type ExamRepository interface {
	CreateQuestion(ctx context.Context, q *model.Question) error
	CreateExam(ctx context.Context, exam *model.Exam) error
	FindExamByID(ctx context.Context, id string) (*model.Exam, error)
	GetQuestionsByExamID(ctx context.Context, examID string) ([]model.Question, error)
	UpdateStartTime(ctx context.Context, id string, startTime time.Time, rescheduled bool) error
	ListByTeacher(ctx context.Context, teacherID, nameFilter string) ([]model.Exam, error)
	ListBySubjectClasses(ctx context.Context, subjectClassIDs []string, nameFilter string) ([]model.Exam, error)
	ListAll(ctx context.Context) ([]model.Exam, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]model.Exam, error)
}

type pgExamRepository struct {
	db *sql.DB
}

func NewPgExamRepository(db *sql.DB) ExamRepository {
	return &pgExamRepository{db: db}
}

func (r *pgExamRepository) CreateQuestion(ctx context.Context, q *model.Question) error {
	query := `INSERT INTO questions (id, question, option_a, option_b, option_c, option_d, correct_option)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query, q.ID, q.Text, q.OptionA, q.OptionB, q.OptionC, q.OptionD, q.CorrectOption)
	if err != nil {
		return fmt.Errorf("pgExamRepository.CreateQuestion: %w", err)
	}
	return nil
}

func (r *pgExamRepository) CreateExam(ctx context.Context, exam *model.Exam) error {
	query := `INSERT INTO exams (id, name, subject_class_id, teacher_id, term_id, question_number, start_time, duration, rescheduled)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(ctx, query,
		exam.ID, exam.Name, exam.SubjectClassID, exam.TeacherID, exam.TermID,
		exam.QuestionNumber, exam.StartTime, exam.Duration, exam.Rescheduled,
	)
	if err != nil {
		return fmt.Errorf("pgExamRepository.CreateExam: %w", err)
	}
	link := `INSERT INTO exam_questions (exam_id, question_id, sort_order) VALUES ($1, $2, $3)`
	for i, qID := range exam.QuestionIDs {
		if _, err := r.db.ExecContext(ctx, link, exam.ID, qID, i); err != nil {
			return fmt.Errorf("pgExamRepository.CreateExam link question: %w", err)
		}
	}
	return nil
}

const examColumns = `id, name, subject_class_id, teacher_id, term_id, question_number, start_time, duration, rescheduled, created_at, updated_at`

func scanExam(scanner interface{ Scan(...interface{}) error }) (*model.Exam, error) {
	exam := &model.Exam{}
	err := scanner.Scan(
		&exam.ID, &exam.Name, &exam.SubjectClassID, &exam.TeacherID, &exam.TermID,
		&exam.QuestionNumber, &exam.StartTime, &exam.Duration, &exam.Rescheduled,
		&exam.CreatedAt, &exam.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return exam, nil
}

func (r *pgExamRepository) FindExamByID(ctx context.Context, id string) (*model.Exam, error) {
	query := `SELECT ` + examColumns + ` FROM exams WHERE id = $1`
	exam, err := scanExam(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgExamRepository.FindExamByID: %w", err)
	}

	questions, err := r.GetQuestionsByExamID(ctx, id)
	if err != nil {
		return nil, err
	}
	exam.Questions = questions
	for _, q := range questions {
		exam.QuestionIDs = append(exam.QuestionIDs, q.ID)
	}
	return exam, nil
}

func (r *pgExamRepository) GetQuestionsByExamID(ctx context.Context, examID string) ([]model.Question, error) {
	query := `SELECT q.id, q.question, q.option_a, q.option_b, q.option_c, q.option_d, q.correct_option, q.created_at, q.updated_at
	          FROM questions q
	          JOIN exam_questions eq ON eq.question_id = q.id
	          WHERE eq.exam_id = $1
	          ORDER BY eq.sort_order`
	rows, err := r.db.QueryContext(ctx, query, examID)
	if err != nil {
		return nil, fmt.Errorf("pgExamRepository.GetQuestionsByExamID: %w", err)
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.Text, &q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD, &q.CorrectOption, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, fmt.Errorf("pgExamRepository.GetQuestionsByExamID scan: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (r *pgExamRepository) UpdateStartTime(ctx context.Context, id string, startTime time.Time, rescheduled bool) error {
	query := `UPDATE exams SET start_time = $1, rescheduled = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, startTime, rescheduled, id)
	if err != nil {
		return fmt.Errorf("pgExamRepository.UpdateStartTime: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgExamRepository.UpdateStartTime rows affected: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgExamRepository) listExams(ctx context.Context, where string, args ...interface{}) ([]model.Exam, error) {
	query := `SELECT ` + examColumns + ` FROM exams ` + where + ` ORDER BY start_time`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgExamRepository.listExams: %w", err)
	}
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		exam, err := scanExam(rows)
		if err != nil {
			return nil, fmt.Errorf("pgExamRepository.listExams scan: %w", err)
		}
		exams = append(exams, *exam)
	}
	return exams, rows.Err()
}

func (r *pgExamRepository) ListByTeacher(ctx context.Context, teacherID, nameFilter string) ([]model.Exam, error) {
	if nameFilter != "" {
		return r.listExams(ctx, `WHERE teacher_id = $1 AND name ILIKE $2`, teacherID, "%"+nameFilter+"%")
	}
	return r.listExams(ctx, `WHERE teacher_id = $1`, teacherID)
}

func (r *pgExamRepository) ListBySubjectClasses(ctx context.Context, subjectClassIDs []string, nameFilter string) ([]model.Exam, error) {
	if len(subjectClassIDs) == 0 {
		return nil, nil
	}
	if nameFilter != "" {
		return r.listExams(ctx, `WHERE subject_class_id = ANY($1) AND name ILIKE $2`, subjectClassIDs, "%"+nameFilter+"%")
	}
	return r.listExams(ctx, `WHERE subject_class_id = ANY($1)`, subjectClassIDs)
}

func (r *pgExamRepository) ListAll(ctx context.Context) ([]model.Exam, error) {
	return r.listExams(ctx, "")
}

func (r *pgExamRepository) ListBetween(ctx context.Context, from, to time.Time) ([]model.Exam, error) {
	return r.listExams(ctx, `WHERE start_time > $1 AND start_time < $2`, from, to)
}
