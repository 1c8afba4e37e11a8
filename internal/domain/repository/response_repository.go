package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"school_admin/internal/common"
	"school_admin/internal/domain/model"
)

type ResponseRepository interface {
	// Insert stores a response unless one already exists for the same
	// (question, student) pair; the first recorded answer wins.
	Insert(ctx context.Context, response *model.Response) error
	ListByExamAndStudent(ctx context.Context, examID, studentID string) ([]model.Response, error)
}

type ResultRepository interface {
	Upsert(ctx context.Context, result *model.Result) error
	Find(ctx context.Context, examID, studentID string) (*model.Result, error)
	ListByExam(ctx context.Context, examID string) ([]model.Result, error)
}

type pgResponseRepository struct {
	db *sql.DB
}

func NewPgResponseRepository(db *sql.DB) ResponseRepository {
	return &pgResponseRepository{db: db}
}

func (r *pgResponseRepository) Insert(ctx context.Context, response *model.Response) error {
	// The unique index on (question_id, student_id) is the authoritative
	// guard; concurrent duplicate submissions collapse to a no-op here.
	query := `INSERT INTO responses (id, exam_id, student_id, question_id, option_picked)
	          VALUES ($1, $2, $3, $4, $5)
	          ON CONFLICT (question_id, student_id) DO NOTHING`
	_, err := r.db.ExecContext(ctx, query,
		response.ID, response.ExamID, response.StudentID, response.QuestionID, response.OptionPicked,
	)
	if err != nil {
		return fmt.Errorf("pgResponseRepository.Insert: %w", err)
	}
	return nil
}

func (r *pgResponseRepository) ListByExamAndStudent(ctx context.Context, examID, studentID string) ([]model.Response, error) {
	query := `SELECT id, exam_id, student_id, question_id, option_picked, created_at, updated_at
	          FROM responses WHERE exam_id = $1 AND student_id = $2`
	rows, err := r.db.QueryContext(ctx, query, examID, studentID)
	if err != nil {
		return nil, fmt.Errorf("pgResponseRepository.ListByExamAndStudent: %w", err)
	}
	defer rows.Close()

	var responses []model.Response
	for rows.Next() {
		var resp model.Response
		if err := rows.Scan(&resp.ID, &resp.ExamID, &resp.StudentID, &resp.QuestionID, &resp.OptionPicked, &resp.CreatedAt, &resp.UpdatedAt); err != nil {
			return nil, fmt.Errorf("pgResponseRepository.ListByExamAndStudent scan: %w", err)
		}
		responses = append(responses, resp)
	}
	return responses, rows.Err()
}

type pgResultRepository struct {
	db *sql.DB
}

func NewPgResultRepository(db *sql.DB) ResultRepository {
	return &pgResultRepository{db: db}
}

func (r *pgResultRepository) Upsert(ctx context.Context, result *model.Result) error {
	correct, err := json.Marshal(result.CorrectQuestions)
	if err != nil {
		return fmt.Errorf("pgResultRepository.Upsert marshal correct: %w", err)
	}
	incorrect, err := json.Marshal(result.IncorrectQuestions)
	if err != nil {
		return fmt.Errorf("pgResultRepository.Upsert marshal incorrect: %w", err)
	}

	// Regrading replaces the stored tally in place, keyed on (exam, student).
	query := `INSERT INTO results (id, exam_id, student_id, marks, correct_questions, incorrect_questions)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          ON CONFLICT (exam_id, student_id) DO UPDATE SET
	              marks = EXCLUDED.marks,
	              correct_questions = EXCLUDED.correct_questions,
	              incorrect_questions = EXCLUDED.incorrect_questions,
	              updated_at = CURRENT_TIMESTAMP`
	if _, err := r.db.ExecContext(ctx, query,
		result.ID, result.ExamID, result.StudentID, result.Marks, correct, incorrect,
	); err != nil {
		return fmt.Errorf("pgResultRepository.Upsert: %w", err)
	}
	return nil
}

func scanResult(scanner interface{ Scan(...interface{}) error }, withName bool) (*model.Result, error) {
	result := &model.Result{}
	var correct, incorrect []byte
	dest := []interface{}{
		&result.ID, &result.ExamID, &result.StudentID, &result.Marks,
		&correct, &incorrect, &result.CreatedAt, &result.UpdatedAt,
	}
	if withName {
		dest = append(dest, &result.StudentName)
	}
	if err := scanner.Scan(dest...); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(correct, &result.CorrectQuestions); err != nil {
		return nil, fmt.Errorf("unmarshal correct questions: %w", err)
	}
	if err := json.Unmarshal(incorrect, &result.IncorrectQuestions); err != nil {
		return nil, fmt.Errorf("unmarshal incorrect questions: %w", err)
	}
	return result, nil
}

func (r *pgResultRepository) Find(ctx context.Context, examID, studentID string) (*model.Result, error) {
	query := `SELECT id, exam_id, student_id, marks, correct_questions, incorrect_questions, created_at, updated_at
	          FROM results WHERE exam_id = $1 AND student_id = $2`
	result, err := scanResult(r.db.QueryRowContext(ctx, query, examID, studentID), false)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgResultRepository.Find: %w", err)
	}
	return result, nil
}

func (r *pgResultRepository) ListByExam(ctx context.Context, examID string) ([]model.Result, error) {
	query := `SELECT r.id, r.exam_id, r.student_id, r.marks, r.correct_questions, r.incorrect_questions,
	                 r.created_at, r.updated_at, u.name
	          FROM results r
	          JOIN users u ON u.id = r.student_id
	          WHERE r.exam_id = $1
	          ORDER BY u.name`
	rows, err := r.db.QueryContext(ctx, query, examID)
	if err != nil {
		return nil, fmt.Errorf("pgResultRepository.ListByExam: %w", err)
	}
	defer rows.Close()

	var results []model.Result
	for rows.Next() {
		result, err := scanResult(rows, true)
		if err != nil {
			return nil, fmt.Errorf("pgResultRepository.ListByExam scan: %w", err)
		}
		results = append(results, *result)
	}
	return results, rows.Err()
}
