package model

import "time"

// Response records one student's answer to one question of one exam. The
// (question_id, student_id) pair is unique at the database level; the first
// recorded answer wins.
type Response struct {
	ID           string    `json:"id"`
	ExamID       string    `json:"exam_id"`
	StudentID    string    `json:"student_id"`
	QuestionID   string    `json:"question_id"`
	OptionPicked Option    `json:"option_picked"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AnswerPair is a graded (question, picked option) entry of a result.
type AnswerPair struct {
	QuestionID   string `json:"question_id"`
	OptionPicked Option `json:"option_picked"`
}

// Result is derived from responses against the exam's answer key. One result
// exists per (exam_id, student_id); regrading upserts in place.
type Result struct {
	ID                 string       `json:"id"`
	ExamID             string       `json:"exam_id"`
	StudentID          string       `json:"student_id"`
	Marks              int          `json:"marks"`
	CorrectQuestions   []AnswerPair `json:"correct_questions"`
	IncorrectQuestions []AnswerPair `json:"incorrect_questions"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`

	StudentName string `json:"student_name,omitempty"` // populated view
}

// ExamResultEntry is a teacher-view row: graded students carry Marks, enrolled
// students with no result yet appear with Marks nil.
type ExamResultEntry struct {
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
	Marks       *int   `json:"marks"`
}
