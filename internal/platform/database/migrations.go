package database

import (
	"database/sql"
	"fmt"
	"log"
)

// RunMigrations applies the bootstrap schema. Statements are idempotent so a
// restart against an existing database is a no-op.
func RunMigrations(db *sql.DB) error {
	log.Println("Running database migrations...")

	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			hashed_password TEXT NOT NULL,
			role TEXT NOT NULL,
			blocked BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS classes (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			level INT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS subjects (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			slug TEXT NOT NULL UNIQUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS subject_classes (
			id UUID PRIMARY KEY,
			subject_id UUID NOT NULL REFERENCES subjects(id),
			class_id UUID NOT NULL REFERENCES classes(id),
			in_use BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (subject_id, class_id)
		)`,
		`CREATE TABLE IF NOT EXISTS user_subject_classes (
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			subject_class_id UUID NOT NULL REFERENCES subject_classes(id),
			PRIMARY KEY (user_id, subject_class_id)
		)`,
		`CREATE TABLE IF NOT EXISTS terms (
			id UUID PRIMARY KEY,
			start_year INT NOT NULL,
			end_year INT NOT NULL,
			term INT NOT NULL CHECK (term BETWEEN 1 AND 3),
			current BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS questions (
			id UUID PRIMARY KEY,
			question TEXT NOT NULL,
			option_a TEXT NOT NULL,
			option_b TEXT NOT NULL,
			option_c TEXT NOT NULL,
			option_d TEXT NOT NULL,
			correct_option TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS exams (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			subject_class_id UUID NOT NULL REFERENCES subject_classes(id),
			teacher_id UUID NOT NULL REFERENCES users(id),
			term_id UUID NOT NULL REFERENCES terms(id),
			question_number INT NOT NULL DEFAULT 40,
			start_time TIMESTAMPTZ NOT NULL,
			duration INT NOT NULL DEFAULT 60,
			rescheduled BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS exam_questions (
			exam_id UUID NOT NULL REFERENCES exams(id) ON DELETE CASCADE,
			question_id UUID NOT NULL REFERENCES questions(id),
			sort_order INT NOT NULL,
			PRIMARY KEY (exam_id, question_id)
		)`,
		`CREATE TABLE IF NOT EXISTS responses (
			id UUID PRIMARY KEY,
			exam_id UUID NOT NULL REFERENCES exams(id),
			student_id UUID NOT NULL REFERENCES users(id),
			question_id UUID NOT NULL REFERENCES questions(id),
			option_picked TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (question_id, student_id)
		)`,
		`CREATE TABLE IF NOT EXISTS results (
			id UUID PRIMARY KEY,
			exam_id UUID NOT NULL REFERENCES exams(id),
			student_id UUID NOT NULL REFERENCES users(id),
			marks INT NOT NULL,
			correct_questions JSONB NOT NULL DEFAULT '[]',
			incorrect_questions JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (exam_id, student_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_responses_exam_student ON responses (exam_id, student_id)`,
		`CREATE INDEX IF NOT EXISTS idx_exams_teacher ON exams (teacher_id)`,
		`CREATE INDEX IF NOT EXISTS idx_exams_start_time ON exams (start_time)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	log.Println("Database migrations completed successfully")
	return nil
}
