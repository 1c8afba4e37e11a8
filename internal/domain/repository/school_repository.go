package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"school_admin/internal/common"
	"school_admin/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type ClassRepository interface {
	Create(ctx context.Context, class *model.Class) error
	List(ctx context.Context) ([]model.Class, error)
	Count(ctx context.Context) (int, error)
}

type SubjectRepository interface {
	Create(ctx context.Context, subject *model.Subject) error
	FindByName(ctx context.Context, name string) (*model.Subject, error)
	FindBySlug(ctx context.Context, slug string) (*model.Subject, error)
	List(ctx context.Context) ([]model.Subject, error)
}

type pgClassRepository struct {
	db *sql.DB
}

func NewPgClassRepository(db *sql.DB) ClassRepository {
	return &pgClassRepository{db: db}
}

func (r *pgClassRepository) Create(ctx context.Context, class *model.Class) error {
	query := `INSERT INTO classes (id, name, level) VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, class.ID, class.Name, class.Level); err != nil {
		return fmt.Errorf("pgClassRepository.Create: %w", err)
	}
	return nil
}

func (r *pgClassRepository) List(ctx context.Context) ([]model.Class, error) {
	query := `SELECT id, name, level, created_at, updated_at FROM classes ORDER BY level`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgClassRepository.List: %w", err)
	}
	defer rows.Close()

	var classes []model.Class
	for rows.Next() {
		var c model.Class
		if err := rows.Scan(&c.ID, &c.Name, &c.Level, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("pgClassRepository.List scan: %w", err)
		}
		classes = append(classes, c)
	}
	return classes, rows.Err()
}

func (r *pgClassRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM classes`).Scan(&count); err != nil {
		return 0, fmt.Errorf("pgClassRepository.Count: %w", err)
	}
	return count, nil
}

type pgSubjectRepository struct {
	db *sql.DB
}

func NewPgSubjectRepository(db *sql.DB) SubjectRepository {
	return &pgSubjectRepository{db: db}
}

func (r *pgSubjectRepository) Create(ctx context.Context, subject *model.Subject) error {
	query := `INSERT INTO subjects (id, name, slug) VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, subject.ID, subject.Name, subject.Slug); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("subject with this name already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgSubjectRepository.Create: %w", err)
	}
	return nil
}

func (r *pgSubjectRepository) FindByName(ctx context.Context, name string) (*model.Subject, error) {
	return r.findBy(ctx, "name", name)
}

func (r *pgSubjectRepository) FindBySlug(ctx context.Context, slug string) (*model.Subject, error) {
	return r.findBy(ctx, "slug", slug)
}

func (r *pgSubjectRepository) findBy(ctx context.Context, column, value string) (*model.Subject, error) {
	query := `SELECT id, name, slug, created_at, updated_at FROM subjects WHERE ` + column + ` = $1`
	subject := &model.Subject{}
	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&subject.ID, &subject.Name, &subject.Slug, &subject.CreatedAt, &subject.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgSubjectRepository.findBy %s: %w", column, err)
	}
	return subject, nil
}

func (r *pgSubjectRepository) List(ctx context.Context) ([]model.Subject, error) {
	query := `SELECT id, name, slug, created_at, updated_at FROM subjects ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgSubjectRepository.List: %w", err)
	}
	defer rows.Close()

	var subjects []model.Subject
	for rows.Next() {
		var s model.Subject
		if err := rows.Scan(&s.ID, &s.Name, &s.Slug, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("pgSubjectRepository.List scan: %w", err)
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}
