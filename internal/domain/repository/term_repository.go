package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"school_admin/internal/common"
	"school_admin/internal/domain/model"
)

type TermRepository interface {
	Create(ctx context.Context, term *model.Term) error
	List(ctx context.Context) ([]model.Term, error) // newest first
	FindByID(ctx context.Context, id string) (*model.Term, error)
	FindCurrent(ctx context.Context) (*model.Term, error)
	ClearCurrent(ctx context.Context) error
	SetCurrent(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

type pgTermRepository struct {
	db *sql.DB
}

func NewPgTermRepository(db *sql.DB) TermRepository {
	return &pgTermRepository{db: db}
}

const termColumns = `id, start_year, end_year, term, current, created_at, updated_at`

func (r *pgTermRepository) Create(ctx context.Context, term *model.Term) error {
	query := `INSERT INTO terms (id, start_year, end_year, term, current)
	          VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query, term.ID, term.StartYear, term.EndYear, term.Term, term.Current)
	if err != nil {
		return fmt.Errorf("pgTermRepository.Create: %w", err)
	}
	return nil
}

func (r *pgTermRepository) List(ctx context.Context) ([]model.Term, error) {
	query := `SELECT ` + termColumns + ` FROM terms ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgTermRepository.List: %w", err)
	}
	defer rows.Close()

	var terms []model.Term
	for rows.Next() {
		var t model.Term
		if err := rows.Scan(&t.ID, &t.StartYear, &t.EndYear, &t.Term, &t.Current, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("pgTermRepository.List scan: %w", err)
		}
		terms = append(terms, t)
	}
	return terms, rows.Err()
}

func (r *pgTermRepository) FindByID(ctx context.Context, id string) (*model.Term, error) {
	query := `SELECT ` + termColumns + ` FROM terms WHERE id = $1`
	term := &model.Term{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&term.ID, &term.StartYear, &term.EndYear, &term.Term, &term.Current, &term.CreatedAt, &term.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgTermRepository.FindByID: %w", err)
	}
	return term, nil
}

func (r *pgTermRepository) FindCurrent(ctx context.Context) (*model.Term, error) {
	query := `SELECT ` + termColumns + ` FROM terms WHERE current = TRUE LIMIT 1`
	term := &model.Term{}
	err := r.db.QueryRowContext(ctx, query).Scan(
		&term.ID, &term.StartYear, &term.EndYear, &term.Term, &term.Current, &term.CreatedAt, &term.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgTermRepository.FindCurrent: %w", err)
	}
	return term, nil
}

func (r *pgTermRepository) ClearCurrent(ctx context.Context) error {
	query := `UPDATE terms SET current = FALSE, updated_at = CURRENT_TIMESTAMP WHERE current = TRUE`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("pgTermRepository.ClearCurrent: %w", err)
	}
	return nil
}

func (r *pgTermRepository) SetCurrent(ctx context.Context, id string) error {
	query := `UPDATE terms SET current = TRUE, updated_at = CURRENT_TIMESTAMP WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("pgTermRepository.SetCurrent: %w", err)
	}
	return nil
}

func (r *pgTermRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM terms WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("pgTermRepository.Delete: %w", err)
	}
	return nil
}

func (r *pgTermRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM terms`).Scan(&count); err != nil {
		return 0, fmt.Errorf("pgTermRepository.Count: %w", err)
	}
	return count, nil
}
