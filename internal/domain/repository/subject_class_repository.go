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

type SubjectClassRepository interface {
	Create(ctx context.Context, sc *model.SubjectClass) error
	FindByID(ctx context.Context, id string) (*model.SubjectClass, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.SubjectClass, error)
	List(ctx context.Context, filter model.SubjectClassFilter) ([]model.SubjectClass, error)
	SetInUse(ctx context.Context, tx *sql.Tx, ids []string, inUse bool) error
}

type pgSubjectClassRepository struct {
	db *sql.DB
}

func NewPgSubjectClassRepository(db *sql.DB) SubjectClassRepository {
	return &pgSubjectClassRepository{db: db}
}

const subjectClassSelect = `
	SELECT sc.id, sc.subject_id, sc.class_id, sc.in_use, sc.created_at, sc.updated_at,
	       s.id, s.name, s.slug, s.created_at, s.updated_at,
	       c.id, c.name, c.level, c.created_at, c.updated_at
	FROM subject_classes sc
	JOIN subjects s ON s.id = sc.subject_id
	JOIN classes c ON c.id = sc.class_id`

func scanSubjectClass(scanner interface{ Scan(...interface{}) error }) (*model.SubjectClass, error) {
	sc := &model.SubjectClass{Subject: &model.Subject{}, Class: &model.Class{}}
	err := scanner.Scan(
		&sc.ID, &sc.SubjectID, &sc.ClassID, &sc.InUse, &sc.CreatedAt, &sc.UpdatedAt,
		&sc.Subject.ID, &sc.Subject.Name, &sc.Subject.Slug, &sc.Subject.CreatedAt, &sc.Subject.UpdatedAt,
		&sc.Class.ID, &sc.Class.Name, &sc.Class.Level, &sc.Class.CreatedAt, &sc.Class.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return sc, nil
}

func (r *pgSubjectClassRepository) Create(ctx context.Context, sc *model.SubjectClass) error {
	query := `INSERT INTO subject_classes (id, subject_id, class_id, in_use)
	          VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(ctx, query, sc.ID, sc.SubjectID, sc.ClassID, sc.InUse); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("subject already bound to this class: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgSubjectClassRepository.Create: %w", err)
	}
	return nil
}

func (r *pgSubjectClassRepository) FindByID(ctx context.Context, id string) (*model.SubjectClass, error) {
	query := subjectClassSelect + ` WHERE sc.id = $1`
	sc, err := scanSubjectClass(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgSubjectClassRepository.FindByID: %w", err)
	}
	return sc, nil
}

func (r *pgSubjectClassRepository) FindByIDs(ctx context.Context, ids []string) ([]model.SubjectClass, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := subjectClassSelect + ` WHERE sc.id = ANY($1)`
	rows, err := r.db.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("pgSubjectClassRepository.FindByIDs: %w", err)
	}
	defer rows.Close()

	var scs []model.SubjectClass
	for rows.Next() {
		sc, err := scanSubjectClass(rows)
		if err != nil {
			return nil, fmt.Errorf("pgSubjectClassRepository.FindByIDs scan: %w", err)
		}
		scs = append(scs, *sc)
	}
	return scs, rows.Err()
}

func (r *pgSubjectClassRepository) List(ctx context.Context, filter model.SubjectClassFilter) ([]model.SubjectClass, error) {
	query := subjectClassSelect
	var args []interface{}
	where := ""
	appendCond := func(cond string, arg interface{}) {
		args = append(args, arg)
		if where == "" {
			where = " WHERE "
		} else {
			where += " AND "
		}
		where += fmt.Sprintf(cond, len(args))
	}
	if filter.SubjectID != nil {
		appendCond("sc.subject_id = $%d", *filter.SubjectID)
	}
	if filter.ClassID != nil {
		appendCond("sc.class_id = $%d", *filter.ClassID)
	}
	if filter.InUse != nil {
		appendCond("sc.in_use = $%d", *filter.InUse)
	}
	query += where + ` ORDER BY s.name, c.level`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgSubjectClassRepository.List: %w", err)
	}
	defer rows.Close()

	var scs []model.SubjectClass
	for rows.Next() {
		sc, err := scanSubjectClass(rows)
		if err != nil {
			return nil, fmt.Errorf("pgSubjectClassRepository.List scan: %w", err)
		}
		scs = append(scs, *sc)
	}
	return scs, rows.Err()
}

func (r *pgSubjectClassRepository) SetInUse(ctx context.Context, tx *sql.Tx, ids []string, inUse bool) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE subject_classes SET in_use = $1, updated_at = CURRENT_TIMESTAMP WHERE id = ANY($2)`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, inUse, ids)
	} else {
		_, err = r.db.ExecContext(ctx, query, inUse, ids)
	}
	if err != nil {
		return fmt.Errorf("pgSubjectClassRepository.SetInUse: %w", err)
	}
	return nil
}
