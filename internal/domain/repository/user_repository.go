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

type UserFilter struct {
	Name    *string // substring match
	Blocked *bool
}

type UserRepository interface {
	Create(ctx context.Context, tx *sql.Tx, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByIDAndRole(ctx context.Context, id string, role model.Role) (*model.User, error)
	FindTeacherBySubjectClass(ctx context.Context, subjectClassID string) (*model.User, error)
	FindStudentsBySubjectClass(ctx context.Context, subjectClassID string) ([]model.User, error)
	List(ctx context.Context, role model.Role, filter UserFilter, page, limit int) ([]model.User, int, error)
	UpdateProfile(ctx context.Context, tx *sql.Tx, id, name, email string) error
	UpdatePassword(ctx context.Context, id, hashedPassword string) error
	SetBlocked(ctx context.Context, id string, role model.Role, blocked bool) error
	SetBlockedBySubjectClass(ctx context.Context, subjectClassID string, blocked bool) error
	ReplaceAssignments(ctx context.Context, tx *sql.Tx, userID string, subjectClassIDs []string) error
	GetAssignments(ctx context.Context, userID string) ([]string, error)
	Delete(ctx context.Context, tx *sql.Tx, id string) error
}

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

func (r *pgUserRepository) Create(ctx context.Context, tx *sql.Tx, user *model.User) error {
	query := `INSERT INTO users (id, name, email, hashed_password, role, blocked)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, user.ID, user.Name, user.Email, user.HashedPassword, user.Role, user.Blocked)
	} else {
		_, err = r.db.ExecContext(ctx, query, user.ID, user.Name, user.Email, user.HashedPassword, user.Role, user.Blocked)
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint violation
			return fmt.Errorf("user with given email already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgUserRepository.Create: %w", err)
	}
	if len(user.SubjectClassIDs) > 0 {
		if err := r.ReplaceAssignments(ctx, tx, user.ID, user.SubjectClassIDs); err != nil {
			return err
		}
	}
	return nil
}

const userColumns = `id, name, email, hashed_password, role, blocked, created_at, updated_at`

func (r *pgUserRepository) scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.HashedPassword, &user.Role,
		&user.Blocked, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *pgUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := r.scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("pgUserRepository.FindByEmail: %w", err)
	}
	return r.attachAssignments(ctx, user)
}

func (r *pgUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := r.scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("pgUserRepository.FindByID: %w", err)
	}
	return r.attachAssignments(ctx, user)
}

func (r *pgUserRepository) FindByIDAndRole(ctx context.Context, id string, role model.Role) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND role = $2`
	user, err := r.scanUser(r.db.QueryRowContext(ctx, query, id, role))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("pgUserRepository.FindByIDAndRole: %w", err)
	}
	return r.attachAssignments(ctx, user)
}

func (r *pgUserRepository) FindTeacherBySubjectClass(ctx context.Context, subjectClassID string) (*model.User, error) {
	query := `SELECT u.id, u.name, u.email, u.hashed_password, u.role, u.blocked, u.created_at, u.updated_at
	          FROM users u
	          JOIN user_subject_classes usc ON usc.user_id = u.id
	          WHERE usc.subject_class_id = $1 AND u.role = $2
	          LIMIT 1`
	user, err := r.scanUser(r.db.QueryRowContext(ctx, query, subjectClassID, model.RoleTeacher))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("pgUserRepository.FindTeacherBySubjectClass: %w", err)
	}
	return r.attachAssignments(ctx, user)
}

func (r *pgUserRepository) FindStudentsBySubjectClass(ctx context.Context, subjectClassID string) ([]model.User, error) {
	query := `SELECT u.id, u.name, u.email, u.hashed_password, u.role, u.blocked, u.created_at, u.updated_at
	          FROM users u
	          JOIN user_subject_classes usc ON usc.user_id = u.id
	          WHERE usc.subject_class_id = $1 AND u.role = $2
	          ORDER BY u.name`
	rows, err := r.db.QueryContext(ctx, query, subjectClassID, model.RoleStudent)
	if err != nil {
		return nil, fmt.Errorf("pgUserRepository.FindStudentsBySubjectClass: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.HashedPassword, &u.Role, &u.Blocked, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("pgUserRepository.FindStudentsBySubjectClass scan: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *pgUserRepository) List(ctx context.Context, role model.Role, filter UserFilter, page, limit int) ([]model.User, int, error) {
	where := `WHERE role = $1`
	args := []interface{}{role}
	if filter.Name != nil {
		args = append(args, "%"+*filter.Name+"%")
		where += fmt.Sprintf(" AND name ILIKE $%d", len(args))
	}
	if filter.Blocked != nil {
		args = append(args, *filter.Blocked)
		where += fmt.Sprintf(" AND blocked = $%d", len(args))
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM users ` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgUserRepository.List count: %w", err)
	}

	args = append(args, limit, page*limit)
	query := `SELECT ` + userColumns + ` FROM users ` + where +
		fmt.Sprintf(` ORDER BY name LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgUserRepository.List: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.HashedPassword, &u.Role, &u.Blocked, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("pgUserRepository.List scan: %w", err)
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

func (r *pgUserRepository) UpdateProfile(ctx context.Context, tx *sql.Tx, id, name, email string) error {
	query := `UPDATE users SET name = $1, email = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $3`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, name, email, id)
	} else {
		_, err = r.db.ExecContext(ctx, query, name, email, id)
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("email already taken: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgUserRepository.UpdateProfile: %w", err)
	}
	return nil
}

func (r *pgUserRepository) UpdatePassword(ctx context.Context, id, hashedPassword string) error {
	query := `UPDATE users SET hashed_password = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, hashedPassword, id); err != nil {
		return fmt.Errorf("pgUserRepository.UpdatePassword: %w", err)
	}
	return nil
}

func (r *pgUserRepository) SetBlocked(ctx context.Context, id string, role model.Role, blocked bool) error {
	query := `UPDATE users SET blocked = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2 AND role = $3`
	if _, err := r.db.ExecContext(ctx, query, blocked, id, role); err != nil {
		return fmt.Errorf("pgUserRepository.SetBlocked: %w", err)
	}
	return nil
}

func (r *pgUserRepository) SetBlockedBySubjectClass(ctx context.Context, subjectClassID string, blocked bool) error {
	query := `UPDATE users SET blocked = $1, updated_at = CURRENT_TIMESTAMP
	          WHERE role = $2 AND id IN (
	              SELECT user_id FROM user_subject_classes WHERE subject_class_id = $3
	          )`
	if _, err := r.db.ExecContext(ctx, query, blocked, model.RoleStudent, subjectClassID); err != nil {
		return fmt.Errorf("pgUserRepository.SetBlockedBySubjectClass: %w", err)
	}
	return nil
}

func (r *pgUserRepository) ReplaceAssignments(ctx context.Context, tx *sql.Tx, userID string, subjectClassIDs []string) error {
	del := `DELETE FROM user_subject_classes WHERE user_id = $1`
	ins := `INSERT INTO user_subject_classes (user_id, subject_class_id) VALUES ($1, $2)`

	exec := func(query string, args ...interface{}) error {
		var err error
		if tx != nil {
			_, err = tx.ExecContext(ctx, query, args...)
		} else {
			_, err = r.db.ExecContext(ctx, query, args...)
		}
		return err
	}

	if err := exec(del, userID); err != nil {
		return fmt.Errorf("pgUserRepository.ReplaceAssignments delete: %w", err)
	}
	for _, scID := range subjectClassIDs {
		if err := exec(ins, userID, scID); err != nil {
			return fmt.Errorf("pgUserRepository.ReplaceAssignments insert: %w", err)
		}
	}
	return nil
}

func (r *pgUserRepository) GetAssignments(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT subject_class_id FROM user_subject_classes WHERE user_id = $1`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("pgUserRepository.GetAssignments: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("pgUserRepository.GetAssignments scan: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *pgUserRepository) Delete(ctx context.Context, tx *sql.Tx, id string) error {
	query := `DELETE FROM users WHERE id = $1`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, id)
	} else {
		_, err = r.db.ExecContext(ctx, query, id)
	}
	if err != nil {
		return fmt.Errorf("pgUserRepository.Delete: %w", err)
	}
	return nil
}

func (r *pgUserRepository) attachAssignments(ctx context.Context, user *model.User) (*model.User, error) {
	ids, err := r.GetAssignments(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.SubjectClassIDs = ids
	return user, nil
}
