package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"school_admin/internal/common"
	"school_admin/internal/common/security"
	"school_admin/internal/domain/model"
	"school_admin/internal/domain/repository"

	"github.com/google/uuid"
)

type TeacherService struct {
	userRepo repository.UserRepository
	scRepo   repository.SubjectClassRepository
	db       *sql.DB // for multi-step commits; nil runs the steps unwrapped
}

func NewTeacherService(userRepo repository.UserRepository, scRepo repository.SubjectClassRepository, db *sql.DB) *TeacherService {
	return &TeacherService{userRepo: userRepo, scRepo: scRepo, db: db}
}

func (s *TeacherService) beginTx(ctx context.Context) (*sql.Tx, error) {
	if s.db == nil {
		return nil, nil
	}
	return s.db.BeginTx(ctx, nil)
}

func commitTx(tx *sql.Tx) error {
	if tx == nil {
		return nil
	}
	return tx.Commit()
}

func rollbackTx(tx *sql.Tx) {
	if tx != nil {
		tx.Rollback()
	}
}

type CreateTeacherRequest struct {
	Name            string   `json:"name" validate:"required"`
	Email           string   `json:"email" validate:"required,email"`
	SubjectClassIDs []string `json:"subject_class_ids" validate:"required,min=1,dive,uuid"`
}

// CreateTeacher registers a teacher and claims the given subject-classes.
// Validation scans the full batch before anything is written: one missing or
// already-taken subject-class rejects the whole request.
func (s *TeacherService) CreateTeacher(ctx context.Context, req CreateTeacherRequest) (*model.User, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("user exists: %w", common.ErrBadRequest)
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	for _, scID := range req.SubjectClassIDs {
		sc, err := s.scRepo.FindByID(ctx, scID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return nil, fmt.Errorf("subject for class does not exist: %w", common.ErrBadRequest)
			}
			return nil, err
		}
		if sc.InUse {
			return nil, fmt.Errorf("subject for class is taken: %w", common.ErrBadRequest)
		}
	}

	hashed, err := security.HashPassword(DefaultUserPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &model.User{
		ID:              uuid.NewString(),
		Name:            req.Name,
		Email:           req.Email,
		HashedPassword:  hashed,
		Role:            model.RoleTeacher,
		SubjectClassIDs: req.SubjectClassIDs,
	}

	tx, err := s.beginTx(ctx)
	if err != nil {
		return nil, common.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackTx(tx)

	if err := s.userRepo.Create(ctx, tx, user); err != nil {
		return nil, err
	}
	if err := s.scRepo.SetInUse(ctx, tx, req.SubjectClassIDs, true); err != nil {
		return nil, err
	}
	if err := commitTx(tx); err != nil {
		return nil, common.Errorf("failed to commit transaction: %w", err)
	}

	user.HashedPassword = ""
	return user, nil
}

// DeleteTeacher removes the teacher and releases their subject-classes.
func (s *TeacherService) DeleteTeacher(ctx context.Context, teacherID string) error {
	teacher, err := s.userRepo.FindByIDAndRole(ctx, teacherID, model.RoleTeacher)
	if err != nil {
		return err
	}

	tx, err := s.beginTx(ctx)
	if err != nil {
		return common.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackTx(tx)

	if err := s.userRepo.Delete(ctx, tx, teacher.ID); err != nil {
		return err
	}
	if err := s.scRepo.SetInUse(ctx, tx, teacher.SubjectClassIDs, false); err != nil {
		return err
	}
	return commitTx(tx)
}

type AssignmentUpdate struct {
	SubjectClassID string `json:"subject_class_id" validate:"required,uuid"`
	InUse          bool   `json:"in_use"`
}

type UpdateTeacherRequest struct {
	Name        string             `json:"name" validate:"required"`
	Email       string             `json:"email" validate:"required,email"`
	Assignments []AssignmentUpdate `json:"subject_classes" validate:"required,dive"`
}

// UpdateTeacher sets each referenced subject-class's in-use flag as requested
// and leaves the teacher assigned to the subset still flagged in use. This
// lets an administrator release and claim classes in the same call.
func (s *TeacherService) UpdateTeacher(ctx context.Context, teacherID string, req UpdateTeacherRequest) (*model.User, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}

	teacher, err := s.userRepo.FindByIDAndRole(ctx, teacherID, model.RoleTeacher)
	if err != nil {
		return nil, err
	}

	for _, a := range req.Assignments {
		if _, err := s.scRepo.FindByID(ctx, a.SubjectClassID); err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return nil, fmt.Errorf("subject for class does not exist: %w", common.ErrBadRequest)
			}
			return nil, err
		}
	}

	var keep, release []string
	for _, a := range req.Assignments {
		if a.InUse {
			keep = append(keep, a.SubjectClassID)
		} else {
			release = append(release, a.SubjectClassID)
		}
	}

	tx, err := s.beginTx(ctx)
	if err != nil {
		return nil, common.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackTx(tx)

	if err := s.scRepo.SetInUse(ctx, tx, keep, true); err != nil {
		return nil, err
	}
	if err := s.scRepo.SetInUse(ctx, tx, release, false); err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateProfile(ctx, tx, teacher.ID, req.Name, req.Email); err != nil {
		return nil, err
	}
	if err := s.userRepo.ReplaceAssignments(ctx, tx, teacher.ID, keep); err != nil {
		return nil, err
	}
	if err := commitTx(tx); err != nil {
		return nil, common.Errorf("failed to commit transaction: %w", err)
	}

	teacher.Name = req.Name
	teacher.Email = req.Email
	teacher.SubjectClassIDs = keep
	teacher.HashedPassword = ""
	return teacher, nil
}

func (s *TeacherService) GetTeacherSubjectClasses(ctx context.Context, teacherID string) ([]model.SubjectClass, error) {
	teacher, err := s.userRepo.FindByIDAndRole(ctx, teacherID, model.RoleTeacher)
	if err != nil {
		return nil, err
	}
	return s.scRepo.FindByIDs(ctx, teacher.SubjectClassIDs)
}

// GetTeacherStudents returns the distinct students enrolled across the
// teacher's subject-classes.
func (s *TeacherService) GetTeacherStudents(ctx context.Context, teacherID string) ([]model.User, error) {
	teacher, err := s.userRepo.FindByIDAndRole(ctx, teacherID, model.RoleTeacher)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var students []model.User
	for _, scID := range teacher.SubjectClassIDs {
		enrolled, err := s.userRepo.FindStudentsBySubjectClass(ctx, scID)
		if err != nil {
			return nil, err
		}
		for _, st := range enrolled {
			if seen[st.ID] {
				continue
			}
			seen[st.ID] = true
			st.HashedPassword = ""
			students = append(students, st)
		}
	}
	return students, nil
}
