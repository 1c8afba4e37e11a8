package service

import (
	"context"
	"errors"
	"fmt"

	"school_admin/internal/common"
	"school_admin/internal/common/security"
	"school_admin/internal/domain/model"
	"school_admin/internal/domain/repository"

	"github.com/google/uuid"
)

type StudentService struct {
	userRepo repository.UserRepository
	scRepo   repository.SubjectClassRepository
}

func NewStudentService(userRepo repository.UserRepository, scRepo repository.SubjectClassRepository) *StudentService {
	return &StudentService{userRepo: userRepo, scRepo: scRepo}
}

type CreateStudentRequest struct {
	Name            string   `json:"name" validate:"required"`
	Email           string   `json:"email" validate:"required,email"`
	SubjectClassIDs []string `json:"subject_class_ids" validate:"required,min=1,dive,uuid"`
}

// validateStudentAssignments checks every subject-class exists and is staffed,
// and that the batch resolves to exactly one class. Nothing is written until
// the whole batch passes.
func (s *StudentService) validateStudentAssignments(ctx context.Context, subjectClassIDs []string) error {
	classes := make(map[string]bool)
	for _, scID := range subjectClassIDs {
		sc, err := s.scRepo.FindByID(ctx, scID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return fmt.Errorf("subject for class does not exist: %w", common.ErrBadRequest)
			}
			return err
		}
		if !sc.InUse {
			return fmt.Errorf("no teacher assigned to subject for class: %w", common.ErrBadRequest)
		}
		classes[sc.ClassID] = true
	}
	if len(classes) != 1 {
		return fmt.Errorf("student cannot be in more than one class at a time: %w", common.ErrBadRequest)
	}
	return nil
}

func (s *StudentService) CreateStudent(ctx context.Context, req CreateStudentRequest) (*model.User, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("user exists: %w", common.ErrBadRequest)
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	if err := s.validateStudentAssignments(ctx, req.SubjectClassIDs); err != nil {
		return nil, err
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
		Role:            model.RoleStudent,
		SubjectClassIDs: req.SubjectClassIDs,
	}
	if err := s.userRepo.Create(ctx, nil, user); err != nil {
		return nil, err
	}

	user.HashedPassword = ""
	return user, nil
}

func (s *StudentService) UpdateStudent(ctx context.Context, studentID string, req CreateStudentRequest) (*model.User, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}

	student, err := s.userRepo.FindByIDAndRole(ctx, studentID, model.RoleStudent)
	if err != nil {
		return nil, err
	}

	if err := s.validateStudentAssignments(ctx, req.SubjectClassIDs); err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateProfile(ctx, nil, student.ID, req.Name, req.Email); err != nil {
		return nil, err
	}
	if err := s.userRepo.ReplaceAssignments(ctx, nil, student.ID, req.SubjectClassIDs); err != nil {
		return nil, err
	}

	student.Name = req.Name
	student.Email = req.Email
	student.SubjectClassIDs = req.SubjectClassIDs
	student.HashedPassword = ""
	return student, nil
}

func (s *StudentService) GetStudentSubjectClasses(ctx context.Context, studentID string) ([]model.SubjectClass, error) {
	student, err := s.userRepo.FindByIDAndRole(ctx, studentID, model.RoleStudent)
	if err != nil {
		return nil, err
	}
	return s.scRepo.FindByIDs(ctx, student.SubjectClassIDs)
}

func (s *StudentService) BlockStudent(ctx context.Context, studentID string, blocked bool) error {
	return s.userRepo.SetBlocked(ctx, studentID, model.RoleStudent, blocked)
}

func (s *StudentService) BlockStudentsBySubjectClass(ctx context.Context, subjectClassID string, blocked bool) error {
	return s.userRepo.SetBlockedBySubjectClass(ctx, subjectClassID, blocked)
}
