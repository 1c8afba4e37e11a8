package service

import (
	"context"
	"errors"
	"fmt"

	"school_admin/internal/common"
	"school_admin/internal/domain/model"
	"school_admin/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type SubjectService struct {
	classRepo   repository.ClassRepository
	subjectRepo repository.SubjectRepository
	scRepo      repository.SubjectClassRepository
}

func NewSubjectService(
	classRepo repository.ClassRepository,
	subjectRepo repository.SubjectRepository,
	scRepo repository.SubjectClassRepository,
) *SubjectService {
	return &SubjectService{classRepo: classRepo, subjectRepo: subjectRepo, scRepo: scRepo}
}

func (s *SubjectService) ListClasses(ctx context.Context) ([]model.Class, error) {
	return s.classRepo.List(ctx)
}

type CreateSubjectRequest struct {
	Name     string   `json:"name" validate:"required"`
	ClassIDs []string `json:"class_ids" validate:"required,min=1,dive,uuid"`
}

// CreateSubject registers a subject and binds it to every given class.
// Creation is idempotent on the subject name; an existing subject is
// returned unchanged.
func (s *SubjectService) CreateSubject(ctx context.Context, req CreateSubjectRequest) (*model.Subject, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}

	existing, err := s.subjectRepo.FindByName(ctx, req.Name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	subject := &model.Subject{
		ID:       uuid.NewString(),
		Name:     req.Name,
		Slug:     slug.Make(req.Name),
		ClassIDs: req.ClassIDs,
	}
	if err := s.subjectRepo.Create(ctx, subject); err != nil {
		return nil, err
	}

	for _, classID := range req.ClassIDs {
		sc := &model.SubjectClass{
			ID:        uuid.NewString(),
			SubjectID: subject.ID,
			ClassID:   classID,
		}
		if err := s.scRepo.Create(ctx, sc); err != nil {
			return nil, fmt.Errorf("failed to bind subject to class %s: %w", classID, err)
		}
	}
	return subject, nil
}

func (s *SubjectService) ListSubjects(ctx context.Context) ([]model.Subject, error) {
	return s.subjectRepo.List(ctx)
}

func (s *SubjectService) ListSubjectClasses(ctx context.Context, filter model.SubjectClassFilter) ([]model.SubjectClass, error) {
	return s.scRepo.List(ctx, filter)
}
