package service

import (
	"context"
	"fmt"
	"log"

	"school_admin/internal/common"
	"school_admin/internal/domain/model"
	"school_admin/internal/domain/repository"

	"github.com/google/uuid"
)

// RotationLock serializes term rotation; only one advance may run at a time.
type RotationLock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// SessionEpochs invalidates outstanding sessions when the term changes.
type SessionEpochs interface {
	Bump(ctx context.Context) error
}

type TermService struct {
	termRepo repository.TermRepository
	lock     RotationLock
	epochs   SessionEpochs
}

func NewTermService(termRepo repository.TermRepository, lock RotationLock, epochs SessionEpochs) *TermService {
	return &TermService{termRepo: termRepo, lock: lock, epochs: epochs}
}

func (s *TermService) ListTerms(ctx context.Context) ([]model.Term, error) {
	return s.termRepo.List(ctx)
}

func (s *TermService) GetCurrentTerm(ctx context.Context) (*model.Term, error) {
	return s.termRepo.FindCurrent(ctx)
}

// AdvanceTerm rotates to the next term: 1→2→3, wrapping to term 1 of the next
// session. All terms are deactivated before the new current term is inserted,
// and the session epoch is bumped so every outstanding token is invalidated.
func (s *TermService) AdvanceTerm(ctx context.Context) (*model.Term, error) {
	acquired, err := s.lock.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, common.ErrTermLockFailed
	}
	defer func() {
		if err := s.lock.Release(ctx); err != nil {
			log.Printf("WARN: failed to release term rotation lock: %v", err)
		}
	}()

	current, err := s.termRepo.FindCurrent(ctx)
	if err != nil {
		return nil, err // ErrNotFound on an un-bootstrapped system
	}

	next := current.Next()
	next.ID = uuid.NewString()

	if err := s.termRepo.ClearCurrent(ctx); err != nil {
		return nil, err
	}
	if err := s.termRepo.Create(ctx, &next); err != nil {
		return nil, err
	}

	if err := s.epochs.Bump(ctx); err != nil {
		// Term advanced but stale sessions stay valid until expiry.
		log.Printf("ERROR: failed to bump session epoch after term rotation: %v", err)
	}

	return &next, nil
}

// RemoveCurrentTerm deletes the current term and promotes the most recently
// created remaining term. The last term in the system cannot be removed.
func (s *TermService) RemoveCurrentTerm(ctx context.Context) ([]model.Term, error) {
	count, err := s.termRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count <= 1 {
		return nil, fmt.Errorf("cannot delete all terms: %w", common.ErrBadRequest)
	}

	current, err := s.termRepo.FindCurrent(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.termRepo.Delete(ctx, current.ID); err != nil {
		return nil, err
	}

	terms, err := s.termRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(terms) > 0 {
		if err := s.termRepo.SetCurrent(ctx, terms[0].ID); err != nil {
			return nil, err
		}
		terms[0].Current = true
	}
	return terms, nil
}
