package service

import (
	"context"
	"errors"
	"testing"

	"school_admin/internal/common"
	"school_admin/internal/domain/model"

	"github.com/google/uuid"
)

func seedTerm(repo *fakeTermRepo, startYear, termNo int) *model.Term {
	term := &model.Term{
		ID:        uuid.NewString(),
		StartYear: startYear,
		EndYear:   startYear + 1,
		Term:      termNo,
		Current:   true,
	}
	repo.Create(context.Background(), term)
	return term
}

func TestAdvanceTermWithinSession(t *testing.T) {
	termRepo := &fakeTermRepo{}
	seedTerm(termRepo, 2022, 2)
	svc := NewTermService(termRepo, &fakeLock{}, &fakeEpochs{})

	next, err := svc.AdvanceTerm(context.Background())
	if err != nil {
		t.Fatalf("AdvanceTerm failed: %v", err)
	}
	if next.Term != 3 || next.StartYear != 2022 || next.EndYear != 2023 {
		t.Errorf("expected 2022/2023 term 3, got %d/%d term %d", next.StartYear, next.EndYear, next.Term)
	}
}

func TestAdvanceTermWrapsToNextSession(t *testing.T) {
	termRepo := &fakeTermRepo{}
	seedTerm(termRepo, 2022, 3)
	epochs := &fakeEpochs{}
	svc := NewTermService(termRepo, &fakeLock{}, epochs)

	next, err := svc.AdvanceTerm(context.Background())
	if err != nil {
		t.Fatalf("AdvanceTerm failed: %v", err)
	}
	if next.Term != 1 || next.StartYear != 2023 || next.EndYear != 2024 {
		t.Errorf("expected 2023/2024 term 1, got %d/%d term %d", next.StartYear, next.EndYear, next.Term)
	}
	if epochs.bumps != 1 {
		t.Errorf("expected session epoch bump, got %d", epochs.bumps)
	}
}

func TestAdvanceTermKeepsSingleCurrent(t *testing.T) {
	termRepo := &fakeTermRepo{}
	seedTerm(termRepo, 2022, 1)
	svc := NewTermService(termRepo, &fakeLock{}, &fakeEpochs{})

	if _, err := svc.AdvanceTerm(context.Background()); err != nil {
		t.Fatalf("AdvanceTerm failed: %v", err)
	}

	terms, _ := termRepo.List(context.Background())
	currents := 0
	for _, term := range terms {
		if term.Current {
			currents++
		}
	}
	if currents != 1 {
		t.Errorf("expected exactly one current term, got %d", currents)
	}
}

func TestAdvanceTermContended(t *testing.T) {
	termRepo := &fakeTermRepo{}
	seedTerm(termRepo, 2022, 1)
	lock := &fakeLock{held: true}
	svc := NewTermService(termRepo, lock, &fakeEpochs{})

	_, err := svc.AdvanceTerm(context.Background())
	if !errors.Is(err, common.ErrTermLockFailed) {
		t.Fatalf("expected ErrTermLockFailed while lock is held, got %v", err)
	}
}

func TestAdvanceTermReleasesLock(t *testing.T) {
	termRepo := &fakeTermRepo{}
	seedTerm(termRepo, 2022, 1)
	lock := &fakeLock{}
	svc := NewTermService(termRepo, lock, &fakeEpochs{})

	if _, err := svc.AdvanceTerm(context.Background()); err != nil {
		t.Fatalf("AdvanceTerm failed: %v", err)
	}
	if lock.held {
		t.Error("rotation lock still held after advance")
	}
}

func TestRemoveCurrentTermPromotesNewest(t *testing.T) {
	termRepo := &fakeTermRepo{}
	old := seedTerm(termRepo, 2022, 1)
	termRepo.ClearCurrent(context.Background())
	mid := seedTerm(termRepo, 2022, 2)
	termRepo.ClearCurrent(context.Background())
	cur := seedTerm(termRepo, 2022, 3)
	_ = old

	svc := NewTermService(termRepo, &fakeLock{}, &fakeEpochs{})

	terms, err := svc.RemoveCurrentTerm(context.Background())
	if err != nil {
		t.Fatalf("RemoveCurrentTerm failed: %v", err)
	}
	if len(terms) != 2 {
		t.Fatalf("expected 2 remaining terms, got %d", len(terms))
	}
	for _, term := range terms {
		if term.ID == cur.ID {
			t.Errorf("deleted term %s still listed", cur.ID)
		}
	}
	if !terms[0].Current || terms[0].ID != mid.ID {
		t.Errorf("expected newest remaining term %s promoted, got %+v", mid.ID, terms[0])
	}
}

func TestRemoveLastTermRejected(t *testing.T) {
	termRepo := &fakeTermRepo{}
	seedTerm(termRepo, 2022, 1)
	svc := NewTermService(termRepo, &fakeLock{}, &fakeEpochs{})

	_, err := svc.RemoveCurrentTerm(context.Background())
	if !errors.Is(err, common.ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest removing the last term, got %v", err)
	}
	if count, _ := termRepo.Count(context.Background()); count != 1 {
		t.Errorf("last term must survive, count %d", count)
	}
}
