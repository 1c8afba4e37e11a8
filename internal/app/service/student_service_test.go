package service

import (
	"context"
	"errors"
	"testing"

	"school_admin/internal/common"
	"school_admin/internal/domain/model"

	"github.com/google/uuid"
)

// seedStaffedSubjectClass returns an in-use subject-class bound to classID.
func seedStaffedSubjectClass(repo *fakeSubjectClassRepo, classID string) *model.SubjectClass {
	sc := &model.SubjectClass{
		ID:        uuid.NewString(),
		SubjectID: uuid.NewString(),
		ClassID:   classID,
		InUse:     true,
	}
	repo.add(*sc)
	return sc
}

func TestCreateStudent(t *testing.T) {
	userRepo := newFakeUserRepo()
	scRepo := newFakeSubjectClassRepo()
	classID := uuid.NewString()
	sc1 := seedStaffedSubjectClass(scRepo, classID)
	sc2 := seedStaffedSubjectClass(scRepo, classID)
	svc := NewStudentService(userRepo, scRepo)

	student, err := svc.CreateStudent(context.Background(), CreateStudentRequest{
		Name:            "Ada",
		Email:           "ada@school.local",
		SubjectClassIDs: []string{sc1.ID, sc2.ID},
	})
	if err != nil {
		t.Fatalf("CreateStudent failed: %v", err)
	}
	if student.Role != model.RoleStudent {
		t.Errorf("expected student role, got %q", student.Role)
	}
	if student.HashedPassword != "" {
		t.Error("hashed password leaked in response")
	}
}

func TestCreateStudentRejectsUnstaffedSubjectClass(t *testing.T) {
	userRepo := newFakeUserRepo()
	scRepo := newFakeSubjectClassRepo()
	classID := uuid.NewString()
	unstaffed := &model.SubjectClass{
		ID:        uuid.NewString(),
		SubjectID: uuid.NewString(),
		ClassID:   classID,
		InUse:     false,
	}
	scRepo.add(*unstaffed)
	svc := NewStudentService(userRepo, scRepo)

	_, err := svc.CreateStudent(context.Background(), CreateStudentRequest{
		Name:            "Ben",
		Email:           "ben@school.local",
		SubjectClassIDs: []string{unstaffed.ID},
	})
	if !errors.Is(err, common.ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest for unstaffed subject-class, got %v", err)
	}
}

func TestCreateStudentRejectsMultipleClasses(t *testing.T) {
	userRepo := newFakeUserRepo()
	scRepo := newFakeSubjectClassRepo()
	sc1 := seedStaffedSubjectClass(scRepo, uuid.NewString())
	sc2 := seedStaffedSubjectClass(scRepo, uuid.NewString())
	svc := NewStudentService(userRepo, scRepo)

	_, err := svc.CreateStudent(context.Background(), CreateStudentRequest{
		Name:            "Cleo",
		Email:           "cleo@school.local",
		SubjectClassIDs: []string{sc1.ID, sc2.ID},
	})
	if !errors.Is(err, common.ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest spanning two classes, got %v", err)
	}
	if _, err := userRepo.FindByEmail(context.Background(), "cleo@school.local"); !errors.Is(err, common.ErrNotFound) {
		t.Error("rejected student must not be persisted")
	}
}

func TestUpdateStudentReplacesAssignments(t *testing.T) {
	userRepo := newFakeUserRepo()
	scRepo := newFakeSubjectClassRepo()
	classID := uuid.NewString()
	old := seedStaffedSubjectClass(scRepo, classID)
	next := seedStaffedSubjectClass(scRepo, classID)
	student := model.User{
		ID:              uuid.NewString(),
		Name:            "Dayo",
		Email:           "dayo@school.local",
		Role:            model.RoleStudent,
		SubjectClassIDs: []string{old.ID},
	}
	userRepo.add(student)
	svc := NewStudentService(userRepo, scRepo)

	updated, err := svc.UpdateStudent(context.Background(), student.ID, CreateStudentRequest{
		Name:            "Dayo A.",
		Email:           "dayo@school.local",
		SubjectClassIDs: []string{next.ID},
	})
	if err != nil {
		t.Fatalf("UpdateStudent failed: %v", err)
	}
	if len(updated.SubjectClassIDs) != 1 || updated.SubjectClassIDs[0] != next.ID {
		t.Errorf("assignments not replaced: %v", updated.SubjectClassIDs)
	}

	stored, _ := userRepo.FindByID(context.Background(), student.ID)
	if stored.Name != "Dayo A." {
		t.Errorf("profile not updated, name %q", stored.Name)
	}
}

func TestBlockStudent(t *testing.T) {
	userRepo := newFakeUserRepo()
	scRepo := newFakeSubjectClassRepo()
	student := model.User{ID: uuid.NewString(), Role: model.RoleStudent}
	userRepo.add(student)
	svc := NewStudentService(userRepo, scRepo)

	if err := svc.BlockStudent(context.Background(), student.ID, true); err != nil {
		t.Fatalf("BlockStudent failed: %v", err)
	}
	stored, _ := userRepo.FindByID(context.Background(), student.ID)
	if !stored.Blocked {
		t.Error("student not blocked")
	}

	if err := svc.BlockStudent(context.Background(), student.ID, false); err != nil {
		t.Fatalf("unblock failed: %v", err)
	}
	stored, _ = userRepo.FindByID(context.Background(), student.ID)
	if stored.Blocked {
		t.Error("student still blocked")
	}
}

func TestBlockStudentsBySubjectClass(t *testing.T) {
	userRepo := newFakeUserRepo()
	scRepo := newFakeSubjectClassRepo()
	scID := uuid.NewString()
	in := model.User{ID: uuid.NewString(), Role: model.RoleStudent, SubjectClassIDs: []string{scID}}
	out := model.User{ID: uuid.NewString(), Role: model.RoleStudent, SubjectClassIDs: []string{uuid.NewString()}}
	userRepo.add(in)
	userRepo.add(out)
	svc := NewStudentService(userRepo, scRepo)

	if err := svc.BlockStudentsBySubjectClass(context.Background(), scID, true); err != nil {
		t.Fatalf("BlockStudentsBySubjectClass failed: %v", err)
	}
	enrolled, _ := userRepo.FindByID(context.Background(), in.ID)
	other, _ := userRepo.FindByID(context.Background(), out.ID)
	if !enrolled.Blocked {
		t.Error("enrolled student not blocked")
	}
	if other.Blocked {
		t.Error("unrelated student blocked")
	}
}
