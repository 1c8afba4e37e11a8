package database

import (
	"context"
	"errors"
	"fmt"
	"log"

	"school_admin/internal/common"
	"school_admin/internal/common/security"
	"school_admin/internal/domain/model"
	"school_admin/internal/domain/repository"
	"school_admin/internal/platform/config"

	"github.com/google/uuid"
)

// The fixed class ladder for the school. Seeded once on first boot.
var defaultClasses = []struct {
	Name  string
	Level int
}{
	{"Primary 1", 1}, {"Primary 2", 2}, {"Primary 3", 3},
	{"Primary 4", 4}, {"Primary 5", 5}, {"Primary 6", 6},
	{"JSS 1", 7}, {"JSS 2", 8}, {"JSS 3", 9},
	{"SSS 1", 10}, {"SSS 2", 11}, {"SSS 3", 12},
}

// Seed populates the database with the baseline records the system needs
// to operate: the class ladder, an initial current term, and a principal
// account. Each step is idempotent, so running it on every boot is safe.
func Seed(
	ctx context.Context,
	classRepo repository.ClassRepository,
	termRepo repository.TermRepository,
	userRepo repository.UserRepository,
) error {
	if err := seedClassLadder(ctx, classRepo); err != nil {
		return fmt.Errorf("database.Seed: %w", err)
	}
	if err := seedInitialTerm(ctx, termRepo); err != nil {
		return fmt.Errorf("database.Seed: %w", err)
	}
	if err := seedPrincipal(ctx, userRepo); err != nil {
		return fmt.Errorf("database.Seed: %w", err)
	}
	return nil
}

func seedClassLadder(ctx context.Context, classRepo repository.ClassRepository) error {
	count, err := classRepo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	for _, c := range defaultClasses {
		class := &model.Class{
			ID:    uuid.NewString(),
			Name:  c.Name,
			Level: c.Level,
		}
		if err := classRepo.Create(ctx, class); err != nil {
			return err
		}
	}
	log.Printf("Seeded %d classes", len(defaultClasses))
	return nil
}

func seedInitialTerm(ctx context.Context, termRepo repository.TermRepository) error {
	count, err := termRepo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	startYear := config.AppConfig.SeedTermStartYear
	term := &model.Term{
		ID:        uuid.NewString(),
		StartYear: startYear,
		EndYear:   startYear + 1,
		Term:      1,
		Current:   true,
	}
	if err := termRepo.Create(ctx, term); err != nil {
		return err
	}
	log.Printf("Seeded initial term %d/%d term %d", term.StartYear, term.EndYear, term.Term)
	return nil
}

func seedPrincipal(ctx context.Context, userRepo repository.UserRepository) error {
	_, err := userRepo.FindByEmail(ctx, config.AppConfig.SeedPrincipalEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return err
	}

	hashed, err := security.HashPassword(config.AppConfig.SeedPrincipalPassword)
	if err != nil {
		return err
	}
	principal := &model.User{
		ID:             uuid.NewString(),
		Name:           config.AppConfig.SeedPrincipalName,
		Email:          config.AppConfig.SeedPrincipalEmail,
		HashedPassword: hashed,
		Role:           model.RolePrincipal,
	}
	if err := userRepo.Create(ctx, nil, principal); err != nil {
		return err
	}
	log.Printf("Seeded principal account %s", principal.Email)
	return nil
}
