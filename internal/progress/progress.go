// Package progress is plain CRUD over a learner's saved session.
package progress

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/abhisek/vault/internal/store"
	"github.com/abhisek/vault/internal/userlock"
)

var (
	// ErrNothingToUpdate is returned for a patch with no present field.
	ErrNothingToUpdate = errors.New("no fields to update")

	// ErrInvalidPatch is returned when a present field is out of range or
	// a non-nullable field is set to null.
	ErrInvalidPatch = errors.New("invalid progress update")
)

// patchRules mirrors ProgressPatch for range checks. Nil means absent or
// cleared.
type patchRules struct {
	Topic              *string `validate:"omitempty,max=200"`
	CurrentLevel       *int    `validate:"omitempty,min=1,max=5"`
	DiagnosticAttempts *int    `validate:"omitempty,min=0,max=3"`
	HintStage          *int    `validate:"omitempty,min=0,max=2"`
}

// Service reads and writes progress rows.
type Service struct {
	repo     store.ProgressRepo
	locks    *userlock.Locker
	validate *validator.Validate
}

// NewService creates a Service. locks must be shared with every other
// component that mutates progress.
func NewService(repo store.ProgressRepo, locks *userlock.Locker) *Service {
	return &Service{repo: repo, locks: locks, validate: validator.New()}
}

// Get returns the user's progress. A user with no row gets an empty
// Progress rather than an error.
func (s *Service) Get(ctx context.Context, userID string) (*store.Progress, error) {
	p, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return &store.Progress{UserID: userID}, nil
	}
	return p, nil
}

// Update writes the present fields of patch and returns the stored row.
func (s *Service) Update(ctx context.Context, userID string, patch store.ProgressPatch) (*store.Progress, error) {
	if patch.Empty() {
		return nil, ErrNothingToUpdate
	}
	if err := s.check(patch); err != nil {
		return nil, err
	}

	var out *store.Progress
	err := s.locks.Do(ctx, userID, func() error {
		var err error
		out, err = s.repo.Upsert(ctx, userID, patch)
		return err
	})
	return out, err
}

// Reset deletes the user's progress row.
func (s *Service) Reset(ctx context.Context, userID string) error {
	return s.locks.Do(ctx, userID, func() error {
		return s.repo.Delete(ctx, userID)
	})
}

func (s *Service) check(patch store.ProgressPatch) error {
	var nulls []string
	if patch.DiagnosticAttempts.Null {
		nulls = append(nulls, "diagnostic_attempts")
	}
	if patch.DiagnosticPassed.Null {
		nulls = append(nulls, "diagnostic_passed")
	}
	if patch.HintStage.Null {
		nulls = append(nulls, "hint_stage")
	}
	if len(nulls) > 0 {
		return fmt.Errorf("%w: %s cannot be null", ErrInvalidPatch, strings.Join(nulls, ", "))
	}

	rules := patchRules{
		Topic:              present(patch.Topic),
		CurrentLevel:       present(patch.CurrentLevel),
		DiagnosticAttempts: present(patch.DiagnosticAttempts),
		HintStage:          present(patch.HintStage),
	}
	if err := s.validate.Struct(rules); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidPatch, strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

func present[T any](o store.Opt[T]) *T {
	if !o.Set || o.Null {
		return nil
	}
	v := o.Value
	return &v
}
