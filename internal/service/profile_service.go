package service

import (
	"context"
	"strings"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/allowance-server/internal/events"
	"github.com/carson-networks/allowance-server/internal/operator/actions"
	"github.com/carson-networks/allowance-server/internal/storage/profile"
)

// ProfileService handles profile business logic.
type ProfileService struct {
	*core
}

func (s *ProfileService) CreateProfile(ctx context.Context, create ProfileCreate) (Profile, error) {
	name := strings.TrimSpace(create.Name)
	if name == "" {
		return Profile{}, validationError("name", "is required")
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	action := &actions.CreateProfile{
		Name:           name,
		ImageURL:       create.ImageURL,
		OpeningBalance: create.OpeningBalance,
	}
	if err := s.process(ctx, "CreateProfile", action); err != nil {
		return Profile{}, err
	}
	return toProfile(action.Profile), nil
}

func (s *ProfileService) GetProfile(ctx context.Context, id uuid.UUID) (Profile, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	row, err := s.storage.Profiles.FindByID(ctx, id)
	if err != nil {
		return Profile{}, readErr("GetProfile", "profile", id, err)
	}
	return toProfile(row), nil
}

// ListProfiles returns every profile ordered by name.
func (s *ProfileService) ListProfiles(ctx context.Context) ([]Profile, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.storage.Profiles.List(ctx)
	if err != nil {
		return nil, translate("ListProfiles", err)
	}

	profiles := make([]Profile, len(rows))
	for i, row := range rows {
		profiles[i] = toProfile(row)
	}
	return profiles, nil
}

func (s *ProfileService) UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) (Profile, error) {
	patch := profile.ProfileUpdate{ImageURL: update.ImageURL}
	if name, ok := update.Name.Get(); ok {
		name = strings.TrimSpace(name)
		if name == "" {
			return Profile{}, validationError("name", "must not be empty")
		}
		patch.Name.Set(name)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	action := &actions.UpdateProfile{
		ProfileID: id,
		Update:    patch,
		Balance:   update.Balance,
	}
	if err := s.process(ctx, "UpdateProfile", action); err != nil {
		return Profile{}, err
	}

	if !action.Correction.IsZero() {
		s.log.WithField("profileID", id).
			WithField("correction", action.Correction.String()).
			Info("ProfileService.UpdateProfile.BalanceCorrected")
		s.publish(ctx, events.New(events.TransactionApplied, id).
			WithTransaction(action.Entry.ID, action.Correction).
			WithBalance(action.Profile.Balance))
	}
	return toProfile(action.Profile), nil
}

// DeleteProfile removes a profile and everything that belongs to it.
func (s *ProfileService) DeleteProfile(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	action := &actions.DeleteProfile{ProfileID: id}
	if err := s.process(ctx, "DeleteProfile", action); err != nil {
		return err
	}

	s.log.WithField("profileID", id).
		WithField("transactions", action.DeletedTransactions).
		WithField("schedules", action.DeletedSchedules).
		Info("ProfileService.DeleteProfile.Complete")
	s.publish(ctx, events.New(events.ProfileDeleted, id))
	return nil
}
