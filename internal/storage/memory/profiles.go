package memory

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/allowance-server/internal/storage/profile"
)

type profiles struct {
	src   source
	store *Store
}

func (p *profiles) FindByID(_ context.Context, id uuid.UUID) (*profile.Profile, error) {
	var out *profile.Profile
	err := p.src.view(func(st *state) error {
		row, ok := st.profiles[id]
		if !ok {
			return fmt.Errorf("profile.find: %w", sql.ErrNoRows)
		}
		out = &row
		return nil
	})
	return out, err
}

func (p *profiles) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*profile.Profile, error) {
	return p.FindByID(ctx, id)
}

func (p *profiles) List(_ context.Context) ([]*profile.Profile, error) {
	var out []*profile.Profile
	err := p.src.view(func(st *state) error {
		out = make([]*profile.Profile, 0, len(st.profiles))
		for _, row := range st.profiles {
			out = append(out, &row)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, err
}

func (p *profiles) Insert(_ context.Context, create *profile.ProfileCreate) (*profile.Profile, error) {
	id := create.ID
	if id == uuid.Nil {
		var err error
		if id, err = uuid.NewV4(); err != nil {
			return nil, err
		}
	}
	if err := p.store.check(OpProfileInsert, id); err != nil {
		return nil, fmt.Errorf("profile.Insert: %w", err)
	}

	var out *profile.Profile
	err := p.src.view(func(st *state) error {
		if _, exists := st.profiles[id]; exists {
			return fmt.Errorf("profile.Insert: duplicate id %s", id)
		}
		row := profile.Profile{
			ID:        id,
			Name:      create.Name,
			Balance:   decimal.Zero,
			ImageURL:  create.ImageURL,
			CreatedAt: p.store.clock(),
		}
		st.profiles[id] = row
		st.next(id)
		out = &row
		return nil
	})
	return out, err
}

func (p *profiles) Update(_ context.Context, id uuid.UUID, update *profile.ProfileUpdate) error {
	if err := p.store.check(OpProfileUpdate, id); err != nil {
		return fmt.Errorf("profile.Update: %w", err)
	}
	return p.src.view(func(st *state) error {
		row, ok := st.profiles[id]
		if !ok {
			return fmt.Errorf("profile.Update: %w", sql.ErrNoRows)
		}
		if update == nil {
			return nil
		}
		if name, ok := update.Name.Get(); ok {
			row.Name = name
		}
		if !update.ImageURL.IsUnset() {
			row.ImageURL = update.ImageURL.MustPtr()
		}
		st.profiles[id] = row
		return nil
	})
}

func (p *profiles) AdjustBalance(_ context.Context, id uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	if err := p.store.check(OpProfileAdjustBalance, id); err != nil {
		return decimal.Zero, fmt.Errorf("profile.AdjustBalance: %w", err)
	}
	var balance decimal.Decimal
	err := p.src.view(func(st *state) error {
		row, ok := st.profiles[id]
		if !ok {
			return fmt.Errorf("profile.AdjustBalance: %w", sql.ErrNoRows)
		}
		row.Balance = row.Balance.Add(delta)
		st.profiles[id] = row
		balance = row.Balance
		return nil
	})
	return balance, err
}

func (p *profiles) Delete(_ context.Context, id uuid.UUID) error {
	if err := p.store.check(OpProfileDelete, id); err != nil {
		return fmt.Errorf("profile.Delete: %w", err)
	}
	return p.src.view(func(st *state) error {
		if _, ok := st.profiles[id]; !ok {
			return fmt.Errorf("profile.Delete: %w", sql.ErrNoRows)
		}
		delete(st.profiles, id)
		delete(st.sequence, id)
		// Same effect as ON DELETE CASCADE on the Postgres schema.
		for txID, owner := range st.links {
			if owner == id {
				delete(st.links, txID)
			}
		}
		for txID, row := range st.transactions {
			if row.ProfileID == id {
				delete(st.transactions, txID)
				delete(st.sequence, txID)
			}
		}
		for scheduleID, row := range st.schedules {
			if row.ProfileID == id {
				delete(st.schedules, scheduleID)
				delete(st.sequence, scheduleID)
			}
		}
		return nil
	})
}
