package memory

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/allowance-server/internal/storage/transaction"
)

type transactions struct {
	src   source
	store *Store
}

func (t *transactions) FindByID(_ context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	var out *transaction.Transaction
	err := t.src.view(func(st *state) error {
		row, ok := st.transactions[id]
		if !ok {
			return fmt.Errorf("transaction.find: %w", sql.ErrNoRows)
		}
		out = &row
		return nil
	})
	return out, err
}

func (t *transactions) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	return t.FindByID(ctx, id)
}

func (t *transactions) ListByProfile(_ context.Context, profileID uuid.UUID) ([]*transaction.Transaction, error) {
	var out []*transaction.Transaction
	err := t.src.view(func(st *state) error {
		for txID, owner := range st.links {
			if owner != profileID {
				continue
			}
			row, ok := st.transactions[txID]
			if !ok {
				continue
			}
			out = append(out, &row)
		}
		sort.Slice(out, func(i, j int) bool {
			if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
				return out[i].CreatedAt.After(out[j].CreatedAt)
			}
			return st.sequence[out[i].ID] > st.sequence[out[j].ID]
		})
		return nil
	})
	return out, err
}

func (t *transactions) SumByProfile(_ context.Context, profileID uuid.UUID) (transaction.LedgerTotal, error) {
	total := transaction.LedgerTotal{Sum: decimal.Zero}
	err := t.src.view(func(st *state) error {
		for txID, owner := range st.links {
			if owner != profileID {
				continue
			}
			if row, ok := st.transactions[txID]; ok {
				total.Sum = total.Sum.Add(row.Adjustment)
				total.Entries++
			}
		}
		return nil
	})
	return total, err
}

func (t *transactions) Insert(_ context.Context, create *transaction.TransactionCreate) (*transaction.Transaction, error) {
	if err := t.store.check(OpTransactionInsert, create.ProfileID); err != nil {
		return nil, fmt.Errorf("transaction.Insert: %w", err)
	}
	id := create.ID
	if id == uuid.Nil {
		var err error
		if id, err = uuid.NewV4(); err != nil {
			return nil, err
		}
	}

	var out *transaction.Transaction
	err := t.src.view(func(st *state) error {
		if _, ok := st.profiles[create.ProfileID]; !ok {
			return fmt.Errorf("transaction.Insert: %w", ErrForeignKey)
		}
		row := transaction.Transaction{
			ID:         id,
			ProfileID:  create.ProfileID,
			Adjustment: create.Adjustment,
			Note:       create.Note,
			CreatedAt:  t.store.clock(),
		}
		st.transactions[id] = row
		st.links[id] = create.ProfileID
		st.next(id)
		out = &row
		return nil
	})
	return out, err
}

func (t *transactions) Update(_ context.Context, id uuid.UUID, update *transaction.TransactionUpdate) error {
	if err := t.store.check(OpTransactionUpdate, id); err != nil {
		return fmt.Errorf("transaction.Update: %w", err)
	}
	return t.src.view(func(st *state) error {
		row, ok := st.transactions[id]
		if !ok {
			return fmt.Errorf("transaction.Update: %w", sql.ErrNoRows)
		}
		if note, ok := update.Note.Get(); ok {
			row.Note = note
		}
		if adjustment, ok := update.Adjustment.Get(); ok {
			row.Adjustment = adjustment
		}
		st.transactions[id] = row
		return nil
	})
}

func (t *transactions) Delete(_ context.Context, id uuid.UUID) error {
	if err := t.store.check(OpTransactionDelete, id); err != nil {
		return fmt.Errorf("transaction.Delete: %w", err)
	}
	return t.src.view(func(st *state) error {
		if _, ok := st.transactions[id]; !ok {
			return fmt.Errorf("transaction.Delete: %w", sql.ErrNoRows)
		}
		delete(st.links, id)
		delete(st.transactions, id)
		delete(st.sequence, id)
		return nil
	})
}

func (t *transactions) DeleteByProfile(_ context.Context, profileID uuid.UUID) (int64, error) {
	if err := t.store.check(OpTransactionDelete, profileID); err != nil {
		return 0, fmt.Errorf("transaction.DeleteByProfile: %w", err)
	}
	var deleted int64
	err := t.src.view(func(st *state) error {
		for txID, owner := range st.links {
			if owner == profileID {
				delete(st.links, txID)
			}
		}
		for txID, row := range st.transactions {
			if row.ProfileID == profileID {
				delete(st.transactions, txID)
				delete(st.sequence, txID)
				deleted++
			}
		}
		return nil
	})
	return deleted, err
}

// Links returns the number of join rows currently committed. Tests use it
// to check that no join row outlives its transaction.
func (s *Store) Links() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.state.links)
}
