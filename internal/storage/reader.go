package storage

import (
	"github.com/stephenafamo/bob"

	"github.com/carson-networks/allowance-server/internal/storage/profile"
	"github.com/carson-networks/allowance-server/internal/storage/schedule"
	"github.com/carson-networks/allowance-server/internal/storage/transaction"
)

// Reader serves queries outside of any write transaction.
type Reader struct {
	Profiles     profile.IReader
	Transactions transaction.IReader
	Schedules    schedule.IReader
}

func NewReader(exec bob.Executor) *Reader {
	return &Reader{
		Profiles:     profile.NewReader(exec),
		Transactions: transaction.NewReader(exec),
		Schedules:    schedule.NewReader(exec),
	}
}
