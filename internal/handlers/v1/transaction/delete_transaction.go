package transaction

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/allowance-server/internal/handlers/v1/handlerutil"
)

type DeleteTransactionInput struct {
	TransactionID string `path:"transactionID" format:"uuid" doc:"Transaction UUID"`
}

type DeleteTransactionOutput struct {
	Body BalanceResponse
}

type transactionDeleter interface {
	DeleteTransaction(ctx context.Context, transactionID uuid.UUID) (decimal.Decimal, error)
}

// DeleteTransactionHandler handles DELETE /v1/transaction/{transactionID}.
type DeleteTransactionHandler struct {
	TransactionService transactionDeleter
}

func NewDeleteTransactionHandler(svc transactionDeleter) *DeleteTransactionHandler {
	return &DeleteTransactionHandler{TransactionService: svc}
}

func (h *DeleteTransactionHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "delete-transaction",
		Method:      http.MethodDelete,
		Path:        "/v1/transaction/{transactionID}",
		Summary:     "Reverse a transaction",
		Description: "Removes an entry from the ledger and takes its amount back out of the balance.",
		Tags:        []string{"Transactions"},
	}, h.handle)
}

func (h *DeleteTransactionHandler) handle(ctx context.Context, input *DeleteTransactionInput) (*DeleteTransactionOutput, error) {
	id, err := handlerutil.ParseID("transactionID", input.TransactionID)
	if err != nil {
		return nil, err
	}

	balance, err := h.TransactionService.DeleteTransaction(ctx, id)
	if err != nil {
		return nil, handlerutil.Error(err, "failed to delete transaction")
	}
	return &DeleteTransactionOutput{Body: BalanceResponse{NewBalance: balance.StringFixed(2)}}, nil
}
