package transaction

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/allowance-server/internal/handlers/v1/handlerutil"
	"github.com/carson-networks/allowance-server/internal/service"
)

// AmendTransactionBody replaces both fields of an entry.
type AmendTransactionBody struct {
	Note   string `json:"note" doc:"New note"`
	Amount string `json:"amount" required:"true" doc:"New signed decimal adjustment, non-zero"`
}

type AmendTransactionInput struct {
	TransactionID string `path:"transactionID" format:"uuid" doc:"Transaction UUID"`
	Body          AmendTransactionBody
}

type AmendTransactionOutput struct {
	Body BalanceResponse
}

type transactionAmender interface {
	AmendTransaction(ctx context.Context, transactionID uuid.UUID, note string, amount decimal.Decimal) (decimal.Decimal, error)
}

// AmendTransactionHandler handles PATCH /v1/transaction/{transactionID}.
type AmendTransactionHandler struct {
	TransactionService transactionAmender
}

func NewAmendTransactionHandler(svc transactionAmender) *AmendTransactionHandler {
	return &AmendTransactionHandler{TransactionService: svc}
}

func (h *AmendTransactionHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "amend-transaction",
		Method:      http.MethodPatch,
		Path:        "/v1/transaction/{transactionID}",
		Summary:     "Amend a transaction",
		Description: "Rewrites an entry. The balance moves by the difference to the old amount.",
		Tags:        []string{"Transactions"},
	}, h.handle)
}

func (h *AmendTransactionHandler) handle(ctx context.Context, input *AmendTransactionInput) (*AmendTransactionOutput, error) {
	id, err := handlerutil.ParseID("transactionID", input.TransactionID)
	if err != nil {
		return nil, err
	}
	amount, err := service.ParseAmount("amount", input.Body.Amount)
	if err != nil {
		return nil, handlerutil.Error(err, "invalid amount")
	}

	stopTimer := handlerutil.StartTimer(ctx, "amendTransactionMs")
	balance, err := h.TransactionService.AmendTransaction(ctx, id, input.Body.Note, amount)
	stopTimer()
	if err != nil {
		return nil, handlerutil.Error(err, "failed to amend transaction")
	}
	return &AmendTransactionOutput{Body: BalanceResponse{NewBalance: balance.StringFixed(2)}}, nil
}
