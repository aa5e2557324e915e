package transaction

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/allowance-server/internal/handlers/v1/handlerutil"
	"github.com/carson-networks/allowance-server/internal/service"
)

type ListTransactionsInput struct {
	ProfileID string `path:"profileID" format:"uuid" doc:"Profile UUID"`
	Query     string `query:"q" doc:"Keep entries whose note contains q or whose amount equals q"`
}

// ListTransactionsResponseBody is the response body for a profile's history.
type ListTransactionsResponseBody struct {
	Transactions []Transaction `json:"transactions" doc:"Entries, newest first"`
}

type ListTransactionsOutput struct {
	Body ListTransactionsResponseBody
}

// historyLister is the interface for reading a profile's ledger.
type historyLister interface {
	ListHistory(ctx context.Context, profileID uuid.UUID) ([]service.Transaction, error)
}

// ListTransactionsHandler handles GET /v1/profile/{profileID}/transaction.
type ListTransactionsHandler struct {
	TransactionService historyLister
}

func NewListTransactionsHandler(svc historyLister) *ListTransactionsHandler {
	return &ListTransactionsHandler{TransactionService: svc}
}

func (h *ListTransactionsHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-transactions",
		Method:      http.MethodGet,
		Path:        "/v1/profile/{profileID}/transaction",
		Summary:     "List transactions",
		Description: "Returns a profile's ledger, newest first, optionally filtered by q.",
		Tags:        []string{"Transactions"},
	}, h.handle)
}

func (h *ListTransactionsHandler) handle(ctx context.Context, input *ListTransactionsInput) (*ListTransactionsOutput, error) {
	profileID, err := handlerutil.ParseID("profileID", input.ProfileID)
	if err != nil {
		return nil, err
	}

	stopTimer := handlerutil.StartTimer(ctx, "listTransactionsMs")
	history, err := h.TransactionService.ListHistory(ctx, profileID)
	stopTimer()
	if err != nil {
		return nil, handlerutil.Error(err, "failed to list transactions")
	}

	history = service.FilterHistory(history, input.Query)
	handlerutil.AddData(ctx, "transactionCount", len(history))

	resp := ListTransactionsResponseBody{
		Transactions: make([]Transaction, len(history)),
	}
	for i, tx := range history {
		resp.Transactions[i] = toAPI(tx)
	}
	return &ListTransactionsOutput{Body: resp}, nil
}
