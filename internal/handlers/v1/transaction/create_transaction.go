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

// CreateTransactionBody is the request body for applying a transaction.
type CreateTransactionBody struct {
	Direction string `json:"direction" enum:"add,withdraw" doc:"add credits the profile, withdraw debits it"`
	Amount    string `json:"amount" required:"true" doc:"Positive decimal amount"`
	Note      string `json:"note,omitempty" doc:"Free-text note"`
}

type CreateTransactionInput struct {
	ProfileID string `path:"profileID" format:"uuid" doc:"Profile UUID"`
	Body      CreateTransactionBody
}

type CreateTransactionResponse struct {
	Transaction Transaction `json:"transaction" doc:"The recorded entry"`
	NewBalance  string      `json:"newBalance" doc:"Balance after the entry"`
}

type CreateTransactionOutput struct {
	Status int
	Body   CreateTransactionResponse
}

// transactionApplier is the interface for applying transactions.
type transactionApplier interface {
	ApplyTransaction(ctx context.Context, profileID uuid.UUID, direction service.Direction, amount decimal.Decimal, note string) (service.TransactionResult, error)
}

// CreateTransactionHandler handles POST /v1/profile/{profileID}/transaction.
type CreateTransactionHandler struct {
	TransactionService transactionApplier
}

func NewCreateTransactionHandler(svc transactionApplier) *CreateTransactionHandler {
	return &CreateTransactionHandler{TransactionService: svc}
}

func (h *CreateTransactionHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "create-transaction",
		Method:      http.MethodPost,
		Path:        "/v1/profile/{profileID}/transaction",
		Summary:     "Apply a transaction",
		Description: "Records an entry in the profile's ledger and moves its balance.",
		Tags:        []string{"Transactions"},
	}, h.handle)
}

func parseCreateTransactionInput(input *CreateTransactionInput) (profileID uuid.UUID, direction service.Direction, amount decimal.Decimal, err error) {
	profileID, err = handlerutil.ParseID("profileID", input.ProfileID)
	if err != nil {
		return uuid.Nil, "", decimal.Zero, err
	}

	direction, err = service.ParseDirection(input.Body.Direction)
	if err != nil {
		return uuid.Nil, "", decimal.Zero, handlerutil.Error(err, "invalid direction")
	}

	amount, err = service.ParseAmount("amount", input.Body.Amount)
	if err != nil {
		return uuid.Nil, "", decimal.Zero, handlerutil.Error(err, "invalid amount")
	}

	return profileID, direction, amount, nil
}

func (h *CreateTransactionHandler) handle(ctx context.Context, input *CreateTransactionInput) (*CreateTransactionOutput, error) {
	profileID, direction, amount, err := parseCreateTransactionInput(input)
	if err != nil {
		return nil, err
	}

	stopTimer := handlerutil.StartTimer(ctx, "applyTransactionMs")
	result, err := h.TransactionService.ApplyTransaction(ctx, profileID, direction, amount, input.Body.Note)
	stopTimer()
	if err != nil {
		return nil, handlerutil.Error(err, "failed to apply transaction")
	}

	handlerutil.AddData(ctx, "transactionID", result.Transaction.ID.String())

	return &CreateTransactionOutput{
		Status: http.StatusCreated,
		Body: CreateTransactionResponse{
			Transaction: toAPI(result.Transaction),
			NewBalance:  result.NewBalance.StringFixed(2),
		},
	}, nil
}
