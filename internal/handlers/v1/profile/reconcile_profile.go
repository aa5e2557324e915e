package profile

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/allowance-server/internal/handlers/v1/handlerutil"
	"github.com/carson-networks/allowance-server/internal/service"
)

type ReconcileResponse struct {
	ProfileID  string `json:"profileId" doc:"Profile UUID"`
	Cached     string `json:"cached" doc:"Balance stored on the profile"`
	Ledger     string `json:"ledger" doc:"Sum of the profile's ledger entries"`
	Drift      string `json:"drift" doc:"cached minus ledger"`
	Entries    int64  `json:"entries" doc:"Number of ledger entries"`
	Consistent bool   `json:"consistent" doc:"Whether cached and ledger agree"`
}

type ReconcileOutput struct {
	Body ReconcileResponse
}

type reconciler interface {
	Reconcile(ctx context.Context, profileID uuid.UUID) (service.ReconcileReport, error)
}

// ReconcileHandler handles GET /v1/profile/{profileID}/reconcile.
type ReconcileHandler struct {
	LedgerService reconciler
}

func NewReconcileHandler(svc reconciler) *ReconcileHandler {
	return &ReconcileHandler{LedgerService: svc}
}

func (h *ReconcileHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "reconcile-profile",
		Method:      http.MethodGet,
		Path:        "/v1/profile/{profileID}/reconcile",
		Summary:     "Reconcile a profile",
		Description: "Compares the cached balance with the ledger total. Drift is reported, never repaired.",
		Tags:        []string{"Profiles"},
	}, h.handle)
}

func (h *ReconcileHandler) handle(ctx context.Context, input *ProfileIDInput) (*ReconcileOutput, error) {
	id, err := handlerutil.ParseID("profileID", input.ProfileID)
	if err != nil {
		return nil, err
	}

	report, err := h.LedgerService.Reconcile(ctx, id)
	if err != nil {
		return nil, handlerutil.Error(err, "failed to reconcile profile")
	}

	handlerutil.AddData(ctx, "consistent", report.Consistent())

	return &ReconcileOutput{Body: ReconcileResponse{
		ProfileID:  report.ProfileID.String(),
		Cached:     report.Cached.StringFixed(2),
		Ledger:     report.Ledger.StringFixed(2),
		Drift:      report.Drift.StringFixed(2),
		Entries:    report.Entries,
		Consistent: report.Consistent(),
	}}, nil
}
