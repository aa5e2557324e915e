package profile

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/allowance-server/internal/handlers/v1/handlerutil"
)

type DeleteProfileOutput struct {
	Status int
}

type profileDeleter interface {
	DeleteProfile(ctx context.Context, id uuid.UUID) error
}

// DeleteProfileHandler handles DELETE /v1/profile/{profileID}. The
// profile's schedules and ledger go with it.
type DeleteProfileHandler struct {
	ProfileService profileDeleter
}

func NewDeleteProfileHandler(svc profileDeleter) *DeleteProfileHandler {
	return &DeleteProfileHandler{ProfileService: svc}
}

func (h *DeleteProfileHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "delete-profile",
		Method:        http.MethodDelete,
		Path:          "/v1/profile/{profileID}",
		Summary:       "Delete a profile",
		Tags:          []string{"Profiles"},
		DefaultStatus: http.StatusNoContent,
	}, h.handle)
}

func (h *DeleteProfileHandler) handle(ctx context.Context, input *ProfileIDInput) (*DeleteProfileOutput, error) {
	id, err := handlerutil.ParseID("profileID", input.ProfileID)
	if err != nil {
		return nil, err
	}

	if err := h.ProfileService.DeleteProfile(ctx, id); err != nil {
		return nil, handlerutil.Error(err, "failed to delete profile")
	}
	return &DeleteProfileOutput{Status: http.StatusNoContent}, nil
}
