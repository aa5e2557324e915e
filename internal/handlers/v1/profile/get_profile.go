package profile

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/allowance-server/internal/handlers/v1/handlerutil"
	"github.com/carson-networks/allowance-server/internal/service"
)

type GetProfileOutput struct {
	Body Profile
}

type profileGetter interface {
	GetProfile(ctx context.Context, id uuid.UUID) (service.Profile, error)
}

// GetProfileHandler handles GET /v1/profile/{profileID}.
type GetProfileHandler struct {
	ProfileService profileGetter
}

func NewGetProfileHandler(svc profileGetter) *GetProfileHandler {
	return &GetProfileHandler{ProfileService: svc}
}

func (h *GetProfileHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-profile",
		Method:      http.MethodGet,
		Path:        "/v1/profile/{profileID}",
		Summary:     "Get a profile",
		Tags:        []string{"Profiles"},
	}, h.handle)
}

func (h *GetProfileHandler) handle(ctx context.Context, input *ProfileIDInput) (*GetProfileOutput, error) {
	id, err := handlerutil.ParseID("profileID", input.ProfileID)
	if err != nil {
		return nil, err
	}

	p, err := h.ProfileService.GetProfile(ctx, id)
	if err != nil {
		return nil, handlerutil.Error(err, "failed to get profile")
	}
	return &GetProfileOutput{Body: toAPI(p)}, nil
}
