package profile

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/allowance-server/internal/handlers/v1/handlerutil"
	"github.com/carson-networks/allowance-server/internal/service"
)

type ListProfilesResponseBody struct {
	Profiles []Profile `json:"profiles" doc:"All profiles, ordered by name"`
}

type ListProfilesOutput struct {
	Body ListProfilesResponseBody
}

type profileLister interface {
	ListProfiles(ctx context.Context) ([]service.Profile, error)
}

// ListProfilesHandler handles GET /v1/profile.
type ListProfilesHandler struct {
	ProfileService profileLister
}

func NewListProfilesHandler(svc profileLister) *ListProfilesHandler {
	return &ListProfilesHandler{ProfileService: svc}
}

func (h *ListProfilesHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-profiles",
		Method:      http.MethodGet,
		Path:        "/v1/profile",
		Summary:     "List profiles",
		Tags:        []string{"Profiles"},
	}, h.handle)
}

func (h *ListProfilesHandler) handle(ctx context.Context, _ *struct{}) (*ListProfilesOutput, error) {
	stopTimer := handlerutil.StartTimer(ctx, "listProfilesMs")
	profiles, err := h.ProfileService.ListProfiles(ctx)
	stopTimer()
	if err != nil {
		return nil, handlerutil.Error(err, "failed to list profiles")
	}

	handlerutil.AddData(ctx, "profileCount", len(profiles))

	resp := ListProfilesResponseBody{Profiles: make([]Profile, len(profiles))}
	for i, p := range profiles {
		resp.Profiles[i] = toAPI(p)
	}
	return &ListProfilesOutput{Body: resp}, nil
}
