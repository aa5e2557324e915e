package profile

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/allowance-server/internal/handlers/v1/handlerutil"
	"github.com/carson-networks/allowance-server/internal/service"
)

type CreateProfileBody struct {
	Name           string  `json:"name" minLength:"1" doc:"Display name"`
	ImageURL       *string `json:"imageUrl,omitempty" doc:"Avatar image URL"`
	OpeningBalance string  `json:"openingBalance,omitempty" doc:"Starting balance (e.g. '0' or '12.50'), recorded as the first ledger entry, defaults to 0"`
}

type CreateProfileInput struct {
	Body CreateProfileBody
}

type CreateProfileOutput struct {
	Status int
	Body   Profile
}

type profileCreator interface {
	CreateProfile(ctx context.Context, create service.ProfileCreate) (service.Profile, error)
}

// CreateProfileHandler handles POST /v1/profile.
type CreateProfileHandler struct {
	ProfileService profileCreator
}

func NewCreateProfileHandler(svc profileCreator) *CreateProfileHandler {
	return &CreateProfileHandler{ProfileService: svc}
}

func (h *CreateProfileHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "create-profile",
		Method:      http.MethodPost,
		Path:        "/v1/profile",
		Summary:     "Create a profile",
		Description: "Creates a profile. A non-zero opening balance is written to the ledger.",
		Tags:        []string{"Profiles"},
	}, h.handle)
}

func parseCreateProfileInput(input *CreateProfileInput) (service.ProfileCreate, error) {
	opening := decimal.Zero
	if input.Body.OpeningBalance != "" {
		var err error
		opening, err = service.ParseAmount("openingBalance", input.Body.OpeningBalance)
		if err != nil {
			return service.ProfileCreate{}, handlerutil.Error(err, "invalid openingBalance")
		}
	}

	return service.ProfileCreate{
		Name:           input.Body.Name,
		ImageURL:       input.Body.ImageURL,
		OpeningBalance: opening,
	}, nil
}

func (h *CreateProfileHandler) handle(ctx context.Context, input *CreateProfileInput) (*CreateProfileOutput, error) {
	create, err := parseCreateProfileInput(input)
	if err != nil {
		return nil, err
	}

	stopTimer := handlerutil.StartTimer(ctx, "createProfileMs")
	created, err := h.ProfileService.CreateProfile(ctx, create)
	stopTimer()
	if err != nil {
		return nil, handlerutil.Error(err, "failed to create profile")
	}

	handlerutil.AddData(ctx, "profileID", created.ID.String())

	return &CreateProfileOutput{
		Status: http.StatusCreated,
		Body:   toAPI(created),
	}, nil
}
