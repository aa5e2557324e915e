package profile

import (
	"context"
	"net/http"

	"github.com/aarondl/opt/omit"
	"github.com/aarondl/opt/omitnull"
	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/allowance-server/internal/handlers/v1/handlerutil"
	"github.com/carson-networks/allowance-server/internal/service"
)

// UpdateProfileBody carries only the fields to change.
type UpdateProfileBody struct {
	Name       *string `json:"name,omitempty" minLength:"1" doc:"New display name"`
	ImageURL   *string `json:"imageUrl,omitempty" doc:"New avatar image URL"`
	ClearImage bool    `json:"clearImage,omitempty" doc:"Remove the avatar image"`
	Balance    *string `json:"balance,omitempty" doc:"Target balance, reached by recording a correction entry"`
}

type UpdateProfileInput struct {
	ProfileID string `path:"profileID" format:"uuid" doc:"Profile UUID"`
	Body      UpdateProfileBody
}

type UpdateProfileOutput struct {
	Body Profile
}

type profileUpdater interface {
	UpdateProfile(ctx context.Context, id uuid.UUID, update service.ProfileUpdate) (service.Profile, error)
}

// UpdateProfileHandler handles PATCH /v1/profile/{profileID}.
type UpdateProfileHandler struct {
	ProfileService profileUpdater
}

func NewUpdateProfileHandler(svc profileUpdater) *UpdateProfileHandler {
	return &UpdateProfileHandler{ProfileService: svc}
}

func (h *UpdateProfileHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "update-profile",
		Method:      http.MethodPatch,
		Path:        "/v1/profile/{profileID}",
		Summary:     "Update a profile",
		Description: "Changes name, image or balance. A balance change is recorded as a correction in the ledger.",
		Tags:        []string{"Profiles"},
	}, h.handle)
}

func parseUpdateProfileInput(input *UpdateProfileInput) (uuid.UUID, service.ProfileUpdate, error) {
	id, err := handlerutil.ParseID("profileID", input.ProfileID)
	if err != nil {
		return uuid.Nil, service.ProfileUpdate{}, err
	}

	var update service.ProfileUpdate
	if input.Body.Name != nil {
		update.Name = omit.From(*input.Body.Name)
	}

	switch {
	case input.Body.ClearImage && input.Body.ImageURL != nil:
		return uuid.Nil, service.ProfileUpdate{}, huma.NewError(http.StatusBadRequest, "imageUrl and clearImage are mutually exclusive")
	case input.Body.ClearImage:
		update.ImageURL = omitnull.FromPtr[string](nil)
	case input.Body.ImageURL != nil:
		update.ImageURL = omitnull.From(*input.Body.ImageURL)
	}

	if input.Body.Balance != nil {
		var balance decimal.Decimal
		balance, err = service.ParseAmount("balance", *input.Body.Balance)
		if err != nil {
			return uuid.Nil, service.ProfileUpdate{}, handlerutil.Error(err, "invalid balance")
		}
		update.Balance = omit.From(balance)
	}

	return id, update, nil
}

func (h *UpdateProfileHandler) handle(ctx context.Context, input *UpdateProfileInput) (*UpdateProfileOutput, error) {
	id, update, err := parseUpdateProfileInput(input)
	if err != nil {
		return nil, err
	}

	stopTimer := handlerutil.StartTimer(ctx, "updateProfileMs")
	updated, err := h.ProfileService.UpdateProfile(ctx, id, update)
	stopTimer()
	if err != nil {
		return nil, handlerutil.Error(err, "failed to update profile")
	}
	return &UpdateProfileOutput{Body: toAPI(updated)}, nil
}
