package schedule

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/allowance-server/internal/handlers/v1/handlerutil"
	"github.com/carson-networks/allowance-server/internal/service"
)

type ListSchedulesInput struct {
	ProfileID string `path:"profileID" format:"uuid" doc:"Profile UUID"`
}

type ListSchedulesResponseBody struct {
	Schedules []Schedule `json:"schedules" doc:"Schedules, soonest first"`
}

type ListSchedulesOutput struct {
	Body ListSchedulesResponseBody
}

type scheduleLister interface {
	ListSchedules(ctx context.Context, profileID uuid.UUID) ([]service.ScheduledTransaction, error)
}

// ListSchedulesHandler handles GET /v1/profile/{profileID}/schedule.
type ListSchedulesHandler struct {
	ScheduleService scheduleLister
}

func NewListSchedulesHandler(svc scheduleLister) *ListSchedulesHandler {
	return &ListSchedulesHandler{ScheduleService: svc}
}

func (h *ListSchedulesHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-schedules",
		Method:      http.MethodGet,
		Path:        "/v1/profile/{profileID}/schedule",
		Summary:     "List a profile's schedules",
		Tags:        []string{"Schedules"},
	}, h.handle)
}

func (h *ListSchedulesHandler) handle(ctx context.Context, input *ListSchedulesInput) (*ListSchedulesOutput, error) {
	profileID, err := handlerutil.ParseID("profileID", input.ProfileID)
	if err != nil {
		return nil, err
	}

	schedules, err := h.ScheduleService.ListSchedules(ctx, profileID)
	if err != nil {
		return nil, handlerutil.Error(err, "failed to list schedules")
	}

	resp := ListSchedulesResponseBody{Schedules: make([]Schedule, len(schedules))}
	for i, s := range schedules {
		resp.Schedules[i] = toAPI(s)
	}
	return &ListSchedulesOutput{Body: resp}, nil
}
