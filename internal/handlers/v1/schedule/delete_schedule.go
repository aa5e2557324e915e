package schedule

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/allowance-server/internal/handlers/v1/handlerutil"
)

type DeleteScheduleInput struct {
	ScheduleID string `path:"scheduleID" format:"uuid" doc:"Schedule UUID"`
}

type DeleteScheduleOutput struct {
	Status int
}

type scheduleDeleter interface {
	DeleteSchedule(ctx context.Context, id uuid.UUID) error
}

// DeleteScheduleHandler handles DELETE /v1/schedule/{scheduleID}.
type DeleteScheduleHandler struct {
	ScheduleService scheduleDeleter
}

func NewDeleteScheduleHandler(svc scheduleDeleter) *DeleteScheduleHandler {
	return &DeleteScheduleHandler{ScheduleService: svc}
}

func (h *DeleteScheduleHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "delete-schedule",
		Method:        http.MethodDelete,
		Path:          "/v1/schedule/{scheduleID}",
		Summary:       "Delete a schedule",
		Tags:          []string{"Schedules"},
		DefaultStatus: http.StatusNoContent,
	}, h.handle)
}

func (h *DeleteScheduleHandler) handle(ctx context.Context, input *DeleteScheduleInput) (*DeleteScheduleOutput, error) {
	id, err := handlerutil.ParseID("scheduleID", input.ScheduleID)
	if err != nil {
		return nil, err
	}

	if err := h.ScheduleService.DeleteSchedule(ctx, id); err != nil {
		return nil, handlerutil.Error(err, "failed to delete schedule")
	}
	return &DeleteScheduleOutput{Status: http.StatusNoContent}, nil
}
