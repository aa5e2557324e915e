package schedule

import (
	"context"
	"net/http"

	"github.com/aarondl/opt/omit"
	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/allowance-server/internal/handlers/v1/handlerutil"
	"github.com/carson-networks/allowance-server/internal/recurrence"
	"github.com/carson-networks/allowance-server/internal/service"
)

// UpdateScheduleBody carries only the fields to change. Adjustment is
// signed here, like the stored value.
type UpdateScheduleBody struct {
	Note       *string `json:"note,omitempty" doc:"New note"`
	Adjustment *string `json:"adjustment,omitempty" doc:"New signed decimal adjustment, non-zero"`
	StartDate  *string `json:"startDate,omitempty" format:"date" doc:"New next occurrence (YYYY-MM-DD)"`
	Frequency  *string `json:"frequency,omitempty" enum:"once,daily,weekly,monthly" doc:"New frequency"`
}

type UpdateScheduleInput struct {
	ScheduleID string `path:"scheduleID" format:"uuid" doc:"Schedule UUID"`
	Body       UpdateScheduleBody
}

type UpdateScheduleOutput struct {
	Body Schedule
}

type scheduleUpdater interface {
	UpdateSchedule(ctx context.Context, id uuid.UUID, update service.ScheduleUpdate) (service.ScheduledTransaction, error)
}

// UpdateScheduleHandler handles PATCH /v1/schedule/{scheduleID}.
type UpdateScheduleHandler struct {
	ScheduleService scheduleUpdater
}

func NewUpdateScheduleHandler(svc scheduleUpdater) *UpdateScheduleHandler {
	return &UpdateScheduleHandler{ScheduleService: svc}
}

func (h *UpdateScheduleHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "update-schedule",
		Method:      http.MethodPatch,
		Path:        "/v1/schedule/{scheduleID}",
		Summary:     "Update a schedule",
		Tags:        []string{"Schedules"},
	}, h.handle)
}

func parseUpdateScheduleInput(input *UpdateScheduleInput) (uuid.UUID, service.ScheduleUpdate, error) {
	id, err := handlerutil.ParseID("scheduleID", input.ScheduleID)
	if err != nil {
		return uuid.Nil, service.ScheduleUpdate{}, err
	}

	var update service.ScheduleUpdate
	body := input.Body
	if body.Note != nil {
		update.Note = omit.From(*body.Note)
	}
	if body.Adjustment != nil {
		adjustment, err := service.ParseAmount("adjustment", *body.Adjustment)
		if err != nil {
			return uuid.Nil, service.ScheduleUpdate{}, handlerutil.Error(err, "invalid adjustment")
		}
		update.Adjustment = omit.From(adjustment)
	}
	if body.StartDate != nil {
		startDate, err := parseDate("startDate", *body.StartDate)
		if err != nil {
			return uuid.Nil, service.ScheduleUpdate{}, handlerutil.Error(err, "invalid startDate")
		}
		update.StartDate = omit.From(startDate)
	}
	if body.Frequency != nil {
		frequency, err := recurrence.ParseFrequency(*body.Frequency)
		if err != nil {
			return uuid.Nil, service.ScheduleUpdate{}, huma.NewError(http.StatusBadRequest, "invalid frequency", err)
		}
		update.Frequency = omit.From(frequency)
	}

	return id, update, nil
}

func (h *UpdateScheduleHandler) handle(ctx context.Context, input *UpdateScheduleInput) (*UpdateScheduleOutput, error) {
	id, update, err := parseUpdateScheduleInput(input)
	if err != nil {
		return nil, err
	}

	updated, err := h.ScheduleService.UpdateSchedule(ctx, id, update)
	if err != nil {
		return nil, handlerutil.Error(err, "failed to update schedule")
	}
	return &UpdateScheduleOutput{Body: toAPI(updated)}, nil
}
