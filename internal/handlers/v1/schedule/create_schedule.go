package schedule

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/allowance-server/internal/handlers/v1/handlerutil"
	"github.com/carson-networks/allowance-server/internal/recurrence"
	"github.com/carson-networks/allowance-server/internal/service"
)

type CreateScheduleBody struct {
	Direction string `json:"direction" enum:"add,withdraw" doc:"add credits the profile, withdraw debits it"`
	Amount    string `json:"amount" required:"true" doc:"Positive decimal amount"`
	Note      string `json:"note,omitempty" doc:"Note copied onto every entry"`
	StartDate string `json:"startDate" format:"date" doc:"First occurrence (YYYY-MM-DD)"`
	Frequency string `json:"frequency" enum:"once,daily,weekly,monthly" doc:"How often the entry repeats"`
}

type CreateScheduleInput struct {
	ProfileID string `path:"profileID" format:"uuid" doc:"Profile UUID"`
	Body      CreateScheduleBody
}

type CreateScheduleOutput struct {
	Status int
	Body   Schedule
}

type scheduleCreator interface {
	CreateSchedule(ctx context.Context, create service.ScheduleCreate) (service.ScheduledTransaction, error)
}

// CreateScheduleHandler handles POST /v1/profile/{profileID}/schedule.
type CreateScheduleHandler struct {
	ScheduleService scheduleCreator
}

func NewCreateScheduleHandler(svc scheduleCreator) *CreateScheduleHandler {
	return &CreateScheduleHandler{ScheduleService: svc}
}

func (h *CreateScheduleHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "create-schedule",
		Method:      http.MethodPost,
		Path:        "/v1/profile/{profileID}/schedule",
		Summary:     "Schedule a transaction",
		Tags:        []string{"Schedules"},
	}, h.handle)
}

func parseCreateScheduleInput(input *CreateScheduleInput) (service.ScheduleCreate, error) {
	profileID, err := handlerutil.ParseID("profileID", input.ProfileID)
	if err != nil {
		return service.ScheduleCreate{}, err
	}

	direction, err := service.ParseDirection(input.Body.Direction)
	if err != nil {
		return service.ScheduleCreate{}, handlerutil.Error(err, "invalid direction")
	}
	amount, err := service.ParseAmount("amount", input.Body.Amount)
	if err != nil {
		return service.ScheduleCreate{}, handlerutil.Error(err, "invalid amount")
	}
	if !amount.IsPositive() {
		return service.ScheduleCreate{}, huma.NewError(http.StatusBadRequest, "amount must be greater than zero")
	}
	startDate, err := parseDate("startDate", input.Body.StartDate)
	if err != nil {
		return service.ScheduleCreate{}, handlerutil.Error(err, "invalid startDate")
	}
	frequency, err := recurrence.ParseFrequency(input.Body.Frequency)
	if err != nil {
		return service.ScheduleCreate{}, huma.NewError(http.StatusBadRequest, "invalid frequency", err)
	}

	return service.ScheduleCreate{
		ProfileID:  profileID,
		Adjustment: direction.Sign(amount),
		Note:       input.Body.Note,
		StartDate:  startDate,
		Frequency:  frequency,
	}, nil
}

func (h *CreateScheduleHandler) handle(ctx context.Context, input *CreateScheduleInput) (*CreateScheduleOutput, error) {
	create, err := parseCreateScheduleInput(input)
	if err != nil {
		return nil, err
	}

	created, err := h.ScheduleService.CreateSchedule(ctx, create)
	if err != nil {
		return nil, handlerutil.Error(err, "failed to create schedule")
	}

	handlerutil.AddData(ctx, "scheduleID", created.ID.String())

	return &CreateScheduleOutput{
		Status: http.StatusCreated,
		Body:   toAPI(created),
	}, nil
}
