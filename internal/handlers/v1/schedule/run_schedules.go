package schedule

import (
	"context"
	"net/http"
	"time"

	"cloud.google.com/go/civil"
	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/allowance-server/internal/handlers/v1/handlerutil"
	"github.com/carson-networks/allowance-server/internal/scheduler"
)

type RunSchedulesBody struct {
	Date string `json:"date,omitempty" format:"date" doc:"Day to run for (YYYY-MM-DD), defaults to today in the scheduler timezone"`
}

type RunSchedulesInput struct {
	Body RunSchedulesBody `required:"false"`
}

type RunFailure struct {
	ScheduleID string `json:"scheduleId" doc:"Schedule UUID"`
	Error      string `json:"error" doc:"Why it failed"`
}

type RunSchedulesResponse struct {
	Date    string       `json:"date" doc:"Day the job ran for"`
	Fired   int          `json:"fired" doc:"Schedules that produced entries"`
	Applied int          `json:"applied" doc:"Entries created"`
	Retired int          `json:"retired" doc:"One-off schedules removed"`
	Failed  []RunFailure `json:"failed" doc:"Schedules that could not be applied"`
}

type RunSchedulesOutput struct {
	Body RunSchedulesResponse
}

type jobRunner interface {
	Run(ctx context.Context, today civil.Date) (scheduler.Result, error)
}

// RunSchedulesHandler handles POST /v1/schedule/run. It is the external
// trigger for the daily job.
type RunSchedulesHandler struct {
	Job      jobRunner
	Location *time.Location
	Now      func() time.Time
}

func NewRunSchedulesHandler(job jobRunner, loc *time.Location) *RunSchedulesHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &RunSchedulesHandler{Job: job, Location: loc, Now: time.Now}
}

func (h *RunSchedulesHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "run-schedules",
		Method:      http.MethodPost,
		Path:        "/v1/schedule/run",
		Summary:     "Run the scheduled job",
		Description: "Materializes every schedule due on or before the given day. Failures are reported per schedule.",
		Tags:        []string{"Schedules"},
	}, h.handle)
}

func (h *RunSchedulesHandler) handle(ctx context.Context, input *RunSchedulesInput) (*RunSchedulesOutput, error) {
	today := civil.DateOf(h.Now().In(h.Location))
	if input.Body.Date != "" {
		var err error
		if today, err = parseDate("date", input.Body.Date); err != nil {
			return nil, handlerutil.Error(err, "invalid date")
		}
	}

	stopTimer := handlerutil.StartTimer(ctx, "runSchedulesMs")
	result, err := h.Job.Run(ctx, today)
	stopTimer()
	if err != nil {
		return nil, huma.NewError(http.StatusInternalServerError, "failed to run scheduled job", err)
	}

	handlerutil.AddData(ctx, "applied", result.Applied)
	handlerutil.AddData(ctx, "failed", len(result.Failed))

	resp := RunSchedulesResponse{
		Date:    result.Date.String(),
		Fired:   result.Fired,
		Applied: result.Applied,
		Retired: result.Retired,
		Failed:  make([]RunFailure, len(result.Failed)),
	}
	for i, f := range result.Failed {
		resp.Failed[i] = RunFailure{ScheduleID: f.ScheduleID.String(), Error: f.Err.Error()}
	}
	return &RunSchedulesOutput{Body: resp}, nil
}
