package schedule

import (
	"time"

	"cloud.google.com/go/civil"

	"github.com/carson-networks/allowance-server/internal/service"
)

// Schedule is the API response model for a scheduled transaction.
type Schedule struct {
	ID         string `json:"id" doc:"Schedule UUID"`
	ProfileID  string `json:"profileId" doc:"Profile UUID"`
	Adjustment string `json:"adjustment" doc:"Signed decimal adjustment applied on each occurrence"`
	Note       string `json:"note" doc:"Note copied onto every entry"`
	StartDate  string `json:"startDate" doc:"Next occurrence (YYYY-MM-DD)"`
	Frequency  string `json:"frequency" doc:"once, daily, weekly or monthly"`
	CreatedAt  string `json:"createdAt" doc:"RFC3339 creation time"`
}

func toAPI(s service.ScheduledTransaction) Schedule {
	return Schedule{
		ID:         s.ID.String(),
		ProfileID:  s.ProfileID.String(),
		Adjustment: s.Adjustment.StringFixed(2),
		Note:       s.Note,
		StartDate:  s.StartDate.String(),
		Frequency:  s.Frequency.String(),
		CreatedAt:  s.CreatedAt.Format(time.RFC3339),
	}
}

func parseDate(field, value string) (civil.Date, error) {
	d, err := civil.ParseDate(value)
	if err != nil {
		return civil.Date{}, &service.ValidationError{Field: field, Message: "must be a YYYY-MM-DD date"}
	}
	return d, nil
}
