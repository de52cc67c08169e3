package courtsite

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/example/squash-scheduler/internal/domain/reservation"
)

type stageDetails struct {
	OnlineSiteID string `json:"onlineSiteId"`
	ObjectID     string `json:"objectId"`
	Date         string `json:"date"`
	Duration     int    `json:"duration"`
}

// The backend wants the reservation details as a JSON document serialized
// into a string field, and the start time as a stringly minute count.
// Double encoding included, this is the wire format; do not flatten it.
type stageRequest struct {
	ReservationData string `json:"reservationData"`
	StartTime       string `json:"startTime"`
}

// stage places the provisional hold on the slot. The hold is not a
// reservation yet; an unconfirmed stage is left dangling for the site to
// expire on its own schedule.
func (c *Client) stage(ctx context.Context, s *session, slot reservation.Slot) error {
	inner, err := json.Marshal(stageDetails{
		OnlineSiteID: c.siteID,
		ObjectID:     c.ResourceID(slot.Court),
		Date:         slot.Date.Format(siteDateFormat),
		Duration:     slot.Duration,
	})
	if err != nil {
		return &reservation.StageError{Err: err}
	}

	res, err := s.http.R().
		SetContext(ctx).
		SetBody(stageRequest{
			ReservationData: string(inner),
			StartTime:       strconv.Itoa(slot.StartMinutes()),
		}).
		Post(stagePath)
	if err != nil {
		return &reservation.StageError{Err: &reservation.TransportError{Op: "stage", Err: err}}
	}
	if res.StatusCode() >= 400 {
		return &reservation.StageError{Err: &reservation.TransportError{Op: "stage", Status: res.StatusCode()}}
	}
	return nil
}
