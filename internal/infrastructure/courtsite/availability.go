package courtsite

import (
	"context"
	"time"

	"github.com/example/squash-scheduler/internal/domain/reservation"
)

type occupancyRequest struct {
	OnlineSiteID string   `json:"onlineSiteId"`
	ObjectIDs    []string `json:"objectIds"`
	SelectedDate string   `json:"selectedDate"`
}

type occupancyResponse struct {
	Objects []struct {
		ID        string `json:"id"`
		Occupancy []int  `json:"occupancy"` // one entry per minute of day, nonzero = taken
	} `json:"objects"`
}

// Availability queries the unauthenticated occupancy endpoint for all
// configured courts on the given date. No internal retry; callers own the
// retry policy. The returned matrix keeps the site's minute granularity.
func (c *Client) Availability(ctx context.Context, date time.Time) (reservation.AvailabilityMatrix, error) {
	ids := make([]string, 0, c.courts)
	for court := 1; court <= c.courts; court++ {
		ids = append(ids, c.ResourceID(court))
	}

	body := occupancyRequest{
		OnlineSiteID: c.siteID,
		ObjectIDs:    ids,
		SelectedDate: date.Format(siteDateFormat),
	}

	var parsed occupancyResponse
	res, err := c.avail.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&parsed).
		Post(availabilityPath)
	if err != nil {
		return nil, &reservation.TransportError{Op: "availability", Err: err}
	}
	if res.StatusCode() != 200 {
		return nil, &reservation.TransportError{Op: "availability", Status: res.StatusCode()}
	}

	matrix := make(reservation.AvailabilityMatrix, len(parsed.Objects))
	for _, obj := range parsed.Objects {
		row := make([]bool, len(obj.Occupancy))
		for i, v := range obj.Occupancy {
			row[i] = v != 0
		}
		matrix[obj.ID] = row
	}
	return matrix, nil
}
