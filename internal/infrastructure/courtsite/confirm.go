package courtsite

import (
	"bytes"
	"context"
	"errors"

	"github.com/PuerkitoBio/goquery"

	"github.com/example/squash-scheduler/internal/domain/reservation"
)

// confirm finalizes the staged hold. Three requests:
//
//  1. GET the confirmation page and lift __VIEWSTATE and __EVENTVALIDATION
//     out of its HTML. Either token missing is fatal for the attempt.
//  2. POST the confirm form (template + tokens) with a browser User-Agent,
//     following redirects. The response is not HTML but an ASP.NET
//     pipe-delimited redirect descriptor.
//  3. GET the path decoded from that descriptor and look for the named
//     thank-you fragment. Its non-empty text is the only positive success
//     signal in the whole flow.
func (c *Client) confirm(ctx context.Context, s *session) (string, error) {
	res, err := s.http.R().
		SetContext(ctx).
		Get(confirmPath)
	if err != nil {
		return "", &reservation.ConfirmError{Err: &reservation.TransportError{Op: "confirm page", Err: err}}
	}
	if res.StatusCode() >= 400 {
		return "", &reservation.ConfirmError{Err: &reservation.TransportError{Op: "confirm page", Status: res.StatusCode()}}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return "", &reservation.ConfirmError{Err: err}
	}
	tokens, err := extractHiddenInputs(doc, fieldViewState, fieldEventValidation)
	if err != nil {
		return "", err
	}

	form := cloneForm(c.confirmForm)
	for name, value := range tokens {
		form[name] = value
	}

	res, err = s.http.R().
		SetContext(ctx).
		SetHeader("User-Agent", c.ua).
		SetFormData(form).
		Post(confirmPath)
	if err != nil {
		return "", &reservation.ConfirmError{Err: &reservation.TransportError{Op: "confirm post", Err: err}}
	}
	if res.StatusCode() >= 400 {
		return "", &reservation.ConfirmError{Err: &reservation.TransportError{Op: "confirm post", Status: res.StatusCode()}}
	}

	redirect, err := decodeRedirect(res.String())
	if err != nil {
		return "", err
	}

	res, err = s.http.R().
		SetContext(ctx).
		Get(redirect)
	if err != nil {
		return "", &reservation.ConfirmError{Err: &reservation.TransportError{Op: "confirm result", Err: err}}
	}
	if res.StatusCode() >= 400 {
		return "", &reservation.ConfirmError{Err: &reservation.TransportError{Op: "confirm result", Status: res.StatusCode()}}
	}

	doc, err = goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return "", &reservation.ConfirmError{Err: err}
	}

	confirmation := fragmentText(doc, c.successID)
	if confirmation == "" {
		return "", &reservation.ConfirmError{
			Body: snippet(res.Body()),
			Err:  errors.New("success fragment empty or missing"),
		}
	}
	return confirmation, nil
}

func snippet(body []byte) string {
	const max = 512
	if len(body) > max {
		body = body[:max]
	}
	return string(body)
}
