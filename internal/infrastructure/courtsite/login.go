package courtsite

import (
	"context"
	"net/http"

	"github.com/example/squash-scheduler/internal/domain/reservation"
)

// login authenticates the session as the given identity. The auth cookie
// slot must already exist before the form is posted: the site overwrites an
// existing cookie on success but silently fails to create a missing one, so
// a dummy value is seeded first.
//
// Success here means transport success only. The site answers 200 and
// serves the login page again on wrong credentials, so a bad secret is not
// detectable until stage or confirm misbehaves downstream.
func (c *Client) login(ctx context.Context, s *session, identity reservation.Identity) error {
	s.jar.SetCookies(c.base, []*http.Cookie{{
		Name:   c.placeholder,
		Value:  "placeholder",
		Path:   "/",
		Domain: c.base.Hostname(),
	}})

	form := cloneForm(c.loginForm)
	form[fieldUsername] = identity.Username
	form[fieldSecret] = identity.Secret

	res, err := s.http.R().
		SetContext(ctx).
		SetFormData(form).
		Post(loginPath)
	if err != nil {
		return &reservation.AuthError{Err: &reservation.TransportError{Op: "login", Err: err}}
	}
	if res.StatusCode() >= 400 {
		return &reservation.AuthError{Err: &reservation.TransportError{Op: "login", Status: res.StatusCode()}}
	}
	return nil
}
