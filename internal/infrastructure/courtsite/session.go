package courtsite

import (
	"net/http"
	"net/http/cookiejar"

	"github.com/go-resty/resty/v2"
)

// session is the cookie state of exactly one booking attempt. It is
// created fresh per attempt and thrown away when the attempt ends, success
// or failure; nothing is ever pooled or reused across identities.
type session struct {
	http *resty.Client
	jar  http.CookieJar
}

func (c *Client) newSession() (*session, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	hc := resty.New().
		SetBaseURL(c.base.String()).
		SetCookieJar(jar).
		SetHeader("User-Agent", c.ua).
		SetRedirectPolicy(resty.DomainCheckRedirectPolicy(c.base.Hostname())).
		SetTimeout(c.timeout)

	return &session{http: hc, jar: jar}, nil
}
