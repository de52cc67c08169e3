package courtsite

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/example/squash-scheduler/internal/domain/reservation"
)

// Endpoint paths of the reference deployment. The whole site is one
// ASP.NET application; these are stable across the installs we care about.
const (
	availabilityPath = "/services/reservations.asmx/GetOccupancy"
	loginPath        = "/login.aspx"
	stagePath        = "/services/reservations.asmx/StageReservation"
	confirmPath      = "/reservations/confirm.aspx"
)

const (
	fieldUsername        = "txtUsername"
	fieldSecret          = "txtPassword"
	fieldViewState       = "__VIEWSTATE"
	fieldEventValidation = "__EVENTVALIDATION"
)

// The confirm POST is rejected outright without a browser-looking UA.
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// Dates travel in the site's locale convention (day first).
const siteDateFormat = "02-01-2006"

const defaultDurationMinutes = 60

func defaultLoginForm() map[string]string {
	return map[string]string{
		"__EVENTTARGET":   "",
		"__EVENTARGUMENT": "",
		"btnLogin":        "Inloggen",
	}
}

func defaultConfirmForm() map[string]string {
	return map[string]string{
		"__EVENTTARGET":   "btnConfirm",
		"__EVENTARGUMENT": "",
		"chkConditions":   "on",
	}
}

type Options struct {
	BaseURL string
	SiteID  string

	// Court n maps to upstream object id n+ResourceIDOffset; courts 1-5 are
	// objects 17-21 in the reference deployment. Must track site-side config.
	ResourceIDOffset int
	CourtCount       int

	Timeout   time.Duration
	UserAgent string

	// Form templates the credentials and the extracted tokens get merged
	// into. Opaque to this client beyond the merge; nil means the reference
	// deployment's fields.
	LoginForm   map[string]string
	ConfirmForm map[string]string

	// Element id whose non-empty text on the final page is the only
	// positive proof the reservation went through.
	SuccessFragmentID string

	// Cookie slot that must exist before login or the site silently drops
	// the real auth cookie.
	PlaceholderCookie string

	Logger zerolog.Logger
}

// Client talks to one configured scheduling site. It holds no session
// state itself; every Book call runs on a session of its own.
type Client struct {
	base    *url.URL
	siteID  string
	offset  int
	courts  int
	timeout time.Duration
	ua      string

	loginForm   map[string]string
	confirmForm map[string]string
	successID   string
	placeholder string

	logger zerolog.Logger

	// jarless client for the unauthenticated availability endpoint
	avail *resty.Client
}

func New(opts Options) (*Client, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", opts.BaseURL)
	}

	c := &Client{
		base:        base,
		siteID:      opts.SiteID,
		offset:      opts.ResourceIDOffset,
		courts:      opts.CourtCount,
		timeout:     opts.Timeout,
		ua:          opts.UserAgent,
		loginForm:   opts.LoginForm,
		confirmForm: opts.ConfirmForm,
		successID:   opts.SuccessFragmentID,
		placeholder: opts.PlaceholderCookie,
		logger:      opts.Logger,
	}
	if c.siteID == "" {
		c.siteID = "1"
	}
	if c.courts < 1 {
		c.courts = 5
	}
	if c.timeout <= 0 {
		c.timeout = 30 * time.Second
	}
	if c.ua == "" {
		c.ua = defaultUserAgent
	}
	if c.loginForm == nil {
		c.loginForm = defaultLoginForm()
	}
	if c.confirmForm == nil {
		c.confirmForm = defaultConfirmForm()
	}
	if c.successID == "" {
		c.successID = "lblThankYou"
	}
	if c.placeholder == "" {
		c.placeholder = ".ASPXAUTH"
	}

	c.avail = resty.New().
		SetBaseURL(base.String()).
		SetHeader("User-Agent", c.ua).
		SetTimeout(c.timeout)

	return c, nil
}

func (c *Client) Name() string { return "courtsite" }

// ResourceID translates a court number to the upstream object id.
func (c *Client) ResourceID(court int) string {
	return strconv.Itoa(court + c.offset)
}

// Book runs one full reservation attempt for a single identity:
// authenticate, stage, confirm, in that order, on a fresh session. The
// first failing step aborts the attempt; a stage without a confirm is left
// for the site to expire, there is no release call.
func (c *Client) Book(ctx context.Context, identity reservation.Identity, slot reservation.Slot) (reservation.Receipt, error) {
	if slot.Duration <= 0 {
		slot.Duration = defaultDurationMinutes
	}

	s, err := c.newSession()
	if err != nil {
		return reservation.Receipt{}, err
	}

	log := c.logger.With().
		Str("username", identity.Username).
		Int("court", slot.Court).
		Int("hour", slot.Hour).
		Logger()

	if err := c.login(ctx, s, identity); err != nil {
		log.Warn().Err(err).Msg("login failed")
		return reservation.Receipt{}, err
	}
	log.Debug().Msg("login request accepted")

	if err := c.stage(ctx, s, slot); err != nil {
		log.Warn().Err(err).Msg("stage failed")
		return reservation.Receipt{}, err
	}
	log.Debug().Msg("slot staged")

	confirmation, err := c.confirm(ctx, s)
	if err != nil {
		log.Warn().Err(err).Msg("confirm failed")
		return reservation.Receipt{}, err
	}
	log.Info().Str("confirmation", confirmation).Msg("reservation confirmed")

	return reservation.Receipt{
		Username:     identity.Username,
		Slot:         slot,
		Confirmation: confirmation,
		BookedAt:     time.Now(),
	}, nil
}

func cloneForm(template map[string]string) map[string]string {
	out := make(map[string]string, len(template)+4)
	for k, v := range template {
		out[k] = v
	}
	return out
}
