package courtsite

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/example/squash-scheduler/internal/application/usecases"
	"github.com/example/squash-scheduler/internal/domain/reservation"
)

const (
	testViewState       = "vs-base64-blob"
	testEventValidation = "ev-base64-blob"
)

type loginRecord struct {
	Username    string
	Secret      string
	AuthCookie  string // value of the auth cookie slot presented at login time
	HadPrestage bool   // whether the slot existed at all
}

type stageRecord struct {
	Username        string
	ReservationData string
	StartTime       string
}

type confirmPost struct {
	Username        string
	UserAgent       string
	ViewState       string
	EventValidation string
}

// fakeSite imitates the upstream ASP.NET application closely enough to
// exercise the whole flow: placeholder-cookie login, double-encoded stage,
// token-threaded confirm with a pipe-delimited redirect.
type fakeSite struct {
	mu sync.Mutex

	logins       []loginRecord
	stages       []stageRecord
	confirmPosts []confirmPost

	// usernames whose stage call answers with this status (0 = accept)
	stageFailures map[string]int
	// usernames whose thank-you page comes back without the fragment
	emptyThanks map[string]bool
	// when set, the confirmation page omits the hidden tokens
	dropTokens bool

	occupancy map[string][]int

	srv *httptest.Server
}

func newFakeSite(t *testing.T) *fakeSite {
	f := &fakeSite{
		stageFailures: map[string]int{},
		emptyThanks:   map[string]bool{},
		occupancy:     map[string][]int{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc(availabilityPath, f.handleOccupancy)
	mux.HandleFunc(loginPath, f.handleLogin)
	mux.HandleFunc("/default.aspx", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>home</body></html>")
	})
	mux.HandleFunc(stagePath, f.handleStage)
	mux.HandleFunc(confirmPath, f.handleConfirm)
	mux.HandleFunc("/reservations/thanks.aspx", f.handleThanks)

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeSite) client(t *testing.T) *Client {
	c, err := New(Options{
		BaseURL:          f.srv.URL,
		SiteID:           "1",
		ResourceIDOffset: 16,
		CourtCount:       5,
		Timeout:          5 * time.Second,
		Logger:           zerolog.Nop(),
	})
	require.NoError(t, err)
	return c
}

func (f *fakeSite) sessionUser(r *http.Request) string {
	ck, err := r.Cookie(".ASPXAUTH")
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(ck.Value, "sess-")
}

func (f *fakeSite) handleOccupancy(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OnlineSiteID string   `json:"onlineSiteId"`
		ObjectIDs    []string `json:"objectIds"`
		SelectedDate string   `json:"selectedDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	type obj struct {
		ID        string `json:"id"`
		Occupancy []int  `json:"occupancy"`
	}
	var out struct {
		Objects []obj `json:"objects"`
	}
	for _, id := range req.ObjectIDs {
		if row, ok := f.occupancy[id]; ok {
			out.Objects = append(out.Objects, obj{ID: id, Occupancy: row})
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func (f *fakeSite) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	rec := loginRecord{
		Username: r.PostFormValue(fieldUsername),
		Secret:   r.PostFormValue(fieldSecret),
	}
	if ck, err := r.Cookie(".ASPXAUTH"); err == nil {
		rec.HadPrestage = true
		rec.AuthCookie = ck.Value
	}

	f.mu.Lock()
	f.logins = append(f.logins, rec)
	f.mu.Unlock()

	// the real site only replaces an existing cookie slot
	if rec.HadPrestage {
		http.SetCookie(w, &http.Cookie{Name: ".ASPXAUTH", Value: "sess-" + rec.Username, Path: "/"})
	}
	// wrong credentials still get a 302 back to the login page; the flow
	// cannot tell the difference here and that is intentional
	http.Redirect(w, r, "/default.aspx", http.StatusFound)
}

func (f *fakeSite) handleStage(w http.ResponseWriter, r *http.Request) {
	user := f.sessionUser(r)
	if user == "" {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	var req struct {
		ReservationData string `json:"reservationData"`
		StartTime       string `json:"startTime"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.stages = append(f.stages, stageRecord{
		Username:        user,
		ReservationData: req.ReservationData,
		StartTime:       req.StartTime,
	})
	status := f.stageFailures[user]
	f.mu.Unlock()

	if status != 0 {
		http.Error(w, "stage rejected", status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, `{"d":null}`)
}

func (f *fakeSite) handleConfirm(w http.ResponseWriter, r *http.Request) {
	user := f.sessionUser(r)
	if user == "" {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	if r.Method == http.MethodGet {
		if f.dropTokens {
			fmt.Fprint(w, `<html><body><form id="form1"></form></body></html>`)
			return
		}
		fmt.Fprintf(w, `<html><body><form id="form1">
<input type="hidden" name="%s" value="%s"/>
<input type="hidden" name="%s" value="%s"/>
</form></body></html>`, fieldViewState, testViewState, fieldEventValidation, testEventValidation)
		return
	}

	// POST: the backend rejects non-browser agents outright
	if !strings.HasPrefix(r.UserAgent(), "Mozilla/") {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.confirmPosts = append(f.confirmPosts, confirmPost{
		Username:        user,
		UserAgent:       r.UserAgent(),
		ViewState:       r.PostFormValue(fieldViewState),
		EventValidation: r.PostFormValue(fieldEventValidation),
	})
	f.mu.Unlock()

	if r.PostFormValue(fieldViewState) != testViewState ||
		r.PostFormValue(fieldEventValidation) != testEventValidation {
		http.Error(w, "invalid viewstate", http.StatusInternalServerError)
		return
	}

	io.WriteString(w, "1|#||4|pageRedirect||%2freservations%2fthanks.aspx|")
}

func (f *fakeSite) handleThanks(w http.ResponseWriter, r *http.Request) {
	user := f.sessionUser(r)

	f.mu.Lock()
	empty := f.emptyThanks[user]
	f.mu.Unlock()

	if empty {
		fmt.Fprint(w, `<html><body><span id="lblThankYou"></span></body></html>`)
		return
	}
	fmt.Fprintf(w, `<html><body><span id="lblThankYou">Bedankt %s, baan gereserveerd.</span></body></html>`, user)
}

func freeAllDay() []int { return make([]int, reservation.MinutesPerDay) }

func testSlot() reservation.Slot {
	return reservation.Slot{
		Court:    3,
		Date:     time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
		Hour:     18,
		Duration: 60,
	}
}

func TestBookHappyPath(t *testing.T) {
	site := newFakeSite(t)
	c := site.client(t)

	receipt, err := c.Book(context.Background(), reservation.Identity{Username: "alice", Secret: "pw1"}, testSlot())
	require.NoError(t, err)
	require.Equal(t, "alice", receipt.Username)
	require.Contains(t, receipt.Confirmation, "Bedankt alice")

	require.Len(t, site.logins, 1)
	require.Equal(t, "alice", site.logins[0].Username)
	require.Equal(t, "pw1", site.logins[0].Secret)
	// the placeholder cookie slot must exist before login
	require.True(t, site.logins[0].HadPrestage)
	require.Equal(t, "placeholder", site.logins[0].AuthCookie)

	require.Len(t, site.stages, 1)
	st := site.stages[0]
	require.Equal(t, "1080", st.StartTime)

	// the details ride double-encoded: a JSON document inside a string field
	var inner stageDetails
	require.NoError(t, json.Unmarshal([]byte(st.ReservationData), &inner))
	require.Equal(t, "19", inner.ObjectID) // court 3 + offset 16
	require.Equal(t, "30-08-2026", inner.Date)
	require.Equal(t, 60, inner.Duration)

	require.Len(t, site.confirmPosts, 1)
	require.True(t, strings.HasPrefix(site.confirmPosts[0].UserAgent, "Mozilla/"))
	require.Equal(t, testViewState, site.confirmPosts[0].ViewState)
	require.Equal(t, testEventValidation, site.confirmPosts[0].EventValidation)
}

func TestBookConfirmFailsWithoutFragment(t *testing.T) {
	site := newFakeSite(t)
	site.emptyThanks["alice"] = true
	c := site.client(t)

	_, err := c.Book(context.Background(), reservation.Identity{Username: "alice", Secret: "pw1"}, testSlot())
	require.Error(t, err)

	// every request returned 2xx, yet the booking did not happen
	var ce *reservation.ConfirmError
	require.ErrorAs(t, err, &ce)
}

func TestBookMissingTokensIsParseError(t *testing.T) {
	site := newFakeSite(t)
	site.dropTokens = true
	c := site.client(t)

	_, err := c.Book(context.Background(), reservation.Identity{Username: "alice", Secret: "pw1"}, testSlot())
	require.Error(t, err)

	var pe *reservation.ParseError
	require.ErrorAs(t, err, &pe)
}

func TestBookStageFailureSurfacesAsStageError(t *testing.T) {
	site := newFakeSite(t)
	site.stageFailures["alice"] = http.StatusInternalServerError
	c := site.client(t)

	_, err := c.Book(context.Background(), reservation.Identity{Username: "alice", Secret: "pw1"}, testSlot())
	require.Error(t, err)

	var se *reservation.StageError
	require.ErrorAs(t, err, &se)
	var te *reservation.TransportError
	require.ErrorAs(t, err, &te)
	require.Equal(t, http.StatusInternalServerError, te.Status)

	// the attempt aborted before confirm
	require.Empty(t, site.confirmPosts)
}

func TestSequentialAttemptsNeverShareSessions(t *testing.T) {
	site := newFakeSite(t)
	c := site.client(t)

	s1, err := c.newSession()
	require.NoError(t, err)
	s2, err := c.newSession()
	require.NoError(t, err)
	require.NotSame(t, s1.jar, s2.jar)
	require.NotSame(t, s1.http, s2.http)

	// a second Book starts from a pristine jar: the login request carries
	// the dummy value again, not the previous attempt's session cookie
	_, err = c.Book(context.Background(), reservation.Identity{Username: "alice", Secret: "pw1"}, testSlot())
	require.NoError(t, err)
	_, err = c.Book(context.Background(), reservation.Identity{Username: "bob", Secret: "pw2"}, testSlot())
	require.NoError(t, err)

	require.Len(t, site.logins, 2)
	require.Equal(t, "placeholder", site.logins[0].AuthCookie)
	require.Equal(t, "placeholder", site.logins[1].AuthCookie)
}

func TestAvailability(t *testing.T) {
	site := newFakeSite(t)
	row := freeAllDay()
	row[18*60+15] = 1 // one occupied minute at 18:15
	site.occupancy["17"] = row
	site.occupancy["18"] = freeAllDay()
	c := site.client(t)

	matrix, err := c.Availability(context.Background(), time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.False(t, matrix.HourFree("17", 18))
	require.True(t, matrix.HourFree("17", 17))
	require.True(t, matrix.HourFree("18", 18))
	// court 3 (object 19) was absent from the response: conservatively taken
	require.False(t, matrix.HourFree("19", 18))
}

func TestDecodeRedirect(t *testing.T) {
	path, err := decodeRedirect("1|#||4|pageRedirect||%2freservations%2fthanks.aspx|")
	require.NoError(t, err)
	require.Equal(t, "/reservations/thanks.aspx", path)

	_, err = decodeRedirect("no pipes here")
	require.Error(t, err)
	var pe *reservation.ParseError
	require.ErrorAs(t, err, &pe)

	_, err = decodeRedirect("1|#||")
	require.Error(t, err)
}

func TestFallbackAcrossIdentitiesEndToEnd(t *testing.T) {
	site := newFakeSite(t)
	site.stageFailures["a"] = http.StatusInternalServerError
	c := site.client(t)

	u := usecases.BookCourt{
		Provider: c,
		Identities: []reservation.Identity{
			{Username: "a", Secret: "pw1"},
			{Username: "b", Secret: "pw2"},
		},
		Logger: zerolog.Nop(),
	}

	receipt, err := u.Execute(context.Background(), testSlot())
	require.NoError(t, err)
	require.Equal(t, "b", receipt.Username)

	// both identities logged in, each on a pristine session
	require.Len(t, site.logins, 2)
	require.Equal(t, "a", site.logins[0].Username)
	require.Equal(t, "b", site.logins[1].Username)
	require.Equal(t, "placeholder", site.logins[0].AuthCookie)
	require.Equal(t, "placeholder", site.logins[1].AuthCookie)

	// a staged and aborted; only b reached confirm
	require.Len(t, site.stages, 2)
	require.Len(t, site.confirmPosts, 1)
	require.Equal(t, "b", site.confirmPosts[0].Username)
}

func TestResourceIDMapping(t *testing.T) {
	c, err := New(Options{BaseURL: "https://example.com", ResourceIDOffset: 16})
	require.NoError(t, err)
	require.Equal(t, "17", c.ResourceID(1))
	require.Equal(t, "21", c.ResourceID(5))
}
