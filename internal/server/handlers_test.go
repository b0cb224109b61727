package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-age/internal/config"
	"github.com/tartampluch/go-age/internal/engine"
	"github.com/tartampluch/go-age/internal/metrics"
)

// MockClock controls "today" for requests without a reference date.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

const calculateAgePath = config.RouteAPI + config.RouteCalculateAge

func newTestServer() *Server {
	return &Server{
		Origins:  []string{"http://localhost:5173"},
		Engine:   engine.New(engine.LeapDayFeb28),
		Clock:    MockClock{CurrentTime: time.Date(2024, time.June, 15, 9, 30, 0, 0, time.UTC)},
		Location: time.UTC,
		Metrics:  metrics.New(),
	}
}

func post(t *testing.T, h http.Handler, path, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(config.HeaderContentType, contentType)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

// -----------------------------------------------------------------------------
// POST /api/calculate-age
// -----------------------------------------------------------------------------

func TestCalculateAge_Success(t *testing.T) {
	srv := newTestServer()

	w := post(t, srv.Handler(), calculateAgePath, "application/json",
		`{"dob":"1990-06-15","reference":"2024-06-15"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, config.MimeJSON, w.Header().Get(config.HeaderContentType))

	var report engine.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, 34, report.Years)
	assert.Equal(t, 0, report.Months)
	assert.Equal(t, 0, report.Days)
	assert.True(t, report.IsBirthdayToday)
	assert.Equal(t, 0, report.DaysToNextBirthday)

	assert.Equal(t, 1.0, testutil.ToFloat64(srv.Metrics.AgeRequests.WithLabelValues(config.MetricResultOK)))
}

func TestCalculateAge_DefaultsReferenceToToday(t *testing.T) {
	// Scenario: Only the birth date is sent; the clock says 2024-06-15.
	srv := newTestServer()

	w := post(t, srv.Handler(), calculateAgePath, "application/json", `{"dob":"1999-12-31"}`)

	require.Equal(t, http.StatusOK, w.Code)

	var report engine.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, engine.MustDate(2024, time.June, 15), report.ReferenceDate)
	assert.Equal(t, 24, report.Years)
	assert.Equal(t, 5, report.Months)
	assert.Equal(t, 15, report.Days)
}

func TestCalculateAge_LeapPolicyFollowsEngine(t *testing.T) {
	body := `{"dob":"2000-02-29","reference":"2023-02-28"}`

	tests := []struct {
		name   string
		policy engine.LeapDayPolicy
		today  bool
	}{
		{"Observed on Feb 28", engine.LeapDayFeb28, true},
		{"Observed on Mar 1", engine.LeapDayMar1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer()
			srv.Engine = engine.New(tt.policy)

			w := post(t, srv.Handler(), calculateAgePath, "application/json", body)
			require.Equal(t, http.StatusOK, w.Code)

			var report engine.Report
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
			assert.Equal(t, tt.today, report.IsBirthdayToday)
		})
	}
}

func TestCalculateAge_BadRequests(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
		label   string
	}{
		{"Empty body", ``, config.ErrBodyDecode, config.MetricResultMalformed},
		{"Not JSON", `dob=1990-01-01`, config.ErrBodyDecode, config.MetricResultMalformed},
		{"Wrong type", `{"dob":19900101}`, config.ErrBodyDecode, config.MetricResultMalformed},
		{"Missing dob", `{}`, config.ErrDOBMissing, config.MetricResultMalformed},
		{"Wrong shape", `{"dob":"01/02/1990"}`, config.ErrDateShape, config.MetricResultMalformed},
		{"Impossible date", `{"dob":"2023-02-30"}`, config.ErrDateImpossible, config.MetricResultRange},
		{"Birth after reference", `{"dob":"1985-03-10","reference":"1985-03-09"}`, config.ErrBirthAfterRef, config.MetricResultRange},
		{"Bad reference", `{"dob":"1985-03-10","reference":"soon"}`, config.ErrReference, config.MetricResultMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer()

			w := post(t, srv.Handler(), calculateAgePath, "application/json", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decodeError(t, w), tt.wantMsg)
			assert.Equal(t, 1.0, testutil.ToFloat64(srv.Metrics.AgeRequests.WithLabelValues(tt.label)))
		})
	}
}

func TestCalculateAge_BodyTooLarge(t *testing.T) {
	srv := newTestServer()
	huge := `{"dob":"` + strings.Repeat("1", config.MaxRequestBodySize) + `"}`

	w := post(t, srv.Handler(), calculateAgePath, "application/json", huge)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, config.ErrBodyTooLarge, decodeError(t, w))
}

func TestCalculateAge_MethodNotAllowed(t *testing.T) {
	srv := newTestServer()

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, calculateAgePath, nil))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, config.HTTPMsgMethodNotAll, decodeError(t, w))
}

// -----------------------------------------------------------------------------
// POST /api/contacts/ages
// -----------------------------------------------------------------------------

func TestContactAges(t *testing.T) {
	srv := newTestServer()
	vcf := "BEGIN:VCARD\nVERSION:3.0\nFN:Alice\nBDAY:1990-06-15\nEND:VCARD\n" +
		"BEGIN:VCARD\nVERSION:3.0\nFN:Bob\nBDAY:--06-20\nEND:VCARD\n" +
		"BEGIN:VCARD\nVERSION:3.0\nFN:Nobody\nEND:VCARD\n"

	w := post(t, srv.Handler(), config.RouteAPI+config.RouteContactAges, config.MimeVCard, vcf)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Contacts []struct {
			Name      string         `json:"name"`
			YearKnown bool           `json:"yearKnown"`
			DaysUntil int            `json:"daysUntil"`
			Report    *engine.Report `json:"report"`
		} `json:"contacts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Contacts, 2)

	assert.Equal(t, "Alice", body.Contacts[0].Name)
	assert.Equal(t, 0, body.Contacts[0].DaysUntil)
	require.NotNil(t, body.Contacts[0].Report)
	assert.Equal(t, 34, body.Contacts[0].Report.Years)

	assert.Equal(t, "Bob", body.Contacts[1].Name)
	assert.False(t, body.Contacts[1].YearKnown)
	assert.Equal(t, 5, body.Contacts[1].DaysUntil)
	assert.Nil(t, body.Contacts[1].Report)
}

func TestContactAges_EmptyBody(t *testing.T) {
	srv := newTestServer()

	w := post(t, srv.Handler(), config.RouteAPI+config.RouteContactAges, config.MimeVCard, "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"contacts":[]}`, w.Body.String())
}

// -----------------------------------------------------------------------------
// Operational routes
// -----------------------------------------------------------------------------

func TestHealth(t *testing.T) {
	srv := newTestServer()

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, config.RouteHealth, nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestMetricsRoute(t *testing.T) {
	srv := newTestServer()
	h := srv.Handler()

	post(t, h, calculateAgePath, "application/json", `{"dob":"1990-06-15"}`)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, config.RouteMetrics, nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `goage_age_calculations_total{result="ok"} 1`)
	assert.Contains(t, w.Body.String(), `endpoint="/api/calculate-age"`)
}

func TestCalendarRoute(t *testing.T) {
	t.Run("Not routed without a feed", func(t *testing.T) {
		srv := newTestServer()

		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, config.RouteCalendar, nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Served through the router", func(t *testing.T) {
		srv := newTestServer()
		srv.Calendar = NewCalendarCache()
		srv.Calendar.Update([]byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"))
		h := srv.Handler()

		for _, method := range []string{http.MethodGet, http.MethodHead} {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(method, config.RouteCalendar, nil))
			assert.Equal(t, http.StatusOK, w.Code, method)
		}

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, config.RouteCalendar, nil))
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}

func TestCORS(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodOptions, calculateAgePath, nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}
