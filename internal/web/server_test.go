package web

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/regioncompare/internal/config"
	"github.com/JonMunkholm/regioncompare/internal/core"
	"github.com/JonMunkholm/regioncompare/internal/dataset"
	"github.com/JonMunkholm/regioncompare/internal/session"
	"github.com/jackc/pgx/v5/pgtype"
)

func f8(v float64) pgtype.Float8 { return pgtype.Float8{Float64: v, Valid: true} }

func testStore() *core.Store {
	return core.NewStore(
		core.Directory{
			{Name: "东亚", Countries: []core.Country{
				{Name: "China", Chinese: "中国", Code: "CN"},
				{Name: "Japan", Chinese: "日本", Code: "JP"},
				{Name: "North Korea", Chinese: "朝鲜", Code: "KP"},
			}},
			{Name: "西欧", Countries: []core.Country{
				{Name: "France", Chinese: "法国", Code: "FR"},
			}},
		},
		core.Records{
			{Region: "东亚", Records: []core.CountryRecord{
				{Chinese: "中国", Values: map[string]pgtype.Float8{"population": f8(1.41e9), "area": f8(9596960)}},
				{Chinese: "日本", Values: map[string]pgtype.Float8{"population": f8(1.25e8)}},
			}},
			{Region: "西欧", Records: []core.CountryRecord{
				{Chinese: "法国", Values: map[string]pgtype.Float8{"population": f8(6.8e7)}},
			}},
		},
	)
}

func testConfig(csvPath string) *config.Config {
	return &config.Config{
		Server:  config.ServerConfig{Port: 8080, RequestTimeout: 5 * time.Second, ShutdownTimeout: time.Second},
		Data:    config.DataConfig{Source: config.SourceFile, CSVPath: csvPath},
		Session: config.SessionConfig{CookieName: "rc_session", TTL: time.Hour, SweepInterval: time.Minute, MaxSessions: 100},
		Rate:    config.RateLimitConfig{Enabled: false},
		Security: config.SecurityConfig{
			EnableCSP: true,
		},
	}
}

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	csvPath := filepath.Join(t.TempDir(), "merged_country_data.csv")
	store := testStore()
	cfg := testConfig(csvPath)
	s := NewServer(store, session.NewManager(store, session.Config{}), dataset.Availability{CSVPath: csvPath}, cfg)
	t.Cleanup(func() { s.Shutdown(t.Context()) })
	return s, csvPath
}

// client replays the session cookie across requests.
type client struct {
	t      *testing.T
	s      *Server
	cookie *http.Cookie
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rec := httptest.NewRecorder()
	c.s.Router().ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "rc_session" {
			c.cookie = ck
		}
	}
	return rec
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *client) postJSON(path string, body any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func TestIndex_IssuesSession(t *testing.T) {
	s, _ := newTestServer(t)
	c := &client{t: t, s: s}

	rec := c.get("/")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET / status = %d, want 200", rec.Code)
	}
	if c.cookie == nil || c.cookie.Value == "" {
		t.Fatal("GET / did not set a session cookie")
	}
	body := rec.Body.String()
	for _, want := range []string{"东亚", "中国", "人口", core.SelectAllValue} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if rec.Header().Get("Content-Security-Policy") == "" {
		t.Error("CSP header missing")
	}

	first := c.cookie.Value
	c.get("/")
	if c.cookie.Value != first {
		t.Error("session cookie rotated on second request")
	}
}

func TestCompareFlow(t *testing.T) {
	s, _ := newTestServer(t)
	c := &client{t: t, s: s}
	c.get("/")

	rec := c.post("/countries/toggle", url.Values{"country": {"日本"}, "selected": {"true"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("toggle status = %d, want 303", rec.Code)
	}
	c.post("/countries/toggle", url.Values{"country": {"中国"}, "selected": {"true"}})
	c.post("/indicators/toggle", url.Values{"key": {"area"}, "active": {"false"}})

	rec = c.post("/compare", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("compare status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "14.10 億") || !strings.Contains(body, "1.25 億") {
		t.Errorf("compare page missing formatted populations")
	}
	// Rows follow region order, not selection order
	if strings.Index(body, `<th scope="row">中国`) > strings.Index(body, `<th scope="row">日本`) {
		t.Error("rows not in region order")
	}
	if strings.Contains(body, "<th>面积</th>") {
		t.Error("deactivated indicator still shown")
	}

	rec = c.get("/compare/export.csv")
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d, want 200", rec.Code)
	}
	raw := rec.Body.Bytes()
	if !bytes.HasPrefix(raw, []byte(utf8BOM)) {
		t.Error("export missing BOM")
	}
	rows, err := csv.NewReader(bytes.NewReader(raw[len(utf8BOM):])).ReadAll()
	if err != nil {
		t.Fatalf("export CSV invalid: %v", err)
	}
	if len(rows) != 3 || rows[0][0] != core.CountryColumnLabel || rows[1][0] != "中国" {
		t.Errorf("export rows = %v", rows)
	}
}

func TestCompare_EmptySelectionKeepsPriorTable(t *testing.T) {
	s, _ := newTestServer(t)
	c := &client{t: t, s: s}
	c.get("/")

	rec := c.post("/compare", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("empty compare status = %d, want 422", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, "SEL001") || !strings.Contains(body, "请至少选择一个国家进行比较。") {
		t.Error("empty compare missing SEL001 message")
	}

	c.post("/countries/toggle", url.Values{"country": {"中国"}})
	if rec := c.post("/compare", nil); rec.Code != http.StatusOK {
		t.Fatalf("compare status = %d, want 200", rec.Code)
	}
	c.post("/countries/clear", nil)

	rec = c.post("/compare", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("second empty compare status = %d, want 422", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "14.10 億") {
		t.Error("prior table dropped after failed compare")
	}
}

func TestSelectAllAndRegionSwitch(t *testing.T) {
	s, _ := newTestServer(t)
	c := &client{t: t, s: s}
	c.get("/")

	c.post("/countries/toggle", url.Values{"country": {core.SelectAllValue}, "selected": {"true"}})
	if rec := c.post("/region", url.Values{"region": {"西欧"}}); rec.Code != http.StatusSeeOther {
		t.Fatalf("region status = %d, want 303", rec.Code)
	}
	c.post("/countries/select-all", url.Values{"selected": {"true"}})

	rec := c.post("/compare", nil)
	body := rec.Body.String()
	if !strings.Contains(body, `<th scope="row">法国`) {
		t.Error("西欧 table missing 法国")
	}
	if strings.Contains(body, `<th scope="row">中国`) {
		t.Error("table shows a country from another region")
	}
	if !strings.Contains(body, "其他区域已选国家") {
		t.Error("page does not list selections from other regions")
	}
}

func TestMutations_Errors(t *testing.T) {
	s, _ := newTestServer(t)
	c := &client{t: t, s: s}
	c.get("/")

	tests := []struct {
		path string
		form url.Values
		want int
	}{
		{"/region", url.Values{"region": {"火星"}}, http.StatusNotFound},
		{"/region", url.Values{}, http.StatusBadRequest},
		{"/countries/toggle", url.Values{}, http.StatusBadRequest},
		{"/indicators/toggle", url.Values{"key": {"nope"}}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		if rec := c.post(tt.path, tt.form); rec.Code != tt.want {
			t.Errorf("POST %s %v status = %d, want %d", tt.path, tt.form, rec.Code, tt.want)
		}
	}
}

func TestExport_NoTable(t *testing.T) {
	s, _ := newTestServer(t)
	c := &client{t: t, s: s}

	rec := c.get("/compare/export.csv")
	if rec.Code != http.StatusNotFound {
		t.Errorf("export without table status = %d, want 404", rec.Code)
	}
	want := "There is no comparison to export (Code: DATA003). Run a comparison first"
	if !strings.Contains(rec.Body.String(), want) {
		t.Errorf("body = %q, want %q", rec.Body.String(), want)
	}
}

func TestSelectedChips_FollowSelectionOrder(t *testing.T) {
	s, _ := newTestServer(t)
	c := &client{t: t, s: s}
	c.get("/")

	// Region order is 中国, 日本, 朝鲜; select in a different order.
	for _, name := range []string{"朝鲜", "中国"} {
		c.post("/countries/toggle", url.Values{"country": {name}, "selected": {"true"}})
	}
	c.post("/region", url.Values{"region": {"西欧"}})
	c.post("/countries/toggle", url.Values{"country": {"法国"}, "selected": {"true"}})

	body := c.get("/").Body.String()
	start := strings.Index(body, `id="selected-countries"`)
	if start < 0 {
		t.Fatal("page has no selected country list")
	}
	chips := body[start:]
	chips = chips[:strings.Index(chips, "</ul>")]

	last := -1
	for _, name := range []string{"朝鲜", "中国", "法国"} {
		i := strings.Index(chips, "<span>"+name+"</span>")
		if i < 0 {
			t.Fatalf("chip %q missing", name)
		}
		if i < last {
			t.Errorf("chip %q out of selection order", name)
		}
		last = i
	}
	if strings.Contains(chips, "日本") {
		t.Error("unselected country shown as a chip")
	}

	c.post("/countries/toggle", url.Values{"country": {"中国"}, "selected": {"false"}})
	body = c.get("/").Body.String()
	if strings.Contains(body, "<span>中国</span>") {
		t.Error("removed chip still shown")
	}
}

func TestWithWorkspace_ExpiredSession(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(withSession(req.Context(), "00000000-0000-0000-0000-000000000000"))
	rec := httptest.NewRecorder()

	called := false
	err := s.withWorkspace(rec, req, func(ws *core.Workspace) error {
		called = ws != nil
		return nil
	})
	if err != nil {
		t.Fatalf("withWorkspace() error = %v", err)
	}
	if !called {
		t.Error("fn not run on a replacement workspace")
	}
	if s.sessions.Len() != 1 {
		t.Errorf("sessions = %d, want 1", s.sessions.Len())
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "rc_session" || cookies[0].Value == "" {
		t.Errorf("cookies = %v, want a new rc_session", cookies)
	}
}

func TestDownloadMerged(t *testing.T) {
	s, csvPath := newTestServer(t)
	c := &client{t: t, s: s}

	if rec := c.get("/download/merged_country_data.csv"); rec.Code != http.StatusNotFound {
		t.Errorf("missing csv status = %d, want 404", rec.Code)
	}
	if strings.Contains(c.get("/").Body.String(), "/download/merged_country_data.csv") {
		t.Error("download link shown without CSV")
	}

	if err := os.WriteFile(csvPath, []byte("region,name\n东亚,China\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	rec := c.get("/download/merged_country_data.csv")
	if rec.Code != http.StatusOK {
		t.Fatalf("csv status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "东亚,China") {
		t.Errorf("csv body = %q", rec.Body.String())
	}
	if !strings.Contains(c.get("/").Body.String(), "/download/merged_country_data.csv") {
		t.Error("download link missing with CSV present")
	}
}

func TestAPI(t *testing.T) {
	s, _ := newTestServer(t)
	c := &client{t: t, s: s}

	var regions []RegionSummary
	rec := c.get("/api/regions")
	if err := json.Unmarshal(rec.Body.Bytes(), &regions); err != nil {
		t.Fatalf("regions: %v", err)
	}
	if len(regions) != 2 || regions[0].Name != "东亚" || regions[0].Countries != 3 {
		t.Errorf("regions = %+v", regions)
	}

	rec = c.get("/api/regions/" + url.PathEscape("东亚") + "/countries")
	var countries []core.Country
	if err := json.Unmarshal(rec.Body.Bytes(), &countries); err != nil {
		t.Fatalf("countries: %v (%s)", err, rec.Body.String())
	}
	if len(countries) != 3 || countries[2].Chinese != "朝鲜" {
		t.Errorf("countries = %+v", countries)
	}

	rec = c.get("/api/regions/" + url.PathEscape("火星") + "/countries")
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "REG001") {
		t.Errorf("unknown region = %d %s", rec.Code, rec.Body.String())
	}

	var inds []core.Indicator
	rec = c.get("/api/indicators")
	if err := json.Unmarshal(rec.Body.Bytes(), &inds); err != nil || len(inds) != len(core.DefaultIndicators) {
		t.Errorf("indicators = %d, %v", len(inds), err)
	}

	var st StatusResponse
	rec = c.get("/api/status")
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("status: %v", err)
	}
	if st.LastModifiedText != dataset.UnknownDate || st.Regions != 2 {
		t.Errorf("status = %+v", st)
	}
}

func TestAPICompare(t *testing.T) {
	s, _ := newTestServer(t)
	c := &client{t: t, s: s}

	rec := c.postJSON("/api/compare", CompareRequest{
		Region:     "东亚",
		Countries:  []string{"朝鲜", "中国", "法国"},
		Indicators: []string{"population"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var table core.TableModel
	if err := json.Unmarshal(rec.Body.Bytes(), &table); err != nil {
		t.Fatal(err)
	}
	if len(table.Rows) != 2 || table.Rows[0].Country != "中国" || table.Rows[1].Country != "朝鲜" {
		t.Errorf("rows = %+v", table.Rows)
	}
	if cell := table.Rows[1].Cells[0]; cell.Text != core.NotAvailable || cell.Available {
		t.Errorf("朝鲜 cell = %+v, want N/A", cell)
	}

	rec = c.postJSON("/api/compare", CompareRequest{
		Region:     "东亚",
		Countries:  []string{"日本"},
		Indicators: []string{},
	})
	var bare core.TableModel
	if err := json.Unmarshal(rec.Body.Bytes(), &bare); err != nil {
		t.Fatal(err)
	}
	if len(bare.Header) != 1 || len(bare.Rows) != 1 || len(bare.Rows[0].Cells) != 0 {
		t.Errorf("empty indicators table = %+v, want country column only", bare)
	}

	rec = c.postJSON("/api/compare", CompareRequest{Region: "东亚", Countries: []string{"日本"}})
	var full core.TableModel
	if err := json.Unmarshal(rec.Body.Bytes(), &full); err != nil {
		t.Fatal(err)
	}
	if len(full.Keys) != len(core.DefaultIndicators) {
		t.Errorf("omitted indicators gave %d columns, want %d", len(full.Keys), len(core.DefaultIndicators))
	}

	errs := []struct {
		name string
		body any
		want int
		code string
	}{
		{"empty selection", CompareRequest{Region: "东亚"}, http.StatusUnprocessableEntity, "SEL001"},
		{"unknown region", CompareRequest{Region: "火星", Countries: []string{"中国"}}, http.StatusNotFound, "REG001"},
		{"unknown indicator", CompareRequest{Region: "东亚", Countries: []string{"中国"}, Indicators: []string{"x"}}, http.StatusBadRequest, "IND001"},
		{"bad body", "not an object", http.StatusBadRequest, "REQ003"},
	}
	for _, tt := range errs {
		t.Run(tt.name, func(t *testing.T) {
			rec := c.postJSON("/api/compare", tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			var er ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &er); err != nil {
				t.Fatalf("error body: %v", err)
			}
			if er.Code != tt.code {
				t.Errorf("code = %q, want %q", er.Code, tt.code)
			}
		})
	}
}

func TestAPI_RequiresKey(t *testing.T) {
	s, _ := newTestServer(t)
	s.cfg.Security.RequireAPIKey = true
	s.cfg.Security.APIKeys = []string{"secret"}
	c := &client{t: t, s: s}

	if rec := c.get("/api/regions"); rec.Code != http.StatusUnauthorized {
		t.Errorf("no key status = %d, want 401", rec.Code)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/regions", nil)
	req.Header.Set("X-API-Key", "secret")
	if rec := c.do(req); rec.Code != http.StatusOK {
		t.Errorf("valid key status = %d, want 200", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	c := &client{t: t, s: s}

	rec := c.get("/healthz")
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" || body["records"] != float64(3) {
		t.Errorf("health = %v", body)
	}
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := newRateLimiter(2, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	for i, want := range []bool{true, true, false} {
		if got := rl.allow("1.2.3.4"); got != want {
			t.Errorf("allow #%d = %v, want %v", i, got, want)
		}
	}
	if !rl.allow("5.6.7.8") {
		t.Error("other IP limited")
	}

	now = now.Add(2 * time.Minute)
	if !rl.allow("1.2.3.4") {
		t.Error("window did not reset")
	}
}

func TestRateLimit_Middleware(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "x.csv")
	store := testStore()
	cfg := testConfig(csvPath)
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 100, CompareLimit: 1}
	s := NewServer(store, session.NewManager(store, session.Config{}), dataset.Availability{CSVPath: csvPath}, cfg)
	t.Cleanup(func() { s.Shutdown(t.Context()) })
	c := &client{t: t, s: s}

	body := CompareRequest{Region: "东亚", Countries: []string{"中国"}}
	if rec := c.postJSON("/api/compare", body); rec.Code != http.StatusOK {
		t.Fatalf("first compare status = %d", rec.Code)
	}
	rec := c.postJSON("/api/compare", body)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second compare status = %d, want 429", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "RATE001") {
		t.Errorf("body = %q, want RATE001", rec.Body.String())
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{core.ErrEmptySelection, http.StatusUnprocessableEntity},
		{core.ErrUnknownRegion, http.StatusNotFound},
		{core.ErrUnknownIndicator, http.StatusBadRequest},
		{errInvalidRequest, http.StatusBadRequest},
		{errNoTable, http.StatusNotFound},
		{errRateLimited, http.StatusTooManyRequests},
		{os.ErrPermission, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
