package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/ticketsheet/internal/config"
	"github.com/JonMunkholm/ticketsheet/internal/core"
	"github.com/JonMunkholm/ticketsheet/internal/store"
	"github.com/JonMunkholm/ticketsheet/internal/workbook"
)

const ticketsCSV = "Ticket Number,Owner,Added\n" +
	"T1,alice,44197.5\n" +
	"T1,alice,1/1/2021  12:00:00 PM\n" +
	"T2,bob,\n"

func testConfig() *config.Config {
	return &config.Config{
		Upload:   config.UploadConfig{MaxFileSize: 1 << 20},
		Security: config.SecurityConfig{EnableCSP: true},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) (*Server, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	svc := core.NewService(mem, workbook.Decode, core.ServiceOptions{
		MaxConcurrentSaves: 2,
		MaxSaveWait:        100 * time.Millisecond,
	})
	s := NewServer(svc, cfg)
	t.Cleanup(func() { s.Shutdown(context.Background()) })
	return s, mem
}

func do(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	return rr
}

func uploadRequest(t *testing.T, fileName, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if fileName != "" {
		fw, err := mw.CreateFormFile("file", fileName)
		if err != nil {
			t.Fatal(err)
		}
		io.WriteString(fw, content)
	} else {
		mw.WriteField("note", "no file here")
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/workbooks", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func jsonRequest(method, path, body string) *http.Request {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return v
}

func openWorkbook(t *testing.T, s *Server) core.SessionSummary {
	t.Helper()
	rr := do(t, s, uploadRequest(t, "tickets.csv", ticketsCSV))
	if rr.Code != http.StatusCreated {
		t.Fatalf("upload status = %d, body %s", rr.Code, rr.Body)
	}
	return decodeBody[core.SessionSummary](t, rr)
}

// ----------------------------------------------------------------------------
// Workbook flow
// ----------------------------------------------------------------------------

func TestWorkbookFlow(t *testing.T) {
	s, mem := newTestServer(t, testConfig())

	sum := openWorkbook(t, s)
	if sum.FileName != "tickets.csv" || sum.RowCount != 3 || sum.Selected != "Sheet1" {
		t.Fatalf("summary = %+v", sum)
	}
	base := "/api/workbooks/" + sum.ID

	// dedupe
	rr := do(t, s, jsonRequest(http.MethodPost, base+"/dedupe", ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("dedupe status = %d, body %s", rr.Code, rr.Body)
	}
	dd := decodeBody[DedupeResponse](t, rr)
	if dd.Removed != 1 || dd.Key != "Ticket Number" || dd.Summary.RowCount != 2 {
		t.Errorf("dedupe = %+v", dd)
	}

	// sort
	rr = do(t, s, jsonRequest(http.MethodPost, base+"/sort", `{"column":0,"dir":"desc"}`))
	if rr.Code != http.StatusOK {
		t.Fatalf("sort status = %d, body %s", rr.Code, rr.Body)
	}
	sr := decodeBody[SortResponse](t, rr)
	if sr.Column != "Ticket Number" || sr.Dir != core.Desc {
		t.Errorf("sort = %+v", sr)
	}

	// export
	rr = do(t, s, httptest.NewRequest(http.MethodGet, base+"/export?format=csv", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("export status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "tickets-edited.csv") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	wantCSV := "Ticket Number,Owner,Added\nT2,bob,\nT1,alice,1/1/2021  12:00:00 PM\n"
	if got := rr.Body.String(); got != wantCSV {
		t.Errorf("export body = %q, want %q", got, wantCSV)
	}

	// save
	rr = do(t, s, jsonRequest(http.MethodPost, base+"/save", ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("save status = %d, body %s", rr.Code, rr.Body)
	}
	if sv := decodeBody[SaveResponse](t, rr); sv.Saved != 2 || sv.Chunks != 1 {
		t.Errorf("save = %+v", sv)
	}
	if mem.Len() != 2 {
		t.Errorf("stored = %d, want 2", mem.Len())
	}

	// list
	rr = do(t, s, httptest.NewRequest(http.MethodGet, "/api/tickets?owner=alice", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d, body %s", rr.Code, rr.Body)
	}
	page := decodeBody[TicketPage](t, rr)
	if page.TotalItems != 1 || page.TotalPages != 1 || page.Page != 1 || page.PageSize != core.PageSize {
		t.Errorf("page = %+v", page)
	}
	if len(page.Items) == 1 {
		item := page.Items[0]
		if item["ticket_number"] != "T1" || item["added"] != "1/1/2021  12:00:00 PM" {
			t.Errorf("item = %v", item)
		}
	}
	if page.Sort != "ticket_number" || page.Dir != core.Asc {
		t.Errorf("default sort = %s %s", page.Sort, page.Dir)
	}

	// close
	rr = do(t, s, httptest.NewRequest(http.MethodDelete, base, nil))
	if rr.Code != http.StatusNoContent {
		t.Errorf("close status = %d", rr.Code)
	}
	rr = do(t, s, httptest.NewRequest(http.MethodGet, base, nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("summary after close = %d, want 404", rr.Code)
	}
}

func TestSelectSheetAndExportXLSX(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	sum := openWorkbook(t, s)
	base := "/api/workbooks/" + sum.ID

	rr := do(t, s, jsonRequest(http.MethodPost, base+"/sheet", `{"sheet":"Archive"}`))
	if rr.Code != http.StatusNotFound {
		t.Errorf("select missing sheet = %d, want 404", rr.Code)
	}
	if er := decodeBody[ErrorResponse](t, rr); er.Code != "COL002" {
		t.Errorf("code = %s, want COL002", er.Code)
	}

	rr = do(t, s, jsonRequest(http.MethodPost, base+"/sheet", `{"sheet":"Sheet1"}`))
	if rr.Code != http.StatusOK {
		t.Errorf("select sheet = %d", rr.Code)
	}

	rr = do(t, s, httptest.NewRequest(http.MethodGet, base+"/export", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("export status = %d", rr.Code)
	}
	wb, err := workbook.Decode(t.Context(), "x.xlsx", rr.Body.Bytes())
	if err != nil {
		t.Fatalf("decode exported xlsx: %v", err)
	}
	if got := core.CountDataRows(wb.Sheets[0]); got != 3 {
		t.Errorf("exported rows = %d, want 3", got)
	}

	rr = do(t, s, httptest.NewRequest(http.MethodGet, base+"/export?format=pdf", nil))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("export pdf = %d, want 400", rr.Code)
	}
}

// ----------------------------------------------------------------------------
// Errors
// ----------------------------------------------------------------------------

func TestAPIErrors(t *testing.T) {
	cfg := testConfig()
	s, _ := newTestServer(t, cfg)
	sum := openWorkbook(t, s)

	tests := []struct {
		name       string
		req        *http.Request
		wantStatus int
		wantCode   string
	}{
		{"unsupported extension", uploadRequest(t, "notes.txt", "x"), http.StatusUnsupportedMediaType, "FILE001"},
		{"corrupt xlsx", uploadRequest(t, "bad.xlsx", "not a zip"), http.StatusUnprocessableEntity, "FILE002"},
		{"no file", uploadRequest(t, "", ""), http.StatusBadRequest, "FILE004"},
		{"unknown session", httptest.NewRequest(http.MethodGet, "/api/workbooks/nope", nil), http.StatusNotFound, "UPL001"},
		{"save unknown session", jsonRequest(http.MethodPost, "/api/workbooks/nope/save", ""), http.StatusNotFound, "UPL001"},
		{"sort out of range", jsonRequest(http.MethodPost, "/api/workbooks/"+sum.ID+"/sort", `{"column":9}`), http.StatusBadRequest, "COL001"},
		{"sort bad json", jsonRequest(http.MethodPost, "/api/workbooks/"+sum.ID+"/sort", `{`), http.StatusBadRequest, "REQ001"},
		{"unknown sort field", httptest.NewRequest(http.MethodGet, "/api/tickets?sort=nope", nil), http.StatusBadRequest, "COL001"},
		{"non-date date field", httptest.NewRequest(http.MethodGet, "/api/tickets?date_field=owner&month=1", nil), http.StatusBadRequest, "COL001"},
		{"month out of range", httptest.NewRequest(http.MethodGet, "/api/tickets?month=13", nil), http.StatusBadRequest, "REQ001"},
		{"day not a number", httptest.NewRequest(http.MethodGet, "/api/tickets?day=x", nil), http.StatusBadRequest, "REQ001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, s, tt.req)
			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", rr.Code, tt.wantStatus, rr.Body)
			}
			if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
			er := decodeBody[ErrorResponse](t, rr)
			if er.Code != tt.wantCode || er.Message == "" {
				t.Errorf("error = %+v, want code %s", er, tt.wantCode)
			}
		})
	}
}

func TestUploadTooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.Upload.MaxFileSize = 256
	s, _ := newTestServer(t, cfg)

	rr := do(t, s, uploadRequest(t, "big.csv", strings.Repeat("T1,alice\n", 200)))
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413 (body %s)", rr.Code, rr.Body)
	}
	if er := decodeBody[ErrorResponse](t, rr); er.Code != "FILE005" {
		t.Errorf("code = %s, want FILE005", er.Code)
	}
}

func TestDedupeWithoutKeyColumn(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	rr := do(t, s, uploadRequest(t, "owners.csv", "Owner\nalice\nalice\n"))
	sum := decodeBody[core.SessionSummary](t, rr)

	rr = do(t, s, jsonRequest(http.MethodPost, "/api/workbooks/"+sum.ID+"/dedupe", ""))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
	if er := decodeBody[ErrorResponse](t, rr); er.Code != "COL001" || !strings.Contains(er.Message, "Ticket Number") {
		t.Errorf("error = %+v", er)
	}
}

// ----------------------------------------------------------------------------
// Pages and middleware
// ----------------------------------------------------------------------------

func TestTicketsPage(t *testing.T) {
	s, mem := newTestServer(t, testConfig())
	recs := make([]core.Record, 25)
	for i := range recs {
		recs[i] = core.Record{
			core.FieldTicketNumber: core.Text(string(rune('A'+i)) + "-1"),
			core.FieldOwner:        core.Text("<b>alice</b>"),
		}
	}
	if err := mem.UpsertBatch(t.Context(), recs); err != nil {
		t.Fatal(err)
	}

	rr := do(t, s, httptest.NewRequest(http.MethodGet, "/tickets?page=2", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{
		"25 tickets, page 2 of 2",
		"Ticket Number ▲",
		"&lt;b&gt;alice&lt;/b&gt;",
		"Previous</a>",
		"/tickets?dir=desc&amp;sort=ticket_number",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(body, "Next</a>") {
		t.Error("last page links to a next page")
	}
	if strings.Contains(body, "<b>alice</b>") {
		t.Error("cell text was not escaped")
	}
}

func TestTicketsPage_ErrorIsHTML(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	rr := do(t, s, httptest.NewRequest(http.MethodGet, "/tickets?sort=bogus", nil))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rr.Body.String(), "COL001") {
		t.Error("error fragment missing code")
	}
}

func TestUploadPageAndHealth(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	rr := do(t, s, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `name="file"`) {
		t.Errorf("upload page status %d", rr.Code)
	}
	if rr.Header().Get("X-Frame-Options") != "DENY" || rr.Header().Get("Content-Security-Policy") == "" {
		t.Error("security headers missing")
	}

	openWorkbook(t, s)
	rr = do(t, s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	health := decodeBody[map[string]any](t, rr)
	if health["status"] != "ok" || health["sessions"] != float64(1) {
		t.Errorf("health = %v", health)
	}

	rr = do(t, s, httptest.NewRequest(http.MethodGet, "/api/saves/status", nil))
	if st := decodeBody[core.UploadLimiterStatus](t, rr); st.MaxConcurrent != 2 || st.Available != 2 {
		t.Errorf("save status = %+v", st)
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 2}
	s, _ := newTestServer(t, cfg)

	for i := 0; i < 2; i++ {
		if rr := do(t, s, httptest.NewRequest(http.MethodGet, "/healthz", nil)); rr.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i+1, rr.Code)
		}
	}
	rr := do(t, s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", rr.Code)
	}
	if er := decodeBody[ErrorResponse](t, rr); er.Code != "RATE001" {
		t.Errorf("code = %s, want RATE001", er.Code)
	}

	// Another client has its own bucket.
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.RemoteAddr = "10.9.9.9:4000"
	if rr := do(t, s, req); rr.Code != http.StatusOK {
		t.Errorf("other client status = %d", rr.Code)
	}
}

func TestAPIKeyAuth(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RequireAPIKey = true
	cfg.Security.APIKeys = []string{"k1", "secret"}
	s, _ := newTestServer(t, cfg)

	tests := []struct {
		name       string
		header     string
		value      string
		wantStatus int
	}{
		{"missing", "", "", http.StatusUnauthorized},
		{"wrong", "X-API-Key", "nope", http.StatusForbidden},
		{"header", "X-API-Key", "secret", http.StatusOK},
		{"bearer", "Authorization", "Bearer k1", http.StatusOK},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/tickets", nil)
		if tt.header != "" {
			req.Header.Set(tt.header, tt.value)
		}
		if rr := do(t, s, req); rr.Code != tt.wantStatus {
			t.Errorf("%s: status = %d, want %d", tt.name, rr.Code, tt.wantStatus)
		}
	}

	// Pages stay public.
	if rr := do(t, s, httptest.NewRequest(http.MethodGet, "/healthz", nil)); rr.Code != http.StatusOK {
		t.Errorf("healthz status = %d", rr.Code)
	}
}
