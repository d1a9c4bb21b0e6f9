package web

// handlers_common.go holds request parsing shared by the API and page handlers.

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/JonMunkholm/ticketsheet/internal/core"
)

// listQuery is the parsed form of the ticket listing parameters.
type listQuery struct {
	Filter core.FilterSpec
	Sort   core.SortSpec
	Page   int
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// parseBoundedParam parses an optional integer in [1, max]; empty is 0.
func parseBoundedParam(q url.Values, name string, max int) (int, error) {
	val := strings.TrimSpace(q.Get(name))
	if val == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil || n < 1 || n > max {
		return 0, badRequest(fmt.Sprintf("%s must be a number between 1 and %d", name, max))
	}
	return n, nil
}

// parseListQuery reads page, sort, dir, owner, month, day, date_field and q.
// Unknown sort or date fields are MissingColumnErrors.
func parseListQuery(r *http.Request) (listQuery, error) {
	q := r.URL.Query()
	lq := listQuery{Sort: core.DefaultSort, Page: parseIntParam(r, "page", 1)}

	month, err := parseBoundedParam(q, "month", 12)
	if err != nil {
		return lq, err
	}
	day, err := parseBoundedParam(q, "day", 31)
	if err != nil {
		return lq, err
	}
	lq.Filter = core.FilterSpec{
		Owner:  q.Get("owner"),
		Month:  month,
		Day:    day,
		Search: q.Get("q"),
	}

	if df := strings.TrimSpace(q.Get("date_field")); df != "" {
		f, ok := core.ParseField(df)
		if !ok || !f.IsDate() {
			return lq, &core.MissingColumnError{Field: core.Field(df)}
		}
		lq.Filter.DateField = f
	}

	if sf := strings.TrimSpace(q.Get("sort")); sf != "" {
		f, ok := core.ParseField(sf)
		if !ok {
			return lq, &core.MissingColumnError{Field: core.Field(sf)}
		}
		lq.Sort = core.SortSpec{Field: f, Dir: core.ParseDirection(q.Get("dir"))}
	} else if q.Get("dir") != "" {
		lq.Sort.Dir = core.ParseDirection(q.Get("dir"))
	}

	return lq, nil
}

// view builds a ViewState from the parsed query.
func (lq listQuery) view() (*core.ViewState, error) {
	v := core.NewViewState()
	if err := v.SetFilter(lq.Filter); err != nil {
		return nil, err
	}
	if err := v.SetSort(lq.Sort); err != nil {
		return nil, err
	}
	v.SetPage(lq.Page)
	return v, nil
}

// values encodes the query back into URL parameters, for page links.
func (lq listQuery) values() url.Values {
	v := url.Values{}
	if lq.Filter.Owner != "" {
		v.Set("owner", lq.Filter.Owner)
	}
	if lq.Filter.Month != 0 {
		v.Set("month", strconv.Itoa(lq.Filter.Month))
	}
	if lq.Filter.Day != 0 {
		v.Set("day", strconv.Itoa(lq.Filter.Day))
	}
	if lq.Filter.DateField != "" {
		v.Set("date_field", string(lq.Filter.DateField))
	}
	if lq.Filter.Search != "" {
		v.Set("q", lq.Filter.Search)
	}
	if lq.Sort.Field != "" {
		v.Set("sort", string(lq.Sort.Field))
		v.Set("dir", string(lq.Sort.Dir))
	}
	if lq.Page > 1 {
		v.Set("page", strconv.Itoa(lq.Page))
	}
	return v
}

// readUpload reads the multipart "file" field, bounded by maxSize.
func readUpload(w http.ResponseWriter, r *http.Request, maxSize int64) (string, []byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return "", nil, errTooLarge
		}
		return "", nil, badRequest("invalid multipart form")
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, errNoFile
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	return header.Filename, data, nil
}

// decodeJSON reads a small JSON request body into v.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		return badRequest("invalid JSON body")
	}
	return nil
}

// clientIP returns the host part of RemoteAddr.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
