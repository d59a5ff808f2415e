package testutil

import (
	"bufio"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
)

// Get serves a GET request for path through h and returns the recorder.
func Get(h http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// ParseMetrics reads the value lines of a text exposition body into a map
// keyed by metric name. Comment lines are skipped.
func ParseMetrics(t interface {
	Errorf(format string, args ...interface{})
	FailNow()
}, body string) map[string]float64 {
	values := make(map[string]float64)
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			t.Errorf("unexpected metric line %q", line)
			t.FailNow()
		}
		v, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			t.Errorf("unparsable value in %q: %v", line, err)
			t.FailNow()
		}
		values[fields[0]] = v
	}
	return values
}
