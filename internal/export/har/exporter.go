package har

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sadopc/curlcap/internal/capture"
	curlimport "github.com/sadopc/curlcap/internal/import/curl"
	"github.com/sadopc/curlcap/internal/protocol"
	"github.com/sadopc/curlcap/internal/version"
)

// HAR represents the HAR 1.2 format for export.
type HAR struct {
	Log HARLog `json:"log"`
}

// HARLog is the top-level log object.
type HARLog struct {
	Version string     `json:"version"`
	Creator HARCreator `json:"creator"`
	Entries []HAREntry `json:"entries"`
}

// HARCreator identifies the tool that created the HAR.
type HARCreator struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// HAREntry represents a single request/response pair.
type HAREntry struct {
	StartedDateTime string      `json:"startedDateTime"`
	Time            float64     `json:"time"`
	Request         HARRequest  `json:"request"`
	Response        HARResponse `json:"response"`
	Timings         HARTimings  `json:"timings"`
	Comment         string      `json:"comment,omitempty"`
}

// HARRequest is the request portion of an entry.
type HARRequest struct {
	Method      string       `json:"method"`
	URL         string       `json:"url"`
	HTTPVersion string       `json:"httpVersion"`
	Headers     []HARHeader  `json:"headers"`
	QueryString []HARQuery   `json:"queryString"`
	PostData    *HARPostData `json:"postData,omitempty"`
	HeadersSize int          `json:"headersSize"`
	BodySize    int          `json:"bodySize"`
}

// HARResponse is the response portion of an entry.
type HARResponse struct {
	Status      int         `json:"status"`
	StatusText  string      `json:"statusText"`
	HTTPVersion string      `json:"httpVersion"`
	Headers     []HARHeader `json:"headers"`
	Content     HARContent  `json:"content"`
	RedirectURL string      `json:"redirectURL"`
	HeadersSize int         `json:"headersSize"`
	BodySize    int         `json:"bodySize"`
}

// HARHeader is a name/value pair for headers.
type HARHeader struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// HARQuery is a name/value pair for query string parameters.
type HARQuery struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// HARPostData is the body of a request.
type HARPostData struct {
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
}

// HARContent is the body of a response.
type HARContent struct {
	Size     int    `json:"size"`
	MimeType string `json:"mimeType"`
	Text     string `json:"text,omitempty"`
}

// HARTimings holds timing info for an entry. Capture does not record
// timings, so every phase is reported as unknown.
type HARTimings struct {
	Send    float64 `json:"send"`
	Wait    float64 `json:"wait"`
	Receive float64 `json:"receive"`
}

// Export creates a HAR 1.2 JSON document from captured records, in the
// order given. Method, headers and body are recovered from each record's
// curl command.
func Export(records []capture.Record) ([]byte, error) {
	started := time.Now().UTC().Format(time.RFC3339)

	entries := make([]HAREntry, 0, len(records))
	for _, rec := range records {
		entry := HAREntry{
			StartedDateTime: started,
			Time:            0,
			Request:         buildHARRequest(rec),
			Response:        buildHARResponse(rec),
		}
		if rec.ErrorText != nil {
			entry.Comment = *rec.ErrorText
		}
		entries = append(entries, entry)
	}

	har := HAR{
		Log: HARLog{
			Version: "1.2",
			Creator: HARCreator{Name: "curlcap", Version: version.Version},
			Entries: entries,
		},
	}

	return json.MarshalIndent(har, "", "  ")
}

// WriteFile writes records as a HAR file at path, creating its directory.
func WriteFile(path string, records []capture.Record) error {
	data, err := Export(records)
	if err != nil {
		return fmt.Errorf("building HAR: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing HAR: %w", err)
	}
	return nil
}

func buildHARRequest(rec capture.Record) HARRequest {
	req, err := curlimport.ParseCurl(rec.Command)
	if err != nil {
		req = &protocol.Request{Method: "GET", URL: rec.URL}
	}

	harReq := HARRequest{
		Method:      req.Method,
		URL:         rec.URL,
		HTTPVersion: "HTTP/1.1",
		Headers:     []HARHeader{},
		QueryString: []HARQuery{},
		HeadersSize: -1,
		BodySize:    len(req.Body),
	}

	names := make([]string, 0, len(req.Headers))
	for k := range req.Headers {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		harReq.Headers = append(harReq.Headers, HARHeader{Name: k, Value: req.Headers[k]})
	}

	if u, err := url.Parse(rec.URL); err == nil {
		q := u.Query()
		keys := make([]string, 0, len(q))
		for k := range q {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			for _, v := range q[k] {
				harReq.QueryString = append(harReq.QueryString, HARQuery{Name: k, Value: v})
			}
		}
	}

	if req.HasBody() {
		mimeType := "text/plain"
		for k, v := range req.Headers {
			if strings.EqualFold(k, "Content-Type") {
				mimeType = v
			}
		}
		harReq.PostData = &HARPostData{
			MimeType: mimeType,
			Text:     string(req.Body),
		}
	}

	return harReq
}

func buildHARResponse(rec capture.Record) HARResponse {
	code, _ := rec.Status.HTTPCode()
	body := rec.Body()
	if rec.Status.IsFailed() && rec.ErrorText != nil && body == *rec.ErrorText {
		// The failure text stands in for the body in the ledger; it is
		// not response content.
		body = ""
	}

	return HARResponse{
		Status:      code,
		StatusText:  statusText(rec.Status),
		HTTPVersion: "HTTP/1.1",
		Headers:     []HARHeader{},
		Content: HARContent{
			Size:     len(body),
			MimeType: rec.Mime(),
			Text:     body,
		},
		HeadersSize: -1,
		BodySize:    -1,
	}
}

func statusText(s capture.Status) string {
	if _, ok := s.HTTPCode(); ok {
		return ""
	}
	return s.String()
}
