// Package archive turns captured records into downloadable bundles.
package archive

import (
	"mime"
	"strings"

	"github.com/sadopc/curlcap/internal/capture"
)

// File names used inside a bundle.
const (
	RequestFile      = "request.txt"
	ResponseJSONFile = "response.json"
	ResponseTextFile = "response.txt"
)

// File is one named buffer of a bundle.
type File struct {
	Name string
	Data []byte
}

// Bundle is the set of files exported for one record.
type Bundle struct {
	RequestID string
	Files     []File
}

// Size returns the total number of bytes in the bundle.
func (b Bundle) Size() int64 {
	var n int64
	for _, f := range b.Files {
		n += int64(len(f.Data))
	}
	return n
}

// Build converts a record into exactly two files: the curl command and the
// response. The response file holds the captured body, or the status when
// no body was captured, and is named for the record's mime type.
func Build(rec capture.Record) Bundle {
	response := rec.Status.String()
	if rec.ResponseBody != nil {
		response = *rec.ResponseBody
	}

	return Bundle{
		RequestID: rec.ID,
		Files: []File{
			{Name: RequestFile, Data: []byte(rec.Command)},
			{Name: responseName(rec.Mime()), Data: []byte(response)},
		},
	}
}

func responseName(mimeType string) string {
	if IsJSON(mimeType) {
		return ResponseJSONFile
	}
	return ResponseTextFile
}

// IsJSON reports whether a mime type denotes JSON, including structured
// suffix types such as application/problem+json.
func IsJSON(mimeType string) bool {
	mt, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(mimeType))
	}
	return mt == "application/json" || mt == "text/json" || strings.HasSuffix(mt, "+json")
}
