package capture

import "sort"

// Record is the accumulated state of one network exchange.
type Record struct {
	ID      string `json:"id"`
	Seq     uint64 `json:"seq"`
	URL     string `json:"url"`
	Command string `json:"command"`
	Status  Status `json:"status"`

	MimeType     *string `json:"mimeType,omitempty"`
	ResponseBody *string `json:"responseBody,omitempty"`
	ErrorText    *string `json:"errorText,omitempty"`
}

// Patch is a partial update to a Record. Nil fields are left untouched.
type Patch struct {
	Status       *Status
	MimeType     *string
	ResponseBody *string
	ErrorText    *string
}

// Ptr returns a pointer to v, for building patches.
func Ptr[T any](v T) *T {
	return &v
}

// HasBody reports whether a response body was captured.
func (r Record) HasBody() bool {
	return r.ResponseBody != nil
}

// Mime returns the mime type or "" when no response headers were seen.
func (r Record) Mime() string {
	if r.MimeType == nil {
		return ""
	}
	return *r.MimeType
}

// Body returns the response body or "" when none was captured.
func (r Record) Body() string {
	if r.ResponseBody == nil {
		return ""
	}
	return *r.ResponseBody
}

// apply merges p into r. A terminal status is never replaced.
func (r *Record) apply(p Patch) {
	if p.Status != nil && !r.Status.Terminal() {
		r.Status = *p.Status
	}
	if p.MimeType != nil {
		r.MimeType = Ptr(*p.MimeType)
	}
	if p.ResponseBody != nil {
		r.ResponseBody = Ptr(*p.ResponseBody)
	}
	if p.ErrorText != nil {
		r.ErrorText = Ptr(*p.ErrorText)
	}
}

func (r Record) clone() Record {
	c := r
	if r.MimeType != nil {
		c.MimeType = Ptr(*r.MimeType)
	}
	if r.ResponseBody != nil {
		c.ResponseBody = Ptr(*r.ResponseBody)
	}
	if r.ErrorText != nil {
		c.ErrorText = Ptr(*r.ErrorText)
	}
	return c
}

// Sorted returns the records of a snapshot in arrival order.
func Sorted(snapshot map[string]Record) []Record {
	out := make([]Record, 0, len(snapshot))
	for _, r := range snapshot {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}
