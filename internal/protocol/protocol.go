package protocol

// Request describes an HTTP request as the browser reported it when the
// request was initiated.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

// HasBody reports whether the request carries post data.
func (r *Request) HasBody() bool {
	return r != nil && len(r.Body) > 0
}
