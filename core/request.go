package core

// Request is a single free-text query submitted to an agent. It carries no
// identity and is discarded after the response: created at invocation, never
// persisted.
type Request struct {
	Query string `json:"query"`
}

// NewRequest wraps a query string in a Request.
func NewRequest(query string) *Request {
	return &Request{Query: query}
}
