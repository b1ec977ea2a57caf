package core

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// Bunch is the offset/limit pagination contract used by every list endpoint.
type Bunch struct {
	Offset int
	Limit  int
}

// DefaultBunch fetches everything the client ever shows in one page.
var DefaultBunch = Bunch{Offset: 0, Limit: 1000}

// Query renders the bunch as the backend's query parameters.
func (b Bunch) Query() url.Values {
	q := url.Values{}
	q.Set("bunch", strconv.Itoa(b.Offset))
	q.Set("size", strconv.Itoa(b.Limit))
	return q
}

// Multipart describes a single-file multipart/form-data body.
type Multipart struct {
	FileField string
	FileName  string
	Content   io.Reader
	Fields    map[string]string
}

// Request is a single call against the wiki backend.
type Request struct {
	Method    string
	Path      string
	Query     url.Values
	JSON      any
	Multipart *Multipart
	// Discard skips buffering the response body. Used when only the
	// resolved URL of a resource matters.
	Discard bool
}

// Response is a successful (2xx) reply.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
	// URL is the final URL after redirects.
	URL string
}

// SyncClient defines the contract every component uses to reach the backend.
// Adhering to this interface keeps the components independent of the
// transport (HTTP, in-process fakes).
//
// Implementations return a nil error only for 2xx responses. Any other status
// is reported as *StatusError, which unwraps to ErrMalformed, ErrConflict or
// ErrSilentFailure. Transport failures unwrap to ErrSilentFailure.
// Nothing is retried.
type SyncClient interface {
	Do(ctx context.Context, req Request) (*Response, error)
}

// Links builds absolute URLs for resources the client embeds in documents.
type Links interface {
	// Resolve turns a backend path into an absolute URL.
	Resolve(path string) string
}
