package httpclient

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotAuthenticated is returned in fail-closed mode when an authenticated
// descriptor is dispatched without a valid access token. No network I/O happens.
var ErrNotAuthenticated = errors.New("httpclient: no valid access token")

// StatusError is returned for non-2xx upstream responses.
type StatusError struct {
	Status int
	URL    string
	Body   []byte
}

func (e *StatusError) Error() string {
	const maxBody = 256
	body := e.Body
	if len(body) > maxBody {
		body = body[:maxBody]
	}
	return fmt.Sprintf("upstream returned %d for %s: %s", e.Status, e.URL, string(body))
}

// IsStatus reports whether err is a StatusError with the given status code.
func IsStatus(err error, status int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == status
}

func IsNotFound(err error) bool {
	return IsStatus(err, http.StatusNotFound)
}

func IsUnauthorized(err error) bool {
	return IsStatus(err, http.StatusUnauthorized)
}
