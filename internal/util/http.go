package util

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
)

// ErrBadStatus marks a response whose status was not 200 OK.
var ErrBadStatus = errors.New("bad status")

// --- List of Realistic User Agents ---
var commonUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
}

// RandomUserAgent picks one of the browser user agents above.
func RandomUserAgent() string {
	if len(commonUserAgents) == 0 {
		return "nssfetch/1.0 (Go-client)"
	}
	return commonUserAgents[rand.Intn(len(commonUserAgents))]
}

// DefaultHTTPClient returns the client used for decision downloads.
// No timeout is set: a hung request blocks the run until the server gives up.
func DefaultHTTPClient() *http.Client {
	return &http.Client{}
}

// Getter is the HTTP GET capability: URL in, status and body out.
type Getter interface {
	Get(url string) (status int, body []byte, err error)
}

// HTTPGetter issues plain GET requests and hands back status and body.
type HTTPGetter struct {
	Client    *http.Client
	UserAgent string // empty picks a random browser agent per request
}

// NewHTTPGetter wraps the default client.
func NewHTTPGetter() *HTTPGetter {
	return &HTTPGetter{Client: DefaultHTTPClient()}
}

// Get performs a single GET. The body is read in full whatever the status;
// judging the status is left to the caller.
func (g *HTTPGetter) Get(url string) (int, []byte, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("create request for %s: %w", url, err)
	}
	ua := g.UserAgent
	if ua == "" {
		ua = RandomUserAgent()
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "application/pdf,*/*")

	client := g.Client
	if client == nil {
		client = DefaultHTTPClient()
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("http do request for %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed reading body from %s: %w", url, err)
	}
	return resp.StatusCode, body, nil
}

// DownloadFile GETs url and returns the body, treating anything but 200 as an error.
func DownloadFile(g Getter, url string) ([]byte, error) {
	status, body, err := g.Get(url)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w %d fetching %s", ErrBadStatus, status, url)
	}
	return body, nil
}
