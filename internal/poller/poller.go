package poller

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/liveresults/liveresults/internal/config"
	"github.com/liveresults/liveresults/internal/processor"
)

const defaultFetchTimeout = 10 * time.Second

// ErrSourceUnsuccessful is returned when the source answers but flags its
// own payload with success=false.
var ErrSourceUnsuccessful = errors.New("poller: source returned success=false")

// Poller fetches the raw event payload from the timing source.
type Poller struct {
	url    string
	client *http.Client
}

// New returns a Poller for the given source configuration. It builds the
// HTTP client once and reuses it across fetches.
func New(src config.SourceConfig) *Poller {
	timeout := src.Timeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &Poller{
		url: src.URL,
		client: &http.Client{
			Transport: &authRoundTripper{base: http.DefaultTransport, src: src},
			Timeout:   timeout,
		},
	}
}

// URL returns the source URL being polled.
func (p *Poller) URL() string { return p.url }

// Fetch performs one GET against the source and decodes the payload.
func (p *Poller) Fetch(ctx context.Context) (*processor.RawEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, fmt.Errorf("poller: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("poller: http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("poller: unexpected status %d", resp.StatusCode)
	}

	raw, err := processor.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("poller: %w", err)
	}
	if raw.Success != nil && !*raw.Success {
		if raw.Error != "" {
			return nil, fmt.Errorf("%w: %s", ErrSourceUnsuccessful, raw.Error)
		}
		return nil, ErrSourceUnsuccessful
	}
	return raw, nil
}

// authRoundTripper injects the configured API key header into every
// outgoing request.
type authRoundTripper struct {
	base http.RoundTripper
	src  config.SourceConfig
}

func (t *authRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if key := t.src.APIKey(); key != "" {
		req = req.Clone(req.Context())
		req.Header.Set(t.src.EffectiveHeader(), key)
	}
	return t.base.RoundTrip(req)
}
