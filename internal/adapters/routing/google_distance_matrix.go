package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"crew-assignment-service/internal/domain"
	"crew-assignment-service/internal/platform/obs"
	"crew-assignment-service/internal/ports"
)

const DefaultBaseURL = "https://maps.googleapis.com"

// DistanceMatrixProvider implements RouteProvider using the Google Distance Matrix API
// in driving mode with imperial units.
//
// Requests are rate limited client side and transient failures are retried with
// backoff. The provider is safe for concurrent use.
type DistanceMatrixProvider struct {
	session *http.Client
	apiKey  string
	baseURL string
	limiter *rate.Limiter
}

// Option customizes a DistanceMatrixProvider.
type Option func(*DistanceMatrixProvider)

func WithBaseURL(u string) Option {
	return func(p *DistanceMatrixProvider) { p.baseURL = strings.TrimRight(u, "/") }
}

func WithHTTPClient(c *http.Client) Option {
	return func(p *DistanceMatrixProvider) { p.session = c }
}

// WithRateLimit caps outgoing requests per second; <= 0 disables limiting.
func WithRateLimit(perSecond float64) Option {
	return func(p *DistanceMatrixProvider) {
		if perSecond <= 0 {
			p.limiter = nil
			return
		}
		p.limiter = rate.NewLimiter(rate.Limit(perSecond), max(1, int(perSecond)))
	}
}

func NewDistanceMatrixProvider(apiKey string, opts ...Option) (*DistanceMatrixProvider, error) {
	if apiKey == "" {
		return nil, errors.New("distance matrix api key is empty")
	}

	p := &DistanceMatrixProvider{
		session: &http.Client{Timeout: 10 * time.Second},
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		limiter: rate.NewLimiter(10, 10),
	}
	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

type valueText struct {
	Value float64 `json:"value"`
	Text  string  `json:"text"`
}

type matrixElement struct {
	Status   string     `json:"status"`
	Distance *valueText `json:"distance"`
	Duration *valueText `json:"duration"`
}

type matrixResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Rows         []struct {
		Elements []matrixElement `json:"elements"`
	} `json:"rows"`
}

// Route returns the driving distance and duration from origin to destination.
func (p *DistanceMatrixProvider) Route(
	ctx context.Context,
	origin domain.GeoPoint,
	destination domain.GeoPoint,
) (_ ports.RouteResult, err error) {
	defer obs.Time(ctx, "routing.distanceMatrix.Route")(&err)

	if !origin.Known() || !destination.Known() {
		return ports.RouteResult{}, errors.New("distance matrix: origin and destination must be known")
	}

	q := url.Values{}
	q.Set("origins", origin.String())
	q.Set("destinations", destination.String())
	q.Set("mode", "driving")
	q.Set("units", "imperial")
	q.Set("key", p.apiKey)
	endpoint := p.baseURL + "/maps/api/distancematrix/json?" + q.Encode()

	resp, err := p.doWithRetry(ctx, func() (*http.Request, error) {
		return p.newRequest(ctx, http.MethodGet, endpoint)
	})
	if err != nil {
		return ports.RouteResult{}, fmt.Errorf("distance matrix request failed: %w", err)
	}
	defer resp.Body.Close()

	var mr matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return ports.RouteResult{}, fmt.Errorf("decode distance matrix response: %w", err)
	}

	if mr.Status != "OK" {
		return ports.RouteResult{}, fmt.Errorf("distance matrix status %s: %s", mr.Status, mr.ErrorMessage)
	}
	if len(mr.Rows) == 0 || len(mr.Rows[0].Elements) == 0 {
		return ports.RouteResult{}, errors.New("distance matrix returned no route element")
	}

	el := mr.Rows[0].Elements[0]
	if el.Status != "OK" {
		return ports.RouteResult{}, fmt.Errorf("distance matrix element status %s", el.Status)
	}
	if el.Distance == nil || el.Duration == nil {
		return ports.RouteResult{}, errors.New("distance matrix element missing distance or duration")
	}

	return ports.RouteResult{
		DistanceMeters:  int(el.Distance.Value),
		DurationSeconds: int(el.Duration.Value),
	}, nil
}
