package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"shipment-dispatch-service/internal/domain"
	"shipment-dispatch-service/internal/platform/obs"
	"shipment-dispatch-service/internal/ports"
)

type openCageResponse struct {
	Results []struct {
		Geometry struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"geometry"`
	} `json:"results"`
}

// OpenCageGeocoder implements Geocoder using the OpenCage forward geocoding API.
// Lookups go through the cache first; fresh results are written back.
// The geocoder is safe for concurrent use.
type OpenCageGeocoder struct {
	session     *http.Client
	apiKey      string
	baseURL     string
	cache       ports.GeocodeCache
	maxAttempts int
	backoff     time.Duration
}

type Option func(*OpenCageGeocoder)

// WithHTTPClient replaces the default 10s-timeout client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *OpenCageGeocoder) { o.session = c }
}

// WithRetry sets the attempt limit and first backoff delay.
func WithRetry(maxAttempts int, backoff time.Duration) Option {
	return func(o *OpenCageGeocoder) {
		if maxAttempts > 0 {
			o.maxAttempts = maxAttempts
		}
		o.backoff = backoff
	}
}

func NewOpenCageGeocoder(apiKey, baseURL string, cache ports.GeocodeCache, opts ...Option) (*OpenCageGeocoder, error) {
	if apiKey == "" {
		return nil, errors.New("OpenCage api key is empty")
	}
	if baseURL == "" {
		baseURL = "https://api.opencagedata.com"
	}

	g := &OpenCageGeocoder{
		session:     &http.Client{Timeout: 10 * time.Second},
		apiKey:      apiKey,
		baseURL:     strings.TrimRight(baseURL, "/"),
		cache:       cache,
		maxAttempts: 4,
		backoff:     200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// normalize ensures consistent cache keys by collapsing whitespace.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Resolve one address line. ok is false when OpenCage has no match.
func (o *OpenCageGeocoder) Geocode(ctx context.Context, address string) (_ domain.Coordinates, _ bool, err error) {
	defer obs.Time(ctx, "opencage.Geocode")(&err)

	norm := normalize(address)
	if norm == "" {
		return domain.Coordinates{}, false, errors.New("geocode: address must be non-empty")
	}

	if o.cache != nil {
		hits, err := o.cache.GetMany(ctx, []string{norm})
		if err != nil {
			obs.Logger(ctx).Warn("geocode cache read failed", zap.String("address", norm), zap.Error(err))
		} else if c, ok := hits[norm]; ok {
			return c, true, nil
		}
	}

	c, ok, err := o.fetch(ctx, norm)
	if err != nil || !ok {
		return c, ok, err
	}

	if o.cache != nil {
		if err := o.cache.PutMany(ctx, map[string]domain.Coordinates{norm: c}); err != nil {
			obs.Logger(ctx).Warn("geocode cache write failed", zap.String("address", norm), zap.Error(err))
		}
	}

	return c, true, nil
}

func (o *OpenCageGeocoder) fetch(ctx context.Context, norm string) (domain.Coordinates, bool, error) {
	endpoint := o.baseURL + "/geocode/v1/json"

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := o.newRequest(ctx, http.MethodGet, endpoint)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("q", norm)
		q.Set("key", o.apiKey)
		q.Set("limit", "1")
		q.Set("no_annotations", "1")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("geocode %q: execute request: %w", norm, err)
	}
	defer resp.Body.Close()

	var decoded openCageResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("geocode %q: decode response: %w", norm, err)
	}

	if len(decoded.Results) == 0 {
		return domain.Coordinates{}, false, nil
	}

	g := decoded.Results[0].Geometry
	return domain.Coordinates{Lon: g.Lng, Lat: g.Lat}, true, nil
}
