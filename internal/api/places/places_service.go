package places

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/raiigauravv/WanderWhiz/app/observability/metrics"
	"github.com/raiigauravv/WanderWhiz/internal/geo"
	"github.com/raiigauravv/WanderWhiz/internal/types"
)

const (
	// DefaultResultsPerInterest caps how many search hits are kept per query.
	DefaultResultsPerInterest = 10

	// maxInterests caps how many interests a free-text prompt may expand to.
	maxInterests = 4

	enrichConcurrency = 4
)

var _ Service = (*ServiceImpl)(nil)

// Provider is the upstream places and geocoding API.
type Provider interface {
	SearchText(ctx context.Context, query string) ([]map[string]any, error)
	Details(ctx context.Context, placeID string) (map[string]any, error)
	ReverseGeocode(ctx context.Context, loc types.LatLng) (string, error)
	Geocode(ctx context.Context, address string) (types.LatLng, error)
}

// IntentExtractor turns a free-text travel request into a city and interests.
type IntentExtractor interface {
	ExtractIntent(ctx context.Context, prompt string) (*types.TravelIntent, error)
}

type Service interface {
	Search(ctx context.Context, city, interest string) (*types.PlaceSearchResult, error)
	SearchFromPrompt(ctx context.Context, prompt string) (*types.PlaceSearchResult, error)
}

type Options struct {
	ResultsPerInterest int
	RadiusDegrees      float64
}

type ServiceImpl struct {
	logger    *slog.Logger
	provider  Provider
	intents   IntentExtractor
	validator *Validator
	cache     *cache.Cache
	metrics   *metrics.AppMetrics
	opts      Options
}

func NewServiceImpl(provider Provider, intents IntentExtractor, validator *Validator, c *cache.Cache,
	appMetrics *metrics.AppMetrics, opts Options, logger *slog.Logger) *ServiceImpl {
	if opts.ResultsPerInterest <= 0 {
		opts.ResultsPerInterest = DefaultResultsPerInterest
	}
	if opts.RadiusDegrees <= 0 {
		opts.RadiusDegrees = geo.CitySearchRadiusDegrees
	}
	if c == nil {
		c = cache.New(5*time.Minute, 10*time.Minute)
	}
	return &ServiceImpl{
		logger:    logger,
		provider:  provider,
		intents:   intents,
		validator: validator,
		cache:     c,
		metrics:   appMetrics,
		opts:      opts,
	}
}

func searchQuery(interest, city string) string {
	return fmt.Sprintf("%s in %s", strings.TrimSpace(interest), strings.TrimSpace(city))
}

func cacheKey(parts ...string) string {
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return strings.Join(parts, "|")
}

// Search finds places for one interest in one city.
func (s *ServiceImpl) Search(ctx context.Context, city, interest string) (*types.PlaceSearchResult, error) {
	ctx, span := otel.Tracer("PlacesService").Start(ctx, "Search", trace.WithAttributes(
		attribute.String("city", city),
		attribute.String("interest", interest),
	))
	defer span.End()

	key := cacheKey("search", city, interest)
	if cached, found := s.cache.Get(key); found {
		s.metrics.RecordSearch(ctx, "direct", true)
		span.SetStatus(codes.Ok, "Served from cache")
		return cached.(*types.PlaceSearchResult), nil
	}
	s.metrics.RecordSearch(ctx, "direct", false)

	raws, err := s.provider.SearchText(ctx, searchQuery(interest, city))
	if err != nil {
		s.logger.ErrorContext(ctx, "Place search failed", slog.String("city", city), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "search failed")
		return nil, fmt.Errorf("%w: place search: %v", types.ErrUnavailable, err)
	}
	if len(raws) > s.opts.ResultsPerInterest {
		raws = raws[:s.opts.ResultsPerInterest]
	}

	result := s.collect(ctx, city, raws)
	result.Interests = []string{interest}
	s.cache.Set(key, result, cache.DefaultExpiration)

	span.SetAttributes(attribute.Int("places.count", len(result.Places)))
	span.SetStatus(codes.Ok, "Search completed")
	return result, nil
}

// SearchFromPrompt asks the intent extractor for a city and interests, then
// runs one search per interest and merges the results.
func (s *ServiceImpl) SearchFromPrompt(ctx context.Context, prompt string) (*types.PlaceSearchResult, error) {
	ctx, span := otel.Tracer("PlacesService").Start(ctx, "SearchFromPrompt")
	defer span.End()

	l := s.logger.With(slog.String("method", "SearchFromPrompt"))

	if s.intents == nil {
		span.SetStatus(codes.Error, "intent extractor not configured")
		return nil, fmt.Errorf("%w: assistant search is not configured", types.ErrUnavailable)
	}
	intent, err := s.intents.ExtractIntent(ctx, prompt)
	if err != nil {
		l.ErrorContext(ctx, "Failed to extract travel intent", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "intent extraction failed")
		return nil, fmt.Errorf("%w: could not understand the request: %v", types.ErrUnavailable, err)
	}
	city, interests := normalizeIntent(intent)
	if city == "" || len(interests) == 0 {
		return nil, fmt.Errorf("%w: could not extract a city and interests from the request", types.ErrBadRequest)
	}
	span.SetAttributes(
		attribute.String("city", city),
		attribute.StringSlice("interests", interests),
	)
	s.metrics.RecordSearch(ctx, "assistant", false)

	perInterest := make([][]map[string]any, len(interests))
	errs := make([]error, len(interests))

	g, gctx := errgroup.WithContext(ctx)
	for i, interest := range interests {
		g.Go(func() error {
			raws, err := s.provider.SearchText(gctx, searchQuery(interest, city))
			if err != nil {
				l.WarnContext(gctx, "Interest search failed",
					slog.String("interest", interest),
					slog.Any("error", err))
				errs[i] = err
				return nil
			}
			if len(raws) > s.opts.ResultsPerInterest {
				raws = raws[:s.opts.ResultsPerInterest]
			}
			perInterest[i] = raws
			return nil
		})
	}
	_ = g.Wait()

	var merged []map[string]any
	failed := 0
	for i := range interests {
		if errs[i] != nil {
			failed++
			continue
		}
		merged = append(merged, perInterest[i]...)
	}
	if failed == len(interests) {
		span.RecordError(errs[0])
		span.SetStatus(codes.Error, "all searches failed")
		return nil, fmt.Errorf("%w: place search: %v", types.ErrUnavailable, errs[0])
	}

	result := s.collect(ctx, city, DedupeByPlaceID(merged))
	result.Interests = interests

	span.SetAttributes(attribute.Int("places.count", len(result.Places)))
	span.SetStatus(codes.Ok, "Assistant search completed")
	return result, nil
}

func normalizeIntent(intent *types.TravelIntent) (string, []string) {
	if intent == nil {
		return "", nil
	}
	city := strings.TrimSpace(intent.City)
	seen := make(map[string]struct{}, len(intent.Interests))
	interests := make([]string, 0, maxInterests)
	for _, in := range intent.Interests {
		in = strings.TrimSpace(in)
		key := strings.ToLower(in)
		if in == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		interests = append(interests, in)
		if len(interests) == maxInterests {
			break
		}
	}
	return city, interests
}

// DedupeByPlaceID keeps the first record for each place id. Records without
// an id are kept.
func DedupeByPlaceID(raws []map[string]any) []map[string]any {
	seen := make(map[string]struct{}, len(raws))
	out := make([]map[string]any, 0, len(raws))
	for _, raw := range raws {
		if id, ok := raw["place_id"].(string); ok && id != "" {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
		}
		out = append(out, raw)
	}
	return out
}

// collect validates raw search hits, keeps those near the city center and
// fills in missing addresses.
func (s *ServiceImpl) collect(ctx context.Context, city string, raws []map[string]any) *types.PlaceSearchResult {
	valid := s.validator.ValidateAll(raws)
	s.metrics.RecordDropped(ctx, "validation", len(raws)-len(valid))

	near := valid
	center, err := s.cityCenter(ctx, city)
	if err != nil {
		s.logger.WarnContext(ctx, "Could not geocode city, skipping proximity filter",
			slog.String("city", city),
			slog.Any("error", err))
	} else {
		near = geo.FilterNear(valid, center, s.opts.RadiusDegrees)
		s.metrics.RecordDropped(ctx, "proximity", len(valid)-len(near))
	}

	s.enrich(ctx, near)

	result := &types.PlaceSearchResult{
		City:   city,
		Center: center,
		Places: make([]map[string]any, 0, len(near)),
	}
	if len(near) > 0 {
		result.Center = near[0].Location
	} else {
		result.Message = fmt.Sprintf("No places found near %s", city)
	}
	for _, p := range near {
		result.Places = append(result.Places, p.ToRaw())
	}
	return result
}

func (s *ServiceImpl) cityCenter(ctx context.Context, city string) (types.LatLng, error) {
	key := cacheKey("geocode", city)
	if cached, found := s.cache.Get(key); found {
		return cached.(types.LatLng), nil
	}
	center, err := s.provider.Geocode(ctx, city)
	if err != nil {
		return types.LatLng{}, err
	}
	s.cache.Set(key, center, cache.NoExpiration)
	return center, nil
}

// enrich resolves missing addresses in place. A failed lookup leaves that
// place as it was.
func (s *ServiceImpl) enrich(ctx context.Context, ps []types.Place) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichConcurrency)
	for i := range ps {
		if ps[i].Address != "" {
			continue
		}
		g.Go(func() error {
			p := &ps[i]
			if p.PlaceID != "" {
				details, err := s.provider.Details(gctx, p.PlaceID)
				if err != nil {
					s.logger.DebugContext(gctx, "Place details lookup failed",
						slog.String("place_id", p.PlaceID),
						slog.Any("error", err))
				} else if addr, ok := details["formatted_address"].(string); ok && strings.TrimSpace(addr) != "" {
					p.Address = strings.TrimSpace(addr)
					return nil
				}
			}
			addr, err := s.provider.ReverseGeocode(gctx, p.Location)
			if err != nil {
				s.logger.DebugContext(gctx, "Reverse geocoding failed",
					slog.String("place", p.Name),
					slog.Any("error", err))
				return nil
			}
			p.Address = addr
			return nil
		})
	}
	_ = g.Wait()
}
