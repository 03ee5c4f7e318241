package promo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"sjsage522/promonotifier/helpers"
	"sjsage522/promonotifier/logger"
	apperrors "sjsage522/promonotifier/pkg/errors"
	"sjsage522/promonotifier/services/cache"
)

const (
	fetcherSource = "exchange_rewards"

	// rateLimitKey marks the source as blocked in the cache
	rateLimitKey = "promo:rate_limited"
)

// FetcherConfig contains configuration for a Fetcher
type FetcherConfig struct {
	URL       string
	Timeout   time.Duration
	BlockTime time.Duration
}

// Fetcher downloads the exchange rewards page and parses its code table
type Fetcher struct {
	url       string
	client    *http.Client
	cacheSvc  cache.CacheService
	blockTime time.Duration
	log       *logger.Logger
}

// NewFetcher creates a fetcher. cacheSvc may be nil, which disables rate-limit blocking.
func NewFetcher(config FetcherConfig, cacheSvc cache.CacheService) *Fetcher {
	return &Fetcher{
		url:       config.URL,
		client:    helpers.NewClient(config.Timeout),
		cacheSvc:  cacheSvc,
		blockTime: config.BlockTime,
		log:       logger.ForFetcher(),
	}
}

// Fetch retrieves and parses the code list.
//
// Transport failures are logged here and returned as network (or rate_limit)
// CheckErrors with an empty list; structural failures come back from
// ParseCodes as parsing CheckErrors.
func (f *Fetcher) Fetch(ctx context.Context) (CodeList, error) {
	if f.isBlocked() {
		err := apperrors.NewRateLimit(fetcherSource, f.blockTime)
		f.log.Error().Err(err).Msg("Source is blocked, not fetching")
		return nil, err
	}

	f.log.Debug().Str("url", f.url).Msg("Fetching promo code page ...")
	body, err := helpers.FetchDocument(ctx, f.client, f.url)
	if err != nil {
		if errors.Is(err, helpers.ErrRateLimited) {
			f.block()
		}
		f.log.Error().Err(err).Str("url", f.url).Msg("Failed to fetch promo code page")
		return nil, apperrors.NewNetwork(fetcherSource, "failed to fetch promo code page", err)
	}

	f.log.Debug().Msg("Parsing HTML document ...")
	codes, err := ParseCodes(body)
	if err != nil {
		return nil, err
	}

	f.log.Debug().Int("count", len(codes)).Msgf("Found %d promo code%s", len(codes), plural(len(codes)))
	return codes, nil
}

func (f *Fetcher) isBlocked() bool {
	if f.cacheSvc == nil {
		return false
	}
	_, err := f.cacheSvc.Get(rateLimitKey)
	return err == nil
}

func (f *Fetcher) block() {
	if f.cacheSvc == nil || f.blockTime <= 0 {
		return
	}
	value := []byte(fmt.Sprintf("%d", int(f.blockTime/time.Second)))
	if err := f.cacheSvc.Set(rateLimitKey, value, f.blockTime); err != nil {
		logger.ForCache().Warn().Err(err).Msg("Failed to store rate limit block")
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
