package brapi

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/portfolio-radar/internal/apperrors"
	"github.com/ndewijer/portfolio-radar/internal/model"
)

// HistoryRanges lists the ranges accepted by FetchHistory.
var HistoryRanges = []string{"1mo", "3mo", "6mo", "1y", "2y", "5y"}

// ValidRange reports whether r is one of HistoryRanges.
func ValidRange(r string) bool {
	for _, known := range HistoryRanges {
		if r == known {
			return true
		}
	}
	return false
}

type historyResult struct {
	Symbol              string `json:"symbol"`
	HistoricalDataPrice []struct {
		Date  int64    `json:"date"`
		Close *float64 `json:"close"`
	} `json:"historicalDataPrice"`
}

type historyResponse struct {
	Results []historyResult `json:"results"`
}

// FetchHistory returns the daily closes of ticker over rangeSpec. Foreign
// tickers are converted with a single currency-pair quote applied to every
// point; if that quote is unavailable the call fails with
// apperrors.ErrExchangeRateNotFound instead of guessing a rate.
func (c *Client) FetchHistory(ctx context.Context, ticker, rangeSpec string) ([]model.PricePoint, error) {
	if !ValidRange(rangeSpec) {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidRange, rangeSpec)
	}

	symbol := NormalizeSymbol(ticker, c.suffix)
	if symbol == "" {
		return nil, apperrors.ErrInvalidTicker
	}

	key := symbol + "|" + rangeSpec
	if points, ok := c.cache.get(key); ok {
		c.logger.Debug().Str("symbol", symbol).Str("range", rangeSpec).Msg("History cache hit")
		return points, nil
	}

	var (
		points []model.PricePoint
		fxRate = 1.0
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		points, err = c.fetchSeries(gctx, symbol, rangeSpec)
		return err
	})

	if ClassifySymbol(symbol, c.suffix) == Foreign {
		g.Go(func() error {
			quotes, err := c.fetchChunk(gctx, []string{c.fxSymbol})
			if err != nil {
				return fmt.Errorf("%w: %s: %v", apperrors.ErrExchangeRateNotFound, c.fxSymbol, err)
			}
			for _, raw := range quotes {
				env, ok := NewEnvelope(raw, c.suffix)
				if !ok || env.Symbol != c.fxSymbol {
					continue
				}
				if q, ok := env.Quote(c.now()); ok {
					fxRate = q.Price
					return nil
				}
			}
			return fmt.Errorf("%w: %s", apperrors.ErrExchangeRateNotFound, c.fxSymbol)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if fxRate != 1 {
		for i := range points {
			points[i].Price *= fxRate
		}
	}

	c.cache.add(key, points)
	return clonePoints(points), nil
}

func (c *Client) fetchSeries(ctx context.Context, symbol, rangeSpec string) ([]model.PricePoint, error) {
	params := url.Values{}
	params.Set("range", rangeSpec)
	params.Set("interval", "1d")

	var resp historyResponse
	if err := c.get(ctx, quotePath([]string{symbol}), params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrSymbolNotFound, symbol)
	}

	raw := resp.Results[0].HistoricalDataPrice
	points := make([]model.PricePoint, 0, len(raw))
	for _, h := range raw {
		if h.Close == nil || *h.Close <= 0 {
			continue
		}
		points = append(points, model.PricePoint{
			Date:  time.Unix(h.Date, 0).UTC().Truncate(24 * time.Hour),
			Price: *h.Close,
		})
	}
	return points, nil
}

type historyEntry struct {
	points  []model.PricePoint
	expires time.Time
}

// historyCache is a size-bounded LRU whose entries also expire after a TTL.
type historyCache struct {
	mu  sync.Mutex
	lru *lru.Cache
	ttl time.Duration
	now func() time.Time
}

func newHistoryCache(size int, ttl time.Duration, now func() time.Time) *historyCache {
	if size <= 0 || ttl <= 0 {
		return &historyCache{}
	}
	cache, err := lru.New(size)
	if err != nil {
		return &historyCache{}
	}
	return &historyCache{lru: cache, ttl: ttl, now: now}
}

func (h *historyCache) get(key string) ([]model.PricePoint, bool) {
	if h.lru == nil {
		return nil, false
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	v, ok := h.lru.Get(key)
	if !ok {
		return nil, false
	}
	entry := v.(historyEntry)
	if h.now().After(entry.expires) {
		h.lru.Remove(key)
		return nil, false
	}
	return clonePoints(entry.points), true
}

func (h *historyCache) add(key string, points []model.PricePoint) {
	if h.lru == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lru.Add(key, historyEntry{points: clonePoints(points), expires: h.now().Add(h.ttl)})
}

func clonePoints(points []model.PricePoint) []model.PricePoint {
	return append([]model.PricePoint(nil), points...)
}
