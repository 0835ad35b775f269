package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var ErrNoResult = errors.New("yahoo: no result")

const (
	pricePath = "$.chart.result[0].meta.regularMarketPrice"
	timePath  = "$.chart.result[0].meta.regularMarketTime"
)

type YahooConfig struct {
	BaseURL       string
	SymbolSuffix  string
	Timeout       time.Duration
	CacheTTL      time.Duration
	RatePerSecond float64
}

// YahooPriceService queries the Yahoo Finance v8 chart endpoint. Quotes are
// cached for CacheTTL and outbound requests are rate limited. Safe for
// concurrent use.
type YahooPriceService struct {
	cli     *http.Client
	baseURL string
	suffix  string
	cache   *cache.Cache
	limiter *rate.Limiter
	log     *logrus.Logger
}

type quote struct {
	price decimal.Decimal
	asOf  time.Time
}

func NewYahooPriceService(cfg YahooConfig, log *logrus.Logger) *YahooPriceService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 8 * time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 15 * time.Minute
	}
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	return &YahooPriceService{
		cli:     &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		suffix:  cfg.SymbolSuffix,
		cache:   cache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		limiter: rate.NewLimiter(limit, 1),
		log:     log,
	}
}

func (p *YahooPriceService) GetPrice(ctx context.Context, symbol string) (decimal.Decimal, time.Time, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return decimal.Zero, time.Time{}, ErrPriceNotFound
	}
	if v, ok := p.cache.Get(symbol); ok {
		q := v.(quote)
		return q.price, q.asOf, nil
	}
	q, err := p.fetch(ctx, symbol)
	if err != nil {
		return decimal.Zero, time.Time{}, err
	}
	p.cache.Set(symbol, q, cache.DefaultExpiration)
	return q.price, q.asOf, nil
}

// Start refreshes the quotes of the codes returned by symbols every interval
// until ctx is done.
func (p *YahooPriceService) Start(ctx context.Context, interval time.Duration, symbols func(context.Context) ([]string, error)) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				p.log.Info("price updater stopping")
				return
			case <-ticker.C:
				codes, err := symbols(ctx)
				if err != nil {
					p.log.Warnf("failed to list symbols: %v", err)
					continue
				}
				for _, s := range codes {
					s = strings.ToUpper(strings.TrimSpace(s))
					q, err := p.fetch(ctx, s)
					if err != nil {
						p.log.Warnf("refresh price for %s: %v", s, err)
						continue
					}
					p.cache.Set(s, q, cache.DefaultExpiration)
				}
			}
		}
	}()
}

func (p *YahooPriceService) fetch(ctx context.Context, symbol string) (quote, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return quote{}, err
	}

	u := fmt.Sprintf("%s/v8/finance/chart/%s", p.baseURL, url.PathEscape(symbol+p.suffix))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return quote{}, err
	}
	req.Header.Set("User-Agent", "stockfolio/1.0")

	resp, err := p.cli.Do(req)
	if err != nil {
		return quote{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return quote{}, fmt.Errorf("yahoo http %d", resp.StatusCode)
	}

	var doc any
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return quote{}, fmt.Errorf("decode chart %s: %w", symbol, err)
	}
	results, err := jsonpath.Get("$.chart.result", doc)
	if list, ok := results.([]any); err != nil || !ok || len(list) == 0 {
		return quote{}, ErrNoResult
	}

	raw, err := jsonpath.Get(pricePath, doc)
	if err != nil {
		return quote{}, ErrPriceNotFound
	}
	price, err := toDecimal(raw)
	if err != nil {
		return quote{}, fmt.Errorf("parse price %s: %w", symbol, err)
	}
	if !price.IsPositive() {
		return quote{}, ErrPriceNotFound
	}

	asOf := time.Now().UTC()
	if raw, err := jsonpath.Get(timePath, doc); err == nil {
		if ts, err := toDecimal(raw); err == nil && ts.IsPositive() {
			asOf = time.Unix(ts.IntPart(), 0).UTC()
		}
	}
	return quote{price: price, asOf: asOf}, nil
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case json.Number:
		return decimal.NewFromString(n.String())
	case float64:
		return decimal.NewFromFloat(n), nil
	case nil:
		return decimal.Zero, ErrPriceNotFound
	default:
		return decimal.Zero, fmt.Errorf("unexpected value %T", v)
	}
}
