package analyzer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/safememefi/riskscan/internal/token"
)

// ErrNoMarketData means the provider answered but knows nothing about the
// token. Treated as a soft failure by the orchestrator, like any other
// provider error.
var ErrNoMarketData = errors.New("no market data for token")

// MarketProvider is one upstream price/liquidity lookup. Implementations
// must not retry internally; pacing belongs to the callers.
type MarketProvider interface {
	Market(ctx context.Context, addr token.Address) (MarketSnapshot, TokenMetadata, error)
}

// DexScreener serves the pair-list response shape: the snapshot is taken
// from the most liquid pair.
type DexScreener struct {
	baseURL    string
	httpClient *http.Client
}

func NewDexScreener() *DexScreener {
	return &DexScreener{
		baseURL:    "https://api.dexscreener.com/latest/dex/tokens",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type dexScreenerResponse struct {
	Pairs []dexScreenerPair `json:"pairs"`
}

type dexScreenerPair struct {
	BaseToken struct {
		Symbol string `json:"symbol"`
		Name   string `json:"name"`
	} `json:"baseToken"`
	PriceUsd    string `json:"priceUsd"`
	PriceChange struct {
		H24 *float64 `json:"h24"`
	} `json:"priceChange"`
	Volume struct {
		H24 *float64 `json:"h24"`
	} `json:"volume"`
	Liquidity struct {
		USD float64 `json:"usd"`
	} `json:"liquidity"`
	MarketCap *float64 `json:"marketCap"`
}

func (d *DexScreener) Market(ctx context.Context, addr token.Address) (MarketSnapshot, TokenMetadata, error) {
	url := fmt.Sprintf("%s/%s", d.baseURL, addr)

	var result dexScreenerResponse
	if err := getJSON(ctx, d.httpClient, url, &result); err != nil {
		return MarketSnapshot{}, TokenMetadata{}, fmt.Errorf("dexscreener: %w", err)
	}
	if len(result.Pairs) == 0 {
		return MarketSnapshot{}, TokenMetadata{}, ErrNoMarketData
	}

	pair := mostLiquidPair(result.Pairs)

	var snap MarketSnapshot
	if price, err := strconv.ParseFloat(pair.PriceUsd, 64); err == nil {
		snap.PriceUsd = Float(price)
	}
	if pair.PriceChange.H24 != nil {
		snap.PriceChange24h = Float(*pair.PriceChange.H24)
	}
	if pair.Volume.H24 != nil {
		snap.Volume24hUsd = Float(*pair.Volume.H24)
	}
	if pair.MarketCap != nil {
		snap.MarketCapUsd = Float(*pair.MarketCap)
	}

	meta := TokenMetadata{Symbol: pair.BaseToken.Symbol, Name: pair.BaseToken.Name}
	return snap, meta, nil
}

func mostLiquidPair(pairs []dexScreenerPair) dexScreenerPair {
	best := pairs[0]
	for _, p := range pairs[1:] {
		if p.Liquidity.USD > best.Liquidity.USD {
			best = p
		}
	}
	return best
}

// JupiterPrice serves the single-record response shape: price only, the
// remaining fields stay absent.
type JupiterPrice struct {
	baseURL    string
	httpClient *http.Client
}

func NewJupiterPrice() *JupiterPrice {
	return &JupiterPrice{
		baseURL:    "https://lite-api.jup.ag/price/v2",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type jupiterPriceResponse struct {
	Data map[string]*struct {
		Price string `json:"price"`
	} `json:"data"`
}

func (j *JupiterPrice) Market(ctx context.Context, addr token.Address) (MarketSnapshot, TokenMetadata, error) {
	url := fmt.Sprintf("%s?ids=%s", j.baseURL, addr)

	var result jupiterPriceResponse
	if err := getJSON(ctx, j.httpClient, url, &result); err != nil {
		return MarketSnapshot{}, TokenMetadata{}, fmt.Errorf("jupiter: %w", err)
	}

	rec, ok := result.Data[addr.String()]
	if !ok || rec == nil {
		return MarketSnapshot{}, TokenMetadata{}, ErrNoMarketData
	}

	var snap MarketSnapshot
	if price, err := strconv.ParseFloat(rec.Price, 64); err == nil {
		snap.PriceUsd = Float(price)
	}
	return snap, TokenMetadata{}, nil
}
