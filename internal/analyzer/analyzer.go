// Package analyzer turns a token address into a scored analysis: market
// data, holder distribution, risk and technical scores, and the rendered
// reports built from them.
package analyzer

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/safememefi/riskscan/internal/token"
)

// HolderSource estimates token distribution.
type HolderSource interface {
	Estimate(ctx context.Context, addr token.Address) (HolderSnapshot, error)
}

// Analyzer sequences extraction, fetches and scoring for one token. Safe
// for concurrent use; each call runs its own upstream requests.
type Analyzer struct {
	market  MarketProvider
	holders HolderSource
}

// New builds an Analyzer over the given providers.
func New(market MarketProvider, holders HolderSource) *Analyzer {
	return &Analyzer{market: market, holders: holders}
}

// NewDefault wires the stock providers: the named market provider
// ("dexscreener" or "jupiter") and the RPC holder estimator.
func NewDefault(marketProvider, rpcURL string) *Analyzer {
	var market MarketProvider
	switch marketProvider {
	case "jupiter":
		market = NewJupiterPrice()
	default:
		market = NewDexScreener()
	}
	rpcClient := &http.Client{Timeout: 20 * time.Second}
	return New(market, NewHolderEstimator(rpcURL, rpcClient))
}

// Analyze runs the full pipeline for raw, which may be an address or any
// text containing one. The only failure mode is a structurally invalid
// address; every upstream error degrades to absent fields in the Result.
func (a *Analyzer) Analyze(ctx context.Context, raw string) (*Result, error) {
	candidate := raw
	if extracted, ok := token.Extract(raw); ok {
		candidate = extracted
	}
	addr, err := token.Parse(candidate)
	if err != nil {
		return nil, err
	}

	res := &Result{Address: addr}

	// The fetches are independent: a dead provider costs its own fields
	// and nothing else.
	market, meta, err := a.market.Market(ctx, addr)
	if err != nil {
		log.Printf("[analyzer] market lookup failed for %s: %v", addr.Short(), err)
	} else {
		res.Market = market
		res.Meta = meta
	}

	holders, err := a.holders.Estimate(ctx, addr)
	if err != nil {
		log.Printf("[analyzer] holder estimate failed for %s: %v", addr.Short(), err)
	} else {
		res.Holders = holders
	}

	res.RiskScore = RiskScore(res.Market, res.Holders)
	res.TechnicalScore = TechnicalScore(res.Meta, res.Market, res.Holders)
	return res, nil
}
