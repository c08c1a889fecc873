package analyzer

import "github.com/safememefi/riskscan/internal/token"

// OptFloat is a float64 that remembers whether upstream actually supplied
// it. Scoring reads absent values as 0 via Or; rendering prints "N/A".
// Keeping the two representations apart stops "unknown" from silently
// looking like a healthy zero on one path and a rug on the other.
type OptFloat struct {
	Value float64
	Valid bool
}

// Float wraps a present value.
func Float(v float64) OptFloat { return OptFloat{Value: v, Valid: true} }

// Or returns the value, or def when absent.
func (o OptFloat) Or(def float64) float64 {
	if !o.Valid {
		return def
	}
	return o.Value
}

// OptInt mirrors OptFloat for integer counts.
type OptInt struct {
	Value int64
	Valid bool
}

// Int wraps a present value.
func Int(v int64) OptInt { return OptInt{Value: v, Valid: true} }

// Or returns the value, or def when absent.
func (o OptInt) Or(def int64) int64 {
	if !o.Valid {
		return def
	}
	return o.Value
}

// MarketSnapshot is one provider lookup, produced fresh per analysis and
// never cached. Every field is independently optional.
type MarketSnapshot struct {
	PriceUsd       OptFloat
	PriceChange24h OptFloat // percent
	MarketCapUsd   OptFloat
	Volume24hUsd   OptFloat
}

// HolderSnapshot is a best-effort view of token distribution.
// HolderCount is non-negative; TopHolderPercent sits in [0,100].
type HolderSnapshot struct {
	HolderCount      OptInt
	TopHolderPercent OptFloat
}

// TokenMetadata carries display/bonus fields; absence is tolerated
// everywhere.
type TokenMetadata struct {
	Symbol string
	Name   string
}

// Result is the aggregate of one orchestration call. Both scores are
// already clamped to [0,100]. Not persisted anywhere.
type Result struct {
	Address token.Address
	Meta    TokenMetadata
	Market  MarketSnapshot
	Holders HolderSnapshot

	RiskScore      int
	TechnicalScore int
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type tokenSupplyResponse struct {
	Result struct {
		Value struct {
			Amount   string `json:"amount"`
			Decimals int    `json:"decimals"`
		} `json:"value"`
	} `json:"result"`
	Error *rpcError `json:"error"`
}

type largestAccountsResponse struct {
	Result struct {
		Value []struct {
			Address string `json:"address"`
			Amount  string `json:"amount"`
		} `json:"value"`
	} `json:"result"`
	Error *rpcError `json:"error"`
}

type programAccountsResponse struct {
	Result []struct {
		Pubkey string `json:"pubkey"`
	} `json:"result"`
	Error *rpcError `json:"error"`
}
