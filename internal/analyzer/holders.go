package analyzer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/safememefi/riskscan/internal/token"
)

const splTokenProgramID = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"

// splTokenAccountSize is the packed byte size of an SPL token account;
// filtering on it keeps getProgramAccounts to token accounts only.
const splTokenAccountSize = 165

// HolderEstimator reads token distribution off the configured Solana RPC.
// Results are best-effort: both fields degrade independently, and a fully
// failed lookup yields an all-absent snapshot.
type HolderEstimator struct {
	rpcURL     string
	httpClient *http.Client
}

func NewHolderEstimator(rpcURL string, client *http.Client) *HolderEstimator {
	return &HolderEstimator{rpcURL: rpcURL, httpClient: client}
}

// Estimate returns holder count and top-holder percentage for a mint.
// The count comes from enumerating token accounts for the mint, so it
// counts accounts rather than unique owners; the percentage comes from
// getTokenLargestAccounts against the total supply.
func (h *HolderEstimator) Estimate(ctx context.Context, addr token.Address) (HolderSnapshot, error) {
	var snap HolderSnapshot
	var firstErr error

	if pct, err := h.topHolderPercent(ctx, addr); err != nil {
		firstErr = err
	} else {
		snap.TopHolderPercent = Float(pct)
	}

	if count, err := h.holderCount(ctx, addr); err != nil {
		if firstErr == nil {
			firstErr = err
		}
	} else {
		snap.HolderCount = Int(count)
	}

	// Partial data beats no data; only a total miss is reported.
	if !snap.TopHolderPercent.Valid && !snap.HolderCount.Valid {
		return HolderSnapshot{}, firstErr
	}
	return snap, nil
}

func (h *HolderEstimator) topHolderPercent(ctx context.Context, addr token.Address) (float64, error) {
	var supply tokenSupplyResponse
	params := []any{addr.String()}
	if err := rpcCall(ctx, h.rpcURL, h.httpClient, "getTokenSupply", params, &supply); err != nil {
		return 0, fmt.Errorf("getTokenSupply: %w", err)
	}
	if supply.Error != nil {
		return 0, fmt.Errorf("getTokenSupply: rpc error %d: %s", supply.Error.Code, supply.Error.Message)
	}

	total, err := strconv.ParseFloat(supply.Result.Value.Amount, 64)
	if err != nil || total <= 0 {
		return 0, errors.New("getTokenSupply: zero or unparseable supply")
	}

	var largest largestAccountsResponse
	params = []any{addr.String(), map[string]string{"commitment": "confirmed"}}
	if err := rpcCall(ctx, h.rpcURL, h.httpClient, "getTokenLargestAccounts", params, &largest); err != nil {
		return 0, fmt.Errorf("getTokenLargestAccounts: %w", err)
	}
	if largest.Error != nil {
		return 0, fmt.Errorf("getTokenLargestAccounts: rpc error %d: %s", largest.Error.Code, largest.Error.Message)
	}
	if len(largest.Result.Value) == 0 {
		return 0, errors.New("getTokenLargestAccounts: no accounts")
	}

	// The RPC returns accounts sorted by balance, largest first.
	top, err := strconv.ParseFloat(largest.Result.Value[0].Amount, 64)
	if err != nil {
		return 0, fmt.Errorf("getTokenLargestAccounts: bad amount: %w", err)
	}

	pct := top / total * 100
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return pct, nil
}

func (h *HolderEstimator) holderCount(ctx context.Context, addr token.Address) (int64, error) {
	var accounts programAccountsResponse
	params := []any{
		splTokenProgramID,
		map[string]any{
			"encoding":  "base64",
			"dataSlice": map[string]int{"offset": 0, "length": 0},
			"filters": []map[string]any{
				{"dataSize": splTokenAccountSize},
				{"memcmp": map[string]any{"offset": 0, "bytes": addr.String()}},
			},
		},
	}
	if err := rpcCall(ctx, h.rpcURL, h.httpClient, "getProgramAccounts", params, &accounts); err != nil {
		return 0, fmt.Errorf("getProgramAccounts: %w", err)
	}
	if accounts.Error != nil {
		return 0, fmt.Errorf("getProgramAccounts: rpc error %d: %s", accounts.Error.Code, accounts.Error.Message)
	}
	return int64(len(accounts.Result)), nil
}
