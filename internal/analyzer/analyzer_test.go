package analyzer

import (
	"context"
	"errors"
	"testing"

	"github.com/safememefi/riskscan/internal/token"
)

type fakeMarket struct {
	snap MarketSnapshot
	meta TokenMetadata
	err  error
}

func (f *fakeMarket) Market(_ context.Context, _ token.Address) (MarketSnapshot, TokenMetadata, error) {
	return f.snap, f.meta, f.err
}

type fakeHolders struct {
	snap HolderSnapshot
	err  error
}

func (f *fakeHolders) Estimate(_ context.Context, _ token.Address) (HolderSnapshot, error) {
	return f.snap, f.err
}

func TestAnalyzeInvalidAddress(t *testing.T) {
	a := New(&fakeMarket{}, &fakeHolders{})
	for _, raw := range []string{"", "gm", "not an address at all"} {
		if _, err := a.Analyze(context.Background(), raw); !errors.Is(err, token.ErrInvalidAddress) {
			t.Errorf("Analyze(%q): expected ErrInvalidAddress, got %v", raw, err)
		}
	}
}

func TestAnalyzeExtractsFromText(t *testing.T) {
	a := New(
		&fakeMarket{meta: TokenMetadata{Symbol: "USDC"}},
		&fakeHolders{},
	)
	res, err := a.Analyze(context.Background(), "check "+usdcMint.String()+" now")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Address != usdcMint {
		t.Errorf("expected %s, got %s", usdcMint, res.Address)
	}
}

// TestAnalyzeGracefulDegradation: both upstreams dead still yields a
// complete Result with defaulted fields, not an error.
func TestAnalyzeGracefulDegradation(t *testing.T) {
	a := New(
		&fakeMarket{err: errors.New("provider down")},
		&fakeHolders{err: errors.New("rpc down")},
	)
	res, err := a.Analyze(context.Background(), usdcMint.String())
	if err != nil {
		t.Fatalf("expected soft failure, got %v", err)
	}
	if res.Market.PriceUsd.Valid || res.Holders.HolderCount.Valid {
		t.Error("expected absent snapshot fields")
	}
	if res.RiskScore < 0 || res.RiskScore > 100 {
		t.Errorf("risk score %d out of bounds", res.RiskScore)
	}
	if res.RiskScore != 95 {
		t.Errorf("expected all-default risk 95, got %d", res.RiskScore)
	}
	if res.TechnicalScore != 50 {
		t.Errorf("expected all-default technical 50, got %d", res.TechnicalScore)
	}
}

func TestAnalyzeAssemblesScores(t *testing.T) {
	a := New(
		&fakeMarket{
			snap: MarketSnapshot{
				PriceChange24h: Float(-35),
				MarketCapUsd:   Float(40_000),
				Volume24hUsd:   Float(500),
			},
			meta: TokenMetadata{Symbol: "RUG", Name: "Ruggable"},
		},
		&fakeHolders{snap: HolderSnapshot{HolderCount: Int(50), TopHolderPercent: Float(60)}},
	)
	res, err := a.Analyze(context.Background(), usdcMint.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.RiskScore != 100 {
		t.Errorf("expected risk 100, got %d", res.RiskScore)
	}
	// 50 + 10 symbol + 10 name = 70.
	if res.TechnicalScore != 70 {
		t.Errorf("expected technical 70, got %d", res.TechnicalScore)
	}
}

func TestAnalyzePartialFailure(t *testing.T) {
	a := New(
		&fakeMarket{err: ErrNoMarketData},
		&fakeHolders{snap: HolderSnapshot{HolderCount: Int(2_000), TopHolderPercent: Float(5)}},
	)
	res, err := a.Analyze(context.Background(), usdcMint.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Holders.HolderCount.Valid {
		t.Error("holder data should survive a market failure")
	}
	// 30 base - 5 holders + 25 mcap + 20 volume = 70.
	if res.RiskScore != 70 {
		t.Errorf("expected risk 70, got %d", res.RiskScore)
	}
}
