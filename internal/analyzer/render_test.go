package analyzer

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/safememefi/riskscan/internal/token"
)

const usdcMint = token.Address("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")

func fullResult() *Result {
	return &Result{
		Address: usdcMint,
		Meta:    TokenMetadata{Symbol: "USDC", Name: "USD Coin"},
		Market: MarketSnapshot{
			PriceUsd:       Float(1.0001),
			PriceChange24h: Float(-0.02),
			MarketCapUsd:   Float(32_500_000_000),
			Volume24hUsd:   Float(7_400_000),
		},
		Holders: HolderSnapshot{
			HolderCount:      Int(1_500_000),
			TopHolderPercent: Float(8.4),
		},
		RiskScore:      15,
		TechnicalScore: 90,
	}
}

func TestRenderReplyFitsCeiling(t *testing.T) {
	cases := []*Result{
		fullResult(),
		{Address: usdcMint, RiskScore: 95, TechnicalScore: 50}, // all absent
		{
			Address:   usdcMint,
			Meta:      TokenMetadata{Symbol: strings.Repeat("LONGSYMBOL", 20)},
			Market:    MarketSnapshot{MarketCapUsd: Float(9.9e18), Volume24hUsd: Float(9.9e18)},
			Holders:   HolderSnapshot{HolderCount: Int(1<<62 - 1)},
			RiskScore: 100,
		},
	}
	for i, res := range cases {
		reply := RenderReply(res)
		if n := utf8.RuneCountInString(reply); n > ReplyMaxLen {
			t.Errorf("case %d: reply is %d chars, ceiling is %d", i, n, ReplyMaxLen)
		}
	}
}

func TestRenderReplyContent(t *testing.T) {
	reply := RenderReply(fullResult())
	for _, want := range []string{
		"USDC",
		"Technical Score: 90/100",
		"Risk Score: 15/100",
		"Market Cap: $32500.0M",
		"24H Volume: $7.4M",
		"1500000 holders",
	} {
		if !strings.Contains(reply, want) {
			t.Errorf("reply missing %q:\n%s", want, reply)
		}
	}
}

func TestRenderReplyAbsentFieldsShowNA(t *testing.T) {
	reply := RenderReply(&Result{Address: usdcMint, RiskScore: 95, TechnicalScore: 50})
	for _, want := range []string{
		"TOKEN",
		"24h Change: N/A%",
		"Market Cap: $N/A",
		"N/A holders",
	} {
		if !strings.Contains(reply, want) {
			t.Errorf("reply missing %q:\n%s", want, reply)
		}
	}
}

func TestRenderErrorFitsCeiling(t *testing.T) {
	msg := RenderError("notanaddressatall")
	if n := utf8.RuneCountInString(msg); n > ReplyMaxLen {
		t.Errorf("error reply is %d chars, ceiling is %d", n, ReplyMaxLen)
	}
	if !strings.Contains(msg, "notanadd...") {
		t.Errorf("error reply missing shortened input:\n%s", msg)
	}
}

func TestRenderVerbose(t *testing.T) {
	out := RenderVerbose(fullResult())
	for _, want := range []string{
		"<b>USDC ANALYSIS</b>",
		"Top Holder: 8.40%",
		"No major risks detected",
		"LOW RISK",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("verbose report missing %q", want)
		}
	}
}

func TestRenderVerboseRiskFactors(t *testing.T) {
	res := &Result{
		Address: usdcMint,
		Market:  MarketSnapshot{MarketCapUsd: Float(40_000), Volume24hUsd: Float(500)},
		Holders: HolderSnapshot{HolderCount: Int(50), TopHolderPercent: Float(60)},
	}
	res.RiskScore = RiskScore(res.Market, res.Holders)
	out := RenderVerbose(res)
	for _, want := range []string{
		"• Low holder count",
		"• Low market cap",
		"• Low trading volume",
		"• High concentration",
		"HIGH RISK",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("verbose report missing %q", want)
		}
	}
}

func TestRenderVerboseEscapesSymbol(t *testing.T) {
	res := fullResult()
	res.Meta.Symbol = "<script>"
	out := RenderVerbose(res)
	if strings.Contains(out, "<script>") {
		t.Error("symbol was not HTML-escaped")
	}
}

func TestRecommendationTiers(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{0, "LOW"}, {30, "LOW"},
		{31, "MEDIUM"}, {60, "MEDIUM"},
		{61, "HIGH"}, {100, "HIGH"},
	}
	for _, c := range cases {
		if got := Recommendation(c.score); !strings.Contains(got, c.want) {
			t.Errorf("score %d: expected %s tier, got %q", c.score, c.want, got)
		}
	}
}

func TestSwapLinks(t *testing.T) {
	buy := SwapLinks("buy", usdcMint)
	if !strings.Contains(buy, "jup.ag/swap/SOL-"+usdcMint.String()) {
		t.Errorf("buy block missing jupiter link:\n%s", buy)
	}
	sell := SwapLinks("sell", usdcMint)
	if !strings.Contains(sell, "jup.ag/swap/"+usdcMint.String()+"-SOL") {
		t.Errorf("sell block missing jupiter link:\n%s", sell)
	}
}

func TestFormatUsdAbbrev(t *testing.T) {
	cases := []struct {
		in   OptFloat
		want string
	}{
		{OptFloat{}, "N/A"},
		{Float(0), "0"},
		{Float(999), "999"},
		{Float(1_000), "1.0K"},
		{Float(45_500), "45.5K"},
		{Float(999_999), "1000.0K"},
		{Float(1_000_000), "1.0M"},
		{Float(2_340_000), "2.3M"},
	}
	for _, c := range cases {
		if got := formatUsdAbbrev(c.in); got != c.want {
			t.Errorf("formatUsdAbbrev(%v) = %q, expected %q", c.in, got, c.want)
		}
	}
}
