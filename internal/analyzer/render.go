package analyzer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/safememefi/riskscan/internal/token"
)

// ReplyMaxLen is the short-form platform ceiling. RenderReply guarantees
// its output fits.
const ReplyMaxLen = 280

const (
	scannerURL   = "https://safememefi-analyzer.vercel.app/"
	replyFooter  = "AI-powered token risk scanner\nDetect rugs, honeypots & pump scams\n" + scannerURL
	shortFooter  = "AI-powered token risk scanner\n" + scannerURL
	riskLowMax   = 30
	riskMedMax   = 60
)

// RenderReply builds the reply-sized summary for the mention loop.
func RenderReply(res *Result) string {
	symbol := res.Meta.Symbol
	if symbol == "" {
		symbol = "TOKEN"
	}

	var b strings.Builder
	b.WriteString(symbol)
	b.WriteString("\n")
	fmt.Fprintf(&b, "24h Change: %s%%\n", formatPercent(res.Market.PriceChange24h))
	fmt.Fprintf(&b, "Technical Score: %d/100\n", res.TechnicalScore)
	fmt.Fprintf(&b, "Market Cap: $%s\n", formatUsdAbbrev(res.Market.MarketCapUsd))
	fmt.Fprintf(&b, "Token Distribution: %s holders\n", formatCount(res.Holders.HolderCount))
	fmt.Fprintf(&b, "24H Volume: $%s\n", formatUsdAbbrev(res.Market.Volume24hUsd))
	fmt.Fprintf(&b, "Risk Score: %d/100\n\n", res.RiskScore)
	b.WriteString(replyFooter)

	return truncate(b.String(), ReplyMaxLen)
}

// RenderError is the short-form reply for a token that could not be
// analyzed (structurally invalid address).
func RenderError(raw string) string {
	short := raw
	if len(short) > 8 {
		short = short[:8]
	}
	msg := fmt.Sprintf("Unable to analyze token: %s...\nPlease check if the address is valid.\n\n%s", short, shortFooter)
	return truncate(msg, ReplyMaxLen)
}

// RenderVerbose builds the rich Telegram report (HTML parse mode).
func RenderVerbose(res *Result) string {
	symbol := res.Meta.Symbol
	if symbol == "" {
		symbol = "TOKEN"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🎯 <b>%s ANALYSIS</b>\n\n", escapeHTML(symbol))

	b.WriteString("📊 <b>Price Data:</b>\n")
	fmt.Fprintf(&b, "- Price: $%s\n", formatPrice(res.Market.PriceUsd))
	fmt.Fprintf(&b, "- 24h Change: %s%%\n", formatPercent(res.Market.PriceChange24h))
	fmt.Fprintf(&b, "- Market Cap: $%s\n", formatUsdAbbrev(res.Market.MarketCapUsd))
	fmt.Fprintf(&b, "- 24H Volume: $%s\n\n", formatUsdAbbrev(res.Market.Volume24hUsd))

	b.WriteString("🔍 <b>Technical Analysis:</b>\n")
	fmt.Fprintf(&b, "- Technical Score: %d/100\n", res.TechnicalScore)
	fmt.Fprintf(&b, "- Risk Score: %d/100\n\n", res.RiskScore)

	b.WriteString("👥 <b>Token Distribution:</b>\n")
	fmt.Fprintf(&b, "- Holders: %s\n", formatCount(res.Holders.HolderCount))
	fmt.Fprintf(&b, "- Top Holder: %s%%\n\n", formatPercent(res.Holders.TopHolderPercent))

	b.WriteString("⚠️ <b>Risk Factors:</b>\n")
	for _, f := range riskFactors(res) {
		b.WriteString(f)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "🚀 <b>Recommendation:</b> %s\n\n", Recommendation(res.RiskScore))
	b.WriteString(shortFooter)
	return b.String()
}

// riskFactors lists the signals that pushed the score up. Absent values
// count like zeros here, same as in scoring.
func riskFactors(res *Result) []string {
	var factors []string
	if res.Holders.HolderCount.Or(0) < 100 {
		factors = append(factors, "• Low holder count")
	}
	if res.Market.MarketCapUsd.Or(0) < 100_000 {
		factors = append(factors, "• Low market cap")
	}
	if res.Market.Volume24hUsd.Or(0) < 10_000 {
		factors = append(factors, "• Low trading volume")
	}
	if res.Holders.TopHolderPercent.Or(0) > 50 {
		factors = append(factors, "• High concentration")
	}
	if len(factors) == 0 {
		factors = append(factors, "• No major risks detected")
	}
	return factors
}

// Recommendation maps a risk score to its tier.
func Recommendation(risk int) string {
	switch {
	case risk <= riskLowMax:
		return "🟢 LOW RISK - Good for investment"
	case risk <= riskMedMax:
		return "🟡 MEDIUM RISK - Proceed with caution"
	default:
		return "🔴 HIGH RISK - Not recommended"
	}
}

// SwapLinks renders the trade-link block for a BUY or SELL button press.
// No analysis is re-run for this.
func SwapLinks(action string, addr token.Address) string {
	var b strings.Builder
	switch action {
	case "buy":
		fmt.Fprintf(&b, "🟢 <b>BUY %s</b>\n\n", addr.Short())
		b.WriteString("Quick trade options:\n")
		fmt.Fprintf(&b, "🔗 Jupiter: https://jup.ag/swap/SOL-%s\n", addr)
		fmt.Fprintf(&b, "🔗 Raydium: https://raydium.io/swap/?inputCurrency=sol&outputCurrency=%s\n", addr)
		fmt.Fprintf(&b, "🔗 DexScreener: %s\n", ChartURL(addr))
	case "sell":
		fmt.Fprintf(&b, "🔴 <b>SELL %s</b>\n\n", addr.Short())
		b.WriteString("Quick trade options:\n")
		fmt.Fprintf(&b, "🔗 Jupiter: https://jup.ag/swap/%s-SOL\n", addr)
		fmt.Fprintf(&b, "🔗 Raydium: https://raydium.io/swap/?inputCurrency=%s&outputCurrency=sol\n", addr)
	}
	b.WriteString("\n⚠️ Always DYOR before trading!")
	return b.String()
}

// AnalyzerURL links the web frontend's full analysis page for a token.
func AnalyzerURL(addr token.Address) string {
	return fmt.Sprintf("%s?token=%s", scannerURL, addr)
}

// ChartURL links the DexScreener chart for a token.
func ChartURL(addr token.Address) string {
	return fmt.Sprintf("https://dexscreener.com/solana/%s", addr)
}

// formatUsdAbbrev renders a dollar figure with K/M abbreviation, or N/A.
func formatUsdAbbrev(o OptFloat) string {
	if !o.Valid {
		return "N/A"
	}
	v := o.Value
	switch {
	case v >= 1_000_000:
		return strconv.FormatFloat(v/1_000_000, 'f', 1, 64) + "M"
	case v >= 1_000:
		return strconv.FormatFloat(v/1_000, 'f', 1, 64) + "K"
	default:
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
}

func formatPercent(o OptFloat) string {
	if !o.Valid {
		return "N/A"
	}
	return strconv.FormatFloat(o.Value, 'f', 2, 64)
}

func formatCount(o OptInt) string {
	if !o.Valid {
		return "N/A"
	}
	return strconv.FormatInt(o.Value, 10)
}

// formatPrice keeps six decimals for small prices and trims to something
// readable for large ones.
func formatPrice(o OptFloat) string {
	if !o.Valid {
		return "N/A"
	}
	if o.Value >= 1 {
		return strconv.FormatFloat(o.Value, 'f', 2, 64)
	}
	return strconv.FormatFloat(o.Value, 'f', 6, 64)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	r := []rune(s)
	if len(r) > max-3 {
		r = r[:max-3]
	}
	return string(r) + "..."
}

func escapeHTML(s string) string {
	replacer := strings.NewReplacer(
		`&`, "&amp;",
		`<`, "&lt;",
		`>`, "&gt;",
		`"`, "&quot;",
	)
	return replacer.Replace(s)
}
