package analyzer

// Scoring is additive: start from a base, apply each signal's band, clamp
// to [0,100]. Absent fields score as 0 (rendering still shows N/A). The
// band values are heuristic policy; tuning them is a product call.

const (
	baseRisk      = 30
	baseTechnical = 50
)

// RiskScore derives a 0-100 risk figure from market and holder signals.
// Pure and deterministic: same inputs, same score, no I/O.
func RiskScore(m MarketSnapshot, h HolderSnapshot) int {
	score := baseRisk

	// Price action first; exactly one band applies, most severe first.
	change := m.PriceChange24h.Or(0)
	switch {
	case change < -30:
		score += 40
	case change < -20:
		score += 30
	case change < -10:
		score += 20
	case change < -5:
		score += 10
	case change > 100:
		score += 25 // pump risk
	}

	holders := h.HolderCount.Or(0)
	switch {
	case holders < 100:
		score += 20
	case holders < 500:
		score += 10
	case holders > 1000:
		score -= 5
	}

	mcap := m.MarketCapUsd.Or(0)
	switch {
	case mcap < 50_000:
		score += 25
	case mcap < 100_000:
		score += 15
	case mcap > 10_000_000:
		score -= 10
	}

	volume := m.Volume24hUsd.Or(0)
	switch {
	case volume < 1_000:
		score += 20
	case volume < 10_000:
		score += 10
	}

	topHolder := h.TopHolderPercent.Or(0)
	switch {
	case topHolder > 50:
		score += 20
	case topHolder > 30:
		score += 10
	}

	return clampScore(score)
}

// TechnicalScore derives a 0-100 quality figure from metadata presence and
// market activity. Pure and deterministic.
func TechnicalScore(meta TokenMetadata, m MarketSnapshot, h HolderSnapshot) int {
	score := baseTechnical

	if meta.Symbol != "" {
		score += 10
	}
	if meta.Name != "" {
		score += 10
	}
	if m.Volume24hUsd.Or(0) > 50_000 {
		score += 20
	}
	if m.PriceChange24h.Or(0) > 0 {
		score += 10
	}
	if h.HolderCount.Or(0) > 500 {
		score += 15
	}

	return clampScore(score)
}

func clampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
