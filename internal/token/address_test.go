package token

import "testing"

const usdcMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"

func TestExtractFindsAddress(t *testing.T) {
	got, ok := Extract("check " + usdcMint + " now")
	if !ok {
		t.Fatal("expected an address, got none")
	}
	if got != usdcMint {
		t.Errorf("expected %s, got %s", usdcMint, got)
	}
}

func TestExtractIsIdempotent(t *testing.T) {
	text := "what about " + usdcMint + "?"
	first, ok1 := Extract(text)
	second, ok2 := Extract(text)
	if ok1 != ok2 || first != second {
		t.Errorf("two runs disagree: (%q,%v) vs (%q,%v)", first, ok1, second, ok2)
	}
}

func TestExtractNoCandidate(t *testing.T) {
	for _, text := range []string{
		"",
		"gm everyone",
		"short base58 run abc123",
	} {
		if got, ok := Extract(text); ok {
			t.Errorf("Extract(%q) = %q, expected none", text, got)
		}
	}
}

func TestExtractRejectsOverlongRun(t *testing.T) {
	// A 50-char base58 run must not yield its 44-char prefix.
	long := usdcMint + "AAAAAA"
	if got, ok := Extract("look " + long); ok {
		t.Errorf("expected no match inside overlong run, got %q", got)
	}
}

func TestExtractTakesFirstOfTwo(t *testing.T) {
	wsol := "So11111111111111111111111111111111111111112"
	got, ok := Extract(wsol + " vs " + usdcMint)
	if !ok || got != wsol {
		t.Errorf("expected first address %s, got %q (ok=%v)", wsol, got, ok)
	}
}

func TestParse(t *testing.T) {
	if _, err := Parse(usdcMint); err != nil {
		t.Errorf("expected valid address, got %v", err)
	}
	for _, bad := range []string{
		"",
		"tooshort",
		"OOOOOOOOOOOOOOOOOOOOOOOOOOOOOOOOOOOO", // O is not base58
		"111111111111111111111111111111111111111111111", // 45 chars
	} {
		if _, err := Parse(bad); err == nil {
			t.Errorf("Parse(%q) expected error, got nil", bad)
		}
	}
}

func TestAddressShort(t *testing.T) {
	a := Address(usdcMint)
	if got := a.Short(); got != "EPjF...Dt1v" {
		t.Errorf("expected EPjF...Dt1v, got %s", got)
	}
}
