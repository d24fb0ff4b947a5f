package brapi

import (
	"strings"
	"unicode"
)

// SymbolKind classifies a provider symbol by how it is quoted.
type SymbolKind int

const (
	// Domestic is an exchange-listed equity that needs the market suffix.
	Domestic SymbolKind = iota
	// Foreign is a plain-letter equity quoted in a foreign currency.
	Foreign
	// Index is a market index such as ^BVSP.
	Index
	// Currency is a currency pair such as USDBRL=X.
	Currency
	// Crypto is a crypto pair such as BTC-USD.
	Crypto
)

func (k SymbolKind) String() string {
	switch k {
	case Domestic:
		return "domestic"
	case Foreign:
		return "foreign"
	case Index:
		return "index"
	case Currency:
		return "currency"
	case Crypto:
		return "crypto"
	default:
		return "unknown"
	}
}

// HasFundamentals reports whether ratios are ever resolved for the kind.
func (k SymbolKind) HasFundamentals() bool {
	return k == Domestic || k == Foreign
}

const specialMarkers = "^-=."

// NormalizeSymbol uppercases a ticker and appends the domestic market suffix
// when it looks like a local listing: it contains a digit, carries none of the
// ^ - = . markers and is at least three characters long. Everything else is
// passed through unchanged.
func NormalizeSymbol(ticker, suffix string) string {
	s := strings.ToUpper(strings.TrimSpace(ticker))
	if s == "" || strings.ContainsAny(s, specialMarkers) || len(s) < 3 {
		return s
	}
	if containsDigit(s) {
		return s + strings.ToUpper(suffix)
	}
	return s
}

// ClassifySymbol reports the kind of a raw or normalized symbol.
func ClassifySymbol(symbol, suffix string) SymbolKind {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	switch {
	case strings.HasPrefix(s, "^"):
		return Index
	case strings.Contains(s, "="):
		return Currency
	case strings.Contains(s, "-"):
		return Crypto
	}

	base := StripSuffix(s, suffix)
	if !strings.Contains(base, ".") && len(base) >= 3 && containsDigit(base) {
		return Domestic
	}
	return Foreign
}

// StripSuffix removes the domestic market suffix if present.
func StripSuffix(symbol, suffix string) string {
	s := strings.ToUpper(symbol)
	suffix = strings.ToUpper(suffix)
	if suffix != "" && strings.HasSuffix(s, suffix) {
		return strings.TrimSuffix(s, suffix)
	}
	return s
}

// SymbolVariants returns the forms under which the provider may echo a
// ticker back: as given, with the suffix and without it. Duplicates are
// removed and the order is stable.
func SymbolVariants(ticker, suffix string) []string {
	s := strings.ToUpper(strings.TrimSpace(ticker))
	candidates := []string{s, NormalizeSymbol(s, suffix), StripSuffix(s, suffix)}

	out := make([]string, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// Chunk splits symbols into consecutive groups of at most size elements.
func Chunk(symbols []string, size int) [][]string {
	if size <= 0 {
		size = 1
	}
	chunks := make([][]string, 0, (len(symbols)+size-1)/size)
	for start := 0; start < len(symbols); start += size {
		end := min(start+size, len(symbols))
		chunks = append(chunks, symbols[start:end])
	}
	return chunks
}

// dedupe normalizes and deduplicates tickers, keeping first-seen order.
func dedupe(tickers []string, suffix string) []string {
	out := make([]string, 0, len(tickers))
	seen := make(map[string]bool, len(tickers))
	for _, t := range tickers {
		s := NormalizeSymbol(t, suffix)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func containsDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
