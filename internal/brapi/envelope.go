package brapi

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"

	"github.com/ndewijer/portfolio-radar/internal/model"
)

// Field names a fundamental ratio resolved from a provider result.
type Field string

const (
	PriceEarnings  Field = "priceEarnings"
	PriceToBook    Field = "priceToBook"
	DividendYield  Field = "dividendYield"
	ReturnOnEquity Field = "returnOnEquity"
)

// Fields lists every resolved ratio.
var Fields = []Field{PriceEarnings, PriceToBook, DividendYield, ReturnOnEquity}

// domesticPaths is the resolution order for local listings, whose ratios
// usually sit in the fundamental module.
var domesticPaths = map[Field][]string{
	PriceEarnings: {
		"$.fundamental.priceEarnings",
		"$.fundamentals[0].priceEarnings",
		"$.priceEarnings",
		"$.defaultKeyStatistics.forwardPE",
		"$.defaultKeyStatistics.trailingPE",
	},
	PriceToBook: {
		"$.fundamental.priceToBook",
		"$.fundamentals[0].priceToBook",
		"$.pvp",
		"$.defaultKeyStatistics.priceToBook",
	},
	DividendYield: {
		"$.fundamental.dividendYield",
		"$.fundamentals[0].dividendYield",
		"$.dividendYield",
		"$.summaryDetail.dividendYield",
		"$.defaultKeyStatistics.yield",
		"$.defaultKeyStatistics.dividendYield",
	},
	ReturnOnEquity: {
		"$.fundamental.returnOnEquity",
		"$.fundamentals[0].returnOnEquity",
		"$.defaultKeyStatistics.returnOnEquity",
		"$.roe",
		"$.fundamental.roe",
		"$.returnOnEquity",
	},
}

// foreignPaths prefers the statistics modules, which carry the ratios for
// foreign listings.
var foreignPaths = map[Field][]string{
	PriceEarnings: {
		"$.defaultKeyStatistics.trailingPE",
		"$.defaultKeyStatistics.forwardPE",
		"$.summaryDetail.trailingPE",
		"$.priceEarnings",
		"$.fundamental.priceEarnings",
	},
	PriceToBook: {
		"$.defaultKeyStatistics.priceToBook",
		"$.fundamental.priceToBook",
		"$.pvp",
	},
	DividendYield: {
		"$.summaryDetail.dividendYield",
		"$.defaultKeyStatistics.yield",
		"$.defaultKeyStatistics.dividendYield",
		"$.dividendYield",
		"$.fundamental.dividendYield",
	},
	ReturnOnEquity: {
		"$.financialData.returnOnEquity",
		"$.defaultKeyStatistics.returnOnEquity",
		"$.fundamental.returnOnEquity",
		"$.returnOnEquity",
	},
}

// fieldAliases is the closed key set searched by the recursive fallback.
var fieldAliases = map[Field][]string{
	PriceEarnings:  {"priceearnings", "trailingpe", "forwardpe", "pe", "pl"},
	PriceToBook:    {"pricetobook", "pvp", "pb"},
	DividendYield:  {"dividendyield", "yield", "dy"},
	ReturnOnEquity: {"returnonequity", "roe"},
}

// maxSearchDepth bounds the recursive fallback below the result root.
const maxSearchDepth = 3

// ResolutionOrder returns the jsonpath expressions tried for a field, in order.
// Kinds without fundamentals resolve nothing.
func ResolutionOrder(kind SymbolKind, field Field) []string {
	switch kind {
	case Domestic:
		return domesticPaths[field]
	case Foreign:
		return foreignPaths[field]
	default:
		return nil
	}
}

// Envelope is one loosely structured entry of the provider's results array,
// tagged with the kind of symbol it belongs to.
type Envelope struct {
	Symbol string
	Kind   SymbolKind
	raw    map[string]any
}

// NewEnvelope tags a decoded result. It returns false when the result has no symbol.
func NewEnvelope(raw map[string]any, suffix string) (Envelope, bool) {
	sym, _ := raw["symbol"].(string)
	sym = strings.ToUpper(strings.TrimSpace(sym))
	if sym == "" {
		return Envelope{}, false
	}
	return Envelope{Symbol: sym, Kind: ClassifySymbol(sym, suffix), raw: raw}, true
}

// Resolve returns the first numeric value found for field, trying the
// prioritized paths first and then the bounded recursive search. A missing
// or non-numeric value yields nil, never zero.
func (e Envelope) Resolve(field Field) *float64 {
	if !e.Kind.HasFundamentals() {
		return nil
	}

	for _, path := range ResolutionOrder(e.Kind, field) {
		if v := numberAt(path, e.raw); v != nil {
			return v
		}
	}

	return search(e.raw, fieldAliases[field], 0)
}

// Quote converts the envelope into a quote. It returns false when the
// result carries no usable price.
func (e Envelope) Quote(now time.Time) (model.Quote, bool) {
	price := toFloat(e.raw["regularMarketPrice"])
	if price == nil || *price <= 0 {
		return model.Quote{}, false
	}

	q := model.Quote{
		Symbol: e.Symbol,
		Price:  *price,
		AsOf:   now,
	}
	if change := toFloat(e.raw["regularMarketChangePercent"]); change != nil {
		q.ChangePercent = *change
	}
	if cur, ok := e.raw["currency"].(string); ok {
		q.Currency = cur
	}
	if t, ok := marketTime(e.raw["regularMarketTime"]); ok {
		q.AsOf = t
	}

	q.PriceEarnings = e.Resolve(PriceEarnings)
	q.PriceToBook = e.Resolve(PriceToBook)
	q.DividendYield = NormalizeRatio(e.Resolve(DividendYield))
	q.ReturnOnEquity = NormalizeRatio(e.Resolve(ReturnOnEquity))
	return q, true
}

// NormalizeRatio rescales a ratio reported as a proportion to a percentage.
// Any non-zero value with magnitude below 1 is treated as a proportion and
// multiplied by 100. This is a heuristic: a genuine 0.4% yield is read as 40%.
func NormalizeRatio(v *float64) *float64 {
	if v == nil {
		return nil
	}
	n := *v
	if n != 0 && math.Abs(n) < 1 {
		n *= 100
	}
	return &n
}

func numberAt(path string, obj map[string]any) *float64 {
	v, err := jsonpath.Get(path, obj)
	if err != nil {
		return nil
	}
	// jsonpath may wrap a single match in a list
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return nil
		}
		v = list[0]
	}
	return toFloat(v)
}

// search walks maps and arrays looking for an alias key holding a number.
// Keys are visited in sorted order so the result is deterministic, and
// historical price arrays are never entered.
func search(node any, aliases []string, depth int) *float64 {
	if depth > maxSearchDepth {
		return nil
	}

	switch n := node.(type) {
	case map[string]any:
		keys := make([]string, 0, len(n))
		for k := range n {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			if isAlias(k, aliases) {
				if v := toFloat(n[k]); v != nil {
					return v
				}
			}
		}
		for _, k := range keys {
			if skipKey(k) {
				continue
			}
			if v := search(n[k], aliases, depth+1); v != nil {
				return v
			}
		}
	case []any:
		for _, item := range n {
			if v := search(item, aliases, depth+1); v != nil {
				return v
			}
		}
	}
	return nil
}

func isAlias(key string, aliases []string) bool {
	lower := strings.ToLower(key)
	for _, a := range aliases {
		if lower == a {
			return true
		}
	}
	return false
}

func skipKey(key string) bool {
	lower := strings.ToLower(key)
	return strings.HasPrefix(lower, "historical") || lower == "dividendsdata"
}

func toFloat(v any) *float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(n, "%")), 64)
		if err != nil {
			return nil
		}
		f = parsed
	case map[string]any:
		// statistics modules sometimes wrap values as {"raw": 0.12, "fmt": "12%"}
		return toFloat(n["raw"])
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func marketTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return time.Time{}, false
		}
		return parsed.UTC(), true
	case float64:
		if t <= 0 {
			return time.Time{}, false
		}
		return time.Unix(int64(t), 0).UTC(), true
	}
	return time.Time{}, false
}
