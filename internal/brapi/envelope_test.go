package brapi

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeResult(t *testing.T, raw string) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}

func envelope(t *testing.T, raw string) Envelope {
	t.Helper()
	env, ok := NewEnvelope(decodeResult(t, raw), ".SA")
	require.True(t, ok)
	return env
}

// TestEnvelope_Resolve covers the prioritized paths and the bounded fallback.
//
// WHY: Ratios arrive at different nesting levels depending on the symbol; a
// wrong resolution silently changes every valuation built on top of them.
func TestEnvelope_Resolve(t *testing.T) {
	t.Run("domestic prefers the fundamental module", func(t *testing.T) {
		env := envelope(t, `{
			"symbol": "PETR4.SA",
			"priceEarnings": 99,
			"fundamental": {"priceEarnings": 4.5, "priceToBook": 1.1}
		}`)

		require.NotNil(t, env.Resolve(PriceEarnings))
		assert.InDelta(t, 4.5, *env.Resolve(PriceEarnings), 1e-9)
		assert.InDelta(t, 1.1, *env.Resolve(PriceToBook), 1e-9)
	})

	t.Run("domestic falls back to the fundamentals array", func(t *testing.T) {
		env := envelope(t, `{
			"symbol": "VALE3",
			"fundamentals": [{"returnOnEquity": 0.21}]
		}`)

		assert.InDelta(t, 0.21, *env.Resolve(ReturnOnEquity), 1e-9)
	})

	t.Run("foreign prefers key statistics and unwraps raw values", func(t *testing.T) {
		env := envelope(t, `{
			"symbol": "AAPL",
			"fundamental": {"priceEarnings": 50},
			"defaultKeyStatistics": {"trailingPE": {"raw": 28.4, "fmt": "28.40"}}
		}`)

		assert.InDelta(t, 28.4, *env.Resolve(PriceEarnings), 1e-9)
	})

	t.Run("numeric strings are accepted", func(t *testing.T) {
		env := envelope(t, `{"symbol": "ITSA4", "pvp": "1.35"}`)

		assert.InDelta(t, 1.35, *env.Resolve(PriceToBook), 1e-9)
	})

	t.Run("recursive fallback finds aliases in unknown modules", func(t *testing.T) {
		env := envelope(t, `{
			"symbol": "WEGE3",
			"extra": {"valuation": {"pl": 31.2}}
		}`)

		assert.InDelta(t, 31.2, *env.Resolve(PriceEarnings), 1e-9)
	})

	t.Run("recursive fallback never enters historical arrays", func(t *testing.T) {
		env := envelope(t, `{
			"symbol": "WEGE3",
			"historicalDataPrice": [{"pe": 12}]
		}`)

		assert.Nil(t, env.Resolve(PriceEarnings))
	})

	t.Run("recursive fallback is depth bounded", func(t *testing.T) {
		env := envelope(t, `{
			"symbol": "WEGE3",
			"a": {"b": {"c": {"d": {"pe": 12}}}}
		}`)

		assert.Nil(t, env.Resolve(PriceEarnings))
	})

	t.Run("missing ratio stays nil", func(t *testing.T) {
		env := envelope(t, `{"symbol": "WEGE3", "regularMarketPrice": 40}`)

		for _, f := range Fields {
			assert.Nil(t, env.Resolve(f), string(f))
		}
	})

	t.Run("index, currency and crypto never resolve fundamentals", func(t *testing.T) {
		for _, sym := range []string{"^BVSP", "USDBRL=X", "BTC-USD"} {
			env := envelope(t, `{"symbol": "`+sym+`", "fundamental": {"priceEarnings": 10}}`)
			assert.Nil(t, env.Resolve(PriceEarnings), sym)
		}
	})
}

func TestResolutionOrder(t *testing.T) {
	assert.Equal(t, "$.fundamental.priceEarnings", ResolutionOrder(Domestic, PriceEarnings)[0])
	assert.Equal(t, "$.defaultKeyStatistics.trailingPE", ResolutionOrder(Foreign, PriceEarnings)[0])
	assert.Empty(t, ResolutionOrder(Index, PriceEarnings))

	for _, f := range Fields {
		assert.NotEmpty(t, ResolutionOrder(Domestic, f), string(f))
		assert.NotEmpty(t, ResolutionOrder(Foreign, f), string(f))
	}
}

// TestNormalizeRatio documents the proportion heuristic.
//
// WHY: Yield and ROE arrive either as fractions or as percentages; the
// heuristic is lossy for genuine sub-1% values and the test pins that down.
func TestNormalizeRatio(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	assert.Nil(t, NormalizeRatio(nil))
	assert.InDelta(t, 8.0, *NormalizeRatio(f(0.08)), 1e-9)
	assert.InDelta(t, -15.0, *NormalizeRatio(f(-0.15)), 1e-9)
	assert.InDelta(t, 8.0, *NormalizeRatio(f(8)), 1e-9)
	assert.InDelta(t, 1.0, *NormalizeRatio(f(1)), 1e-9)
	assert.InDelta(t, 0.0, *NormalizeRatio(f(0)), 1e-9)
	// known precision loss: a real 0.4% yield reads as 40%
	assert.InDelta(t, 40.0, *NormalizeRatio(f(0.4)), 1e-9)
}

func TestEnvelope_Quote(t *testing.T) {
	now := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)

	t.Run("builds a normalized quote", func(t *testing.T) {
		env := envelope(t, `{
			"symbol": "HGLG11.SA",
			"regularMarketPrice": 160.5,
			"regularMarketChangePercent": -0.7,
			"regularMarketTime": "2026-03-02T13:00:00Z",
			"fundamental": {"priceToBook": 0.92, "dividendYield": 0.087}
		}`)

		q, ok := env.Quote(now)

		require.True(t, ok)
		assert.Equal(t, "HGLG11.SA", q.Symbol)
		assert.InDelta(t, 160.5, q.Price, 1e-9)
		assert.InDelta(t, -0.7, q.ChangePercent, 1e-9)
		assert.InDelta(t, 8.7, *q.DividendYield, 1e-9)
		assert.InDelta(t, 0.92, *q.PriceToBook, 1e-9)
		assert.Nil(t, q.PriceEarnings)
		assert.Equal(t, time.Date(2026, 3, 2, 13, 0, 0, 0, time.UTC), q.AsOf)
	})

	t.Run("missing price yields no quote", func(t *testing.T) {
		env := envelope(t, `{"symbol": "XPTO4"}`)

		_, ok := env.Quote(now)
		assert.False(t, ok)
	})

	t.Run("result without symbol is rejected", func(t *testing.T) {
		_, ok := NewEnvelope(decodeResult(t, `{"regularMarketPrice": 1}`), ".SA")
		assert.False(t, ok)
	})
}
