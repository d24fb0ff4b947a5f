package request

import (
	"fmt"
	"strings"

	"github.com/ndewijer/portfolio-radar/internal/model"
	"github.com/ndewijer/portfolio-radar/internal/service"
	"github.com/ndewijer/portfolio-radar/internal/validation"
)

// PortfolioFilters are the optional query parameters of the portfolio endpoints.
type PortfolioFilters struct {
	Filter service.PortfolioFilter
	Period string
}

var validPeriods = map[string]bool{
	service.PeriodAll:      true,
	service.PeriodMonth:    true,
	service.PeriodSemester: true,
	service.PeriodYear:     true,
}

// ParsePortfolioFilters extracts and validates the portfolio filters.
//
// Validation rules:
//   - assetClass: a supported class or one of its import aliases
//   - ticker: a well-formed ticker, uppercased
//   - period: ALL, 1M, 6M or 1Y in any case (defaults to ALL)
//
// All parameters are optional.
func ParsePortfolioFilters(assetClassParam, tickerParam, periodParam string) (*PortfolioFilters, error) {
	filters := &PortfolioFilters{Period: service.PeriodAll}

	if strings.TrimSpace(assetClassParam) != "" {
		class, err := model.ParseAssetClass(assetClassParam)
		if err != nil {
			return nil, fmt.Errorf("invalid assetClass: %w", err)
		}
		filters.Filter.AssetClass = class
	}

	if strings.TrimSpace(tickerParam) != "" {
		ticker, err := validation.NormalizeTicker(tickerParam)
		if err != nil {
			return nil, fmt.Errorf("invalid ticker: %w", err)
		}
		filters.Filter.Ticker = ticker
	}

	if p := strings.ToUpper(strings.TrimSpace(periodParam)); p != "" {
		if !validPeriods[p] {
			return nil, fmt.Errorf("invalid period: must be one of ALL, 1M, 6M, 1Y")
		}
		filters.Period = p
	}

	return filters, nil
}
