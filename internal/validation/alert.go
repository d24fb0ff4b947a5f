package validation

import (
	"fmt"
	"strings"

	"github.com/ndewijer/portfolio-radar/internal/model"
)

// ParseAlert validates a price alert definition.
func ParseAlert(ticker string, target float64, kind string) (model.Alert, error) {
	errs := fields{}
	var a model.Alert
	var err error

	if a.Ticker, err = NormalizeTicker(ticker); err != nil {
		errs.add("ticker", err.Error())
	}
	if target <= 0 {
		errs.add("target", "target must be positive")
	}
	a.Target = target

	switch k := model.AlertKind(strings.ToUpper(strings.TrimSpace(kind))); k {
	case model.AlertBuy, model.AlertSell:
		a.Kind = k
	default:
		errs.add("kind", fmt.Sprintf("invalid kind: %s", kind))
	}

	if err := errs.err(); err != nil {
		return model.Alert{}, err
	}
	return a, nil
}
