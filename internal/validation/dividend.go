package validation

import (
	"strings"

	"github.com/ndewijer/portfolio-radar/internal/model"
)

// ParseDividendRow validates one row produced by the dividend import collaborator.
// The returned dividend has no ID yet. A missing net amount defaults to the gross amount.
func ParseDividendRow(row model.DividendImportRow) (model.Dividend, error) {
	errs := fields{}
	var d model.Dividend
	var err error

	if d.Ticker, err = NormalizeTicker(row.Ticker); err != nil {
		errs.add("ticker", err.Error())
	}

	d.Category = strings.TrimSpace(row.Category)
	if d.Category == "" {
		d.Category = "DIVIDEND"
	}

	if d.GrossAmount, err = ParseAmount(row.GrossAmount); err != nil {
		errs.add("grossAmount", "grossAmount "+err.Error())
	}

	if strings.TrimSpace(string(row.NetAmount)) == "" {
		d.NetAmount = d.GrossAmount
	} else if d.NetAmount, err = ParseAmount(row.NetAmount); err != nil {
		errs.add("netAmount", "netAmount "+err.Error())
	}

	if d.PayDate, err = ParseDate(row.PayDate); err != nil {
		errs.add("payDate", err.Error())
	}
	if strings.TrimSpace(row.ExDate) == "" {
		d.ExDate = d.PayDate
	} else if d.ExDate, err = ParseDate(row.ExDate); err != nil {
		errs.add("exDate", err.Error())
	}

	if err := errs.err(); err != nil {
		return model.Dividend{}, err
	}
	return d, nil
}
