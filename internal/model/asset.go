package model

import (
	"fmt"
	"strings"
)

// AssetClass groups instruments by how they are priced and valued.
type AssetClass string

// Supported asset classes.
const (
	DomesticEquity    AssetClass = "DOMESTIC_EQUITY"
	ForeignEquity     AssetClass = "FOREIGN_EQUITY"
	REITFund          AssetClass = "REIT_FUND"
	ETF               AssetClass = "ETF"
	DepositaryReceipt AssetClass = "DEPOSITARY_RECEIPT"
	Crypto            AssetClass = "CRYPTO"
)

// AssetClasses lists every supported class in display order.
var AssetClasses = []AssetClass{DomesticEquity, ForeignEquity, REITFund, ETF, DepositaryReceipt, Crypto}

// assetClassAliases maps the labels used by brokerage exports onto asset classes.
var assetClassAliases = map[string]AssetClass{
	"DOMESTIC_EQUITY":    DomesticEquity,
	"ACAO":               DomesticEquity,
	"STOCK_BR":           DomesticEquity,
	"FOREIGN_EQUITY":     ForeignEquity,
	"STOCK":              ForeignEquity,
	"REIT_FUND":          REITFund,
	"FII":                REITFund,
	"REIT":               REITFund,
	"ETF":                ETF,
	"DEPOSITARY_RECEIPT": DepositaryReceipt,
	"BDR":                DepositaryReceipt,
	"CRYPTO":             Crypto,
}

// ParseAssetClass resolves a class name or one of its import aliases.
func ParseAssetClass(raw string) (AssetClass, error) {
	key := strings.ToUpper(strings.TrimSpace(raw))
	if c, ok := assetClassAliases[key]; ok {
		return c, nil
	}
	return "", fmt.Errorf("unknown asset class %q", raw)
}

// Valid reports whether c is one of the supported classes.
func (c AssetClass) Valid() bool {
	for _, known := range AssetClasses {
		if c == known {
			return true
		}
	}
	return false
}

// IsForeignCurrency reports whether quotes for the class arrive in a foreign
// currency and need conversion to the domestic one.
func (c AssetClass) IsForeignCurrency() bool {
	return c == ForeignEquity
}

// IsIncomeFund reports whether the class is valued by yield and book value
// rather than by earnings multiples.
func (c AssetClass) IsIncomeFund() bool {
	return c == REITFund
}

// Label is the human readable name used in allocation breakdowns.
func (c AssetClass) Label() string {
	switch c {
	case DomesticEquity:
		return "Domestic equities"
	case ForeignEquity:
		return "Foreign equities"
	case REITFund:
		return "Real estate funds"
	case ETF:
		return "ETFs"
	case DepositaryReceipt:
		return "Depositary receipts"
	case Crypto:
		return "Crypto"
	default:
		return string(c)
	}
}
