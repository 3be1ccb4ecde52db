package ledger

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// AccountType distinguishes plain cash accounts from investment accounts.
// Investment accounts must name a broker before trades can be replayed.
type AccountType int

const (
	CashAccount AccountType = iota
	InvestmentAccount
)

func (t AccountType) String() string {
	switch t {
	case CashAccount:
		return "cash"
	case InvestmentAccount:
		return "investment"
	default:
		return "unknown"
	}
}

// ParseAccountType parses a string into an AccountType.
func ParseAccountType(s string) (AccountType, error) {
	switch s {
	case "cash":
		return CashAccount, nil
	case "investment":
		return InvestmentAccount, nil
	default:
		return 0, fmt.Errorf("unknown account type: %q", s)
	}
}

// Account is reference data owned by the reference store. The replay engine
// reads accounts and never mutates them.
type Account struct {
	ID       string
	Name     string
	Currency string
	Type     AccountType
	Broker   string // paying bank or broker, required for investment accounts
	Active   bool
}

// AssetType classifies an asset.
type AssetType int

const (
	Equity AssetType = iota
	Bond
	Derivative
	CurrencyAsset
	Fund
)

func (t AssetType) String() string {
	switch t {
	case Equity:
		return "equity"
	case Bond:
		return "bond"
	case Derivative:
		return "derivative"
	case CurrencyAsset:
		return "currency"
	case Fund:
		return "fund"
	default:
		return "unknown"
	}
}

// ParseAssetType parses a string into an AssetType.
func ParseAssetType(s string) (AssetType, error) {
	switch s {
	case "equity":
		return Equity, nil
	case "bond":
		return Bond, nil
	case "derivative":
		return Derivative, nil
	case "currency":
		return CurrencyAsset, nil
	case "fund":
		return Fund, nil
	default:
		return 0, fmt.Errorf("unknown asset type: %q", s)
	}
}

// Asset is reference data owned by the reference store.
type Asset struct {
	ID      string
	Symbol  string
	ISIN    string
	Type    AssetType
	Country string
	Expiry  Timestamp // derivatives only, zero otherwise
}

// isinRegex checks for the basic structure: 2 letters, 9 alphanumeric, 1 digit.
var isinRegex = regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]{9}[0-9]$`)

// ValidateISIN checks if a string is a validly formatted ISIN (ISO 6166),
// including its check digit. It returns nil if valid.
func ValidateISIN(isin string) error {
	if len(isin) != 12 {
		return fmt.Errorf("invalid length: must be 12 characters, got %d", len(isin))
	}
	if !isinRegex.MatchString(isin) {
		return fmt.Errorf("invalid format: must be 2 uppercase letters, 9 alphanumeric chars, and 1 digit")
	}

	// Convert letters to numbers for the check digit calculation.
	var numericStr strings.Builder
	for _, char := range isin[:11] {
		if char >= 'A' && char <= 'Z' {
			numericStr.WriteString(strconv.Itoa(int(char - 'A' + 10)))
		} else {
			numericStr.WriteRune(char)
		}
	}

	// Apply a variation of the Luhn algorithm.
	sum := 0
	isSecond := true
	digits := numericStr.String()
	for i := len(digits) - 1; i >= 0; i-- {
		digit, _ := strconv.Atoi(string(digits[i]))
		if isSecond {
			digit *= 2
		}
		sum += (digit / 10) + (digit % 10)
		isSecond = !isSecond
	}

	expectedCheckDigit := (10 - (sum % 10)) % 10
	actualCheckDigit, _ := strconv.Atoi(string(isin[11]))
	if expectedCheckDigit != actualCheckDigit {
		return fmt.Errorf("invalid check digit: expected %d, got %d", expectedCheckDigit, actualCheckDigit)
	}
	return nil
}

// currencyCodeRegex checks for the format: 3 uppercase letters.
var currencyCodeRegex = regexp.MustCompile(`^[A-Z]{3}$`)

// ValidateCurrency checks that a string is a plausible ISO 4217 currency code.
func ValidateCurrency(code string) error {
	if !currencyCodeRegex.MatchString(code) {
		return fmt.Errorf("invalid currency code %q: must be 3 uppercase letters", code)
	}
	return nil
}
