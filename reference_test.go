package ledger

import "testing"

func TestValidateISIN(t *testing.T) {
	valid := []string{
		"US0378331005", // Apple
		"DE0005557508", // Deutsche Telekom
		"FR0000120271", // TotalEnergies
	}
	for _, isin := range valid {
		if err := ValidateISIN(isin); err != nil {
			t.Errorf("ValidateISIN(%q): %v", isin, err)
		}
	}

	invalid := []string{
		"US0378331006", // wrong check digit
		"US03783310",   // too short
		"us0378331005", // lowercase
		"0S0378331005", // digit where the country code belongs
	}
	for _, isin := range invalid {
		if err := ValidateISIN(isin); err == nil {
			t.Errorf("ValidateISIN(%q) accepted a bad ISIN", isin)
		}
	}
}

func TestValidateCurrency(t *testing.T) {
	if err := ValidateCurrency("EUR"); err != nil {
		t.Errorf("ValidateCurrency(EUR): %v", err)
	}
	for _, code := range []string{"", "eur", "EURO", "E1R"} {
		if err := ValidateCurrency(code); err == nil {
			t.Errorf("ValidateCurrency(%q) accepted a bad code", code)
		}
	}
}

func TestParseAccountType(t *testing.T) {
	for _, want := range []AccountType{CashAccount, InvestmentAccount} {
		got, err := ParseAccountType(want.String())
		if err != nil || got != want {
			t.Errorf("ParseAccountType(%q) = %v, %v", want, got, err)
		}
	}
	if _, err := ParseAccountType("savings"); err == nil {
		t.Error("ParseAccountType accepted an unknown type")
	}
}

func TestParseAssetType(t *testing.T) {
	for _, want := range []AssetType{Equity, Bond, Derivative, CurrencyAsset, Fund} {
		got, err := ParseAssetType(want.String())
		if err != nil || got != want {
			t.Errorf("ParseAssetType(%q) = %v, %v", want, got, err)
		}
	}
	if _, err := ParseAssetType("crypto"); err == nil {
		t.Error("ParseAssetType accepted an unknown type")
	}
}
