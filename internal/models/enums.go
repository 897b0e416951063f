// Package models defines the records kept in the local store: cars, expenses,
// planned maintenance, delayed notifications and user settings.
package models

// Currency is a lower-case ISO 4217 code.
type Currency string

const (
	CurrencyUSD Currency = "usd"
	CurrencyEUR Currency = "eur"
	CurrencyGBP Currency = "gbp"
	CurrencyUAH Currency = "uah"
	CurrencyPLN Currency = "pln"
	CurrencyCZK Currency = "czk"
	CurrencyCHF Currency = "chf"
	CurrencySEK Currency = "sek"
	CurrencyNOK Currency = "nok"
	CurrencyDKK Currency = "dkk"
	CurrencyCAD Currency = "cad"
	CurrencyAUD Currency = "aud"
	CurrencyJPY Currency = "jpy"
	CurrencyCNY Currency = "cny"
)

// DefaultCurrency is used when a stored value is missing or unknown.
const DefaultCurrency = CurrencyUSD

var knownCurrencies = map[Currency]struct{}{
	CurrencyUSD: {}, CurrencyEUR: {}, CurrencyGBP: {}, CurrencyUAH: {}, CurrencyPLN: {},
	CurrencyCZK: {}, CurrencyCHF: {}, CurrencySEK: {}, CurrencyNOK: {}, CurrencyDKK: {},
	CurrencyCAD: {}, CurrencyAUD: {}, CurrencyJPY: {}, CurrencyCNY: {},
}

// Known reports whether c is one of the supported currency codes.
func (c Currency) Known() bool {
	_, ok := knownCurrencies[c]
	return ok
}

// ParseCurrency returns the matching currency or DefaultCurrency.
func ParseCurrency(s string) Currency {
	if c := Currency(s); c.Known() {
		return c
	}
	return DefaultCurrency
}

// ChargerType classifies where a charging session happened.
type ChargerType string

const (
	ChargerHome         ChargerType = "home"
	ChargerWork         ChargerType = "work"
	ChargerDestination  ChargerType = "destination"
	ChargerFast         ChargerType = "fast"
	ChargerSupercharger ChargerType = "supercharger"
	ChargerOther        ChargerType = "other"
)

var knownChargerTypes = map[ChargerType]struct{}{
	ChargerHome: {}, ChargerWork: {}, ChargerDestination: {}, ChargerFast: {},
	ChargerSupercharger: {}, ChargerOther: {},
}

func (c ChargerType) Known() bool {
	_, ok := knownChargerTypes[c]
	return ok
}

// ParseChargerType returns the matching charger type or ChargerOther.
func ParseChargerType(s string) ChargerType {
	if c := ChargerType(s); c.Known() {
		return c
	}
	return ChargerOther
}

// ExpenseType is the kind of car expense.
type ExpenseType string

const (
	ExpenseCharging    ExpenseType = "charging"
	ExpenseMaintenance ExpenseType = "maintenance"
	ExpenseRepair      ExpenseType = "repair"
	ExpenseCarwash     ExpenseType = "carwash"
	ExpenseOther       ExpenseType = "other"
)

var knownExpenseTypes = map[ExpenseType]struct{}{
	ExpenseCharging: {}, ExpenseMaintenance: {}, ExpenseRepair: {}, ExpenseCarwash: {}, ExpenseOther: {},
}

func (t ExpenseType) Known() bool {
	_, ok := knownExpenseTypes[t]
	return ok
}

// ParseExpenseType returns the matching expense type or ExpenseOther.
func ParseExpenseType(s string) ExpenseType {
	if t := ExpenseType(s); t.Known() {
		return t
	}
	return ExpenseOther
}

// Language is a two-letter interface language code.
type Language string

const (
	LanguageEnglish   Language = "en"
	LanguageUkrainian Language = "uk"
	LanguageGerman    Language = "de"
	LanguageFrench    Language = "fr"
	LanguageSpanish   Language = "es"
	LanguagePolish    Language = "pl"
)

// DefaultLanguage is used when a stored value is missing or unknown.
const DefaultLanguage = LanguageEnglish

var knownLanguages = map[Language]struct{}{
	LanguageEnglish: {}, LanguageUkrainian: {}, LanguageGerman: {}, LanguageFrench: {},
	LanguageSpanish: {}, LanguagePolish: {},
}

func (l Language) Known() bool {
	_, ok := knownLanguages[l]
	return ok
}

// ParseLanguage returns the matching language or DefaultLanguage.
func ParseLanguage(s string) Language {
	if l := Language(s); l.Known() {
		return l
	}
	return DefaultLanguage
}
