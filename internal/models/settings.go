package models

// Keys of the flattened user_settings table.
const (
	SettingPreferredCurrency = "preferred_currency"
	SettingPreferredLanguage = "preferred_language"
	SettingSorting           = "sorting"
	SettingUserID            = "user_id"
)

// UserSettingsPair is one row of the user_settings key/value store.
type UserSettingsPair struct {
	Key   string
	Value string
}

// Int64 returns a pointer to v.
func Int64(v int64) *int64 { return &v }

// Float64 returns a pointer to v.
func Float64(v float64) *float64 { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }
