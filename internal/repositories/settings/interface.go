// Package settings is the flattened user_settings key/value store.
package settings

import (
	"context"

	"github.com/dmitrijs2005/evtracker/internal/models"
)

type Repository interface {
	// Get returns the raw stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error

	// FetchCurrency returns the preferred currency, or models.DefaultCurrency
	// when unset or unknown.
	FetchCurrency(ctx context.Context) (models.Currency, error)
	// FetchLanguage returns the preferred language, or models.DefaultLanguage
	// when unset or unknown.
	FetchLanguage(ctx context.Context) (models.Language, error)

	UpsertCurrency(ctx context.Context, c models.Currency) (bool, error)
	UpsertLanguage(ctx context.Context, l models.Language) (bool, error)
}
