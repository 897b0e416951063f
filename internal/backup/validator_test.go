package backup

import (
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/evtracker/internal/migrations"
	"github.com/dmitrijs2005/evtracker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testValidator() Validator {
	return Validator{SchemaVersion: migrations.SchemaVersion, Now: func() time.Time { return testNow }}
}

func TestValidator_AcceptsSample(t *testing.T) {
	s := sampleSnapshot()
	v := testValidator()
	require.NoError(t, v.Validate(s))
	require.NoError(t, v.Validate(s), "validation must not change the snapshot")
	require.Equal(t, sampleSnapshot(), s)
}

func TestValidator_Repeatable(t *testing.T) {
	invalid := sampleSnapshot()
	invalid.Expenses[0].Currency = "xyz"

	tests := []struct {
		name    string
		snap    *Snapshot
		wantErr bool
	}{
		{"valid", sampleSnapshot(), false},
		{"invalid", invalid, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v := testValidator()
			err := v.Validate(tt.snap)
			assert.Equal(t, tt.wantErr, err != nil)
			first := fmt.Sprint(err)

			const workers = 8
			results := make([]string, workers)
			var wg sync.WaitGroup
			for i := range workers {
				wg.Add(1)
				go func() {
					defer wg.Done()
					results[i] = fmt.Sprint(v.Validate(tt.snap))
				}()
			}
			wg.Wait()

			for i, got := range results {
				assert.Equal(t, first, got, "worker %d", i)
			}
			assert.Equal(t, first, fmt.Sprint(v.Validate(tt.snap)))
		})
	}
}

func TestValidator_Failures(t *testing.T) {
	future := testNow.Add(25 * time.Hour)

	tests := []struct {
		name  string
		edit  func(s *Snapshot)
		kind  ValidationKind
		typ   string
		field string
		value string
	}{
		{
			name: "newer schema",
			edit: func(s *Snapshot) { s.Metadata.SchemaVersion = migrations.SchemaVersion + 1 },
			kind: NewerSchemaVersion,
		},
		{
			name:  "car created in the future",
			edit:  func(s *Snapshot) { s.Cars[0].CreatedAt = future },
			kind:  InvalidDate,
			typ:   "car",
			field: "createdAt",
			value: formatTime(future),
		},
		{
			name:  "expense in the future",
			edit:  func(s *Snapshot) { s.Expenses[1].Date = future },
			kind:  InvalidDate,
			typ:   "expense",
			field: "date",
			value: formatTime(future),
		},
		{
			name:  "negative energy",
			edit:  func(s *Snapshot) { s.Expenses[0].EnergyCharged = -1.5 },
			kind:  InvalidNumericValue,
			typ:   "expense",
			field: "energyCharged",
			value: "-1.5",
		},
		{
			name:  "negative odometer",
			edit:  func(s *Snapshot) { s.Expenses[0].Odometer = -3 },
			kind:  InvalidNumericValue,
			typ:   "expense",
			field: "odometer",
			value: "-3",
		},
		{
			name:  "negative cost",
			edit:  func(s *Snapshot) { s.Expenses[0].Cost = models.Float64(-0.01) },
			kind:  InvalidNumericValue,
			typ:   "expense",
			field: "cost",
			value: "-0.01",
		},
		{
			name:  "infinite cost",
			edit:  func(s *Snapshot) { s.Expenses[0].Cost = models.Float64(math.Inf(1)) },
			kind:  InvalidNumericValue,
			typ:   "expense",
			field: "cost",
			value: "+Inf",
		},
		{
			name:  "NaN energy",
			edit:  func(s *Snapshot) { s.Expenses[1].EnergyCharged = math.NaN() },
			kind:  InvalidNumericValue,
			typ:   "expense",
			field: "energyCharged",
			value: "NaN",
		},
		{
			name:  "expense currency",
			edit:  func(s *Snapshot) { s.Expenses[0].Currency = "xyz" },
			kind:  InvalidCurrency,
			typ:   "expense",
			field: "currency",
			value: "xyz",
		},
		{
			name:  "car currency",
			edit:  func(s *Snapshot) { s.Cars[1].ExpenseCurrency = "EUR" },
			kind:  InvalidCurrency,
			typ:   "car",
			field: "expenseCurrency",
			value: "EUR",
		},
		{
			name: "preferred currency",
			edit: func(s *Snapshot) {
				c := models.Currency("btc")
				s.Settings.Currency = &c
			},
			kind:  InvalidCurrency,
			typ:   "userSettings",
			field: "preferredCurrency",
			value: "btc",
		},
		{
			name:  "charger type",
			edit:  func(s *Snapshot) { s.Expenses[0].ChargerType = "plasma" },
			kind:  InvalidEnumValue,
			typ:   "chargerType",
			field: "chargerType",
			value: "plasma",
		},
		{
			name:  "expense type",
			edit:  func(s *Snapshot) { s.Expenses[1].ExpenseType = "fuel" },
			kind:  InvalidEnumValue,
			typ:   "expenseType",
			field: "expenseType",
			value: "fuel",
		},
		{
			name: "preferred language",
			edit: func(s *Snapshot) {
				l := models.Language("klingon")
				s.Settings.Language = &l
			},
			kind:  InvalidEnumValue,
			typ:   "language",
			field: "preferredLanguage",
			value: "klingon",
		},
		{
			name:  "expense car",
			edit:  func(s *Snapshot) { s.Expenses[0] = s.Expenses[0].WithCarIDUnchecked(models.Int64(999)) },
			kind:  InvalidReference,
			typ:   "expense",
			field: "carId",
		},
		{
			name:  "maintenance car",
			edit:  func(s *Snapshot) { s.Maintenance[1].CarID = 999 },
			kind:  InvalidReference,
			typ:   "plannedMaintenance",
			field: "carId",
		},
		{
			name:  "notification car",
			edit:  func(s *Snapshot) { s.Notifications[0].CarID = 999 },
			kind:  InvalidReference,
			typ:   "delayedNotification",
			field: "carId",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sampleSnapshot()
			tt.edit(s)

			err := testValidator().Validate(s)
			require.ErrorIs(t, err, ErrValidation)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.kind, vErr.Kind)
			assert.Equal(t, tt.typ, vErr.Type)
			assert.Equal(t, tt.field, vErr.Field)
			assert.Equal(t, tt.value, vErr.Value)
			if tt.kind == InvalidReference {
				require.NotNil(t, vErr.ID)
				assert.Equal(t, int64(999), *vErr.ID)
			}
			assert.NotEmpty(t, vErr.Error())
		})
	}
}

func TestValidator_NewerSchemaReportsVersions(t *testing.T) {
	s := sampleSnapshot()
	s.Metadata.SchemaVersion = 99

	var vErr *ValidationError
	require.ErrorAs(t, testValidator().Validate(s), &vErr)
	assert.Equal(t, migrations.SchemaVersion, vErr.Current)
	assert.Equal(t, 99, vErr.File)
}

func TestValidator_OlderSchemaIsAccepted(t *testing.T) {
	s := sampleSnapshot()
	s.Metadata.SchemaVersion = 1
	require.NoError(t, testValidator().Validate(s))
}

func TestValidator_FutureTolerance(t *testing.T) {
	s := sampleSnapshot()
	s.Expenses[0].Date = testNow.Add(23 * time.Hour)
	require.NoError(t, testValidator().Validate(s))
}

func TestValidator_UnboundExpenseIsAllowed(t *testing.T) {
	s := sampleSnapshot()
	s.Expenses[0] = s.Expenses[0].WithCarIDUnchecked(nil)
	require.NoError(t, testValidator().Validate(s))
}

func TestValidator_ReportsFirstFailureInOrder(t *testing.T) {
	s := sampleSnapshot()
	// Every category is broken; dates come before numbers, currencies,
	// enums and references.
	s.Expenses[0].Odometer = -1
	s.Expenses[0].Currency = "xyz"
	s.Expenses[0].ChargerType = "plasma"
	s.Notifications[0].CarID = 999
	s.Expenses[1].Date = testNow.Add(48 * time.Hour)

	var vErr *ValidationError
	require.ErrorAs(t, testValidator().Validate(s), &vErr)
	assert.Equal(t, InvalidDate, vErr.Kind)

	s.Expenses[1].Date = testNow
	require.ErrorAs(t, testValidator().Validate(s), &vErr)
	assert.Equal(t, InvalidNumericValue, vErr.Kind)

	s.Expenses[0].Odometer = 1
	require.ErrorAs(t, testValidator().Validate(s), &vErr)
	assert.Equal(t, InvalidCurrency, vErr.Kind)

	s.Expenses[0].Currency = models.CurrencyEUR
	require.ErrorAs(t, testValidator().Validate(s), &vErr)
	assert.Equal(t, InvalidEnumValue, vErr.Kind)

	s.Expenses[0].ChargerType = models.ChargerFast
	require.ErrorAs(t, testValidator().Validate(s), &vErr)
	assert.Equal(t, InvalidReference, vErr.Kind)
}
