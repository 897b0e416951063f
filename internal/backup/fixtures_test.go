package backup

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/evtracker/internal/dbtest"
	"github.com/dmitrijs2005/evtracker/internal/filex"
	"github.com/dmitrijs2005/evtracker/internal/migrations"
	"github.com/dmitrijs2005/evtracker/internal/models"
	"github.com/dmitrijs2005/evtracker/internal/store"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// sampleSnapshot has one of everything, with the optional fields set on
// some records and unset on others.
func sampleSnapshot() *Snapshot {
	created := time.Date(2024, 3, 10, 8, 30, 0, 0, time.UTC)
	due := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	eur := models.CurrencyEUR
	uk := models.LanguageUkrainian

	return &Snapshot{
		Metadata: Metadata{
			CreatedAt:     testNow,
			AppVersion:    "1.4.0",
			DeviceName:    "pixel-8",
			SchemaVersion: migrations.SchemaVersion,
		},
		Cars: []models.Car{
			{
				ID:                  models.Int64(1),
				Name:                "Model 3",
				SelectedForTracking: true,
				BatteryCapacity:     models.Float64(75),
				ExpenseCurrency:     models.CurrencyEUR,
				CurrentMileage:      1000,
				InitialMileage:      0,
				MileageSyncedAt:     created,
				CreatedAt:           created,
				FrontWheelSize:      models.String("235/45 R18"),
				RearWheelSize:       models.String("235/45 R18"),
			},
			{
				ID:              models.Int64(2),
				Name:            "Leaf",
				ExpenseCurrency: models.CurrencyUSD,
				MileageSyncedAt: created,
				CreatedAt:       created,
			},
		},
		Expenses: []models.Expense{
			models.Expense{
				ID:            models.Int64(10),
				Date:          created.Add(24 * time.Hour),
				EnergyCharged: 42.5,
				ChargerType:   models.ChargerHome,
				Odometer:      950,
				Cost:          models.Float64(12.5),
				Notes:         "overnight",
				ExpenseType:   models.ExpenseCharging,
				Currency:      models.CurrencyEUR,
			}.WithCarIDUnchecked(models.Int64(1)),
			models.Expense{
				ID:          models.Int64(11),
				Date:        created.Add(48 * time.Hour),
				ChargerType: models.ChargerOther,
				ExpenseType: models.ExpenseCarwash,
				Currency:    models.CurrencyUSD,
			}.WithCarIDUnchecked(models.Int64(2)),
		},
		Maintenance: []models.PlannedMaintenanceRecord{
			{ID: models.Int64(20), Name: "Tyre rotation", When: &due, CarID: 1, CreatedAt: created},
			{ID: models.Int64(21), Name: "Cabin filter", Notes: "every 15k", Odometer: models.Int64(15000), CarID: 2, CreatedAt: created},
		},
		Notifications: []models.DelayedNotification{
			{ID: models.Int64(30), When: due, NotificationID: "notif-1", MaintenanceRecord: models.Int64(20), CarID: 1, CreatedAt: created},
		},
		Settings: Settings{Currency: &eur, Language: &uk},
	}
}

// mutateDocument encodes s, lets fn edit the generic JSON form and returns
// the re-encoded bytes.
func mutateDocument(t *testing.T, s *Snapshot, fn func(doc map[string]any)) []byte {
	t.Helper()
	data, err := Encode(s)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	fn(doc)

	out, err := json.Marshal(doc)
	require.NoError(t, err)
	return out
}

func section(doc map[string]any, name string, i int) map[string]any {
	return doc[name].([]any)[i].(map[string]any)
}

type testEnv struct {
	store     *store.Store
	manager   *Manager
	exportDir string
	safetyDir string
}

// newTestEnv returns a Manager over a fresh migrated database. The clock
// starts at testNow and advances a minute per call so that every file
// gets a distinct timestamp.
func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	s := store.New(dbtest.Open(t))
	return newTestEnvWith(t, s, StoreRepositories(s), opts...)
}

func newTestEnvWith(t *testing.T, s *store.Store, repos Repositories, opts ...Option) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		store:     s,
		exportDir: dir + "/exports",
		safetyDir: dir + "/safety",
	}

	tick := testNow
	clock := func() time.Time {
		tick = tick.Add(time.Minute)
		return tick
	}

	cfg := Config{
		ExportDir:       env.exportDir,
		SafetyBackupDir: env.safetyDir,
		DeviceName:      "test-device",
		AppVersion:      "test",
		SchemaVersion:   migrations.SchemaVersion,
	}
	env.manager = NewManager(repos, filex.NewLocalFS(false), cfg, append([]Option{WithClock(clock)}, opts...)...)
	return env
}

// seedStore inserts the same shape of data as sampleSnapshot directly into
// the store and returns the id of the first car.
func seedStore(t *testing.T, s *store.Store) int64 {
	t.Helper()
	ctx := context.Background()
	created := time.Date(2024, 3, 10, 8, 30, 0, 0, time.UTC)

	carID, err := s.Cars.Insert(ctx, models.Car{
		Name: "Model 3", SelectedForTracking: true, BatteryCapacity: models.Float64(75),
		ExpenseCurrency: models.CurrencyEUR, CurrentMileage: 1000,
		MileageSyncedAt: created, CreatedAt: created,
	})
	require.NoError(t, err)

	e, err := models.Expense{
		Date: created.Add(24 * time.Hour), EnergyCharged: 42.5, ChargerType: models.ChargerHome,
		Odometer: 950, Cost: models.Float64(12.50), ExpenseType: models.ExpenseCharging,
		Currency: models.CurrencyEUR,
	}.WithCarID(carID)
	require.NoError(t, err)
	_, err = s.Expenses.Insert(ctx, e)
	require.NoError(t, err)

	e2, err := models.Expense{
		Date: created.Add(48 * time.Hour), ChargerType: models.ChargerOther,
		ExpenseType: models.ExpenseCarwash, Currency: models.CurrencyEUR,
	}.WithCarID(carID)
	require.NoError(t, err)
	_, err = s.Expenses.Insert(ctx, e2)
	require.NoError(t, err)

	recID, err := s.Maintenance.Insert(ctx, models.PlannedMaintenanceRecord{
		Name: "Tyre rotation", Odometer: models.Int64(15000), CarID: carID, CreatedAt: created,
	})
	require.NoError(t, err)
	_, err = s.Notifications.Insert(ctx, models.DelayedNotification{
		When: created, NotificationID: "notif-1", MaintenanceRecord: &recID, CarID: carID, CreatedAt: created,
	})
	require.NoError(t, err)

	_, err = s.Settings.UpsertCurrency(ctx, models.CurrencyEUR)
	require.NoError(t, err)
	return carID
}

type counts struct {
	cars, expenses, maintenance, notifications int
}

func storeCounts(t *testing.T, s *store.Store) counts {
	t.Helper()
	var c counts
	for table, dst := range map[string]*int{
		"cars":                  &c.cars,
		"expenses":              &c.expenses,
		"planned_maintenance":   &c.maintenance,
		"delayed_notifications": &c.notifications,
	} {
		require.NoError(t, s.DB().QueryRow(`SELECT COUNT(*) FROM `+table).Scan(dst))
	}
	return c
}

// writeFile stores data as an importable file and returns its path.
func writeFile(t *testing.T, data []byte) string {
	t.Helper()
	path := t.TempDir() + "/import.json"
	require.NoError(t, filex.NewLocalFS(false).WriteFile(context.Background(), path, data))
	return path
}
