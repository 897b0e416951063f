package backup

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/dmitrijs2005/evtracker/internal/models"
	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// Wire structs declare their fields in JSON key order, so encoding emits
// sorted keys. Required keys are pointers to tell "missing" from "zero".

type wireDocument struct {
	Cars                 *[]wireCar          `json:"cars"`
	DelayedNotifications *[]wireNotification `json:"delayedNotifications"`
	Expenses             *[]wireExpense      `json:"expenses"`
	Metadata             *wireMetadata       `json:"metadata"`
	PlannedMaintenance   *[]wireMaintenance  `json:"plannedMaintenance"`
	UserSettings         *wireSettings       `json:"userSettings"`
}

type wireMetadata struct {
	AppVersion    *string `json:"appVersion"`
	CreatedAt     *string `json:"createdAt"`
	DeviceName    *string `json:"deviceName"`
	SchemaVersion *int    `json:"schemaVersion"`
}

type wireCar struct {
	BatteryCapacity     *float64 `json:"batteryCapacity"`
	CreatedAt           *string  `json:"createdAt"`
	CurrentMileage      *int64   `json:"currentMileage"`
	ExpenseCurrency     *string  `json:"expenseCurrency"`
	FrontWheelSize      *string  `json:"frontWheelSize"`
	ID                  *int64   `json:"id"`
	InitialMileage      *int64   `json:"initialMileage"`
	MileageSyncedAt     *string  `json:"milleageSyncedAt"`
	Name                *string  `json:"name"`
	RearWheelSize       *string  `json:"rearWheelSize"`
	SelectedForTracking *bool    `json:"selectedForTracking"`
}

type wireExpense struct {
	CarID           *int64   `json:"carId"`
	ChargerType     *string  `json:"chargerType"`
	Cost            *string  `json:"cost"`
	Currency        *string  `json:"currency"`
	Date            *string  `json:"date"`
	EnergyCharged   *float64 `json:"energyCharged"`
	ExpenseType     *string  `json:"expenseType"`
	ID              *int64   `json:"id"`
	IsInitialRecord *bool    `json:"isInitialRecord"`
	Notes           *string  `json:"notes"`
	Odometer        *int64   `json:"odometer"`
}

type wireMaintenance struct {
	CarID     *int64  `json:"carId"`
	CreatedAt *string `json:"createdAt"`
	ID        *int64  `json:"id"`
	Name      *string `json:"name"`
	Notes     *string `json:"notes"`
	Odometer  *int64  `json:"odometer"`
	When      *string `json:"when"`
}

type wireNotification struct {
	CarID             *int64  `json:"carId"`
	CreatedAt         *string `json:"createdAt"`
	ID                *int64  `json:"id"`
	MaintenanceRecord *int64  `json:"maintenanceRecord"`
	NotificationID    *string `json:"notificationId"`
	When              *string `json:"when"`
}

type wireSettings struct {
	PreferredCurrency *string `json:"preferredCurrency"`
	PreferredLanguage *string `json:"preferredLanguage"`
}

// timeLayout is the textual timestamp form used in snapshots. Values are
// always written in UTC.
const timeLayout = time.RFC3339Nano

// Encode renders s as a snapshot document. Equal snapshots produce
// identical bytes.
func Encode(s *Snapshot) ([]byte, error) {
	doc := wireDocument{
		Metadata: &wireMetadata{
			AppVersion:    ptr(s.Metadata.AppVersion),
			CreatedAt:     ptr(formatTime(s.Metadata.CreatedAt)),
			DeviceName:    ptr(s.Metadata.DeviceName),
			SchemaVersion: ptr(s.Metadata.SchemaVersion),
		},
		UserSettings: &wireSettings{
			PreferredCurrency: (*string)(s.Settings.Currency),
			PreferredLanguage: (*string)(s.Settings.Language),
		},
	}

	cars := make([]wireCar, 0, len(s.Cars))
	for _, c := range s.Cars {
		cars = append(cars, wireCar{
			BatteryCapacity:     c.BatteryCapacity,
			CreatedAt:           ptr(formatTime(c.CreatedAt)),
			CurrentMileage:      ptr(c.CurrentMileage),
			ExpenseCurrency:     ptr(string(c.ExpenseCurrency)),
			FrontWheelSize:      c.FrontWheelSize,
			ID:                  c.ID,
			InitialMileage:      ptr(c.InitialMileage),
			MileageSyncedAt:     ptr(formatTime(c.MileageSyncedAt)),
			Name:                ptr(c.Name),
			RearWheelSize:       c.RearWheelSize,
			SelectedForTracking: ptr(c.SelectedForTracking),
		})
	}
	doc.Cars = &cars

	expenses := make([]wireExpense, 0, len(s.Expenses))
	for _, e := range s.Expenses {
		var cost *string
		if e.Cost != nil {
			if math.IsInf(*e.Cost, 0) || math.IsNaN(*e.Cost) {
				return nil, fmt.Errorf("encode expense: cost %v is not a finite number", *e.Cost)
			}
			cost = ptr(decimal.NewFromFloat(*e.Cost).String())
		}
		expenses = append(expenses, wireExpense{
			CarID:           e.CarID(),
			ChargerType:     ptr(string(e.ChargerType)),
			Cost:            cost,
			Currency:        ptr(string(e.Currency)),
			Date:            ptr(formatTime(e.Date)),
			EnergyCharged:   ptr(e.EnergyCharged),
			ExpenseType:     ptr(string(e.ExpenseType)),
			ID:              e.ID,
			IsInitialRecord: ptr(e.IsInitialRecord),
			Notes:           ptr(e.Notes),
			Odometer:        ptr(e.Odometer),
		})
	}
	doc.Expenses = &expenses

	maintenance := make([]wireMaintenance, 0, len(s.Maintenance))
	for _, m := range s.Maintenance {
		var when *string
		if m.When != nil {
			when = ptr(formatTime(*m.When))
		}
		maintenance = append(maintenance, wireMaintenance{
			CarID:     ptr(m.CarID),
			CreatedAt: ptr(formatTime(m.CreatedAt)),
			ID:        m.ID,
			Name:      ptr(m.Name),
			Notes:     ptr(m.Notes),
			Odometer:  m.Odometer,
			When:      when,
		})
	}
	doc.PlannedMaintenance = &maintenance

	notifications := make([]wireNotification, 0, len(s.Notifications))
	for _, n := range s.Notifications {
		notifications = append(notifications, wireNotification{
			CarID:             ptr(n.CarID),
			CreatedAt:         ptr(formatTime(n.CreatedAt)),
			ID:                n.ID,
			MaintenanceRecord: n.MaintenanceRecord,
			NotificationID:    ptr(n.NotificationID),
			When:              ptr(formatTime(n.When)),
		})
	}
	doc.DelayedNotifications = &notifications

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// Decode parses a snapshot document. Structural problems are reported as
// *MalformedDocumentError; an expense cost that is not a decimal number is
// reported as a *ValidationError of kind InvalidNumericValue. Enum values
// are kept verbatim for the Validator to judge.
//
// metadata, cars and expenses are required. plannedMaintenance,
// delayedNotifications and userSettings are absent from older backups and
// may be missing.
func Decode(data []byte) (*Snapshot, error) {
	var doc wireDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, malformed(err)
	}

	d := &decoder{}
	s := &Snapshot{}

	if doc.Metadata == nil {
		return nil, &MalformedDocumentError{Field: "metadata", Err: errMissing}
	}
	s.Metadata = Metadata{
		AppVersion:    need(d, "metadata.appVersion", doc.Metadata.AppVersion),
		CreatedAt:     d.time("metadata.createdAt", doc.Metadata.CreatedAt),
		DeviceName:    need(d, "metadata.deviceName", doc.Metadata.DeviceName),
		SchemaVersion: need(d, "metadata.schemaVersion", doc.Metadata.SchemaVersion),
	}
	if d.err != nil {
		return nil, d.err
	}

	if doc.Cars == nil {
		return nil, &MalformedDocumentError{Field: "cars", Err: errMissing}
	}
	for i, w := range *doc.Cars {
		d.at("cars", i)
		s.Cars = append(s.Cars, models.Car{
			ID:                  w.ID,
			Name:                need(d, "name", w.Name),
			SelectedForTracking: need(d, "selectedForTracking", w.SelectedForTracking),
			BatteryCapacity:     w.BatteryCapacity,
			ExpenseCurrency:     models.Currency(need(d, "expenseCurrency", w.ExpenseCurrency)),
			CurrentMileage:      need(d, "currentMileage", w.CurrentMileage),
			InitialMileage:      need(d, "initialMileage", w.InitialMileage),
			MileageSyncedAt:     d.time("milleageSyncedAt", w.MileageSyncedAt),
			CreatedAt:           d.time("createdAt", w.CreatedAt),
			FrontWheelSize:      w.FrontWheelSize,
			RearWheelSize:       w.RearWheelSize,
		})
		if d.err != nil {
			return nil, d.err
		}
	}

	if doc.Expenses == nil {
		return nil, &MalformedDocumentError{Field: "expenses", Err: errMissing}
	}
	for i, w := range *doc.Expenses {
		d.at("expenses", i)
		e := models.Expense{
			ID:              w.ID,
			Date:            d.time("date", w.Date),
			EnergyCharged:   need(d, "energyCharged", w.EnergyCharged),
			ChargerType:     models.ChargerType(need(d, "chargerType", w.ChargerType)),
			Odometer:        need(d, "odometer", w.Odometer),
			Notes:           need(d, "notes", w.Notes),
			IsInitialRecord: need(d, "isInitialRecord", w.IsInitialRecord),
			ExpenseType:     models.ExpenseType(need(d, "expenseType", w.ExpenseType)),
			Currency:        models.Currency(need(d, "currency", w.Currency)),
		}
		if d.err != nil {
			return nil, d.err
		}
		if w.Cost != nil {
			cost, err := parseCost(*w.Cost)
			if err != nil {
				return nil, &ValidationError{Kind: InvalidNumericValue, Type: "expense", Field: "cost", Value: *w.Cost, ID: w.ID}
			}
			e.Cost = &cost
		}
		s.Expenses = append(s.Expenses, e.WithCarIDUnchecked(w.CarID))
	}

	if doc.PlannedMaintenance != nil {
		for i, w := range *doc.PlannedMaintenance {
			d.at("plannedMaintenance", i)
			s.Maintenance = append(s.Maintenance, models.PlannedMaintenanceRecord{
				ID:        w.ID,
				Name:      need(d, "name", w.Name),
				Notes:     need(d, "notes", w.Notes),
				When:      d.optionalTime("when", w.When),
				Odometer:  w.Odometer,
				CarID:     need(d, "carId", w.CarID),
				CreatedAt: d.time("createdAt", w.CreatedAt),
			})
			if d.err != nil {
				return nil, d.err
			}
		}
	}

	if doc.DelayedNotifications != nil {
		for i, w := range *doc.DelayedNotifications {
			d.at("delayedNotifications", i)
			s.Notifications = append(s.Notifications, models.DelayedNotification{
				ID:                w.ID,
				When:              d.time("when", w.When),
				NotificationID:    need(d, "notificationId", w.NotificationID),
				MaintenanceRecord: w.MaintenanceRecord,
				CarID:             need(d, "carId", w.CarID),
				CreatedAt:         d.time("createdAt", w.CreatedAt),
			})
			if d.err != nil {
				return nil, d.err
			}
		}
	}

	if us := doc.UserSettings; us != nil {
		s.Settings.Currency = (*models.Currency)(us.PreferredCurrency)
		s.Settings.Language = (*models.Language)(us.PreferredLanguage)
	}
	return s, nil
}

var errMissing = errors.New("required key is missing")

// decoder records the first missing or unparsable field.
type decoder struct {
	prefix string
	err    error
}

func (d *decoder) at(section string, i int) {
	d.prefix = fmt.Sprintf("%s[%d].", section, i)
}

func (d *decoder) fail(field string, err error) {
	if d.err == nil {
		d.err = &MalformedDocumentError{Field: d.prefix + field, Err: err}
	}
}

func need[T any](d *decoder, field string, v *T) T {
	if v == nil {
		d.fail(field, errMissing)
		var zero T
		return zero
	}
	return *v
}

func (d *decoder) time(field string, v *string) time.Time {
	if v == nil {
		d.fail(field, errMissing)
		return time.Time{}
	}
	t, err := parseTime(*v)
	if err != nil {
		d.fail(field, err)
	}
	return t
}

func (d *decoder) optionalTime(field string, v *string) *time.Time {
	if v == nil {
		return nil
	}
	t := d.time(field, v)
	return &t
}

func malformed(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &MalformedDocumentError{Field: typeErr.Field, Err: err}
	}
	return &MalformedDocumentError{Err: err}
}

func parseCost(s string) (float64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	f, _ := d.Float64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("cost %s out of range", s)
	}
	return f, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func ptr[T any](v T) *T { return &v }
