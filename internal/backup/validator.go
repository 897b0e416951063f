package backup

import (
	"math"
	"strconv"
	"time"

	"github.com/dmitrijs2005/evtracker/internal/models"
)

// futureTolerance is how far past "now" a record date may lie before it is
// rejected, to allow for clock skew between devices.
const futureTolerance = 24 * time.Hour

// Validator checks a decoded snapshot before it is allowed to replace the
// store. It has no side effects and is safe for concurrent use.
type Validator struct {
	// SchemaVersion is the newest snapshot schema this build understands.
	SchemaVersion int
	// Now returns the reference time for date checks. Defaults to time.Now.
	Now func() time.Time
}

// Validate runs the checks in a fixed order and returns the first failure
// as a *ValidationError:
//
//  1. schema version not newer than SchemaVersion
//  2. car creation and expense dates not more than a day in the future
//  3. expense energy, odometer and cost not negative
//  4. expense, car and preferred currencies known
//  5. charger type, expense type and preferred language known
//  6. every car reference points at a car in the snapshot
//
// Unknown enum values are a hard error here, while repositories reading
// the same values from the database fall back to defaults. The two
// policies are deliberately separate.
func (v Validator) Validate(s *Snapshot) error {
	if s.Metadata.SchemaVersion > v.SchemaVersion {
		return &ValidationError{Kind: NewerSchemaVersion, Current: v.SchemaVersion, File: s.Metadata.SchemaVersion}
	}

	checks := []func(*Snapshot) error{
		v.checkDates,
		checkNumbers,
		checkCurrencies,
		checkEnums,
		checkReferences,
	}
	for _, check := range checks {
		if err := check(s); err != nil {
			return err
		}
	}
	return nil
}

func (v Validator) checkDates(s *Snapshot) error {
	now := time.Now
	if v.Now != nil {
		now = v.Now
	}
	limit := now().Add(futureTolerance)

	for _, c := range s.Cars {
		if c.CreatedAt.After(limit) {
			return &ValidationError{Kind: InvalidDate, Type: "car", Field: "createdAt", Value: formatTime(c.CreatedAt), ID: c.ID}
		}
	}
	for _, e := range s.Expenses {
		if e.Date.After(limit) {
			return &ValidationError{Kind: InvalidDate, Type: "expense", Field: "date", Value: formatTime(e.Date), ID: e.ID}
		}
	}
	return nil
}

func checkNumbers(s *Snapshot) error {
	for _, e := range s.Expenses {
		bad := func(field, value string) error {
			return &ValidationError{Kind: InvalidNumericValue, Type: "expense", Field: field, Value: value, ID: e.ID}
		}
		if e.EnergyCharged < 0 || !finite(e.EnergyCharged) {
			return bad("energyCharged", strconv.FormatFloat(e.EnergyCharged, 'f', -1, 64))
		}
		if e.Odometer < 0 {
			return bad("odometer", strconv.FormatInt(e.Odometer, 10))
		}
		if e.Cost != nil && (*e.Cost < 0 || !finite(*e.Cost)) {
			return bad("cost", strconv.FormatFloat(*e.Cost, 'f', -1, 64))
		}
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

func checkCurrencies(s *Snapshot) error {
	for _, e := range s.Expenses {
		if !e.Currency.Known() {
			return &ValidationError{Kind: InvalidCurrency, Type: "expense", Field: "currency", Value: string(e.Currency), ID: e.ID}
		}
	}
	for _, c := range s.Cars {
		if !c.ExpenseCurrency.Known() {
			return &ValidationError{Kind: InvalidCurrency, Type: "car", Field: "expenseCurrency", Value: string(c.ExpenseCurrency), ID: c.ID}
		}
	}
	if c := s.Settings.Currency; c != nil && !c.Known() {
		return &ValidationError{Kind: InvalidCurrency, Type: "userSettings", Field: "preferredCurrency", Value: string(*c)}
	}
	return nil
}

func checkEnums(s *Snapshot) error {
	for _, e := range s.Expenses {
		if !e.ChargerType.Known() {
			return &ValidationError{Kind: InvalidEnumValue, Type: "chargerType", Field: "chargerType", Value: string(e.ChargerType), ID: e.ID}
		}
		if !e.ExpenseType.Known() {
			return &ValidationError{Kind: InvalidEnumValue, Type: "expenseType", Field: "expenseType", Value: string(e.ExpenseType), ID: e.ID}
		}
	}
	if l := s.Settings.Language; l != nil && !l.Known() {
		return &ValidationError{Kind: InvalidEnumValue, Type: "language", Field: "preferredLanguage", Value: string(*l)}
	}
	return nil
}

func checkReferences(s *Snapshot) error {
	cars := make(map[int64]struct{}, len(s.Cars))
	for _, c := range s.Cars {
		if c.ID != nil {
			cars[*c.ID] = struct{}{}
		}
	}
	missing := func(id int64) bool {
		_, ok := cars[id]
		return !ok
	}

	for _, e := range s.Expenses {
		if id := e.CarID(); id != nil && missing(*id) {
			return &ValidationError{Kind: InvalidReference, Type: "expense", Field: "carId", ID: id}
		}
	}
	for _, m := range s.Maintenance {
		if missing(m.CarID) {
			return &ValidationError{Kind: InvalidReference, Type: "plannedMaintenance", Field: "carId", ID: models.Int64(m.CarID)}
		}
	}
	for _, n := range s.Notifications {
		if missing(n.CarID) {
			return &ValidationError{Kind: InvalidReference, Type: "delayedNotification", Field: "carId", ID: models.Int64(n.CarID)}
		}
	}
	return nil
}
