package backup

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/evtracker/internal/filex"
	"github.com/dmitrijs2005/evtracker/internal/logging"
	"github.com/dmitrijs2005/evtracker/internal/models"
	"github.com/dmitrijs2005/evtracker/internal/remote"
	"github.com/dmitrijs2005/evtracker/internal/store"
)

// CarStore, ExpenseStore, MaintenanceStore, NotificationStore and
// SettingsStore are the parts of the repositories the Manager uses.
type CarStore interface {
	GetAll(ctx context.Context) ([]models.Car, error)
	Insert(ctx context.Context, car models.Car) (int64, error)
}

type ExpenseStore interface {
	FetchAll(ctx context.Context, carID *int64) ([]models.Expense, error)
	Insert(ctx context.Context, e models.Expense) (int64, error)
}

type MaintenanceStore interface {
	GetAll(ctx context.Context, carID *int64) ([]models.PlannedMaintenanceRecord, error)
	Insert(ctx context.Context, rec models.PlannedMaintenanceRecord) (int64, error)
}

type NotificationStore interface {
	GetAll(ctx context.Context, carID *int64) ([]models.DelayedNotification, error)
	Insert(ctx context.Context, n models.DelayedNotification) (int64, error)
}

type SettingsStore interface {
	FetchCurrency(ctx context.Context) (models.Currency, error)
	FetchLanguage(ctx context.Context) (models.Language, error)
	UpsertCurrency(ctx context.Context, c models.Currency) (bool, error)
	UpsertLanguage(ctx context.Context, l models.Language) (bool, error)
}

// Wiper empties the four record tables.
type Wiper interface {
	DeleteAllData(ctx context.Context) error
}

// Repositories is the Entity Store as seen by the Manager.
type Repositories struct {
	Cars          CarStore
	Expenses      ExpenseStore
	Maintenance   MaintenanceStore
	Notifications NotificationStore
	Settings      SettingsStore
	Wiper         Wiper
}

// StoreRepositories adapts a *store.Store.
func StoreRepositories(s *store.Store) Repositories {
	return Repositories{
		Cars:          s.Cars,
		Expenses:      s.Expenses,
		Maintenance:   s.Maintenance,
		Notifications: s.Notifications,
		Settings:      s.Settings,
		Wiper:         s,
	}
}

// Config holds the Manager's locations and snapshot metadata.
type Config struct {
	ExportDir       string
	SafetyBackupDir string
	DeviceName      string
	AppVersion      string
	// SchemaVersion is written into snapshots and is the newest version
	// accepted on import.
	SchemaVersion int
}

// Activity is what the Manager is doing.
type Activity int

const (
	Idle Activity = iota
	Exporting
	Importing
)

func (a Activity) String() string {
	switch a {
	case Exporting:
		return "exporting"
	case Importing:
		return "importing"
	default:
		return "idle"
	}
}

// Phase is the step of a running import.
type Phase string

const (
	PhaseNone         Phase = ""
	PhaseValidating   Phase = "validating"
	PhaseBackingUp    Phase = "backing-up"
	PhaseWiping       Phase = "wiping"
	PhaseRestoringNew Phase = "restoring-new"
	PhaseRollingBack  Phase = "rolling-back"
)

type State struct {
	Activity Activity
	Phase    Phase
}

// Manager runs exports and imports against one Entity Store. Only one
// export or import runs at a time; overlapping calls get ErrBusy.
type Manager struct {
	repos Repositories
	fs    filex.FileSystem
	cfg   Config

	remote      remote.Store
	remoteFS    filex.FileSystem
	coordinator remote.Coordinator

	now       func() time.Time
	log       logging.Logger
	phaseHook func(State)
	cache     *descriptorCache

	mu    sync.Mutex
	state State
}

type Option func(*Manager)

// WithRemote enables remote backups. Every remote read, write and delete
// runs inside c; a nil c uses an in-process KeyedMutex.
func WithRemote(s remote.Store, c remote.Coordinator) Option {
	return func(m *Manager) {
		m.remote = s
		m.coordinator = c
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithLogger(l logging.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithPhaseHook registers fn to be called on every state change, e.g. to
// drive a progress display. fn must not call back into the Manager.
func WithPhaseHook(fn func(State)) Option {
	return func(m *Manager) { m.phaseHook = fn }
}

func NewManager(repos Repositories, fs filex.FileSystem, cfg Config, opts ...Option) *Manager {
	m := &Manager{
		repos: repos,
		fs:    fs,
		cfg:   cfg,
		now:   time.Now,
		log:   logging.Discard(),
		cache: newDescriptorCache(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.remote != nil {
		if m.coordinator == nil {
			m.coordinator = remote.NewKeyedMutex()
		}
		m.remoteFS = remote.NewCoordinated(m.remote, m.coordinator)
	}
	return m
}

// State reports what the Manager is doing right now.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) begin(a Activity) error {
	m.mu.Lock()
	if m.state.Activity != Idle {
		m.mu.Unlock()
		return ErrBusy
	}
	m.state = State{Activity: a}
	m.mu.Unlock()
	m.notify()
	return nil
}

func (m *Manager) end() {
	m.mu.Lock()
	m.state = State{}
	m.mu.Unlock()
	m.notify()
}

func (m *Manager) setPhase(ctx context.Context, p Phase) {
	m.mu.Lock()
	m.state.Phase = p
	m.mu.Unlock()
	m.log.Info(ctx, "import phase", "phase", string(p))
	m.notify()
}

func (m *Manager) notify() {
	if m.phaseHook != nil {
		m.phaseHook(m.State())
	}
}

func (m *Manager) validator() Validator {
	return Validator{SchemaVersion: m.cfg.SchemaVersion, Now: m.now}
}
