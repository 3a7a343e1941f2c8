package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/logger"
	"github.com/google/uuid"

	"prizewheel/internal/inventory"
	"prizewheel/internal/metrics"
	"prizewheel/internal/models"
	"prizewheel/internal/storage"
	"prizewheel/internal/wheel"
)

// maxHistory bounds the in-memory spin history.
const maxHistory = 1000

// persistTimeout bounds saves made outside a request, after a spin finishes.
const persistTimeout = 5 * time.Second

var (
	ErrSoldOut         = errors.New("all prizes have been given out")
	ErrPrizeLimit      = errors.New("prize list size out of bounds")
	ErrWrongPassphrase = errors.New("wrong admin passphrase")
)

// PrizeStore persists the whole prize list.
type PrizeStore interface {
	Load(ctx context.Context) ([]models.Prize, error)
	Save(ctx context.Context, prizes []models.Prize) error
}

// Options configures a WheelService.
type Options struct {
	Defaults   []models.Prize // canonical prize list; built-in defaults when empty
	Passphrase string
	SessionTTL time.Duration
	MinPrizes  int // 0 disables the bound
	MaxPrizes  int // 0 disables the bound
	Metrics    *metrics.Metrics
	Now        func() time.Time
}

// SpinTicket is what the widget needs to animate an accepted spin.
type SpinTicket struct {
	SpinID             string       `json:"spinId"`
	Winner             models.Prize `json:"winner"`
	WinnerIndex        int          `json:"winnerIndex"`
	Segments           int          `json:"segments"`
	SegmentAngle       float64      `json:"segmentAngle"`
	Spins              int          `json:"spins"`
	Offset             float64      `json:"offset"`
	AdditionalRotation float64      `json:"additionalRotation"`
	TargetRotation     float64      `json:"targetRotation"`
	DurationMs         int64        `json:"durationMs"`
	StartedAt          time.Time    `json:"startedAt"`
}

// WheelState is the public view of the wheel.
type WheelState struct {
	Prizes     []models.Prize     `json:"prizes"`
	SoldOut    bool               `json:"soldOut"`
	Rotation   float64            `json:"rotation"`
	Spinning   bool               `json:"spinning"`
	Pending    *SpinTicket        `json:"pending,omitempty"`
	LastResult *models.SpinRecord `json:"lastResult,omitempty"`
}

// WheelService owns the prize list and the wheel. Every mutation goes through
// it and is persisted before the lock is released.
type WheelService struct {
	mu       sync.Mutex
	prizes   []models.Prize
	defaults []models.Prize
	results  []models.SpinRecord
	pending  *SpinTicket

	engine  *wheel.Engine
	store   PrizeStore
	metrics *metrics.Metrics
	opts    Options

	sessMu   sync.RWMutex
	sessions map[string]*AdminSession // Key: session token
}

// NewWheelService creates and initializes a new WheelService. Call Load before
// serving traffic.
func NewWheelService(store PrizeStore, engine *wheel.Engine, opts Options) *WheelService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = time.Hour
	}
	defaults := opts.Defaults
	if len(defaults) == 0 {
		defaults = inventory.Defaults()
	}
	return &WheelService{
		prizes:   cloneList(defaults),
		defaults: cloneList(defaults),
		engine:   engine,
		store:    store,
		metrics:  opts.Metrics,
		opts:     opts,
		sessions: make(map[string]*AdminSession),
	}
}

// Load restores the prize list from the store. Missing or malformed data and
// data written for a different prize layout fall back to the defaults.
func (s *WheelService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := inventory.Validate(s.defaults); err != nil {
		return fmt.Errorf("default prizes: %w", err)
	}

	persisted, err := s.store.Load(ctx)
	if err == nil {
		if verr := inventory.Validate(persisted); verr != nil {
			err = fmt.Errorf("%w: %v", storage.ErrMalformed, verr)
		}
	}
	switch {
	case errors.Is(err, storage.ErrNotFound):
		logger.Info("no persisted prizes, starting from defaults")
		s.prizes = cloneList(s.defaults)
		s.persist(ctx)
	case errors.Is(err, storage.ErrMalformed):
		logger.Warningf("discarding persisted prizes: %v", err)
		s.prizes = cloneList(s.defaults)
		s.persist(ctx)
	case err != nil:
		return fmt.Errorf("load prizes: %w", err)
	default:
		prizes, outcome := inventory.Reconcile(persisted, s.defaults)
		s.prizes = prizes
		if outcome != inventory.OutcomeKept {
			logger.Infof("persisted prizes %s against defaults", outcome)
			s.persist(ctx)
		}
	}
	s.observe()
	return nil
}

// State returns the active prizes and the wheel's position.
func (s *WheelService) State() WheelState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := WheelState{
		Prizes:   inventory.Active(s.prizes),
		SoldOut:  inventory.IsSoldOut(s.prizes),
		Rotation: s.engine.Rotation(),
		Spinning: s.pending != nil,
		Pending:  s.pending,
	}
	if n := len(s.results); n > 0 {
		last := s.results[n-1]
		state.LastResult = &last
	}
	return state
}

// Spin starts a spin over the active prizes. It returns ErrSoldOut when no spin
// is offered and a nil ticket when a spin is already in flight.
func (s *WheelService) Spin(ctx context.Context) (*SpinTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		s.ignored()
		return nil, nil
	}
	if inventory.IsSoldOut(s.prizes) {
		return nil, ErrSoldOut
	}

	active := inventory.Active(s.prizes)
	spinID := uuid.NewString()

	landing, err := s.engine.Spin(active, func(winner models.Prize) {
		s.finishSpin(spinID, winner)
	})
	if err != nil {
		return nil, fmt.Errorf("spin: %w", err)
	}
	if landing == nil {
		s.ignored()
		return nil, nil
	}

	ticket := &SpinTicket{
		SpinID:             spinID,
		Winner:             landing.Winner,
		WinnerIndex:        landing.Index,
		Segments:           len(active),
		SegmentAngle:       landing.SegmentAngle,
		Spins:              landing.Spins,
		Offset:             landing.Offset,
		AdditionalRotation: landing.AdditionalRotation,
		TargetRotation:     landing.TargetRotation,
		DurationMs:         landing.Duration.Milliseconds(),
		StartedAt:          s.opts.Now(),
	}
	s.pending = ticket
	if s.metrics != nil {
		s.metrics.Spins.Inc()
	}
	logger.Infof("spin %s started: %d segments, landing on %s at %.2f", spinID, len(active), landing.Winner.ID, landing.TargetRotation)
	return ticket, nil
}

// finishSpin runs once the animation duration has elapsed.
func (s *WheelService) finishSpin(spinID string, winner models.Prize) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rotation := 0.0
	if s.pending != nil && s.pending.SpinID == spinID {
		rotation = s.pending.TargetRotation
		s.pending = nil
	}

	s.prizes = inventory.ApplyWin(s.prizes, winner.ID)

	record := models.SpinRecord{
		SpinID:     spinID,
		PrizeID:    winner.ID,
		Label:      winner.Label,
		IsWin:      winner.IsWin,
		IsSpecial:  winner.IsSpecial,
		Rotation:   rotation,
		FinishedAt: s.opts.Now(),
	}
	s.results = append(s.results, record)
	if len(s.results) > maxHistory {
		s.results = append([]models.SpinRecord(nil), s.results[len(s.results)-maxHistory:]...)
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	s.persist(ctx)

	s.metrics.ObserveOutcome(winner)
	s.observe()
	logger.Infof("spin %s finished: %s (%s)", spinID, winner.ID, winner.Label)
}

// Results returns the finalized spins, oldest first.
func (s *WheelService) Results() []models.SpinRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.SpinRecord(nil), s.results...)
}

// persist writes the full list. Failures are logged; the in-memory list stays
// authoritative and the next mutation overwrites the blob again.
func (s *WheelService) persist(ctx context.Context) {
	if err := s.store.Save(ctx, s.prizes); err != nil {
		logger.Errorf("failed to persist prizes: %v", err)
	}
}

func (s *WheelService) observe() {
	s.metrics.ObserveInventory(s.prizes, inventory.IsSoldOut(s.prizes))
}

func (s *WheelService) ignored() {
	if s.metrics != nil {
		s.metrics.Ignored.Inc()
	}
}

func cloneList(prizes []models.Prize) []models.Prize {
	return append([]models.Prize(nil), prizes...)
}
