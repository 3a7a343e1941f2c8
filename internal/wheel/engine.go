// Package wheel computes where the prize wheel lands and tracks the single
// outstanding spin.
//
// The wheel's rotation accumulates across spins without wrapping, so every new
// target is computed relative to wherever the previous spin stopped.
package wheel

import (
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"prizewheel/internal/models"
)

// DefaultDuration is how long the animation runs before the winner is final.
const DefaultDuration = 5000 * time.Millisecond

const (
	minSpins    = 5
	spinChoices = 3 // whole turns drawn from {5, 6, 7}
)

// ErrNoActivePrizes is returned when Spin is called without any segment to land on.
var ErrNoActivePrizes = errors.New("wheel: no active prizes")

// Rand is the randomness the engine draws from.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

// Task is a scheduled callback that can still be stopped.
type Task interface {
	Stop() bool
}

// Scheduler runs fn once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Task
}

type timerScheduler struct{}

func (timerScheduler) AfterFunc(d time.Duration, fn func()) Task {
	return time.AfterFunc(d, fn)
}

type globalRand struct{}

func (globalRand) IntN(n int) int   { return rand.IntN(n) }
func (globalRand) Float64() float64 { return rand.Float64() }

// Landing is the outcome of an accepted spin.
type Landing struct {
	Geometry
	Winner   models.Prize
	Duration time.Duration

	task   Task
	engine *Engine
}

// Cancel stops the pending finalization and frees the engine for the next
// spin. It reports whether the task was still pending; onDone never runs for a
// cancelled spin. The rotation already reached is kept.
func (l *Landing) Cancel() bool {
	if l == nil || l.task == nil {
		return false
	}
	if !l.task.Stop() {
		return false
	}
	l.engine.mu.Lock()
	l.engine.spinning = false
	l.engine.mu.Unlock()
	return true
}

// Option configures an Engine.
type Option func(*Engine)

func WithRand(r Rand) Option {
	return func(e *Engine) { e.rng = r }
}

func WithScheduler(s Scheduler) Option {
	return func(e *Engine) { e.sched = s }
}

func WithDuration(d time.Duration) Option {
	return func(e *Engine) { e.duration = d }
}

// WithRotation starts the engine at a previously reached rotation.
func WithRotation(deg float64) Option {
	return func(e *Engine) { e.rotation = deg }
}

// Engine holds the wheel's accumulated rotation and the spinning guard.
type Engine struct {
	mu       sync.Mutex
	rotation float64
	spinning bool

	rng      Rand
	sched    Scheduler
	duration time.Duration
}

// NewEngine creates an Engine using math/rand/v2 and real timers unless
// overridden.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		rng:      globalRand{},
		sched:    timerScheduler{},
		duration: DefaultDuration,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rotation returns the accumulated rotation in degrees.
func (e *Engine) Rotation() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rotation
}

func (e *Engine) Spinning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.spinning
}

// Spin picks a winner uniformly from active, advances the rotation to land on
// it and schedules onDone once the animation duration has elapsed.
//
// A call made while a spin is in flight is ignored and returns a nil Landing
// with a nil error.
func (e *Engine) Spin(active []models.Prize, onDone func(winner models.Prize)) (*Landing, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.spinning {
		return nil, nil
	}
	if len(active) == 0 {
		return nil, ErrNoActivePrizes
	}

	e.spinning = true

	n := len(active)
	index := e.rng.IntN(n)
	spins := minSpins + e.rng.IntN(spinChoices)
	offset := Offset(e.rng.Float64(), SegmentAngle(n))

	geo := Land(e.rotation, n, index, spins, offset)
	e.rotation = geo.TargetRotation

	landing := &Landing{
		Geometry: geo,
		Winner:   active[index],
		Duration: e.duration,
		engine:   e,
	}
	winner := landing.Winner
	landing.task = e.sched.AfterFunc(e.duration, func() {
		e.mu.Lock()
		e.spinning = false
		e.mu.Unlock()
		if onDone != nil {
			onDone(winner)
		}
	})
	return landing, nil
}
