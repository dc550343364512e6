package animation

import (
	"context"
	"math"
	"sync"
	"time"
)

// Config contains animation timing values.
type Config struct {
	FrameInterval time.Duration

	MinScale  float64
	MaxScale  float64
	RestScale float64

	PulseAmplitude float64
	PulsePeriod    time.Duration
}

// Engine drives the breathing bubble of the session window.
type Engine struct {
	mu          sync.Mutex
	config      Config
	updateScale func(float64)
	cancel      context.CancelFunc
	scale       float64
	paused      bool
}

// New creates a new animation engine.
func New(config Config, updateScale func(float64)) *Engine {
	if config.FrameInterval <= 0 {
		config.FrameInterval = DefaultConfig().FrameInterval
	}
	return &Engine{
		config:      config,
		updateScale: updateScale,
		scale:       config.RestScale,
	}
}

// Scale returns the last scale sent to the view.
func (engine *Engine) Scale() float64 {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.scale
}

// Breathe grows or shrinks the bubble over the motion's duration.
func (engine *Engine) Breathe(ctx context.Context, motion Motion) {
	engine.start(ctx, func(runCtx context.Context) {
		from := engine.Scale()
		to := motion.Target(engine.config)
		engine.run(runCtx, motion.Duration, func(progress float64) (float64, bool) {
			if progress >= 1 {
				return to, true
			}
			return from + (to-from)*Ease(progress), false
		})
	})
}

// Hold keeps the bubble at scale with a slow shimmer until stopped.
func (engine *Engine) Hold(ctx context.Context, scale float64) {
	engine.start(ctx, func(runCtx context.Context) {
		from := engine.Scale()
		period := engine.config.PulsePeriod
		engine.run(runCtx, 0, func(elapsed float64) (float64, bool) {
			if period <= 0 {
				return scale, true
			}
			// Settle into the hold during the first quarter period.
			settle := Ease(elapsed * 4 / period.Seconds())
			pulse := engine.config.PulseAmplitude * math.Sin(2*math.Pi*elapsed/period.Seconds())
			return from + (scale-from)*settle + pulse*settle, false
		})
	})
}

// Rest returns the bubble to its resting size immediately.
func (engine *Engine) Rest() {
	engine.Stop()
	engine.set(engine.config.RestScale)
}

// SetPaused freezes or continues the current motion.
func (engine *Engine) SetPaused(paused bool) {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	engine.paused = paused
}

// Stop terminates any active animation.
func (engine *Engine) Stop() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.cancel != nil {
		engine.cancel()
		engine.cancel = nil
	}
}

func (engine *Engine) start(parent context.Context, run func(context.Context)) {
	engine.mu.Lock()
	if engine.cancel != nil {
		engine.cancel()
	}
	runCtx, cancel := context.WithCancel(parent)
	engine.cancel = cancel
	engine.mu.Unlock()

	go run(runCtx)
}

// run calls frame with progress in [0,1] when duration is positive, or with
// elapsed seconds otherwise, until frame reports done. Paused frames do not
// advance time.
func (engine *Engine) run(ctx context.Context, duration time.Duration, frame func(float64) (float64, bool)) {
	var elapsed time.Duration
	last := time.Now()
	for {
		now := time.Now()
		if !engine.isPaused() {
			elapsed += now.Sub(last)
		}
		last = now

		var position float64
		if duration > 0 {
			position = min(elapsed.Seconds()/duration.Seconds(), 1)
		} else {
			position = elapsed.Seconds()
		}
		scale, done := frame(position)
		if ctx.Err() != nil {
			return
		}
		engine.set(scale)
		if done {
			return
		}
		if !sleepWithContext(ctx, engine.config.FrameInterval) {
			return
		}
	}
}

func (engine *Engine) isPaused() bool {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.paused
}

func (engine *Engine) set(scale float64) {
	engine.mu.Lock()
	engine.scale = scale
	update := engine.updateScale
	engine.mu.Unlock()
	if update != nil {
		update(scale)
	}
}

func sleepWithContext(ctx context.Context, duration time.Duration) bool {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
