// Package animation drives the timed content of the break overlay.
package animation

import (
	"sync"
	"time"

	"eyedoro/internal/core/clock"
)

// Config contains rotation timing and content.
type Config struct {
	TipInterval time.Duration
	Tips        []Tip
}

// Engine rotates tips on a fixed interval while started.
type Engine struct {
	mu         sync.Mutex
	clock      clock.Clock
	config     Config
	onTip      func(Tip)
	index      int
	timer      clock.Timer
	generation uint64
}

// New creates an engine. onTip receives every tip to display, including the
// first one on Start. A nil clock uses the system clock.
func New(config Config, clk clock.Clock, onTip func(Tip)) *Engine {
	if clk == nil {
		clk = clock.System
	}
	if len(config.Tips) == 0 {
		config.Tips = DefaultTips()
	}
	if config.TipInterval <= 0 {
		config.TipInterval = DefaultConfig().TipInterval
	}
	return &Engine{clock: clk, config: config, onTip: onTip}
}

// Start shows the first tip and begins rotating. Restarting resets to the
// first tip.
func (engine *Engine) Start() {
	engine.mu.Lock()
	engine.stopLocked()
	engine.index = 0
	tip := engine.config.Tips[0]
	engine.armLocked()
	engine.mu.Unlock()

	engine.emit(tip)
}

// Stop halts the rotation. Safe to call when stopped.
func (engine *Engine) Stop() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	engine.stopLocked()
}

// Current returns the tip on display.
func (engine *Engine) Current() Tip {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.config.Tips[engine.index]
}

func (engine *Engine) armLocked() {
	engine.generation++
	generation := engine.generation
	engine.timer = engine.clock.AfterFunc(engine.config.TipInterval, func() {
		engine.advance(generation)
	})
}

func (engine *Engine) advance(generation uint64) {
	engine.mu.Lock()
	if generation != engine.generation || engine.timer == nil {
		engine.mu.Unlock()
		return
	}
	engine.index = (engine.index + 1) % len(engine.config.Tips)
	tip := engine.config.Tips[engine.index]
	engine.armLocked()
	engine.mu.Unlock()

	engine.emit(tip)
}

func (engine *Engine) stopLocked() {
	if engine.timer != nil {
		engine.timer.Stop()
		engine.timer = nil
	}
	engine.generation++
}

func (engine *Engine) emit(tip Tip) {
	if engine.onTip != nil {
		engine.onTip(tip)
	}
}
