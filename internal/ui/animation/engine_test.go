package animation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"eyedoro/internal/core/clock"
)

func TestEngineRotatesTips(t *testing.T) {
	fake := clock.NewFake(time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC))
	tips := []Tip{{Title: "a"}, {Title: "b"}, {Title: "c"}}
	var shown []string
	engine := New(Config{TipInterval: 30 * time.Second, Tips: tips}, fake, func(tip Tip) {
		shown = append(shown, tip.Title)
	})

	engine.Start()
	assert.Equal(t, []string{"a"}, shown)

	fake.Advance(29 * time.Second)
	assert.Equal(t, []string{"a"}, shown)

	fake.Advance(time.Second)
	assert.Equal(t, []string{"a", "b"}, shown)

	fake.Advance(60 * time.Second)
	assert.Equal(t, []string{"a", "b", "c", "a"}, shown)
	assert.Equal(t, "a", engine.Current().Title)
}

func TestEngineStopAndRestart(t *testing.T) {
	fake := clock.NewFake(time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC))
	var shown []string
	engine := New(Config{TipInterval: time.Second, Tips: []Tip{{Title: "a"}, {Title: "b"}}}, fake, func(tip Tip) {
		shown = append(shown, tip.Title)
	})

	engine.Start()
	fake.Advance(time.Second)
	engine.Stop()
	engine.Stop()
	fake.Advance(10 * time.Second)
	assert.Equal(t, []string{"a", "b"}, shown)
	assert.Equal(t, 0, fake.Pending())

	engine.Start()
	assert.Equal(t, []string{"a", "b", "a"}, shown)
	assert.Equal(t, 1, fake.Pending())
}

func TestEngineDefaults(t *testing.T) {
	engine := New(Config{}, clock.NewFake(time.Now()), nil)
	assert.Equal(t, 30*time.Second, engine.config.TipInterval)
	assert.Len(t, engine.config.Tips, 6)
	assert.NotPanics(t, engine.Start)
	assert.Equal(t, "20-20-20 Rule", engine.Current().Title)
}
