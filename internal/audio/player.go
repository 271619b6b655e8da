package audio

import (
	"bytes"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"eyedoro/internal/core/model"
	"eyedoro/internal/logger"
)

// Player plays cues through the system audio device via oto.
type Player struct {
	ctx    *oto.Context
	log    *logger.Logger
	mu     sync.Mutex
	active *oto.Player
	cache  map[model.Cue][]byte
}

// NewPlayer initializes the audio context. It fails when no audio device
// is available; only one context may exist per process.
func NewPlayer(log *logger.Logger) (*Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: ChannelCount,
		Format:       oto.FormatSignedInt16LE,
	}
	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-readyChan

	log = log.Named("audio")
	log.Debug("audio player initialized (rate=%d, channels=%d)", SampleRate, ChannelCount)
	return &Player{ctx: ctx, log: log, cache: make(map[model.Cue][]byte)}, nil
}

// Play starts cue and returns immediately. A new cue cuts off the previous one.
func (p *Player) Play(cue model.Cue) {
	pcm := p.pcmFor(cue)
	if len(pcm) == 0 {
		p.log.Debug("no tones for cue %q", cue)
		return
	}

	player := p.ctx.NewPlayer(bytes.NewReader(pcm))
	p.mu.Lock()
	if p.active != nil {
		p.active.Pause()
	}
	p.active = player
	p.mu.Unlock()

	player.Play()
	go p.wait(player)
}

func (p *Player) wait(player *oto.Player) {
	for player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}

	p.mu.Lock()
	if p.active == player {
		p.active = nil
	}
	p.mu.Unlock()

	if err := player.Close(); err != nil {
		p.log.Debug("close player: %v", err)
	}
}

func (p *Player) pcmFor(cue model.Cue) []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pcm, ok := p.cache[cue]; ok {
		return pcm
	}
	pcm := Render(Sequence(cue), SampleRate)
	p.cache[cue] = pcm
	return pcm
}

// Silent drops every cue. It stands in when no audio device is available.
type Silent struct{}

// Play does nothing.
func (Silent) Play(model.Cue) {}

// CuePlayer is satisfied by Player and Silent.
type CuePlayer interface {
	Play(cue model.Cue)
}

// Open returns a device-backed player, or Silent when the device cannot
// be opened.
func Open(log *logger.Logger) CuePlayer {
	player, err := NewPlayer(log)
	if err != nil {
		log.Named("audio").Warn("audio unavailable, cues disabled: %v", err)
		return Silent{}
	}
	return player
}
