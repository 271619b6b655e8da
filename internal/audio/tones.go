// Package audio synthesizes and plays the short sine-tone cues that
// accompany session events.
package audio

import (
	"encoding/binary"
	"math"
	"time"

	"eyedoro/internal/core/model"
)

const (
	SampleRate   = 44100
	ChannelCount = 1

	attack    = 10 * time.Millisecond
	decayGoal = 0.001
)

// Beep is one sine tone placed at Offset from the start of a cue.
type Beep struct {
	Frequency float64
	Offset    time.Duration
	Duration  time.Duration
	Volume    float64
}

// Sequence returns the beeps that make up cue, or nil for an unknown cue.
func Sequence(cue model.Cue) []Beep {
	switch cue {
	case model.CueNotification:
		return []Beep{
			{Frequency: 600, Duration: 150 * time.Millisecond, Volume: 0.2},
			{Frequency: 800, Offset: 200 * time.Millisecond, Duration: 150 * time.Millisecond, Volume: 0.2},
		}
	case model.CueWarning:
		return []Beep{
			{Frequency: 400, Duration: 100 * time.Millisecond, Volume: 0.3},
			{Frequency: 600, Offset: 150 * time.Millisecond, Duration: 100 * time.Millisecond, Volume: 0.3},
			{Frequency: 800, Offset: 300 * time.Millisecond, Duration: 100 * time.Millisecond, Volume: 0.3},
		}
	case model.CueSuccess:
		return []Beep{
			{Frequency: 523, Duration: 100 * time.Millisecond, Volume: 0.2},
			{Frequency: 659, Offset: 120 * time.Millisecond, Duration: 100 * time.Millisecond, Volume: 0.2},
			{Frequency: 784, Offset: 240 * time.Millisecond, Duration: 200 * time.Millisecond, Volume: 0.2},
		}
	}
	return nil
}

// Render mixes beeps into signed 16-bit little-endian mono PCM.
func Render(beeps []Beep, sampleRate int) []byte {
	if len(beeps) == 0 || sampleRate <= 0 {
		return nil
	}

	var end time.Duration
	for _, beep := range beeps {
		if stop := beep.Offset + beep.Duration; stop > end {
			end = stop
		}
	}
	total := samplesFor(end, sampleRate)
	mix := make([]float64, total)
	for _, beep := range beeps {
		start := samplesFor(beep.Offset, sampleRate)
		length := samplesFor(beep.Duration, sampleRate)
		for i := 0; i < length && start+i < total; i++ {
			t := float64(i) / float64(sampleRate)
			mix[start+i] += envelope(beep, t) * math.Sin(2*math.Pi*beep.Frequency*t)
		}
	}

	pcm := make([]byte, total*2)
	for i, sample := range mix {
		sample = math.Max(-1, math.Min(1, sample))
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(int16(sample*math.MaxInt16)))
	}
	return pcm
}

// envelope ramps linearly to the beep volume over the attack, then decays
// exponentially towards decayGoal by the end of the beep.
func envelope(beep Beep, t float64) float64 {
	if beep.Volume <= 0 {
		return 0
	}
	rise := attack.Seconds()
	if t < rise {
		return beep.Volume * t / rise
	}
	span := beep.Duration.Seconds() - rise
	if span <= 0 {
		return beep.Volume
	}
	progress := math.Min(1, (t-rise)/span)
	return beep.Volume * math.Pow(decayGoal/beep.Volume, progress)
}

func samplesFor(d time.Duration, sampleRate int) int {
	return int(d.Seconds() * float64(sampleRate))
}
