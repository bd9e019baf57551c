// Package audio provides paragraph narration. Only WAV headers are examined
// here, actual playback is delegated to a Sink.
package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"

	"github.com/go-audio/wav"
	"go.uber.org/zap"

	"lectern/config"
)

// Sink is an output device.
type Sink interface {
	Play(name string, volume float64)
	Stop()
	SetVolume(volume float64)
}

// Narrator loads narration clips from book resources and reports their
// duration so text reveal could be paced with the voice.
type Narrator struct {
	res     fs.FS
	enabled bool
	sink    Sink
	log     *zap.Logger

	current  string
	duration float64
}

// New creates narrator. Nil sink discards everything.
func New(cfg *config.ReaderConfig, sink Sink, log *zap.Logger) *Narrator {
	if sink == nil {
		sink = &Silent{}
	}
	return &Narrator{enabled: cfg.Audio, sink: sink, log: log.Named("audio")}
}

// SetResources changes file system clips are read from, used on book swap.
func (n *Narrator) SetResources(res fs.FS) {
	n.Reset()
	n.res = res
}

// Enabled reports audio setting.
func (n *Narrator) Enabled() bool {
	return n.enabled
}

// SetEnabled toggles narration, disabling stops current clip.
func (n *Narrator) SetEnabled(on bool) {
	if !on {
		n.Stop()
	}
	n.enabled = on
}

// Load prepares clip and returns its duration in seconds. Previous clip is
// stopped. It reports false when audio is disabled or clip is unusable, in
// which case previous clip is dropped.
func (n *Narrator) Load(name string) (float64, bool) {
	if !n.enabled || n.res == nil {
		return 0, false
	}

	d, err := clipDuration(n.res, name)
	if err != nil {
		n.log.Warn("Unable to load narration", zap.String("clip", name), zap.Error(err))
		n.Reset()
		return 0, false
	}
	n.Stop()
	n.current, n.duration = name, d
	n.log.Debug("Narration loaded", zap.String("clip", name), zap.Float64("duration", d))
	return d, true
}

// Play starts loaded clip at full volume.
func (n *Narrator) Play() {
	if !n.enabled || n.current == "" {
		return
	}
	n.sink.Play(n.current, 1)
}

func (n *Narrator) Stop() {
	if n.current == "" {
		return
	}
	n.sink.Stop()
}

// Reset stops and forgets current clip.
func (n *Narrator) Reset() {
	n.Stop()
	n.current, n.duration = "", 0
}

func (n *Narrator) SetVolume(volume float64) {
	if n.current == "" {
		return
	}
	n.sink.SetVolume(min(max(volume, 0), 1))
}

// Current returns loaded clip name and its duration.
func (n *Narrator) Current() (string, float64) {
	return n.current, n.duration
}

var errNoPCM = errors.New("wav has no usable pcm data")

// clipDuration is number of frames divided by sample rate.
func clipDuration(res fs.FS, name string) (float64, error) {
	data, err := fs.ReadFile(res, name)
	if err != nil {
		return 0, fmt.Errorf("unable to read clip: %w", err)
	}

	d := wav.NewDecoder(bytes.NewReader(data))
	if err := d.FwdToPCM(); err != nil {
		return 0, fmt.Errorf("unable to parse wav: %w", err)
	}
	frameSize := int(d.NumChans) * int(d.BitDepth) / 8
	if d.SampleRate == 0 || frameSize == 0 {
		return 0, errNoPCM
	}
	return float64(d.PCMSize/frameSize) / float64(d.SampleRate), nil
}

// Silent is a Sink which only remembers what it was asked to do.
type Silent struct {
	Playing string
	Volume  float64
	Plays   int
}

func (s *Silent) Play(name string, volume float64) {
	s.Playing, s.Volume = name, volume
	s.Plays++
}

func (s *Silent) Stop() {
	s.Playing = ""
}

func (s *Silent) SetVolume(volume float64) {
	s.Volume = volume
}
