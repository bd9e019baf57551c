package audio

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
	"testing/fstest"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"lectern/config"
)

// pcmWAV builds canonical 44 byte header followed by silent samples.
func pcmWAV(rate, channels, bits, frames int) []byte {
	dataSize := frames * channels * bits / 8
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(rate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(rate*channels*bits/8))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(channels*bits/8))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(bits))
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	buf.Write(make([]byte, dataSize))
	return buf.Bytes()
}

func testResources() fstest.MapFS {
	return fstest.MapFS{
		"sounds/mono.wav":   {Data: pcmWAV(8000, 1, 16, 8000)},
		"sounds/stereo.wav": {Data: pcmWAV(22050, 2, 16, 11025)},
		"sounds/bad.wav":    {Data: []byte("definitely not riff")},
	}
}

func TestNarratorLoad(t *testing.T) {
	tests := []struct {
		clip   string
		want   float64
		wantOK bool
	}{
		{"sounds/mono.wav", 1, true},
		{"sounds/stereo.wav", 0.5, true},
		{"sounds/bad.wav", 0, false},
		{"sounds/absent.wav", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.clip, func(t *testing.T) {
			n := New(&config.ReaderConfig{Audio: true}, nil, zap.NewNop())
			n.SetResources(testResources())

			got, ok := n.Load(tt.clip)
			if ok != tt.wantOK {
				t.Fatalf("Load() ok = %t, want %t", ok, tt.wantOK)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Load() duration = %v, want %v", got, tt.want)
			}
			if name, _ := n.Current(); ok && name != tt.clip {
				t.Errorf("Current() = %q", name)
			}
		})
	}
}

func TestNarratorDisabled(t *testing.T) {
	sink := &Silent{}
	n := New(&config.ReaderConfig{Audio: false}, sink, zap.NewNop())
	n.SetResources(testResources())

	if _, ok := n.Load("sounds/mono.wav"); ok {
		t.Error("Load() must fail when audio is disabled")
	}
	n.Play()
	if sink.Plays != 0 {
		t.Error("disabled narrator played a clip")
	}

	n.SetEnabled(true)
	if _, ok := n.Load("sounds/mono.wav"); !ok {
		t.Fatal("Load() failed after enabling audio")
	}
	n.Play()
	if sink.Playing != "sounds/mono.wav" || sink.Volume != 1 {
		t.Errorf("sink = %+v", sink)
	}

	n.SetEnabled(false)
	if sink.Playing != "" {
		t.Error("disabling audio must stop playback")
	}
}

func TestNarratorPlayback(t *testing.T) {
	sink := &Silent{}
	n := New(&config.ReaderConfig{Audio: true}, sink, zap.NewNop())

	if _, ok := n.Load("sounds/mono.wav"); ok {
		t.Fatal("Load() without resources must fail")
	}
	n.SetResources(testResources())

	n.Play()
	if sink.Plays != 0 {
		t.Error("Play() without loaded clip reached the sink")
	}

	if _, ok := n.Load("sounds/mono.wav"); !ok {
		t.Fatal("Load() failed")
	}
	n.Play()
	n.SetVolume(0.25)
	if sink.Volume != 0.25 {
		t.Errorf("Volume = %v, want 0.25", sink.Volume)
	}
	n.SetVolume(-1)
	if sink.Volume != 0 {
		t.Errorf("Volume = %v, want clamped to 0", sink.Volume)
	}

	// replaying restores full volume
	n.Play()
	if sink.Volume != 1 || sink.Plays != 2 {
		t.Errorf("sink = %+v", sink)
	}

	n.Stop()
	if sink.Playing != "" {
		t.Error("Stop() did not reach the sink")
	}

	n.Reset()
	if name, d := n.Current(); name != "" || d != 0 {
		t.Errorf("Current() after Reset = %q, %v", name, d)
	}
}

func TestNarratorBadClipDropsPrevious(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	sink := &Silent{}
	n := New(&config.ReaderConfig{Audio: true}, sink, zap.New(core))
	n.SetResources(testResources())

	if _, ok := n.Load("sounds/mono.wav"); !ok {
		t.Fatal("Load() failed")
	}
	n.Play()

	if _, ok := n.Load("sounds/bad.wav"); ok {
		t.Fatal("Load() of broken clip succeeded")
	}
	if sink.Playing != "" {
		t.Error("previous clip must be stopped")
	}
	if name, _ := n.Current(); name != "" {
		t.Errorf("Current() = %q, want none", name)
	}
	if logs.FilterMessage("Unable to load narration").Len() != 1 {
		t.Errorf("expected warning, got %d entries", logs.Len())
	}
}

func TestNarratorLoadStopsPrevious(t *testing.T) {
	sink := &Silent{}
	n := New(&config.ReaderConfig{Audio: true}, sink, zap.NewNop())
	n.SetResources(testResources())

	if _, ok := n.Load("sounds/mono.wav"); !ok {
		t.Fatal("Load() failed")
	}
	n.Play()
	if sink.Playing != "sounds/mono.wav" {
		t.Fatalf("Playing = %q", sink.Playing)
	}

	if _, ok := n.Load("sounds/stereo.wav"); !ok {
		t.Fatal("Load() of next clip failed")
	}
	if sink.Playing != "" {
		t.Errorf("Playing = %q, previous clip must be stopped", sink.Playing)
	}
	n.Play()
	if sink.Playing != "sounds/stereo.wav" || sink.Plays != 2 {
		t.Errorf("sink = %+v", sink)
	}
}
