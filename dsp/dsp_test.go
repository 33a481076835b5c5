package dsp

import (
	"math"
	"testing"
)

func TestBandsUniformSpectrum(t *testing.T) {
	for _, m := range []uint8{0, 1, 77, 128, 255} {
		bins := make([]uint8, AnalysisSize/2)
		for i := range bins {
			bins[i] = m
		}

		bands := BandsFromBins(bins)
		want := float64(m) / 255.0

		for name, got := range map[string]float64{
			"bass": bands.Bass, "mids": bands.Mids, "treble": bands.Treble,
		} {
			if math.Abs(got-want) > 1e-12 {
				t.Errorf("M=%d: %s = %v, want %v", m, name, got, want)
			}
		}
	}
}

func TestBandSplits(t *testing.T) {
	mids, treble := BandSplits(AnalysisSize / 2)
	if mids != 25 || treble != 76 {
		t.Errorf("splits = %d, %d; want 25, 76", mids, treble)
	}

	bins := make([]uint8, AnalysisSize/2)
	bins[24] = 255
	bins[25] = 255

	bands := BandsFromBins(bins)
	if want := 255.0 / 25.0 / 255.0; math.Abs(bands.Bass-want) > 1e-12 {
		t.Errorf("bass = %v, want %v", bands.Bass, want)
	}
	if want := 255.0 / 51.0 / 255.0; math.Abs(bands.Mids-want) > 1e-12 {
		t.Errorf("mids = %v, want %v", bands.Mids, want)
	}
	if bands.Treble != 0 {
		t.Errorf("treble = %v, want 0", bands.Treble)
	}
}

func TestBandsEmpty(t *testing.T) {
	if b := BandsFromBins(nil); b != (Bands{}) {
		t.Errorf("empty spectrum gave %+v", b)
	}
}

func TestToByte(t *testing.T) {
	scale := 255.0 / 70.0

	for _, tc := range []struct {
		mag  float64
		want int
	}{
		{0, 0},
		{math.NaN(), 0},
		{1e-6, 0},  // -120 dB
		{1.0, 255}, // 0 dB
		{0.01, 218},
		{0.001, 145},
	} {
		got := int(ToByte(tc.mag, -100, scale))
		if d := got - tc.want; d < -1 || d > 1 {
			t.Errorf("ToByte(%v) = %d, want %d", tc.mag, got, tc.want)
		}
	}
}

func TestAnalyzerSilence(t *testing.T) {
	az := NewAnalyzer(DefaultAnalyzerConfig())

	for _, b := range az.Process(make([]float64, AnalysisSize)) {
		if b != 0 {
			t.Fatal("silence produced a non-zero bin")
		}
	}
}

func TestAnalyzerTone(t *testing.T) {
	az := NewAnalyzer(DefaultAnalyzerConfig())

	if n := az.BinCount(); n != 128 {
		t.Fatalf("bin count = %d, want 128", n)
	}

	buf := make([]float64, AnalysisSize)
	for i := range buf {
		buf[i] = math.Cos(2 * math.Pi * 16 * float64(i) / AnalysisSize)
	}

	bins := az.Process(buf)

	if bins[16] != 255 {
		t.Errorf("tone bin = %d, want 255", bins[16])
	}

	if bins[60] != 0 || bins[100] != 0 {
		t.Errorf("far bins leaked: %d %d", bins[60], bins[100])
	}
}

func TestAnalyzerSmoothing(t *testing.T) {
	cfg := DefaultAnalyzerConfig()
	az := NewAnalyzer(cfg)

	buf := make([]float64, AnalysisSize)
	for i := range buf {
		buf[i] = 0.001 * math.Cos(2*math.Pi*8*float64(i)/AnalysisSize)
	}

	first := az.Process(buf)[8]
	second := az.Process(buf)[8]

	if second <= first {
		t.Errorf("smoothing should ramp up: %d then %d", first, second)
	}

	az.Reset()
	if again := az.Process(buf)[8]; again != first {
		t.Errorf("reset did not clear history: %d vs %d", again, first)
	}
}

func TestAnalyzerShortBuffer(t *testing.T) {
	az := NewAnalyzer(DefaultAnalyzerConfig())

	// Shorter input is zero padded and must not panic.
	if n := len(az.Process(make([]float64, 10))); n != 128 {
		t.Errorf("got %d bins", n)
	}

	// Longer input keeps the newest samples.
	if n := len(az.Process(make([]float64, 1000))); n != 128 {
		t.Errorf("got %d bins", n)
	}
}

func TestSmootherClampsTau(t *testing.T) {
	sm := NewSmoother(1, 2)
	if v := sm.SmoothBin(0, 1); v > 1e-6 {
		t.Errorf("tau >= 1 should hold the previous value, got %v", v)
	}

	sm = NewSmoother(1, -1)
	if v := sm.SmoothBin(0, 0.5); v != 0.5 {
		t.Errorf("tau < 0 should pass through, got %v", v)
	}

	if v := sm.SmoothBin(0, math.Inf(1)); v != 0 {
		t.Errorf("infinite input should be dropped, got %v", v)
	}
}

func BenchmarkAnalyzer(b *testing.B) {
	az := NewAnalyzer(DefaultAnalyzerConfig())
	buf := make([]float64, AnalysisSize)
	for i := range buf {
		buf[i] = math.Sin(float64(i) * 0.3)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		BandsFromBins(az.Process(buf))
	}
}
