package dsp

import (
	"gonum.org/v1/gonum/floats"
)

const (
	// AnalysisSize is the transform length. It yields AnalysisSize/2 bins.
	AnalysisSize = 256

	// BassSplit and MidsSplit are the fractions of the bin range where the
	// mids and treble bands start.
	BassSplit = 0.2
	MidsSplit = 0.6
)

// Bands is the audio band signal: the mean normalized energy of the bass, mids
// and treble bin ranges, each in [0, 1].
type Bands struct {
	Bass   float64
	Mids   float64
	Treble float64
}

// BandSplits returns the first mids bin and the first treble bin for a
// spectrum of n bins.
func BandSplits(n int) (midsStart, trebleStart int) {
	return int(float64(n) * BassSplit), int(float64(n) * MidsSplit)
}

// BandsFromBins reduces byte magnitudes into band means scaled to [0, 1].
func BandsFromBins(bins []uint8) Bands {
	buf := make([]float64, len(bins))
	for i, b := range bins {
		buf[i] = float64(b)
	}

	midsStart, trebleStart := BandSplits(len(bins))

	return Bands{
		Bass:   mean(buf[:midsStart]) / 255.0,
		Mids:   mean(buf[midsStart:trebleStart]) / 255.0,
		Treble: mean(buf[trebleStart:]) / 255.0,
	}
}

func mean(buf []float64) float64 {
	if len(buf) == 0 {
		return 0.0
	}
	return floats.Sum(buf) / float64(len(buf))
}
