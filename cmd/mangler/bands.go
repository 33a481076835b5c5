package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/noriah/mangler/dsp"
)

// BandPrinter prints the live band values as numbers, one line per tick.
type BandPrinter struct {
	Out  io.Writer
	Rate int
}

// Run starts analysis of the configured microphone and prints until ctx is
// done.
func (bp *BandPrinter) Run(ctx context.Context, cfg dsp.BandAnalyzerConfig) error {
	ba := dsp.NewBandAnalyzer(cfg)
	defer ba.Close()

	if err := ba.Start(ctx, nil); err != nil {
		return err
	}

	rate := bp.Rate
	if rate < 1 {
		rate = 10
	}

	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if err := ba.Err(); err != nil {
			return err
		}

		bp.Write(ba.Signal())
	}
}

// Write prints one line of band values scaled to [0, 100].
func (bp *BandPrinter) Write(b dsp.Bands) {
	fmt.Fprintf(bp.Out, "%6.3f %6.3f %6.3f\n", b.Bass*100, b.Mids*100, b.Treble*100)
}
