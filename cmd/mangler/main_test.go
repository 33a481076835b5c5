package main

import (
	"bytes"
	"testing"

	"github.com/noriah/mangler/dsp"
)

func TestZeroConfigIsValid(t *testing.T) {
	cfg := newZeroConfig()
	if err := cfg.validate(); err != nil {
		t.Fatal(err)
	}

	cfg.preset = ""
	if err := cfg.validate(); err == nil {
		t.Error("empty preset accepted")
	}

	cfg = newZeroConfig()
	cfg.frameRate = 0
	if err := cfg.validate(); err == nil {
		t.Error("zero frame rate accepted")
	}
}

func TestFitNames(t *testing.T) {
	names := fitNames()
	if len(names) != 3 || names[0] != "contain" || names[2] != "fill" {
		t.Errorf("unexpected fit names %v", names)
	}
}

func TestBandPrinterWrite(t *testing.T) {
	var buf bytes.Buffer
	bp := BandPrinter{Out: &buf}

	bp.Write(dsp.Bands{Bass: 0.5, Mids: 0.25, Treble: 1})

	if got := buf.String(); got != "50.000 25.000 100.000\n" {
		t.Errorf("got %q", got)
	}
}
