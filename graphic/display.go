// Package graphic is the terminal preview surface. Frames are drawn with
// upper half blocks so every character cell shows two pixels, in the 256
// colour palette. The bottom row is a status line.
package graphic

import (
	"context"
	"image"
	"sync"

	"github.com/mattn/go-runewidth"
	"github.com/nsf/termbox-go"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

// HalfBlock is the rune drawing the top pixel of a cell in the foreground
// colour and the bottom pixel in the background colour.
const HalfBlock rune = '▀'

// Display draws rendered frames on the terminal.
type Display struct {
	// Scale is the number of rendered pixels per terminal pixel along each
	// axis. Higher values render more detail for recordings and snapshots.
	Scale int

	// OnAction receives key bindings other than quit.
	OnAction func(Action)

	mu      sync.Mutex
	status  string
	cells   *image.RGBA
	restore func()
	open    bool
}

// NewDisplay returns a display rendering at twice the terminal resolution.
func NewDisplay() *Display {
	return &Display{Scale: 2}
}

// Init takes over the terminal.
func (d *Display) Init() error {
	restore, err := normalizeTerminal()
	if err != nil {
		return errors.Wrap(err, "failed to normalize terminal")
	}

	if err := termbox.Init(); err != nil {
		restore()
		return errors.Wrap(err, "failed to init termbox")
	}

	termbox.SetOutputMode(termbox.Output256)
	termbox.SetInputMode(termbox.InputEsc)
	termbox.HideCursor()
	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)

	d.mu.Lock()
	d.restore = restore
	d.open = true
	d.mu.Unlock()

	return nil
}

// Start polls terminal events until ctx is done or the user quits. The
// returned context is cancelled on quit.
func (d *Display) Start(ctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	go d.eventPoller(ctx, cancel)
	return ctx
}

func (d *Display) eventPoller(ctx context.Context, cancel context.CancelFunc) {
	defer cancel()

	go func() {
		<-ctx.Done()
		termbox.Interrupt()
	}()

	for {
		ev := termbox.PollEvent()

		select {
		case <-ctx.Done():
			return
		default:
		}

		switch ev.Type {
		case termbox.EventKey:
			action, ok := KeyAction(ev.Key, ev.Ch)
			if !ok {
				continue
			}

			if action == ActionQuit {
				return
			}

			if d.OnAction != nil {
				d.OnAction(action)
			}

		case termbox.EventError:
			return
		}
	}
}

// Close restores the terminal. It is safe to call more than once.
func (d *Display) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.open {
		return nil
	}

	termbox.Close()
	d.open = false

	if d.restore != nil {
		d.restore()
	}

	return nil
}

// SetStatus replaces the status line text.
func (d *Display) SetStatus(text string) {
	d.mu.Lock()
	d.status = text
	d.mu.Unlock()
}

// GridSize returns the terminal pixel grid: one column per cell and two
// rows per cell, minus the status line.
func GridSize(cols, rows int) (int, int) {
	rows--
	if cols < 0 || rows < 0 {
		return 0, 0
	}
	return cols, rows * 2
}

// Size returns the render resolution.
func (d *Display) Size() (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.open {
		return 0, 0
	}

	w, h := GridSize(termbox.Size())

	scale := d.Scale
	if scale < 1 {
		scale = 1
	}

	return w * scale, h * scale
}

// Present draws frame and the status line.
func (d *Display) Present(frame *image.RGBA) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.open {
		return errors.New("display closed")
	}

	cols, rows := termbox.Size()
	w, h := GridSize(cols, rows)

	d.cells = Downscale(d.cells, frame, w, h)

	for y := 0; y+1 < h; y += 2 {
		top := d.cells.Pix[y*d.cells.Stride:]
		bot := d.cells.Pix[(y+1)*d.cells.Stride:]

		for x := 0; x < w; x++ {
			termbox.SetCell(x, y/2, HalfBlock,
				Attribute(rgbaAt(top, x)), Attribute(rgbaAt(bot, x)))
		}
	}

	drawStatus(d.status, rows-1, cols)

	return errors.Wrap(termbox.Flush(), "failed to flush terminal")
}

// Downscale resamples src into a w x h image, reusing dst when it has the
// right size.
func Downscale(dst, src *image.RGBA, w, h int) *image.RGBA {
	if dst == nil || dst.Bounds().Dx() != w || dst.Bounds().Dy() != h {
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
	}

	if w > 0 && h > 0 {
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	}

	return dst
}

func drawStatus(text string, row, cols int) {
	if row < 0 {
		return
	}

	text = runewidth.Truncate(text, cols, "…")

	x := 0
	for _, r := range text {
		termbox.SetCell(x, row, r, termbox.ColorWhite|termbox.AttrBold, termbox.ColorDefault)
		x += runewidth.RuneWidth(r)
	}

	for ; x < cols; x++ {
		termbox.SetCell(x, row, ' ', termbox.ColorDefault, termbox.ColorDefault)
	}
}
