package main

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"math/cmplx"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"clfft/pipeline"
)

var (
	viewBackground = color.RGBA{12, 14, 24, 255}
	viewBar        = color.RGBA{0, 200, 255, 255}
	viewPeak       = color.RGBA{255, 80, 60, 255}
)

// spectrumView draws the magnitude spectrum of one result, one column per
// group of bins, in decibels relative to the largest bin.
type spectrumView struct {
	levels  []float64
	peakCol int
	caption string
}

func newSpectrumView(res *pipeline.Result, deviceName string) *spectrumView {
	levels, peak := spectrumLevels(res.Output, viewWidth)
	return &spectrumView{
		levels:  levels,
		peakCol: peak * len(levels) / len(res.Output),
		caption: fmt.Sprintf("N=%d on %s\npasses: %d  %.3f GFLOPS\npeak bin: %d\nEsc to close",
			len(res.Output), deviceName, len(res.Passes), res.GFLOPS, peak),
	}
}

// spectrumLevels reduces out to at most columns values in [0, 1], keeping the
// loudest bin of each column. It also returns the index of the loudest bin.
func spectrumLevels(out []complex64, columns int) ([]float64, int) {
	if len(out) == 0 || columns <= 0 {
		return nil, -1
	}
	if columns > len(out) {
		columns = len(out)
	}
	mags := make([]float64, len(out))
	peak, peakMag := 0, 0.0
	for i, v := range out {
		mags[i] = cmplx.Abs(complex128(v))
		if mags[i] > peakMag {
			peak, peakMag = i, mags[i]
		}
	}
	levels := make([]float64, columns)
	if peakMag == 0 {
		return levels, peak
	}
	for c := range levels {
		lo := c * len(out) / columns
		hi := (c + 1) * len(out) / columns
		var m float64
		for _, v := range mags[lo:hi] {
			m = math.Max(m, v)
		}
		db := 20 * math.Log10(m/peakMag)
		if math.IsInf(db, -1) || db < viewFloorDB {
			db = viewFloorDB
		}
		levels[c] = 1 - db/viewFloorDB
	}
	return levels, peak
}

func (v *spectrumView) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	return nil
}

func (v *spectrumView) Draw(screen *ebiten.Image) {
	screen.Fill(viewBackground)
	colWidth := viewWidth / len(v.levels)
	if colWidth < 1 {
		colWidth = 1
	}
	for c, level := range v.levels {
		clr := viewBar
		if c == v.peakCol {
			clr = viewPeak
		}
		bar := columnRect(c, colWidth, level)
		if bar.Empty() {
			continue
		}
		screen.SubImage(bar).(*ebiten.Image).Fill(clr)
	}
	ebitenutil.DebugPrint(screen, v.caption)
}

func (v *spectrumView) Layout(_, _ int) (int, int) { return viewWidth, viewHeight }

// columnRect is the filled area of column c at the given level in [0,1],
// clipped to the window.
func columnRect(c, colWidth int, level float64) image.Rectangle {
	top := viewHeight - 1 - int(level*float64(viewHeight-1))
	return image.Rect(c*colWidth, top, (c+1)*colWidth, viewHeight).Intersect(image.Rect(0, 0, viewWidth, viewHeight))
}

// showSpectrum blocks until the window is closed.
func showSpectrum(res *pipeline.Result, deviceName string) error {
	if len(res.Output) == 0 {
		return nil
	}
	ebiten.SetWindowSize(viewWidth*viewScale, viewHeight*viewScale)
	ebiten.SetWindowTitle(viewTitle)
	if err := ebiten.RunGame(newSpectrumView(res, deviceName)); err != nil {
		return fmt.Errorf("running spectrum view: %w", err)
	}
	return nil
}
