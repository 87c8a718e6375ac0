package scope

import (
	"fmt"
	"image/color"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"github.com/itohio/gopedal/pkg/diag"
	"github.com/itohio/gopedal/pkg/pedal"
)

// plot is the drawing area inside the axis margins.
type plot struct {
	x, y, width, height float32
	xMin, xMax          time.Time
}

// point maps a report onto the plot. Values span the full MIDI range.
func (p plot) point(r diag.Report) fyne.Position {
	span := p.xMax.Sub(p.xMin).Seconds()
	fx := float32(0)
	if span > 0 {
		fx = float32(r.Time.Sub(p.xMin).Seconds() / span)
	}
	fy := float32(r.Value) / pedal.MaxValue
	return fyne.NewPos(p.x+fx*p.width, p.y+p.height-fy*p.height)
}

// scopeRenderer renders the scope widget.
type scopeRenderer struct {
	scope *ScopeWidget

	// Background
	grid *canvas.Rectangle

	// Objects list for Fyne
	objects []fyne.CanvasObject

	// Track last size to detect changes
	lastSize fyne.Size
}

// MinSize returns the minimum size of the widget.
func (r *scopeRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 300)
}

// Layout arranges the widget components.
func (r *scopeRenderer) Layout(size fyne.Size) {
	r.grid.Resize(size)

	if r.lastSize != size {
		r.lastSize = size
		// Size changed, redraw with new dimensions
		r.scope.BaseWidget.Refresh()
	}
}

// Refresh rebuilds the canvas objects from the current traces.
func (r *scopeRenderer) Refresh() {
	r.scope.mu.RLock()
	traces := r.scope.traces
	xMin := r.scope.xMin
	xMax := r.scope.xMax
	r.scope.mu.RUnlock()

	size := r.scope.Size()
	if size.Width == 0 || size.Height == 0 {
		return
	}

	// Clear old objects (but keep grid)
	r.objects = []fyne.CanvasObject{r.grid}

	marginLeft := float32(40.0)
	marginRight := float32(20.0)
	marginTop := float32(20.0)
	marginBottom := float32(40.0)

	p := plot{
		x:      marginLeft,
		y:      marginTop,
		width:  size.Width - marginLeft - marginRight,
		height: size.Height - marginTop - marginBottom,
		xMin:   xMin,
		xMax:   xMax,
	}

	r.drawGrid(p)
	for _, tr := range traces {
		r.drawTrace(p, tr)
	}
	r.drawLegend(p, traces)
}

// drawGrid draws the oscilloscope-style grid with value and time labels.
func (r *scopeRenderer) drawGrid(p plot) {
	gridColor := color.RGBA{R: 40, G: 40, B: 40, A: 255}
	labelColor := color.RGBA{R: 150, G: 150, B: 150, A: 255}

	numHLines := 8
	for i := 0; i < numHLines+1; i++ {
		y := p.y + float32(i)*p.height/float32(numHLines)
		r.addLine(gridColor, 1, fyne.NewPos(p.x, y), fyne.NewPos(p.x+p.width, y))

		value := pedal.MaxValue - i*pedal.MaxValue/numHLines
		r.addText(strconv.Itoa(value), labelColor, 10, fyne.TextAlignTrailing, fyne.NewPos(p.x-5, y-6))
	}

	numVLines := 10
	span := p.xMax.Sub(p.xMin)
	for i := 0; i < numVLines+1; i++ {
		x := p.x + float32(i)*p.width/float32(numVLines)
		r.addLine(gridColor, 1, fyne.NewPos(x, p.y), fyne.NewPos(x, p.y+p.height))

		offset := span * time.Duration(i) / time.Duration(numVLines)
		r.addText(formatTime(offset), labelColor, 10, fyne.TextAlignCenter, fyne.NewPos(x-20, p.y+p.height+5))
	}
}

// drawTrace draws one pedal's values as connected segments.
func (r *scopeRenderer) drawTrace(p plot, tr trace) {
	if len(tr.reports) < 2 {
		return
	}
	c := traceColor(tr.pedal)

	prev := p.point(tr.reports[0])
	for _, rep := range tr.reports[1:] {
		next := p.point(rep)
		r.addLine(c, 1.5, prev, next)
		prev = next
	}
}

// drawLegend lists the latest value and learned range of each pedal.
func (r *scopeRenderer) drawLegend(p plot, traces []trace) {
	y := p.y + 5
	for _, tr := range traces {
		if len(tr.reports) == 0 {
			continue
		}
		r.addText(legend(tr.pedal, tr.reports[len(tr.reports)-1]), traceColor(tr.pedal), 11, fyne.TextAlignLeading, fyne.NewPos(p.x+10, y))
		y += 15
	}
}

func (r *scopeRenderer) addLine(c color.Color, width float32, from, to fyne.Position) {
	line := canvas.NewLine(c)
	line.Position1 = from
	line.Position2 = to
	line.StrokeWidth = width
	r.objects = append(r.objects, line)
}

func (r *scopeRenderer) addText(s string, c color.Color, size float32, align fyne.TextAlign, pos fyne.Position) {
	text := canvas.NewText(s, c)
	text.TextSize = size
	text.Alignment = align
	text.Move(pos)
	r.objects = append(r.objects, text)
}

// Objects returns all canvas objects for rendering.
func (r *scopeRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *scopeRenderer) Destroy() {
	// Cleanup handled by Fyne
}

func legend(pedalIdx int, last diag.Report) string {
	return fmt.Sprintf("P%d CC%d = %d  [%d..%d]", pedalIdx, last.Controller, last.Value, last.Min, last.Max)
}

func formatTime(d time.Duration) string {
	if d < time.Second {
		return strconv.FormatFloat(d.Seconds(), 'f', 2, 64) + "s"
	}
	return strconv.FormatFloat(d.Seconds(), 'f', 1, 64) + "s"
}
