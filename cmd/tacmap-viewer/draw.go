package main

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/medentem/tacmap"
)

const (
	markerRadius  = 10
	dotRadius     = 7
	badgeRadius   = 16
	timerRadius   = 14
	statusRadius  = 5
	orbitDistance = 18
	strokeWidth   = 2
)

// rgba converts an overlay color plus command alpha to an ebiten color.
func rgba(c tacmap.Color, alpha float64) color.RGBA {
	a := c.A * alpha
	return color.RGBA{
		R: uint8(c.R * a * 255),
		G: uint8(c.G * a * 255),
		B: uint8(c.B * a * 255),
		A: uint8(a * 255),
	}
}

func (g *game) drawCommand(screen *ebiten.Image, cmd tacmap.DrawCommand) {
	switch cmd.Op {
	case tacmap.OpMarker:
		g.drawMarker(screen, cmd)
	case tacmap.OpPolyline:
		g.drawPolyline(screen, cmd)
	case tacmap.OpPolygonFill:
		g.drawPolygon(screen, cmd)
	case tacmap.OpAreaCircle:
		g.drawArea(screen, cmd)
	case tacmap.OpPeerDot:
		g.drawPeerDot(screen, cmd)
	case tacmap.OpDeviceDot:
		g.drawDeviceDot(screen, cmd)
	case tacmap.OpClusterBadge:
		g.drawClusterBadge(screen, cmd)
	case tacmap.OpTimerGlyph:
		g.drawTimerGlyph(screen, cmd)
	case tacmap.OpStatusGlyph:
		g.drawStatusGlyph(screen, cmd)
	case tacmap.OpLassoPath:
		g.drawLassoPath(screen, cmd)
	}
}

func (g *game) drawMarker(screen *ebiten.Image, cmd tacmap.DrawCommand) {
	x, y := float32(cmd.Screen.X), float32(cmd.Screen.Y)
	col := rgba(cmd.Color, cmd.Alpha)

	switch cmd.Shape {
	case tacmap.ShapeSquare:
		vector.DrawFilledRect(screen, x-markerRadius, y-markerRadius,
			2*markerRadius, 2*markerRadius, col, true)
	case tacmap.ShapeTriangle:
		var p vector.Path
		p.MoveTo(x, y-markerRadius)
		p.LineTo(x+markerRadius, y+markerRadius)
		p.LineTo(x-markerRadius, y+markerRadius)
		p.Close()
		fillPath(screen, &p, col)
	case tacmap.ShapeExclamation:
		vector.DrawFilledCircle(screen, x, y, markerRadius, col, true)
		ebitenutil.DebugPrintAt(screen, "!", int(x)-3, int(y)-8)
	default:
		vector.DrawFilledCircle(screen, x, y, markerRadius, col, true)
	}

	if cmd.Label != "" {
		ebitenutil.DebugPrintAt(screen, cmd.Label, int(x)+markerRadius+2, int(y)-8)
	}
}

func (g *game) drawPolyline(screen *ebiten.Image, cmd tacmap.DrawCommand) {
	col := rgba(cmd.Color, cmd.Alpha)
	for i := 1; i < len(cmd.Points); i++ {
		a, b := cmd.Points[i-1], cmd.Points[i]
		if cmd.Style == tacmap.LineDashed {
			strokeDashed(screen, a, b, col)
		} else {
			vector.StrokeLine(screen,
				float32(a.X), float32(a.Y), float32(b.X), float32(b.Y),
				strokeWidth, col, true)
		}
	}
	if cmd.Arrow == tacmap.ArrowEnd && len(cmd.Points) >= 2 {
		drawArrowHead(screen, cmd.Points[len(cmd.Points)-2], cmd.Points[len(cmd.Points)-1], col)
	}
}

// strokeDashed draws the segment as 8px dashes with 6px gaps.
func strokeDashed(screen *ebiten.Image, a, b tacmap.ScreenPoint, col color.RGBA) {
	const dash, gap = 8.0, 6.0
	total := a.Dist(b)
	if total == 0 {
		return
	}
	ux, uy := (b.X-a.X)/total, (b.Y-a.Y)/total
	for at := 0.0; at < total; at += dash + gap {
		end := math.Min(at+dash, total)
		vector.StrokeLine(screen,
			float32(a.X+ux*at), float32(a.Y+uy*at),
			float32(a.X+ux*end), float32(a.Y+uy*end),
			strokeWidth, col, true)
	}
}

func drawArrowHead(screen *ebiten.Image, from, to tacmap.ScreenPoint, col color.RGBA) {
	angle := math.Atan2(to.Y-from.Y, to.X-from.X)
	const size = 12.0
	for _, side := range []float64{-1, 1} {
		a := angle + math.Pi + side*math.Pi/7
		vector.StrokeLine(screen,
			float32(to.X), float32(to.Y),
			float32(to.X+size*math.Cos(a)), float32(to.Y+size*math.Sin(a)),
			strokeWidth, col, true)
	}
}

func (g *game) drawPolygon(screen *ebiten.Image, cmd tacmap.DrawCommand) {
	if len(cmd.Points) < 3 {
		return
	}
	var p vector.Path
	p.MoveTo(float32(cmd.Points[0].X), float32(cmd.Points[0].Y))
	for _, pt := range cmd.Points[1:] {
		p.LineTo(float32(pt.X), float32(pt.Y))
	}
	p.Close()

	fillPath(screen, &p, rgba(cmd.Color, cmd.Alpha*0.3))
	strokePath(screen, &p, rgba(cmd.Color, cmd.Alpha))

	if cmd.Label != "" {
		ebitenutil.DebugPrintAt(screen, cmd.Label,
			int(cmd.Points[0].X)+4, int(cmd.Points[0].Y)+4)
	}
}

func (g *game) drawArea(screen *ebiten.Image, cmd tacmap.DrawCommand) {
	x, y := float32(cmd.Screen.X), float32(cmd.Screen.Y)
	r := float32(cmd.RadiusPx)
	vector.DrawFilledCircle(screen, x, y, r, rgba(cmd.Color, cmd.Alpha*0.2), true)
	vector.StrokeCircle(screen, x, y, r, strokeWidth, rgba(cmd.Color, cmd.Alpha), true)
}

func (g *game) drawPeerDot(screen *ebiten.Image, cmd tacmap.DrawCommand) {
	x, y := float32(cmd.Screen.X), float32(cmd.Screen.Y)
	alpha := cmd.Alpha
	if cmd.Stale {
		alpha *= 0.4
	}
	vector.DrawFilledCircle(screen, x, y, dotRadius, rgba(cmd.Color, alpha), true)
	vector.StrokeCircle(screen, x, y, dotRadius+2, 1, rgba(tacmap.ColorWhite, alpha), true)
	if cmd.Label != "" {
		ebitenutil.DebugPrintAt(screen, cmd.Label, int(x)+dotRadius+2, int(y)-8)
	}
}

func (g *game) drawDeviceDot(screen *ebiten.Image, cmd tacmap.DrawCommand) {
	x, y := float32(cmd.Screen.X), float32(cmd.Screen.Y)
	blue := tacmap.Color{R: 0.25, G: 0.55, B: 1, A: 1}
	alpha := cmd.Alpha
	if cmd.Stale {
		alpha *= 0.4
	}
	vector.DrawFilledCircle(screen, x, y, dotRadius+1, rgba(blue, alpha), true)
	vector.StrokeCircle(screen, x, y, dotRadius+3, strokeWidth, rgba(tacmap.ColorWhite, alpha), true)
}

func (g *game) drawClusterBadge(screen *ebiten.Image, cmd tacmap.DrawCommand) {
	x, y := float32(cmd.Screen.X), float32(cmd.Screen.Y)
	vector.DrawFilledCircle(screen, x, y, badgeRadius,
		rgba(tacmap.Color{R: 0.2, G: 0.3, B: 0.45, A: 1}, cmd.Alpha), true)
	vector.StrokeCircle(screen, x, y, badgeRadius, 1, rgba(tacmap.ColorWhite, cmd.Alpha), true)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%d", cmd.Count), int(x)-4, int(y)-8)
}

func (g *game) drawTimerGlyph(screen *ebiten.Image, cmd tacmap.DrawCommand) {
	x, y := float32(cmd.Screen.X), float32(cmd.Screen.Y-markerRadius-timerRadius-4)
	col := rgba(cmd.Color, cmd.Alpha)
	vector.StrokeCircle(screen, x, y, timerRadius, 1, col, true)

	// Second hand, 12 o'clock at angle zero.
	hx := x + timerRadius*float32(math.Sin(cmd.SweepAngle))
	hy := y - timerRadius*float32(math.Cos(cmd.SweepAngle))
	vector.StrokeLine(screen, x, y, hx, hy, 1, col, true)

	ebitenutil.DebugPrintAt(screen, formatCountdown(cmd.SecondsLeft),
		int(x)+timerRadius+2, int(y)-8)
}

// formatCountdown renders remaining seconds as m:ss under an hour, h:mm:ss
// above.
func formatCountdown(secs int) string {
	if secs >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
	}
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func (g *game) drawStatusGlyph(screen *ebiten.Image, cmd tacmap.DrawCommand) {
	x, y := float32(cmd.Screen.X), float32(cmd.Screen.Y)

	switch cmd.Status {
	case tacmap.StatusSending, tacmap.StatusRetrying:
		// Orbiting dot around the entity.
		ox := x + orbitDistance*float32(math.Cos(cmd.OrbitPhase))
		oy := y + orbitDistance*float32(math.Sin(cmd.OrbitPhase))
		col := tacmap.Color{R: 1, G: 0.8, B: 0.2, A: 1}
		if cmd.Status == tacmap.StatusRetrying {
			col = tacmap.Color{R: 1, G: 0.5, B: 0.2, A: 1}
		}
		vector.DrawFilledCircle(screen, ox, oy, statusRadius, rgba(col, cmd.Alpha), true)

	case tacmap.StatusDelivered:
		vector.DrawFilledCircle(screen, x+orbitDistance, y-orbitDistance, statusRadius,
			rgba(tacmap.Color{R: 0.3, G: 0.9, B: 0.4, A: 1}, cmd.Alpha), true)

	case tacmap.StatusFailed:
		r := float32(cmd.Scale) * orbitDistance
		vector.StrokeCircle(screen, x, y, r, strokeWidth,
			rgba(tacmap.Color{R: 1, G: 0.25, B: 0.25, A: 1}, cmd.Alpha), true)
	}
}

func (g *game) drawLassoPath(screen *ebiten.Image, cmd tacmap.DrawCommand) {
	col := rgba(tacmap.Color{R: 0.4, G: 0.8, B: 1, A: 1}, cmd.Alpha)
	for i := 1; i < len(cmd.Points); i++ {
		strokeDashed(screen, cmd.Points[i-1], cmd.Points[i], col)
	}
}

// fillPath rasterizes a closed path with a solid color.
func fillPath(screen *ebiten.Image, p *vector.Path, col color.RGBA) {
	vs, is := p.AppendVerticesAndIndicesForFilling(nil, nil)
	paintVertices(screen, vs, is, col)
}

// strokePath outlines a path.
func strokePath(screen *ebiten.Image, p *vector.Path, col color.RGBA) {
	op := &vector.StrokeOptions{Width: strokeWidth}
	vs, is := p.AppendVerticesAndIndicesForStroke(nil, nil, op)
	paintVertices(screen, vs, is, col)
}

func paintVertices(screen *ebiten.Image, vs []ebiten.Vertex, is []uint16, col color.RGBA) {
	for i := range vs {
		vs[i].SrcX = 1
		vs[i].SrcY = 1
		vs[i].ColorR = float32(col.R) / 255
		vs[i].ColorG = float32(col.G) / 255
		vs[i].ColorB = float32(col.B) / 255
		vs[i].ColorA = float32(col.A) / 255
	}
	op := &ebiten.DrawTrianglesOptions{AntiAlias: true}
	screen.DrawTriangles(vs, is, whitePixel, op)
}

var whitePixel = func() *ebiten.Image {
	img := ebiten.NewImage(3, 3)
	img.Fill(color.White)
	return img
}()
