package main

import (
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/rs/zerolog"

	"github.com/medentem/tacmap"
)

const (
	minZoom = 3
	maxZoom = 19
)

var backgroundColor = color.RGBA{R: 16, G: 20, B: 26, A: 255}

// game adapts the overlay engine to ebiten's update/draw loop. All engine
// calls happen in Update, which ebiten runs on a single goroutine; the peer
// feed hands its updates over via a channel drained here.
type game struct {
	engine *tacmap.Engine
	proj   *tacmap.Mercator
	log    zerolog.Logger
	peers  *peerFeed

	annotations []tacmap.Entity
	peerDots    map[string]*tacmap.PeerDot
	deviceDot   *tacmap.DeviceDot

	commands []tacmap.DrawCommand
	dirty    bool

	prevLeftDown  bool
	prevRightDown bool
	prevKeyL      bool
	lastCursor    tacmap.ScreenPoint

	screenW, screenH int
}

func newGame(engine *tacmap.Engine, proj *tacmap.Mercator, log zerolog.Logger) *game {
	g := &game{
		engine:    engine,
		proj:      proj,
		log:       log,
		peerDots:  make(map[string]*tacmap.PeerDot),
		deviceDot: &tacmap.DeviceDot{Position: proj.Center()},
		dirty:     true,
	}
	engine.OnInvalidate(func() { g.dirty = true })
	engine.OnEntitySelected(func(ev tacmap.Event) {
		log.Info().Str("id", string(ev.Entity.ID)).Str("kind", ev.Entity.Kind.String()).Msg("selected")
		engine.SetPopoverVisible(true)
	})
	engine.OnEntityLongPressed(func(ev tacmap.Event) {
		log.Info().Str("id", string(ev.Entity.ID)).Msg("long press")
	})
	engine.OnLassoCompleted(func(ev tacmap.Event) {
		log.Info().Int("count", len(ev.Selected)).Msg("lasso selection")
	})
	engine.OnPopoverDismissRequested(func(tacmap.Event) {
		engine.SetPopoverVisible(false)
	})
	return g
}

func (g *game) setAnnotations(entities []tacmap.Entity) {
	g.annotations = entities
	g.pushEntities()
}

// pushEntities rebuilds the combined entity set and hands it to the engine.
func (g *game) pushEntities() {
	all := make([]tacmap.Entity, 0, len(g.annotations)+len(g.peerDots)+1)
	all = append(all, g.annotations...)
	for _, dot := range g.peerDots {
		all = append(all, dot)
	}
	all = append(all, g.deviceDot)
	g.engine.OnEntitiesChanged(all)
}

func (g *game) Update() error {
	g.drainPeerUpdates()
	g.handleKeyboard()
	g.handleWheel()
	g.handleMouse()

	g.engine.OnTick(time.Now())

	if g.dirty {
		g.commands = g.engine.BuildFrame()
		g.dirty = false
	}
	return nil
}

func (g *game) drainPeerUpdates() {
	if g.peers == nil {
		return
	}
	changed := false
	for {
		select {
		case upd := <-g.peers.updates:
			g.peerDots[upd.PeerID] = &tacmap.PeerDot{
				PeerID:      upd.PeerID,
				Position:    tacmap.GeoPoint{Lat: upd.Lat, Lon: upd.Lon},
				StatusColor: tacmap.Color{R: 0.3, G: 0.9, B: 0.5, A: 1},
				LastUpdate:  time.Now(),
			}
			changed = true
		default:
			if changed {
				g.pushEntities()
			}
			return
		}
	}
}

func (g *game) handleKeyboard() {
	keyL := ebiten.IsKeyPressed(ebiten.KeyL)
	if keyL && !g.prevKeyL {
		g.engine.SetLassoMode(!g.engine.LassoMode())
		g.log.Info().Bool("on", g.engine.LassoMode()).Msg("lasso mode")
	}
	g.prevKeyL = keyL
}

func (g *game) handleWheel() {
	_, dy := ebiten.Wheel()
	if dy == 0 {
		return
	}
	zoom := g.proj.Zoom() + dy*0.25
	zoom = math.Max(minZoom, math.Min(maxZoom, zoom))
	if zoom != g.proj.Zoom() {
		g.proj.SetZoom(zoom)
		g.engine.OnProjectionChanged()
	}
}

// handleMouse feeds the left button into the gesture pipeline and pans the
// camera with the right button.
func (g *game) handleMouse() {
	mx, my := ebiten.CursorPosition()
	cursor := tacmap.ScreenPoint{X: float64(mx), Y: float64(my)}

	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	switch {
	case left && !g.prevLeftDown:
		g.engine.OnPointerDown(cursor, 0)
	case left && cursor != g.lastCursor:
		g.engine.OnPointerMove(cursor, 0)
	case !left && g.prevLeftDown:
		g.engine.OnPointerUp(cursor, 0)
	}
	g.prevLeftDown = left

	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	if right && g.prevRightDown && cursor != g.lastCursor {
		// Drag the point under the cursor along with it.
		dx := cursor.X - g.lastCursor.X
		dy := cursor.Y - g.lastCursor.Y
		w, h := g.proj.ScreenSize()
		g.proj.SetCenter(g.proj.FromScreen(tacmap.ScreenPoint{X: w/2 - dx, Y: h/2 - dy}))
		g.engine.OnProjectionChanged()
	}
	g.prevRightDown = right
	g.lastCursor = cursor
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	for _, cmd := range g.commands {
		g.drawCommand(screen, cmd)
	}

	mode := "pan/select"
	if g.engine.LassoMode() {
		mode = "lasso"
	}
	ebitenutil.DebugPrintAt(screen,
		fmt.Sprintf("zoom %.2f | %s | L toggles lasso", g.proj.Zoom(), mode), 8, 8)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.screenW || outsideHeight != g.screenH {
		g.screenW, g.screenH = outsideWidth, outsideHeight
		g.proj.SetScreenSize(float64(outsideWidth), float64(outsideHeight))
		g.engine.OnProjectionChanged()
	}
	return outsideWidth, outsideHeight
}
