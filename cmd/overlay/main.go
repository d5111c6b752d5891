// overlay draws the marker boxes in a transparent, undecorated, always on
// top window that lets mouse input through to the game underneath.
package main

import (
	"errors"
	"flag"
	"image/color"
	"os"

	"fortio.org/cli"
	"fortio.org/log"
	"github.com/ansipixels/mumbleview/config"
	"github.com/ansipixels/mumbleview/render"
	"github.com/ansipixels/mumbleview/telemetry"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	linkFile    string
	markersFile string
	tps         int
	lineWidth   float64
)

func main() {
	flag.StringVar(&linkFile, "link", telemetry.DefaultLinkFile, "MumbleLink `file` written by mumblerelay")
	flag.StringVar(&markersFile, "markers", "", "Markers `file` to draw (JSON, .glb or .gltf)")
	flag.IntVar(&tps, "tps", 30, "Telemetry polls per second")
	flag.Float64Var(&lineWidth, "line-width", 2, "Wireframe stroke width in pixels")
	cli.MinArgs = 0
	cli.MaxArgs = 0
	cli.Main()
	os.Exit(run())
}

type overlayGame struct {
	reader   *telemetry.Reader
	anchors  []render.Anchor
	smoother *render.LabelSmoother
	face     text.Face

	width, height int
	frame         render.Frame
	labels        []render.Label
	visible       bool
}

var (
	markerColor    = color.RGBA{0, 255, 128, 220}
	crosshairColor = color.RGBA{255, 255, 255, 160}
	labelColor     = color.RGBA{255, 255, 255, 230}
)

func (g *overlayGame) Update() error {
	snap, fresh, err := g.reader.Poll()
	switch {
	case errors.Is(err, telemetry.ErrShortRecord):
		return nil
	case err != nil:
		return err
	case !fresh:
		// Keep the last frame; the game may just be paused.
	default:
		// Hide the overlay when the game is not focused or the map is open.
		g.visible = snap.UIState.Has(telemetry.GameFocus) && !snap.UIState.Has(telemetry.MapOpen)
		f, err := render.BuildFrame(snap, g.width, g.height, g.anchors)
		if err != nil {
			log.LogVf("skip frame at tick %d: %v", snap.Tick, err)
			return nil
		}
		g.frame = f
	}
	g.labels = g.smoother.Update(g.frame.Labels)
	return nil
}

func (g *overlayGame) Draw(screen *ebiten.Image) {
	if !g.visible {
		return
	}
	w := float32(lineWidth)
	for _, l := range g.frame.Lines {
		c := markerColor
		if l.Kind == render.LineCrosshair {
			c = crosshairColor
		}
		vector.StrokeLine(screen, float32(l.From.X), float32(l.From.Y), float32(l.To.X), float32(l.To.Y), w, c, true)
	}
	for _, lb := range g.labels {
		op := &text.DrawOptions{}
		op.GeoM.Translate(float64(lb.At.X+4), float64(lb.At.Y-14))
		op.ColorScale.ScaleWithColor(labelColor)
		text.Draw(screen, lb.Text, g.face, op)
	}
}

func (g *overlayGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.width, g.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

func run() int {
	var anchors []render.Anchor
	if markersFile != "" {
		var err error
		anchors, err = config.LoadMarkers(markersFile)
		if err != nil {
			return log.FErrf("load markers: %v", err)
		}
	}
	reader, err := telemetry.NewReader(linkFile)
	if err != nil {
		return log.FErrf("open telemetry: %v", err)
	}
	defer reader.Close()

	mw, mh := ebiten.Monitor().Size()
	g := &overlayGame{
		reader:   reader,
		anchors:  anchors,
		smoother: render.NewLabelSmoother(tps),
		face:     text.NewGoXFace(render.LabelFace),
		width:    mw,
		height:   mh,
	}
	ebiten.SetWindowTitle("mumbleview overlay")
	ebiten.SetWindowSize(mw, mh)
	ebiten.SetWindowPosition(0, 0)
	ebiten.SetWindowDecorated(false)
	ebiten.SetWindowFloating(true)
	ebiten.SetWindowMousePassthrough(true)
	ebiten.SetTPS(tps)
	log.Infof("Overlay %dx%d reading %s", mw, mh, linkFile)
	err = ebiten.RunGameWithOptions(g, &ebiten.RunGameOptions{
		ScreenTransparent: true,
		InitUnfocused:     true,
	})
	if err != nil {
		return log.FErrf("overlay: %v", err)
	}
	return 0
}
