// mumbleview - terminal preview of the game overlay
// Reads the MumbleLink file published by mumblerelay and draws the marker
// boxes, the corners around the avatar and a crosshair with half-block pixels.
//
// Controls:
//
//	?         - Toggle HUD overlay (FPS, tick, map, mount)
//	L         - Toggle labels
//	S         - Toggle label smoothing
//	P         - Save a PNG snapshot of the current frame
//	Esc/Q     - Quit
package main

import (
	"errors"
	"flag"
	"fmt"
	"image/color"
	"os"
	"time"

	"fortio.org/cli"
	"fortio.org/log"
	"fortio.org/terminal/ansipixels"
	"fortio.org/terminal/ansipixels/tcolor"
	"github.com/ansipixels/mumbleview/config"
	"github.com/ansipixels/mumbleview/render"
	"github.com/ansipixels/mumbleview/telemetry"
)

var (
	linkFile    string
	markersFile string
	targetFPS   float64
)

func main() {
	flag.StringVar(&linkFile, "link", telemetry.DefaultLinkFile, "MumbleLink `file` written by mumblerelay")
	flag.StringVar(&markersFile, "markers", "", "Markers `file` to draw (JSON, .glb or .gltf)")
	flag.Float64Var(&targetFPS, "fps", 30, "Target FPS")
	cli.ArgsHelp = ""
	cli.MinArgs = 0
	cli.MaxArgs = 0
	cli.Main()
	os.Exit(run())
}

// ViewState holds the toggles driven by the keyboard.
type ViewState struct {
	ShowHUD    bool
	ShowLabels bool
	Smooth     bool
}

// HUD renders telemetry details over the preview.
type HUD struct {
	fps       float64
	fpsFrames int
	fpsTime   time.Time
	state     *ViewState
}

// NewHUD creates a new HUD.
func NewHUD(state *ViewState) *HUD {
	return &HUD{fpsTime: time.Now(), state: state}
}

// UpdateFPS updates the FPS counter (call once per frame).
func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

// Draw writes the HUD lines.
func (h *HUD) Draw(ap *ansipixels.AnsiPixels, snap telemetry.Snapshot, f render.Frame, waiting bool) {
	if waiting {
		ap.WriteCentered(ap.H/2, "%sWaiting for game telemetry in %s%s",
			tcolor.BrightYellow.Foreground(), linkFile, tcolor.Reset)
		return
	}
	if !h.state.ShowHUD {
		return
	}
	ap.WriteAt(0, 0, tcolor.Green.Foreground()+"%.0f FPS "+tcolor.Reset, h.fps)
	name := snap.Identity.Name
	if name == "" {
		name = "(no identity)"
	}
	ap.WriteCentered(0, "%s - map %d", name, snap.MapID)
	ap.WriteRight(0, tcolor.Cyan.Foreground()+"tick %d"+tcolor.Reset, snap.Tick)

	ap.WriteAt(0, ap.H-1, "cam %v  fov %.3f  mount %v", snap.CameraPosition, f.Camera.FOV(), snap.Mount)
	ap.WriteRight(ap.H-1, "%s%d lines, %d culled%s", tcolor.Yellow.Foreground(), len(f.Lines), f.Culled, tcolor.Reset)
}

// drawLabels writes label text at the terminal cell of each pixel; a cell
// holds two pixel rows.
func drawLabels(ap *ansipixels.AnsiPixels, labels []render.Label) {
	for _, lb := range labels {
		x, y := lb.At.X+1, lb.At.Y/2
		if x < 0 || y < 1 || x+len(lb.Text) >= ap.W || y >= ap.H-1 {
			continue
		}
		ap.WriteAt(x, y, "%s%s%s", tcolor.White.Foreground(), lb.Text, tcolor.Reset)
	}
}

//nolint:gocognit,funlen // main loop with key handling.
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

	ap := ansipixels.NewAnsiPixels(targetFPS)
	if err = ap.Open(); err != nil {
		return log.FErrf("open ansipixels: %v", err)
	}
	defer func() {
		ap.ShowCursor()
		ap.Out.Flush()
		ap.Restore()
	}()
	ap.SyncBackgroundColor()
	ap.HideCursor()

	// Half-block characters give two pixel rows per terminal line.
	fb := render.NewFramebuffer(ap.W, ap.H*2)
	fb.BG = color.RGBA{ap.Background.R, ap.Background.G, ap.Background.B, 255}
	ap.OnResize = func() error {
		fb.Resize(ap.W, ap.H*2)
		return nil
	}

	state := &ViewState{ShowHUD: true, ShowLabels: true, Smooth: true}
	hud := NewHUD(state)
	smoother := render.NewLabelSmoother(int(targetFPS + 0.5))

	var (
		snap    telemetry.Snapshot
		frame   render.Frame
		waiting = true
		saved   int
	)
	err = ap.FPSTicks(func() bool {
		for _, b := range ap.Data {
			switch b {
			case '?':
				state.ShowHUD = !state.ShowHUD
			case 'l', 'L':
				state.ShowLabels = !state.ShowLabels
			case 's', 'S':
				state.Smooth = !state.Smooth
				smoother.Reset()
			case 'p', 'P':
				saved++
				path := fmt.Sprintf("mumbleview-%03d.png", saved)
				if err := fb.SavePNG(path); err != nil {
					log.Errf("save snapshot: %v", err)
				}
			case 'q', 'Q', 27, 3, 4: // Esc, Ctrl-C, Ctrl-D
				return false
			}
		}

		s, fresh, err := reader.Poll()
		switch {
		case errors.Is(err, telemetry.ErrShortRecord):
			// The relay has not written a full record yet.
		case err != nil:
			log.Errf("read telemetry: %v", err)
			return false
		case fresh:
			snap = s
			f, ferr := render.BuildFrame(snap, fb.Width, fb.Height, anchors)
			if ferr != nil {
				log.LogVf("skip frame at tick %d: %v", snap.Tick, ferr)
				break
			}
			frame = f
			waiting = false
		}

		fb.Clear()
		drawn := frame
		if state.Smooth {
			drawn.Labels = smoother.Update(frame.Labels)
		}
		fb.DrawFrame(drawn, render.DefaultPalette)

		ap.ClearScreen()
		if err = ap.ShowScaledImage(fb.ToImage()); err != nil {
			log.Errf("show image: %v", err)
			return false
		}
		if state.ShowLabels && !waiting {
			drawLabels(ap, drawn.Labels)
		}
		hud.UpdateFPS()
		hud.Draw(ap, snap, frame, waiting)
		return true
	})
	if err != nil {
		return log.FErrf("main loop: %v", err)
	}
	return 0
}
