// mumblerelay copies the game's MumbleLink block to a plain file and offers
// one-shot tools on top of it: dump, snapshot, export and map.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"fortio.org/log"
	"github.com/ansipixels/mumbleview/config"
	"github.com/ansipixels/mumbleview/gw2api"
	"github.com/ansipixels/mumbleview/render"
	"github.com/ansipixels/mumbleview/telemetry"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

// DefaultSource is where Wine exposes the named MumbleLink mapping.
const DefaultSource = "/dev/shm/MumbleLink"

var linkFile string

func main() {
	root := &cobra.Command{
		Use:   "mumblerelay",
		Short: "Relay and inspect Guild Wars 2 MumbleLink telemetry",
		Long: `mumblerelay - MumbleLink relay and tools

The relay copies the shared MumbleLink block to a file whenever the game
advances its tick, polling 30 times a second and backing off to once every
5 seconds after 10 seconds without a new tick. The other commands read that
file.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&linkFile, "link", telemetry.DefaultLinkFile, "MumbleLink file")

	root.AddCommand(relayCmd(), dumpCmd(), snapshotCmd(), exportCmd(), mapCmd())

	if err := fang.Execute(context.Background(), root); err != nil {
		os.Exit(1)
	}
}

func relayCmd() *cobra.Command {
	var (
		source   string
		lockPath string
		active   time.Duration
		inactive time.Duration
		after    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Copy the shared MumbleLink block to the link file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := telemetry.CheckIntervals(active, inactive, after); err != nil {
				return err
			}
			lock, err := telemetry.AcquireLock(lockPath)
			if err != nil {
				return err
			}
			defer lock.Release()

			in, err := os.Open(source)
			if err != nil {
				return fmt.Errorf("open source: %w", err)
			}
			defer in.Close()
			out, err := os.OpenFile(linkFile, os.O_WRONLY|os.O_CREATE, 0o644)
			if err != nil {
				return fmt.Errorf("open link file: %w", err)
			}
			defer out.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			relay := telemetry.NewRelay(in, out)
			relay.ActiveInterval = active
			relay.InactiveInterval = inactive
			relay.InactiveAfter = after
			log.Infof("Relaying %s -> %s", source, linkFile)
			err = relay.Run(ctx)
			log.Infof("Relay stopped after %d records", relay.Written)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&source, "source", DefaultSource, "Shared MumbleLink block to read")
	cmd.Flags().StringVar(&lockPath, "lock", filepath.Join(os.TempDir(), "mumblerelay.lock"), "Single instance lock file")
	cmd.Flags().DurationVar(&active, "active", telemetry.DefaultActiveInterval, "Poll interval while the game is updating")
	cmd.Flags().DurationVar(&inactive, "inactive", telemetry.DefaultInactiveInterval, "Poll interval once the game goes quiet")
	cmd.Flags().DurationVar(&after, "inactive-after", telemetry.DefaultInactiveAfter, "Quiet time before switching to the inactive interval")
	return cmd
}

func readSnapshot() (telemetry.Snapshot, error) {
	r, err := telemetry.NewReader(linkFile)
	if err != nil {
		return telemetry.Snapshot{}, err
	}
	defer r.Close()
	return r.Read()
}

func dumpCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the current telemetry record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := readSnapshot()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(s)
			}
			if s.Stale() {
				log.Warnf("Tick is 0: the game has not written this record")
			}
			fmt.Fprintf(w, "tick      %d (version %d)\n", s.Tick, s.Version)
			fmt.Fprintf(w, "name      %s\n", s.Name)
			fmt.Fprintf(w, "avatar    %v front %v\n", s.AvatarPosition, s.AvatarFront)
			fmt.Fprintf(w, "camera    %v front %v\n", s.CameraPosition, s.CameraFront)
			if s.Identity.Valid {
				id := s.Identity
				fmt.Fprintf(w, "identity  %s, %v %v, fov %.3f, ui %v\n", id.Name, id.Race, id.Profession, id.FOV, id.UISize)
			} else {
				fmt.Fprintf(w, "identity  (unavailable) %q\n", s.IdentityRaw)
			}
			fmt.Fprintf(w, "map       %d (type %d, shard %d, build %d)\n", s.MapID, s.MapType, s.ShardID, s.BuildID)
			fmt.Fprintf(w, "player    %.1f, %.1f  map centre %.1f, %.1f  scale %.3f\n",
				s.PlayerX, s.PlayerY, s.MapCenterX, s.MapCenterY, s.MapScale)
			fmt.Fprintf(w, "ui        %032b  mount %v  pid %d\n", uint32(s.UIState), s.Mount, s.ProcessID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the decoded record as JSON")
	return cmd
}

func loadAnchors(path string) ([]render.Anchor, error) {
	if path == "" {
		return nil, nil
	}
	return config.LoadMarkers(path)
}

func snapshotCmd() *cobra.Command {
	var (
		markers       string
		width, height int
		supersample   int
		withLabels    bool
	)
	cmd := &cobra.Command{
		Use:   "snapshot <out.png|out.webp|out.tga>",
		Short: "Render the current overlay frame to an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			anchors, err := loadAnchors(markers)
			if err != nil {
				return err
			}
			s, err := readSnapshot()
			if err != nil {
				return err
			}
			ss := max(supersample, 1)
			f, err := render.BuildFrame(s, width*ss, height*ss, anchors)
			if err != nil {
				return fmt.Errorf("build frame: %w", err)
			}
			fb := render.NewFramebuffer(width*ss, height*ss)
			fb.BG = render.ColorTransparent
			fb.Clear()
			fb.DrawFrame(f, render.DefaultPalette)
			img := render.Downsample(fb.ToImage(), width, height)
			if withLabels {
				// Text is drawn after scaling so it stays crisp.
				labels := make([]render.Label, len(f.Labels))
				for i, lb := range f.Labels {
					labels[i] = render.Label{At: render.Pixel{X: lb.At.X / ss, Y: lb.At.Y / ss}, Text: lb.Text}
				}
				render.DrawLabels(img, labels, render.ColorWhite)
			}
			if err := render.SaveImage(args[0], img); err != nil {
				return err
			}
			log.Infof("Wrote %s: tick %d, %d lines, %d labels, %d culled edges",
				args[0], s.Tick, len(f.Lines), len(f.Labels), f.Culled)
			return nil
		},
	}
	cmd.Flags().StringVar(&markers, "markers", "", "Markers file (JSON, .glb or .gltf)")
	cmd.Flags().IntVar(&width, "width", 1920, "Image width")
	cmd.Flags().IntVar(&height, "height", 1080, "Image height")
	cmd.Flags().IntVar(&supersample, "supersample", 2, "Render at this multiple of the size, then scale down")
	cmd.Flags().BoolVar(&withLabels, "labels", true, "Draw label text")
	return cmd
}

func exportCmd() *cobra.Command {
	var markers string
	cmd := &cobra.Command{
		Use:   "export <out.glb>",
		Short: "Export the marker boxes as a binary glTF file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			anchors, err := config.LoadMarkers(markers)
			if err != nil {
				return err
			}
			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("create %s: %w", args[0], err)
			}
			if err := render.ExportGLB(f, anchors); err != nil {
				f.Close()
				return err
			}
			log.Infof("Exported %d markers to %s", len(anchors), args[0])
			return f.Close()
		},
	}
	cmd.Flags().StringVar(&markers, "markers", "markers.json", "JSON markers file")
	return cmd
}

func mapCmd() *cobra.Command {
	var (
		apiKey   string
		cacheDir string
		floor    int
	)
	cmd := &cobra.Command{
		Use:   "map [map-id]",
		Short: "Show the API details of a map (default: the current one)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var mapID int
			if len(args) == 1 {
				if _, err := fmt.Sscan(args[0], &mapID); err != nil {
					return fmt.Errorf("map id %q: %w", args[0], err)
				}
			} else {
				s, err := readSnapshot()
				if err != nil {
					return err
				}
				mapID = int(s.MapID)
			}
			if cacheDir == "" {
				dir, err := gw2api.DefaultCacheDir()
				if err != nil {
					log.Warnf("No disk cache: %v", err)
				}
				cacheDir = dir
			}
			client := gw2api.NewClient(apiKey, gw2api.NewCache(cacheDir))
			d, err := client.MapVerbose(cmd.Context(), mapID, floor)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s (%d) - %s, %s\n", d.Name, d.ID, d.RegionName, d.ContinentName)
			fmt.Fprintf(w, "levels %d-%d, floors %v\n", d.MinLevel, d.MaxLevel, d.Floors)
			fmt.Fprintf(w, "%d points of interest, %d hearts, %d sectors\n",
				len(d.PointsOfInterest), len(d.Tasks), len(d.Sectors))
			for _, poi := range d.PointsOfInterest {
				fmt.Fprintf(w, "  %-10s %-40s %s\n", poi.Type, poi.Name, poi.ChatLink)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&apiKey, "api-key", os.Getenv("GW2_API_KEY"), "API key (defaults to $GW2_API_KEY)")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Response cache directory (default: user cache dir)")
	cmd.Flags().IntVar(&floor, "floor", gw2api.UseDefaultFloor, "Floor id (default: the map's default floor)")
	return cmd
}
