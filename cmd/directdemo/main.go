// Command directdemo animates a swarm of primitives through directbuf and
// writes the last frame as a PNG.
//
// Usage:
//
//	directdemo -scene boxes -n 20000 -frames 120 -output boxes.png
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gogpu/directbuf"
	"github.com/gogpu/directbuf/render"
)

func main() {
	var (
		sceneName = flag.String("scene", "boxes", "scene: points, lines or boxes")
		count     = flag.Int("n", 0, "number of primitives (0 = scene default)")
		frames    = flag.Int("frames", 60, "ticks to simulate")
		width     = flag.Int("width", 1600, "image width")
		height    = flag.Int("height", 900, "image height")
		output    = flag.String("output", "directdemo.png", "output file")
		seed      = flag.Uint64("seed", 1, "random seed")
		verbose   = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *verbose {
		directbuf.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	sc, err := newScene(*sceneName, *count, float32(*width), float32(*height), *seed)
	if err != nil {
		log.Fatalf("scene: %v", err)
	}

	dc := directbuf.NewContext(*width, *height)
	defer dc.Close()

	if err := sc.setup(dc); err != nil {
		log.Fatalf("setup: %v", err)
	}

	pm := dc.Target().(*render.PixmapTarget)
	start := time.Now()
	for range *frames {
		pm.Clear(color.White)
		if err := dc.Tick(sc.produce); err != nil {
			log.Fatalf("tick: %v", err)
		}
	}
	elapsed := time.Since(start)

	fps := 0.0
	if elapsed > 0 {
		fps = float64(*frames) / elapsed.Seconds()
	}
	ov, err := newOverlay(18)
	if err != nil {
		log.Fatalf("overlay: %v", err)
	}
	ov.draw(pm.Image(), 10, 20, fmt.Sprintf("num: %d", sc.count()))
	ov.draw(pm.Image(), 10, 40, fmt.Sprintf("fps: %d", int(fps)))

	if err := dc.SavePNG(*output); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}

	log.Printf("%s: %d primitives, %d frames in %v, saved to %s (%dx%d)\n",
		*sceneName, sc.count(), *frames, elapsed.Round(time.Millisecond), *output, *width, *height)
}
