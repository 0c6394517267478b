package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"c3-bundle-loader/internal/bundle"
	"c3-bundle-loader/internal/preview"

	"github.com/HugoSmits86/nativewebp"
)

// Config holds all shared settings for a batch run.
type Config struct {
	OutputDir   string
	RenderSize  int
	Supersample int
	Workers     int
}

// Result holds the outcome of processing one bundle file.
type Result struct {
	Path    string
	Image   string
	Success bool
	Error   string
}

// Run renders a preview for every bundle path using a worker pool.
func Run(cfg Config, paths []string) []Result {
	total := len(paths)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					rate := float64(p) / elapsed
					fmt.Printf("  [%d/%d] %.1f files/sec\n", p, total, rate)
				}
			}
		}
	}()

	// Worker pool
	pathChan := make(chan int, cfg.Workers*2)
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range pathChan {
				results[idx] = processBundle(cfg, paths[idx])
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := range paths {
		pathChan <- i
	}
	close(pathChan)

	wg.Wait()
	close(done)

	return results
}

func processBundle(cfg Config, path string) Result {
	triangles, err := bundle.TrianglesList(path)
	if err != nil {
		return Result{Path: path, Error: err.Error()}
	}
	if len(triangles) == 0 {
		return Result{Path: path, Error: "no triangles in bundle"}
	}

	img := preview.Render(triangles, cfg.RenderSize, cfg.Supersample)
	if cfg.Supersample > 1 {
		img = preview.Downsample(img, cfg.RenderSize)
	}

	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name)) + ".webp"
	outPath := filepath.Join(cfg.OutputDir, name)
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return Result{Path: path, Error: err.Error()}
	}

	f, err := os.Create(outPath)
	if err != nil {
		return Result{Path: path, Error: err.Error()}
	}
	defer f.Close()

	if err := nativewebp.Encode(f, img, nil); err != nil {
		return Result{Path: path, Error: fmt.Sprintf("WebP encode: %v", err)}
	}

	return Result{Path: path, Image: outPath, Success: true}
}
