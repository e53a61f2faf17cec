package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ironsheep/color-match-tools/internal/batch"
	"github.com/ironsheep/color-match-tools/internal/config"
	"github.com/ironsheep/color-match-tools/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("color-match %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printUsage()
			return
		case "serve":
			runServe()
			return
		}
	}

	os.Exit(runBatch(os.Args[1:]))
}

func printUsage() {
	fmt.Println("color-match - match a target image's average color to a reference image")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  color-match [options]      Batch mode: process reference/target pairs")
	fmt.Println("  color-match serve          Run as an MCP server over stdin/stdout")
	fmt.Println()
	fmt.Println("Batch options:")
	fmt.Println("  -ref PATH        Reference image file or directory (required)")
	fmt.Println("  -target PATH     Target image file or directory (required)")
	fmt.Println("  -out DIR         Output directory (default: target's directory)")
	fmt.Println("  -mask COLOR      Mask color excluded from the reference average:")
	fmt.Println("                   '#RRGGBB' or 'r,g,b'; 'none' disables masking")
	fmt.Println("  -tolerance N     Mask tolerance 0-255 (default 0: exact matches only)")
	fmt.Println("  -overwrite       Replace existing _AVGCOLOR output files")
	fmt.Println("  -quiet           Suppress per-pair progress output")
	fmt.Println()
	fmt.Println("Directories are paired by sorted filename position: the Nth reference")
	fmt.Println("is matched with the Nth target. Outputs are written as")
	fmt.Println("<targetname>_AVGCOLOR<extension>.")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  COLOR_MATCH_LOG_LEVEL=debug    Enable debug logging in serve mode")
	fmt.Println()
	fmt.Println("Settings (mask color, tolerance, last used directories) persist in")
	fmt.Println("~/" + config.FileName + " and provide the defaults for the next run.")
}

// runServe starts the MCP server on stdio. Stdout carries the protocol, so
// logging goes to stderr.
func runServe() {
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if os.Getenv("COLOR_MATCH_LOG_LEVEL") == "debug" {
		log.Printf("color-match MCP server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	srv := server.New()
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func runBatch(args []string) int {
	log.SetOutput(os.Stderr)
	log.SetFlags(0)

	settingsPath, err := config.DefaultPath()
	if err != nil {
		log.Printf("Warning: settings unavailable: %v", err)
	}
	settings, err := config.Load(settingsPath)
	if err != nil {
		log.Printf("Warning: %v; using defaults", err)
	}

	fs := flag.NewFlagSet("color-match", flag.ExitOnError)
	refPath := fs.String("ref", "", "reference image file or directory")
	targetPath := fs.String("target", "", "target image file or directory")
	outDir := fs.String("out", "", "output directory (default: target's directory)")
	maskSpec := fs.String("mask", settings.MaskColor, "mask color ('#RRGGBB', 'r,g,b', or 'none')")
	tolerance := fs.Int("tolerance", settings.MaskTolerance, "mask tolerance (0-255)")
	overwrite := fs.Bool("overwrite", false, "replace existing output files")
	quiet := fs.Bool("quiet", false, "suppress progress output")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *refPath == "" || *targetPath == "" {
		log.Print("Error: -ref and -target are required (see color-match --help)")
		return 2
	}

	refs, refDir, err := resolveImages(*refPath)
	if err != nil {
		log.Printf("Error: %v", err)
		return 1
	}
	tgts, tgtDir, err := resolveImages(*targetPath)
	if err != nil {
		log.Printf("Error: %v", err)
		return 1
	}

	pairs, err := batch.MakePairs(refs, tgts)
	if err != nil {
		log.Printf("Error: %v", err)
		return 1
	}

	if *outDir == "" {
		*outDir = tgtDir
	}
	if !*overwrite {
		existing, err := batch.CountExisting(*outDir)
		if err != nil {
			log.Printf("Error: %v", err)
			return 1
		}
		if existing > 0 {
			log.Printf("Error: %d existing output files in %s (use -overwrite to replace them)",
				existing, *outDir)
			return 1
		}
	}

	mask, err := config.ParseMaskColor(*maskSpec, *tolerance)
	if err != nil {
		log.Printf("Error: %v", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	job := batch.Job{
		Pairs:     pairs,
		OutputDir: *outDir,
		Mask:      mask,
	}
	if !*quiet {
		job.Progress = func(done, total int) {
			log.Printf("Processed %d/%d", done, total)
		}
	}

	res, err := batch.Run(ctx, job)
	if err != nil {
		log.Printf("Error: %v", err)
		return 1
	}

	for _, pe := range res.Errors {
		log.Printf("Pair %d (%s): %s", pe.Index+1, pe.Target, pe.Message)
	}
	if !*quiet {
		log.Printf("Done: %d/%d images written to %s", res.Processed, res.Total, *outDir)
	}

	// Remember this run's choices for next time. Best effort only.
	settings.LastRefDir = refDir
	settings.LastTargetDir = tgtDir
	settings.LastOutDir = *outDir
	settings.MaskColor = *maskSpec
	settings.MaskTolerance = *tolerance
	if settingsPath != "" {
		if err := settings.Save(settingsPath); err != nil {
			log.Printf("Warning: %v", err)
		}
	}

	if len(res.Errors) > 0 {
		return 1
	}
	return 0
}

// resolveImages expands a path into image files: a directory lists its
// images in sorted order, a file stands alone. The second return is the
// containing directory, remembered in settings.
func resolveImages(path string) ([]string, string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, "", fmt.Errorf("cannot access %s: %w", path, err)
	}

	if info.IsDir() {
		paths, err := batch.ListImages(path)
		if err != nil {
			return nil, "", err
		}
		if len(paths) == 0 {
			return nil, "", fmt.Errorf("no image files in %s", path)
		}
		return paths, path, nil
	}

	return []string{path}, filepath.Dir(path), nil
}
