// Package main provides a generator that extracts CLI and feature metadata
// from Drift source code and generates markdown documentation.
//
// Usage:
//
//	go run ./scripts/gendocs -gen=cli -outdir=docs/cli
//	go run ./scripts/gendocs -gen=features -outdir=docs/reference
//	go run ./scripts/gendocs -gen=all
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
)

var (
	genFlag    = flag.String("gen", "all", "what to generate: cli, features, all")
	outDirFlag = flag.String("outdir", "", "output directory (defaults based on gen type)")
)

func main() {
	flag.Parse()

	// Validate gen flag
	validGenFlags := map[string]bool{"cli": true, "features": true, "all": true}
	if !validGenFlags[*genFlag] {
		log.Fatalf("unknown -gen value: %s (use: cli, features, all)", *genFlag)
	}

	// Find project root (where go.mod is)
	projectRoot, err := findProjectRoot()
	if err != nil {
		log.Fatalf("failed to find project root: %v", err)
	}

	log.Printf("Project root: %s", projectRoot)

	switch *genFlag {
	case "cli":
		outDir := *outDirFlag
		if outDir == "" {
			outDir = filepath.Join(projectRoot, "docs", "cli")
		}
		if err := generateCLIDocs(outDir); err != nil {
			log.Fatalf("failed to generate CLI docs: %v", err)
		}

	case "features":
		outDir := *outDirFlag
		if outDir == "" {
			outDir = filepath.Join(projectRoot, "docs", "reference")
		}
		if err := generateFeatureDocs(outDir); err != nil {
			log.Fatalf("failed to generate feature docs: %v", err)
		}

	case "all":
		// Generate CLI docs
		cliOutDir := filepath.Join(projectRoot, "docs", "cli")
		if err := generateCLIDocs(cliOutDir); err != nil {
			log.Fatalf("failed to generate CLI docs: %v", err)
		}

		// Generate feature reference docs
		featureOutDir := filepath.Join(projectRoot, "docs", "reference")
		if err := generateFeatureDocs(featureOutDir); err != nil {
			log.Fatalf("failed to generate feature docs: %v", err)
		}
	}

	log.Println("Done!")
}

// findProjectRoot walks up from current directory to find go.mod.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}
