package mcp

import (
	"fmt"
	"path/filepath"
	"strings"
)

func resolveResultFilePath(outputDir, resultsFile string) (string, error) {
	if strings.TrimSpace(resultsFile) == "" {
		return "", fmt.Errorf("file path is required")
	}
	return resolvePathWithinBase(outputDir, resultsFile)
}

func resolvePathWithinBase(baseDir, pathValue string) (string, error) {
	baseAbs, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory: %w", err)
	}
	target := pathValue
	if !filepath.IsAbs(target) {
		target = filepath.Join(baseAbs, target)
	}
	targetAbs, err := filepath.Abs(target)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	rel, err := filepath.Rel(baseAbs, targetAbs)
	if err != nil {
		return "", fmt.Errorf("failed to resolve relative path: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path must be within output directory")
	}
	return targetAbs, nil
}
