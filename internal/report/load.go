package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LoadResults reads a results.json artifact and re-derives its summary from
// the stored questions and attempts.
func LoadResults(path string) (Results, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Results{}, err
	}
	var results Results
	if err := json.Unmarshal(data, &results); err != nil {
		return Results{}, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	results.Summary = Summarize(results.Questions, results.Attempts)
	return results, nil
}

// ResolveRun finds a run by results path, run id, or "latest".
func ResolveRun(outputDir, ref string) (Results, string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Results{}, "", fmt.Errorf("run ref is required")
	}
	if strings.HasSuffix(ref, ".json") {
		results, err := LoadResults(ref)
		return results, filepath.Dir(ref), err
	}
	var runDir string
	if ref == "latest" {
		latest, err := findLatestRunDir(outputDir)
		if err != nil {
			return Results{}, "", err
		}
		runDir = latest
	} else {
		runDir = filepath.Join(outputDir, ref)
		if info, err := os.Stat(runDir); err != nil || !info.IsDir() {
			return Results{}, "", fmt.Errorf("run %s not found", ref)
		}
	}
	results, err := LoadResults(filepath.Join(runDir, "results.json"))
	return results, runDir, err
}

func findLatestRunDir(outputDir string) (string, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return "", err
	}
	runIDs := make([]string, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(outputDir, entry.Name(), "results.json")); err == nil {
			runIDs = append(runIDs, entry.Name())
		}
	}
	if len(runIDs) == 0 {
		return "", fmt.Errorf("no runs found in %s", outputDir)
	}
	sort.Strings(runIDs)
	return filepath.Join(outputDir, runIDs[len(runIDs)-1]), nil
}
