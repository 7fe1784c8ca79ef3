package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"mbebench/internal/provider"
)

const fixtureRunID = "20260101T000000Z-0badc0de"

const fixtureQuestions = `title: fixture
questions:
  - id: 1
    subject: torts
    fact_pattern: A driver swerved.
    stem: Is the driver liable?
    choices:
      - {label: A, text: "Yes"}
      - {label: B, text: "No"}
      - {label: C, text: "Partly"}
      - {label: D, text: "Only if reckless"}
    correct_answer: A
  - id: 2
    subject: evidence
    fact_pattern: A witness testified.
    stem: Is the testimony admissible?
    choices:
      - {label: A, text: "Yes"}
      - {label: B, text: "No"}
      - {label: C, text: "For impeachment"}
      - {label: D, text: "With an instruction"}
    correct_answer: B
  - id: 3
    subject: torts
    fact_pattern: A dog bit a mail carrier.
    stem: Is the owner strictly liable?
    choices:
      - {label: A, text: "Yes"}
      - {label: B, text: "No"}
      - {label: C, text: "Only if known vicious"}
      - {label: D, text: "Only in negligence"}
    correct_answer: C
`

// fixture is a workspace with a question file and a config.
type fixture struct {
	dir        string
	configPath string
	outputDir  string
}

// newFixture writes questions.yml and mbebench.yml with the given providers
// block into a temp dir.
func newFixture(t *testing.T, providers string) fixture {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "questions.yml"), fixtureQuestions)
	cfg := "questions_file: questions.yml\noutput_dir: out\ntimeout: 5s\nproviders:\n" + providers
	configPath := filepath.Join(dir, "mbebench.yml")
	writeFile(t, configPath, cfg)
	return fixture{dir: dir, configPath: configPath, outputDir: filepath.Join(dir, "out")}
}

const stubProviders = `  - {id: alpha, type: stub, model: always-a, stub_answer: A}
  - {id: beta, type: stub, model: always-b, stub_answer: B}
`

func writeFile(t *testing.T, path, payload string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// withHooks pins run ids, the clock, and credentials for a test.
func withHooks(t *testing.T, env map[string]string) {
	t.Helper()
	origLookup, origRunID, origNow, origClient := lookupEnv, newRunID, now, httpClient
	lookupEnv = func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	}
	newRunID = func() (string, error) { return fixtureRunID, nil }
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now = func() time.Time { return clock }
	t.Cleanup(func() {
		lookupEnv, newRunID, now, httpClient = origLookup, origRunID, origNow, origClient
	})
}

func setHTTPClient(client provider.HTTPDoer) {
	httpClient = client
}
