package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"time"
)

// shadow_solve posts every fixture in a directory to both solver
// deployments and compares the answers. Objective scores are excluded
// from the comparison: the legacy solver reports unscaled floats, so
// only the status and the chosen sections are contract-bearing.

type verdict struct {
	Fixture        string
	GoStatus       int
	LegacyStatus   int
	StatusMatch    bool
	AnswerMatch    bool
	Error          error
	DurationGo     time.Duration
	DurationLegacy time.Duration
}

type solveAnswer struct {
	Status         string   `json:"status"`
	ChosenSections []string `json:"chosen_sections"`
}

func main() {
	var (
		goBase      string
		legacyBase  string
		fixturesDir string
		timeout     time.Duration
	)

	flag.StringVar(&goBase, "go-base", "http://localhost:8080", "Go solver base URL")
	flag.StringVar(&legacyBase, "legacy-base", "http://localhost:5000", "Legacy solver base URL")
	flag.StringVar(&fixturesDir, "fixtures", filepath.Join("scripts", "shadow_solve", "fixtures"), "Directory of solve request fixtures")
	flag.DurationVar(&timeout, "timeout", 60*time.Second, "HTTP client timeout")
	flag.Parse()

	fixtures, err := loadFixtures(fixturesDir)
	if err != nil {
		log.Fatalf("failed to load fixtures: %v", err)
	}

	client := &http.Client{Timeout: timeout}
	var (
		verdicts []verdict
		diffs    int
	)

	for _, fixture := range fixtures {
		v := compareFixture(client, goBase, legacyBase, fixture)
		if v.Error != nil || !v.StatusMatch || !v.AnswerMatch {
			diffs++
		}
		verdicts = append(verdicts, v)
	}

	printReport(verdicts)

	fmt.Printf("Fixtures: %d, Diffs: %d\n", len(verdicts), diffs)
	if diffs > 0 {
		os.Exit(1)
	}
}

func loadFixtures(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var fixtures []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		fixtures = append(fixtures, filepath.Join(dir, entry.Name()))
	}
	if len(fixtures) == 0 {
		return nil, fmt.Errorf("no .json fixtures in %s", dir)
	}
	sort.Strings(fixtures)
	return fixtures, nil
}

func compareFixture(client *http.Client, goBase, legacyBase, fixture string) verdict {
	v := verdict{Fixture: filepath.Base(fixture)}

	payload, err := os.ReadFile(fixture)
	if err != nil {
		v.Error = fmt.Errorf("read fixture: %w", err)
		return v
	}

	goBody, goStatus, goDur, err := postSolve(client, goBase, payload)
	if err != nil {
		v.Error = fmt.Errorf("go request failed: %w", err)
		return v
	}
	legacyBody, legacyStatus, legacyDur, err := postSolve(client, legacyBase, payload)
	if err != nil {
		v.Error = fmt.Errorf("legacy request failed: %w", err)
		return v
	}

	v.GoStatus = goStatus
	v.LegacyStatus = legacyStatus
	v.DurationGo = goDur
	v.DurationLegacy = legacyDur
	v.StatusMatch = goStatus == legacyStatus
	v.AnswerMatch = answersEqual(goBody, legacyBody)
	return v
}

func postSolve(client *http.Client, base string, payload []byte) ([]byte, int, time.Duration, error) {
	url := strings.TrimRight(base, "/") + "/solve"
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, 0, err
	}
	return body, resp.StatusCode, time.Since(start), nil
}

func answersEqual(a, b []byte) bool {
	var aa, ba solveAnswer
	if err := json.Unmarshal(a, &aa); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &ba); err != nil {
		return false
	}
	sort.Strings(aa.ChosenSections)
	sort.Strings(ba.ChosenSections)
	return aa.Status == ba.Status && reflect.DeepEqual(aa.ChosenSections, ba.ChosenSections)
}

func printReport(results []verdict) {
	fmt.Println("Shadow Solve Report")
	fmt.Println("====================")
	for _, res := range results {
		status := "OK"
		if res.Error != nil {
			status = "ERROR"
		} else if !res.StatusMatch || !res.AnswerMatch {
			status = "DIFF"
		}
		fmt.Printf("[%s] %s\n", status, res.Fixture)
		if res.Error != nil {
			fmt.Printf("  Error: %v\n", res.Error)
			continue
		}
		fmt.Printf("  Go: %d (%s) | Legacy: %d (%s)\n", res.GoStatus, res.DurationGo, res.LegacyStatus, res.DurationLegacy)
		fmt.Printf("  Status match: %t | Answer match: %t\n", res.StatusMatch, res.AnswerMatch)
	}
}
