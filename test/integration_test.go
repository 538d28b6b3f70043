// ABOUTME: Integration tests for the proguard CLI.
// ABOUTME: Builds the binary and runs the import -> metrics -> risk workflow.
package test

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestFullWorkflow(t *testing.T) {
	// Build the binary
	projectRoot, _ := filepath.Abs("..")
	binary := filepath.Join(t.TempDir(), "proguard")

	buildCmd := exec.Command("go", "build", "-o", binary, "./cmd/proguard")
	buildCmd.Dir = projectRoot
	if output, err := buildCmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build: %v\n%s", err, output)
	}

	// Isolated config and data directories
	tmpDir := t.TempDir()
	env := append(os.Environ(),
		"XDG_DATA_HOME="+filepath.Join(tmpDir, "data"),
		"XDG_CONFIG_HOME="+filepath.Join(tmpDir, "config"),
		"NO_COLOR=1",
	)

	run := func(args ...string) (string, error) {
		cmd := exec.Command(binary, args...)
		cmd.Env = env
		output, err := cmd.CombinedOutput()
		return string(output), err
	}

	// Training log with both outcomes
	var sb strings.Builder
	sb.WriteString("Date,Duration,HR_avg,Injured\n")
	for i := 0; i < 40; i++ {
		duration := 30 + (i*37)%90
		injured := 0
		if duration > 90 {
			injured = 1
		}
		fmt.Fprintf(&sb, "2025-%02d-%02d,%d,%d,%d\n", 1+i/28, 1+i%28, duration, 120+(i*13)%60, injured)
	}
	csvPath := filepath.Join(tmpDir, "training_data.csv")
	if err := os.WriteFile(csvPath, []byte(sb.String()), 0600); err != nil {
		t.Fatal(err)
	}

	output, err := run("import", csvPath)
	if err != nil {
		t.Fatalf("Failed to import: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Imported 40 records") {
		t.Errorf("Expected 'Imported 40 records' in output, got: %s", output)
	}

	output, err = run("add", "--date", "2025-02-13", "--duration", "50", "--hr", "145")
	if err != nil {
		t.Fatalf("Failed to add session: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Added session") {
		t.Errorf("Expected 'Added session' in output, got: %s", output)
	}

	output, err = run("list", "-n", "5")
	if err != nil {
		t.Fatalf("Failed to list: %v\n%s", err, output)
	}
	if !strings.Contains(output, "2025-02-13") {
		t.Errorf("Expected newest session in list, got: %s", output)
	}

	output, err = run("metrics", "-n", "3")
	if err != nil {
		t.Fatalf("Failed to show metrics: %v\n%s", err, output)
	}
	if !strings.Contains(output, "ACWR") {
		t.Errorf("Expected metrics table, got: %s", output)
	}

	output, err = run("train")
	if err != nil {
		t.Fatalf("Failed to train: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Classification report") {
		t.Errorf("Expected classification report, got: %s", output)
	}

	// The newest session is unlabelled but still scored.
	output, err = run("risk", "--no-chart")
	if err != nil {
		t.Fatalf("Failed to assess risk: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Latest record:  2025-02-13") || !strings.Contains(output, "Injury risk") {
		t.Errorf("Expected latest risk summary, got: %s", output)
	}

	output, err = run("export", "json")
	if err != nil {
		t.Fatalf("Failed to export: %v\n%s", err, output)
	}
	if !strings.Contains(output, `"tool": "proguard"`) {
		t.Errorf("Expected JSON export, got: %s", output)
	}
}
