//go:build basic || database

package integration

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

var (
	// sharedBenchtablePath holds the path to a shared benchtable binary built once for all tests.
	sharedBenchtablePath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	// Run all tests
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getBenchtableBinary returns the path to the benchtable binary, building it once if needed.
func getBenchtableBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		// Create a temp directory for the binary
		var err error
		tempDir, err = os.MkdirTemp("", "benchtable-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		benchtablePath := filepath.Join(tempDir, "benchtable")
		buildCmd := exec.Command("go", "build", "-o", benchtablePath, ".")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		err = buildCmd.Run()
		if err != nil {
			panic(fmt.Sprintf("failed to build benchtable: %v", err))
		}

		sharedBenchtablePath = benchtablePath
	})

	return sharedBenchtablePath
}

const oldResult = `<?xml version="1.0"?>
<result benchmarkname="nightly" name="nightly.old" tool="CPAchecker" version="2.2" timelimit="900 s" memlimit="15 GB" cpuCores="2">
  <run name="../sv/loop_true-unreach-call.c" properties="unreach-call">
    <column title="status" value="true"/>
    <column title="category" value="correct" hidden="true"/>
    <column title="cputime" value="4.2s"/>
    <column title="walltime" value="4.5s"/>
  </run>
  <run name="../sv/array_false-unreach-call.c" properties="unreach-call">
    <column title="status" value="false(unreach-call)"/>
    <column title="category" value="correct" hidden="true"/>
    <column title="cputime" value="12.0s"/>
    <column title="walltime" value="12.3s"/>
  </run>
  <run name="../sv/recursion_true-unreach-call.c" properties="unreach-call">
    <column title="status" value="TIMEOUT"/>
    <column title="category" value="error" hidden="true"/>
    <column title="cputime" value="900.1s"/>
    <column title="walltime" value="901.0s"/>
  </run>
</result>
`

const newResult = `<?xml version="1.0"?>
<result benchmarkname="nightly" name="nightly.new" tool="CPAchecker" version="2.3" timelimit="900 s" memlimit="15 GB" cpuCores="2">
  <run name="../sv/loop_true-unreach-call.c" properties="unreach-call">
    <column title="status" value="true"/>
    <column title="category" value="correct" hidden="true"/>
    <column title="cputime" value="3.9s"/>
    <column title="walltime" value="4.1s"/>
  </run>
  <run name="../sv/array_false-unreach-call.c" properties="unreach-call">
    <column title="status" value="true"/>
    <column title="category" value="wrong" hidden="true"/>
    <column title="cputime" value="8.0s"/>
    <column title="walltime" value="8.2s"/>
  </run>
  <run name="../sv/recursion_true-unreach-call.c" properties="unreach-call">
    <column title="status" value="true"/>
    <column title="category" value="correct" hidden="true"/>
    <column title="cputime" value="80.5s"/>
    <column title="walltime" value="81.0s"/>
  </run>
</result>
`

// writeResultFiles writes two run-sets of the same benchmark into dir.
func writeResultFiles(t *testing.T, dir string) []string {
	t.Helper()
	files := []string{
		filepath.Join(dir, "nightly.2024-03-01_0100.results.old.xml"),
		filepath.Join(dir, "nightly.2024-03-02_0100.results.new.xml"),
	}
	if err := os.WriteFile(files[0], []byte(oldResult), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(files[1], []byte(newResult), 0o644); err != nil {
		t.Fatal(err)
	}
	return files
}

// runBenchtable runs the binary inside dir, which also serves as HOME, and returns its stdout.
func runBenchtable(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(getBenchtableBinary(), args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "HOME="+dir)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		t.Logf("Command failed: %s\nStdout: %s\nStderr: %s", cmd.String(), string(output), stderr.String())
	}
	return string(output), err
}
