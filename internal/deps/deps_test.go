package deps

import (
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/leonardotrapani/keysim/internal/testutil"
)

func fakeTool(t *testing.T, name, script string) {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteScript(t, dir, name, script)
	t.Setenv("PATH", dir)
}

func TestCheck_NotInstalled(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	status := Check(Tool{Name: "definitely-not-a-tool", VersionArgs: []string{"--version"}})
	if status.Installed {
		t.Error("expected Installed=false when tool not in PATH")
	}
	if status.Path != "" || status.Version != "" {
		t.Errorf("expected empty status, got %+v", status)
	}
}

func TestCheck_Version(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	fakeTool(t, "gsettings", `echo "2.80.0"; echo "second line"`)

	status := Check(Gsettings)
	if !status.Installed {
		t.Fatal("gsettings in PATH but Installed=false")
	}
	if filepath.Base(status.Path) != "gsettings" {
		t.Errorf("Path = %q", status.Path)
	}
	if status.Version != "2.80.0" {
		t.Errorf("Version = %q, want first line only", status.Version)
	}
}

func TestCheck_NoVersionFlag(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	fakeTool(t, "ydotool", `echo "should not run" >&2; exit 1`)

	status := Check(Ydotool)
	if !status.Installed || status.Version != "" {
		t.Errorf("Check(ydotool) = %+v, want installed without version", status)
	}
}

func TestCheck_VersionFails(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	fakeTool(t, "pkexec", `exit 3`)

	status := Check(Pkexec)
	if !status.Installed {
		t.Error("a failing version flag should not hide an installed tool")
	}
	if status.Version != "" {
		t.Errorf("Version = %q, want empty", status.Version)
	}
}

func TestMissing(t *testing.T) {
	results := []Result{
		{Tool: Ydotool, Status: Status{Installed: false}},
		{Tool: Gsettings, Status: Status{Installed: false}},
		{Tool: Pkexec, Status: Status{Installed: true, Path: "/usr/bin/pkexec"}},
	}

	missing := Missing(results)
	if len(missing) != 1 || missing[0].Name != "ydotool" {
		t.Errorf("Missing() = %v, want only ydotool", missing)
	}
}

func TestCheckAll_Order(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	results := CheckAll(Ydotool, Ydotoold, Pkexec)
	if len(results) != 3 {
		t.Fatalf("CheckAll() returned %d results", len(results))
	}
	for i, name := range []string{"ydotool", "ydotoold", "pkexec"} {
		if results[i].Name != name {
			t.Errorf("results[%d] = %s, want %s", i, results[i].Name, name)
		}
	}
}
