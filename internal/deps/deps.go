package deps

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

// Status represents the installation status of a dependency
type Status struct {
	Installed bool
	Path      string
	Version   string
}

// Tool describes an external program keysim shells out to.
type Tool struct {
	Name        string
	VersionArgs []string // nil when the tool has no version flag
	Purpose     string
	Required    bool
}

var (
	Ydotool    = Tool{Name: "ydotool", Purpose: "types the keystrokes", Required: true}
	Ydotoold   = Tool{Name: "ydotoold", Purpose: "input daemon used by ydotool"}
	Pkexec     = Tool{Name: "pkexec", VersionArgs: []string{"--version"}, Purpose: "runs ydotool with elevated rights"}
	Gsettings  = Tool{Name: "gsettings", VersionArgs: []string{"--version"}, Purpose: "reads and switches keyboard layouts"}
	NotifySend = Tool{Name: "notify-send", VersionArgs: []string{"--version"}, Purpose: "desktop notifications"}
)

// Result pairs a tool with what was found.
type Result struct {
	Tool
	Status
}

// Check looks tool up in PATH and, when it has a version flag, records the
// first line of its output.
func Check(tool Tool) Status {
	path, err := exec.LookPath(tool.Name)
	if err != nil {
		return Status{Installed: false}
	}

	status := Status{
		Installed: true,
		Path:      path,
	}
	if tool.VersionArgs == nil {
		return status
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	output, err := exec.CommandContext(ctx, path, tool.VersionArgs...).Output()
	if err == nil {
		// parse first line as version
		line, _, _ := strings.Cut(string(output), "\n")
		status.Version = strings.TrimSpace(line)
	}

	return status
}

// CheckAll checks every tool in order.
func CheckAll(tools ...Tool) []Result {
	results := make([]Result, 0, len(tools))
	for _, tool := range tools {
		results = append(results, Result{Tool: tool, Status: Check(tool)})
	}
	return results
}

// Missing returns the required tools that were not found.
func Missing(results []Result) []Tool {
	var missing []Tool
	for _, r := range results {
		if r.Required && !r.Installed {
			missing = append(missing, r.Tool)
		}
	}
	return missing
}
