package tui

import (
	"strings"
	"testing"

	"github.com/leonardotrapani/keysim/internal/config"
	"github.com/leonardotrapani/keysim/internal/xkb"
)

const testRegistry = `<?xml version="1.0" encoding="UTF-8"?>
<xkbConfigRegistry version="1.1">
  <layoutList>
    <layout>
      <configItem><name>us</name><description>English (US)</description></configItem>
    </layout>
    <layout>
      <configItem><name>hu</name><description>Hungarian</description></configItem>
    </layout>
  </layoutList>
</xkbConfigRegistry>`

func TestValidateIntRange(t *testing.T) {
	validate := validateIntRange(0, 60)
	for _, ok := range []string{"0", "5", " 60 "} {
		if err := validate(ok); err != nil {
			t.Errorf("validate(%q) = %v, want nil", ok, err)
		}
	}
	for _, bad := range []string{"", "-1", "61", "five"} {
		if err := validate(bad); err == nil {
			t.Errorf("validate(%q) = nil, want error", bad)
		}
	}
}

func TestValidateDuration(t *testing.T) {
	if err := validateDuration(false)("0s"); err != nil {
		t.Errorf("zero duration should be allowed: %v", err)
	}
	if err := validateDuration(true)("0s"); err == nil {
		t.Error("zero duration should be rejected when positive is required")
	}
	if err := validateDuration(false)("-1s"); err == nil {
		t.Error("negative duration should be rejected")
	}
	if err := validateDuration(false)("3"); err == nil {
		t.Error("duration without unit should be rejected")
	}
}

func TestValidateLayout(t *testing.T) {
	registry, err := xkb.Parse(strings.NewReader(testRegistry))
	if err != nil {
		t.Fatalf("parse registry: %v", err)
	}

	if err := validateLayout(registry, "hu")("hu"); err != nil {
		t.Errorf("hu should be known: %v", err)
	}
	if err := validateLayout(registry, "us")("hu"); err == nil {
		t.Error("hu should be rejected as the target layout")
	}
	if err := validateLayout(registry, "hu")("hu+xx"); err == nil {
		t.Error("variant missing from the registry should be rejected")
	}
	if err := validateLayout(nil, "us")("us+intl"); err != nil {
		t.Errorf("variant should pass without a registry: %v", err)
	}
	if err := validateLayout(nil, "us")("de"); err == nil {
		t.Error("foreign layout should be rejected without a registry")
	}
	if err := validateLayout(nil, "us")("  "); err == nil {
		t.Error("empty layout should be rejected")
	}

	if got := describeLayout(registry, "hu"); got != "Hungarian (hu)" {
		t.Errorf("describeLayout = %q", got)
	}
	if got := describeLayout(nil, "hu"); got != "hu" {
		t.Errorf("describeLayout without registry = %q", got)
	}
}

func TestSectionLabels(t *testing.T) {
	cfg := config.DefaultConfig()

	if got := formatSessionLabel(cfg); got != "Session (5s countdown, 1000 chars)" {
		t.Errorf("session label = %q", got)
	}
	if got := formatLayoutLabel(cfg); got != "Layouts (hu -> us, gsettings)" {
		t.Errorf("layout label = %q", got)
	}
	if got := formatInjectionLabel(cfg); got != "Injection (ydotool via pkexec)" {
		t.Errorf("injection label = %q", got)
	}

	cfg.Notifications.Enabled = false
	if got := formatNotificationsLabel(cfg); got != "Notifications (disabled)" {
		t.Errorf("notifications label = %q", got)
	}
	if got := formatHistoryLabel(cfg); got != "History (enabled)" {
		t.Errorf("history label = %q", got)
	}
}

func TestValidateText(t *testing.T) {
	if err := ValidateText("   ", 10); err == nil {
		t.Error("blank text should be rejected")
	}
	if err := ValidateText(strings.Repeat("ű", 10), 10); err != nil {
		t.Errorf("text at the limit should pass: %v", err)
	}
	if err := ValidateText(strings.Repeat("ű", 11), 10); err == nil {
		t.Error("text over the limit should be rejected")
	}
}

func TestRunRequiresConfig(t *testing.T) {
	if _, err := Run(nil, nil); err == nil {
		t.Error("Run(nil) should fail")
	}
}
