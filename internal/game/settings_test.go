package game

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSettings_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	in := Settings{
		DisabledActions: []string{"pause", "aim"},
		DebounceMs:      150,
		HoldTimeoutMs:   3000,
	}
	if err := SaveSettings(path, in); err != nil {
		t.Fatalf("save: %v", err)
	}
	out := LoadSettings(path, zerolog.Nop())
	if len(out.DisabledActions) != 2 || out.DisabledActions[0] != "pause" {
		t.Fatalf("disabled actions round-tripped badly: %v", out.DisabledActions)
	}
	if out.DebounceMs != 150 || out.HoldTimeoutMs != 3000 {
		t.Fatalf("overrides round-tripped badly: %+v", out)
	}
}

func TestSettings_MissingFileYieldsDefaults(t *testing.T) {
	out := LoadSettings(filepath.Join(t.TempDir(), "absent.json"), zerolog.Nop())
	if len(out.DisabledActions) != 0 || out.DebounceMs != 0 {
		t.Fatalf("expected defaults, got %+v", out)
	}
}

func TestSettings_MalformedYieldsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := LoadSettings(path, zerolog.Nop())
	if len(out.DisabledActions) != 0 || out.DebounceMs != 0 {
		t.Fatalf("malformed settings should fall back to defaults, got %+v", out)
	}
}

func TestSettings_Apply(t *testing.T) {
	s := Settings{
		DebounceMs:         150,
		ReversalWindowMs:   80,
		HoldTimeoutMs:      3000,
		NonCriticalDelayMs: 250,
	}
	opts := s.Apply(DefaultOptions())
	if opts.Debounce != 150*time.Millisecond {
		t.Fatalf("debounce = %v", opts.Debounce)
	}
	if opts.ReversalWindow != 80*time.Millisecond {
		t.Fatalf("reversal window = %v", opts.ReversalWindow)
	}
	if opts.HoldTimeout != 3*time.Second {
		t.Fatalf("hold timeout = %v", opts.HoldTimeout)
	}
	if opts.NonCriticalDelay != 250*time.Millisecond {
		t.Fatalf("delay = %v", opts.NonCriticalDelay)
	}
	// Untouched knobs keep their defaults.
	if opts.MaxPower != defaultMaxPower || opts.AimStep != defaultAimStep {
		t.Fatal("unrelated options must stay at defaults")
	}
}

func TestSettings_ApplyZeroKeepsDefaults(t *testing.T) {
	opts := DefaultSettings().Apply(DefaultOptions())
	if opts.Debounce != defaultDebounce || opts.HoldTimeout != defaultHoldTimeout {
		t.Fatal("zero-valued overrides must not clobber defaults")
	}
}

func TestSettings_DerivedChargeRateTracksHoldTimeout(t *testing.T) {
	// The forced-release ceiling and the power curve must agree after an
	// override: max power is still reached exactly at the (new) ceiling.
	opts := Settings{HoldTimeoutMs: 4000}.Apply(DefaultOptions())
	rate := opts.chargeRate()
	ceilingMs := float64(opts.HoldTimeout / time.Millisecond)
	got := opts.minPower() + rate*ceilingMs
	if diff := got - opts.maxPower(); diff > 0.0001 || diff < -0.0001 {
		t.Fatalf("power at ceiling = %.4f, want %.4f", got, opts.maxPower())
	}
}

func TestSettingsWatcher_DeliversReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	if err := SaveSettings(path, Settings{}); err != nil {
		t.Fatalf("seed settings: %v", err)
	}

	w, err := WatchSettings(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer w.Close()

	if err := SaveSettings(path, Settings{DisabledActions: []string{"pause"}}); err != nil {
		t.Fatalf("rewrite settings: %v", err)
	}

	select {
	case s := <-w.Updates():
		if len(s.DisabledActions) != 1 || s.DisabledActions[0] != "pause" {
			t.Fatalf("reloaded settings wrong: %+v", s)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no reload delivered")
	}
}
