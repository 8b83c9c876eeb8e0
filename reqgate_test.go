package reqgate

import (
	"testing"

	"github.com/bft-labs/reqgate/pkg/host"
)

func TestCheckModuleVersions(t *testing.T) {
	if err := CheckModuleVersions(); err != nil {
		t.Fatalf("CheckModuleVersions() error = %v", err)
	}
}

func TestCheckModuleVersions_DetectsIncompatible(t *testing.T) {
	orig := modules["gate"]
	modules["gate"] = moduleVersion{version: "0.9.0", minVersion: "1.0.0"}
	defer func() { modules["gate"] = orig }()

	if err := CheckModuleVersions(); err == nil {
		t.Fatal("CheckModuleVersions() expected error for old module")
	}
}

func TestModuleVersions(t *testing.T) {
	v := ModuleVersions()
	for _, name := range []string{"gate", "host", "log", "state"} {
		if v[name] == "" {
			t.Errorf("ModuleVersions()[%q] is empty", name)
		}
	}
}

func TestFacade(t *testing.T) {
	h, err := host.New(host.Config{RuntimeVersion: host.StaticVersion("8.0"), HostVersion: "6.0"})
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := ConfigFromMap(map[string]interface{}{"title": "Demo", "wp": "6.1"})
	if err != nil {
		t.Fatal(err)
	}
	g, err := New(cfg, h)
	if err != nil {
		t.Fatal(err)
	}
	if g.Passes() {
		t.Error("Passes() = true, want false (host 6.0 < 6.1)")
	}
	if got := h.Pending(EventAdminNotices); len(got) != 2 {
		t.Errorf("Pending() = %v, want host notice and deactivate", got)
	}
	if !IsVersionAtLeast("7.10.0", "7.9.5") {
		t.Error("IsVersionAtLeast(7.10.0, 7.9.5) = false")
	}
	if DefaultConfig().MinRuntimeVersion != "7.2.0" {
		t.Error("DefaultConfig() runtime minimum changed")
	}
}
