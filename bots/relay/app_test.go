package relay

import (
	"testing"

	tg "github.com/m3rciful/twinbots/core/telegram"
)

func TestRegisterCommandsMenuAliases(t *testing.T) {
	h := newHarness(t)
	reg := tg.NewRegistry()
	if err := registerCommands(reg, h.svc.Machine()); err != nil {
		t.Fatal(err)
	}

	for _, mc := range menuCommands {
		name, _, ok := reg.LookupCommand(mc.label)
		if !ok || name != mc.name {
			t.Errorf("LookupCommand(%q) = %q, %v, want %q", mc.label, name, ok, mc.name)
		}
	}

	var menu []string
	for _, c := range reg.ListCommands(true) {
		menu = append(menu, c.Text)
	}
	want := []string{"rules", "send", "start"}
	if len(menu) != len(want) {
		t.Fatalf("menu = %v, want %v", menu, want)
	}
	for i := range want {
		if menu[i] != want[i] {
			t.Fatalf("menu = %v, want %v", menu, want)
		}
	}
	if all := reg.ListCommands(false); len(all) != 5 {
		t.Fatalf("all commands = %d, want 5", len(all))
	}
}
