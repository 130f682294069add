package telegram

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func noop(tele.Context) error { return nil }

func TestRegisterCommandValidation(t *testing.T) {
	reg := NewRegistry()
	cases := []struct {
		name string
		cmd  Command
	}{
		{"", Command{Handler: noop, Description: "d"}},
		{"/nohandler", Command{Description: "d"}},
		{"/nodesc", Command{Handler: noop}},
		{"start", Command{Handler: noop, Description: "d"}},
	}
	for _, tc := range cases {
		if err := reg.RegisterCommand(tc.name, tc.cmd); err == nil {
			t.Errorf("RegisterCommand(%q) accepted an invalid command", tc.name)
		}
	}
	if err := reg.RegisterCommand("/start", Command{Handler: noop, Description: "d"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.RegisterCommand("/start", Command{Handler: noop, Description: "again"}); err == nil {
		t.Fatal("duplicate command accepted")
	}
}

func TestLookupCommandByAlias(t *testing.T) {
	reg := NewRegistry()
	_ = reg.RegisterCommand("/start", Command{Handler: noop, Description: "d", Aliases: []string{"🏠 Menu"}})

	for _, text := range []string{"/start", " /start ", "🏠 Menu"} {
		key, _, ok := reg.LookupCommand(text)
		if !ok || key != "/start" {
			t.Errorf("LookupCommand(%q) = %q, %v", text, key, ok)
		}
	}
	if _, _, ok := reg.LookupCommand("menu"); ok {
		t.Error("unexpected match")
	}
}

func TestListCommandsHidesAdminAndHidden(t *testing.T) {
	reg := NewRegistry()
	_ = reg.RegisterCommand("/start", Command{Handler: noop, Description: "start"})
	_ = reg.RegisterCommand("/stats", Command{Handler: noop, Description: "stats", AdminOnly: true})
	_ = reg.RegisterCommand("/debug", Command{Handler: noop, Description: "debug", Hidden: true})

	visible := reg.ListCommands(true)
	if len(visible) != 1 || visible[0].Text != "start" {
		t.Fatalf("visible = %+v", visible)
	}
	if all := reg.ListCommands(false); len(all) != 3 || all[0].Text != "debug" {
		t.Fatalf("all = %+v", all)
	}
}

func TestRegisterCallback(t *testing.T) {
	reg := NewRegistry()
	if err := reg.RegisterCallback("", noop); err == nil {
		t.Fatal("empty key accepted")
	}
	if err := reg.RegisterCallback("currency", noop); err != nil {
		t.Fatal(err)
	}
	if err := reg.RegisterCallback("currency", noop); err == nil {
		t.Fatal("duplicate callback accepted")
	}
	if _, ok := reg.GetCallback("currency"); !ok {
		t.Fatal("callback not found")
	}
	if got := reg.ListCallbacks(); len(got) != 1 || got[0] != "currency" {
		t.Fatalf("callbacks = %v", got)
	}
}

func TestRegisterCommandRejectsDuplicateAlias(t *testing.T) {
	reg := NewRegistry()
	if err := reg.RegisterCommand("/start", Command{Handler: noop, Description: "d", Aliases: []string{"Menu"}}); err != nil {
		t.Fatal(err)
	}
	if err := reg.RegisterCommand("/home", Command{Handler: noop, Description: "d", Aliases: []string{"Menu"}}); err == nil {
		t.Fatal("alias shared by two commands accepted")
	}
	if _, ok := reg.Commands()["/home"]; ok {
		t.Fatal("rejected command must not be registered")
	}
}
