package cli

import (
	"testing"
	"time"
)

func TestFormatCountdown(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{20 * time.Minute, "20:00"},
		{13*time.Minute + 7*time.Second, "13:07"},
		{59 * time.Second, "0:59"},
		{0, "0:00"},
		{-time.Minute, "0:00"},
	}
	for _, tc := range cases {
		if got := formatCountdown(tc.d); got != tc.want {
			t.Errorf("formatCountdown(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}

func TestProjectArgDefaultsToCwd(t *testing.T) {
	got, err := projectArg(nil)
	if err != nil {
		t.Fatal(err)
	}
	if got == "" {
		t.Error("expected the current directory")
	}

	got, err = projectArg([]string{"/srv/docs"})
	if err != nil {
		t.Fatal(err)
	}
	if got != "/srv/docs" {
		t.Errorf("expected explicit argument, got %q", got)
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := map[string]bool{
		"watch":   false,
		"stop":    false,
		"status":  false,
		"save":    false,
		"changes": false,
		"monitor": false,
		"engine":  false,
	}
	for _, cmd := range rootCmd.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %s not registered", name)
		}
	}
}
