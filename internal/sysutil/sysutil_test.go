package sysutil

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// keepGlobals restores the global logger and level after the test.
func keepGlobals(t *testing.T) {
	t.Helper()
	level, logger := zerolog.GlobalLevel(), log.Logger
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(level)
		log.Logger = logger
	})
}

func TestSetLogLevel(t *testing.T) {
	keepGlobals(t)

	for in, want := range map[string]zerolog.Level{
		"trace":    zerolog.TraceLevel,
		" Debug\n": zerolog.DebugLevel,
		"WARNING":  zerolog.WarnLevel,
		"warn":     zerolog.WarnLevel,
		"error":    zerolog.ErrorLevel,
		"panic":    zerolog.PanicLevel,
		"":         zerolog.InfoLevel,
		"verbose":  zerolog.InfoLevel,
		"disabled": zerolog.Disabled,
	} {
		zerolog.SetGlobalLevel(zerolog.FatalLevel)
		SetLogLevel(in)
		if got := zerolog.GlobalLevel(); got != want {
			t.Errorf("SetLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSetupLogger(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		keepGlobals(t)
		var buf bytes.Buffer
		SetupLogger("warn", false, &buf)
		log.Info().Msg("dropped")
		log.Warn().Int("gifts", 555).Msg("seeded")

		var line map[string]any
		if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
			t.Fatalf("want a single JSON line, got %q: %v", buf.String(), err)
		}
		if line["message"] != "seeded" || line["gifts"] != float64(555) || line["time"] == nil {
			t.Fatalf("line = %v", line)
		}
	})

	t.Run("console", func(t *testing.T) {
		keepGlobals(t)
		var buf bytes.Buffer
		lg := SetupLogger("debug", true, &buf)
		lg.Debug().Str("kind", "wishlist").Msg("stage")
		out := buf.String()
		if strings.HasPrefix(out, "{") || !strings.Contains(out, "stage") || !strings.Contains(out, "kind=") {
			t.Fatalf("console output = %q", out)
		}
		log.Debug().Msg("global")
		if !strings.Contains(buf.String(), "global") {
			t.Fatal("global logger does not share the writer")
		}
	})
}

func TestFirstNonEmpty(t *testing.T) {
	cases := []struct {
		in   []string
		want string
	}{
		{nil, ""},
		{[]string{" ", "\t"}, ""},
		{[]string{"", " v1.2 ", "dev"}, " v1.2 "},
		{[]string{"v2", "dev"}, "v2"},
	}
	for _, tc := range cases {
		if got := FirstNonEmpty(tc.in...); got != tc.want {
			t.Errorf("FirstNonEmpty(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
