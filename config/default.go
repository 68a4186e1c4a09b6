package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/tvloop/tvloop/color"
	"github.com/tvloop/tvloop/constant"
	"github.com/tvloop/tvloop/key"
	"github.com/tvloop/tvloop/style"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.App + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON customizes JSON output to include current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        reflect.TypeOf(f.Value).String(),
	})
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		Default[k] = Field{Key: k, Value: v, Description: desc}
		EnvExposed = append(EnvExposed, k)
	}

	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, nerd, plain")
	register(key.ProfileName, constant.DefaultProfile, "Profile whose playback state is loaded on start")
	register(key.HistoryCapacity, MaxHistoryCapacity, fmt.Sprintf("Number of playback positions to remember (%d-%d)", MinHistoryCapacity, MaxHistoryCapacity))
	register(key.HistoryLowMemory, false, fmt.Sprintf("Keep only %d positions on memory constrained devices", MinHistoryCapacity))
	register(key.HistoryPersistDelayMs, 10_000, "Delay before saved positions are written to disk.\nSaves within the window are collapsed into one write")
	register(key.QueueMaxSize, 50, "Maximum number of entries in the playback queue (informational)")
	register(key.Player, "mpv", "Media player to use")
	register(key.PlayerTickMs, 1_000, "Interval of playback position updates from the player")
	register(key.DisplayAutoSync, false, "Switch the display refresh rate to match the video")
	register(key.DisplayPauseMs, 0, "Pause playback while the display switches mode.\n0 disables the pause")
	register(key.DisplayApplyDelayMs, 500, "Delay between video load and the mode switch request")
	register(key.DisplayRestoreDelayMs, 200, "Delay before the original display mode is restored after playback")
	register(key.DisplaySkipShorts, false, "Don't switch modes for short videos")
	register(key.DisplayResolutionSwitch, false, "Switch the resolution as well as the refresh rate")
	register(key.DisplayFpsCorrection, true, "Use fractional rates for NTSC content.\n24->23.976, 30->29.97, 60->59.94")
	register(key.DisplayDoubleRefreshRate, false, "Prefer a doubled refresh rate for content below 30 fps")
	register(key.DisplaySkip24Rate, false, "Keep the current mode for 24 fps content")
	register(key.SegmentsEnable, true, "Skip sponsored and intro segments")
	register(key.SegmentsCategories, []string{"sponsor", "intro", "outro", "selfpromo"}, "Segment categories to skip")
	register(key.SegmentsURL, "https://sponsor.ajay.app/api/skipSegments", "Segment service endpoint")
	register(key.ChatEnable, false, "Open live chat automatically for live streams")
	register(key.ChatBlacklist, []string{}, "Chat authors whose messages are hidden")
	register(key.CommentsEnable, true, "Allow opening comments from the player")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"blue":     style.Fg(color.Blue),
	"purple":   style.Fg(color.Purple),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
