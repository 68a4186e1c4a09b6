// Package icon provides a multi-variant rendering engine for UI symbols and feedback indicators.
//
// Icons can be displayed as emoji, nerd-font glyphs or plain ASCII depending on user preference.
package icon

import (
	"github.com/spf13/viper"
	"github.com/tvloop/tvloop/key"
)

// Visual Variant Constants - these define the supported aesthetic styles for icon rendering.
const (
	emoji = "emoji"
	nerd  = "nerd"
	plain = "plain"
)

// AvailableVariants returns a slice of all registered icon style identifiers.
func AvailableVariants() []string {
	return []string{emoji, nerd, plain}
}

// Icon identifies a symbol in the registry.
type Icon int

const (
	Play Icon = iota
	Pause
	Live
	Upcoming
	Shorts
	Watched
	Broken
	Success
	Fail
)

// iconDef encapsulates the visual representations of a single UI symbol across all supported variants.
type iconDef struct {
	emoji string
	nerd  string
	plain string
}

var icons = map[Icon]*iconDef{
	Play:     {emoji: "▶️", nerd: "\uf04b", plain: ">"},
	Pause:    {emoji: "⏸️", nerd: "\uf04c", plain: "||"},
	Live:     {emoji: "🔴", nerd: "\uf111", plain: "LIVE"},
	Upcoming: {emoji: "⏰", nerd: "\uf017", plain: "SOON"},
	Shorts:   {emoji: "📱", nerd: "\uf10b", plain: "S"},
	Watched:  {emoji: "✅", nerd: "\uf00c", plain: "*"},
	Broken:   {emoji: "⚠️", nerd: "\uf071", plain: "!"},
	Success:  {emoji: "🎉", nerd: "\uf058", plain: "OK"},
	Fail:     {emoji: "💀", nerd: "\uf00d", plain: "X"},
}

// Get retrieves the visual representation for the receiver based on the global icons variant configuration.
func (d *iconDef) Get() string {
	switch viper.GetString(key.IconsVariant) {
	case emoji:
		return d.emoji
	case nerd:
		return d.nerd
	case plain:
		return d.plain
	default:
		return ""
	}
}

// Get returns the rendered string for a specified Icon identifier from the global registry.
func Get(i Icon) string {
	def, ok := icons[i]
	if !ok {
		return ""
	}
	return def.Get()
}
