package controller

import (
	"github.com/tvloop/tvloop/session"
)

// Default returns the controller chain in its fixed order. Later controllers may
// rely on state the earlier ones updated for the same event.
func Default(displaySync DisplaySyncOptions) []session.Controller {
	return []session.Controller{
		NewState(),
		NewSuggestions(),
		NewUI(),
		NewLoader(),
		NewContentBlock(),
		NewDisplaySync(displaySync),
		NewChat(),
		NewComments(),
	}
}
