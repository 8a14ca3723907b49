package mdv

import (
	"os"

	"github.com/BourgeoisBear/rasterm"
)

// DetectInlineImageSupport returns true if the current terminal likely
// understands iTerm2 inline images. MDV_IMAGES=0 or 1 overrides detection.
func DetectInlineImageSupport() bool {
	switch os.Getenv("MDV_IMAGES") {
	case "0":
		return false
	case "1":
		return true
	}
	return rasterm.IsItermCapable()
}
