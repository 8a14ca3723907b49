package mdv

import "pkt.systems/mdf"

const (
	ansiDim   = "\x1b[2m"
	ansiReset = "\x1b[0m"
)

// DefaultFallbackStyle dims the line shown in place of an image.
var DefaultFallbackStyle = mdf.Style{Prefix: ansiDim}

// BoringTheme returns a theme without any ANSI styling.
func BoringTheme() mdf.Theme {
	return mdf.NewTheme("boring", mdf.Styles{})
}

func styled(style mdf.Style, text string) string {
	if style.Prefix == "" {
		return text
	}
	return style.Prefix + text + ansiReset
}
