package mdv

import (
	"log/slog"

	"pkt.systems/mdf"
)

// RenderOption configures rendering behavior.
type RenderOption func(*renderConfig)

type renderConfig struct {
	theme         mdf.Theme
	osc8          bool
	margin        int
	images        bool
	fallbackStyle mdf.Style
	loader        *Loader
	fetcher       *Fetcher
	logger        *slog.Logger
}

func defaultRenderConfig() renderConfig {
	return renderConfig{
		theme:         mdf.DefaultTheme(),
		margin:        DefaultMargin,
		images:        true,
		fallbackStyle: DefaultFallbackStyle,
	}
}

func newRenderConfig(opts []RenderOption) renderConfig {
	cfg := defaultRenderConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.theme == nil {
		cfg.theme = mdf.DefaultTheme()
	}
	if cfg.loader == nil {
		cfg.loader = &Loader{}
	}
	if cfg.fetcher == nil {
		cfg.fetcher = NewFetcher()
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}
	return cfg
}

// WithTheme sets the Markdown theme for text blocks.
func WithTheme(theme mdf.Theme) RenderOption {
	return func(cfg *renderConfig) {
		cfg.theme = theme
	}
}

// WithOSC8 enables or disables OSC 8 hyperlinks in text blocks.
func WithOSC8(enabled bool) RenderOption {
	return func(cfg *renderConfig) {
		cfg.osc8 = enabled
	}
}

// WithMargin sets the left and right padding in cells.
func WithMargin(cells int) RenderOption {
	return func(cfg *renderConfig) {
		if cells >= 0 {
			cfg.margin = cells
		}
	}
}

// WithInlineImages enables or disables image escape sequences. When
// disabled every image is shown as its fallback line.
func WithInlineImages(enabled bool) RenderOption {
	return func(cfg *renderConfig) {
		cfg.images = enabled
	}
}

// WithFallbackStyle sets the style of the line shown in place of an image.
func WithFallbackStyle(style mdf.Style) RenderOption {
	return func(cfg *renderConfig) {
		cfg.fallbackStyle = style
	}
}

// WithLoader sets the document loader.
func WithLoader(loader *Loader) RenderOption {
	return func(cfg *renderConfig) {
		cfg.loader = loader
	}
}

// WithFetcher sets the image fetcher.
func WithFetcher(fetcher *Fetcher) RenderOption {
	return func(cfg *renderConfig) {
		cfg.fetcher = fetcher
	}
}

// WithLogger sets the logger for debug output.
func WithLogger(logger *slog.Logger) RenderOption {
	return func(cfg *renderConfig) {
		cfg.logger = logger
	}
}
