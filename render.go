package mdv

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/muesli/reflow/indent"
	"pkt.systems/mdf"
)

const fallbackLabelPrefix = "[image: "

// RenderRequest configures Render.
type RenderRequest struct {
	// Source is a local path, a file:// URL or an http(s) URL.
	Source string
	Writer io.Writer
	// Width is the terminal width; 0 queries stdout.
	Width   int
	Theme   mdf.Theme
	Options []RenderOption
}

// Render loads req.Source and writes it to req.Writer.
func Render(ctx context.Context, req RenderRequest) error {
	if req.Writer == nil {
		return fmt.Errorf("render: writer is nil")
	}
	opts := req.Options
	if req.Theme != nil {
		opts = append([]RenderOption{WithTheme(req.Theme)}, opts...)
	}
	return NewRenderer(req.Writer, req.Width, opts...).Render(ctx, req.Source)
}

// Renderer writes documents with inline images to a terminal stream.
type Renderer struct {
	w     io.Writer
	width int
	cfg   renderConfig
}

// NewRenderer creates a renderer writing to w. A width of 0 or less is
// replaced by the terminal width of stdout, or DefaultWidth.
func NewRenderer(w io.Writer, width int, opts ...RenderOption) *Renderer {
	return &Renderer{w: w, width: width, cfg: newRenderConfig(opts)}
}

// Render loads source and renders it. Load failures are returned as
// *LoadError; image failures are shown inline and never returned.
func (r *Renderer) Render(ctx context.Context, source string) error {
	src, err := ParseSource(source)
	if err != nil {
		return &LoadError{Source: source, Err: err}
	}
	doc, err := r.cfg.loader.Load(ctx, src)
	if err != nil {
		return err
	}
	return r.RenderDocument(ctx, doc)
}

// RenderDocument renders an already loaded document.
func (r *Renderer) RenderDocument(ctx context.Context, doc Document) error {
	if ctx == nil {
		ctx = context.Background()
	}
	width := r.width
	if width <= 0 {
		width = TerminalWidth(int(os.Stdout.Fd()), DefaultWidth)
	}
	cols := AvailableColumns(width, r.cfg.margin)
	refs := BuildReferences(doc.Text)
	segments := Split(doc.Text, refs)
	log := r.cfg.logger
	log.Debug("split document", "segments", len(segments), "references", len(refs), "width", width, "columns", cols)

	if !HasImages(segments) {
		return r.writeMarkdown(doc.Text, cols)
	}
	for _, seg := range segments {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch seg.Kind {
		case SegmentText:
			if err := r.writeMarkdown(seg.Text, cols); err != nil {
				return err
			}
		case SegmentImage:
			if err := r.writeImage(ctx, seg, doc.Base, cols); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Renderer) writeMarkdown(text string, cols int) error {
	var buf bytes.Buffer
	err := mdf.Render(mdf.RenderRequest{
		Reader:  strings.NewReader(text),
		Writer:  &buf,
		Width:   cols,
		Theme:   r.cfg.theme,
		Options: []mdf.RenderOption{mdf.WithOSC8(r.cfg.osc8)},
	})
	if err != nil {
		return fmt.Errorf("render: format markdown: %w", err)
	}
	out := buf.Bytes()
	if len(out) == 0 {
		return nil
	}
	if out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	if _, err := r.w.Write(indent.Bytes(out, uint(r.cfg.margin))); err != nil {
		return fmt.Errorf("render: write: %w", err)
	}
	return nil
}

func (r *Renderer) writeImage(ctx context.Context, seg Segment, base BaseContext, cols int) error {
	log := r.cfg.logger
	if !r.cfg.images {
		return r.writeFallback(seg, cols)
	}
	data, err := r.cfg.fetcher.Fetch(ctx, seg.Target, base)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		log.Debug("image fallback", "target", seg.Target, "error", err)
		return r.writeFallback(seg, cols)
	}
	width := WidthCells(data, cols)
	log.Debug("inline image", "target", seg.Target, "bytes", len(data), "width", width.String())
	if err := WriteInlineImage(r.w, r.marginPrefix(), data, width); err != nil {
		return fmt.Errorf("render: write image: %w", err)
	}
	return nil
}

// writeFallback prints the alt text, or the target when alt is empty.
func (r *Renderer) writeFallback(seg Segment, cols int) error {
	label := seg.Alt
	if label == "" {
		label = seg.Target
	}
	label = fitLabel(label, cols-len(fallbackLabelPrefix)-1)
	line := r.marginPrefix() + styled(r.cfg.fallbackStyle, fallbackLabelPrefix+label+"]") + "\n"
	if _, err := io.WriteString(r.w, line); err != nil {
		return fmt.Errorf("render: write: %w", err)
	}
	return nil
}

func (r *Renderer) marginPrefix() string {
	return strings.Repeat(" ", r.cfg.margin)
}
