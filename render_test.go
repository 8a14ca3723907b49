package mdv

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/muesli/reflow/indent"
	"pkt.systems/mdf"
)

const escapeMarker = "\x1b]1337;File="

func TestRenderWithoutImagesMatchesSingleBlock(t *testing.T) {
	text := strings.Join([]string{
		"# Title",
		"",
		"Paragraph with *emphasis* and a [link](https://example.com).",
		"",
		"- one",
		"- two",
		"",
	}, "\n")
	path := writeFile(t, t.TempDir(), "doc.md", []byte(text))
	got := renderSource(t, path, 80)
	if strings.Contains(got, escapeMarker) {
		t.Fatalf("unexpected escape sequence in %q", got)
	}

	var direct bytes.Buffer
	if err := mdf.Render(mdf.RenderRequest{
		Reader:  strings.NewReader(text),
		Writer:  &direct,
		Width:   AvailableColumns(80, DefaultMargin),
		Theme:   BoringTheme(),
		Options: []mdf.RenderOption{mdf.WithOSC8(false)},
	}); err != nil {
		t.Fatalf("direct render: %v", err)
	}
	want := direct.Bytes()
	if len(want) > 0 && want[len(want)-1] != '\n' {
		want = append(want, '\n')
	}
	if wantStr := string(indent.Bytes(want, DefaultMargin)); got != wantStr {
		t.Fatalf("single block mismatch\n---want---\n%q\n---got---\n%q", wantStr, got)
	}
}

func TestRenderLocalImageNativeWidth(t *testing.T) {
	dir := t.TempDir()
	img := pngBytes(t, 16, 16)
	writeFile(t, dir, "img.png", img)
	path := writeFile(t, dir, "doc.md", []byte("![logo](img.png)\n"))

	got := renderSource(t, path, 80)
	want := "  " + EncodeInlineImage(img, NativeWidth) + "\n"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
	if strings.Contains(got, ";width=") {
		t.Fatalf("native image must not carry a width parameter")
	}
}

func TestRenderLocalImageScaledToColumns(t *testing.T) {
	dir := t.TempDir()
	img := pngBytes(t, 2000, 1)
	writeFile(t, dir, "img.png", img)
	path := writeFile(t, dir, "doc.md", []byte("Before\n\n![logo](img.png)\n\nAfter\n"))

	got := renderSource(t, path, 80)
	cols := AvailableColumns(80, DefaultMargin)
	if cols != 76 {
		t.Fatalf("unexpected available columns %d", cols)
	}
	seq := EncodeInlineImage(img, DisplayWidth{Cells: cols})
	if !strings.Contains(seq, ";width=76:") {
		t.Fatalf("expected width parameter in %q", seq[:60])
	}
	idx := strings.Index(got, "  "+seq+"\n")
	if idx < 0 {
		t.Fatalf("missing scaled image sequence in output")
	}
	before := strings.Index(got, "Before")
	after := strings.LastIndex(got, "After")
	if before < 0 || after < 0 {
		t.Fatalf("missing text blocks in %q", stripANSI(got))
	}
	if !(before < idx && idx < after) {
		t.Fatalf("segments out of order in %q", got)
	}
}

func TestRenderUndefinedReferenceIsPlainText(t *testing.T) {
	path := writeFile(t, t.TempDir(), "doc.md", []byte("Some text ![x][missing] more text\n"))
	got := renderSource(t, path, 80)
	if strings.Contains(got, escapeMarker) {
		t.Fatalf("unexpected escape sequence")
	}
	if strings.Contains(got, "[image:") {
		t.Fatalf("unexpected fallback marker in %q", got)
	}
	plain := stripANSI(got)
	if !strings.Contains(plain, "Some text") || !strings.Contains(plain, "more text") {
		t.Fatalf("missing text in %q", plain)
	}
}

func TestRenderRemoteImageTimeoutFallsBack(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/docs/readme.md", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("Intro\n\n![slow](slow.png)\n\nafter text\n"))
	})
	mux.HandleFunc("/docs/slow.png", func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	var out bytes.Buffer
	err := NewRenderer(&out, 80,
		WithTheme(BoringTheme()),
		WithFetcher(NewFetcher(WithFetchTimeout(50*time.Millisecond))),
	).Render(context.Background(), srv.URL+"/docs/readme.md")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	got := out.String()
	fallback := "  " + ansiDim + "[image: slow]" + ansiReset + "\n"
	idx := strings.Index(got, fallback)
	if idx < 0 {
		t.Fatalf("missing dimmed fallback line in %q", got)
	}
	if after := strings.Index(got, "after text"); after < idx {
		t.Fatalf("expected text after the fallback line, got %q", got)
	}
	if strings.Contains(got, escapeMarker) {
		t.Fatalf("unexpected escape sequence")
	}
}

func TestRenderRemoteImageRelativeToDocument(t *testing.T) {
	img := pngBytes(t, 24, 24)
	mux := http.NewServeMux()
	mux.HandleFunc("/docs/readme.md", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("![pic][p]\n\n[p]: img/pic.png\n"))
	})
	mux.HandleFunc("/docs/img/pic.png", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(img)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	got := renderSource(t, srv.URL+"/docs/readme.md", 80)
	if !strings.Contains(got, "  "+EncodeInlineImage(img, NativeWidth)+"\n") {
		t.Fatalf("missing image sequence in %q", got)
	}
}

func TestRenderFallbackUsesTargetWithoutAlt(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.md", []byte("![](nowhere.png)\n\n![named](also-missing.png)\n"))
	got := renderSource(t, path, 80, WithFallbackStyle(mdf.Style{}))
	want := "  [image: nowhere.png]\n  [image: named]\n"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestRenderInlineImagesDisabled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "img.png", pngBytes(t, 16, 16))
	path := writeFile(t, dir, "doc.md", []byte("![logo](img.png)\n"))
	got := renderSource(t, path, 80, WithInlineImages(false), WithFallbackStyle(mdf.Style{}))
	if got != "  [image: logo]\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRenderMarginOption(t *testing.T) {
	dir := t.TempDir()
	img := pngBytes(t, 2000, 1)
	writeFile(t, dir, "img.png", img)
	path := writeFile(t, dir, filepath.Join("nested", "doc.md"), []byte("![wide](../img.png)\n"))
	got := renderSource(t, path, 40, WithMargin(0))
	want := EncodeInlineImage(img, DisplayWidth{Cells: 40}) + "\n"
	if got != want {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRenderMissingDocument(t *testing.T) {
	var out bytes.Buffer
	err := NewRenderer(&out, 80).Render(context.Background(), filepath.Join(t.TempDir(), "nope.md"))
	var loadErr *LoadError
	if !errors.As(err, &loadErr) || !errors.Is(err, ErrNoSuchFile) {
		t.Fatalf("expected no such file load error, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output, got %q", out.String())
	}
}

func TestRenderStopsWhenCancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "img.png", pngBytes(t, 16, 16))
	path := writeFile(t, dir, "doc.md", []byte("text\n\n![logo](img.png)\n"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	err := NewRenderer(&out, 80, WithTheme(BoringTheme())).Render(ctx, path)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output after cancellation, got %q", out.String())
	}
}

func TestRenderRequestValidation(t *testing.T) {
	if err := Render(context.Background(), RenderRequest{Source: "x.md"}); err == nil {
		t.Fatalf("expected error for nil writer")
	}
}
