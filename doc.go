// Package mdv renders a Markdown document in a terminal with inline images.
//
// Text is formatted by pkt.systems/mdf. Image mentions (inline
// ![alt](url) and reference-style ![alt][ref]) are lifted out of the
// document, fetched from disk or over HTTP(S), and written as iTerm2 inline
// image escape sequences (OSC 1337) between the formatted text blocks.
// Terminals without inline image support, and images that cannot be
// fetched, get a dimmed "[image: ...]" line instead.
//
// Pipeline:
//   - Load the document and its base context (directory or URL prefix)
//   - Build the reference map and split the text into segments
//   - Format text segments, fetch/size/encode image segments, in order
//
// Example:
//
//	err := mdv.Render(ctx, mdv.RenderRequest{
//		Source: "README.md",
//		Writer: os.Stdout,
//		Width:  80,
//		Theme:  mdf.DefaultTheme(),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
// After rendering, an ExitWaiter can hold the terminal in raw mode until
// the user presses q, Q, Esc or Ctrl-C.
package mdv
