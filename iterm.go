package mdv

import (
	"encoding/base64"
	"io"
	"strconv"
	"strings"
)

// iTerm2 inline image protocol:
// ESC ] 1337 ; File=inline=1;size=N[;width=W] : base64 BEL
const (
	itermFilePrefix = "\x1b]1337;File="
	itermTerminator = "\a"
)

// EncodeInlineImage returns the OSC 1337 sequence displaying data inline.
func EncodeInlineImage(data []byte, width DisplayWidth) string {
	var b strings.Builder
	b.Grow(len(itermFilePrefix) + 48 + base64.StdEncoding.EncodedLen(len(data)))
	b.WriteString(itermFilePrefix)
	b.WriteString("inline=1;size=")
	b.WriteString(strconv.Itoa(len(data)))
	if !width.Native() {
		b.WriteString(";width=")
		b.WriteString(strconv.Itoa(width.Cells))
	}
	b.WriteByte(':')
	b.WriteString(base64.StdEncoding.EncodeToString(data))
	b.WriteString(itermTerminator)
	return b.String()
}

// WriteInlineImage writes prefix, the image sequence and a newline to w in a
// single Write call.
func WriteInlineImage(w io.Writer, prefix string, data []byte, width DisplayWidth) error {
	seq := EncodeInlineImage(data, width)
	buf := make([]byte, 0, len(prefix)+len(seq)+1)
	buf = append(buf, prefix...)
	buf = append(buf, seq...)
	buf = append(buf, '\n')
	_, err := w.Write(buf)
	return err
}
