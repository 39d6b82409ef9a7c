package clipboard

import (
	"context"
	"encoding/base64"
	"fmt"
	"github.com/myrjola/interviewdash/internal/errors"
	"io"
)

// OSC52 writes to the clipboard of the terminal emulator through the OSC 52 escape sequence.
//
// It works over SSH and needs no display server, but the terminal has to support and allow OSC 52.
type OSC52 struct {
	w io.Writer
}

func NewOSC52(w io.Writer) *OSC52 {
	return &OSC52{w: w}
}

func (o *OSC52) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "context done")
	}
	sequence := fmt.Sprintf("\x1b]52;c;%s\a", base64.StdEncoding.EncodeToString([]byte(text)))
	if _, err := io.WriteString(o.w, sequence); err != nil {
		return errors.Wrap(err, "write OSC 52 sequence")
	}
	return nil
}
