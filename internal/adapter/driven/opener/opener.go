// Package opener implements driven.URLOpener for command-line launchers.
package opener

import (
	"context"
	"fmt"
	"io"

	"github.com/cli/browser"

	"github.com/ericfisherdev/careerhub/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.URLOpener = (*Browser)(nil)
	_ driven.URLOpener = (*Printer)(nil)
)

// Browser opens URLs in the user's default web browser.
type Browser struct {
	open func(url string) error
}

// NewBrowser creates a Browser backed by the platform's URL handler. Output
// of the helper process goes to stdout and stderr.
func NewBrowser(stdout, stderr io.Writer) *Browser {
	browser.Stdout = stdout
	browser.Stderr = stderr
	return &Browser{open: browser.OpenURL}
}

// Open launches url. The context is checked once before the helper starts;
// the helper itself is not cancellable.
func (b *Browser) Open(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.open(url); err != nil {
		return fmt.Errorf("open browser: %w", err)
	}
	return nil
}

// Printer writes URLs to w instead of opening them. Used on headless hosts
// and by --print.
type Printer struct {
	w io.Writer
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Open writes url followed by a newline.
func (p *Printer) Open(_ context.Context, url string) error {
	if _, err := fmt.Fprintln(p.w, url); err != nil {
		return fmt.Errorf("print url: %w", err)
	}
	return nil
}
