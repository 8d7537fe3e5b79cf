// launchtool opens an external tool for one job application from the
// command line. It asks a running CareerHub host for a context token using
// the caller's session, then opens the tool with the context envelope
// attached. Any issuance failure still opens the tool, without context.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/careerhub/internal/adapter/driven/issuerclient"
	"github.com/ericfisherdev/careerhub/internal/adapter/driven/opener"
	"github.com/ericfisherdev/careerhub/internal/application"
	"github.com/ericfisherdev/careerhub/internal/config"
	"github.com/ericfisherdev/careerhub/internal/domain/model"
	"github.com/ericfisherdev/careerhub/internal/domain/port/driven"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	host          string
	session       string
	tool          string
	applicationID string
	company       string
	position      string
	toolURLs      string
	print         bool
	query         bool
	timeout       time.Duration
	verbose       bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}

	flagSet := pflag.NewFlagSet("launchtool", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&opts.host, "host", envOr("CAREERHUB_PUBLIC_URL", "http://127.0.0.1:8080"), "base URL of the CareerHub host")
	flagSet.StringVar(&opts.session, "session", os.Getenv("CAREERHUB_SESSION"), "session token from signing in (default $CAREERHUB_SESSION)")
	flagSet.StringVarP(&opts.tool, "tool", "t", "", "tool to open, e.g. resume-tailor")
	flagSet.StringVarP(&opts.applicationID, "application", "a", "", "application id to share with the tool")
	flagSet.StringVar(&opts.company, "company", "", "company name shown by the tool before verification")
	flagSet.StringVar(&opts.position, "position", "", "position title shown by the tool before verification")
	flagSet.StringVar(&opts.toolURLs, "tool-urls", os.Getenv("CAREERHUB_TOOL_URLS"), "tool base URLs as name=url,... (default $CAREERHUB_TOOL_URLS)")
	flagSet.BoolVar(&opts.print, "print", false, "print the URL instead of opening a browser")
	flagSet.BoolVar(&opts.query, "query", false, "carry small envelopes in the query string instead of the fragment")
	flagSet.DurationVar(&opts.timeout, "timeout", 30*time.Second, "give up on token issuance after this long")
	flagSet.BoolVarP(&opts.verbose, "verbose", "v", false, "log issuance details to stderr")

	if err := flagSet.Parse(args); err != nil {
		return nil, err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", rest[0])
	}
	if opts.tool == "" {
		return nil, errors.New("--tool is required")
	}
	return opts, nil
}

func run(args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	tools, err := config.ParseToolURLs(opts.toolURLs)
	if err != nil {
		return fmt.Errorf("--tool-urls: %w", err)
	}

	var urlOpener driven.URLOpener = opener.NewBrowser(stdout, stderr)
	if opts.print {
		urlOpener = opener.NewPrinter(stdout)
	}

	launcherOpts := []application.LauncherOption{application.WithIssueTimeout(opts.timeout)}
	if opts.query {
		launcherOpts = append(launcherOpts, application.WithQueryChannel())
	}

	launcher := application.NewLauncher(
		issuerclient.New(opts.host, logger),
		urlOpener,
		tools,
		opts.host,
		logger,
		launcherOpts...,
	)

	var app *model.Application
	if opts.applicationID != "" {
		app = &model.Application{
			ID:            opts.applicationID,
			CompanyName:   opts.company,
			PositionTitle: opts.position,
		}
	}

	var caller *model.Identity
	if opts.session != "" {
		caller = &model.Identity{SessionToken: opts.session}
	}

	return launcher.Launch(context.Background(), model.ToolType(opts.tool), app, caller)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
