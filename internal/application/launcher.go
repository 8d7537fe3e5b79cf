package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/ericfisherdev/careerhub/internal/contextcodec"
	"github.com/ericfisherdev/careerhub/internal/domain/model"
	"github.com/ericfisherdev/careerhub/internal/domain/port/driven"
)

// ErrUnknownTool is returned when a launch names a tool with no configured URL.
var ErrUnknownTool = errors.New("unknown tool")

// Launcher opens external tools, attaching a context envelope for the record
// being worked on whenever one can be obtained.
type Launcher struct {
	issuer         driven.ContextIssuer
	opener         driven.URLOpener
	tools          map[model.ToolType]string
	callbackOrigin string
	preferQuery    bool
	issueTimeout   time.Duration
	now            func() time.Time
	logger         *slog.Logger
}

// LauncherOption configures a Launcher.
type LauncherOption func(*Launcher)

// WithQueryChannel makes the launcher carry small envelopes in the query
// string instead of the fragment.
func WithQueryChannel() LauncherOption {
	return func(l *Launcher) { l.preferQuery = true }
}

// WithIssueTimeout bounds each token issuance call. A call that runs past d
// is treated like any other issuance failure and the tool opens without
// context.
func WithIssueTimeout(d time.Duration) LauncherOption {
	return func(l *Launcher) { l.issueTimeout = d }
}

// WithLauncherClock sets the clock used for envelope timestamps.
func WithLauncherClock(now func() time.Time) LauncherOption {
	return func(l *Launcher) { l.now = now }
}

// NewLauncher creates a Launcher. tools maps each tool to its base URL;
// callbackOrigin is the host origin tools talk back to.
func NewLauncher(
	issuer driven.ContextIssuer,
	opener driven.URLOpener,
	tools map[model.ToolType]string,
	callbackOrigin string,
	logger *slog.Logger,
	opts ...LauncherOption,
) *Launcher {
	l := &Launcher{
		issuer:         issuer,
		opener:         opener,
		tools:          tools,
		callbackOrigin: callbackOrigin,
		now:            time.Now,
		logger:         logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Tools returns the configured tool names in sorted order.
func (l *Launcher) Tools() []model.ToolType {
	names := make([]model.ToolType, 0, len(l.tools))
	for name := range l.tools {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (l *Launcher) unknownTool(tool model.ToolType) error {
	names := make([]string, 0, len(l.tools))
	for _, name := range l.Tools() {
		names = append(names, string(name))
	}
	return fmt.Errorf("%w: %q (configured: %s)", ErrUnknownTool, tool, strings.Join(names, ", "))
}

// Resolve returns the URL a launch of tool would open. It fails only for an
// unknown tool or a context cancelled by the caller; every other problem,
// including an issuance deadline, degrades to the tool's base URL without
// context.
func (l *Launcher) Resolve(ctx context.Context, tool model.ToolType, app *model.Application, caller *model.Identity) (string, error) {
	base, ok := l.tools[tool]
	if !ok {
		return "", l.unknownTool(tool)
	}

	if app == nil {
		return base, nil
	}
	if caller == nil || (caller.UserID == "" && caller.SessionToken == "") {
		l.logger.Info("launching tool without context: no authenticated caller",
			"tool", tool, "application_id", app.ID)
		return base, nil
	}

	issued, err := l.issue(ctx, *caller, app.ID)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return "", fmt.Errorf("launch %s: %w", tool, ctx.Err())
		}
		l.logger.Warn("launching tool without context: token issuance failed",
			"tool", tool, "application_id", app.ID, "error", err)
		return base, nil
	}

	userID := issued.UserID
	if userID == "" {
		userID = caller.UserID
	}

	encoded, err := contextcodec.Encode(model.TransportEnvelope{
		Source:         model.EnvelopeSource,
		Version:        model.EnvelopeVersion,
		Timestamp:      l.now().Unix(),
		UserID:         userID,
		ApplicationID:  app.ID,
		CompanyName:    app.CompanyName,
		PositionTitle:  app.PositionTitle,
		Credential:     issued.Token,
		ExpiresAt:      issued.ExpiresAt.Unix(),
		CallbackOrigin: l.callbackOrigin,
	})
	if err != nil {
		l.logger.Warn("launching tool without context: encoding failed",
			"tool", tool, "application_id", app.ID, "error", err)
		return base, nil
	}

	channel := contextcodec.SelectChannel(encoded, l.preferQuery)
	dest, err := contextcodec.BuildURL(base, encoded, channel)
	if err != nil {
		l.logger.Warn("launching tool without context: invalid tool url",
			"tool", tool, "error", err)
		return base, nil
	}

	l.logger.Debug("tool launch resolved",
		"tool", tool,
		"application_id", app.ID,
		"channel", channel.String(),
		"payload_bytes", len(encoded),
	)
	return dest, nil
}

func (l *Launcher) issue(ctx context.Context, caller model.Identity, applicationID string) (model.IssuedToken, error) {
	if l.issueTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.issueTimeout)
		defer cancel()
	}
	return l.issuer.IssueContextToken(ctx, caller, applicationID)
}

// Launch resolves the destination of tool and opens it. Nothing is opened
// before token issuance has finished. The open itself ignores any deadline
// on ctx that issuance already ran into.
func (l *Launcher) Launch(ctx context.Context, tool model.ToolType, app *model.Application, caller *model.Identity) error {
	dest, err := l.Resolve(ctx, tool, app, caller)
	if err != nil {
		return err
	}
	if err := l.opener.Open(context.WithoutCancel(ctx), dest); err != nil {
		return fmt.Errorf("open %s: %w", tool, err)
	}
	return nil
}
