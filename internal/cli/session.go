package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/leadchat"
	"github.com/aretw0/leadchat/internal/presentation/tui"
	"github.com/aretw0/leadchat/pkg/config"
	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/aretw0/leadchat/pkg/flow"
	"github.com/aretw0/leadchat/pkg/observability"
	"github.com/aretw0/leadchat/pkg/runner"
	"github.com/aretw0/leadchat/pkg/tracking"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

// MetricsNamespace prefixes every exported instrument.
const MetricsNamespace = "leadchat"

// RunSession loads one page with the configured widget and chats on in/out until
// the visitor is handed off or leaves. Interruptions exit cleanly.
func RunSession(ctx context.Context, opts RunOptions, in io.Reader, out io.Writer) error {
	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	if opts.Debug {
		cfg.Advanced.Debug = true
	}
	logger := createLogger(opts.Debug)

	reg := prometheus.NewRegistry()
	widgetOpts := []leadchat.Option{
		leadchat.WithMetrics(observability.NewMetrics(MetricsNamespace, reg)),
	}
	if opts.Debug {
		widgetOpts = append(widgetOpts, leadchat.WithLifecycleHooks(createDebugHooks(logger)))
	}
	w, closer, err := NewWidget(cfg, opts.Storage, logger, widgetOpts...)
	if err != nil {
		return err
	}
	defer closer.Close()

	req, err := pageRequest(opts)
	if err != nil {
		return err
	}

	h := newHandler(cfg, opts, in, out)
	quiet := opts.JSON || opts.Quiet
	if !quiet {
		tui.PrintBanner(out, cfg.Profile.Name)
	}

	ctx, stop := context.WithCancel(ctx)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	if opts.MetricsAddr != "" {
		g.Go(func() error {
			return ServeDiagnostics(gctx, opts.MetricsAddr, NewDiagnosticsRouter(reg), logger)
		})
	}

	g.Go(func() error {
		defer stop()

		sess, err := w.Load(gctx, req, flow.WithRenderer(h))
		if err != nil {
			return fmt.Errorf("failed to load session: %w", err)
		}
		defer sess.Shutdown()

		r := runner.New(
			runner.WithInputHandler(h),
			runner.WithLogger(logger),
			runner.WithPrivacy(privacyText(cfg)),
			runner.WithStartClosed(opts.StartClosed),
		)
		runErr := r.Run(gctx, sess)

		if !quiet {
			if hd, ok := r.Handoff(); ok {
				printSystemMessage(out, "Handed off to %s.", hd.Channel)
			} else if lead := sess.Lead(); lead.IsComplete() {
				printSystemMessage(out, "Lead %s captured.", lead.ID)
			} else {
				printSystemMessage(out, "Left at step %d.", sess.State().Cursor)
			}
		}
		return handleExecutionError(runErr)
	})

	return g.Wait()
}

func pageRequest(opts RunOptions) (tracking.PageRequest, error) {
	url := opts.URL
	if url == "" {
		url = "https://localhost/"
	}
	req, err := tracking.NewPageRequest(url)
	if err != nil {
		return tracking.PageRequest{}, err
	}
	req.Title = opts.Title
	req.Referrer = opts.Referrer
	req.Device = domain.Device{UserAgent: opts.UserAgent, IsMobile: opts.Mobile}
	return req, nil
}

func newHandler(cfg *config.Config, opts RunOptions, in io.Reader, out io.Writer) runner.IOHandler {
	if opts.JSON {
		return runner.NewJSONHandler(in, out, runner.WithJSONMaxInputSize(cfg.Advanced.MaxInputSize))
	}
	th := []runner.TextHandlerOption{
		runner.WithBotName(cfg.Profile.Name),
		runner.WithMaxInputSize(cfg.Advanced.MaxInputSize),
	}
	if !opts.Quiet {
		th = append(th, runner.WithTextHandlerRenderer(tui.NewRenderer(80)))
	}
	return runner.NewTextHandler(in, out, th...)
}

func privacyText(cfg *config.Config) string {
	if !cfg.Privacy.Enabled {
		return ""
	}
	if cfg.Privacy.ModalTitle == "" {
		return cfg.Privacy.ModalContent
	}
	return "# " + cfg.Privacy.ModalTitle + "\n\n" + cfg.Privacy.ModalContent
}
