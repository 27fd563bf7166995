package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/muesli/termenv"
)

// ContentRenderer transforms bot text before it is printed, e.g. markdown to ANSI.
type ContentRenderer func(string) (string, error)

// TextHandler draws the conversation as plain lines.
type TextHandler struct {
	Writer   io.Writer
	Renderer ContentRenderer

	input       *linePump
	interactive bool
	out         *termenv.Output
	botName     string
	consent     string
	handoffs    handoffs

	mu sync.Mutex
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the content renderer.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// WithBotName sets the name printed before bot messages.
func WithBotName(name string) TextHandlerOption {
	return func(h *TextHandler) {
		h.botName = name
	}
}

// WithInteractive overrides terminal detection on the input.
func WithInteractive(interactive bool) TextHandlerOption {
	return func(h *TextHandler) {
		h.interactive = interactive
	}
}

// WithMaxInputSize bounds one line of visitor input in bytes.
func WithMaxInputSize(size int) TextHandlerOption {
	return func(h *TextHandler) {
		h.input.sanitizer.MaxSize = size
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Writer:      w,
		input:       newLinePump(r),
		interactive: isTerminal(r),
		out:         termenv.NewOutput(w),
		botName:     "bot",
		handoffs:    newHandoffs(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Render implements ports.Renderer.
func (h *TextHandler) Render(_ context.Context, cmd domain.RenderCommand) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch cmd.Kind {
	case domain.RenderBotMessage:
		if m, ok := cmd.Payload.(domain.Message); ok {
			h.line(h.style(h.botName+":", "#25d366").Bold().String() + " " + h.content(m.Text))
		}
	case domain.RenderUserMessage:
		// Terminal users already see what they typed.
		if m, ok := cmd.Payload.(domain.Message); ok && !h.interactive {
			h.line("> " + m.Text)
		}
	case domain.RenderError, domain.RenderNudge:
		if m, ok := cmd.Payload.(domain.Message); ok {
			h.line(h.style("! "+m.Text, "#ef4444").String())
		}
	case domain.RenderTypingShow:
		if h.interactive {
			fmt.Fprint(h.Writer, h.style("...", "#9ca3af").Faint().String()+"\r")
		}
	case domain.RenderTypingHide:
		if h.interactive {
			fmt.Fprint(h.Writer, "   \r")
		}
	case domain.RenderInputEnable:
		if p, ok := cmd.Payload.(domain.InputPrompt); ok && p.Placeholder != "" {
			h.line(h.style("("+p.Placeholder+")", "#9ca3af").Faint().String())
		}
	case domain.RenderConsentShow:
		if f, ok := cmd.Payload.(domain.ConsentForm); ok {
			h.consent = f.Label
			box := "[ ]"
			if f.Checked {
				box = "[x]"
			}
			h.line(fmt.Sprintf("%s %s  (/consent, /privacy: %s)", box, f.Label, f.LinkText))
		}
	case domain.RenderConsentConfirmed:
		h.line("[x] " + h.consent)
	case domain.RenderNotification:
		if n, ok := cmd.Payload.(domain.Notification); ok {
			h.line(h.style(fmt.Sprintf("(%d) %s", n.Unread, n.Text), "#f59e0b").String())
		}
	case domain.RenderChannelChoice:
		if c, ok := cmd.Payload.(domain.ChannelChoice); ok {
			h.line(c.Text)
			h.line("  /app  " + c.AppURL)
			h.line("  /web  " + c.WebURL)
			h.line(fmt.Sprintf("  %s in %ds", c.Default, c.Seconds))
		}
	case domain.RenderCountdown:
		if n, ok := cmd.Payload.(int); ok && h.interactive {
			fmt.Fprintf(h.Writer, "%ds \r", n)
		}
	case domain.RenderOpenURL:
		if hd, ok := cmd.Payload.(domain.Handoff); ok {
			h.line(h.style("-> "+hd.URL, "#25d366").Underline().String())
			h.handoffs.publish(hd)
		}
	case domain.RenderChatOpen:
		h.line(h.style("--- chat open ---", "#9ca3af").Faint().String())
	case domain.RenderChatClose:
		h.line(h.style("--- chat closed ---", "#9ca3af").Faint().String())
	}
}

// Input reads the next line. A prompt is printed in interactive mode only.
func (h *TextHandler) Input(ctx context.Context) (string, error) {
	if h.interactive && ctx.Err() == nil {
		h.mu.Lock()
		fmt.Fprint(h.Writer, "> ")
		h.mu.Unlock()
	}
	return h.input.next(ctx, func(err error) {
		h.mu.Lock()
		defer h.mu.Unlock()
		fmt.Fprintf(h.Writer, "Error: %v. Please try again.\n", err)
	})
}

// SystemOutput prints msg with a [System] prefix. Markdown is rendered when a
// content renderer is set.
func (h *TextHandler) SystemOutput(_ context.Context, msg string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintf(h.Writer, "[System] %s\n", h.content(msg))
	return err
}

// Handoffs implements IOHandler.
func (h *TextHandler) Handoffs() <-chan domain.Handoff {
	return h.handoffs
}

func (h *TextHandler) line(s string) {
	fmt.Fprintln(h.Writer, s)
}

func (h *TextHandler) content(s string) string {
	if h.Renderer == nil {
		return s
	}
	rendered, err := h.Renderer(s)
	if err != nil {
		return s
	}
	return strings.TrimSpace(rendered)
}

func (h *TextHandler) style(s, color string) termenv.Style {
	return h.out.String(s).Foreground(h.out.Color(color))
}
