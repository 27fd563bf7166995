package ports

import (
	"context"

	"github.com/aretw0/leadchat/pkg/domain"
)

// Renderer defines how render commands reach the host UI.
// The session emits commands, and the host implements this interface to display them.
type Renderer interface {
	Render(ctx context.Context, cmd domain.RenderCommand)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(ctx context.Context, cmd domain.RenderCommand)

// Render calls f(ctx, cmd).
func (f RendererFunc) Render(ctx context.Context, cmd domain.RenderCommand) { f(ctx, cmd) }

// NopRenderer discards every command.
type NopRenderer struct{}

// Render does nothing.
func (NopRenderer) Render(context.Context, domain.RenderCommand) {}
