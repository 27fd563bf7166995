package middleware

import "github.com/aretw0/leadchat/pkg/ports"

// Middleware allows wrapping a Backend to add behavior.
type Middleware func(ports.Backend) ports.Backend

// Wrap applies mws to b. The first middleware is the outermost.
func Wrap(b ports.Backend, mws ...Middleware) ports.Backend {
	for i := len(mws) - 1; i >= 0; i-- {
		b = mws[i](b)
	}
	return b
}
