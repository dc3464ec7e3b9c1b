// Package routing binds controllers to echo. A controller describes its
// endpoints as plain Definition values; the Binder registers them and
// composes each route's middleware chain in declared order.
package routing

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Definition maps (Method, Path) to Func behind an ordered middleware list.
// Func should be a method value (ctrl.Login) so the controller receiver is
// bound when the definition is built, not when the route is called.
type Definition struct {
	Path        string
	Method      string
	Func        echo.HandlerFunc
	Middlewares []echo.MiddlewareFunc
}

// Controller exposes the routes it serves. The list is built once in the
// controller constructor and must not change afterwards.
type Controller interface {
	Routes() []Definition
}

// Binder registers route definitions on an echo instance, optionally under a
// group prefix. Duplicates are detected against every route the instance
// already serves, so two binders on the same prefix cannot shadow each other.
type Binder struct {
	e      *echo.Echo
	prefix string
	add    func(method, path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	log    zerolog.Logger
}

func NewBinder(e *echo.Echo, prefix string, log zerolog.Logger) *Binder {
	b := &Binder{e: e, prefix: prefix, add: e.Add, log: log}
	if prefix != "" {
		b.add = e.Group(prefix).Add
	}
	return b
}

// BindRoutes registers every definition in order. A (method, full path) that
// is already routed or a nil handler is a programming error and panics.
func (b *Binder) BindRoutes(defs []Definition) {
	for _, d := range defs {
		method := strings.ToUpper(d.Method)
		full := b.prefix + d.Path
		key := method + " " + full
		if d.Func == nil {
			panic(fmt.Sprintf("routing: nil handler for %s", key))
		}
		if b.routed(method, full) {
			panic(fmt.Sprintf("routing: duplicate route %s", key))
		}

		b.add(method, d.Path, Chain(d.Func, d.Middlewares...))
		b.log.Info().Str("method", method).Str("path", full).Msg("route bound")
	}
}

func (b *Binder) routed(method, path string) bool {
	for _, r := range b.e.Routes() {
		if r.Method == method && r.Path == path {
			return true
		}
	}
	return false
}

// Mount binds a controller's routes under prefix.
func Mount(e *echo.Echo, prefix string, c Controller, log zerolog.Logger) *Binder {
	b := NewBinder(e, prefix, log.With().Str("prefix", prefix).Logger())
	b.BindRoutes(c.Routes())
	return b
}

// Chain wraps h so that mws run first-to-last before it. A middleware that
// returns an error without calling next stops the chain there.
func Chain(h echo.HandlerFunc, mws ...echo.MiddlewareFunc) echo.HandlerFunc {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
