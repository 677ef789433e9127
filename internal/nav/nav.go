// Package nav implements the stack navigator shared by the screens.
package nav

import (
	"context"
	"fmt"
	"sync"
)

// Route names a screen.
type Route string

const (
	Login       Route = "Login"
	Products    Route = "Products"
	ProductInfo Route = "ProductInfo"
)

// ParamProductID is the ProductInfo parameter holding the selected id.
const ParamProductID = "productId"

// Params are the navigation parameters handed to a screen.
type Params map[string]string

// Screen is a navigable screen. Focus runs every time the screen becomes
// the current one, including when returning to it with Back.
type Screen interface {
	Focus(ctx context.Context, params Params) error
}

type entry struct {
	route  Route
	params Params
}

// Navigator keeps a stack of visited routes.
type Navigator struct {
	mu        sync.Mutex
	screens   map[Route]Screen
	stack     []entry
	listeners []func(Route)
}

func New() *Navigator {
	return &Navigator{screens: make(map[Route]Screen)}
}

// Register binds a screen to a route, replacing any previous binding.
func (n *Navigator) Register(route Route, s Screen) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.screens[route] = s
}

// OnChange adds a listener called after every route change.
func (n *Navigator) OnChange(fn func(Route)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = append(n.listeners, fn)
}

// Navigate pushes route and focuses its screen. The error is the one
// returned by Focus; the route change has already happened by then.
func (n *Navigator) Navigate(ctx context.Context, route Route, params Params) error {
	n.mu.Lock()
	s, ok := n.screens[route]
	if !ok {
		n.mu.Unlock()
		return fmt.Errorf("navigate: unknown route %q", route)
	}
	n.stack = append(n.stack, entry{route: route, params: params})
	n.mu.Unlock()

	n.notify(route)
	return s.Focus(ctx, params)
}

// Reset replaces the whole stack with route, as after a login.
func (n *Navigator) Reset(ctx context.Context, route Route, params Params) error {
	n.mu.Lock()
	n.stack = nil
	n.mu.Unlock()
	return n.Navigate(ctx, route, params)
}

// Back pops the current route and refocuses the previous one. It reports
// false when there is nothing to go back to.
func (n *Navigator) Back(ctx context.Context) (bool, error) {
	n.mu.Lock()
	if len(n.stack) < 2 {
		n.mu.Unlock()
		return false, nil
	}
	n.stack = n.stack[:len(n.stack)-1]
	top := n.stack[len(n.stack)-1]
	s := n.screens[top.route]
	n.mu.Unlock()

	n.notify(top.route)
	if s == nil {
		return true, nil
	}
	return true, s.Focus(ctx, top.params)
}

// Current returns the route on top of the stack, or "" before the first
// navigation.
func (n *Navigator) Current() Route {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.stack) == 0 {
		return ""
	}
	return n.stack[len(n.stack)-1].route
}

func (n *Navigator) notify(route Route) {
	n.mu.Lock()
	ls := make([]func(Route), len(n.listeners))
	copy(ls, n.listeners)
	n.mu.Unlock()
	for _, fn := range ls {
		fn(route)
	}
}
