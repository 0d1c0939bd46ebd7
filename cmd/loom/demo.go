package main

import (
	"net/http"
	"time"

	"github.com/loomui/loom/pkg/bundle"
	"github.com/loomui/loom/pkg/server"
	"github.com/loomui/loom/pkg/suspend"
	"github.com/loomui/loom/pkg/target"
	"github.com/loomui/loom/pkg/vtree"
)

// The demo application served when no host application embeds Loom.

// counter is a live component: clicks re-render it over the session.
type counter struct {
	link *bundle.Link
	n    int
}

func (c *counter) Bind(l *bundle.Link) { c.link = l }

func (c *counter) Render(any) (*vtree.Node, error) {
	return vtree.El("section",
		vtree.SetAttr("class", "counter"),
		vtree.El("p", vtree.Textf("clicked %d times", c.n)),
		vtree.El("button",
			vtree.OnNamed("click", "increment", func(target.Event) {
				c.n++
				c.link.Schedule()
			}),
			vtree.Text("click me"),
		),
	), nil
}

// slowGreeting suspends briefly before resolving, to exercise the
// suspense path end to end.
type slowGreeting struct {
	sp    *suspend.Suspension
	ready bool
}

func (g *slowGreeting) Render(any) (*vtree.Node, error) {
	if !g.ready {
		if g.sp == nil {
			g.sp = suspend.New()
			time.AfterFunc(300*time.Millisecond, func() {
				g.ready = true
				g.sp.Resume()
			})
		}
		return nil, suspend.Throw(g.sp)
	}
	return vtree.El("p", vtree.Text("hello from the other side")), nil
}

type homePage struct{}

func (homePage) Render(any) (*vtree.Node, error) {
	return vtree.El("main",
		vtree.El("h1", vtree.Text("Loom demo")),
		vtree.Comp(&counter{}, nil),
		vtree.Suspense(
			vtree.El("p", vtree.Text("loading…")),
			vtree.Comp(&slowGreeting{}, nil),
		),
	), nil
}

type aboutPage struct{}

func (aboutPage) Render(any) (*vtree.Node, error) {
	return vtree.El("main",
		vtree.El("h1", vtree.Text("About")),
		vtree.El("p", vtree.Text("Loom keeps the component tree on the server.")),
	), nil
}

func demoPages() map[string]server.PageDef {
	return map[string]server.PageDef{
		"/": {
			Title:   "Loom demo",
			Scripts: []string{"/assets/loom.js"},
			New: func(*http.Request) (vtree.Component, any) {
				return homePage{}, nil
			},
		},
		"/about": {
			Title:   "About – Loom",
			Scripts: []string{"/assets/loom.js"},
			New: func(*http.Request) (vtree.Component, any) {
				return aboutPage{}, nil
			},
		},
	}
}
