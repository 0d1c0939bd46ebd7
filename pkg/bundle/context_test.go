package bundle

import (
	"reflect"
	"testing"

	"github.com/loomui/loom/pkg/target"
	"github.com/loomui/loom/pkg/vtree"
)

// themedComp consumes a string context value.
type themedComp struct {
	link   *Link
	handle *ContextHandle[string]
}

func (c *themedComp) Bind(l *Link) { c.link = l }

func (c *themedComp) Render(any) (*vtree.Node, error) {
	if c.handle == nil {
		h, ok := UseContext[string](c.link)
		if !ok {
			return vtree.Text("no provider"), nil
		}
		c.handle = h
	}
	return vtree.El("b", vtree.Text(c.handle.Get())), nil
}

func (c *themedComp) Finalize() {
	if c.handle != nil {
		c.handle.Release()
	}
}

func providerTree(provider *Provider[string], consumer vtree.Component) func(props any) *vtree.Node {
	return func(props any) *vtree.Node {
		return vtree.Comp(provider, ProviderProps[string]{
			Value:    props.(string),
			Children: vtree.El("div", vtree.Comp(consumer, nil)),
		})
	}
}

func TestContextValueReachesConsumer(t *testing.T) {
	_, host, root := newTestRoot(t)
	provider := &Provider[string]{}
	consumer := &themedComp{}
	top := &viewComp{body: providerTree(provider, consumer)}
	root.Mount(top, "dark")

	if got := target.InnerHTML(host); got != "<div><b>dark</b></div>" {
		t.Fatalf("got %s", got)
	}
}

func TestContextChangeRerendersConsumer(t *testing.T) {
	_, host, root := newTestRoot(t)
	provider := &Provider[string]{}
	consumer := &themedComp{}
	top := &viewComp{body: providerTree(provider, consumer)}
	sc := root.Mount(top, "dark")

	// The consumer's own props are unchanged; only the provided value
	// moves, so the re-render arrives via the subscription.
	root.UpdateProps(sc, "light")
	if got := target.InnerHTML(host); got != "<div><b>light</b></div>" {
		t.Fatalf("consumer did not observe new value: %s", got)
	}
}

func TestContextWithoutProvider(t *testing.T) {
	_, host, root := newTestRoot(t)
	consumer := &themedComp{}
	top := &viewComp{body: func(any) *vtree.Node {
		return vtree.El("div", vtree.Comp(consumer, nil))
	}}
	root.Mount(top, nil)

	if got := target.InnerHTML(host); got != "<div>no provider</div>" {
		t.Fatalf("got %s", got)
	}
}

func TestContextReleaseStopsNotifications(t *testing.T) {
	_, _, root := newTestRoot(t)
	provider := &Provider[string]{}
	consumer := &themedComp{}
	top := &viewComp{body: providerTree(provider, consumer)}
	sc := root.Mount(top, "a")

	root.Unmount(sc)
	if len(provider.store.subs) != 0 {
		t.Fatalf("finalized consumer still subscribed: %d", len(provider.store.subs))
	}
}

func TestFindParent(t *testing.T) {
	_, _, root := newTestRoot(t)
	child := &themedComp{}
	parent := &viewComp{body: func(any) *vtree.Node {
		return vtree.El("div", vtree.Comp(child, nil))
	}}
	root.Mount(parent, nil)

	got, ok := child.link.FindParent(reflect.TypeOf(parent))
	if !ok || got != vtree.Component(parent) {
		t.Fatalf("FindParent = %v, %v", got, ok)
	}
}
