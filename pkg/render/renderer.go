package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/loomui/loom/internal/errors"
	"github.com/loomui/loom/pkg/suspend"
	"github.com/loomui/loom/pkg/vtree"
)

// Config configures the HTML renderer.
type Config struct {
	// Hydratable brackets component, suspense, and raw boundaries with
	// comment markers and emits the trailing state block, so the output
	// can later be hydrated on a client.
	Hydratable bool
}

// Renderer handles server-side rendering of virtual trees to HTML.
//
// A Renderer is confined to one render request; boundary ids are
// assigned sequentially in document order, which is the same order the
// hydrating client encounters them.
type Renderer struct {
	config    Config
	idCounter uint64
	state     map[string]json.RawMessage
	tracer    trace.Tracer
}

// New creates a Renderer with the given configuration.
func New(config Config) *Renderer {
	return &Renderer{
		config: config,
		state:  map[string]json.RawMessage{},
		tracer: otel.Tracer("loom/render"),
	}
}

// RenderToString renders a virtual tree to an HTML string, including
// the trailing state block when hydratable state was collected.
// Rendering waits for any suspension encountered, bounded by ctx.
func (r *Renderer) RenderToString(ctx context.Context, node *vtree.Node) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(ctx, &buf, node); err != nil {
		return "", err
	}
	if err := r.WriteStateBlock(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter streams a virtual tree to the given writer. The state
// block is not written; callers composing a page call WriteStateBlock
// once all content has been rendered.
func (r *Renderer) RenderToWriter(ctx context.Context, w io.Writer, node *vtree.Node) error {
	ctx, span := r.tracer.Start(ctx, "render.tree",
		trace.WithAttributes(attribute.Bool("render.hydratable", r.config.Hydratable)))
	defer span.End()
	return r.renderNode(ctx, w, node)
}

// WriteStateBlock writes the trailing embedded data block carrying
// serialized component state, if any was collected. Hydration consumes
// the block and removes it from the physical tree.
func (r *Renderer) WriteStateBlock(w io.Writer) error {
	if !r.config.Hydratable || len(r.state) == 0 {
		return nil
	}
	data, err := json.Marshal(r.state)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, `<script type="%s">%s</script>`, StateBlockType, data)
	return err
}

// Reset clears the boundary id counter and collected state for reuse.
func (r *Renderer) Reset() {
	r.idCounter = 0
	r.state = map[string]json.RawMessage{}
}

func (r *Renderer) nextID() uint64 {
	r.idCounter++
	return r.idCounter
}

// renderNode dispatches rendering based on node kind.
func (r *Renderer) renderNode(ctx context.Context, w io.Writer, node *vtree.Node) error {
	if node == nil {
		return nil
	}

	switch node.Kind {
	case vtree.KindEmpty:
		return nil
	case vtree.KindText:
		_, err := io.WriteString(w, escapeHTML(node.Text))
		return err
	case vtree.KindRaw:
		return r.renderRaw(w, node)
	case vtree.KindElement:
		return r.renderElement(ctx, w, node)
	case vtree.KindList:
		return r.renderChildren(ctx, w, node)
	case vtree.KindComponent:
		return r.renderComponent(ctx, w, node)
	case vtree.KindPortal:
		// Portals render into a live foreign target; they have no place
		// in the document stream and hydrate by fresh construction.
		return nil
	case vtree.KindSuspense:
		return r.renderSuspense(ctx, w, node)
	default:
		return fmt.Errorf("render: unknown node kind %d", node.Kind)
	}
}

func (r *Renderer) renderChildren(ctx context.Context, w io.Writer, node *vtree.Node) error {
	for _, child := range node.Children {
		if err := r.renderNode(ctx, w, child); err != nil {
			return err
		}
	}
	return nil
}

// renderElement renders an HTML element with its attributes and children.
func (r *Renderer) renderElement(ctx context.Context, w io.Writer, node *vtree.Node) error {
	if _, err := io.WriteString(w, "<"+node.Tag); err != nil {
		return err
	}
	for _, a := range node.Attrs {
		if _, err := fmt.Fprintf(w, ` %s="%s"`, a.Key, escapeAttr(a.Value)); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, ">"); err != nil {
		return err
	}

	if isVoidElement(node.Tag) {
		return nil
	}

	if err := r.renderChildren(ctx, w, node); err != nil {
		return err
	}

	_, err := io.WriteString(w, "</"+node.Tag+">")
	return err
}

func (r *Renderer) renderRaw(w io.Writer, node *vtree.Node) error {
	if r.config.Hydratable {
		if err := r.writeMarker(w, OpenMarker(MarkerRaw, r.nextID())); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, node.Text); err != nil {
		return err
	}
	if r.config.Hydratable {
		return r.writeMarker(w, CloseMarker(MarkerRaw))
	}
	return nil
}

// renderComponent runs the component's render function and renders its
// output. A pending suspension is awaited, bounded by ctx; the fallback
// is never emitted into the stream.
func (r *Renderer) renderComponent(ctx context.Context, w io.Writer, node *vtree.Node) error {
	id := r.nextID()
	if r.config.Hydratable {
		if err := r.writeMarker(w, OpenMarker(MarkerComponent, id)); err != nil {
			return err
		}
	}

	var out *vtree.Node
	for {
		n, err := node.Comp.Render(node.Props)
		if err == nil {
			out = n
			break
		}
		sp, ok := suspend.Pending(err)
		if !ok {
			return errors.New("E103").Wrap(err)
		}
		select {
		case <-ctx.Done():
			return errors.New("E201").Wrap(ctx.Err())
		case <-sp.Done():
		}
	}

	if err := r.renderNode(ctx, w, out); err != nil {
		return err
	}

	if r.config.Hydratable {
		if saver, ok := node.Comp.(vtree.StateSaver); ok {
			if v, has := saver.SaveState(); has {
				data, err := json.Marshal(v)
				if err != nil {
					return err
				}
				r.state[strconv.FormatUint(id, 10)] = data
			}
		}
		return r.writeMarker(w, CloseMarker(MarkerComponent))
	}
	return nil
}

func (r *Renderer) renderSuspense(ctx context.Context, w io.Writer, node *vtree.Node) error {
	if r.config.Hydratable {
		if err := r.writeMarker(w, OpenMarker(MarkerSuspense, r.nextID())); err != nil {
			return err
		}
	}
	// Children always render on the server side; suspensions inside
	// them are awaited at the component boundary.
	if err := r.renderChildren(ctx, w, node); err != nil {
		return err
	}
	if r.config.Hydratable {
		return r.writeMarker(w, CloseMarker(MarkerSuspense))
	}
	return nil
}

func (r *Renderer) writeMarker(w io.Writer, body string) error {
	_, err := io.WriteString(w, "<!--"+body+"-->")
	return err
}

// isVoidElement returns true for HTML elements that never have closing
// tags.
func isVoidElement(tag string) bool {
	switch tag {
	case "area", "base", "br", "col", "embed", "hr", "img", "input",
		"link", "meta", "param", "source", "track", "wbr":
		return true
	}
	return false
}
