package target

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Counters tallies mutations applied to a MemDoc. Tests use the deltas
// to assert reconciliation properties such as idempotence (zero
// mutations for an unchanged tree) and minimal keyed moves.
type Counters struct {
	CreatedElements int
	CreatedTexts    int
	CreatedComments int
	Inserts         int
	Moves           int
	Removes         int
	AttrSets        int
	AttrRemoves     int
	TextSets        int
	ListenerAdds    int
	ListenerRemoves int
}

// Mutations returns the total count of structural tree mutations,
// excluding node creation and listener bookkeeping.
func (c Counters) Mutations() int {
	return c.Inserts + c.Moves + c.Removes + c.AttrSets + c.AttrRemoves + c.TextSets
}

// OpKind identifies one mutation operation in the op stream.
type OpKind uint8

const (
	OpCreateElement OpKind = iota + 1
	OpCreateText
	OpCreateComment
	OpInsert
	OpMove
	OpRemove
	OpSetAttr
	OpRemoveAttr
	OpSetText
)

// String returns the string representation of the OpKind.
func (k OpKind) String() string {
	switch k {
	case OpCreateElement:
		return "CreateElement"
	case OpCreateText:
		return "CreateText"
	case OpCreateComment:
		return "CreateComment"
	case OpInsert:
		return "Insert"
	case OpMove:
		return "Move"
	case OpRemove:
		return "Remove"
	case OpSetAttr:
		return "SetAttr"
	case OpRemoveAttr:
		return "RemoveAttr"
	case OpSetText:
		return "SetText"
	default:
		return "Unknown"
	}
}

// Op is one mutation, suitable for streaming to a remote mirror.
type Op struct {
	Kind   OpKind `json:"op"`
	Node   uint64 `json:"node"`
	Parent uint64 `json:"parent,omitempty"`
	Ref    uint64 `json:"ref,omitempty"`
	Tag    string `json:"tag,omitempty"`
	Key    string `json:"key,omitempty"`
	Value  string `json:"value,omitempty"`
}

// MemDoc is an in-memory Document. It is not safe for concurrent use;
// like a rendering root, a MemDoc is confined to one task.
type MemDoc struct {
	Counters Counters

	nextNode     uint64
	nextListener uint64
	nodes        map[uint64]Node
	observer     func(Op)
}

// NewMemDoc creates an empty in-memory document.
func NewMemDoc() *MemDoc {
	return &MemDoc{nodes: map[uint64]Node{}}
}

// Observe registers a callback receiving every mutation op. Live server
// sessions use this to mirror mutations to a remote client.
func (d *MemDoc) Observe(fn func(Op)) { d.observer = fn }

// NodeByID returns the node with the given id, or nil.
func (d *MemDoc) NodeByID(id uint64) Node { return d.nodes[id] }

func (d *MemDoc) emit(op Op) {
	if d.observer != nil {
		d.observer(op)
	}
}

func (d *MemDoc) register(n Node, id uint64) {
	d.nodes[id] = n
}

// CreateElement implements Document.
func (d *MemDoc) CreateElement(tag string) Element {
	d.Counters.CreatedElements++
	el := &MemElement{memBase: d.newBase(), tag: tag}
	el.self = el
	d.register(el, el.id)
	d.emit(Op{Kind: OpCreateElement, Node: el.id, Tag: tag})
	return el
}

// CreateText implements Document.
func (d *MemDoc) CreateText(data string) Text {
	d.Counters.CreatedTexts++
	t := &MemText{memBase: d.newBase(), data: data}
	t.self = t
	d.register(t, t.id)
	d.emit(Op{Kind: OpCreateText, Node: t.id, Value: data})
	return t
}

// CreateComment implements Document.
func (d *MemDoc) CreateComment(data string) Comment {
	d.Counters.CreatedComments++
	c := &MemComment{memBase: d.newBase(), data: data}
	c.self = c
	d.register(c, c.id)
	d.emit(Op{Kind: OpCreateComment, Node: c.id, Value: data})
	return c
}

// CreateRaw implements Document by parsing the fragment.
func (d *MemDoc) CreateRaw(fragment string) []Node {
	return d.ParseFragment(fragment)
}

func (d *MemDoc) newBase() memBase {
	d.nextNode++
	return memBase{doc: d, id: d.nextNode}
}

// memBase carries the identity and parent link shared by all node
// kinds. self points back at the outer node so promoted methods can
// locate it among its siblings.
type memBase struct {
	doc    *MemDoc
	id     uint64
	parent *MemElement
	self   Node
}

// ID returns the node's document-unique id, used by the op stream.
func (b *memBase) ID() uint64 { return b.id }

// Parent implements Node.
func (b *memBase) Parent() Element {
	if b.parent == nil {
		return nil
	}
	return b.parent
}

// NextSibling implements Node.
func (b *memBase) NextSibling() Node {
	if b.parent == nil {
		return nil
	}
	i := b.parent.indexOf(b.self)
	if i < 0 || i+1 >= len(b.parent.children) {
		return nil
	}
	return b.parent.children[i+1]
}

// MemElement is an in-memory element node.
type MemElement struct {
	memBase
	tag       string
	attrs     []Attr
	children  []Node
	listeners map[ListenerHandle]memListener
}

type memListener struct {
	event string
	fn    EventFunc
}

// TagName implements Element.
func (e *MemElement) TagName() string { return e.tag }

// SetAttr implements Element.
func (e *MemElement) SetAttr(key, value string) {
	e.doc.Counters.AttrSets++
	e.doc.emit(Op{Kind: OpSetAttr, Node: e.id, Key: key, Value: value})
	for i := range e.attrs {
		if e.attrs[i].Key == key {
			e.attrs[i].Value = value
			return
		}
	}
	e.attrs = append(e.attrs, Attr{Key: key, Value: value})
}

// RemoveAttr implements Element.
func (e *MemElement) RemoveAttr(key string) {
	for i := range e.attrs {
		if e.attrs[i].Key == key {
			e.attrs = append(e.attrs[:i], e.attrs[i+1:]...)
			e.doc.Counters.AttrRemoves++
			e.doc.emit(Op{Kind: OpRemoveAttr, Node: e.id, Key: key})
			return
		}
	}
}

// Attr implements Element.
func (e *MemElement) Attr(key string) (string, bool) {
	for _, a := range e.attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// Attrs returns the element's attributes in document order.
func (e *MemElement) Attrs() []Attr {
	out := make([]Attr, len(e.attrs))
	copy(out, e.attrs)
	return out
}

func (e *MemElement) indexOf(child Node) int {
	for i, c := range e.children {
		if c == child {
			return i
		}
	}
	return -1
}

func baseOf(n Node) *memBase {
	switch v := n.(type) {
	case *MemElement:
		return &v.memBase
	case *MemText:
		return &v.memBase
	case *MemComment:
		return &v.memBase
	default:
		panic(fmt.Sprintf("target: foreign node %T in MemDoc", n))
	}
}

// InsertBefore implements Element. Inserting a node that already has a
// parent moves it.
func (e *MemElement) InsertBefore(child, ref Node) {
	cb := baseOf(child)
	if cb.parent != nil {
		old := cb.parent
		i := old.indexOf(child)
		old.children = append(old.children[:i], old.children[i+1:]...)
		cb.parent = nil
		e.doc.Counters.Moves++
		e.doc.emit(Op{Kind: OpMove, Node: cb.id, Parent: e.id, Ref: idOf(ref)})
	} else {
		e.doc.Counters.Inserts++
		e.doc.emit(Op{Kind: OpInsert, Node: cb.id, Parent: e.id, Ref: idOf(ref)})
	}

	idx := len(e.children)
	if ref != nil {
		idx = e.indexOf(ref)
		if idx < 0 {
			panic("target: InsertBefore reference is not a child of this element")
		}
	}
	e.children = append(e.children, nil)
	copy(e.children[idx+1:], e.children[idx:])
	e.children[idx] = child
	cb.parent = e
}

func idOf(n Node) uint64 {
	if n == nil {
		return 0
	}
	return baseOf(n).id
}

// RemoveChild implements Element.
func (e *MemElement) RemoveChild(child Node) {
	i := e.indexOf(child)
	if i < 0 {
		panic("target: RemoveChild of a node that is not a child")
	}
	e.children = append(e.children[:i], e.children[i+1:]...)
	baseOf(child).parent = nil
	e.doc.Counters.Removes++
	e.doc.emit(Op{Kind: OpRemove, Node: idOf(child)})
}

// FirstChild implements Element.
func (e *MemElement) FirstChild() Node {
	if len(e.children) == 0 {
		return nil
	}
	return e.children[0]
}

// Children returns the element's children in document order.
func (e *MemElement) Children() []Node {
	out := make([]Node, len(e.children))
	copy(out, e.children)
	return out
}

// AddListener implements Element.
func (e *MemElement) AddListener(event string, fn EventFunc) ListenerHandle {
	e.doc.Counters.ListenerAdds++
	e.doc.nextListener++
	h := ListenerHandle(e.doc.nextListener)
	if e.listeners == nil {
		e.listeners = map[ListenerHandle]memListener{}
	}
	e.listeners[h] = memListener{event: event, fn: fn}
	return h
}

// RemoveListener implements Element.
func (e *MemElement) RemoveListener(h ListenerHandle) {
	if _, ok := e.listeners[h]; ok {
		delete(e.listeners, h)
		e.doc.Counters.ListenerRemoves++
	}
}

// ListenerCount returns the number of attached listeners.
func (e *MemElement) ListenerCount() int { return len(e.listeners) }

// Fire dispatches an event to every listener bound for it.
func (e *MemElement) Fire(event string, payload any) {
	ev := Event{Type: event, Target: e, Payload: payload}
	for _, l := range e.listeners {
		if l.event == event {
			l.fn(ev)
		}
	}
}

// Clone implements Node. Listeners are not cloned.
func (e *MemElement) Clone() Node {
	clone := e.doc.CreateElement(e.tag).(*MemElement)
	clone.attrs = append([]Attr(nil), e.attrs...)
	for _, c := range e.children {
		cc := c.Clone()
		clone.children = append(clone.children, cc)
		baseOf(cc).parent = clone
	}
	return clone
}

// MemText is an in-memory text node.
type MemText struct {
	memBase
	data string
}

// Data implements Text.
func (t *MemText) Data() string { return t.data }

// SetData implements Text.
func (t *MemText) SetData(data string) {
	t.data = data
	t.doc.Counters.TextSets++
	t.doc.emit(Op{Kind: OpSetText, Node: t.id, Value: data})
}

// Clone implements Node.
func (t *MemText) Clone() Node { return t.doc.CreateText(t.data) }

// MemComment is an in-memory comment node.
type MemComment struct {
	memBase
	data string
}

// Data implements Comment.
func (c *MemComment) Data() string { return c.data }

// Clone implements Node.
func (c *MemComment) Clone() Node { return c.doc.CreateComment(c.data) }

// OuterHTML serializes a node subtree to HTML.
func OuterHTML(n Node) string {
	var b strings.Builder
	writeNode(&b, n)
	return b.String()
}

// InnerHTML serializes an element's children to HTML.
func InnerHTML(e Element) string {
	var b strings.Builder
	me := e.(*MemElement)
	for _, c := range me.children {
		writeNode(&b, c)
	}
	return b.String()
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

func writeNode(b *strings.Builder, n Node) {
	switch v := n.(type) {
	case *MemElement:
		b.WriteByte('<')
		b.WriteString(v.tag)
		for _, a := range v.attrs {
			b.WriteByte(' ')
			b.WriteString(a.Key)
			b.WriteString(`="`)
			b.WriteString(escapeAttrValue(a.Value))
			b.WriteByte('"')
		}
		b.WriteByte('>')
		if voidElements[v.tag] {
			return
		}
		for _, c := range v.children {
			writeNode(b, c)
		}
		b.WriteString("</")
		b.WriteString(v.tag)
		b.WriteByte('>')
	case *MemText:
		b.WriteString(escapeText(v.data))
	case *MemComment:
		b.WriteString("<!--")
		b.WriteString(v.data)
		b.WriteString("-->")
	}
}

func escapeText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

func escapeAttrValue(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}

// ParseFragment parses an HTML fragment into detached nodes belonging
// to this document. Hydration uses it to reconstruct a server-rendered
// tree; CreateRaw uses it for raw fragments.
func (d *MemDoc) ParseFragment(fragment string) []Node {
	ctx := &html.Node{Type: html.ElementNode, DataAtom: atom.Div, Data: "div"}
	parsed, err := html.ParseFragment(strings.NewReader(fragment), ctx)
	if err != nil {
		// The x/net/html parser recovers from malformed input; an error
		// here means the reader failed, which cannot happen for strings.
		panic(fmt.Sprintf("target: fragment parse: %v", err))
	}
	var out []Node
	for _, hn := range parsed {
		if n := d.convert(hn); n != nil {
			out = append(out, n)
		}
	}
	return out
}

func (d *MemDoc) convert(hn *html.Node) Node {
	switch hn.Type {
	case html.ElementNode:
		el := d.CreateElement(hn.Data).(*MemElement)
		for _, a := range hn.Attr {
			el.attrs = append(el.attrs, Attr{Key: a.Key, Value: a.Val})
		}
		for c := hn.FirstChild; c != nil; c = c.NextSibling {
			if child := d.convert(c); child != nil {
				el.children = append(el.children, child)
				baseOf(child).parent = el
			}
		}
		return el
	case html.TextNode:
		return d.CreateText(hn.Data)
	case html.CommentNode:
		return d.CreateComment(hn.Data)
	default:
		return nil
	}
}

// Attr is one ordered element attribute.
type Attr struct {
	Key   string
	Value string
}
