// Package vtree provides the virtual tree node model for Loom.
//
// A Node is a lightweight, immutable description of renderable content
// for one render pass: elements, text, keyed lists, component
// placeholders, portals, raw fragments, and suspense boundaries. Nodes
// carry no behavior beyond navigation helpers; realizing a Node against
// a physical target is the job of the bundle package.
//
// # Building Trees
//
// Trees are built with variadic factory functions:
//
//	vtree.El("div", vtree.SetAttr("class", "card"),
//	    vtree.El("h1", "Title"),
//	    vtree.El("button", vtree.On("click", handler), "Go"),
//	)
//
// # Components
//
// Component is the capability interface the reconciler dispatches over.
// Optional interfaces (PropsComparer, Finalizer, AfterRenderer,
// StateSaver, StateLoader) extend the lifecycle contract without
// widening the core interface.
package vtree
