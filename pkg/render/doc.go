// Package render provides server-side rendering for Loom trees.
//
// The renderer converts virtual trees into HTML strings or streams:
// HTML5 element rendering, text and attribute escaping, void element
// handling, and full page streaming with incremental flushing.
//
// # Hydration Contract
//
// With Config.Hydratable set, component, suspense, and raw boundaries
// are bracketed with comment markers:
//
//	<!--<[c 1]>--><div>...</div><!--</[c]>-->
//
// and a trailing <script type="application/loom-state"> block carries
// component state saved via vtree.StateSaver, keyed by boundary id.
// The bundle package's hydration consumes the markers to recover
// fragment cursors and removes the state block once read.
//
// # Suspense
//
// The server always renders suspense children, never the fallback: a
// pending suspension is awaited (bounded by the request context) and
// the component re-rendered once resumed.
package render
