// Package bundle is the reconciliation engine: it keeps a realized
// mirror of each component's rendered virtual tree and applies minimal
// mutations to a physical target when the tree changes.
//
// A Root mounted on a host element drives everything. Components live
// in Scopes that survive re-renders; suspense boundaries park suspended
// subtrees off-tree with their state intact; hydration adopts
// server-rendered markup through Fragment cursors instead of
// rebuilding it. Positions travel as linkable NodeRef cells, so a
// descendant re-anchoring its first node updates every ancestor
// holding a linked cell in constant time.
//
// All engine work runs on the root's scheduler. External events
// (resumed suspensions, context changes) only queue jobs; the owner
// drains them with Root.Pump.
package bundle
