// Package server hosts Loom applications over HTTP.
//
// Registered pages are server-rendered with hydration markers; a
// companion websocket endpoint at /loom/live drives live sessions.
// Each session confines a MemDoc and its rendering root to one
// goroutine and mirrors every tree mutation to the client as a JSON
// patch frame. Client events flow the other way: the browser reports
// {target, event, payload}, the session fires the bound listener and
// pumps the scheduler, and the resulting mutations stream back.
package server
