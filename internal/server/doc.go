// Package server provides HTTP routing, middleware, and the handler that serves a parsed playlist.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Playlist Handler
//
// [PlaylistHandler] serves the records loaded at startup. /playlist.m3u
// renders the selection as an extended M3U file that IPTV players can
// subscribe to; /groups returns a JSON [tasks.Summary] of the same selection.
// Both accept the query filters type, group, country and q.
//
// /validate accepts a playlist body and runs the strict single-entry parser
// over every #EXTINF block, reporting the ones the extractor would skip.
//
// # Middleware
//
// [LoggingMiddleware] logs one line per request. [RecoverMiddleware] converts
// panics into 500 responses. When a server token is configured,
// [TokenMiddleware] requires it on every route.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
