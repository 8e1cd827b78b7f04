// Package services loads playlist text for the parser.
//
// # Sources
//
// [FileSource] and [HTTPSource] implement [m3u.Source]. [OpenSource] picks
// one from a location string. Only http and https URLs are downloaded; any
// other location is a local path, with an optional file:// prefix.
//
// # HTTP
//
// [HTTPSource] issues a single GET with the configured timeout and user agent.
// A status other than 200 fails with [shared.ErrDownload]. When a token is
// configured the client is wrapped by [oauth2.NewClient] with a static token
// source, so the token is sent as a bearer Authorization header. Headers
// copied from a browser with "Copy as cURL" ([shared.CurlHeaders]) are
// replayed on the request. A copy of the downloaded text can be written to
// the configured store path.
//
// # Decoding
//
// Playlist files in the wild are often Latin-1 or Windows-1252. [Decode]
// falls back to a [charmap.Charmap] for text that is not valid UTF-8. The
// result is normalized to NFC so that channel names compare equal however
// their accents were composed.
package services
