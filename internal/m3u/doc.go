// Package m3u reads and writes M3U playlist text as used by IPTV providers.
//
// Only the #EXTM3U and #EXTINF directives are understood. Regular expressions
// are used for extraction because provider playlists are large and a single
// pass over the whole text is cheaper than line-by-line tokenising.
//
// # Reading
//
// Raw text flows through three stages:
//
//  1. [Entries] scans the text for `#EXTINF:` lines followed by a link line and
//     yields raw [Entry] values (duration, attribute fragment, name, link).
//  2. [Record.Populate] turns an entry into a structured [Record], parsing the
//     attribute fragment with [ParseAttributes].
//  3. [Classifier.Classify] derives the [ItemType] (channel, series episode or
//     movie), season/episode tokens, genre and country, mutating the record.
//
// [Deserializer] composes the three into a lazy sequence of numbered records.
//
// # Writing
//
// [Serializer] writes the `#EXTM3U` header once and then one line pair per
// record, in the same format [Entries] reads:
//
//	#EXTM3U
//	#EXTINF:-1 tvg-id="npo1.nl" group-title="Nederland SD",NPO 1
//	http://iptv.example.org/some/route/channel
package m3u
