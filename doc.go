// whip-neustar converts Neustar (formerly Quova) IP geolocation data
// sets into Whip format: a stream of JSON objects, one per line.
//
// Tool is organized into 3 logical parts:
//
// csvdb
//
// csvdb reads V7 data set (comma separated, header line first) and
// normalizes each row: integer addresses become dotted-quads, time zone
// offsets become ±HH:MM, empty values become null.
//
// legacy
//
// Data sets older than V7 are pipe separated and refer to carriers,
// organizations and domains by ids from a separate reference file.
// legacy loads the reference file into memory and rewrites data set in
// V7 format, so it can be converted by csvdb afterwards.
//
// whip-neustar
//
// A main package itself is a CLI which wires both packages: it opens
// files (gzipped or not), infers effective date from data file name and
// reports progress.
package main
