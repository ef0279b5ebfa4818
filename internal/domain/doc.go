// Package domain models National Climatic Data Center (NCDC) surface
// observation records.
//
// # Data Source
//
// Records originate from the NCDC integrated surface dataset: one fixed-width
// text line per observation, concatenated into yearly files (often gzip
// archive members, one per station per year). The upstream collector stages
// these files and feeds the pipeline a plain line stream; this package only
// ever sees individual lines.
//
// # NCDC Fixed-Width Conventions
//
// Field positions are 0-indexed byte offsets into the line. The layout is a
// fixed contract with the published dataset, so the offsets are kept as
// literal constants rather than derived:
//
//	Year:        positions [15,19) — four ASCII digits, e.g. "1930".
//	Temperature: positions [87,92) — a sign byte ('+' or '-') followed by four
//	             zero-padded digits, in tenths of degrees Celsius.
//	             "+0061" = 6.1°C, "-0100" = -10.0°C.
//	Quality:     position 92 — a single digit '0'-'9' assigned by the source
//	             agency's own QA process.
//
// A line shorter than 93 bytes cannot carry all three fields and is rejected
// outright rather than zero-filled.
//
// # Missing Readings
//
// The dataset marks a missing temperature with the sentinel value 9999
// (encoded "+9999"). Sentinel readings parse successfully but are excluded by
// [Accept], as are readings whose quality code falls outside the trusted set
// {0, 1, 4, 5, 9}.
package domain
