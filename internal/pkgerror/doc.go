// Package pkgerror classifies failures so callers can decide whether to contain
// them at the file boundary or stop the run.
//
// Only KindLedger and KindConfig are fatal; everything else is logged and the
// batch moves on to the next file or asset.
package pkgerror
