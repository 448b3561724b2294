// Package hfl decodes the UDP wire protocol of the Continental HFL110DCU
// flash lidar into frames, tracked-object lists and telemetry records.
//
// The sensor fragments each logical record across independently addressed
// UDP payloads: a frame arrives as 32 row fragments in strictly descending
// row order, an object list as up to two fragments terminated by a final
// flag, and telemetry as single self-contained fragments. The decoders here
// reassemble those streams, detect fragment loss, and project decoded range
// samples into 3D points through a calibration-derived per-pixel ray table.
//
// Processing is single-threaded and synchronous per stream: a fragment is
// fully decoded, and any completed frame or list emitted, before the next
// fragment is accepted. Nothing is buffered beyond the current reassembly
// state, and fragment loss is never retried — a detected gap abandons the
// current frame and the machine resynchronizes on the next row-31 fragment.
package hfl
