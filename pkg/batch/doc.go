// Package batch accumulates pending field writes and coalesces them
// into minimal sets of contiguous write frames.
//
// Writes are encoded at scheduling time and buffered by byte address;
// scheduling an address again replaces the earlier payload. Build
// turns the buffer into one frame per write, BuildOptimized merges
// writes whose byte ranges are exactly adjacent:
//
//	b := batch.New(cdc)
//	b.Set("power", int32(1500))
//	b.Set("setpoint", int32(200))
//	frames := b.BuildOptimized()
//
// Merging is strictly by adjacency: a write starting exactly where the
// previous run ends extends the run, anything else starts a new frame.
// Ranges with gaps or overlaps are never combined and payload bytes
// are never reordered.
//
// A Batch is one writer's pending state. It is not synchronized;
// concurrent writers need their own Batch each.
package batch
