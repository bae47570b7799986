// Package state provides thread-safe acquisition status for the UI.
//
// # Overview
//
// The acquisition goroutine knows things the chart header wants to show:
// which stream is open, how many rows arrived, how many were dropped by the
// transform, and whether the source has gone away. Store is the meeting
// point between that goroutine and the UI event loop.
//
//	Producer (acquire):           Consumer (ui header):
//	┌────────────────┐            ┌─────────────────┐
//	│ ReadLine()     │            │                 │
//	│ transform      │            │                 │
//	│      ↓         │            │                 │
//	│ store.RowRead()│───────────→│ store.Snapshot()│
//	│      ↓         │  (mutex)   │      ↓          │
//	│  repeat...     │            │ render header   │
//	└────────────────┘            └─────────────────┘
//
// Rows themselves never pass through Store; they travel through the
// acquirer's shared buffer. Store only carries counters and errors.
//
// # Concurrency Model
//
// Writers take the write lock for a counter bump; Snapshot takes the read
// lock and returns a value copy, cloning the error so the UI never shares an
// error instance with the producer.
//
// The zero Store is ready to use.
package state
