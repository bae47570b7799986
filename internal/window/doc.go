// Package window keeps the fixed-size history the chart draws.
//
// A Window tracks one ring per declared field plus the synthetic index
// ring (named IndexName). Every ring holds exactly Capacity values, starts
// zero-filled, and evicts its oldest value on each push, so a push is O(1)
// and the series lengths never change.
//
// A short row advances only the fields it carries; the index advances on
// every push. Window is not safe for concurrent use; the renderer owns it.
package window
