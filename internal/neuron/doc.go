// Package neuron implements the multi-step integrate-and-fire recurrences.
//
// For N independent channels over T timesteps the forward recurrence is
//
//	h[t] = v[t-1] + x[t]                       pre-reset potential
//	s[t] = 1 if h[t] >= v_threshold else 0    spike
//	v[t] = h[t] - s[t]·v_threshold             soft (subtractive) reset
//	v[t] = s[t]·v_reset + (1-s[t])·h[t]        hard reset
//
// with v[-1] = v_init. The backward recurrence walks time in reverse and uses
// a surrogate derivative in place of the step function's derivative.
//
// Channels are tiled into Blocks. Each block runs the whole time loop over its
// own slice of every buffer, so blocks can execute in any order or
// concurrently. Dispatch (buffer allocation, block size choice, goroutines)
// lives in the backends; this package only works on flat slices.
package neuron
