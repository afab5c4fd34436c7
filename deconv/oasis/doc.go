// Package oasis implements an AR(1) spike-inference solver based on the
// online active set method (OASIS).
//
// The trace is modeled as y = b + c + noise with c[t] = g·c[t-1] + s[t] and
// s ≥ 0. Each solve merges adjacent pools of samples until the AR(1)
// constraint holds, which takes linear time. Around that core the solver
// estimates any missing noise level, decay or baseline and searches the
// sparsity weight that makes the residual match the noise level.
package oasis
