// Package deconv defines the contract between trace preprocessing and a
// spike-inference solver.
//
// A Solver receives one fluorescence trace and returns the denoised calcium
// signal, the spike estimate, and the baseline, decay, sparsity weight and
// noise level it used. Callers depend only on this contract; the concrete
// solver in package oasis is one implementation.
package deconv
