// Package spectrum provides power-spectrum helpers built on an external FFT
// backend: bin power and Welch power spectral density estimates.
//
// The Welch estimator is what the reference deconvolution solver uses to
// read the noise floor of a trace from its high-frequency band.
package spectrum
