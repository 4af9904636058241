// Package analysis provides statistics over Monte Carlo traces.
//
//   - [Mean], [Variance]: plain moments of a series
//   - [Burn]: drops the equilibration prefix of a trace
//   - [Autocorrelation], [IntegratedAutocorrTime]: correlation between samples
//   - [Thermo]: energy, magnetization, specific heat and susceptibility per spin
//
// # Example
//
//	obs := analysis.Thermo(analysis.Burn(res.Energy, 0.2), mags, beta, n)
//	if beta > analysis.CriticalBeta {
//	    // ordered phase, expect obs.AbsMagnetization near 1
//	}
package analysis
