// Package physics estimates the consequences of an asteroid striking Earth.
//
// The calculation is a fixed forward pipeline of closed-form scaling laws:
//
//	ResolveVelocity -> ResolveMassAndEnergy -> ComputeEffects -> Present
//
// Every function in this package is pure. Inputs are never mutated, no
// package state is written after init, and identical inputs always produce
// identical outputs, so callers may run any number of calculations
// concurrently without synchronization.
//
// Numeric work (ComputeEffects) is kept apart from presentation (Present),
// which classifies each quantity against its severity scale, scales it to a
// progress score and renders it as text.
package physics
