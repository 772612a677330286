// Package download runs one download plan end to end: it prepares the output
// directory, negotiates the engine configuration, drives a single engine
// call, folds progress into an aggregator and classifies the outcome.
package download
