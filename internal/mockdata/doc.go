// Package mockdata seeds entity collections the first time a kind is opened.
// Each generator yields Count records with sequential ids and randomized
// content; use NewSeeded in tests for stable output.
package mockdata
