// Package export turns a population into the files consumed by downstream
// tooling: the python cache directory and the npz snapshot. Every byte written
// is a function of the population and of values drawn from the caller's
// random generator before any file is produced.
package export
