// Package domain contains the value types shared by every pipeline stage:
// regions, area codes, initial conditions, the synthesized population and
// the sentinel errors that classify pipeline failures.
package domain
