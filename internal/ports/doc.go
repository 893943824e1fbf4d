// Package ports defines the interfaces between the stage dispatcher and the
// components it orchestrates. Collaborator ports are implemented by the
// baseline transforms and can be replaced by external tooling; client ports
// are implemented by outbound adapters.
package ports
