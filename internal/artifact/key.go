// Package artifact is the file-backed cache of intermediate pipeline
// products. Every artifact location is derived from a Key, so writers and
// readers in separate invocations agree on paths without passing them around.
package artifact

import (
	"fmt"
	"path/filepath"

	"github.com/jsamuelsen11/ramp-pipeline/internal/domain"
)

// Kind identifies which stage produced an artifact.
type Kind uint8

const (
	// KindPopulation is the synthesized population written by init.
	KindPopulation Kind = iota + 1
	// KindPythonCache is the directory of cache files written by python-cache.
	KindPythonCache
	// KindSnapshot is the npz file written by snapshot.
	KindSnapshot
	// KindModelOutput is the directory the simulation runner writes into.
	KindModelOutput
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindPopulation:
		return "population"
	case KindPythonCache:
		return "python-cache"
	case KindSnapshot:
		return "snapshot"
	case KindModelOutput:
		return "model-output"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// IsDir reports whether artifacts of this kind are directories.
func (k Kind) IsDir() bool {
	switch k {
	case KindPythonCache, KindModelOutput:
		return true
	case KindPopulation, KindSnapshot:
		return false
	default:
		panic(fmt.Sprintf("artifact: unhandled kind %d", uint8(k)))
	}
}

// Key addresses one artifact.
type Key struct {
	Region domain.Region
	Kind   Kind
}

// PopulationKey is the key of the population artifact for region.
func PopulationKey(region domain.Region) Key {
	return Key{Region: region, Kind: KindPopulation}
}

// String implements fmt.Stringer.
func (k Key) String() string {
	return k.Kind.String() + "/" + k.Region.String()
}

// relPath is the single place artifact names are formatted.
func (k Key) relPath() string {
	name := k.Region.Name()
	switch k.Kind {
	case KindPopulation:
		return name + ".bin"
	case KindPythonCache:
		return "python_cache_" + name
	case KindSnapshot:
		return "snapshot_" + name + ".npz"
	case KindModelOutput:
		return "model_output_" + name
	default:
		panic(fmt.Sprintf("artifact: unhandled kind %d", uint8(k.Kind)))
	}
}

// Path resolves key under root. It is a pure function of its arguments.
func Path(root string, key Key) string {
	return filepath.Join(root, key.relPath())
}
