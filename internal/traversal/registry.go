package traversal

// Registry maps traversal names to constructors, so callers select an
// algorithm by string without a switch statement.
//
// Only the linked-cells-family traversals are registered here: c01, c08,
// c18, the three sliced variants. The octree and verlet-cluster traversals
// are specific to their container's internal structure (octree leaves,
// towers of clusters) rather than a generic cell grid, so those containers
// implement their own Execute-equivalent directly and only report their
// traversal's name and Applicable predicate through this package's types.
var Registry = map[string]func() Traversal{
	"c01":             func() Traversal { return C01{} },
	"c08":             func() Traversal { return C08{} },
	"c18":             func() Traversal { return C18{} },
	"sliced-lock":     func() Traversal { return SlicedLock{} },
	"sliced-2colour":  func() Traversal { return Sliced2Colour{} },
	"balanced-sliced": func() Traversal { return BalancedSliced{Estimator: ParticleCount} },
}

// Names lists every registered grid-based traversal, for enumeration.
func Names() []string {
	names := make([]string, 0, len(Registry))
	for name := range Registry {
		names = append(names, name)
	}
	return names
}

// OctreeC18Name and ClusterTraversalNames identify the container-specific
// traversals the tuner's enumeration step must ask each container about
// directly rather than finding in Registry.
const OctreeC18Name = "octree-c18"

const (
	ClusterColourName = "verlet-cluster-colour"
	ClusterSlicedName = "verlet-cluster-sliced"
)
