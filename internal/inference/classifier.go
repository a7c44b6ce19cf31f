package inference

import "github.com/pankaj-dahiya-devops/runson/internal/models"

// Classifier derives instance attributes that the pricing table does not
// carry. Callers depend on this interface rather than the package functions
// so an authoritative lookup table can replace the name heuristic.
type Classifier interface {
	// Arch returns the CPU architecture of the named instance type.
	Arch(name string) models.Arch

	// Category returns the workload category ("compute", "memory", ...).
	Category(name string) string
}

// HeuristicClassifier implements Classifier with InferArch and
// InstanceCategory.
type HeuristicClassifier struct{}

// NewHeuristicClassifier returns the default name-based classifier.
func NewHeuristicClassifier() HeuristicClassifier {
	return HeuristicClassifier{}
}

// Arch implements Classifier.
func (HeuristicClassifier) Arch(name string) models.Arch {
	return InferArch(name)
}

// Category implements Classifier.
func (HeuristicClassifier) Category(name string) string {
	return InstanceCategory(name)
}
