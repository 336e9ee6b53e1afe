package container

import "time"

// Label key constants for containers started by matrixctl. All keys share
// the "matrix." prefix to namespace them away from labels set by other
// tools. Runs use --rm so labels normally only matter for the short
// lifetime of a command, but a killed matrixctl can leave containers
// behind; the labels are what "clean --containers" filters on.
const (
	// LabelPrefix is the common prefix for all matrixctl labels.
	LabelPrefix = "matrix."

	// LabelManagedBy identifies containers started by matrixctl.
	// Key: "matrix.managed-by", Value: always "matrixctl".
	LabelManagedBy = LabelPrefix + "managed-by"

	// LabelEnv stores the environment name the container belongs to.
	LabelEnv = LabelPrefix + "env"

	// LabelCreatedAt stores the RFC3339 creation timestamp.
	LabelCreatedAt = LabelPrefix + "created-at"
)

// ManagedByValue is the constant value for the LabelManagedBy label.
const ManagedByValue = "matrixctl"

// BuildLabels constructs the label map applied to every container started
// for the named environment.
func BuildLabels(envName string, now time.Time) map[string]string {
	return map[string]string{
		LabelManagedBy: ManagedByValue,
		LabelEnv:       envName,
		LabelCreatedAt: now.UTC().Format(time.RFC3339),
	}
}
