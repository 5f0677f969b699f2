package distance

import (
	"strconv"
	"strings"

	"github.com/YuminosukeSato/scigo-neighbors/pkg/errors"
)

// Names lists the metric names accepted by ByName.
func Names() []string {
	return []string{
		"euclidean", "cosine", "manhattan", "chebyshev", "minkowski:<p>",
		"normalized_euclidean", "mahalanobis",
	}
}

// ByName returns a fresh metric for a configuration name. Minkowski takes
// its exponent after a colon, e.g. "minkowski:3". Trainable metrics are
// returned untrained.
func ByName(name string) (Metric, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if rest, ok := strings.CutPrefix(key, "minkowski"); ok {
		p := 3.0
		if rest != "" {
			arg, found := strings.CutPrefix(rest, ":")
			if !found {
				return nil, errors.NewValidationError("metric", "unknown metric name", name)
			}
			v, err := strconv.ParseFloat(arg, 64)
			if err != nil {
				return nil, errors.NewValidationError("metric", "invalid minkowski exponent", name)
			}
			p = v
		}
		m, err := NewMinkowski(p)
		if err != nil {
			return nil, err
		}
		return m, nil
	}

	switch key {
	case "euclidean", "l2":
		return Euclidean{}, nil
	case "cosine":
		return Cosine{}, nil
	case "manhattan", "l1", "cityblock":
		return Manhattan{}, nil
	case "chebyshev", "linf":
		return Chebyshev{}, nil
	case "normalized_euclidean", "seuclidean":
		return NewNormalizedEuclidean(), nil
	case "mahalanobis":
		return NewMahalanobis(), nil
	}
	return nil, errors.NewValidationError("metric", "unknown metric name", name)
}
