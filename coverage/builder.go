package coverage

import (
	"github.com/pkg/errors"
	"netcov/feature"
	"netcov/importing"
	"netcov/index"
	"netcov/metrics"
	"time"
)

// NewDatasetBuilder returns a registry builder creating the dataset of the operator whose name is the registry key.
func NewDatasetBuilder(source importing.Source, cellSize float64) index.Builder {
	return func(key string) (*index.Dataset, error) {
		buildStartTime := time.Now()

		dataset, err := buildOperatorDataset(source, cellSize, key)
		if err != nil {
			metrics.DatasetBuildsTotal.WithLabelValues("error").Inc()
			return nil, err
		}

		metrics.DatasetBuildsTotal.WithLabelValues("success").Inc()
		metrics.DatasetBuildDurationMs.Observe(float64(time.Since(buildStartTime).Milliseconds()))
		metrics.DatasetRecords.WithLabelValues(key).Set(float64(dataset.RecordCount()))
		return dataset, nil
	}
}

func buildOperatorDataset(source importing.Source, cellSize float64, key string) (*index.Dataset, error) {
	operator, err := feature.ParseOperatorName(key)
	if err != nil {
		return nil, err
	}

	records, err := source.Records(operator)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to load records of operator %s", operator)
	}

	return index.BuildDataset(records, cellSize)
}
