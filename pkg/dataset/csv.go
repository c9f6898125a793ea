package dataset

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
)

const maxIntensity = 255.0

// imageRecord is one row of a pixel CSV: an integer class label and the image's
// pixel intensities separated by spaces. Usage marks the split ("Training" or a
// test split) when train and test share one file.
type imageRecord struct {
	Label  int    `csv:"label"`
	Pixels string `csv:"pixels"`
	Usage  string `csv:"usage"`
}

type CSVLoader struct {
	TrainPath string
	TestPath  string
}

func (l CSVLoader) Load() (train, test Dataset, err error) {
	records, err := readRecords(l.TrainPath)
	if err != nil {
		return nil, nil, err
	}

	if l.TestPath == "" {
		var trainRecs, testRecs []imageRecord
		for _, r := range records {
			if isTestUsage(r.Usage) {
				testRecs = append(testRecs, r)

				continue
			}
			trainRecs = append(trainRecs, r)
		}

		if train, err = toDataset(trainRecs); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", l.TrainPath, err)
		}
		if test, err = toDataset(testRecs); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", l.TrainPath, err)
		}

		return train, test, nil
	}

	testRecords, err := readRecords(l.TestPath)
	if err != nil {
		return nil, nil, err
	}
	if train, err = toDataset(records); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", l.TrainPath, err)
	}
	if test, err = toDataset(testRecords); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", l.TestPath, err)
	}

	return train, test, nil
}

func readRecords(path string) ([]imageRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file '%s': %w", path, err)
	}
	defer f.Close()

	var records []imageRecord
	if err := gocsv.UnmarshalFile(f, &records); err != nil {
		return nil, fmt.Errorf("failed to parse dataset file '%s': %w", path, err)
	}

	return records, nil
}

func isTestUsage(usage string) bool {
	u := strings.ToLower(strings.TrimSpace(usage))

	return strings.Contains(u, "test")
}

func toDataset(records []imageRecord) (InMemory, error) {
	ds := make(InMemory, 0, len(records))
	for i, r := range records {
		fields := strings.Fields(r.Pixels)
		features := make([]float64, len(fields))
		for j, f := range fields {
			v, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("row %d pixel %d: %w", i, j, err)
			}
			if v < 0 || v > maxIntensity {
				return nil, fmt.Errorf("row %d pixel %d: intensity %d outside [0, 255]", i, j, v)
			}
			features[j] = float64(v) / maxIntensity
		}
		if r.Label < 0 {
			return nil, fmt.Errorf("row %d: negative label %d", i, r.Label)
		}
		ds = append(ds, Sample{Features: features, Label: r.Label})
	}

	if len(ds) > 0 {
		if _, err := FeatureCount(ds); err != nil {
			return nil, err
		}
	}

	return ds, nil
}
