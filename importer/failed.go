package importer

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const FailedDir = "failed_imports"

// SaveFailedRecords writes failures to dir/failed_decisions_<timestamp>.csv
// so they can be corrected and fed back in. It returns the file path, or ""
// when there was nothing to save.
func SaveFailedRecords(dir string, failures []*RowError) (string, error) {
	if len(failures) == 0 {
		return "", nil
	}
	if dir == "" {
		dir = FailedDir
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating %s directory: %w", dir, err)
	}

	timestamp := time.Now().Format("20060102_150405")
	failedFile := filepath.Join(dir, fmt.Sprintf("failed_decisions_%s.csv", timestamp))

	file, err := os.Create(failedFile)
	if err != nil {
		return "", fmt.Errorf("error creating failed records file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"student_id", "action", "row", "error"}); err != nil {
		return "", fmt.Errorf("error writing headers: %w", err)
	}
	for _, f := range failures {
		record := []string{f.StudentID, string(f.Action), strconv.Itoa(f.Row), f.Err.Error()}
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("error writing record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("error flushing failed records: %w", err)
	}

	log.Printf("Failed records saved to: %s", failedFile)
	return failedFile, nil
}
