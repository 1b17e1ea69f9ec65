package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ArowuTest/homeradio-cashout/internal/models"
)

// BlacklistImport is the outcome of reading a blacklist CSV
type BlacklistImport struct {
	TotalRows int
	Entries   []models.BlacklistEntry
	Errors    []string
}

// ReadBlacklistCSV reads MSISDNs (and optional reasons) from a CSV with a
// header row. Numbers are normalised to the local 0XXXXXXXXX form and
// duplicates are dropped.
func ReadBlacklistCSV(r io.Reader, addedBy string) (*BlacklistImport, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	msisdnIdx := findColumnIndex(header, []string{"MSISDN", "Phone Number", "Phone", "Mobile"})
	reasonIdx := findColumnIndex(header, []string{"Reason", "Note", "Comment"})
	if msisdnIdx == -1 {
		return nil, errors.New("MSISDN column not found in CSV")
	}

	result := &BlacklistImport{Entries: []models.BlacklistEntry{}}
	seen := map[string]bool{}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		result.TotalRows++
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", result.TotalRows, err))
			continue
		}
		if msisdnIdx >= len(row) || strings.TrimSpace(row[msisdnIdx]) == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: No MSISDN found", result.TotalRows))
			continue
		}

		msisdn := LocalMSISDN(strings.ReplaceAll(row[msisdnIdx], " ", ""))
		if seen[msisdn] {
			continue
		}
		seen[msisdn] = true

		entry := models.BlacklistEntry{MSISDN: msisdn, AddedBy: addedBy}
		if reasonIdx != -1 && reasonIdx < len(row) {
			entry.Reason = strings.TrimSpace(row[reasonIdx])
		}
		result.Entries = append(result.Entries, entry)
	}
	return result, nil
}

// findColumnIndex finds the first header matching one of the names, ignoring case
func findColumnIndex(header []string, names []string) int {
	for _, name := range names {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), name) {
				return i
			}
		}
	}
	return -1
}
