package cli

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/acadrisk/acadrisk/internal/application/dto"
	"github.com/acadrisk/acadrisk/internal/application/usecase"
	"github.com/acadrisk/acadrisk/internal/infrastructure/kafka"
)

func newBatchCmd() *cobra.Command {
	var file, format, batchID string

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Score many student records in one pass",
		Long: `Score a file of student records. JSON input is an array of feature objects
or {"records": [...]}. CSV input has a header row of feature names; numeric
cells are read as numbers and empty cells are treated as missing.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if file == "" {
				return errors.New("--file is required")
			}
			records, err := readRecords(file, format)
			if err != nil {
				return err
			}

			s, err := openSession(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			uc := usecase.NewPredictBatch(s.predictor, nil, kafka.NewLogPublisher(s.logger), 0, s.logger)
			resp, err := uc.Execute(cmd.Context(), dto.PredictBatchRequest{BatchID: batchID, Records: records})
			if err != nil {
				return err
			}
			return render(cmd, resp)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Records file (.json or .csv)")
	cmd.Flags().StringVar(&format, "format", "", "Input format: json or csv (default from file extension)")
	cmd.Flags().StringVar(&batchID, "batch-id", "", "Batch UUID (generated when empty)")
	return cmd
}

func readRecords(path, format string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}

	switch format {
	case "json":
		return parseJSONRecords(data)
	case "csv":
		return parseCSVRecords(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unknown input format %q (want json or csv)", format)
	}
}

func parseJSONRecords(data []byte) ([]map[string]any, error) {
	var records []map[string]any
	if err := json.Unmarshal(data, &records); err == nil {
		return records, nil
	}
	var req dto.PredictBatchRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("records must be a JSON array or {\"records\": [...]}: %w", err)
	}
	if req.Records == nil {
		return nil, errors.New("records are required")
	}
	return req.Records, nil
}

func parseCSVRecords(r io.Reader) ([]map[string]any, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	records := []map[string]any{}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", len(records)+1, err)
		}
		record := make(map[string]any, len(header))
		for i, cell := range row {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			if f, err := strconv.ParseFloat(cell, 64); err == nil {
				record[header[i]] = f
			} else {
				record[header[i]] = cell
			}
		}
		records = append(records, record)
	}
	return records, nil
}
