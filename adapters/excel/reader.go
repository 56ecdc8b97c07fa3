package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"aireliance/domain/claim"
	"aireliance/domain/core"
	"aireliance/internal"

	"github.com/xuri/excelize/v2"
)

// Column names of a claim bank file
const (
	ColumnID          = "id"
	ColumnClaim       = "claim"
	ColumnGroundTruth = "correct_answer"
)

// ClaimReader loads a claim bank from an Excel (Sheet1) or CSV file
type ClaimReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	logger   *internal.Logger
}

// NewClaimReader creates a reader; the file type follows the extension
func NewClaimReader(filePath string, logger *internal.Logger) *ClaimReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &ClaimReader{filePath: filePath, fileType: fileType, logger: logger.With("ClaimReader")}
}

// ReadBank reads and validates the claim bank
func (r *ClaimReader) ReadBank() (*claim.Bank, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, core.NewClaimBankError(fmt.Sprintf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath))
	}

	var (
		rows [][]string
		err  error
	)
	start := time.Now()
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	default:
		rows, err = r.readExcelRows()
	}
	if err != nil {
		return nil, err
	}
	r.logger.Debug("%s read in %.2fms (%d rows)", r.filePath, float64(time.Since(start).Nanoseconds())/1e6, len(rows))

	claims, err := processRows(rows)
	if err != nil {
		return nil, err
	}
	bank, err := claim.NewBank(claims)
	if err != nil {
		return nil, err
	}
	r.logger.Info("loaded %d claims from %s", bank.Len(), filepath.Base(r.filePath))
	return bank, nil
}

func (r *ClaimReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, core.NewClaimBankError(fmt.Sprintf("failed to open Excel file: %v", err))
	}
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	if err != nil {
		return nil, core.NewClaimBankError(fmt.Sprintf("failed to read Sheet1: %v", err))
	}
	return rows, nil
}

func (r *ClaimReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, core.NewClaimBankError(fmt.Sprintf("failed to open CSV file: %v", err))
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, core.NewClaimBankError(fmt.Sprintf("failed to read CSV file: %v", err))
	}
	return rows, nil
}

// processRows maps header-addressed rows onto claims. Blank rows are skipped.
func processRows(rows [][]string) ([]claim.Claim, error) {
	if len(rows) < 2 {
		return nil, core.ErrEmptyClaimBank
	}

	index := make(map[string]int, len(rows[0]))
	for i, header := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, col := range []string{ColumnID, ColumnClaim, ColumnGroundTruth} {
		if _, ok := index[col]; !ok {
			return nil, core.NewClaimBankError(fmt.Sprintf("missing column %q", col))
		}
	}

	cell := func(row []string, col string) string {
		i := index[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	claims := make([]claim.Claim, 0, len(rows)-1)
	for n, row := range rows[1:] {
		line := n + 2
		if isBlank(row) {
			continue
		}

		id, err := strconv.Atoi(cell(row, ColumnID))
		if err != nil {
			return nil, core.NewClaimBankError(fmt.Sprintf("row %d: invalid id %q", line, cell(row, ColumnID)))
		}
		truth, err := parseLabel(cell(row, ColumnGroundTruth))
		if err != nil {
			return nil, core.NewClaimBankError(fmt.Sprintf("row %d: %v", line, err))
		}
		claims = append(claims, claim.Claim{ID: id, Text: cell(row, ColumnClaim), GroundTruth: truth})
	}

	if len(claims) == 0 {
		return nil, core.ErrEmptyClaimBank
	}
	return claims, nil
}

func parseLabel(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "true", "t", "1", "yes":
		return true, nil
	case "false", "f", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("invalid correct_answer %q", raw)
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
