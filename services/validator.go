package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
)

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ValidateStudentsCSV checks a roster file before import.
func ValidateStudentsCSV(filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = readStudentRows(file)
	return err
}

type studentRow struct {
	line int
	id   string
	name string
}

// readStudentRows parses and validates a roster, returning the data rows with
// the header and blank lines dropped.
func readStudentRows(r io.Reader) ([]studentRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, &ValidationError{Message: "CSV 파일을 읽을 수 없습니다. 파일 형식을 확인해 주세요."}
	}

	records = dropBlank(records)
	if len(records) == 0 {
		return nil, &ValidationError{Message: "파일이 비어 있습니다. 학생 명단이 담긴 파일을 보내 주세요."}
	}

	if isStudentHeader(records) {
		records = records[1:]
		if len(records) == 0 {
			return nil, &ValidationError{Message: "파일에 머리글만 있습니다. 학생 정보를 추가해 주세요."}
		}
	}

	rows := make([]studentRow, 0, len(records))
	for i, record := range records {
		if len(record) < 2 {
			return nil, &ValidationError{
				Message: fmt.Sprintf("%d번째 줄의 열이 부족합니다.\n\n예상 형식: id,name\n받은 내용: %s", i+1, strings.Join(record, ",")),
			}
		}

		id, name := strings.TrimSpace(record[0]), strings.TrimSpace(record[1])
		if id == "" || name == "" {
			return nil, &ValidationError{
				Message: fmt.Sprintf("%d번째 줄에 학번 또는 이름이 비어 있습니다.", i+1),
			}
		}
		rows = append(rows, studentRow{line: i + 1, id: id, name: name})
	}

	return rows, nil
}

var (
	idLabels   = []string{"id", "student_id", "studentid", "no", "number", "학번", "번호"}
	nameLabels = []string{"name", "student_name", "이름", "성명", "학생", "학생명"}
)

// isStudentHeader reports whether the first record is a column header: either
// a known id/name label pair, or an id cell without digits above id cells
// that all have them.
func isStudentHeader(records [][]string) bool {
	first := records[0]
	if len(first) < 2 {
		return false
	}
	id := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(first[0], "\ufeff")))
	name := strings.ToLower(strings.TrimSpace(first[1]))
	if contains(idLabels, id) && contains(nameLabels, name) {
		return true
	}

	if id == "" || hasDigit(id) {
		return false
	}
	for _, record := range records[1:] {
		if !hasDigit(record[0]) {
			return false
		}
	}
	return true
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func dropBlank(records [][]string) [][]string {
	out := records[:0]
	for _, record := range records {
		blank := true
		for _, cell := range record {
			if strings.TrimSpace(cell) != "" {
				blank = false
				break
			}
		}
		if !blank {
			out = append(out, record)
		}
	}
	return out
}
