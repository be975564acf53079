package services

import (
	"context"
	"io"
	"os"

	"github.com/pkg/errors"

	"classBook/database"
)

type StudentCreator interface {
	Create(ctx context.Context, classID string, student database.Student) (string, error)
}

type StudentImporter struct {
	students StudentCreator
}

func NewStudentImporter(students StudentCreator) *StudentImporter {
	return &StudentImporter{students: students}
}

// Import adds one student per data row of an id,name CSV. There is no
// rollback: on a store error the count of students already created is
// returned with the error.
func (imp *StudentImporter) Import(ctx context.Context, classID string, r io.Reader) (int, error) {
	rows, err := readStudentRows(r)
	if err != nil {
		return 0, err
	}

	imported := 0
	for _, row := range rows {
		_, err := imp.students.Create(ctx, classID, database.Student{StudentID: row.id, Name: row.name})
		if err != nil {
			return imported, errors.Wrapf(err, "import row %d", row.line)
		}
		imported++
	}

	return imported, nil
}

func (imp *StudentImporter) ImportFile(ctx context.Context, classID, filePath string) (int, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	return imp.Import(ctx, classID, file)
}
