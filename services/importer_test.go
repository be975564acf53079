package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classBook/database"
)

func TestImportSkipsHeaderRow(t *testing.T) {
	gw := newTestGateway(t)
	imp := NewStudentImporter(gw.Students)

	n, err := imp.Import(context.Background(), "c1", strings.NewReader("id,name\n1,Kim\n2,Lee\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	students, err := gw.Students.List(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "1", students[0].StudentID)
	assert.Equal(t, "Kim", students[0].Name)
	assert.Equal(t, "Lee", students[1].Name)
}

func TestImportHeaderDetection(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		want int
	}{
		{"english header", "id,name\n1,Kim\n", 1},
		{"korean header", "학번,이름\n1,김철수\n2,이영희\n", 2},
		{"upper case header", "ID, Name\n1,Kim\n", 1},
		{"bom header", "\ufeffid,name\n1,Kim\n", 1},
		{"no header", "1,Kim\n2,Lee\n3,Park\n", 3},
		{"blank lines", "id,name\n\n1,Kim\n , \n2,Lee\n", 2},
		{"extra columns", "id,name,note\n1,Kim,x\n", 1},
		{"student_id header", "student_id,name\n1,Kim\n2,Lee\n", 2},
		{"number header", "번호,이름\n1,김철수\n2,이영희\n", 2},
		{"name label header", "학번,성명\n20240301,김철수\n", 1},
		{"unlabelled header", "학생 번호,학생 이름\n20240301,김철수\n20240302,이영희\n", 2},
		{"dotted header", "No.,Full name\n1,Kim\n", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := newTestGateway(t)
			n, err := NewStudentImporter(gw.Students).Import(context.Background(), "c1", strings.NewReader(tt.csv))
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)

			students, err := gw.Students.List(context.Background(), "c1")
			require.NoError(t, err)
			assert.Len(t, students, tt.want)
			for _, s := range students {
				assert.True(t, hasDigit(s.StudentID), "header imported as student %q", s.StudentID)
			}
		})
	}
}

func TestImportRejectsMalformedFiles(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{"empty", ""},
		{"only blank lines", "\n\n"},
		{"header only", "id,name\n"},
		{"unlabelled header only", "student no,full name\n"},
		{"single column", "id,name\n1\n"},
		{"missing name", "1,\n"},
		{"broken quotes", "id,name\n\"1,Kim\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := newTestGateway(t)
			n, err := NewStudentImporter(gw.Students).Import(context.Background(), "c1", strings.NewReader(tt.csv))

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.NotEmpty(t, verr.Message)
			assert.Zero(t, n)

			students, err := gw.Students.List(context.Background(), "c1")
			require.NoError(t, err)
			assert.Empty(t, students)
		})
	}
}

type flakyStudents struct {
	created  int
	failFrom int
}

func (f *flakyStudents) Create(_ context.Context, _ string, _ database.Student) (string, error) {
	if f.created >= f.failFrom {
		return "", database.Unavailable("add", "classes/c1/students", errors.New("connection reset"))
	}
	f.created++
	return "id", nil
}

func TestImportStopsOnStoreError(t *testing.T) {
	students := &flakyStudents{failFrom: 2}
	n, err := NewStudentImporter(students).Import(context.Background(), "c1", strings.NewReader("1,A\n2,B\n3,C\n"))

	assert.Equal(t, 2, n)
	assert.True(t, errors.Is(err, database.ErrStoreUnavailable))
	assert.Contains(t, err.Error(), "import row 3")
}

func TestImportFileAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.csv")
	require.NoError(t, os.WriteFile(path, []byte("학번,이름\n20240001,김철수\n"), 0o644))

	require.NoError(t, ValidateStudentsCSV(path))

	gw := newTestGateway(t)
	n, err := NewStudentImporter(gw.Students).ImportFile(context.Background(), "c1", path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = NewStudentImporter(gw.Students).ImportFile(context.Background(), "c1", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
