package database

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBlobs struct {
	err     error
	uploads map[string]string
}

func (b *fakeBlobs) Upload(_ context.Context, name string, body io.Reader, _ string) (string, error) {
	if b.err != nil {
		return "", b.err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	if b.uploads == nil {
		b.uploads = make(map[string]string)
	}
	b.uploads[name] = string(data)
	return "https://files.example/" + name, nil
}

func plan(name string) PlanFile {
	return PlanFile{Name: name, Body: strings.NewReader("%PDF-1.4"), ContentType: "application/pdf"}
}

func TestSubjectCreateUploadsPlanFirst(t *testing.T) {
	ctx := context.Background()
	blobs := &fakeBlobs{}
	gw := NewGateway(NewMemoryStore(), blobs)

	id, err := gw.Subjects.Create(ctx, Subject{Name: "수학", Year: 2024, Semester: 1}, plan("math.pdf"))
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, "%PDF-1.4", blobs.uploads["plans/math.pdf"])

	subjects, err := gw.Subjects.List(ctx)
	require.NoError(t, err)
	require.Len(t, subjects, 1)
	assert.Equal(t, Subject{ID: id, Name: "수학", Year: 2024, Semester: 1, PdfURL: "https://files.example/plans/math.pdf"}, subjects[0])
}

func TestSubjectCreateUploadFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	uploadErr := Unavailable("upload", "plans/math.pdf", errors.New("bucket offline"))
	gw := NewGateway(NewMemoryStore(), &fakeBlobs{err: uploadErr})

	_, err := gw.Subjects.Create(ctx, Subject{Name: "수학", Year: 2024, Semester: 1}, plan("math.pdf"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStoreUnavailable))

	subjects, err := gw.Subjects.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, subjects)
}

func TestSubjectCreateRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		subject Subject
		plan    PlanFile
	}{
		{"unknown subject", Subject{Name: "역사", Year: 2024, Semester: 1}, plan("a.pdf")},
		{"bad semester", Subject{Name: "수학", Year: 2024, Semester: 3}, plan("a.pdf")},
		{"missing year", Subject{Name: "수학", Semester: 2}, plan("a.pdf")},
		{"missing plan", Subject{Name: "수학", Year: 2024, Semester: 2}, PlanFile{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blobs := &fakeBlobs{}
			gw := NewGateway(NewMemoryStore(), blobs)

			_, err := gw.Subjects.Create(context.Background(), tt.subject, tt.plan)
			assert.True(t, errors.Is(err, ErrWriteRejected), "got %v", err)
			assert.Empty(t, blobs.uploads)
		})
	}
}

func TestPlanBaseNameStripsDirectories(t *testing.T) {
	assert.Equal(t, "plan.pdf", planBaseName(`C:\Users\t\plan.pdf`))
	assert.Equal(t, "plan.pdf", planBaseName("/tmp/x/plan.pdf"))
	assert.Equal(t, "plan.pdf", planBaseName(" plan.pdf "))
}

func TestClassCreateAndList(t *testing.T) {
	ctx := context.Background()
	gw := NewGateway(NewMemoryStore(), &fakeBlobs{})

	id, err := gw.Classes.Create(ctx, Class{Subject: "2024년 1학기 - 수학", Name: "5-1", Weekdays: []string{"월", "수"}, Periods: []int{1, 3}})
	require.NoError(t, err)

	_, err = gw.Classes.Create(ctx, Class{Subject: "2024년 1학기 - 수학", Name: "5-2"})
	require.NoError(t, err)

	classes, err := gw.Classes.List(ctx)
	require.NoError(t, err)
	require.Len(t, classes, 2)
	assert.Equal(t, Class{ID: id, Subject: "2024년 1학기 - 수학", Name: "5-1", Weekdays: []string{"월", "수"}, Periods: []int{1, 3}}, classes[0])
	assert.Equal(t, []string{}, classes[1].Weekdays)
	assert.Equal(t, []int{}, classes[1].Periods)
}

func TestClassCreateRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		class Class
	}{
		{"missing name", Class{Subject: "s"}},
		{"missing subject", Class{Name: "5-1"}},
		{"weekend", Class{Subject: "s", Name: "5-1", Weekdays: []string{"토"}}},
		{"period out of range", Class{Subject: "s", Name: "5-1", Periods: []int{8}}},
		{"duplicate period", Class{Subject: "s", Name: "5-1", Periods: []int{2, 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := NewGateway(NewMemoryStore(), &fakeBlobs{})
			_, err := gw.Classes.Create(context.Background(), tt.class)
			assert.True(t, errors.Is(err, ErrWriteRejected), "got %v", err)
		})
	}
}

func TestPerClassRecordsAreScopedToTheirClass(t *testing.T) {
	ctx := context.Background()
	gw := NewGateway(NewMemoryStore(), &fakeBlobs{})

	_, err := gw.Students.Create(ctx, "c1", Student{StudentID: "1", Name: "Kim"})
	require.NoError(t, err)
	_, err = gw.Students.Create(ctx, "c2", Student{StudentID: "2", Name: "Lee"})
	require.NoError(t, err)
	_, err = gw.Schedule.Create(ctx, "c1", ScheduleEntry{Date: "2024-03-05", Period: 2, Content: "fractions"})
	require.NoError(t, err)

	students, err := gw.Students.List(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "Kim", students[0].Name)
	assert.Equal(t, "1", students[0].StudentID)

	schedule, err := gw.Schedule.List(ctx, "c2")
	require.NoError(t, err)
	assert.Empty(t, schedule)

	schedule, err = gw.Schedule.List(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, schedule, 1)
	assert.Equal(t, ScheduleEntry{ID: schedule[0].ID, Date: "2024-03-05", Period: 2, Content: "fractions"}, schedule[0])
}

func TestPerClassOperationsRequireClassID(t *testing.T) {
	ctx := context.Background()
	gw := NewGateway(NewMemoryStore(), &fakeBlobs{})

	_, err := gw.Students.Create(ctx, "", Student{StudentID: "1", Name: "Kim"})
	assert.True(t, errors.Is(err, ErrWriteRejected))

	_, err = gw.Attendance.List(ctx, "")
	assert.True(t, errors.Is(err, ErrWriteRejected))
}

func TestAttendanceAllowsRepeatedEntries(t *testing.T) {
	ctx := context.Background()
	gw := NewGateway(NewMemoryStore(), &fakeBlobs{})
	entry := AttendanceEntry{StudentID: "1", Name: "Kim", Date: "2024-03-05", Status: StatusLate}

	_, err := gw.Attendance.Create(ctx, "c1", entry)
	require.NoError(t, err)
	_, err = gw.Attendance.Create(ctx, "c1", entry)
	require.NoError(t, err)

	entries, err := gw.Attendance.List(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.NotEqual(t, entries[0].ID, entries[1].ID)
}

func TestAttendanceRejectsUnknownStatusAndBadDate(t *testing.T) {
	ctx := context.Background()
	gw := NewGateway(NewMemoryStore(), &fakeBlobs{})

	_, err := gw.Attendance.Create(ctx, "c1", AttendanceEntry{StudentID: "1", Name: "Kim", Date: "2024-03-05", Status: "present"})
	assert.True(t, errors.Is(err, ErrWriteRejected))

	_, err = gw.Schedule.Create(ctx, "c1", ScheduleEntry{Date: "03/05/2024", Period: 1, Content: "x"})
	assert.True(t, errors.Is(err, ErrWriteRejected))
}

func TestScheduleAcceptsEmptyContent(t *testing.T) {
	ctx := context.Background()
	gw := NewGateway(NewMemoryStore(), &fakeBlobs{})

	_, err := gw.Schedule.Create(ctx, "c1", ScheduleEntry{Date: "2024-03-05", Period: 4})
	require.NoError(t, err)

	entries, err := gw.Schedule.List(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "", entries[0].Content)
}

func TestListIsRepeatable(t *testing.T) {
	ctx := context.Background()
	gw := NewGateway(NewMemoryStore(), &fakeBlobs{})
	for _, name := range []string{"A", "B", "C"} {
		_, err := gw.Students.Create(ctx, "c1", Student{StudentID: name, Name: name})
		require.NoError(t, err)
	}

	first, err := gw.Students.List(ctx, "c1")
	require.NoError(t, err)
	second, err := gw.Students.List(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCanceledContextIsUnavailable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	gw := NewGateway(NewMemoryStore(), &fakeBlobs{})

	_, err := gw.Classes.List(ctx)
	assert.True(t, errors.Is(err, ErrStoreUnavailable))
}
