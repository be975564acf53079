package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"classBook/database"
	"classBook/logger"
	"classBook/services"
	"classBook/storage"
)

type cliTest struct {
	name       string
	args       []string
	wantErr    error
	wantErrStr string
	wantOut    []string
}

type fixture struct {
	gw      *database.Gateway
	cli     *commandLine
	out     *bytes.Buffer
	dir     string
	classID string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dir := t.TempDir()
	blobs, err := storage.NewLocalStore(filepath.Join(dir, "blobs"), "http://files.test", 1<<20)
	require.NoError(t, err)

	gw := database.NewGateway(database.NewMemoryStore(), blobs)
	out := &bytes.Buffer{}
	log := logger.New(&bytes.Buffer{}, logger.DEBUG)

	ctx := context.Background()
	classID, err := gw.Classes.Create(ctx, database.Class{Subject: "2025년 1학기 - 수학", Name: "5-1"})
	require.NoError(t, err)
	_, err = gw.Students.Create(ctx, classID, database.Student{StudentID: "1", Name: "김민수"})
	require.NoError(t, err)
	_, err = gw.Schedule.Create(ctx, classID, database.ScheduleEntry{Date: "2025-03-04", Period: 2, Content: "분수의 덧셈"})
	require.NoError(t, err)

	return &fixture{
		gw:      gw,
		cli:     newCommandLine(gw, services.NewReportBuilder(gw.Schedule, gw.Attendance, log), out),
		out:     out,
		dir:     dir,
		classID: classID,
	}
}

func (f *fixture) writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(f.dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func runCLITests(t *testing.T, f *fixture, tests []cliTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.out.Reset()
			args := append([]string{"admin"}, tt.args...)
			err := f.cli.run(args)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantErrStr != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrStr)
			default:
				require.NoError(t, err)
			}
			for _, want := range tt.wantOut {
				assert.Contains(t, f.out.String(), want)
			}
		})
	}
}

func TestRun_Usage(t *testing.T) {
	f := newFixture(t)
	runCLITests(t, f, []cliTest{
		{name: "no command", args: nil, wantErr: errHelp, wantOut: []string{"Usage:", "subject-add"}},
		{name: "unknown command", args: []string{"grades"}, wantErr: errHelp, wantOut: []string{"attendance-report"}},
		{name: "flag help", args: []string{"student-list", "-h"}, wantErr: errHelp, wantOut: []string{"-class"}},
		{name: "missing class flag", args: []string{"student-list"}, wantErr: errHelp},
		{name: "missing plan", args: []string{"subject-add", "-name", "수학", "-year", "2025", "-semester", "1"}, wantErr: errHelp},
		{name: "unknown flag", args: []string{"student-list", "-klass", "x"}, wantErrStr: "flag provided but not defined"},
	})
}

func TestRun_Subjects(t *testing.T) {
	f := newFixture(t)
	plan := f.writeFile(t, "수학 계획.pdf", "%PDF-1.4")

	runCLITests(t, f, []cliTest{
		{
			name:    "add",
			args:    []string{"subject-add", "-name", "수학", "-year", "2025", "-semester", "1", "-plan", plan},
			wantOut: []string{"subject 2025년 1학기 - 수학 added"},
		},
		{
			name:       "bad semester",
			args:       []string{"subject-add", "-name", "수학", "-year", "2025", "-semester", "3", "-plan", plan},
			wantErrStr: "semester",
		},
		{
			name:       "plan not found",
			args:       []string{"subject-add", "-name", "수학", "-year", "2025", "-semester", "1", "-plan", filepath.Join(f.dir, "nope.pdf")},
			wantErrStr: "no such file",
		},
		{
			name:    "list",
			args:    []string{"subject-list"},
			wantOut: []string{"2025년 1학기 - 수학", "http://files.test/plans/"},
		},
	})

	subjects, err := f.gw.Subjects.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, subjects, 1)
}

func TestRun_Classes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	subjectID, err := f.gw.Subjects.Create(ctx, database.Subject{Name: "과학", Year: 2025, Semester: 2},
		database.PlanFile{Name: "plan.pdf", Body: strings.NewReader("%PDF")})
	require.NoError(t, err)

	runCLITests(t, f, []cliTest{
		{
			name:    "add",
			args:    []string{"class-add", "-subject", subjectID, "-name", "5-2", "-weekdays", "월, 수", "-periods", "1,3"},
			wantOut: []string{"class 5-2 added"},
		},
		{
			name:       "unknown subject",
			args:       []string{"class-add", "-subject", "missing", "-name", "5-3"},
			wantErrStr: `subject "missing" not found`,
		},
		{
			name:       "bad period",
			args:       []string{"class-add", "-subject", subjectID, "-name", "5-3", "-periods", "1,x"},
			wantErrStr: `invalid number "x"`,
		},
		{
			name:       "period out of range",
			args:       []string{"class-add", "-subject", subjectID, "-name", "5-3", "-periods", "9"},
			wantErrStr: "periods",
		},
		{
			name:    "list",
			args:    []string{"class-list"},
			wantOut: []string{"5-1", "5-2", "2025년 2학기 - 과학", "월,수", "1,3"},
		},
	})
}

func TestRun_Students(t *testing.T) {
	f := newFixture(t)
	roster := f.writeFile(t, "roster.csv", "id,name\n2,이서연\n3,박지훈\n")

	runCLITests(t, f, []cliTest{
		{
			name:    "add",
			args:    []string{"student-add", "-class", f.classID, "-id", "5", "-name", "최유진"},
			wantOut: []string{"student 최유진 added"},
		},
		{
			name:    "import",
			args:    []string{"student-import", "-class", f.classID, "-file", roster},
			wantOut: []string{"2 students imported"},
		},
		{
			name:    "list",
			args:    []string{"student-list", "-class", f.classID},
			wantOut: []string{"김민수", "최유진", "이서연", "박지훈"},
		},
	})
}

func TestRun_StudentImportMalformedFails(t *testing.T) {
	f := newFixture(t)
	bad := f.writeFile(t, "bad.csv", "id,name\n4\n")

	err := f.cli.run([]string{"admin", "student-import", "-class", f.classID, "-file", bad})
	var verr *services.ValidationError
	require.ErrorAs(t, err, &verr)

	students, err := f.gw.Students.List(context.Background(), f.classID)
	require.NoError(t, err)
	assert.Len(t, students, 1)
}

func TestRun_Attendance(t *testing.T) {
	f := newFixture(t)

	runCLITests(t, f, []cliTest{
		{
			name:    "add",
			args:    []string{"attendance-add", "-class", f.classID, "-student", "1", "-date", "2025-03-04", "-status", "지각", "-note", "버스"},
			wantOut: []string{"attendance recorded"},
		},
		{
			name:    "unknown student",
			args:    []string{"attendance-add", "-class", f.classID, "-student", "99", "-date", "2025-03-04", "-status", "출석"},
			wantErr: services.ErrUnknownStudent,
		},
		{
			name:       "bad status",
			args:       []string{"attendance-add", "-class", f.classID, "-student", "1", "-date", "2025-03-04", "-status", "병결"},
			wantErrStr: `invalid status "병결"`,
		},
		{
			name:       "bad date",
			args:       []string{"attendance-add", "-class", f.classID, "-student", "1", "-date", "03/04", "-status", "출석"},
			wantErrStr: `invalid date "03/04"`,
		},
		{
			name:    "report",
			args:    []string{"attendance-report", "-from", "2025-03-01", "-to", "2025-03-31"},
			wantOut: []string{"학번", "5-1", "2025-03-04", "지각", "버스"},
		},
	})
}

func TestRun_ScheduleReport(t *testing.T) {
	f := newFixture(t)
	xlsxPath := filepath.Join(f.dir, "schedule.xlsx")

	runCLITests(t, f, []cliTest{
		{
			name:    "add",
			args:    []string{"schedule-add", "-class", f.classID, "-date", "2025-03-05", "-period", "3", "-content", "분수의 뺄셈", "-note", "숙제"},
			wantOut: []string{"schedule entry added"},
		},
		{
			name:       "add bad period",
			args:       []string{"schedule-add", "-class", f.classID, "-date", "2025-03-05", "-period", "0", "-content", "복습"},
			wantErrStr: "period",
		},
		{
			name:    "report",
			args:    []string{"schedule-report", "-from", "2025-03-04", "-to", "2025-03-05", "-xlsx", xlsxPath},
			wantOut: []string{"분수의 덧셈", "분수의 뺄셈", "2 rows written"},
		},
		{
			name:       "report bad range",
			args:       []string{"schedule-report", "-from", "2025-3-4", "-to", "2025-03-05"},
			wantErrStr: `invalid -from "2025-3-4"`,
		},
		{
			name:    "report other class only",
			args:    []string{"schedule-report", "-from", "2025-03-01", "-to", "2025-03-31", "-class", "other"},
			wantOut: []string{"진도"},
		},
	})

	book, err := excelize.OpenFile(xlsxPath)
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows("Report")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "2025-03-04", rows[1][1])
	assert.Equal(t, "2025-03-05", rows[2][1])
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"월", "수"}, splitList(" 월 ,, 수 "))
}
