package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"

	"classBook/database"
	"classBook/services"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	gw       *database.Gateway
	reports  *services.ReportBuilder
	importer *services.StudentImporter
	recorder *services.AttendanceRecorder
	out      io.Writer
}

func newCommandLine(gw *database.Gateway, reports *services.ReportBuilder, out io.Writer) *commandLine {
	return &commandLine{
		gw:       gw,
		reports:  reports,
		importer: services.NewStudentImporter(gw.Students),
		recorder: services.NewAttendanceRecorder(gw.Students, gw.Attendance),
		out:      out,
	}
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  subject-add -name NAME -year YEAR -semester 1|2 -plan FILE.pdf")
	fmt.Fprintln(cli.out, "  subject-list")
	fmt.Fprintln(cli.out, "  class-add -subject SUBJECT_ID -name NAME [-weekdays 월,수] [-periods 1,3]")
	fmt.Fprintln(cli.out, "  class-list")
	fmt.Fprintln(cli.out, "  student-add -class CLASS_ID -id ID -name NAME")
	fmt.Fprintln(cli.out, "  student-import -class CLASS_ID -file ROSTER.csv")
	fmt.Fprintln(cli.out, "  student-list -class CLASS_ID")
	fmt.Fprintln(cli.out, "  schedule-add -class CLASS_ID -date YYYY-MM-DD -period N -content TEXT [-note TEXT]")
	fmt.Fprintln(cli.out, "  schedule-report -from YYYY-MM-DD -to YYYY-MM-DD [-class ID,ID] [-xlsx FILE]")
	fmt.Fprintln(cli.out, "  attendance-add -class CLASS_ID -student ID -date YYYY-MM-DD -status 출석|지각|조퇴|결석 [-note TEXT]")
	fmt.Fprintln(cli.out, "  attendance-report -from YYYY-MM-DD -to YYYY-MM-DD [-class ID,ID] [-xlsx FILE]")
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func (cli *commandLine) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errHelp
		}
		return err
	}
	return nil
}

// require prints usage and returns errHelp when a mandatory flag is empty.
func require(fs *flag.FlagSet, values ...string) error {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			fs.Usage()
			return errHelp
		}
	}
	return nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	ctx := context.Background()
	cmd, rest := args[1], args[2:]

	switch cmd {
	case "subject-add":
		fs := cli.newFlagSet(cmd)
		name := fs.String("name", "", "Subject name, one of "+strings.Join(database.SubjectNames, " "))
		year := fs.Int("year", 0, "School year")
		semester := fs.Int("semester", 0, "Semester (1 or 2)")
		plan := fs.String("plan", "", "Lesson and assessment plan PDF")
		if err := cli.parse(fs, rest); err != nil {
			return err
		}
		if err := require(fs, *name, *plan); err != nil {
			return err
		}
		return cli.addSubject(ctx, database.Subject{Name: *name, Year: *year, Semester: *semester}, *plan)

	case "subject-list":
		return cli.listSubjects(ctx)

	case "class-add":
		fs := cli.newFlagSet(cmd)
		subjectID := fs.String("subject", "", "Subject ID (see subject-list)")
		name := fs.String("name", "", "Class name, e.g. 5-1")
		weekdays := fs.String("weekdays", "", "Comma separated weekdays: "+strings.Join(database.Weekdays, ","))
		periods := fs.String("periods", "", "Comma separated periods (1-7)")
		if err := cli.parse(fs, rest); err != nil {
			return err
		}
		if err := require(fs, *subjectID, *name); err != nil {
			return err
		}
		ps, err := parseInts(*periods)
		if err != nil {
			return err
		}
		return cli.addClass(ctx, *subjectID, database.Class{Name: *name, Weekdays: splitList(*weekdays), Periods: ps})

	case "class-list":
		return cli.listClasses(ctx)

	case "student-add":
		fs := cli.newFlagSet(cmd)
		classID := fs.String("class", "", "Class ID")
		id := fs.String("id", "", "Student number")
		name := fs.String("name", "", "Student name")
		if err := cli.parse(fs, rest); err != nil {
			return err
		}
		if err := require(fs, *classID, *id, *name); err != nil {
			return err
		}
		docID, err := cli.gw.Students.Create(ctx, *classID, database.Student{StudentID: *id, Name: *name})
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "student %s added (%s)\n", *name, docID)
		return nil

	case "student-import":
		fs := cli.newFlagSet(cmd)
		classID := fs.String("class", "", "Class ID")
		file := fs.String("file", "", "CSV file with id,name rows")
		if err := cli.parse(fs, rest); err != nil {
			return err
		}
		if err := require(fs, *classID, *file); err != nil {
			return err
		}
		n, err := cli.importer.ImportFile(ctx, *classID, *file)
		fmt.Fprintf(cli.out, "%d students imported\n", n)
		return err

	case "student-list":
		fs := cli.newFlagSet(cmd)
		classID := fs.String("class", "", "Class ID")
		if err := cli.parse(fs, rest); err != nil {
			return err
		}
		if err := require(fs, *classID); err != nil {
			return err
		}
		return cli.listStudents(ctx, *classID)

	case "schedule-add":
		fs := cli.newFlagSet(cmd)
		classID := fs.String("class", "", "Class ID")
		date := fs.String("date", "", "Lesson date (YYYY-MM-DD)")
		period := fs.Int("period", 0, "Period (1-7)")
		content := fs.String("content", "", "Progress")
		note := fs.String("note", "", "Remarks")
		if err := cli.parse(fs, rest); err != nil {
			return err
		}
		if err := require(fs, *classID, *date); err != nil {
			return err
		}
		docID, err := cli.gw.Schedule.Create(ctx, *classID, database.ScheduleEntry{Date: *date, Period: *period, Content: *content, Note: *note})
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "schedule entry added (%s)\n", docID)
		return nil

	case "attendance-add":
		fs := cli.newFlagSet(cmd)
		classID := fs.String("class", "", "Class ID")
		studentID := fs.String("student", "", "Student number")
		date := fs.String("date", "", "Date (YYYY-MM-DD)")
		status := fs.String("status", "", "출석, 지각, 조퇴 or 결석")
		note := fs.String("note", "", "Remarks")
		if err := cli.parse(fs, rest); err != nil {
			return err
		}
		if err := require(fs, *classID, *studentID, *date, *status); err != nil {
			return err
		}
		day, err := database.ParseDate(*date)
		if err != nil {
			return errors.Wrapf(err, "invalid date %q", *date)
		}
		st, ok := database.ParseStatus(*status)
		if !ok {
			return errors.Errorf("invalid status %q", *status)
		}
		docID, err := cli.recorder.Submit(ctx, *classID, *studentID, day, st, *note)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "attendance recorded (%s)\n", docID)
		return nil

	case "schedule-report", "attendance-report":
		kind := services.ScheduleReport
		if cmd == "attendance-report" {
			kind = services.AttendanceReport
		}
		fs := cli.newFlagSet(cmd)
		from := fs.String("from", "", "First day (YYYY-MM-DD)")
		to := fs.String("to", "", "Last day (YYYY-MM-DD)")
		classIDs := fs.String("class", "", "Comma separated class IDs (default all)")
		xlsx := fs.String("xlsx", "", "Also write the report to this .xlsx file")
		if err := cli.parse(fs, rest); err != nil {
			return err
		}
		if err := require(fs, *from, *to); err != nil {
			return err
		}
		start, err := database.ParseDate(*from)
		if err != nil {
			return errors.Wrapf(err, "invalid -from %q", *from)
		}
		end, err := database.ParseDate(*to)
		if err != nil {
			return errors.Wrapf(err, "invalid -to %q", *to)
		}
		return cli.report(ctx, kind, splitList(*classIDs), start, end, *xlsx)

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) addSubject(ctx context.Context, subject database.Subject, planPath string) error {
	f, err := os.Open(planPath)
	if err != nil {
		return err
	}
	defer f.Close()

	id, err := cli.gw.Subjects.Create(ctx, subject, database.PlanFile{
		Name:        filepath.Base(planPath),
		Body:        f,
		ContentType: "application/pdf",
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "subject %s added (%s)\n", subject.DisplayName(), id)
	return nil
}

func (cli *commandLine) addClass(ctx context.Context, subjectID string, class database.Class) error {
	subjects, err := cli.gw.Subjects.List(ctx)
	if err != nil {
		return err
	}
	for _, s := range subjects {
		if s.ID == subjectID {
			class.Subject = s.DisplayName()
			break
		}
	}
	if class.Subject == "" {
		return errors.Errorf("subject %q not found", subjectID)
	}

	id, err := cli.gw.Classes.Create(ctx, class)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "class %s added (%s)\n", class.Name, id)
	return nil
}

func (cli *commandLine) listSubjects(ctx context.Context) error {
	subjects, err := cli.gw.Subjects.List(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\t교과\tPDF")
	for _, s := range subjects {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.ID, s.DisplayName(), s.PdfURL)
	}
	return tw.Flush()
}

func (cli *commandLine) listClasses(ctx context.Context) error {
	classes, err := cli.gw.Classes.List(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\t반\t교과\t요일\t교시")
	for _, c := range classes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Subject, strings.Join(c.Weekdays, ","), joinInts(c.Periods))
	}
	return tw.Flush()
}

func (cli *commandLine) listStudents(ctx context.Context, classID string) error {
	students, err := cli.gw.Students.List(ctx, classID)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "학번\t이름")
	for _, s := range students {
		fmt.Fprintf(tw, "%s\t%s\n", s.StudentID, s.Name)
	}
	return tw.Flush()
}

func (cli *commandLine) report(ctx context.Context, kind services.ReportKind, classIDs []string, start, end time.Time, xlsxPath string) error {
	classes, err := cli.gw.Classes.List(ctx)
	if err != nil {
		return err
	}
	if len(classIDs) > 0 {
		classes = filterClasses(classes, classIDs)
	}

	report, err := cli.reports.Build(ctx, kind, classes, start, end)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(kind.Columns(), "\t"))
	for _, row := range report.Rows {
		cells := kind.Cells(row)
		parts := make([]string, len(cells))
		for i, c := range cells {
			parts[i] = fmt.Sprint(c)
		}
		fmt.Fprintln(tw, strings.Join(parts, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if xlsxPath == "" {
		return nil
	}
	f, err := os.Create(xlsxPath)
	if err != nil {
		return err
	}
	if err := services.ExportXLSX(f, report); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%d rows written to %s\n", len(report.Rows), xlsxPath)
	return nil
}

func filterClasses(classes []database.Class, ids []string) []database.Class {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := make([]database.Class, 0, len(ids))
	for _, c := range classes {
		if want[c.ID] {
			out = append(out, c)
		}
	}
	return out
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseInts(s string) ([]int, error) {
	var out []int
	for _, part := range splitList(s) {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, errors.Errorf("invalid number %q", part)
		}
		out = append(out, n)
	}
	return out, nil
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}
