package database

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// PlansPrefix is the blob-store folder for lesson-plan uploads.
const PlansPrefix = "plans/"

// BlobStore uploads an object and returns its public URL.
type BlobStore interface {
	Upload(ctx context.Context, name string, body io.Reader, contentType string) (string, error)
}

// PlanFile is the lesson-plan attachment registered with a subject.
type PlanFile struct {
	Name        string
	Body        io.Reader
	ContentType string
}

var errNoClass = errors.New("class id is required")

type collection struct {
	store    DocumentStore
	validate *validator.Validate
}

func (c collection) add(ctx context.Context, p Path, entity interface{}, fields Fields) (string, error) {
	if err := checkFields(c.validate, entity); err != nil {
		return "", Rejected("create", p.String(), err)
	}
	return c.store.Add(ctx, p, fields)
}

func subPath(classID, name string) (Path, error) {
	if classID == "" {
		return Path{}, Rejected("access", ClassesCollection+"/?/"+name, errNoClass)
	}
	return Path{Parent: classID, Collection: name}, nil
}

type SubjectRepository struct {
	collection
	blobs BlobStore
}

func NewSubjectRepository(store DocumentStore, blobs BlobStore) *SubjectRepository {
	return &SubjectRepository{collection: collection{store: store, validate: newValidator()}, blobs: blobs}
}

// Create uploads the plan first and only then writes the subject, so a failed
// upload leaves nothing behind. Any PdfURL on subject is replaced.
func (r *SubjectRepository) Create(ctx context.Context, subject Subject, plan PlanFile) (string, error) {
	p := Path{Collection: SubjectsCollection}

	if plan.Body == nil || strings.TrimSpace(plan.Name) == "" {
		return "", Rejected("create", p.String(), errors.New("lesson plan file is required"))
	}
	if err := checkFields(r.validate, subject); err != nil {
		return "", Rejected("create", p.String(), err)
	}

	contentType := plan.ContentType
	if contentType == "" {
		contentType = "application/pdf"
	}

	url, err := r.blobs.Upload(ctx, PlansPrefix+planBaseName(plan.Name), plan.Body, contentType)
	if err != nil {
		return "", err
	}
	subject.PdfURL = url

	return r.store.Add(ctx, p, subject.fields())
}

func (r *SubjectRepository) List(ctx context.Context) ([]Subject, error) {
	docs, err := r.store.List(ctx, Path{Collection: SubjectsCollection})
	if err != nil {
		return nil, err
	}
	subjects := make([]Subject, 0, len(docs))
	for _, doc := range docs {
		subjects = append(subjects, subjectFromDocument(doc))
	}
	return subjects, nil
}

func planBaseName(name string) string {
	return path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
}

type ClassRepository struct {
	collection
}

func NewClassRepository(store DocumentStore) *ClassRepository {
	return &ClassRepository{collection{store: store, validate: newValidator()}}
}

func (r *ClassRepository) Create(ctx context.Context, class Class) (string, error) {
	return r.add(ctx, Path{Collection: ClassesCollection}, class, class.fields())
}

func (r *ClassRepository) List(ctx context.Context) ([]Class, error) {
	docs, err := r.store.List(ctx, Path{Collection: ClassesCollection})
	if err != nil {
		return nil, err
	}
	classes := make([]Class, 0, len(docs))
	for _, doc := range docs {
		classes = append(classes, classFromDocument(doc))
	}
	return classes, nil
}

type StudentRepository struct {
	collection
}

func NewStudentRepository(store DocumentStore) *StudentRepository {
	return &StudentRepository{collection{store: store, validate: newValidator()}}
}

func (r *StudentRepository) Create(ctx context.Context, classID string, student Student) (string, error) {
	p, err := subPath(classID, StudentsCollection)
	if err != nil {
		return "", err
	}
	return r.add(ctx, p, student, student.fields())
}

func (r *StudentRepository) List(ctx context.Context, classID string) ([]Student, error) {
	p, err := subPath(classID, StudentsCollection)
	if err != nil {
		return nil, err
	}
	docs, err := r.store.List(ctx, p)
	if err != nil {
		return nil, err
	}
	students := make([]Student, 0, len(docs))
	for _, doc := range docs {
		students = append(students, studentFromDocument(doc))
	}
	return students, nil
}

type ScheduleRepository struct {
	collection
}

func NewScheduleRepository(store DocumentStore) *ScheduleRepository {
	return &ScheduleRepository{collection{store: store, validate: newValidator()}}
}

func (r *ScheduleRepository) Create(ctx context.Context, classID string, entry ScheduleEntry) (string, error) {
	p, err := subPath(classID, ScheduleCollection)
	if err != nil {
		return "", err
	}
	return r.add(ctx, p, entry, entry.fields())
}

func (r *ScheduleRepository) List(ctx context.Context, classID string) ([]ScheduleEntry, error) {
	p, err := subPath(classID, ScheduleCollection)
	if err != nil {
		return nil, err
	}
	docs, err := r.store.List(ctx, p)
	if err != nil {
		return nil, err
	}
	entries := make([]ScheduleEntry, 0, len(docs))
	for _, doc := range docs {
		entries = append(entries, scheduleEntryFromDocument(doc))
	}
	return entries, nil
}

type AttendanceRepository struct {
	collection
}

func NewAttendanceRepository(store DocumentStore) *AttendanceRepository {
	return &AttendanceRepository{collection{store: store, validate: newValidator()}}
}

// Create appends; several entries for the same student and date are allowed.
func (r *AttendanceRepository) Create(ctx context.Context, classID string, entry AttendanceEntry) (string, error) {
	p, err := subPath(classID, AttendanceCollection)
	if err != nil {
		return "", err
	}
	return r.add(ctx, p, entry, entry.fields())
}

func (r *AttendanceRepository) List(ctx context.Context, classID string) ([]AttendanceEntry, error) {
	p, err := subPath(classID, AttendanceCollection)
	if err != nil {
		return nil, err
	}
	docs, err := r.store.List(ctx, p)
	if err != nil {
		return nil, err
	}
	entries := make([]AttendanceEntry, 0, len(docs))
	for _, doc := range docs {
		entries = append(entries, attendanceEntryFromDocument(doc))
	}
	return entries, nil
}

// Gateway bundles the five repositories over one document store.
type Gateway struct {
	Subjects   *SubjectRepository
	Classes    *ClassRepository
	Students   *StudentRepository
	Schedule   *ScheduleRepository
	Attendance *AttendanceRepository

	store DocumentStore
}

func NewGateway(store DocumentStore, blobs BlobStore) *Gateway {
	return &Gateway{
		Subjects:   NewSubjectRepository(store, blobs),
		Classes:    NewClassRepository(store),
		Students:   NewStudentRepository(store),
		Schedule:   NewScheduleRepository(store),
		Attendance: NewAttendanceRepository(store),
		store:      store,
	}
}

func (g *Gateway) Close() error {
	return g.store.Close()
}
