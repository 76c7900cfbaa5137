package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/kirillkom/document-intake/internal/core/domain"
)

func newRepoWithMock(t *testing.T) (*FileRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &FileRepository{db: db}, mock, func() { _ = db.Close() }
}

func fileColumnsForScan() []string {
	return []string{
		"id", "title", "file_path", "file_type", "size_bytes", "fingerprint", "status", "error_message",
		"raw_text", "fields", "user_id", "category_id", "source_id", "uploaded_at", "last_modified",
		"cat_name", "cat_document_type", "cat_priority", "cat_confidentiality",
		"src_name", "src_type",
	}
}

func TestGetFileRecordReturnsRecordNotFound(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT").
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetFileRecord(context.Background(), 404)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetFileByHashPopulatesCategoryAndTags(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT").
		WithArgs(int64(7), "abc123").
		WillReturnRows(sqlmock.NewRows(fileColumnsForScan()).AddRow(
			int64(42), "Договор.pdf", "/data/7/file_x.pdf", "pdf", int64(2048), "abc123", "ready", nil,
			"текст", []byte(`{"total_amount":50000}`), int64(7), int64(3), nil, now, now,
			"Договоры", "Договор", "high", "internal",
			nil, nil,
		))
	mock.ExpectQuery("SELECT tag_name, tag_type, reason").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"tag_name", "tag_type", "reason"}).
			AddRow("важное", "manual", nil).
			AddRow("договор", "auto_metadata", "Тип документа: Договор"))

	rec, err := repo.GetFileByHash(context.Background(), 7, "abc123")
	if err != nil {
		t.Fatalf("GetFileByHash() error = %v", err)
	}
	if rec.ID != 42 || rec.Status != domain.StatusReady {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.Category == nil || rec.Category.Priority != domain.PriorityHigh {
		t.Fatalf("expected category with high priority, got %+v", rec.Category)
	}
	if rec.Source != nil {
		t.Fatalf("expected nil source, got %+v", rec.Source)
	}
	if len(rec.Tags) != 2 || rec.Tags[0].Name != "важное" || rec.Tags[1].Type != "auto_metadata" {
		t.Fatalf("unexpected tags: %+v", rec.Tags)
	}
	if rec.Fields["total_amount"] != float64(50000) {
		t.Fatalf("unexpected fields: %+v", rec.Fields)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreateFileAssignsIDAndInsertsTags(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	rec := &domain.FileRecord{
		Title:       "report.txt",
		FilePath:    "/data/1/file_y.txt",
		FileType:    "txt",
		SizeBytes:   10,
		Fingerprint: "fp",
		Status:      domain.StatusUploaded,
		UserID:      1,
		Tags:        []domain.TagLink{{Name: "важное", Type: "manual"}},
		UploadedAt:  now,
		ModifiedAt:  now,
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO files").
		WithArgs("report.txt", "/data/1/file_y.txt", "txt", int64(10), "fp", "uploaded", "", int64(1), nil, nil, now, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(99)))
	mock.ExpectExec("INSERT INTO file_tags").
		WithArgs(int64(99), "важное", "manual", "", 0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.CreateFile(context.Background(), rec); err != nil {
		t.Fatalf("CreateFile() error = %v", err)
	}
	if rec.ID != 99 {
		t.Fatalf("expected assigned id 99, got %d", rec.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateStatusReturnsRecordNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE files").
		WithArgs(int64(404), string(domain.StatusProcessing), "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), 404, domain.StatusProcessing, "")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSaveAnalysisReplacesDerivedTags(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	doc := &domain.ParsedDocument{RawText: "текст договора"}
	res := domain.AnalysisResult{
		FileID: 5,
		Fields: map[string]any{"number": "45/А"},
		Tags: []domain.TagResult{
			{Name: "важное", Source: domain.TagSourceManual},
			{Name: "договор", Source: domain.TagSourceAutoMetadata, Reason: "Тип документа: Договор"},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE files").
		WithArgs(int64(5), "текст договора", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM file_tags").
		WithArgs(int64(5), "manual").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO file_tags").
		WithArgs(int64(5), "договор", "auto_metadata", "Тип документа: Договор", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.SaveAnalysis(context.Background(), 5, doc, res); err != nil {
		t.Fatalf("SaveAnalysis() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListFilesAppliesTagAndTypeFilters(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT").
		WithArgs(int64(2), "pdf", "срочный", `ООО «Ромашка»`).
		WillReturnRows(sqlmock.NewRows(fileColumnsForScan()).AddRow(
			int64(11), "scan.pdf", "/data/2/file_z.pdf", "pdf", int64(512), "fp2", "ready", nil,
			nil, []byte(`{}`), int64(2), nil, nil, now, now,
			nil, nil, nil, nil,
			nil, nil,
		))
	mock.ExpectQuery("SELECT tag_name, tag_type, reason").
		WithArgs(int64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"tag_name", "tag_type", "reason"}))

	files, err := repo.ListFiles(context.Background(), 2, domain.Filter{
		FileType:     "PDF",
		Tags:         []string{"срочный"},
		Counterparty: `ООО «Ромашка»`,
	})
	if err != nil {
		t.Fatalf("ListFiles() error = %v", err)
	}
	if len(files) != 1 || files[0].ID != 11 {
		t.Fatalf("unexpected files: %+v", files)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListCounterpartiesScansDistinctValues(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT DISTINCT org").
		WillReturnRows(sqlmock.NewRows([]string{"org"}).
			AddRow(`ООО «Ромашка»`).
			AddRow(`ПАО «Газпром»`))

	orgs, err := repo.ListCounterparties(context.Background())
	if err != nil {
		t.Fatalf("ListCounterparties() error = %v", err)
	}
	if len(orgs) != 2 || orgs[0] != `ООО «Ромашка»` {
		t.Fatalf("unexpected counterparties: %v", orgs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
