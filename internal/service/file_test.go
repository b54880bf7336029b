package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"go-file-manager/internal/domain"
	"go-file-manager/internal/models"
)

// fileFixture wires a file service and a folder service over one
// database so tests can build real folder scopes.
type fileFixture struct {
	files   *FileService
	folders *FolderService
	blobs   *stubStorage
}

func newFileFixture(t *testing.T) *fileFixture {
	t.Helper()
	db := newTestDB(t)
	blobs := newStubStorage()
	return &fileFixture{
		files:   NewFileService(db, blobs, "http://localhost:8080", testLogger()),
		folders: NewFolderService(db, testLogger()),
		blobs:   blobs,
	}
}

func mustCreateFile(t *testing.T, svc *FileService, name string, folderID *uint) *models.FileWithFolder {
	t.Helper()
	file, err := svc.Create(context.Background(), CreateFileRequest{Name: name, FolderID: folderID})
	if err != nil {
		t.Fatalf("create file %q: %v", name, err)
	}
	return file
}

func TestCreateFile(t *testing.T) {
	fx := newFileFixture(t)
	ctx := context.Background()

	root := mustCreateFile(t, fx.files, "notes.txt", nil)
	if root.Path != "/notes.txt" {
		t.Errorf("root file path = %q, want /notes.txt", root.Path)
	}
	if root.FolderID != nil {
		t.Errorf("root file folder = %v, want nil", root.FolderID)
	}
	if root.StoragePath != nil {
		t.Error("metadata-only create must leave storage path null")
	}

	docs := mustCreateFolder(t, fx.folders, "Docs", nil)
	nested := mustCreateFile(t, fx.files, "report.pdf", &docs.ID)
	if nested.Path != "/Docs/report.pdf" {
		t.Errorf("nested file path = %q, want /Docs/report.pdf", nested.Path)
	}

	folderID, err := fx.files.FolderIDOf(ctx, nested.ID)
	if err != nil {
		t.Fatalf("folder of: %v", err)
	}
	if folderID == nil || *folderID != docs.ID {
		t.Errorf("membership = %v, want %d", folderID, docs.ID)
	}
}

func TestCreateFileFolderNotFound(t *testing.T) {
	fx := newFileFixture(t)

	_, err := fx.files.Create(context.Background(), CreateFileRequest{Name: "x", FolderID: uintp(99)})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want not-found", err)
	}
}

func TestCreateFileValidation(t *testing.T) {
	fx := newFileFixture(t)
	ctx := context.Background()

	for _, name := range []string{"", "  ", "a/b", `a\b`} {
		if _, err := fx.files.Create(ctx, CreateFileRequest{Name: name}); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("Create(%q) err = %v, want validation error", name, err)
		}
	}
	if _, err := fx.files.Create(ctx, CreateFileRequest{Name: "ok", Size: -1}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("negative size: err = %v, want validation error", err)
	}
}

func TestFileUniquenessScopes(t *testing.T) {
	fx := newFileFixture(t)
	ctx := context.Background()

	docs := mustCreateFolder(t, fx.folders, "Docs", nil)
	mustCreateFile(t, fx.files, "a.txt", nil)
	mustCreateFile(t, fx.files, "a.txt", &docs.ID)

	if _, err := fx.files.Create(ctx, CreateFileRequest{Name: "a.txt"}); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("duplicate at root: err = %v, want conflict", err)
	}
	if _, err := fx.files.Create(ctx, CreateFileRequest{Name: "a.txt", FolderID: &docs.ID}); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("duplicate in folder: err = %v, want conflict", err)
	}

	// A folder with the same name is not a collision; only files contend.
	if _, err := fx.folders.Create(ctx, CreateFolderRequest{Name: "a.txt"}); err != nil {
		t.Errorf("folder named like a file: %v", err)
	}
}

func TestFindByFolderIDScoping(t *testing.T) {
	fx := newFileFixture(t)
	ctx := context.Background()

	docs := mustCreateFolder(t, fx.folders, "Docs", nil)
	mustCreateFile(t, fx.files, "zeta.txt", nil)
	mustCreateFile(t, fx.files, "alpha.txt", nil)
	mustCreateFile(t, fx.files, "inner.txt", &docs.ID)

	rootFiles, err := fx.files.FindByFolderID(ctx, nil)
	if err != nil {
		t.Fatalf("root listing: %v", err)
	}
	if len(rootFiles) != 2 || rootFiles[0].Name != "alpha.txt" || rootFiles[1].Name != "zeta.txt" {
		t.Errorf("root files = %v, want [alpha.txt zeta.txt]", fileNames(rootFiles))
	}

	inDocs, err := fx.files.FindByFolderID(ctx, &docs.ID)
	if err != nil {
		t.Fatalf("folder listing: %v", err)
	}
	if len(inDocs) != 1 || inDocs[0].Name != "inner.txt" {
		t.Errorf("docs files = %v, want [inner.txt]", fileNames(inDocs))
	}
}

func TestUploadStoresBlob(t *testing.T) {
	fx := newFileFixture(t)
	ctx := context.Background()

	content := "hello, blob"
	file, err := fx.files.CreateWithUpload(ctx, UploadFileRequest{
		Name:     "hello.txt",
		MimeType: strp("text/plain"),
		Size:     int64(len(content)),
		Content:  strings.NewReader(content),
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if file.StoragePath == nil {
		t.Fatal("upload must record a storage path")
	}

	stored, ok := fx.blobs.blobs[*file.StoragePath]
	if !ok {
		t.Fatalf("blob %q not in store", *file.StoragePath)
	}
	if string(stored) != content {
		t.Errorf("stored bytes = %q, want %q", stored, content)
	}

	rc, err := fx.files.OpenBlob(&file.File)
	if err != nil {
		t.Fatalf("open blob: %v", err)
	}
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	if string(got) != content {
		t.Errorf("round-tripped bytes = %q, want %q", got, content)
	}
}

func TestUploadRollback(t *testing.T) {
	fx := newFileFixture(t)
	ctx := context.Background()
	fx.blobs.saveErr = errors.New("disk full")

	_, err := fx.files.CreateWithUpload(ctx, UploadFileRequest{
		Name:    "doomed.txt",
		Content: strings.NewReader("bytes"),
	})
	var storageErr *domain.StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("err = %v, want storage error", err)
	}

	// The compensating rollback leaves no orphan row behind.
	all, listErr := fx.files.FindAll(ctx)
	if listErr != nil {
		t.Fatalf("list: %v", listErr)
	}
	if len(all) != 0 {
		t.Errorf("rows after failed upload = %d, want 0", len(all))
	}

	// The name is free again for a retry.
	if _, err := fx.files.Create(ctx, CreateFileRequest{Name: "doomed.txt"}); err != nil {
		t.Errorf("retry after rollback: %v", err)
	}
}

func TestOpenBlobWithoutContent(t *testing.T) {
	fx := newFileFixture(t)

	file := mustCreateFile(t, fx.files, "empty.txt", nil)
	if _, err := fx.files.OpenBlob(&file.File); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want not-found", err)
	}
}

func TestRenameFileConflicts(t *testing.T) {
	fx := newFileFixture(t)
	ctx := context.Background()

	mustCreateFile(t, fx.files, "a.txt", nil)
	b := mustCreateFile(t, fx.files, "b.txt", nil)

	if _, err := fx.files.Update(ctx, b.ID, UpdateFileRequest{Name: strp("a.txt")}); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("rename onto sibling: err = %v, want conflict", err)
	}

	renamed, err := fx.files.Update(ctx, b.ID, UpdateFileRequest{Name: strp("c.txt")})
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if renamed.Name != "c.txt" || renamed.Path != "/c.txt" {
		t.Errorf("renamed = %q at %q, want c.txt at /c.txt", renamed.Name, renamed.Path)
	}
}

func TestMoveFileBetweenScopes(t *testing.T) {
	fx := newFileFixture(t)
	ctx := context.Background()

	docs := mustCreateFolder(t, fx.folders, "Docs", nil)
	file := mustCreateFile(t, fx.files, "a.txt", nil)

	moved, err := fx.files.Update(ctx, file.ID, UpdateFileRequest{FolderID: setID(&docs.ID)})
	if err != nil {
		t.Fatalf("move into folder: %v", err)
	}
	if moved.FolderID == nil || *moved.FolderID != docs.ID {
		t.Errorf("membership = %v, want %d", moved.FolderID, docs.ID)
	}
	if moved.Path != "/Docs/a.txt" {
		t.Errorf("moved path = %q, want /Docs/a.txt", moved.Path)
	}

	rootFiles, _ := fx.files.FindByFolderID(ctx, nil)
	if len(rootFiles) != 0 {
		t.Errorf("root still lists %v after move", fileNames(rootFiles))
	}

	back, err := fx.files.Update(ctx, file.ID, UpdateFileRequest{FolderID: setID(nil)})
	if err != nil {
		t.Fatalf("move to root: %v", err)
	}
	if back.FolderID != nil || back.Path != "/a.txt" {
		t.Errorf("back at root = %+v, want nil membership at /a.txt", back)
	}
}

func TestMoveFileConflictInTarget(t *testing.T) {
	fx := newFileFixture(t)
	ctx := context.Background()

	docs := mustCreateFolder(t, fx.folders, "Docs", nil)
	mustCreateFile(t, fx.files, "a.txt", &docs.ID)
	rootA := mustCreateFile(t, fx.files, "a.txt", nil)

	if _, err := fx.files.Update(ctx, rootA.ID, UpdateFileRequest{FolderID: setID(&docs.ID)}); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("move onto occupied name: err = %v, want conflict", err)
	}
}

func TestMoveFileToMissingFolder(t *testing.T) {
	fx := newFileFixture(t)

	file := mustCreateFile(t, fx.files, "a.txt", nil)
	if _, err := fx.files.Update(context.Background(), file.ID, UpdateFileRequest{FolderID: setID(uintp(99))}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want not-found", err)
	}
}

func TestNoOpFileUpdate(t *testing.T) {
	fx := newFileFixture(t)
	ctx := context.Background()

	file := mustCreateFile(t, fx.files, "a.txt", nil)

	same, err := fx.files.Update(ctx, file.ID, UpdateFileRequest{})
	if err != nil {
		t.Fatalf("no-op update: %v", err)
	}
	if !same.UpdatedAt.Equal(file.UpdatedAt) || same.Path != file.Path {
		t.Errorf("no-op update changed the row: %+v vs %+v", same, file)
	}

	missing, err := fx.files.Update(ctx, 999, UpdateFileRequest{Name: strp("x")})
	if err != nil || missing != nil {
		t.Errorf("update missing = (%v, %v), want (nil, nil)", missing, err)
	}
}

func TestUpdateFileMetadata(t *testing.T) {
	fx := newFileFixture(t)

	file := mustCreateFile(t, fx.files, "a.bin", nil)
	updated, err := fx.files.Update(context.Background(), file.ID, UpdateFileRequest{
		MimeType: strp("application/octet-stream"),
		Size:     int64p(2048),
	})
	if err != nil {
		t.Fatalf("metadata update: %v", err)
	}
	if updated.MimeType == nil || *updated.MimeType != "application/octet-stream" {
		t.Errorf("mime = %v, want application/octet-stream", updated.MimeType)
	}
	if updated.Size != 2048 {
		t.Errorf("size = %d, want 2048", updated.Size)
	}
	if updated.Path != "/a.bin" {
		t.Errorf("metadata update touched path: %q", updated.Path)
	}
}

func TestDeleteFileRemovesBlob(t *testing.T) {
	fx := newFileFixture(t)
	ctx := context.Background()

	file, err := fx.files.CreateWithUpload(ctx, UploadFileRequest{
		Name:    "gone.txt",
		Content: strings.NewReader("bytes"),
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	key := *file.StoragePath

	deleted, err := fx.files.Delete(ctx, file.ID)
	if err != nil || !deleted {
		t.Fatalf("delete = (%v, %v), want (true, nil)", deleted, err)
	}
	if len(fx.blobs.deleted) != 1 || fx.blobs.deleted[0] != key {
		t.Errorf("deleted keys = %v, want [%s]", fx.blobs.deleted, key)
	}

	deleted, err = fx.files.Delete(ctx, file.ID)
	if err != nil || deleted {
		t.Errorf("second delete = (%v, %v), want (false, nil)", deleted, err)
	}
}

func TestDeleteFileSurvivesBlobFailure(t *testing.T) {
	fx := newFileFixture(t)
	ctx := context.Background()

	file, err := fx.files.CreateWithUpload(ctx, UploadFileRequest{
		Name:    "sticky.txt",
		Content: strings.NewReader("bytes"),
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	fx.blobs.deleteErr = errors.New("backend down")

	deleted, err := fx.files.Delete(ctx, file.ID)
	if err != nil || !deleted {
		t.Errorf("delete = (%v, %v), want (true, nil) despite blob failure", deleted, err)
	}
	if got, _ := fx.files.FindByID(ctx, file.ID); got != nil {
		t.Error("row survived delete")
	}
}

func TestFileURLs(t *testing.T) {
	fx := newFileFixture(t)

	file := mustCreateFile(t, fx.files, "a.txt", nil)
	wantPreview := fmt.Sprintf("http://localhost:8080/api/files/%d/preview", file.ID)
	wantDownload := fmt.Sprintf("http://localhost:8080/api/files/%d/download", file.ID)
	if file.PreviewURL != wantPreview {
		t.Errorf("preview URL = %q, want %q", file.PreviewURL, wantPreview)
	}
	if file.DownloadURL != wantDownload {
		t.Errorf("download URL = %q, want %q", file.DownloadURL, wantDownload)
	}
}

func TestDeleteFolderDetachesFiles(t *testing.T) {
	fx := newFileFixture(t)
	ctx := context.Background()

	docs := mustCreateFolder(t, fx.folders, "Docs", nil)
	file := mustCreateFile(t, fx.files, "a.txt", &docs.ID)

	if _, err := fx.folders.Delete(ctx, docs.ID); err != nil {
		t.Fatalf("delete folder: %v", err)
	}

	// The membership row cascades away with the folder.
	folderID, err := fx.files.FolderIDOf(ctx, file.ID)
	if err != nil {
		t.Fatalf("folder of: %v", err)
	}
	if folderID != nil {
		t.Errorf("membership = %v, want nil after cascade", folderID)
	}
}

func fileNames(files []models.FileWithFolder) []string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return names
}

func int64p(v int64) *int64 { return &v }
