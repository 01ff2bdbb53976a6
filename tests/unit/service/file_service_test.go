package service_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"deedflow/internal/config"
	"deedflow/internal/domain"
	"deedflow/internal/port"
	"deedflow/internal/service"
	"deedflow/mocks"
)

func testS3Config() config.S3Config {
	return config.S3Config{
		Region:        "ap-south-1",
		Bucket:        "test-bucket",
		MaxFileSizeMB: 50,
		PresignExpiry: 3600,
	}
}

func setupFileService() (
	service.FileService,
	*mocks.MockFileMetaRepo,
	*mocks.MockFormRepo,
	*mocks.MockFormAuditRepo,
	*mocks.MockObjectStorage,
) {
	fileRepo := new(mocks.MockFileMetaRepo)
	formRepo := new(mocks.MockFormRepo)
	auditRepo := new(mocks.MockFormAuditRepo)
	storage := new(mocks.MockObjectStorage)
	cfg := testS3Config()
	svc := service.NewFileService(fileRepo, formRepo, auditRepo, storage, &cfg)
	return svc, fileRepo, formRepo, auditRepo, storage
}

// createMultipartFile creates a fake multipart file header and content for testing.
func createMultipartFile(filename string, content []byte, contentType string) (multipart.File, *multipart.FileHeader) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)

	part, _ := writer.CreatePart(h)
	_, _ = part.Write(content)
	writer.Close()

	reader := multipart.NewReader(body, writer.Boundary())
	form, _ := reader.ReadForm(int64(len(content) + 1024))
	file, _ := form.File["file"][0].Open()
	return file, form.File["file"][0]
}

// pdfContent returns minimal valid PDF bytes.
func pdfContent() []byte {
	return []byte("%PDF-1.4 test content that is at least a few bytes long for detection purposes")
}

// pngContent returns minimal valid PNG bytes (magic bytes).
func pngContent() []byte {
	header := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	return append(header, bytes.Repeat([]byte{0x00}, 100)...)
}

func TestFileService_Upload_Success_PDF(t *testing.T) {
	svc, fileRepo, formRepo, auditRepo, storage := setupFileService()

	formID := uuid.New()
	userID := uuid.New()

	file, header := createMultipartFile("sale-deed-scan.pdf", pdfContent(), "application/pdf")
	defer file.Close()

	formRepo.On("GetByID", mock.Anything, formID).Return(&domain.Form{ID: formID}, nil)
	fileRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.FileMeta")).Return(nil)
	storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Return(&port.UploadOutput{Location: "https://test-bucket.s3.amazonaws.com/test", ETag: "abc"}, nil)
	fileRepo.On("UpdateStatus", mock.Anything, mock.AnythingOfType("uuid.UUID"), domain.FileStatusUploaded).Return(nil)
	auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.FormAuditEntry")).Return(nil)

	result, err := svc.Upload(context.Background(), service.FileUploadInput{
		FormID:     &formID,
		UploadedBy: userID,
		File:       file,
		Header:     header,
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.FileStatusUploaded, result.Status)
	assert.Equal(t, domain.FileTypePDF, result.FileType)
	assert.Equal(t, "sale-deed-scan.pdf", result.OriginalName)
	assert.Equal(t, &formID, result.FormID)
	assert.Contains(t, result.S3Key, "forms/"+formID.String())

	fileRepo.AssertExpectations(t)
	storage.AssertExpectations(t)
	auditRepo.AssertExpectations(t)
}

func TestFileService_Upload_Success_PNG_NoForm(t *testing.T) {
	svc, fileRepo, formRepo, _, storage := setupFileService()

	userID := uuid.New()
	file, header := createMultipartFile("site-photo.png", pngContent(), "image/png")
	defer file.Close()

	fileRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.FileMeta")).Return(nil)
	storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Return(&port.UploadOutput{Location: "https://s3/test", ETag: "abc"}, nil)
	fileRepo.On("UpdateStatus", mock.Anything, mock.AnythingOfType("uuid.UUID"), domain.FileStatusUploaded).Return(nil)

	result, err := svc.Upload(context.Background(), service.FileUploadInput{
		UploadedBy: userID,
		File:       file,
		Header:     header,
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.FileTypePNG, result.FileType)
	assert.Contains(t, result.S3Key, "users/"+userID.String())
	formRepo.AssertNotCalled(t, "GetByID")
}

func TestFileService_Upload_UnsupportedExtension(t *testing.T) {
	svc, fileRepo, _, _, _ := setupFileService()

	file, header := createMultipartFile("malware.exe", []byte("MZ fake exe content"), "application/octet-stream")
	defer file.Close()

	result, err := svc.Upload(context.Background(), service.FileUploadInput{
		UploadedBy: uuid.New(),
		File:       file,
		Header:     header,
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
	fileRepo.AssertNotCalled(t, "Create")
}

func TestFileService_Upload_ContentMismatch(t *testing.T) {
	svc, fileRepo, _, _, _ := setupFileService()

	// A .pdf extension hiding plain text fails magic-byte detection.
	file, header := createMultipartFile("fake.pdf", []byte("just some plain text, no pdf header"), "application/pdf")
	defer file.Close()

	result, err := svc.Upload(context.Background(), service.FileUploadInput{
		UploadedBy: uuid.New(),
		File:       file,
		Header:     header,
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
	fileRepo.AssertNotCalled(t, "Create")
}

func TestFileService_Upload_FileTooLarge(t *testing.T) {
	svc, _, _, _, _ := setupFileService()

	file, header := createMultipartFile("large.pdf", pdfContent(), "application/pdf")
	defer file.Close()
	header.Size = 60 * 1024 * 1024

	result, err := svc.Upload(context.Background(), service.FileUploadInput{
		UploadedBy: uuid.New(),
		File:       file,
		Header:     header,
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
}

func TestFileService_Upload_FormNotFound(t *testing.T) {
	svc, fileRepo, formRepo, _, _ := setupFileService()

	formID := uuid.New()
	file, header := createMultipartFile("scan.pdf", pdfContent(), "application/pdf")
	defer file.Close()

	formRepo.On("GetByID", mock.Anything, formID).Return(nil, domain.ErrFormNotFound)

	result, err := svc.Upload(context.Background(), service.FileUploadInput{
		FormID:     &formID,
		UploadedBy: uuid.New(),
		File:       file,
		Header:     header,
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrFormNotFound)
	fileRepo.AssertNotCalled(t, "Create")
}

func TestFileService_Upload_StorageFailure(t *testing.T) {
	svc, fileRepo, _, _, storage := setupFileService()

	file, header := createMultipartFile("scan.pdf", pdfContent(), "application/pdf")
	defer file.Close()

	fileRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.FileMeta")).Return(nil)
	storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Return(nil, io.ErrUnexpectedEOF)
	fileRepo.On("UpdateStatus", mock.Anything, mock.AnythingOfType("uuid.UUID"), domain.FileStatusFailed).Return(nil)

	result, err := svc.Upload(context.Background(), service.FileUploadInput{
		UploadedBy: uuid.New(),
		File:       file,
		Header:     header,
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrUploadFailed)

	fileRepo.AssertExpectations(t)
	storage.AssertExpectations(t)
}

func TestFileService_GetByID_NotFound(t *testing.T) {
	svc, fileRepo, _, _, _ := setupFileService()

	fileID := uuid.New()
	fileRepo.On("GetByID", mock.Anything, fileID).Return(nil, domain.ErrNotFound)

	result, err := svc.GetByID(context.Background(), fileID)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFileService_GetDownloadURL_Success(t *testing.T) {
	svc, fileRepo, _, _, storage := setupFileService()

	fileID := uuid.New()
	meta := &domain.FileMeta{
		ID:       fileID,
		S3Bucket: "test-bucket",
		S3Key:    "forms/x/files/test.pdf",
	}

	fileRepo.On("GetByID", mock.Anything, fileID).Return(meta, nil)
	storage.On("GetPresignedURL", mock.Anything, "test-bucket", "forms/x/files/test.pdf", int64(3600)).
		Return("https://presigned-url.example.com/test", nil)

	url, err := svc.GetDownloadURL(context.Background(), fileID)

	assert.NoError(t, err)
	assert.Equal(t, "https://presigned-url.example.com/test", url)
}

func TestFileService_Delete_Success(t *testing.T) {
	svc, fileRepo, _, _, storage := setupFileService()

	fileID := uuid.New()
	meta := &domain.FileMeta{
		ID:       fileID,
		S3Bucket: "test-bucket",
		S3Key:    "forms/x/files/test.pdf",
		Status:   domain.FileStatusUploaded,
	}

	fileRepo.On("GetByID", mock.Anything, fileID).Return(meta, nil)
	storage.On("Delete", mock.Anything, "test-bucket", "forms/x/files/test.pdf").Return(nil)
	fileRepo.On("Delete", mock.Anything, fileID).Return(nil)

	err := svc.Delete(context.Background(), fileID)

	assert.NoError(t, err)
	fileRepo.AssertExpectations(t)
	storage.AssertExpectations(t)
}

func TestFileService_ListByForm_Success(t *testing.T) {
	svc, fileRepo, _, _, _ := setupFileService()

	formID := uuid.New()
	expected := []domain.FileMeta{
		{ID: uuid.New(), FormID: &formID, Status: domain.FileStatusUploaded},
		{ID: uuid.New(), FormID: &formID, Status: domain.FileStatusUploaded},
	}

	fileRepo.On("ListByForm", mock.Anything, formID).Return(expected, nil)

	files, err := svc.ListByForm(context.Background(), formID)

	assert.NoError(t, err)
	assert.Len(t, files, 2)
}
