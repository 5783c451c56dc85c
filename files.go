package kafeido

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/kafeido/kafeido-go/core"
)

// FileObject describes an uploaded file.
type FileObject struct {
	ID            string `json:"id"`
	Object        string `json:"object"`
	Bytes         int64  `json:"bytes"`
	CreatedAt     int64  `json:"created_at"`
	Filename      string `json:"filename"`
	Purpose       string `json:"purpose"`
	Status        string `json:"status,omitempty"`
	StatusDetails string `json:"status_details,omitempty"`
}

// FileList is the response of the file listing endpoint.
type FileList struct {
	Object string       `json:"object"`
	Data   []FileObject `json:"data"`
}

// DeletedFile confirms a file deletion.
type DeletedFile struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

// FileUploadParams are the parameters for a file upload.
// File is required; Purpose defaults to "assistants".
type FileUploadParams struct {
	File     io.Reader
	Filename string
	Purpose  string
}

// FileListParams filter a file listing.
type FileListParams struct {
	Purpose string
}

// FileService calls the file storage endpoints.
type FileService struct {
	backend *core.Backend
}

// Upload stores a file for later use by other endpoints.
func (s *FileService) Upload(ctx context.Context, params FileUploadParams) (*FileObject, error) {
	form := &core.Form{}
	form.AddFile("file", orDefault(params.Filename, "file"), params.File)
	form.AddField("purpose", orDefault(params.Purpose, "assistants"))

	out, err := core.Do[FileObject](ctx, s.backend, &core.Request{
		Method: http.MethodPost,
		Path:   "/v1/audio/upload",
		Form:   form,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns uploaded files, optionally filtered by purpose.
func (s *FileService) List(ctx context.Context, params FileListParams) (*FileList, error) {
	query := url.Values{}
	if params.Purpose != "" {
		query.Set("purpose", params.Purpose)
	}
	out, err := core.Do[FileList](ctx, s.backend, &core.Request{
		Method: http.MethodGet,
		Path:   "/v1/audio/files",
		Query:  query,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Get returns a single uploaded file by ID.
func (s *FileService) Get(ctx context.Context, fileID string) (*FileObject, error) {
	out, err := core.Do[FileObject](ctx, s.backend, &core.Request{
		Method: http.MethodGet,
		Path:   "/v1/audio/files/" + fileID,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes an uploaded file.
func (s *FileService) Delete(ctx context.Context, fileID string) (*DeletedFile, error) {
	out, err := core.Do[DeletedFile](ctx, s.backend, &core.Request{
		Method: http.MethodDelete,
		Path:   "/v1/audio/files/" + fileID,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
