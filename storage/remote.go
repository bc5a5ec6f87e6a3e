package storage

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// RemoteStore talks to an external file service over HTTP.
type RemoteStore struct {
	client *resty.Client
}

func NewRemoteStore(baseURL, apiKey string) *RemoteStore {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetHeader("Authorization", "Bearer "+apiKey)
	return &RemoteStore{client: client}
}

// Save uploads the file and returns the path the service stored it under.
func (s *RemoteStore) Save(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	var result struct {
		Path string `json:"path"`
	}

	resp, err := s.client.R().
		SetFileReader("file", file.Filename, src).
		SetResult(&result).
		Post("/files")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("file upload failed: %s", resp.Status())
	}

	return result.Path, nil
}

// Remove deletes the file from the service. A 404 means the file is already
// gone, which is fine.
func (s *RemoteStore) Remove(path string) error {
	if path == "" {
		return nil
	}

	resp, err := s.client.R().
		SetQueryParam("path", path).
		Delete("/files")
	if err != nil {
		return err
	}
	if resp.IsError() && resp.StatusCode() != http.StatusNotFound {
		return fmt.Errorf("file removal failed: %s", resp.Status())
	}
	return nil
}
