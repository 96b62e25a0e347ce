package utils

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	storage "github.com/supabase-community/storage-go"
)

var ErrStorageNotConfigured = errors.New("SUPABASE_URL hoặc SUPABASE_KEY chưa cấu hình")

// AvatarStore lưu ảnh đại diện và trả về URL công khai.
type AvatarStore interface {
	UploadAvatar(fileHeader *multipart.FileHeader, owner string) (string, error)
	DeleteAvatar(publicURL string) error
}

type SupabaseStore struct {
	URL    string
	Key    string
	Bucket string
	client *storage.Client
}

func NewSupabaseStore(url, key, bucket string) *SupabaseStore {
	if bucket == "" {
		bucket = "uploads"
	}
	s := &SupabaseStore{URL: strings.TrimRight(url, "/"), Key: key, Bucket: bucket}
	if s.URL != "" && s.Key != "" {
		s.client = storage.NewClient(s.URL+"/storage/v1", s.Key, nil)
	}
	return s
}

func (s *SupabaseStore) publicURL(objectPath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.URL, s.Bucket, objectPath)
}

// UploadAvatar uploads to <bucket>/avatars/<slug(owner)>-<uuid>.<ext>
func (s *SupabaseStore) UploadAvatar(fileHeader *multipart.FileHeader, owner string) (string, error) {
	if s.client == nil {
		return "", ErrStorageNotConfigured
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	objectPath := fmt.Sprintf("avatars/%s-%s%s", slug.Make(owner), uuid.NewString(), ext)

	contentType := fileHeader.Header.Get("Content-Type")
	options := storage.FileOptions{
		ContentType: &contentType,
	}
	if _, err := s.client.UploadFile(s.Bucket, objectPath, &buf, options); err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}
	return s.publicURL(objectPath), nil
}

// DeleteAvatar nhận public URL đã trả về từ UploadAvatar.
func (s *SupabaseStore) DeleteAvatar(publicURL string) error {
	if publicURL == "" {
		return nil
	}
	if s.client == nil {
		return ErrStorageNotConfigured
	}
	prefix := fmt.Sprintf("%s/storage/v1/object/public/%s/", s.URL, s.Bucket)
	if !strings.HasPrefix(publicURL, prefix) {
		return fmt.Errorf("không xác định được đường dẫn object trong URL: %s", publicURL)
	}
	object := strings.TrimPrefix(publicURL, prefix)
	if qIdx := strings.Index(object, "?"); qIdx != -1 {
		object = object[:qIdx]
	}
	if _, err := s.client.RemoveFile(s.Bucket, []string{object}); err != nil {
		return fmt.Errorf("xóa avatar thất bại: %w", err)
	}
	return nil
}
