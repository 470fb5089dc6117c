package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/SergeiKhy/affiliate-storefront/internal/auth"
	"github.com/SergeiKhy/affiliate-storefront/internal/config"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const MaxUploadSize = 5 << 20

var (
	ErrUploadNotConfigured = errors.New("загрузка файлов не настроена")
	ErrEmptyFile           = errors.New("файл не выбран")
	ErrFileTooLarge        = errors.New("файл больше 5 МБ")
	ErrUnsupportedType     = errors.New("неподдерживаемый тип файла")
)

// Сообщения загрузки для пользователя
const (
	MsgUploadNotConfigured = "ファイルアップロード機能が設定されていません。環境変数を確認してください。"
	MsgEmptyFile           = "ファイルが選択されていません"
	MsgFileTooLarge        = "ファイルサイズは5MB以下にしてください"
	MsgUnsupportedType     = "JPEG、PNG、WebP、GIFファイルのみアップロード可能です"
	MsgUploadFailed        = "アップロードに失敗しました"
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

// BlobStore публичное хранилище файлов
type BlobStore interface {
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// LocalBlobStore кладёт файлы в каталог, который раздаётся по baseURL
type LocalBlobStore struct {
	dir     string
	baseURL string
}

func NewLocalBlobStore(cfg config.UploadConfig) *LocalBlobStore {
	return &LocalBlobStore{dir: cfg.Dir, baseURL: strings.TrimRight(cfg.BaseURL, "/")}
}

func (s *LocalBlobStore) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return s.baseURL + "/" + url.PathEscape(name), nil
}

type UploadResult struct {
	URL         string `json:"url"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

type UploadService interface {
	Upload(ctx context.Context, filename string, r io.Reader) (*UploadResult, error)
}

type uploadService struct {
	store  BlobStore
	auth   auth.Authorizer
	clock  func() time.Time
	logger *zap.Logger
}

// NewUploadService store == nil означает, что загрузка не настроена
func NewUploadService(store BlobStore, authorizer auth.Authorizer, logger *zap.Logger) UploadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &uploadService{store: store, auth: authorizer, clock: time.Now, logger: logger}
}

func (s *uploadService) Upload(ctx context.Context, filename string, r io.Reader) (*UploadResult, error) {
	if _, err := s.auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if s.store == nil {
		s.logger.Error("Загрузка файлов не настроена: UPLOAD_DIR/UPLOAD_BASE_URL")
		return nil, ErrUploadNotConfigured
	}
	if r == nil {
		return nil, ErrEmptyFile
	}

	// Читаем на байт больше лимита, чтобы отличить ровно 5 МБ от большего файла
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if len(data) > MaxUploadSize {
		return nil, ErrFileTooLarge
	}

	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), allowedImageTypes...) {
		return nil, fmt.Errorf("%s: %w", mtype.String(), ErrUnsupportedType)
	}

	original := sanitizeFilename(filename)
	name := fmt.Sprintf("%d-%s-%s", s.clock().UnixMilli(), uuid.NewString(), original)

	publicURL, err := s.store.Put(ctx, name, mtype.String(), data)
	if err != nil {
		s.logger.Error("Ошибка сохранения файла", zap.String("name", name), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Файл загружен",
		zap.String("name", name),
		zap.String("content_type", mtype.String()),
		zap.Int("size", len(data)),
	)
	return &UploadResult{URL: publicURL, Filename: original, ContentType: mtype.String()}, nil
}

// sanitizeFilename оставляет только безопасные для пути символы
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "file"
	}
	return out
}

// UploadErrorMessage текст ошибки загрузки для пользователя
func UploadErrorMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrNotAuthorized), errors.Is(err, auth.ErrInvalidToken):
		return MsgNotAuthorized
	case errors.Is(err, ErrUploadNotConfigured):
		return MsgUploadNotConfigured
	case errors.Is(err, ErrEmptyFile):
		return MsgEmptyFile
	case errors.Is(err, ErrFileTooLarge):
		return MsgFileTooLarge
	case errors.Is(err, ErrUnsupportedType):
		return MsgUnsupportedType
	default:
		return MsgUploadFailed
	}
}
