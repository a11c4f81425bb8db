package upload

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/MaulRai/tiku/internal/config"
	"github.com/MaulRai/tiku/internal/logger"
	"github.com/gabriel-vasile/mimetype"
)

// Kind 上传文件类别
type Kind string

const (
	KindImage    Kind = "image"    // 活动海报等图片
	KindDocument Kind = "document" // 提案附件等文档
)

// 各类别允许的MIME类型
var allowedTypes = map[Kind][]string{
	KindImage:    {"image/jpeg", "image/png", "image/webp", "image/gif"},
	KindDocument: {"application/pdf", "image/jpeg", "image/png"},
}

// Store 本地文件存储
// 按内容哈希命名，重复上传同一文件得到同一地址
type Store struct {
	dir     string
	baseURL string
	cfg     config.UploadConfig
}

// StoredFile 已保存的文件信息
type StoredFile struct {
	Name string `json:"name"` // 哈希文件名
	URL  string `json:"url"`  // 访问地址
	Size int64  `json:"size"`
	Mime string `json:"mime"`
}

// NewStore 创建文件存储
func NewStore(cfg config.UploadConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir %s: %w", cfg.Dir, err)
	}

	return &Store{
		dir:     cfg.Dir,
		baseURL: cfg.BaseURL,
		cfg:     cfg,
	}, nil
}

// Save 校验并保存上传内容
func (s *Store) Save(r io.Reader, kind Kind) (*StoredFile, error) {
	maxSize := s.maxSize(kind)

	// 多读一个字节用于检测超限
	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("读取上传内容失败: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, fmt.Errorf("文件大小超过%d字节上限", maxSize)
	}
	if len(data) == 0 {
		return nil, errors.New("上传内容为空")
	}

	mime := mimetype.Detect(data)
	if !s.allowed(kind, mime) {
		return nil, fmt.Errorf("不支持的文件类型%s", mime.String())
	}

	sum := sha256.Sum256(data)
	name := hex.EncodeToString(sum[:]) + mime.Extension()
	path := filepath.Join(s.dir, name)

	// 内容哈希命名，已存在即为同一文件
	if _, err := os.Stat(path); err == nil {
		return s.storedFile(name, int64(len(data)), mime.String()), nil
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("保存文件失败: %w", err)
	}

	logger.Info("Stored %s upload %s (%d bytes)", kind, name, len(data))
	return s.storedFile(name, int64(len(data)), mime.String()), nil
}

// Open 打开已保存的文件
func (s *Store) Open(name string) (*os.File, error) {
	// 文件名只允许哈希加扩展名，拒绝路径穿越
	if filepath.Base(name) != name {
		return nil, errors.New("文件名无效")
	}
	return os.Open(filepath.Join(s.dir, name))
}

// Dir 存储目录
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) maxSize(kind Kind) int64 {
	if kind == KindImage {
		return s.cfg.MaxImageSize
	}
	return s.cfg.MaxDocumentSize
}

func (s *Store) allowed(kind Kind, mime *mimetype.MIME) bool {
	for _, allowed := range allowedTypes[kind] {
		if mime.Is(allowed) {
			return true
		}
	}
	return false
}

func (s *Store) storedFile(name string, size int64, mime string) *StoredFile {
	return &StoredFile{
		Name: name,
		URL:  s.baseURL + "/" + name,
		Size: size,
		Mime: mime,
	}
}
