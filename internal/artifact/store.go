package artifact

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ErrInvalidID идентификатор не является UUID
var ErrInvalidID = errors.New("invalid artifact id")

// FileStore хранит PDF в каталоге под именами <id>.pdf
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// path проверяет идентификатор, чтобы он не мог выйти за пределы каталога
func (s *FileStore) path(id string) (string, error) {
	if _, err := uuid.Parse(id); err != nil {
		return "", ErrInvalidID
	}
	return filepath.Join(s.dir, id+".pdf"), nil
}

// Write записывает документ через временный файл и переименование,
// так что читатель видит либо старый, либо полностью записанный файл
func (s *FileStore) Write(id string, data []byte) error {
	target, err := s.path(id)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "."+id+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("publish artifact: %w", err)
	}
	return nil
}

// ReadSeekCloser открытый документ
type ReadSeekCloser interface {
	io.ReadSeeker
	io.Closer
}

func (s *FileStore) Open(id string) (ReadSeekCloser, error) {
	p, err := s.path(id)
	if err != nil {
		return nil, err
	}
	return os.Open(p)
}

// Remove удаляет файл; отсутствие файла не считается ошибкой
func (s *FileStore) Remove(id string) error {
	p, err := s.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove artifact: %w", err)
	}
	return nil
}
