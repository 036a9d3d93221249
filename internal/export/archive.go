package export

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Archive складывает документы завершенных сессий в каталог как result_<unix-ms>.json.
type Archive struct {
	dir    string
	now    func() time.Time
	logger *zap.Logger
}

func NewArchive(dir string, logger *zap.Logger) (*Archive, error) {
	if dir == "" {
		return nil, errors.New("archive directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("не удалось создать каталог результатов %s: %w", dir, err)
	}
	return &Archive{dir: dir, now: time.Now, logger: logger.Named("ResultArchive")}, nil
}

// Save пишет документ и возвращает путь к файлу. Существующий файл не перезаписывается:
// при совпадении миллисекунд к имени добавляется ID сессии.
func (a *Archive) Save(doc *Document) (string, error) {
	data, err := doc.Marshal()
	if err != nil {
		return "", err
	}

	ms := a.now().UnixMilli()
	path := filepath.Join(a.dir, fmt.Sprintf("result_%d.json", ms))
	err = writeNew(path, data)
	if errors.Is(err, fs.ErrExist) {
		path = filepath.Join(a.dir, fmt.Sprintf("result_%d_%s.json", ms, doc.SessionID))
		err = writeNew(path, data)
	}
	if err != nil {
		return "", fmt.Errorf("error saving result file: %w", err)
	}
	a.logger.Info("Saved result", zap.String("file", filepath.Base(path)), zap.String("sessionID", doc.SessionID))
	return path, nil
}

func writeNew(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
