package cache

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shaiso/Lineage/internal/telemetry"
)

// Ошибки кэша.
var (
	// ErrEntryNotFound — запись с таким digest отсутствует в кэше.
	ErrEntryNotFound = errors.New("cache entry not found")

	// ErrInvalidDigest — digest слишком короткий для раскладки по каталогам.
	ErrInvalidDigest = errors.New("invalid digest")
)

// DefaultRoot возвращает корень кэша: переменная LINEAGE_CACHE
// либо ~/.lineage/cache.
func DefaultRoot() string {
	if root := os.Getenv("LINEAGE_CACHE"); root != "" {
		return root
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".lineage-cache"
	}
	return filepath.Join(home, ".lineage", "cache")
}

// Cache — локальный кэш артефактов на файловой системе.
type Cache struct {
	root   string
	logger *slog.Logger
}

// New создаёт Cache с корнем root.
func New(root string, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{root: root, logger: logger}
}

// Root возвращает корневой каталог кэша.
func (c *Cache) Root() string {
	return c.root
}

// entryPath возвращает путь записи для digest.
func (c *Cache) entryPath(digest string) (string, error) {
	if len(digest) < 3 {
		return "", fmt.Errorf("%w: %q", ErrInvalidDigest, digest)
	}
	return filepath.Join(c.root, digest[:2], digest), nil
}

// Has проверяет наличие записи для digest.
func (c *Cache) Has(digest string) (bool, error) {
	path, err := c.entryPath(digest)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(path)
	if err == nil {
		telemetry.CacheHits.Inc()
		return true, nil
	}
	if os.IsNotExist(err) {
		telemetry.CacheMisses.Inc()
		return false, nil
	}
	return false, fmt.Errorf("stat cache entry: %w", err)
}

// Store кладёт файл src в кэш под ключом digest.
// Существующая запись не перезаписывается: digest контентно-адресуем,
// содержимое по определению то же самое.
func (c *Cache) Store(digest, src string) error {
	path, err := c.entryPath(digest)
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil {
		c.logger.Debug("cache entry already present", "digest", digest)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	// Пишем во временный файл и переименовываем, чтобы параллельный
	// Fetch не увидел недописанную запись
	tmp, err := os.CreateTemp(filepath.Dir(path), ".store-*")
	if err != nil {
		return fmt.Errorf("create temp entry: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := copyFile(tmp, src); err != nil {
		tmp.Close()
		return fmt.Errorf("copy %s into cache: %w", src, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp entry: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("publish cache entry: %w", err)
	}

	c.logger.Info("stored cache entry", "digest", digest, "src", src)
	return nil
}

// Fetch копирует запись digest в файл dest.
func (c *Cache) Fetch(digest, dest string) error {
	path, err := c.entryPath(digest)
	if err != nil {
		return err
	}

	in, err := os.Open(path)
	if os.IsNotExist(err) {
		telemetry.CacheMisses.Inc()
		return fmt.Errorf("%w: %s", ErrEntryNotFound, digest)
	}
	if err != nil {
		return fmt.Errorf("open cache entry: %w", err)
	}
	defer in.Close()

	if dir := filepath.Dir(dest); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dest dir: %w", err)
		}
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create dest %s: %w", dest, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy cache entry to %s: %w", dest, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close dest %s: %w", dest, err)
	}

	telemetry.CacheHits.Inc()
	c.logger.Info("fetched cache entry", "digest", digest, "dest", dest)
	return nil
}

// Size возвращает количество записей в кэше.
func (c *Cache) Size() (int, error) {
	count := 0
	err := filepath.WalkDir(c.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("walk cache: %w", err)
	}
	return count, nil
}

// copyFile копирует содержимое файла src в открытый dst.
func copyFile(dst io.Writer, src string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	_, err = io.Copy(dst, in)
	return err
}
