package provenance

import (
	"encoding/json"
	"hash"
	"io"
	"os"
)

// hashBlockSize — размер блока при чтении входных файлов.
// Файл любого размера читается с ограниченной памятью.
const hashBlockSize = 4096

// canonicalValue сериализует значение параметра в каноническую
// текстовую форму: JSON с отсортированными ключами объектов
// (encoding/json сортирует ключи map детерминированно).
//
// Ошибка сериализации означает, что надёжный хэш вычислить нельзя.
func canonicalValue(v any) ([]byte, error) {
	return json.Marshal(v)
}

// hashFile скармливает содержимое файла аккумулятору блоками
// фиксированного размера.
func hashFile(h hash.Hash, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := make([]byte, hashBlockSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
