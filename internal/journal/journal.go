package journal

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"github.com/annel0/rts-forge/internal/control"
)

// Байт-префикс формата значения: сырой JSON или zstd-кадр.
const (
	formatRaw  byte = 0
	formatZstd byte = 1
)

var keyPrefix = []byte("cmd:")

// Record — одна запись журнала: команда и сколько диспетчеров её обработало.
// Журнал фиксирует команды, а не занятость карты: сетка не сериализуется.
type Record struct {
	ID        string               `json:"id"`
	Timestamp time.Time            `json:"timestamp"`
	Event     control.CommandEvent `json:"event"`
	Handled   int                  `json:"handled"`
}

// CommandJournal — append-only журнал команд на BadgerDB.
// Нулевой Handled помечает команды, которые никто не обработал, —
// по журналу их можно найти и разобраться с конфигурацией конвейера.
type CommandJournal struct {
	db       *badger.DB
	mu       sync.RWMutex
	isReady  bool
	compress bool
	enc      *zstd.Encoder
	dec      *zstd.Decoder
}

// NewCommandJournal открывает журнал в указанной директории.
func NewCommandJournal(dataPath string, compress bool) (*CommandJournal, error) {
	dbPath := filepath.Join(dataPath, "commands")
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	j := &CommandJournal{
		db:       db,
		isReady:  true,
		compress: compress,
	}

	if compress {
		if j.enc, err = zstd.NewWriter(nil); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("zstd writer: %w", err)
		}
	}
	if j.dec, err = zstd.NewReader(nil); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("zstd reader: %w", err)
	}

	return j, nil
}

// Close закрывает журнал.
func (j *CommandJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.isReady {
		return nil
	}
	j.isReady = false

	if j.enc != nil {
		_ = j.enc.Close()
	}
	j.dec.Close()
	return j.db.Close()
}

// Append дописывает запись о команде. Ключи монотонны по времени,
// поэтому итерация по префиксу даёт хронологический порядок.
func (j *CommandJournal) Append(ev control.CommandEvent, handled int) error {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if !j.isReady {
		return fmt.Errorf("журнал не готов")
	}

	record := Record{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Event:     ev,
		Handled:   handled,
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("ошибка сериализации записи: %w", err)
	}

	value := make([]byte, 1, len(data)+1)
	if j.compress {
		value[0] = formatZstd
		value = j.enc.EncodeAll(data, value)
	} else {
		value[0] = formatRaw
		value = append(value, data...)
	}

	key := fmt.Sprintf("cmd:%020d:%s", record.Timestamp.UnixNano(), record.ID)

	err = j.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("ошибка записи в BadgerDB: %w", err)
	}
	return nil
}

// Recent возвращает последние limit записей, новые первыми.
func (j *CommandJournal) Recent(limit int) ([]Record, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if !j.isReady {
		return nil, fmt.Errorf("журнал не готов")
	}
	if limit <= 0 {
		return nil, nil
	}

	var records []Record
	err := j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = keyPrefix

		it := txn.NewIterator(opts)
		defer it.Close()

		// Для обратной итерации стартуем за верхней границей префикса
		seek := append(append([]byte{}, keyPrefix...), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(keyPrefix) && len(records) < limit; it.Next() {
			err := it.Item().Value(func(val []byte) error {
				record, err := j.decodeRecord(val)
				if err != nil {
					return err
				}
				records = append(records, *record)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}
	return records, nil
}

// decodeRecord распаковывает значение с учётом байта формата.
func (j *CommandJournal) decodeRecord(value []byte) (*Record, error) {
	if len(value) < 1 {
		return nil, fmt.Errorf("пустое значение журнала")
	}

	data := value[1:]
	if value[0] == formatZstd {
		decoded, err := j.dec.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("ошибка распаковки zstd: %w", err)
		}
		data = decoded
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("ошибка десериализации записи: %w", err)
	}
	return &record, nil
}
