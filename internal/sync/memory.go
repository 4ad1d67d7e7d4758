package sync

import (
	gosync "sync"

	"github.com/google/uuid"

	"github.com/ranihwanifactory/stairpang/internal/domain"
)

// MemoryStore - встроенная реализация Channel: мьютекс, мапа записей,
// колбеки подписчиков. Обслуживает сервер комнат и все тесты ядра.
type MemoryStore struct {
	mu      gosync.Mutex
	records map[string]*domain.MatchRecord
	subs    map[string]map[int]SnapshotFunc
	nextSub int
}

// NewMemoryStore создает пустой стор.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*domain.MatchRecord),
		subs:    make(map[string]map[int]SnapshotFunc),
	}
}

// Create сохраняет запись, генерируя id при его отсутствии.
func (s *MemoryStore) Create(rec *domain.MatchRecord) (string, error) {
	s.mu.Lock()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	s.records[rec.ID] = rec.Clone()
	id := rec.ID
	s.mu.Unlock()

	s.notify(id)
	return id, nil
}

// Get возвращает копию записи.
func (s *MemoryStore) Get(id string) (*domain.MatchRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec.Clone(), nil
}

// Patch применяет точечное обновление под локом и рассылает снапшот.
func (s *MemoryStore) Patch(id string, p RecordPatch) error {
	s.mu.Lock()
	rec, ok := s.records[id]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}

	applyPatch(rec, p)
	s.mu.Unlock()

	s.notify(id)
	return nil
}

// applyPatch - редуктор записи: только заполненные поля перетирают
// текущие значения (last-write-wins по каждому полю).
func applyPatch(rec *domain.MatchRecord, p RecordPatch) {
	if p.ResetRace {
		rec.Sequence = nil
		rec.WinnerID = ""
		rec.LoserIDs = nil
	}
	if p.Status != nil {
		rec.Status = *p.Status
	}
	if p.Sequence != nil {
		rec.Sequence = append(domain.StepSequence(nil), p.Sequence...)
	}
	if p.WinnerID != nil {
		rec.WinnerID = *p.WinnerID
	}
	if p.LoserIDs != nil {
		rec.LoserIDs = append([]string(nil), p.LoserIDs...)
	}

	for pid, entry := range p.Players {
		cp := *entry
		rec.Players[pid] = &cp
	}

	for pid, up := range p.PlayerUpdates {
		entry, ok := rec.Players[pid]
		if !ok {
			// Игрок успел выйти - его поздние апдейты молча отбрасываются
			continue
		}
		if up.Floor != nil {
			entry.Floor = *up.Floor
		}
		if up.Facing != nil {
			entry.Facing = *up.Facing
		}
		if up.Finished != nil {
			entry.Finished = *up.Finished
		}
		if up.Character != nil {
			entry.Character = *up.Character
		}
	}

	for _, pid := range p.RemovePlayers {
		delete(rec.Players, pid)
	}
}

// Delete уничтожает запись. Подписчики получают nil и отписываются.
func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	if _, ok := s.records[id]; !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	delete(s.records, id)
	fns := s.subs[id]
	delete(s.subs, id)
	s.mu.Unlock()

	for _, fn := range fns {
		fn(nil)
	}
	return nil
}

// Subscribe регистрирует подписчика и сразу доставляет текущий снапшот.
func (s *MemoryStore) Subscribe(id string, fn SnapshotFunc) (func(), error) {
	s.mu.Lock()
	rec, ok := s.records[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}

	if s.subs[id] == nil {
		s.subs[id] = make(map[int]SnapshotFunc)
	}
	key := s.nextSub
	s.nextSub++
	s.subs[id][key] = fn
	snap := rec.Clone()
	s.mu.Unlock()

	// Первая доставка - немедленно, как onValue у realtime-сторов
	fn(snap)

	unsub := func() {
		s.mu.Lock()
		if fns, ok := s.subs[id]; ok {
			delete(fns, key)
		}
		s.mu.Unlock()
	}
	return unsub, nil
}

// ListWaiting возвращает копии комнат в статусе ожидания.
func (s *MemoryStore) ListWaiting() []*domain.MatchRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.MatchRecord
	for _, rec := range s.records {
		if rec.Status == domain.StatusWaiting {
			out = append(out, rec.Clone())
		}
	}
	return out
}

// FindByCode ищет ожидающую комнату по короткому коду.
func (s *MemoryStore) FindByCode(code string) (*domain.MatchRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.records {
		if rec.Code == code && rec.Status == domain.StatusWaiting {
			return rec.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

// notify рассылает свежий снапшот всем подписчикам записи.
// Колбеки зовутся вне лока: подписчик имеет право тут же писать в стор.
func (s *MemoryStore) notify(id string) {
	s.mu.Lock()
	rec, ok := s.records[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	snap := rec.Clone()
	fns := make([]SnapshotFunc, 0, len(s.subs[id]))
	for _, fn := range s.subs[id] {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snap.Clone())
	}
}
