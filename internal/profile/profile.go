// Package profile описывает внешнего коллаборатора - сервис профилей.
// Ядро читает из него id и отображаемые поля игрока, а после разрешенного
// мультиплеерного матча пишет обратно агрегатные счетчики.
package profile

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrNotFound - профиль не существует.
var ErrNotFound = errors.New("profile not found")

// DefaultCharacter - персонаж по умолчанию для новых профилей.
const DefaultCharacter = "rabbit"

// Profile - отображаемые данные и счетчики игрока.
type Profile struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Character string `json:"character"`

	WinCount   int `json:"winCount"`
	TotalGames int `json:"totalGames"`
}

// Store - контракт сервиса профилей.
type Store interface {
	Get(id string) (Profile, error)
	Put(p Profile) error

	// BumpCounters атомарно инкрементирует счетчики после матча:
	// totalGames всегда, winCount - только при победе.
	BumpCounters(id string, won bool) error

	// SetCharacter меняет выбранного персонажа.
	SetCharacter(id, character string) error
}

// MemoryStore - встроенная реализация Store для сервера и тестов.
type MemoryStore struct {
	mu       sync.Mutex
	profiles map[string]Profile
}

// NewMemoryStore создает пустой стор профилей.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]Profile)}
}

// GetOrCreate возвращает профиль, создавая его при первом обращении.
// Пустой id означает нового игрока - id генерируется.
func (s *MemoryStore) GetOrCreate(id, name string) Profile {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" {
		if p, ok := s.profiles[id]; ok {
			return p
		}
	}
	if id == "" {
		id = uuid.NewString()
	}
	p := Profile{ID: id, Name: name, Character: DefaultCharacter}
	s.profiles[id] = p
	return p
}

// Get возвращает профиль по id.
func (s *MemoryStore) Get(id string) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[id]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return p, nil
}

// Put сохраняет профиль целиком.
func (s *MemoryStore) Put(p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profiles[p.ID] = p
	return nil
}

// BumpCounters инкрементирует счетчики матча.
func (s *MemoryStore) BumpCounters(id string, won bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[id]
	if !ok {
		return ErrNotFound
	}
	p.TotalGames++
	if won {
		p.WinCount++
	}
	s.profiles[id] = p
	return nil
}

// SetCharacter меняет персонажа профиля.
func (s *MemoryStore) SetCharacter(id, character string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[id]
	if !ok {
		return ErrNotFound
	}
	p.Character = character
	s.profiles[id] = p
	return nil
}
