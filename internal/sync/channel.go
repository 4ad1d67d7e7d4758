// Package sync абстрагирует общий realtime-стор записей матчей:
// точечные записи полей, push-подписка на полные снапшоты, семантика
// last-write-wins по каждому полю. Ядро игры зависит только от интерфейса
// Channel; конкретный бэкенд (встроенная память, внешний realtime-стор)
// подставляется снаружи.
package sync

import (
	"errors"

	"github.com/ranihwanifactory/stairpang/internal/domain"
)

// ErrNotFound - запись уже уничтожена или никогда не существовала.
// Наверх это всплывает как domain.ErrRoomGone.
var ErrNotFound = errors.New("record not found")

// PlayerPatch - точечное обновление полей, которыми владеет сам игрок.
// nil-поле не трогает текущее значение (LWW на уровне поля).
type PlayerPatch struct {
	Floor     *int
	Facing    *domain.Direction
	Finished  *bool
	Character *string
}

// RecordPatch - одно атомарное точечное обновление записи матча.
// Заполненные поля перезаписывают текущие значения, nil-поля не участвуют.
type RecordPatch struct {
	Status   *domain.MatchStatus
	Sequence domain.StepSequence // пишется один раз на старте гонки
	WinnerID *string
	LoserIDs []string

	// ResetRace очищает трассу и итоги прошлой гонки (rematch).
	ResetRace bool

	// Players - вставка/замена целых записей игроков (вход, сброс).
	Players map[string]*domain.PlayerEntry

	// PlayerUpdates - обновления отдельных полей существующих игроков.
	PlayerUpdates map[string]PlayerPatch

	// RemovePlayers - выход игроков из комнаты.
	RemovePlayers []string
}

// SnapshotFunc получает полную копию записи на каждое изменение.
// Доставка at-least-once: подписчик обязан быть идемпотентным.
type SnapshotFunc func(rec *domain.MatchRecord)

// Channel - контракт общего стора записей матчей.
type Channel interface {
	// Create сохраняет новую запись и возвращает ее id.
	Create(rec *domain.MatchRecord) (string, error)

	// Get возвращает копию текущего состояния записи.
	Get(id string) (*domain.MatchRecord, error)

	// Patch применяет точечное обновление и рассылает снапшот подписчикам.
	Patch(id string, p RecordPatch) error

	// Delete уничтожает запись. Подписчики получают nil-снапшот.
	Delete(id string) error

	// Subscribe подписывает на изменения записи. Текущее состояние
	// доставляется сразу же. Возвращает функцию отписки.
	Subscribe(id string, fn SnapshotFunc) (func(), error)

	// ListWaiting возвращает комнаты, доступные для входа (для лобби).
	ListWaiting() []*domain.MatchRecord

	// FindByCode ищет ожидающую комнату по короткому коду.
	FindByCode(code string) (*domain.MatchRecord, error)
}
