// Package match реализует жизненный цикл общего матча: сбор состава,
// старт гонки, арбитраж победителя, rematch. Каждый клиент держит свой
// Coordinator; единственная общая вещь между клиентами - запись матча
// в realtime-сторе (sync.Channel).
package match

import (
	"fmt"
	"math/rand"
	gosync "sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ranihwanifactory/stairpang/internal/domain"
	"github.com/ranihwanifactory/stairpang/internal/engine"
	"github.com/ranihwanifactory/stairpang/internal/profile"
	storesync "github.com/ranihwanifactory/stairpang/internal/sync"
	"github.com/ranihwanifactory/stairpang/pkg/logger"
	"github.com/ranihwanifactory/stairpang/pkg/utils"
)

// MatchEventType - тип события координатора для слоя отображения.
type MatchEventType uint8

const (
	// MatchUpdated - любое изменение записи (состав, позиции-призраки).
	MatchUpdated MatchEventType = iota
	// MatchStarted - наблюдался переход waiting -> racing: пора создавать
	// локальную RaceSession с трассой из события.
	MatchStarted
	// MatchResolved - наблюдался переход в resolved. Ровно один раз.
	MatchResolved
	// MatchClosed - запись уничтожена (все вышли или комната умерла).
	MatchClosed
)

// MatchEvent - событие координатора. Record - всегда личная копия.
type MatchEvent struct {
	Type     MatchEventType
	Record   *domain.MatchRecord
	Sequence domain.StepSequence
	Goal     int
	WinnerID string
	LoserIDs []string
}

// Coordinator - клиентский оркестратор одного матча.
//
// Модель синхронизации оптимистичная: каждый клиент пишет только поля,
// которыми владеет (свою запись игрока; производный хост - еще и поля
// жизненного цикла), а входящие снапшоты прогоняет через идемпотентный
// редуктор onSnapshot. Конкурентные переходы racing -> resolved решаются
// по принципу "кто записал первым": увидев resolved, клиент больше не
// пытается писать свой исход.
type Coordinator struct {
	store    storesync.Channel
	profiles profile.Store
	self     profile.Profile
	cfg      engine.Config

	mu     gosync.Mutex
	roomID string
	unsub  func()
	last   *domain.MatchRecord

	lastStatus   domain.MatchStatus
	resolveSeen  bool // событие MatchResolved уже отдано
	statsApplied bool // счетчики профиля уже инкрементированы
	resolveWrote bool // этот клиент уже писал разрешение исхода

	// Events - шина событий для UI. Переполнение не блокирует редуктор.
	Events chan MatchEvent
}

// NewCoordinator создает координатор для одного игрока.
func NewCoordinator(store storesync.Channel, profiles profile.Store, self profile.Profile, cfg engine.Config) *Coordinator {
	return &Coordinator{
		store:    store,
		profiles: profiles,
		self:     self,
		cfg:      cfg,
		Events:   make(chan MatchEvent, 100),
	}
}

// Self возвращает профиль владельца координатора.
func (c *Coordinator) Self() profile.Profile { return c.self }

// RoomID возвращает id текущей комнаты ("" - вне комнаты).
func (c *Coordinator) RoomID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roomID
}

// Room возвращает копию последнего снапшота записи (nil - вне комнаты).
func (c *Coordinator) Room() *domain.MatchRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last.Clone()
}

// IsHost - хост ли владелец координатора по последнему снапшоту.
// Роль производная: самый ранний вход из оставшихся участников.
func (c *Coordinator) IsHost() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last != nil && c.last.HostID() == c.self.ID
}

// selfEntry делает слепок профиля для записи матча.
func (c *Coordinator) selfEntry() *domain.PlayerEntry {
	return &domain.PlayerEntry{
		ID:        c.self.ID,
		Name:      c.self.Name,
		AvatarURL: c.self.AvatarURL,
		Character: c.self.Character,
		Facing:    domain.StartDirection,
		JoinedAt:  time.Now().UnixMilli(),
	}
}

// CreateRoom создает новую комнату с владельцем координатора внутри.
func (c *Coordinator) CreateRoom() (*domain.MatchRecord, error) {
	c.mu.Lock()
	if c.roomID != "" {
		c.mu.Unlock()
		return nil, domain.ErrAlreadyJoined
	}
	c.mu.Unlock()

	rec := &domain.MatchRecord{
		Code:      utils.ShortCode(),
		Status:    domain.StatusWaiting,
		Goal:      c.cfg.Goal,
		CreatedAt: time.Now().UnixMilli(),
		Players:   map[string]*domain.PlayerEntry{c.self.ID: c.selfEntry()},
	}

	id, err := c.store.Create(rec)
	if err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}

	if err := c.attach(id); err != nil {
		return nil, err
	}

	logger.Log.WithField("room_id", id).Info("Room created")
	return c.Room(), nil
}

// JoinRoom входит в существующую комнату, пока она в ожидании.
func (c *Coordinator) JoinRoom(id string) error {
	c.mu.Lock()
	if c.roomID != "" {
		c.mu.Unlock()
		return domain.ErrAlreadyJoined
	}
	c.mu.Unlock()

	rec, err := c.store.Get(id)
	if err != nil {
		// Комната могла быть уничтожена между выбором и входом
		return domain.ErrRoomGone
	}
	if rec.Status != domain.StatusWaiting {
		return domain.ErrWrongStatus
	}
	if len(rec.Players) >= domain.MaxPlayers {
		return domain.ErrRoomFull
	}

	err = c.store.Patch(id, storesync.RecordPatch{
		Players: map[string]*domain.PlayerEntry{c.self.ID: c.selfEntry()},
	})
	if err != nil {
		return domain.ErrRoomGone
	}

	return c.attach(id)
}

// JoinByCode входит в ожидающую комнату по короткому коду.
func (c *Coordinator) JoinByCode(code string) error {
	rec, err := c.store.FindByCode(code)
	if err != nil {
		return domain.ErrRoomGone
	}
	return c.JoinRoom(rec.ID)
}

// LeaveRoom выходит из комнаты. Последний вышедший уничтожает запись.
func (c *Coordinator) LeaveRoom() error {
	c.mu.Lock()
	id := c.roomID
	unsub := c.unsub
	c.mu.Unlock()

	if id == "" {
		return domain.ErrNotInRoom
	}

	// Сначала отписка: собственный уход нам уже не интересен
	if unsub != nil {
		unsub()
	}
	c.reset()

	rec, err := c.store.Get(id)
	if err != nil {
		return nil // комнаты уже нет - выходить не из чего
	}

	_, stillIn := rec.Players[c.self.ID]
	if stillIn && len(rec.Players) == 1 {
		if err := c.store.Delete(id); err != nil {
			return fmt.Errorf("destroy room: %w", err)
		}
		logger.Log.WithField("room_id", id).Info("Room destroyed by last player leaving")
		return nil
	}

	if err := c.store.Patch(id, storesync.RecordPatch{RemovePlayers: []string{c.self.ID}}); err != nil {
		return nil
	}
	return nil
}

// StartRace - хостовый переход waiting -> racing: генерация трассы,
// сброс позиций, публикация одной атомарной записью.
func (c *Coordinator) StartRace() error {
	c.mu.Lock()
	id := c.roomID
	rec := c.last.Clone()
	c.mu.Unlock()

	if id == "" || rec == nil {
		return domain.ErrNotInRoom
	}
	if rec.HostID() != c.self.ID {
		return domain.ErrNotHost
	}
	if rec.Status != domain.StatusWaiting {
		return domain.ErrWrongStatus
	}
	if len(rec.Players) < domain.MinPlayers {
		return domain.ErrNotEnoughPlayers
	}

	// Трасса генерируется ровно один раз и уезжает всем через запись.
	// Клиенты никогда не генерируют свою: это гарантия синхронности.
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	seq := domain.GenerateSequence(domain.SequenceLength(rec.Goal), rng)

	racing := domain.StatusRacing
	patch := storesync.RecordPatch{
		Status:        &racing,
		Sequence:      seq,
		PlayerUpdates: make(map[string]storesync.PlayerPatch, len(rec.Players)),
	}
	for pid := range rec.Players {
		patch.PlayerUpdates[pid] = resetPlayerPatch()
	}

	if err := c.store.Patch(id, patch); err != nil {
		return fmt.Errorf("start race: %w", err)
	}
	logger.Log.WithField("room_id", id).Info("Race started")
	return nil
}

// Rematch - хостовый переход resolved -> waiting. Никогда не сразу в
// racing: матч возвращается в лобби, чтобы каждый мог выйти или
// подтвердить готовность перед следующей гонкой.
func (c *Coordinator) Rematch() error {
	c.mu.Lock()
	id := c.roomID
	rec := c.last.Clone()
	c.mu.Unlock()

	if id == "" || rec == nil {
		return domain.ErrNotInRoom
	}
	if rec.HostID() != c.self.ID {
		return domain.ErrNotHost
	}
	if rec.Status != domain.StatusResolved {
		return domain.ErrWrongStatus
	}

	waiting := domain.StatusWaiting
	patch := storesync.RecordPatch{
		Status:        &waiting,
		ResetRace:     true,
		PlayerUpdates: make(map[string]storesync.PlayerPatch, len(rec.Players)),
	}
	for pid := range rec.Players {
		patch.PlayerUpdates[pid] = resetPlayerPatch()
	}

	if err := c.store.Patch(id, patch); err != nil {
		return fmt.Errorf("rematch: %w", err)
	}

	// Следующая гонка - новый раунд идемпотентных флагов
	c.mu.Lock()
	c.resolveSeen = false
	c.statsApplied = false
	c.resolveWrote = false
	c.mu.Unlock()

	logger.Log.WithField("room_id", id).Info("Rematch: back to lobby")
	return nil
}

// PublishPosition проецирует локальный этаж и направление в свою запись
// игрока. Троттлинг живет в RaceSession, здесь только запись.
func (c *Coordinator) PublishPosition(floor int, facing domain.Direction) {
	c.mu.Lock()
	id := c.roomID
	c.mu.Unlock()
	if id == "" {
		return
	}

	err := c.store.Patch(id, storesync.RecordPatch{
		PlayerUpdates: map[string]storesync.PlayerPatch{
			c.self.ID: {Floor: &floor, Facing: &facing},
		},
	})
	if err != nil {
		logger.Log.WithField("room_id", id).WithError(err).Warn("position publish failed")
	}
}

// ReportFinish докладывает итог собственной сессии. Сессия не решает
// исход матча: она только отмечает себя завершенной, а победный исход
// пишется лишь если матч по последнему наблюдению все еще в гонке.
func (c *Coordinator) ReportFinish(result engine.RaceResult, finalFloor int) {
	c.mu.Lock()
	id := c.roomID
	c.mu.Unlock()
	if id == "" {
		return
	}

	finished := true
	err := c.store.Patch(id, storesync.RecordPatch{
		PlayerUpdates: map[string]storesync.PlayerPatch{
			c.self.ID: {Floor: &finalFloor, Finished: &finished},
		},
	})
	if err != nil {
		logger.Log.WithField("room_id", id).WithError(err).Warn("finish report failed")
		return
	}

	if result != engine.ResultWin {
		return
	}

	// Достигший цели объявляется победителем немедленно, не дожидаясь
	// остальных. Но если кто-то успел разрешить матч раньше - уступаем.
	c.mu.Lock()
	rec := c.last.Clone()
	wrote := c.resolveWrote
	if rec != nil && rec.Status == domain.StatusRacing && rec.WinnerID == "" && !wrote {
		c.resolveWrote = true
	}
	c.mu.Unlock()

	if rec == nil || rec.Status != domain.StatusRacing || rec.WinnerID != "" || wrote {
		return
	}

	c.writeResolution(id, c.self.ID, Losers(rec, c.self.ID))
}

// SelectCharacter меняет персонажа в профиле и, если игрок в комнате,
// сразу проецирует выбор в его запись.
func (c *Coordinator) SelectCharacter(character string) error {
	if err := c.profiles.SetCharacter(c.self.ID, character); err != nil {
		return err
	}
	c.self.Character = character

	c.mu.Lock()
	id := c.roomID
	c.mu.Unlock()
	if id == "" {
		return nil
	}

	return c.store.Patch(id, storesync.RecordPatch{
		PlayerUpdates: map[string]storesync.PlayerPatch{
			c.self.ID: {Character: &character},
		},
	})
}

// attach подписывает координатор на снапшоты комнаты.
func (c *Coordinator) attach(id string) error {
	c.mu.Lock()
	c.roomID = id
	c.mu.Unlock()

	unsub, err := c.store.Subscribe(id, c.onSnapshot)
	if err != nil {
		c.reset()
		return domain.ErrRoomGone
	}

	c.mu.Lock()
	c.unsub = unsub
	c.mu.Unlock()
	return nil
}

// reset очищает локальное состояние координатора после выхода/закрытия.
func (c *Coordinator) reset() {
	c.mu.Lock()
	c.roomID = ""
	c.unsub = nil
	c.last = nil
	c.lastStatus = domain.StatusUnknown
	c.resolveSeen = false
	c.statsApplied = false
	c.resolveWrote = false
	c.mu.Unlock()
}

// onSnapshot - идемпотентный редуктор, применяемый к КАЖДОМУ входящему
// снапшоту (доставка at-least-once: повторы обязаны быть безвредными).
// Решения принимаются под локом, записи в стор и профиль - после него.
func (c *Coordinator) onSnapshot(rec *domain.MatchRecord) {
	if rec == nil {
		// Запись уничтожена
		c.reset()
		c.emit(MatchEvent{Type: MatchClosed})
		return
	}

	c.mu.Lock()
	prevStatus := c.lastStatus
	c.last = rec.Clone()
	c.lastStatus = rec.Status

	started := rec.Status == domain.StatusRacing && prevStatus != domain.StatusRacing

	// Переход waiting -> racing после rematch начинает новый раунд
	if rec.Status == domain.StatusWaiting {
		c.resolveSeen = false
		c.statsApplied = false
		c.resolveWrote = false
	}

	// Если никто не дошел до цели, а завершились все - исход вычисляется
	// детерминированно каждым клиентом; пишет любой, LWW сходится.
	needArbitration := rec.Status == domain.StatusRacing &&
		rec.WinnerID == "" &&
		rec.AllFinished() &&
		!c.resolveWrote
	if needArbitration {
		c.resolveWrote = true
	}

	resolvedNow := rec.Status == domain.StatusResolved && rec.WinnerID != "" && !c.resolveSeen
	if resolvedNow {
		c.resolveSeen = true
	}

	applyStats := resolvedNow && !c.statsApplied
	if applyStats {
		c.statsApplied = true
	}

	id := c.roomID
	selfID := c.self.ID
	c.mu.Unlock()

	if needArbitration {
		winner, losers := ResolveByHighestFloor(rec)
		c.writeResolution(id, winner, losers)
	}

	if resolvedNow {
		// Повторные снапшоты resolved больше не дергают ни событие,
		// ни счетчики - смотри флаги выше.
		if applyStats {
			if _, ok := rec.Players[selfID]; ok {
				if err := c.profiles.BumpCounters(selfID, rec.WinnerID == selfID); err != nil {
					logger.Log.WithError(err).Warn("failed to bump profile counters")
				}
			}
		}
		c.emit(MatchEvent{
			Type:     MatchResolved,
			Record:   rec.Clone(),
			WinnerID: rec.WinnerID,
			LoserIDs: append([]string(nil), rec.LoserIDs...),
		})
	}

	if started {
		c.emit(MatchEvent{
			Type:     MatchStarted,
			Record:   rec.Clone(),
			Sequence: append(domain.StepSequence(nil), rec.Sequence...),
			Goal:     rec.Goal,
		})
	}

	c.emit(MatchEvent{Type: MatchUpdated, Record: rec.Clone()})
}

// writeResolution публикует терминальный исход матча.
func (c *Coordinator) writeResolution(id, winnerID string, loserIDs []string) {
	resolved := domain.StatusResolved
	err := c.store.Patch(id, storesync.RecordPatch{
		Status:   &resolved,
		WinnerID: &winnerID,
		LoserIDs: loserIDs,
	})
	if err != nil {
		logger.Log.WithField("room_id", id).WithError(err).Warn("resolution write failed")
		return
	}
	logger.Log.WithFields(logrus.Fields{
		"room_id": id,
		"winner":  winnerID,
	}).Info("Match resolved")
}

// emit не блокирует редуктор, если потребитель событий отстал.
func (c *Coordinator) emit(ev MatchEvent) {
	select {
	case c.Events <- ev:
	default:
	}
}

// resetPlayerPatch - сброс игровых полей записи игрока перед гонкой.
func resetPlayerPatch() storesync.PlayerPatch {
	zero := 0
	start := domain.StartDirection
	unfinished := false
	return storesync.PlayerPatch{Floor: &zero, Facing: &start, Finished: &unfinished}
}
