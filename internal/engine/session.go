package engine

import (
	"context"
	"time"

	"github.com/ranihwanifactory/stairpang/internal/domain"
	"github.com/ranihwanifactory/stairpang/pkg/logger"
)

// SessionState - фаза локальной гоночной сессии.
type SessionState uint8

const (
	SessionCountdown SessionState = iota
	SessionActive
	SessionFinished
)

// RaceResult - итог сессии.
type RaceResult uint8

const (
	ResultNone RaceResult = iota
	ResultWin
	ResultLose
)

// String реализует интерфейс Stringer (для fmt.Printf)
func (r RaceResult) String() string {
	switch r {
	case ResultWin:
		return "WIN"
	case ResultLose:
		return "LOSE"
	}
	return "NONE"
}

// SessionEventType - тип события, которое сессия отдает наружу (UI).
type SessionEventType uint8

const (
	EventCountdown SessionEventType = iota
	EventStarted
	EventMoved
	EventFinished
)

// SessionEvent - слепок состояния для слоя отображения.
// Полное состояние сессии наружу не уходит: чужим клиентам через запись
// матча проецируются только этаж и направление.
type SessionEvent struct {
	Type          SessionEventType
	CountdownLeft int
	Floor         int
	Facing        domain.Direction
	Energy        float64
	Result        RaceResult
}

// PublishFunc - троттленная публикация позиции наружу (в запись матча).
type PublishFunc func(floor int, facing domain.Direction, finished bool)

// FinishFunc - доклад итога. В мультиплеере сессия НЕ решает исход матча,
// она только сообщает координатору свой результат.
type FinishFunc func(result RaceResult, finalFloor int)

// RaceSession - локальный оркестратор одной гонки одного игрока:
// отсчет -> активная фаза -> финиш. Терминальна: повторная игра - это
// всегда новый экземпляр.
//
// Сессия не синхронизирована изнутри: все вводы и тики сериализуются
// циклом Run (или вызываются из одной горутины в тестах).
type RaceSession struct {
	cfg  Config
	mode Mode
	seq  domain.StepSequence
	goal int

	state         SessionState
	floor         int
	facing        domain.Direction
	energy        *EnergyClock
	countdownLeft int
	result        RaceResult
	lastPublished int

	publish PublishFunc
	finish  FinishFunc

	// Inputs - очередь ввода для Run. Буфер, чтобы UI не блокировался.
	Inputs chan domain.StepAction

	// Events - события для слоя отображения. Переполнение не блокирует
	// симуляцию: старые кадры просто теряются.
	Events chan SessionEvent
}

// NewRaceSession создает сессию в фазе отсчета.
func NewRaceSession(cfg Config, mode Mode, seq domain.StepSequence, goal int, publish PublishFunc, finish FinishFunc) *RaceSession {
	s := &RaceSession{
		cfg:           cfg,
		mode:          mode,
		seq:           seq,
		goal:          goal,
		state:         SessionCountdown,
		facing:        domain.StartDirection,
		countdownLeft: cfg.CountdownTicks,
		publish:       publish,
		finish:        finish,
		Inputs:        make(chan domain.StepAction, 16),
		Events:        make(chan SessionEvent, 100),
	}
	s.energy = NewEnergyClock(cfg, s.onEnergyDepleted)
	return s
}

// State возвращает текущую фазу сессии.
func (s *RaceSession) State() SessionState { return s.state }

// Floor возвращает локально-авторитетный этаж.
func (s *RaceSession) Floor() int { return s.floor }

// Facing возвращает текущее направление.
func (s *RaceSession) Facing() domain.Direction { return s.facing }

// Energy возвращает уровень энергии.
func (s *RaceSession) Energy() float64 { return s.energy.Level() }

// Result возвращает итог (ResultNone, пока сессия не финишировала).
func (s *RaceSession) Result() RaceResult { return s.result }

// Run крутит сессию на реальном времени до терминального состояния.
// Отмена контекста = выход из гонки, таймер освобождается.
func (s *RaceSession) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	logger.Log.WithField("mode", s.mode.String()).Info("Race session started")

	for s.state != SessionFinished {
		select {
		case <-ctx.Done():
			return
		case action := <-s.Inputs:
			s.HandleInput(action)
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Tick продвигает сессию на один шаг игрового времени.
func (s *RaceSession) Tick() {
	switch s.state {
	case SessionCountdown:
		s.countdownLeft--
		if s.countdownLeft <= 0 {
			// Энергия начинает тикать только с этого момента
			s.state = SessionActive
			s.emit(SessionEvent{Type: EventStarted, Floor: s.floor, Facing: s.facing, Energy: s.energy.Level()})
			return
		}
		s.emit(SessionEvent{Type: EventCountdown, CountdownLeft: s.countdownLeft})

	case SessionActive:
		s.energy.Tick()
	}
}

// HandleInput применяет один ввод игрока. Вводы вне активной фазы
// игнорируются (во время отсчета и после финиша кнопки "не работают").
func (s *RaceSession) HandleInput(action domain.StepAction) {
	if s.state != SessionActive {
		return
	}

	// Любой ввод - активность, штраф простоя сбрасывается
	s.energy.RegisterInput()

	res := domain.Step(s.floor, s.facing, action, s.seq)
	s.facing = res.NextFacing

	switch res.Outcome {
	case domain.OutcomeTurned:
		s.emitMoved()

	case domain.OutcomeFell:
		s.finishWith(ResultLose)

	case domain.OutcomeAdvanced:
		s.floor = res.NextFloor
		s.energy.ApplyClimbBonus(s.mode.ClimbBonus(s.cfg))

		// Достижение цели проверяется синхронно, сразу после удачного
		// подъема - раньше любого следующего ввода и тика.
		if s.floor >= s.goal {
			s.finishWith(ResultWin)
			return
		}

		s.publishIfDue(false)
		s.emitMoved()
	}
}

// onEnergyDepleted - терминальное пересечение нуля энергией.
func (s *RaceSession) onEnergyDepleted() {
	s.finishWith(ResultLose)
}

// finishWith переводит сессию в терминальное состояние. Идемпотентна.
func (s *RaceSession) finishWith(result RaceResult) {
	if s.state == SessionFinished {
		return
	}
	s.state = SessionFinished
	s.result = result

	// Финальная позиция публикуется всегда, минуя троттлинг
	s.publishIfDue(true)
	s.emit(SessionEvent{Type: EventFinished, Floor: s.floor, Facing: s.facing, Energy: s.energy.Level(), Result: result})

	if s.finish != nil {
		s.finish(result, s.floor)
	}
}

// publishIfDue отдает позицию наружу, если накопился порог этажей
// (или форсированно - на финише). Чужие клиенты видят отстающую
// "призрачную" позицию, это осознанная неточность.
func (s *RaceSession) publishIfDue(force bool) {
	if s.publish == nil {
		return
	}
	if !force && s.floor-s.lastPublished < s.cfg.PublishFloorDelta {
		return
	}
	s.lastPublished = s.floor
	s.publish(s.floor, s.facing, s.state == SessionFinished)
}

func (s *RaceSession) emitMoved() {
	s.emit(SessionEvent{Type: EventMoved, Floor: s.floor, Facing: s.facing, Energy: s.energy.Level()})
}

// emit не блокирует симуляцию, если потребитель отстал.
func (s *RaceSession) emit(ev SessionEvent) {
	select {
	case s.Events <- ev:
	default:
	}
}
