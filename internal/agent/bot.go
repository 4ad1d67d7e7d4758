// Package agent содержит безголового игрока-бота для заполнения комнат
// и нагрузочных прогонов. Бот пользуется теми же строительными блоками,
// что и настоящий клиент: координатором матча и гоночной сессией. Вся
// его "умность" - читать трассу и поворачиваться перед шагом.
package agent

import (
	"context"
	"math/rand"
	"time"

	"github.com/ranihwanifactory/stairpang/internal/domain"
	"github.com/ranihwanifactory/stairpang/internal/engine"
	"github.com/ranihwanifactory/stairpang/internal/match"
	storesync "github.com/ranihwanifactory/stairpang/internal/sync"
	"github.com/ranihwanifactory/stairpang/pkg/logger"
)

// Bot представляет собой "Игрока-компьютера" (Headless Agent).
//
// Жизненный цикл:
//  1. NewBot -> создание координатора поверх общего стора.
//  2. Run -> запуск в горутине, слушает события своего координатора.
//  3. На MatchStarted бот получает трассу и играет гонку через
//     локальную RaceSession, как это делал бы живой клиент.
type Bot struct {
	Coord *match.Coordinator

	cfg engine.Config
	rng *rand.Rand

	// MoveInterval - пауза между вводами бота.
	MoveInterval time.Duration

	// StumbleChance - вероятность шагнуть без поворота там, где нужен
	// поворот. Ноль делает бота безупречным.
	StumbleChance float64
}

// NewBot создает бота поверх готового координатора.
func NewBot(coord *match.Coordinator, cfg engine.Config, seed int64) *Bot {
	logger.Log.WithField("player_id", coord.Self().ID).Info("Creating headless agent")
	return &Bot{
		Coord:         coord,
		cfg:           cfg,
		rng:           rand.New(rand.NewSource(seed)),
		MoveInterval:  150 * time.Millisecond,
		StumbleChance: 0.02,
	}
}

// Run запускает цикл жизни бота. Должен быть запущен в горутине.
func (b *Bot) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-b.Coord.Events:
			if ev.Type == match.MatchStarted {
				b.playRace(ctx, ev.Sequence, ev.Goal)
			}
		}
	}
}

// AutoJoin периодически сканирует открытые комнаты и садится в первую,
// где есть место. Запускается рядом с Run, когда бот работает в режиме
// "заполнителя лобби".
func (b *Bot) AutoJoin(ctx context.Context, store storesync.Channel, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if b.Coord.RoomID() != "" {
				continue
			}
			for _, rec := range store.ListWaiting() {
				if len(rec.Players) >= domain.MaxPlayers {
					continue
				}
				if err := b.Coord.JoinRoom(rec.ID); err == nil {
					logger.Log.WithField("room_id", rec.ID).Info("Agent joined waiting room")
					break
				}
			}
		}
	}
}

// playRace проигрывает одну гонку от отсчета до финиша.
func (b *Bot) playRace(ctx context.Context, seq domain.StepSequence, goal int) {
	session := engine.NewRaceSession(
		b.cfg,
		engine.Multiplayer(b.Coord.RoomID()),
		seq,
		goal,
		func(floor int, facing domain.Direction, finished bool) {
			b.Coord.PublishPosition(floor, facing)
		},
		func(result engine.RaceResult, finalFloor int) {
			b.Coord.ReportFinish(result, finalFloor)
		},
	)

	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go session.Run(raceCtx)

	// Бот не лезет в сессию напрямую: позицию он, как и UI, узнает
	// из событий. Это снимает гонки данных с горутиной Run.
	floor, facing := 0, domain.StartDirection
	active := false

	moveTimer := time.NewTicker(b.MoveInterval)
	defer moveTimer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case ev := <-session.Events:
			switch ev.Type {
			case engine.EventStarted:
				active = true
			case engine.EventMoved:
				floor, facing = ev.Floor, ev.Facing
			case engine.EventFinished:
				logger.Log.WithField("result", ev.Result.String()).Info("Agent race finished")
				return
			}

		case <-moveTimer.C:
			if !active {
				continue
			}
			session.Inputs <- b.nextAction(seq, floor, facing)
		}
	}
}

// nextAction решает следующий ввод: поворот перед несовпадающей ступенью,
// иначе шаг. Со StumbleChance бот шагает не глядя и падает.
func (b *Bot) nextAction(seq domain.StepSequence, floor int, facing domain.Direction) domain.StepAction {
	next := floor + 1
	if next < len(seq) && seq[next] != facing {
		if b.rng.Float64() < b.StumbleChance {
			return domain.ActionClimb // споткнулся
		}
		return domain.ActionTurn
	}
	return domain.ActionClimb
}
