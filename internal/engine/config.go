package engine

import "time"

// Config хранит все настраиваемые параметры гоночной сессии.
// Числа подобраны под игровое ощущение, а не из каких-то формул.
type Config struct {
	// TickInterval - шаг игрового времени. Вся симуляция (отсчет,
	// энергия) двигается только на границах тика.
	TickInterval time.Duration

	// CountdownTicks - длительность предстартового отсчета в тиках (3 сек).
	CountdownTicks int

	// Goal - целевой этаж гонки.
	Goal int

	// BaseDrain - базовый расход энергии за тик.
	BaseDrain float64

	// MaxEnergy - потолок энергии, выше него бонусы обрезаются.
	MaxEnergy float64

	// IdleGraceTicks - сколько тиков простоя прощается без штрафа (0.5 сек).
	IdleGraceTicks int

	// IdlePenaltyStep - прирост множителя расхода за каждый тик простоя
	// сверх грейса. Стоять на месте невыгодно.
	IdlePenaltyStep float64

	// MaxIdleMultiplier - потолок штрафного множителя.
	MaxIdleMultiplier float64

	// ClimbBonus - прибавка энергии за успешный подъем в мультиплеере.
	ClimbBonus float64

	// PracticeClimbBonus - прибавка в одиночной тренировке. Больше,
	// чтобы тренировочные забеги жили дольше.
	PracticeClimbBonus float64

	// PublishFloorDelta - троттлинг исходящих обновлений позиции:
	// публикуем, только если с прошлой публикации пройдено столько этажей.
	PublishFloorDelta int
}

// DefaultConfig возвращает параметры по умолчанию.
func DefaultConfig() Config {
	return Config{
		TickInterval:       100 * time.Millisecond,
		CountdownTicks:     30,
		Goal:               30,
		BaseDrain:          0.15,
		MaxEnergy:          10.0,
		IdleGraceTicks:     5,
		IdlePenaltyStep:    0.05,
		MaxIdleMultiplier:  3.0,
		ClimbBonus:         0.4,
		PracticeClimbBonus: 1.0,
		PublishFloorDelta:  2,
	}
}
