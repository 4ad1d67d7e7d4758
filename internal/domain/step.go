package domain

// StepOutcome - результат применения одного ввода к состоянию игрока.
type StepOutcome uint8

const (
	// OutcomeAdvanced - подъем удался, этаж увеличился на один.
	OutcomeAdvanced StepOutcome = iota
	// OutcomeTurned - игрок развернулся, этаж не изменился.
	OutcomeTurned
	// OutcomeFell - подъем в неверном направлении. Фатально: гонка для
	// игрока закончена, текущий этаж становится финальным результатом.
	OutcomeFell
)

// StepResult - новое состояние игрока после ввода.
type StepResult struct {
	NextFloor  int
	NextFacing Direction
	Outcome    StepOutcome
}

// Step - чистая функция валидации хода. Не имеет состояния и побочных
// эффектов: одинаковый вход всегда дает одинаковый выход (реплеи, тесты).
//
// Правило всей игры одно: подняться можно только на ту ступень, чье
// направление совпадает с текущим направлением игрока. Поворот и подъем
// всегда два последовательных ввода - сравнение идет по направлению,
// зафиксированному В МОМЕНТ подъема.
func Step(floor int, facing Direction, action StepAction, seq StepSequence) StepResult {
	if action == ActionTurn {
		return StepResult{
			NextFloor:  floor,
			NextFacing: facing.Flip(),
			Outcome:    OutcomeTurned,
		}
	}

	next := floor + 1

	// Выход за край трассы при корректной генерации невозможен
	// (SafetyMargin), но чужой некорректный стейт не должен нас ронять.
	if next >= len(seq) {
		return StepResult{NextFloor: floor, NextFacing: facing, Outcome: OutcomeFell}
	}

	if seq[next] != facing {
		return StepResult{NextFloor: floor, NextFacing: facing, Outcome: OutcomeFell}
	}

	return StepResult{NextFloor: next, NextFacing: facing, Outcome: OutcomeAdvanced}
}
