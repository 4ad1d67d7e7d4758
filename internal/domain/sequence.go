package domain

import "math/rand"

// Константы генерации трассы
const (
	// FlipChance - вероятность того, что очередная ступень сменит направление.
	// Низкое значение дает длинные прямые участки: подъем становится основным
	// действием, а поворот - осознанным решением. Это ядро игрового ощущения.
	FlipChance = 0.30

	// SafetyMargin - запас ступеней сверх целевого этажа, чтобы игрок,
	// дошедший до цели, никогда не вышел за край сгенерированной трассы.
	SafetyMargin = 10
)

// StepSequence - скрытая трасса матча: направление каждой ступени.
// Генерируется ровно один раз (хостом) и неизменна, пока идет гонка.
// Все клиенты валидируют ходы по ОДНОЙ И ТОЙ ЖЕ трассе, иначе рассинхрон.
type StepSequence []Direction

// SequenceLength возвращает длину трассы для заданного целевого этажа.
func SequenceLength(goal int) int {
	return goal + SafetyMargin
}

// GenerateSequence создает трассу длиной length.
// Первые две ступени зафиксированы на StartDirection, дальше каждая ступень
// с вероятностью FlipChance меняет направление предыдущей.
func GenerateSequence(length int, rng *rand.Rand) StepSequence {
	if length < 2 {
		length = 2
	}

	seq := make(StepSequence, length)
	seq[0] = StartDirection
	seq[1] = StartDirection

	for i := 2; i < length; i++ {
		if rng.Float64() < FlipChance {
			seq[i] = seq[i-1].Flip()
		} else {
			seq[i] = seq[i-1]
		}
	}
	return seq
}

// ToInts конвертирует трассу в []int для сериализации (0: LEFT, 1: RIGHT).
func (s StepSequence) ToInts() []int {
	out := make([]int, len(s))
	for i, d := range s {
		out[i] = int(d)
	}
	return out
}

// SequenceFromInts восстанавливает трассу из сериализованного вида.
func SequenceFromInts(raw []int) StepSequence {
	seq := make(StepSequence, len(raw))
	for i, v := range raw {
		if v == 0 {
			seq[i] = DirLeft
		} else {
			seq[i] = DirRight
		}
	}
	return seq
}
