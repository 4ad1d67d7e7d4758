package domain

import "strings"

// Direction - бинарная ориентация игрока на лестнице.
type Direction uint8

const (
	DirLeft  Direction = 0
	DirRight Direction = 1
)

// StartDirection - направление, с которого начинается любая трасса.
// Первые две ступени всегда совпадают с ним, поэтому первый climb
// гарантированно безопасен без поворота.
const StartDirection = DirRight

// Flip возвращает противоположное направление.
func (d Direction) Flip() Direction {
	if d == DirLeft {
		return DirRight
	}
	return DirLeft
}

// String реализует интерфейс Stringer (для fmt.Printf и логов)
func (d Direction) String() string {
	if d == DirLeft {
		return "LEFT"
	}
	return "RIGHT"
}

// Wire возвращает имя направления для JSON-протокола.
func (d Direction) Wire() string {
	if d == DirLeft {
		return "left"
	}
	return "right"
}

// ParseDirection конвертирует строку протокола в Direction.
// Нечувствительна к регистру; второй результат false для мусора.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(s) {
	case "left":
		return DirLeft, true
	case "right":
		return DirRight, true
	}
	return StartDirection, false
}
