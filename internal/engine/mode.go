package engine

// ModeKind различает одиночную тренировку и мультиплеерную гонку.
type ModeKind uint8

const (
	ModePractice ModeKind = iota
	ModeMultiplayer
)

// Mode - вариант запуска сессии, фиксируется один раз при создании.
// Вся разница в поведении сессии ветвится по этому типу, а не по
// разбросанным булевым флагам.
type Mode struct {
	Kind   ModeKind
	RoomID string // только для мультиплеера
}

// Practice - одиночный тренировочный режим, без общей записи матча.
func Practice() Mode {
	return Mode{Kind: ModePractice}
}

// Multiplayer - гонка внутри комнаты roomID.
func Multiplayer(roomID string) Mode {
	return Mode{Kind: ModeMultiplayer, RoomID: roomID}
}

// ClimbBonus возвращает прибавку энергии за подъем для данного режима.
func (m Mode) ClimbBonus(cfg Config) float64 {
	if m.Kind == ModePractice {
		return cfg.PracticeClimbBonus
	}
	return cfg.ClimbBonus
}

// String реализует интерфейс Stringer (для fmt.Printf)
func (m Mode) String() string {
	if m.Kind == ModePractice {
		return "PRACTICE"
	}
	return "MULTIPLAYER"
}
