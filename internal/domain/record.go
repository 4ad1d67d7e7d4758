package domain

import "strings"

// MatchStatus - фаза жизненного цикла матча.
// Переходы только вперед: waiting -> racing -> resolved.
// Назад в waiting можно попасть единственным способом - явный rematch
// из resolved. Из racing в waiting дороги нет.
type MatchStatus uint8

const (
	StatusUnknown MatchStatus = iota
	StatusWaiting
	StatusRacing
	StatusResolved
)

var statusStringToCmd = map[string]MatchStatus{
	"WAITING":  StatusWaiting,
	"RACING":   StatusRacing,
	"RESOLVED": StatusResolved,
}

var statusCmdToString = map[MatchStatus]string{
	StatusWaiting:  "WAITING",
	StatusRacing:   "RACING",
	StatusResolved: "RESOLVED",
}

// ParseStatus конвертирует строку из JSON в MatchStatus
func ParseStatus(s string) MatchStatus {
	if val, ok := statusStringToCmd[strings.ToUpper(s)]; ok {
		return val
	}
	return StatusUnknown
}

// String реализует интерфейс Stringer (для fmt.Printf)
func (m MatchStatus) String() string {
	if val, ok := statusCmdToString[m]; ok {
		return val
	}
	return "UNKNOWN"
}

// MaxPlayers - модель данных рассчитана на маленькие комнаты.
const MaxPlayers = 4

// MinPlayers - гонку нельзя начать одному.
const MinPlayers = 2

// PlayerEntry - проекция одного игрока в общей записи матча.
// Запись создается при входе в комнату (слепок профиля) и мутируется
// ТОЛЬКО клиентом самого игрока. Чужие клиенты ее лишь читают.
type PlayerEntry struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Character string `json:"character"`

	// Floor монотонно не убывает, пока идет гонка. Для остальных клиентов
	// это отстающая "призрачная" позиция (обновления троттлятся).
	Floor    int       `json:"floor"`
	Facing   Direction `json:"facing"`
	Finished bool      `json:"finished"`

	// JoinedAt - unix-миллисекунды входа. По нему детерминированно
	// вычисляется хост: самый ранний из оставшихся участников.
	JoinedAt int64 `json:"joinedAt"`
}

// MatchRecord - общая авторитетная запись одной гонки.
type MatchRecord struct {
	ID        string `json:"id"`
	Code      string `json:"code"` // короткий код для ручного входа
	Status    MatchStatus
	Goal      int          `json:"goal"`
	Sequence  StepSequence `json:"sequence,omitempty"` // есть только с начала гонки
	WinnerID  string       `json:"winnerId,omitempty"`
	LoserIDs  []string     `json:"loserIds,omitempty"`
	CreatedAt int64        `json:"createdAt"`

	Players map[string]*PlayerEntry `json:"players"`
}

// HostID возвращает производную роль хоста: участник с наименьшим JoinedAt,
// при равенстве - с наименьшим id. Явной передачи хоста нет: каждый клиент
// вычисляет одно и то же значение из текущего состава.
func (r *MatchRecord) HostID() string {
	var host string
	var best int64
	for id, p := range r.Players {
		if host == "" || p.JoinedAt < best || (p.JoinedAt == best && id < host) {
			host = id
			best = p.JoinedAt
		}
	}
	return host
}

// AllFinished - true, если все участники завершили свои сессии.
func (r *MatchRecord) AllFinished() bool {
	if len(r.Players) == 0 {
		return false
	}
	for _, p := range r.Players {
		if !p.Finished {
			return false
		}
	}
	return true
}

// Clone делает глубокую копию записи. Стор отдает подписчикам только копии,
// чтобы клиентский код не мог дотянуться до общего состояния.
func (r *MatchRecord) Clone() *MatchRecord {
	if r == nil {
		return nil
	}
	cp := *r
	cp.Sequence = append(StepSequence(nil), r.Sequence...)
	cp.LoserIDs = append([]string(nil), r.LoserIDs...)
	cp.Players = make(map[string]*PlayerEntry, len(r.Players))
	for id, p := range r.Players {
		pc := *p
		cp.Players[id] = &pc
	}
	return &cp
}
