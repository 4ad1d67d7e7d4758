package match

import (
	"sort"

	"github.com/ranihwanifactory/stairpang/internal/domain"
)

// ResolveByHighestFloor - арбитраж исхода, когда до цели не дошел никто:
// побеждает финишировавший игрок с наибольшим этажом. Функция чистая и
// детерминированная: при равных этажах побеждает меньший id, поэтому
// любые два клиента, наблюдая один состав, вычисляют одного победителя,
// и конкурентные записи результата сходятся к одному значению.
func ResolveByHighestFloor(rec *domain.MatchRecord) (winnerID string, loserIDs []string) {
	for id, p := range rec.Players {
		if winnerID == "" {
			winnerID = id
			continue
		}
		best := rec.Players[winnerID]
		if p.Floor > best.Floor || (p.Floor == best.Floor && id < winnerID) {
			winnerID = id
		}
	}

	loserIDs = Losers(rec, winnerID)
	return winnerID, loserIDs
}

// Losers возвращает всех участников, кроме победителя, в стабильном порядке.
func Losers(rec *domain.MatchRecord, winnerID string) []string {
	var out []string
	for id := range rec.Players {
		if id != winnerID {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
