package match

import (
	"errors"
	"testing"

	"github.com/ranihwanifactory/stairpang/internal/domain"
	"github.com/ranihwanifactory/stairpang/internal/engine"
	"github.com/ranihwanifactory/stairpang/internal/profile"
	storesync "github.com/ranihwanifactory/stairpang/internal/sync"
)

// testPair строит двух игроков над общим стором. Id подобраны так,
// чтобы создатель выигрывал tie-break по id при одинаковом JoinedAt.
func testPair(t *testing.T) (*Coordinator, *Coordinator, *profile.MemoryStore) {
	t.Helper()
	store := storesync.NewMemoryStore()
	profiles := profile.NewMemoryStore()
	alice := NewCoordinator(store, profiles, profiles.GetOrCreate("alice", "Alice"), engine.DefaultConfig())
	bob := NewCoordinator(store, profiles, profiles.GetOrCreate("bob", "Bob"), engine.DefaultConfig())
	return alice, bob, profiles
}

func joinTogether(t *testing.T, alice, bob *Coordinator) *domain.MatchRecord {
	t.Helper()
	rec, err := alice.CreateRoom()
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}
	if err := bob.JoinRoom(rec.ID); err != nil {
		t.Fatalf("JoinRoom failed: %v", err)
	}
	return rec
}

// lastEvent выгребает шину и возвращает последнее событие данного типа.
func lastEvent(c *Coordinator, typ MatchEventType) (MatchEvent, bool) {
	var found MatchEvent
	ok := false
	for {
		select {
		case ev := <-c.Events:
			if ev.Type == typ {
				found = ev
				ok = true
			}
		default:
			return found, ok
		}
	}
}

func TestCreateRoomAssignsCodeAndHost(t *testing.T) {
	alice, _, _ := testPair(t)

	rec, err := alice.CreateRoom()
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}
	if rec.Status != domain.StatusWaiting {
		t.Errorf("Expected waiting status, got %s", rec.Status)
	}
	if len(rec.Code) != 4 {
		t.Errorf("Expected 4-digit code, got %q", rec.Code)
	}
	if !alice.IsHost() {
		t.Error("Expected creator to be host")
	}
	if alice.RoomID() == "" {
		t.Error("Expected coordinator to be attached to the room")
	}
}

func TestJoinRejectsRacingAndFullRooms(t *testing.T) {
	alice, bob, _ := testPair(t)
	rec := joinTogether(t, alice, bob)
	if err := alice.StartRace(); err != nil {
		t.Fatalf("StartRace failed: %v", err)
	}

	profiles := profile.NewMemoryStore()
	late := NewCoordinator(alice.store, profiles, profiles.GetOrCreate("carol", "Carol"), engine.DefaultConfig())
	if err := late.JoinRoom(rec.ID); !errors.Is(err, domain.ErrWrongStatus) {
		t.Errorf("Expected ErrWrongStatus joining racing room, got %v", err)
	}
	if err := late.JoinRoom("no-such-room"); !errors.Is(err, domain.ErrRoomGone) {
		t.Errorf("Expected ErrRoomGone, got %v", err)
	}
}

func TestJoinFullRoom(t *testing.T) {
	store := storesync.NewMemoryStore()
	profiles := profile.NewMemoryStore()

	host := NewCoordinator(store, profiles, profiles.GetOrCreate("a", "A"), engine.DefaultConfig())
	rec, err := host.CreateRoom()
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}

	for i, id := range []string{"b", "c", "d"} {
		c := NewCoordinator(store, profiles, profiles.GetOrCreate(id, id), engine.DefaultConfig())
		if err := c.JoinRoom(rec.ID); err != nil {
			t.Fatalf("Join %d failed: %v", i, err)
		}
	}

	extra := NewCoordinator(store, profiles, profiles.GetOrCreate("e", "E"), engine.DefaultConfig())
	if err := extra.JoinRoom(rec.ID); !errors.Is(err, domain.ErrRoomFull) {
		t.Errorf("Expected ErrRoomFull, got %v", err)
	}
}

func TestStartRaceGuards(t *testing.T) {
	alice, bob, _ := testPair(t)

	if _, err := alice.CreateRoom(); err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}
	if err := alice.StartRace(); !errors.Is(err, domain.ErrNotEnoughPlayers) {
		t.Errorf("Expected ErrNotEnoughPlayers alone in room, got %v", err)
	}

	if err := bob.JoinRoom(alice.RoomID()); err != nil {
		t.Fatalf("JoinRoom failed: %v", err)
	}
	if err := bob.StartRace(); !errors.Is(err, domain.ErrNotHost) {
		t.Errorf("Expected ErrNotHost for guest, got %v", err)
	}
	if err := alice.StartRace(); err != nil {
		t.Fatalf("StartRace failed: %v", err)
	}
	if err := alice.StartRace(); !errors.Is(err, domain.ErrWrongStatus) {
		t.Errorf("Expected ErrWrongStatus for second start, got %v", err)
	}
}

func TestStartRaceSharesOneSequence(t *testing.T) {
	alice, bob, _ := testPair(t)
	joinTogether(t, alice, bob)

	if err := alice.StartRace(); err != nil {
		t.Fatalf("StartRace failed: %v", err)
	}

	evA, okA := lastEvent(alice, MatchStarted)
	evB, okB := lastEvent(bob, MatchStarted)
	if !okA || !okB {
		t.Fatal("Expected MatchStarted on both coordinators")
	}

	want := domain.SequenceLength(engine.DefaultConfig().Goal)
	if len(evA.Sequence) != want {
		t.Errorf("Expected sequence length %d, got %d", want, len(evA.Sequence))
	}
	if len(evA.Sequence) != len(evB.Sequence) {
		t.Fatalf("Sequence length mismatch: %d vs %d", len(evA.Sequence), len(evB.Sequence))
	}
	for i := range evA.Sequence {
		if evA.Sequence[i] != evB.Sequence[i] {
			t.Fatalf("Sequence diverged at %d: both clients must race the same staircase", i)
		}
	}
	if evA.Sequence[0] != domain.StartDirection || evA.Sequence[1] != domain.StartDirection {
		t.Error("Expected fixed starting steps in shared sequence")
	}
}

func TestFirstToGoalWinsImmediately(t *testing.T) {
	alice, bob, profiles := testPair(t)
	joinTogether(t, alice, bob)
	if err := alice.StartRace(); err != nil {
		t.Fatalf("StartRace failed: %v", err)
	}

	// Боб еще карабкается, Алиса доходит до цели
	bob.PublishPosition(12, domain.DirLeft)
	alice.ReportFinish(engine.ResultWin, 30)

	rec := alice.Room()
	if rec.Status != domain.StatusResolved {
		t.Fatalf("Expected resolved status, got %s", rec.Status)
	}
	if rec.WinnerID != "alice" {
		t.Errorf("Expected alice to win, got %s", rec.WinnerID)
	}
	if len(rec.LoserIDs) != 1 || rec.LoserIDs[0] != "bob" {
		t.Errorf("Expected losers [bob], got %v", rec.LoserIDs)
	}

	if ev, ok := lastEvent(bob, MatchResolved); !ok {
		t.Error("Expected MatchResolved on the losing client")
	} else if ev.WinnerID != "alice" {
		t.Errorf("Expected resolved event winner alice, got %s", ev.WinnerID)
	}

	pa, _ := profiles.Get("alice")
	pb, _ := profiles.Get("bob")
	if pa.WinCount != 1 || pa.TotalGames != 1 {
		t.Errorf("Expected alice 1 win / 1 game, got %d/%d", pa.WinCount, pa.TotalGames)
	}
	if pb.WinCount != 0 || pb.TotalGames != 1 {
		t.Errorf("Expected bob 0 wins / 1 game, got %d/%d", pb.WinCount, pb.TotalGames)
	}
}

func TestAllFallenResolvesByHighestFloor(t *testing.T) {
	alice, bob, profiles := testPair(t)
	joinTogether(t, alice, bob)
	if err := alice.StartRace(); err != nil {
		t.Fatalf("StartRace failed: %v", err)
	}

	// Никто не дошел: Алиса упала на 40, Боб на 55
	alice.ReportFinish(engine.ResultLose, 40)
	bob.ReportFinish(engine.ResultLose, 55)

	rec := bob.Room()
	if rec.Status != domain.StatusResolved {
		t.Fatalf("Expected resolved status, got %s", rec.Status)
	}
	if rec.WinnerID != "bob" {
		t.Errorf("Expected bob to win by highest floor, got %s", rec.WinnerID)
	}

	pb, _ := profiles.Get("bob")
	if pb.WinCount != 1 || pb.TotalGames != 1 {
		t.Errorf("Expected bob 1 win / 1 game, got %d/%d", pb.WinCount, pb.TotalGames)
	}
}

func TestResolutionStatsAreIdempotent(t *testing.T) {
	alice, bob, profiles := testPair(t)
	joinTogether(t, alice, bob)
	if err := alice.StartRace(); err != nil {
		t.Fatalf("StartRace failed: %v", err)
	}
	alice.ReportFinish(engine.ResultWin, 30)

	// Лишняя запись будит всех подписчиков повторным resolved-снапшотом
	rec := alice.Room()
	if err := alice.store.Patch(rec.ID, storesync.RecordPatch{}); err != nil {
		t.Fatalf("extra patch failed: %v", err)
	}

	pa, _ := profiles.Get("alice")
	if pa.TotalGames != 1 {
		t.Errorf("Expected counters applied once, got %d games", pa.TotalGames)
	}
	if _, ok := lastEvent(alice, MatchResolved); !ok {
		t.Error("Expected exactly one MatchResolved before the duplicate snapshot")
	}
	if ev, ok := lastEvent(alice, MatchResolved); ok {
		t.Errorf("Expected no second MatchResolved, got one for winner %s", ev.WinnerID)
	}
}

func TestRematchReturnsToLobbyAndResetsRace(t *testing.T) {
	alice, bob, profiles := testPair(t)
	joinTogether(t, alice, bob)
	if err := alice.StartRace(); err != nil {
		t.Fatalf("StartRace failed: %v", err)
	}

	if err := alice.Rematch(); !errors.Is(err, domain.ErrWrongStatus) {
		t.Errorf("Expected ErrWrongStatus mid-race, got %v", err)
	}

	alice.ReportFinish(engine.ResultWin, 30)

	if err := bob.Rematch(); !errors.Is(err, domain.ErrNotHost) {
		t.Errorf("Expected ErrNotHost for guest rematch, got %v", err)
	}
	if err := alice.Rematch(); err != nil {
		t.Fatalf("Rematch failed: %v", err)
	}

	rec := bob.Room()
	if rec.Status != domain.StatusWaiting {
		t.Errorf("Expected waiting after rematch, got %s", rec.Status)
	}
	if rec.WinnerID != "" || len(rec.LoserIDs) != 0 || len(rec.Sequence) != 0 {
		t.Error("Expected race fields cleared after rematch")
	}
	for id, p := range rec.Players {
		if p.Floor != 0 || p.Finished {
			t.Errorf("Expected player %s reset, got floor=%d finished=%v", id, p.Floor, p.Finished)
		}
	}

	// Вторая гонка накапливает счетчики поверх первой
	if err := alice.StartRace(); err != nil {
		t.Fatalf("Second StartRace failed: %v", err)
	}
	bob.ReportFinish(engine.ResultWin, 30)

	pa, _ := profiles.Get("alice")
	pb, _ := profiles.Get("bob")
	if pa.WinCount != 1 || pa.TotalGames != 2 {
		t.Errorf("Expected alice 1 win / 2 games, got %d/%d", pa.WinCount, pa.TotalGames)
	}
	if pb.WinCount != 1 || pb.TotalGames != 2 {
		t.Errorf("Expected bob 1 win / 2 games, got %d/%d", pb.WinCount, pb.TotalGames)
	}
}

func TestLeaveReassignsHostAndLastLeaverDestroysRoom(t *testing.T) {
	alice, bob, _ := testPair(t)
	rec := joinTogether(t, alice, bob)

	if err := alice.LeaveRoom(); err != nil {
		t.Fatalf("LeaveRoom failed: %v", err)
	}
	if !bob.IsHost() {
		t.Error("Expected host role to pass to the remaining player")
	}
	if alice.RoomID() != "" {
		t.Error("Expected leaver to detach from the room")
	}

	if err := bob.LeaveRoom(); err != nil {
		t.Fatalf("Last LeaveRoom failed: %v", err)
	}
	if _, err := bob.store.Get(rec.ID); !errors.Is(err, storesync.ErrNotFound) {
		t.Errorf("Expected record destroyed after last leave, got %v", err)
	}
}

func TestLeaveOutsideRoom(t *testing.T) {
	alice, _, _ := testPair(t)
	if err := alice.LeaveRoom(); !errors.Is(err, domain.ErrNotInRoom) {
		t.Errorf("Expected ErrNotInRoom, got %v", err)
	}
}

func TestJoinByCode(t *testing.T) {
	alice, bob, _ := testPair(t)
	rec, err := alice.CreateRoom()
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}

	// Коды состоят только из цифр, буквы гарантированно мимо
	if err := bob.JoinByCode("nope"); !errors.Is(err, domain.ErrRoomGone) {
		t.Errorf("Expected ErrRoomGone for unknown code, got %v", err)
	}

	if err := bob.JoinByCode(rec.Code); err != nil {
		t.Fatalf("JoinByCode failed: %v", err)
	}
	if bob.RoomID() != rec.ID {
		t.Errorf("Expected bob in room %s, got %s", rec.ID, bob.RoomID())
	}
}

func TestSelectCharacterProjectsIntoRoom(t *testing.T) {
	alice, bob, profiles := testPair(t)
	joinTogether(t, alice, bob)

	if err := bob.SelectCharacter("turtle"); err != nil {
		t.Fatalf("SelectCharacter failed: %v", err)
	}

	p, err := profiles.Get("bob")
	if err != nil {
		t.Fatalf("profile Get failed: %v", err)
	}
	if p.Character != "turtle" {
		t.Errorf("Expected profile character turtle, got %s", p.Character)
	}

	rec := alice.Room()
	if rec.Players["bob"].Character != "turtle" {
		t.Errorf("Expected room entry character turtle, got %s", rec.Players["bob"].Character)
	}
}

func TestPositionUpdatesReachOpponent(t *testing.T) {
	alice, bob, _ := testPair(t)
	joinTogether(t, alice, bob)
	if err := alice.StartRace(); err != nil {
		t.Fatalf("StartRace failed: %v", err)
	}

	bob.PublishPosition(6, domain.DirLeft)

	rec := alice.Room()
	if rec.Players["bob"].Floor != 6 {
		t.Errorf("Expected bob at floor 6 in alice's snapshot, got %d", rec.Players["bob"].Floor)
	}
	if rec.Players["bob"].Facing != domain.DirLeft {
		t.Errorf("Expected bob facing left, got %s", rec.Players["bob"].Facing)
	}
}
