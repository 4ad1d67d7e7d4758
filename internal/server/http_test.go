package server

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/ranihwanifactory/stairpang/internal/domain"
	"github.com/ranihwanifactory/stairpang/internal/engine"
	"github.com/ranihwanifactory/stairpang/internal/match"
	"github.com/ranihwanifactory/stairpang/internal/network"
	"github.com/ranihwanifactory/stairpang/internal/profile"
	storesync "github.com/ranihwanifactory/stairpang/internal/sync"
	"github.com/ranihwanifactory/stairpang/pkg/api"
)

func testService() *Service {
	return &Service{
		Store:    storesync.NewMemoryStore(),
		Profiles: profile.NewMemoryStore(),
		Hub:      network.NewBroadcaster(),
		Cfg:      engine.DefaultConfig(),
	}
}

func TestHandleRoomsListsWaitingOnly(t *testing.T) {
	svc := testService()
	srv := New(svc, "0")

	waiting := &domain.MatchRecord{
		Code:   "1111",
		Status: domain.StatusWaiting,
		Goal:   30,
		Players: map[string]*domain.PlayerEntry{
			"p1": {ID: "p1"},
		},
	}
	racing := &domain.MatchRecord{
		Code:    "2222",
		Status:  domain.StatusRacing,
		Players: map[string]*domain.PlayerEntry{"p2": {ID: "p2"}},
	}
	if _, err := svc.Store.Create(waiting); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Store.Create(racing); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	req := httptest.NewRequest("GET", "/rooms", nil)
	rr := httptest.NewRecorder()
	srv.router.ServeHTTP(rr, req)

	if rr.Code != 200 {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	var out []api.RoomSummary
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("Bad JSON: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("Expected 1 waiting room, got %d", len(out))
	}
	if out[0].Code != "1111" || out[0].PlayerCount != 1 || out[0].MaxPlayers != domain.MaxPlayers {
		t.Errorf("Unexpected summary: %+v", out[0])
	}
}

func TestHandleHealth(t *testing.T) {
	srv := New(testService(), "0")

	req := httptest.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()
	srv.router.ServeHTTP(rr, req)

	if rr.Code != 200 || rr.Body.String() != "ok" {
		t.Errorf("Expected 200 ok, got %d %q", rr.Code, rr.Body.String())
	}
}

func TestHandleVersion(t *testing.T) {
	srv := New(testService(), "0")

	req := httptest.NewRequest("GET", "/version", nil)
	rr := httptest.NewRecorder()
	srv.router.ServeHTTP(rr, req)

	if rr.Code != 200 {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("Bad JSON: %v", err)
	}
	if _, ok := body["goVersion"]; !ok {
		t.Error("Expected goVersion field in version info")
	}
}

func TestDispatchUnknownAction(t *testing.T) {
	svc := testService()
	prof := svc.Profiles.GetOrCreate("p1", "P1")

	c := NewClient(svc, nil)
	c.PlayerID = prof.ID
	inbox := svc.Hub.Register(prof.ID)

	c.dispatch(api.ClientCommand{Action: "TELEPORT"})

	select {
	case msg := <-inbox:
		if msg.Type != api.MsgError {
			t.Errorf("Expected ERROR, got %s", msg.Type)
		}
	default:
		t.Fatal("Expected an error response in the hub channel")
	}
}

func TestDispatchCreateAndStartFlow(t *testing.T) {
	svc := testService()
	profA := svc.Profiles.GetOrCreate("a", "A")
	profB := svc.Profiles.GetOrCreate("b", "B")

	a := NewClient(svc, nil)
	a.PlayerID = profA.ID
	a.Coord = match.NewCoordinator(svc.Store, svc.Profiles, profA, svc.Cfg)
	b := NewClient(svc, nil)
	b.PlayerID = profB.ID
	b.Coord = match.NewCoordinator(svc.Store, svc.Profiles, profB, svc.Cfg)

	inboxA := svc.Hub.Register(profA.ID)

	a.dispatch(api.ClientCommand{Action: api.ActionCreateRoom})
	room := a.Coord.Room()
	if room == nil {
		t.Fatal("Expected room after CREATE_ROOM")
	}

	payload, _ := json.Marshal(api.JoinRoomPayload{RoomID: room.ID})
	b.dispatch(api.ClientCommand{Action: api.ActionJoinRoom, Payload: payload})

	a.dispatch(api.ClientCommand{Action: api.ActionStartRace})
	if got := a.Coord.Room().Status; got != domain.StatusRacing {
		t.Errorf("Expected RACING after START_RACE, got %s", got)
	}

	// Нет ни одного ERROR: все команды прошли
	for {
		select {
		case msg := <-inboxA:
			if msg.Type == api.MsgError {
				t.Errorf("Unexpected error response: %s", msg.Error)
			}
		default:
			return
		}
	}
}
