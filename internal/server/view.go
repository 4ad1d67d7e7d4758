package server

import (
	"sort"

	"github.com/ranihwanifactory/stairpang/internal/domain"
	"github.com/ranihwanifactory/stairpang/internal/match"
	"github.com/ranihwanifactory/stairpang/pkg/api"
)

// roomView собирает DTO комнаты из записи матча.
// Участники отсортированы по времени входа: клиент рисует их в
// стабильном порядке независимо от обхода мапы.
func roomView(rec *domain.MatchRecord) *api.RoomView {
	if rec == nil {
		return nil
	}

	view := &api.RoomView{
		ID:     rec.ID,
		Code:   rec.Code,
		Status: rec.Status.String(),
		Goal:   rec.Goal,
		HostID: rec.HostID(),
	}

	for _, p := range rec.Players {
		view.Players = append(view.Players, api.PlayerView{
			ID:        p.ID,
			Name:      p.Name,
			AvatarURL: p.AvatarURL,
			Character: p.Character,
			Floor:     p.Floor,
			Facing:    p.Facing.Wire(),
			Finished:  p.Finished,
		})
	}
	sort.Slice(view.Players, func(i, j int) bool {
		a, b := rec.Players[view.Players[i].ID], rec.Players[view.Players[j].ID]
		if a.JoinedAt != b.JoinedAt {
			return a.JoinedAt < b.JoinedAt
		}
		return a.ID < b.ID
	})

	return view
}

// responseFor переводит событие координатора в исходящее сообщение.
func responseFor(playerID string, ev match.MatchEvent) api.ServerResponse {
	resp := api.ServerResponse{
		MyPlayerID: playerID,
		Room:       roomView(ev.Record),
	}

	switch ev.Type {
	case match.MatchStarted:
		resp.Type = api.MsgRaceStarted
		resp.Sequence = ev.Sequence.ToInts()
		resp.Goal = ev.Goal
	case match.MatchResolved:
		resp.Type = api.MsgRaceResolved
		resp.WinnerID = ev.WinnerID
		resp.LoserIDs = ev.LoserIDs
	case match.MatchClosed:
		resp.Type = api.MsgRoomClosed
	default:
		resp.Type = api.MsgRoomUpdate
	}

	return resp
}
