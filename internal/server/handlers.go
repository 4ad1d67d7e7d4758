package server

import (
	"encoding/json"
	"fmt"

	"github.com/ranihwanifactory/stairpang/internal/domain"
	"github.com/ranihwanifactory/stairpang/internal/engine"
	"github.com/ranihwanifactory/stairpang/pkg/api"
)

// TypedHandlerFunc - это "чистый" хендлер, который работает с готовой структурой T
type TypedHandlerFunc[T any] func(c *Client, payload T) error

// EmptyHandlerFunc - хендлер, которому НЕ нужны данные (CREATE_ROOM, LEAVE_ROOM...)
type EmptyHandlerFunc func(c *Client) error

// HandlerFunc - это контракт для любой команды клиента.
type HandlerFunc func(c *Client, raw json.RawMessage) error

// WithPayload берет "чистый" хендлер и превращает его в стандартный HandlerFunc.
// Она берет на себя Unmarshal и Validate.
func WithPayload[T any](handler TypedHandlerFunc[T]) HandlerFunc {
	return func(c *Client, raw json.RawMessage) error {
		var payload T

		if err := json.Unmarshal(raw, &payload); err != nil {
			return fmt.Errorf("invalid payload format: %w", err)
		}

		// Автоматическая валидация, если DTO реализует api.Validator
		if v, ok := any(payload).(api.Validator); ok {
			if err := v.Validate(); err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}
		}

		return handler(c, payload)
	}
}

// WithEmptyPayload - обертка для команд без данных
func WithEmptyPayload(handler EmptyHandlerFunc) HandlerFunc {
	return func(c *Client, _ json.RawMessage) error {
		return handler(c)
	}
}

// commandTable - маршрутизация действий клиента на методы Client.
// LOGIN сюда не входит: он обрабатывается отдельно как рукопожатие.
var commandTable = map[string]HandlerFunc{
	api.ActionCreateRoom: WithEmptyPayload((*Client).handleCreateRoom),
	api.ActionJoinRoom:   WithPayload((*Client).handleJoinRoom),
	api.ActionJoinCode:   WithPayload((*Client).handleJoinCode),
	api.ActionLeaveRoom:  WithEmptyPayload((*Client).handleLeaveRoom),
	api.ActionStartRace:  WithEmptyPayload((*Client).handleStartRace),
	api.ActionPosition:   WithPayload((*Client).handlePosition),
	api.ActionFinish:     WithPayload((*Client).handleFinish),
	api.ActionRematch:    WithEmptyPayload((*Client).handleRematch),
	api.ActionSelectChar: WithPayload((*Client).handleSelectChar),
}

func (c *Client) handleCreateRoom() error {
	_, err := c.Coord.CreateRoom()
	return err
}

func (c *Client) handleJoinRoom(p api.JoinRoomPayload) error {
	return c.Coord.JoinRoom(p.RoomID)
}

func (c *Client) handleJoinCode(p api.JoinCodePayload) error {
	return c.Coord.JoinByCode(p.Code)
}

func (c *Client) handleLeaveRoom() error {
	return c.Coord.LeaveRoom()
}

func (c *Client) handleStartRace() error {
	return c.Coord.StartRace()
}

func (c *Client) handlePosition(p api.PositionPayload) error {
	facing, ok := domain.ParseDirection(p.Facing)
	if !ok {
		return fmt.Errorf("unknown facing %q", p.Facing)
	}
	c.Coord.PublishPosition(p.Floor, facing)
	return nil
}

func (c *Client) handleFinish(p api.FinishPayload) error {
	result := engine.ResultLose
	if p.Result == "win" {
		result = engine.ResultWin
	}
	c.Coord.ReportFinish(result, p.Floor)
	return nil
}

func (c *Client) handleRematch() error {
	return c.Coord.Rematch()
}

func (c *Client) handleSelectChar(p api.CharacterPayload) error {
	return c.Coord.SelectCharacter(p.Character)
}
