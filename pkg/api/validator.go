package api

import "errors"

// Validator - интерфейс, который могут реализовать DTO
type Validator interface {
	Validate() error
}

func (p LoginPayload) Validate() error {
	if p.Name == "" {
		return errors.New("name is required")
	}
	if len(p.Name) > 24 {
		return errors.New("name too long")
	}
	return nil
}

func (p JoinRoomPayload) Validate() error {
	if p.RoomID == "" {
		return errors.New("roomId is required")
	}
	return nil
}

func (p JoinCodePayload) Validate() error {
	if len(p.Code) != 4 {
		return errors.New("code must be 4 characters")
	}
	return nil
}

func (p PositionPayload) Validate() error {
	if p.Floor < 0 {
		return errors.New("floor cannot be negative")
	}
	if p.Facing != "left" && p.Facing != "right" {
		return errors.New("facing must be left or right")
	}
	return nil
}

func (p FinishPayload) Validate() error {
	if p.Floor < 0 {
		return errors.New("floor cannot be negative")
	}
	if p.Result != "win" && p.Result != "lose" {
		return errors.New("result must be win or lose")
	}
	return nil
}

func (p CharacterPayload) Validate() error {
	if p.Character == "" {
		return errors.New("character is required")
	}
	return nil
}
