package api

import (
	"encoding/json"
)

// --- СЕРВЕР -> КЛИЕНТ ---

// Типы исходящих сообщений.
const (
	MsgWelcome      = "WELCOME"
	MsgRoomUpdate   = "ROOM_UPDATE"
	MsgRaceStarted  = "RACE_STARTED"
	MsgRaceResolved = "RACE_RESOLVED"
	MsgRoomClosed   = "ROOM_CLOSED"
	MsgError        = "ERROR"
)

// ServerResponse это корневой объект, который сервер отправляет клиенту.
// Каждое сообщение несет полный "снимок" комнаты, видимой клиенту:
// клиент не обязан помнить предыдущие сообщения, чтобы отрисовать текущее.
type ServerResponse struct {
	// Type тип сообщения (MsgWelcome, MsgRoomUpdate и т.д.).
	Type string `json:"type"`

	// MyPlayerID ID игрока, которому адресовано сообщение.
	MyPlayerID string `json:"myPlayerId,omitempty"`

	// Room снимок комнаты. Отсутствует для WELCOME вне комнаты и для ERROR.
	Room *RoomView `json:"room,omitempty"`

	// Sequence трасса лестницы для начавшейся гонки.
	// Присылается только с RACE_STARTED: 0 - лево, 1 - право.
	Sequence []int `json:"sequence,omitempty"`

	// Goal целевой этаж начавшейся гонки.
	Goal int `json:"goal,omitempty"`

	// WinnerID и LoserIDs исход матча. Только для RACE_RESOLVED.
	WinnerID string   `json:"winnerId,omitempty"`
	LoserIDs []string `json:"loserIds,omitempty"`

	// Error текст ошибки. Только для ERROR.
	Error string `json:"error,omitempty"`
}

// RoomView это DTO комнаты для клиента.
type RoomView struct {
	ID     string `json:"id"`
	Code   string `json:"code"`
	Status string `json:"status"` // WAITING, RACING, RESOLVED
	Goal   int    `json:"goal"`

	// HostID производный хост комнаты: клиент показывает кнопку старта
	// только если HostID совпадает с его собственным ID.
	HostID string `json:"hostId"`

	Players []PlayerView `json:"players"`
}

// PlayerView это DTO участника комнаты.
type PlayerView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Character string `json:"character,omitempty"`

	// Floor и Facing последняя опубликованная позиция (призрак соперника).
	Floor  int    `json:"floor"`
	Facing string `json:"facing"` // left или right

	Finished bool `json:"finished"`
}

// ProfileView это DTO профиля для WELCOME и списков.
type ProfileView struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Character  string `json:"character"`
	WinCount   int    `json:"winCount"`
	TotalGames int    `json:"totalGames"`
}

// RoomSummary это DTO для списка открытых комнат (GET /rooms).
type RoomSummary struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Goal        int    `json:"goal"`
	PlayerCount int    `json:"playerCount"`
	MaxPlayers  int    `json:"maxPlayers"`
}

// --- КЛИЕНТ -> СЕРВЕР ---

// Названия действий клиента.
const (
	ActionLogin      = "LOGIN"
	ActionCreateRoom = "CREATE_ROOM"
	ActionJoinRoom   = "JOIN_ROOM"
	ActionJoinCode   = "JOIN_CODE"
	ActionLeaveRoom  = "LEAVE_ROOM"
	ActionStartRace  = "START_RACE"
	ActionPosition   = "POSITION"
	ActionFinish     = "FINISH"
	ActionRematch    = "REMATCH"
	ActionSelectChar = "SELECT_CHAR"
)

// ClientCommand это корневой объект для всех сообщений от клиента к серверу.
type ClientCommand struct {
	// Token ID игрока, от имени которого выполняется действие.
	// Обязателен только для первого сообщения "LOGIN".
	Token string `json:"token,omitempty"`

	// Action название действия.
	Action string `json:"action"`

	// Payload JSON-объект с данными. Структура зависит от Action.
	Payload json.RawMessage `json:"payload,omitempty"`
}

// --- Payloads ---

// LoginPayload используется для первого сообщения сессии.
type LoginPayload struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// JoinRoomPayload используется для входа по ID комнаты.
type JoinRoomPayload struct {
	RoomID string `json:"roomId"`
}

// JoinCodePayload используется для входа по короткому коду.
type JoinCodePayload struct {
	Code string `json:"code"`
}

// PositionPayload публикует текущую позицию в гонке.
type PositionPayload struct {
	Floor  int    `json:"floor"`
	Facing string `json:"facing"` // left или right
}

// FinishPayload докладывает итог собственной гонки.
type FinishPayload struct {
	Result string `json:"result"` // win или lose
	Floor  int    `json:"floor"`
}

// CharacterPayload выбирает персонажа.
type CharacterPayload struct {
	Character string `json:"character"`
}
