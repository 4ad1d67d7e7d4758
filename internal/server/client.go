package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gorilla/websocket"

	"github.com/ranihwanifactory/stairpang/internal/match"
	"github.com/ranihwanifactory/stairpang/pkg/api"
	"github.com/ranihwanifactory/stairpang/pkg/logger"
)

// Настройки WebSocket
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client - посредник между Websocket и координатором матча
type Client struct {
	Svc      *Service
	Conn     *websocket.Conn
	Send     chan api.ServerResponse
	PlayerID string
	Coord    *match.Coordinator

	done chan struct{}
}

func NewClient(svc *Service, conn *websocket.Conn) *Client {
	return &Client{
		Svc:  svc,
		Conn: conn,
		Send: make(chan api.ServerResponse, 256),
		done: make(chan struct{}),
	}
}

// readPump читает команды от клиента
func (c *Client) readPump() {
	defer func() {
		close(c.done)
		if c.PlayerID != "" {
			c.Svc.Hub.Unregister(c.PlayerID)
			// Обрыв соединения равен выходу из комнаты: призрак
			// отключившегося не должен держать матч
			if err := c.Coord.LeaveRoom(); err != nil {
				logger.Log.WithField("player_id", c.PlayerID).WithError(err).Debug("leave on disconnect")
			}
			logger.Log.WithField("player_id", c.PlayerID).Info("Client disconnected")
		}
		if err := c.Conn.Close(); err != nil {
			logger.Log.WithError(err).Warn("failed to close websocket connection")
		}
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logger.Log.WithError(err).Warn("failed to set read deadline")
	}
	c.Conn.SetPongHandler(func(string) error {
		if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			logger.Log.WithError(err).Warn("failed to set pong read deadline")
		}
		return nil
	})

	// 1. HANDSHAKE (LOGIN)
	if !c.login() {
		return
	}

	// 2. ПОДПИСКА НА ОБНОВЛЕНИЯ
	updates := c.Svc.Hub.Register(c.PlayerID)
	go func() {
		for msg := range updates {
			c.Send <- msg
		}
		close(c.Send)
	}()

	// События координатора пересылаются в хаб от имени игрока
	go c.pumpMatchEvents()

	c.Svc.Hub.SendTo(c.PlayerID, api.ServerResponse{
		Type:       api.MsgWelcome,
		MyPlayerID: c.PlayerID,
	})

	// 3. ЦИКЛ ЧТЕНИЯ КОМАНД
	for {
		var cmd api.ClientCommand
		err := c.Conn.ReadJSON(&cmd)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Errorf("WS Error: %v", err)
			}
			break
		}
		c.dispatch(cmd)
	}
}

// login обрабатывает первое сообщение сессии и строит координатор.
func (c *Client) login() bool {
	var loginCmd api.ClientCommand
	if err := c.Conn.ReadJSON(&loginCmd); err != nil {
		logger.Log.Warn("Handshake failed")
		return false
	}
	if loginCmd.Action != api.ActionLogin {
		logger.Log.Warnf("Expected LOGIN, got %s", loginCmd.Action)
		return false
	}

	var payload api.LoginPayload
	if err := json.Unmarshal(loginCmd.Payload, &payload); err != nil {
		logger.Log.WithError(err).Warn("Malformed login payload")
		return false
	}
	if err := payload.Validate(); err != nil {
		logger.Log.WithError(err).Warn("Login rejected")
		return false
	}

	// Токен - это постоянный ID игрока: по нему между сессиями живут
	// счетчики побед. Пустой токен означает нового игрока.
	prof := c.Svc.Profiles.GetOrCreate(loginCmd.Token, payload.Name)
	if payload.AvatarURL != "" && payload.AvatarURL != prof.AvatarURL {
		prof.AvatarURL = payload.AvatarURL
		if err := c.Svc.Profiles.Put(prof); err != nil {
			logger.Log.WithError(err).Warn("failed to store avatar")
		}
	}

	c.PlayerID = prof.ID
	c.Coord = match.NewCoordinator(c.Svc.Store, c.Svc.Profiles, prof, c.Svc.Cfg)

	logger.Log.WithFields(logrus.Fields{
		"player_id": c.PlayerID,
		"name":      prof.Name,
	}).Info("Client logged in")
	return true
}

// pumpMatchEvents пересылает события координатора в личный канал игрока.
func (c *Client) pumpMatchEvents() {
	for {
		select {
		case ev := <-c.Coord.Events:
			c.Svc.Hub.SendTo(c.PlayerID, responseFor(c.PlayerID, ev))
		case <-c.done:
			return
		}
	}
}

// dispatch направляет команду в таблицу хендлеров.
func (c *Client) dispatch(cmd api.ClientCommand) {
	handler, ok := commandTable[cmd.Action]
	if !ok {
		c.sendError("unknown action: " + cmd.Action)
		return
	}

	if err := handler(c, cmd.Payload); err != nil {
		logger.Log.WithFields(logrus.Fields{
			"player_id": c.PlayerID,
			"action":    cmd.Action,
		}).WithError(err).Debug("command rejected")
		c.sendError(err.Error())
	}
}

func (c *Client) sendError(text string) {
	c.Svc.Hub.SendTo(c.PlayerID, api.ServerResponse{
		Type:       api.MsgError,
		MyPlayerID: c.PlayerID,
		Error:      text,
	})
}

// writePump отправляет данные клиенту + Ping
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := c.Conn.Close(); err != nil {
			logger.Log.WithError(err).Warn("failed to close websocket connection in writePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.Send:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logger.Log.WithError(err).Warn("failed to set write deadline")
			}
			if !ok {
				if err := c.Conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					logger.Log.WithError(err).Debug("write close message failed")
				}
				return
			}
			if err := c.Conn.WriteJSON(message); err != nil {
				logger.Log.WithError(err).Debug("write json message failed")
				return
			}

		case <-ticker.C:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logger.Log.WithError(err).Warn("failed to set ping write deadline")
			}
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Log.WithError(err).Debug("ping failed")
				return
			}
		}
	}
}
