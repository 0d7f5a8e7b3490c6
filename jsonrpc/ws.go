package jsonrpc

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-hclog"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// browsers connect from anywhere, CORS does not apply to websocket
	CheckOrigin: func(*http.Request) bool { return true },
}

// wsConn serializes the writes of concurrently handled requests
type wsConn struct {
	mu     sync.Mutex
	ws     *websocket.Conn
	logger hclog.Logger
}

func (c *wsConn) write(messageType int, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ws.WriteMessage(messageType, data); err != nil {
		c.logger.Error("unable to write ws message", "err", err)
	}
}

func isSupportedWSType(messageType int) bool {
	return messageType == websocket.TextMessage ||
		messageType == websocket.BinaryMessage
}

func (j *JSONRPC) handleWs(w http.ResponseWriter, req *http.Request) {
	ws, err := wsUpgrader.Upgrade(w, req, nil)
	if err != nil {
		j.logger.Error("unable to upgrade to a ws connection", "err", err)

		return
	}

	ws.SetReadLimit(maxRequestSize)

	conn := &wsConn{
		ws:     ws,
		logger: j.logger.With("conn", uuid.New().String()),
	}

	defer func() {
		if err := ws.Close(); err != nil {
			conn.logger.Error("unable to close ws connection", "err", err)
		}
	}()

	conn.logger.Debug("ws connection established")

	for {
		msgType, message, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
				websocket.CloseAbnormalClosure,
			) {
				conn.logger.Debug("ws connection closed")
			} else {
				conn.logger.Error("unable to read ws message", "err", err)
			}

			return
		}

		if !isSupportedWSType(msgType) {
			continue
		}

		go j.handleWsMessage(conn, msgType, message)
	}
}

func (j *JSONRPC) handleWsMessage(conn *wsConn, msgType int, message []byte) {
	defer j.metrics.RequestsCounterInc()

	resp, err := j.dispatcher.Handle(message)
	if err != nil {
		j.metrics.ErrorsCounterInc()
		conn.write(msgType, []byte(fmt.Sprintf("ws handle error: %s", err.Error())))

		return
	}

	conn.write(msgType, resp)
}
