package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"livescore-service/logger"
)

const (
	// ReconnectDelay 断线后重连前的等待
	ReconnectDelay = 5 * time.Second

	// JoinEndpoint 裁判房间加入握手的虚拟路由
	JoinEndpoint = "/pertandingan/joinRoomWasit"
)

// 连接状态,/status 端点原样上报
const (
	ConnStatusConnected    = "connected"
	ConnStatusDisconnected = "disconnected"
	ConnStatusError        = "error"
)

// EventHandler 具名广播事件的处理函数
type EventHandler func(payload interface{})

// socketFrame 与记分服务器之间的 JSON 帧。
// 广播帧带 event/data,RPC 请求带 method/url/requestId,
// 应答帧带 requestId/statusCode/body。
type socketFrame struct {
	Event      string          `json:"event,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
	Method     string          `json:"method,omitempty"`
	URL        string          `json:"url,omitempty"`
	RequestID  int64           `json:"requestId,omitempty"`
	StatusCode int             `json:"statusCode,omitempty"`
	Body       json.RawMessage `json:"body,omitempty"`
}

// SocketClient 记分服务器的 socket 客户端: 具名事件分发 +
// 请求/应答式 RPC (房间加入握手用),断线自动重连。
type SocketClient struct {
	url string

	mu            sync.RWMutex
	conn          *websocket.Conn
	handlers      map[string][]EventHandler
	pending       map[int64]chan socketFrame
	nextID        int64
	status        string
	autoReconnect bool
	onConnect     func()

	writeMu  sync.Mutex
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewSocketClient 创建 socket 客户端。host 接受 http(s) 形式的地址,
// 内部转成对应的 ws(s) 协议。
func NewSocketClient(host string) *SocketClient {
	return &SocketClient{
		url:           wsURL(host),
		handlers:      make(map[string][]EventHandler),
		pending:       make(map[int64]chan socketFrame),
		status:        ConnStatusDisconnected,
		autoReconnect: true,
		stopChan:      make(chan struct{}),
	}
}

func wsURL(host string) string {
	switch {
	case strings.HasPrefix(host, "https://"):
		host = "wss://" + strings.TrimPrefix(host, "https://")
	case strings.HasPrefix(host, "http://"):
		host = "ws://" + strings.TrimPrefix(host, "http://")
	}
	if !strings.Contains(strings.TrimPrefix(strings.TrimPrefix(host, "wss://"), "ws://"), "/") {
		host += "/ws"
	}
	return host
}

// On 注册具名广播事件的处理函数
func (c *SocketClient) On(event string, handler EventHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[event] = append(c.handlers[event], handler)
}

// SetOnConnect 注册连接建立后的回调 (重连后也会触发,用于重新加入房间)
func (c *SocketClient) SetOnConnect(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onConnect = fn
}

// Status 当前连接状态
func (c *SocketClient) Status() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// Connect 建立连接并启动读循环
func (c *SocketClient) Connect() error {
	c.mu.Lock()
	if c.conn != nil {
		c.mu.Unlock()
		return ErrAlreadyConnected
	}
	c.mu.Unlock()

	if err := c.dial(); err != nil {
		c.setStatus(ConnStatusError)
		return err
	}
	return nil
}

func (c *SocketClient) dial() error {
	conn, _, err := websocket.DefaultDialer.Dial(c.url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.url, err)
	}

	c.mu.Lock()
	c.conn = conn
	c.status = ConnStatusConnected
	onConnect := c.onConnect
	c.mu.Unlock()

	logger.Printf("[Socket] ✅ Connected to %s", c.url)

	go c.readLoop(conn)

	if onConnect != nil {
		go onConnect()
	}
	return nil
}

// Close 关闭客户端,不再重连
func (c *SocketClient) Close() {
	c.stopOnce.Do(func() { close(c.stopChan) })

	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.status = ConnStatusDisconnected
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
}

// Join 执行一次房间加入握手,实现 RoomJoiner
func (c *SocketClient) Join(lapangan string) (map[string]interface{}, int, error) {
	return c.Get(JoinEndpoint, map[string]interface{}{"lapangan": lapangan})
}

// Get 请求/应答式 RPC: 发送虚拟路由请求,阻塞等待对应 requestId 的应答。
// 调用方负责超时策略,这里只在客户端关闭时放弃等待。
func (c *SocketClient) Get(url string, data map[string]interface{}) (map[string]interface{}, int, error) {
	c.mu.Lock()
	if c.conn == nil {
		c.mu.Unlock()
		return nil, 0, ErrNotConnected
	}
	c.nextID++
	id := c.nextID
	ch := make(chan socketFrame, 1)
	c.pending[id] = ch
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	payload, err := json.Marshal(data)
	if err != nil {
		return nil, 0, err
	}
	frame := socketFrame{
		Method:    "get",
		URL:       url,
		Data:      payload,
		RequestID: id,
	}
	if err := c.writeFrame(&frame); err != nil {
		return nil, 0, err
	}

	select {
	case reply := <-ch:
		var body map[string]interface{}
		if len(reply.Body) > 0 {
			if err := json.Unmarshal(reply.Body, &body); err != nil {
				return nil, reply.StatusCode, fmt.Errorf("malformed response body: %w", err)
			}
		}
		return body, reply.StatusCode, nil
	case <-c.stopChan:
		return nil, 0, ErrNotConnected
	}
}

func (c *SocketClient) writeFrame(frame *socketFrame) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()
	if conn == nil {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return conn.WriteJSON(frame)
}

// readLoop 读取并分发帧: 带 requestId 且无 method 的是 RPC 应答,
// 带 event 的是广播
func (c *SocketClient) readLoop(conn *websocket.Conn) {
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-c.stopChan:
				return
			default:
			}

			logger.Errorf("[Socket] ❌ Read error: %v", err)
			c.setStatus(ConnStatusDisconnected)
			conn.Close()

			c.mu.Lock()
			if c.conn == conn {
				c.conn = nil
			}
			reconnect := c.autoReconnect
			c.mu.Unlock()

			if reconnect {
				go c.reconnectLoop()
			}
			return
		}

		var frame socketFrame
		if err := json.Unmarshal(message, &frame); err != nil {
			logger.Errorf("[Socket] ⚠️  Malformed frame: %v", err)
			continue
		}

		if frame.RequestID != 0 && frame.Method == "" {
			c.resolvePending(frame)
			continue
		}

		if frame.Event != "" {
			c.dispatchEvent(frame)
		}
	}
}

func (c *SocketClient) resolvePending(frame socketFrame) {
	c.mu.Lock()
	ch, ok := c.pending[frame.RequestID]
	if ok {
		delete(c.pending, frame.RequestID)
	}
	c.mu.Unlock()

	if ok {
		ch <- frame
	}
}

func (c *SocketClient) dispatchEvent(frame socketFrame) {
	var payload interface{}
	if len(frame.Data) > 0 {
		if err := json.Unmarshal(frame.Data, &payload); err != nil {
			logger.Errorf("[Socket] ⚠️  Malformed event data (%s): %v", frame.Event, err)
			return
		}
	}

	c.mu.RLock()
	handlers := append([]EventHandler(nil), c.handlers[frame.Event]...)
	c.mu.RUnlock()

	for _, h := range handlers {
		h(payload)
	}
}

// reconnectLoop 固定间隔重连,成功后由 onConnect 回调重新加入房间
func (c *SocketClient) reconnectLoop() {
	for {
		select {
		case <-c.stopChan:
			return
		case <-time.After(ReconnectDelay):
		}

		logger.Printf("[Socket] 🔄 Reconnecting to %s...", c.url)
		if err := c.dial(); err != nil {
			logger.Errorf("[Socket] ❌ Reconnect failed: %v", err)
			continue
		}
		logger.Printf("[Socket] 🔄 Reconnected!")
		return
	}
}

func (c *SocketClient) setStatus(status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = status
}
