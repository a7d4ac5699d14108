package websocket

import (
	"sync"

	"tsound-server/pkg/logger"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// sendBuffer 每个连接的待发送队列长度
const sendBuffer = 256

// Client 代表一个WebSocket连接的用户
type Client struct {
	UserID    string
	SessionID string
	Conn      *websocket.Conn
	Send      chan []byte
}

// NewClient 创建带发送队列的客户端
func NewClient(userID, sessionID string, conn *websocket.Conn) *Client {
	return &Client{UserID: userID, SessionID: sessionID, Conn: conn, Send: make(chan []byte, sendBuffer)}
}

// Manager 管理所有在线用户的WebSocket连接，同一用户只保留最新的连接
type Manager struct {
	clients map[string]*Client
	lock    sync.RWMutex
}

// NewManager 创建连接管理器
func NewManager() *Manager {
	return &Manager{clients: make(map[string]*Client)}
}

// AddClient 添加新连接，替换同一用户的旧连接
func (m *Manager) AddClient(client *Client) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if old, ok := m.clients[client.UserID]; ok && old != client {
		close(old.Send)
	}
	m.clients[client.UserID] = client
}

// RemoveClient 移除连接，只有仍是当前连接时才移除
func (m *Manager) RemoveClient(client *Client) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if current, ok := m.clients[client.UserID]; ok && current == client {
		close(client.Send)
		delete(m.clients, client.UserID)
	}
}

// SendToUser 推送消息给指定用户，不在线或队列已满时丢弃
func (m *Manager) SendToUser(userID string, msg []byte) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	client, ok := m.clients[userID]
	if !ok {
		return
	}
	select {
	case client.Send <- msg:
	default:
		logger.Warn("推送队列已满，丢弃消息", zap.String("user_id", userID))
	}
}

// IsOnline 判断用户是否有活跃连接
func (m *Manager) IsOnline(userID string) bool {
	m.lock.RLock()
	defer m.lock.RUnlock()
	_, ok := m.clients[userID]
	return ok
}

// Count 当前连接数
func (m *Manager) Count() int {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return len(m.clients)
}
