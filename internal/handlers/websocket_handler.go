package handlers

import (
	"net/http"
	"strings"
	"time"

	"ghgp/internal/services"
	"ghgp/pkg/config"
	"ghgp/pkg/jwt"
	"ghgp/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// WebSocketHandler 审核动态WebSocket处理器
type WebSocketHandler struct {
	upgrader   websocket.Upgrader
	log        *logrus.Logger
	jwtManager *jwt.JWTManager
	events     *services.EventHub
}

// NewWebSocketHandler 创建WebSocket处理器
func NewWebSocketHandler() *WebSocketHandler {
	// 获取CORS配置
	cfg := config.GetConfig()
	allowedOrigins := cfg.CORS.AllowOrigins

	return &WebSocketHandler{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")

				// 如果允许所有源
				for _, allowed := range allowedOrigins {
					if allowed == "*" {
						return true
					}
				}

				// 如果Origin为空（同源请求），允许
				if origin == "" {
					return true
				}

				for _, allowed := range allowedOrigins {
					if matchOrigin(origin, allowed) {
						return true
					}
				}

				logger.GetLogger().Warnf("WebSocket连接被拒绝，非法Origin: %s", origin)
				return false
			},
			ReadBufferSize:  1024 * 4,
			WriteBufferSize: 1024 * 4,
		},
		log:        logger.GetLogger(),
		jwtManager: jwt.GetJWTManager(), // 使用全局JWT管理器
		events:     services.GetEventHub(),
	}
}

// ReviewFeed 订阅本公司的审核动态
//
// 新记录创建、审核通过、审核驳回都会实时推送给订阅方。
func (h *WebSocketHandler) ReviewFeed(c *gin.Context) {
	// 从查询参数获取token（WebSocket不支持自定义header）
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "缺少认证token"})
		return
	}

	// 验证token
	claims, err := h.jwtManager.VerifyToken(token)
	if err != nil {
		h.log.WithError(err).Error("JWT token validation failed")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token无效或已过期"})
		return
	}

	if claims.CompanyID == 0 {
		c.JSON(http.StatusForbidden, gin.H{"error": "用户未绑定公司"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Error("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	eventCh := h.events.Subscribe(claims.CompanyID)
	defer h.events.Unsubscribe(claims.CompanyID, eventCh)

	h.log.Infof("审核动态订阅建立: user=%s company=%d", claims.Username, claims.CompanyID)

	// 启动goroutine处理客户端消息（主要是ping/pong）
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetPongHandler(func(string) error {
			return nil
		})
		for {
			// 读取消息（主要是处理ping/pong）
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// 创建心跳ticker - 每60秒发送一次ping
	pingTicker := time.NewTicker(60 * time.Second)
	defer pingTicker.Stop()

	for {
		select {
		case <-done:
			return
		case <-pingTicker.C:
			// 发送ping消息保持连接
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.log.WithError(err).Error("Failed to send ping")
				return
			}
		case event, ok := <-eventCh:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				h.log.WithError(err).Error("Failed to push review event")
				return
			}
		}
	}
}

// matchOrigin 检查origin是否匹配allowed模式
//
// 支持 *.example.com 形式的通配符。
func matchOrigin(origin, allowed string) bool {
	// 精确匹配
	if origin == allowed {
		return true
	}

	if strings.HasPrefix(allowed, "*.") {
		domain := allowed[2:]

		// 去掉协议部分，例如 http://sub.example.com -> sub.example.com
		originHost := origin
		if idx := strings.Index(origin, "://"); idx != -1 {
			originHost = origin[idx+3:]
		}

		// 去掉端口号（如果有）
		if idx := strings.Index(originHost, ":"); idx != -1 {
			originHost = originHost[:idx]
		}

		return originHost == domain || strings.HasSuffix(originHost, "."+domain)
	}

	return false
}
