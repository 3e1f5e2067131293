package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"LSProject/global"
	"LSProject/logger"
	mid "LSProject/middleware"
	midsec "LSProject/middleware/security"
	chat "LSProject/module/chat"
	chatservice "LSProject/module/chat/service"
	chatstore "LSProject/module/chat/store"
	feed "LSProject/module/feed"
	feedservice "LSProject/module/feed/service"
	feedstore "LSProject/module/feed/store"
	notify "LSProject/module/notify"
	notifyservice "LSProject/module/notify/service"
	notifystore "LSProject/module/notify/store"
	user "LSProject/module/user"
	userservice "LSProject/module/user/service"
	userstore "LSProject/module/user/store"
	"LSProject/service/gateway"
	ka "LSProject/service/kafka"
	"LSProject/service/storage"
)

// kafkaPub 把 Kafka 生产者适配到各业务模块的 Publisher 接口
type kafkaPub struct{}

func (kafkaPub) PublishNotify(ev *ka.NotifyEvent) error      { return ka.PublishNotify(ev) }
func (kafkaPub) PublishNotifyAsync(ev *ka.NotifyEvent) error { return ka.PublishNotifyAsync(ev) }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer logger.Sync()

	if err := global.ConfigAll(ctx); err != nil {
		logger.Errorf("[boot] infra init failed: %v", err)
		return
	}
	defer global.PG.Close()
	defer func() { _ = global.Live.Close() }()

	jwtOpts := global.JwtOptions()
	auth := midsec.Middleware(midsec.DefaultOptions(jwtOpts))

	// —— 网关 ——
	hub := gateway.NewHub()
	ws := gateway.NewServer(hub, jwtOpts, global.App.GatewayNodeID)

	// —— 业务服务 ——
	userSvc := userservice.New(userstore.New(global.PG.Pool()), kafkaPub{})
	chatSvc := &chatservice.Service{
		Store:  chatstore.New(global.PG.Pool()),
		Live:   global.Live,
		Unread: storage.RedisUnread{},
		Pub:    kafkaPub{},
	}
	feedSvc := &feedservice.Service{
		Store: feedstore.New(global.PG.Pool()),
		Live:  global.Live,
		Pub:   kafkaPub{},
		Likes: storage.RedisLikeCache{},
	}
	notifySt := notifystore.New(global.Mongo.GetDB())
	if err := notifySt.EnsureIndexes(ctx); err != nil {
		logger.Warnf("[boot] notify indexes: %v", err)
	}
	notifySvc := &notifyservice.Service{
		Store:  notifySt,
		Pusher: hub,
		Live:   global.Live,
	}

	// 通知事件管道：Kafka 消费落收件箱并实时推送
	if err := global.ConfigKafka(ctx, notifySvc.HandleEvent); err != nil {
		logger.Errorf("[boot] kafka init failed: %v", err)
		return
	}

	// —— 路由 ——
	r := gin.New()
	r.Use(gin.Recovery(), mid.Origin(global.App.AllowedOrigins))
	r.GET("/ws", ws.HandleWS)

	api := r.Group("/api/v1")
	(&user.Handler{Svc: userSvc}).Register(api, auth)
	(&chat.Handler{Svc: chatSvc}).Register(api, auth)
	(&feed.Handler{Svc: feedSvc}).Register(api, auth)
	(&notify.Handler{Svc: notifySvc}).Register(api, auth)

	addr := fmt.Sprintf(":%d", global.App.Port)
	logger.Infof("[boot] listening on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Errorf("[boot] server exited: %v", err)
	}
}
