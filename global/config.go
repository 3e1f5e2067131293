package global

import (
	"context"

	"github.com/Shopify/sarama"

	"LSProject/data/database/mgo/mongoutil"
	"LSProject/data/database/pg/pgutil"
	"LSProject/logger"
	ka "LSProject/service/kafka"
	"LSProject/service/realtime"
	redis "LSProject/service/storage/redis"
	ids "LSProject/tools/ids"
)

var (
	PG    *pgutil.Client
	Mongo *mongoutil.Client
	Live  *realtime.Feed
)

// ConfigAll 按依赖顺序初始化全部基础设施
func ConfigAll(ctx context.Context) error {
	LoadConfig()
	ConfigIds()
	if err := ConfigRedis(); err != nil {
		return err
	}
	if err := ConfigPostgres(ctx); err != nil {
		return err
	}
	if err := ConfigMongo(ctx); err != nil {
		return err
	}
	if err := ConfigNats(); err != nil {
		return err
	}
	return nil
}

func ConfigIds() {
	ids.SetNodeID(App.NodeID)
}

func ConfigRedis() error {
	return redis.InitRedis(redis.Config{
		Addr:     App.RedisAddr,
		Password: App.RedisPass,
		DB:       App.RedisDB,
	})
}

func ConfigPostgres(ctx context.Context) error {
	client, err := pgutil.NewPostgres(ctx, &pgutil.Config{Uri: App.PgURI})
	if err != nil {
		return err
	}
	PG = client
	return nil
}

func ConfigMongo(ctx context.Context) error {
	client, err := mongoutil.NewMongoDB(ctx, &mongoutil.Config{
		Uri:      App.MongoURI,
		Database: App.MongoDB,
	})
	if err != nil {
		return err
	}
	Mongo = client
	return nil
}

func ConfigNats() error {
	feed, err := realtime.NewFeed(realtime.Config{
		Servers: App.NatsServers,
		Name:    "labscity-" + App.GatewayNodeID,
	})
	if err != nil {
		return err
	}
	Live = feed
	return nil
}

// ConfigKafka 在后台 goroutine 中启动 Kafka Client / Producer / Consumer
func ConfigKafka(ctx context.Context, handler ka.MessageHandler) error {
	ka.Cfg.Brokers = App.KafkaBrokers

	if err := ka.InitKafkaClient(); err != nil {
		return err
	}
	if err := ka.InitSyncProducerFromClient(); err != nil {
		return err
	}
	if err := ka.InitAsyncProducerFromClient(); err != nil {
		return err
	}

	topics := ka.GenTopics()

	admin, err := sarama.NewClusterAdminFromClient(ka.KafkaClient)
	if err != nil {
		return err
	}
	if err := ka.EnsureTopics(admin, topics); err != nil {
		return err
	}

	ka.RegisterHandlerAll(topics, handler)
	go func() {
		if err := ka.StartConsumerGroup(ctx, ka.Cfg.Brokers, ka.Cfg.GroupID, topics); err != nil && ctx.Err() == nil {
			logger.Errorf("[boot] kafka consumer exited: %v", err)
		}
	}()
	return nil
}
