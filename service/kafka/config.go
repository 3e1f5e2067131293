package kafka

import "github.com/Shopify/sarama"

// In-code 配置（不读 YAML）
type AppConfig struct {
	Brokers               []string
	GroupID               string
	TopicPattern          string // 例如 "ls.notify-%02d"
	TopicCount            int
	PartitionsPerTopic    int32 // 单机演示 8；生产 512+
	ReplicationFactor     int16 // 单机=1；生产=3
	ProducerRetries       int
	ProducerCompression   string // none/snappy/lz4/zstd
	ConsumerInitialOffset string // newest/oldest
	KafkaVersion          sarama.KafkaVersion
}

// Cfg 通知事件管道的默认配置
var Cfg = AppConfig{
	Brokers:               []string{"127.0.0.1:9092"},
	GroupID:               "ls-notify-consumer-1",
	TopicPattern:          "ls.notify-%02d",
	TopicCount:            16,
	PartitionsPerTopic:    8,
	ReplicationFactor:     1,
	ProducerRetries:       5,
	ProducerCompression:   "snappy",
	ConsumerInitialOffset: "newest",
	KafkaVersion:          sarama.V2_1_0_0,
}
