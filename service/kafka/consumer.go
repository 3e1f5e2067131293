package kafka

import (
	"context"

	"github.com/Shopify/sarama"

	"LSProject/logger"
)

type ConsumerGroupHandler struct{}

func (h *ConsumerGroupHandler) Setup(sarama.ConsumerGroupSession) error {
	logger.Infof("[kafka] consumer group setup")
	return nil
}

func (h *ConsumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	logger.Infof("[kafka] consumer group cleanup")
	return nil
}

func (h *ConsumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		handler, err := GetHandler(msg.Topic)
		if err != nil {
			logger.Warnf("[kafka] no handler for topic %s", msg.Topic)
		} else if err := handler(msg.Topic, msg.Key, msg.Value); err != nil {
			// 处理失败仍然提交位点，坏消息不能卡住整个分区
			logger.Errorf("[kafka] handler error topic=%s offset=%d: %v", msg.Topic, msg.Offset, err)
		}
		session.MarkMessage(msg, "")
	}
	return nil
}

// StartConsumerGroup 阻塞消费，ctx 取消后退出
func StartConsumerGroup(ctx context.Context, brokers []string, groupID string, topics []string) error {
	group, err := sarama.NewConsumerGroup(brokers, groupID, BuildBaseConfig())
	if err != nil {
		return err
	}
	defer func() { _ = group.Close() }()

	go func() {
		for err := range group.Errors() {
			logger.Errorf("[kafka] consumer group error: %v", err)
		}
	}()

	handler := &ConsumerGroupHandler{}
	for {
		if err := group.Consume(ctx, topics, handler); err != nil {
			logger.Errorf("[kafka] consume error: %v", err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}
