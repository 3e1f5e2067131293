package kafka

import (
	"github.com/Shopify/sarama"

	"LSProject/logger"
)

// PublishNotify 同步投递一条通知事件。
// Key=RecipientID，哈希分区保证同一收件人有序。
func PublishNotify(ev *NotifyEvent) error {
	data, err := ev.Encode()
	if err != nil {
		return err
	}
	topic := SelectTopicByUser(ev.RecipientID, GenTopics())
	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(ev.RecipientID),
		Value: sarama.ByteEncoder(data),
	}
	partition, offset, err := SyncProd.SendMessage(msg)
	if err != nil {
		return err
	}
	logger.Debugf("[kafka] notify sent topic=%s partition=%d offset=%d recipient=%s",
		topic, partition, offset, ev.RecipientID)
	return nil
}

// InitAsyncProducerFromClient 异步生产者，投递量大的场景用
func InitAsyncProducerFromClient() error {
	p, err := sarama.NewAsyncProducerFromClient(KafkaClient)
	if err != nil {
		return err
	}
	AsyncProd = p

	go func() {
		for {
			select {
			case msg := <-AsyncProd.Successes():
				logger.Debugf("[kafka] async sent topic=%s partition=%d offset=%d", msg.Topic, msg.Partition, msg.Offset)
			case err := <-AsyncProd.Errors():
				logger.Errorf("[kafka] async error: %v", err)
			}
		}
	}()
	return nil
}

// PublishNotifyAsync 异步投递，不等待 ack
func PublishNotifyAsync(ev *NotifyEvent) error {
	data, err := ev.Encode()
	if err != nil {
		return err
	}
	AsyncProd.Input() <- &sarama.ProducerMessage{
		Topic: SelectTopicByUser(ev.RecipientID, GenTopics()),
		Key:   sarama.StringEncoder(ev.RecipientID),
		Value: sarama.ByteEncoder(data),
	}
	return nil
}
