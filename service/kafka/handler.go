package kafka

import (
	"fmt"
	"sync"
)

type MessageHandler func(topic string, key, value []byte) error

var (
	handlerMap = make(map[string]MessageHandler)
	mu         sync.RWMutex
)

func RegisterHandler(topic string, handler MessageHandler) {
	mu.Lock()
	defer mu.Unlock()
	handlerMap[topic] = handler
}

// RegisterHandlerAll 同一个处理函数挂到整组分片 topic 上
func RegisterHandlerAll(topics []string, handler MessageHandler) {
	for _, t := range topics {
		RegisterHandler(t, handler)
	}
}

func GetHandler(topic string) (MessageHandler, error) {
	mu.RLock()
	defer mu.RUnlock()
	if h, ok := handlerMap[topic]; ok {
		return h, nil
	}
	return nil, fmt.Errorf("no handler registered for topic: %s", topic)
}
