package services

import (
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"

	"livescore-service/logger"
)

// bridgeMessage 经由消息队列转发的具名事件
type bridgeMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// AMQPBridge 可选的第二事件来源: 从消息队列消费同样的具名事件,
// 汇入同一个分发器。对状态存储来说和 socket 广播没有区别。
type AMQPBridge struct {
	url        string
	queue      string
	dispatcher *Dispatcher

	conn    *amqp.Connection
	channel *amqp.Channel
	done    chan struct{}
}

// NewAMQPBridge 创建 AMQP 桥接
func NewAMQPBridge(url, queue string, dispatcher *Dispatcher) *AMQPBridge {
	return &AMQPBridge{
		url:        url,
		queue:      queue,
		dispatcher: dispatcher,
		done:       make(chan struct{}),
	}
}

// Start 建立连接并开始消费
func (b *AMQPBridge) Start() error {
	conn, err := amqp.Dial(b.url)
	if err != nil {
		return fmt.Errorf("failed to connect to AMQP: %w", err)
	}
	b.conn = conn

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}
	b.channel = channel

	queue, err := channel.QueueDeclare(
		b.queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	msgs, err := channel.Consume(
		queue.Name,
		"",    // consumer
		true,  // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("failed to start consumer: %w", err)
	}

	logger.Printf("[AMQP] ✅ Consuming events from queue %s", queue.Name)

	go b.handleMessages(msgs)
	return nil
}

// Stop 停止消费并关闭连接
func (b *AMQPBridge) Stop() {
	close(b.done)
	if b.channel != nil {
		b.channel.Close()
	}
	if b.conn != nil {
		b.conn.Close()
	}
}

func (b *AMQPBridge) handleMessages(msgs <-chan amqp.Delivery) {
	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				logger.Printf("[AMQP] Consumer channel closed")
				return
			}
			b.processMessage(msg)
		case <-b.done:
			return
		}
	}
}

func (b *AMQPBridge) processMessage(msg amqp.Delivery) {
	var bridged bridgeMessage
	if err := json.Unmarshal(msg.Body, &bridged); err != nil {
		logger.Errorf("[AMQP] ⚠️  Malformed message: %v", err)
		return
	}
	if bridged.Event == "" {
		logger.Errorf("[AMQP] ⚠️  Message without event name, dropped")
		return
	}

	var payload interface{}
	if len(bridged.Data) > 0 {
		if err := json.Unmarshal(bridged.Data, &payload); err != nil {
			logger.Errorf("[AMQP] ⚠️  Malformed event data (%s): %v", bridged.Event, err)
			return
		}
	}

	b.dispatcher.Dispatch(bridged.Event, payload)
}
