package messaging

import "github.com/segmentio/kafka-go"

// MessageCarrier maps trace propagation headers onto Kafka message
// headers, so a consumer can continue the producing request's trace.
type MessageCarrier struct {
	msg *kafka.Message
}

func NewMessageCarrier(msg *kafka.Message) *MessageCarrier {
	return &MessageCarrier{msg: msg}
}

func (c *MessageCarrier) Get(key string) string {
	for _, header := range c.msg.Headers {
		if header.Key == key {
			return string(header.Value)
		}
	}
	return ""
}

func (c *MessageCarrier) Set(key, value string) {
	for i := range c.msg.Headers {
		if c.msg.Headers[i].Key == key {
			c.msg.Headers[i].Value = []byte(value)
			return
		}
	}
	c.msg.Headers = append(c.msg.Headers, kafka.Header{Key: key, Value: []byte(value)})
}

func (c *MessageCarrier) Keys() []string {
	keys := make([]string, len(c.msg.Headers))
	for i, header := range c.msg.Headers {
		keys[i] = header.Key
	}
	return keys
}
