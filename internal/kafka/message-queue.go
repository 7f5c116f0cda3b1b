package kafka

import (
	"context"
	"fmt"
	"sync"

	"github.com/Shopify/sarama"
)

// MessageQueue of kafka.
type MessageQueue struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	client   sarama.Client
	producer sarama.SyncProducer
	consumer sarama.Consumer
	handler  map[string]handler
}

// NewMessageQueue ...
func NewMessageQueue(
	addrs []string,
) (mq *MessageQueue, err error) {
	mq = &MessageQueue{
		handler: make(map[string]handler),
	}
	mq.ctx, mq.cancel = context.WithCancel(context.Background())

	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	// merged documents are large
	cfg.Producer.MaxMessageBytes = 64 << 20
	if mq.client, err = sarama.NewClient(addrs, cfg); err != nil {
		return
	}
	if mq.producer, err = sarama.NewSyncProducerFromClient(mq.client); err != nil {
		return
	}

	mq.consumer, err = sarama.NewConsumerFromClient(mq.client)
	return
}

// Consume adds consume topic. Only messages published after the start are
// consumed: a request replayed after restart would spend passwords again.
func (mq *MessageQueue) Consume(topic string, h Handler) error {
	if _, isExist := mq.handler[topic]; isExist {
		return fmt.Errorf("%w: %s", errTopicIsExist, topic)
	}

	cp, err := mq.consumer.ConsumePartition(topic, 0, sarama.OffsetNewest)
	if err != nil {
		return err
	}
	mq.handler[topic] = handler{
		partitionConsumer: cp,
		handler:           h,
	}
	return nil
}

// NewPublish returns publish func.
func (mq *MessageQueue) NewPublish(topic string) Publish {
	return func(message []byte) (err error) {
		msg := &sarama.ProducerMessage{
			Topic: topic,
			Value: sarama.ByteEncoder(message),
		}
		_, _, err = mq.producer.SendMessage(msg)
		return
	}
}

// ListenAndServe message queue. Messages of one topic are handled one by one.
func (mq *MessageQueue) ListenAndServe() {
	for _, topic := range mq.handler {
		mq.wg.Add(1)
		go mq.runtime(topic)
	}
}

// Shutdown consumers message queue, waits for handlers in progress.
func (mq *MessageQueue) Shutdown() {
	mq.cancel()
	mq.wg.Wait()
	mq.consumer.Close()
	mq.producer.Close()
	mq.client.Close()
}

func (mq *MessageQueue) runtime(topic handler) {
	defer mq.wg.Done()
	defer topic.partitionConsumer.Close()
	for {
		select {
		case <-mq.ctx.Done():
			return
		case m, ok := <-topic.partitionConsumer.Messages():
			if !ok {
				return
			}
			topic.handler(mq.ctx, m.Value)
		}
	}
}
