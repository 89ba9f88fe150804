package broker

import "sync"

// Broker шина событий по топикам: ядро публикует прогресс, отчеты и
// реплики чата, web-слой прокачивает их в websocket-хаб
type Broker[T any] struct {
	mu          sync.Mutex
	topics      map[string]chan T
	maxSizeChan uint
}

func New[T any](maxCountMsgInTopic uint) *Broker[T] {
	return &Broker[T]{
		topics:      make(map[string]chan T),
		maxSizeChan: maxCountMsgInTopic,
	}
}

// Publish кладет сообщение в топик; при переполненном канале
// сообщение молча отбрасывается, публикация никогда не блокирует скан
func (b *Broker[T]) Publish(topic string, msg T) {
	ch := b.topic(topic)
	select {
	case ch <- msg:
	default:
	}
}

func (b *Broker[T]) Subscribe(topic string) chan T {
	return b.topic(topic)
}

// CloseTopic закрывает канал топика, завершая его подписчиков.
// Вызывается на остановке сервера (web.Server.Stop).
func (b *Broker[T]) CloseTopic(topic string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if v, ok := b.topics[topic]; ok {
		close(v)
	}
	delete(b.topics, topic)
}

func (b *Broker[T]) topic(name string) chan T {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.topics[name]; !ok {
		b.topics[name] = make(chan T, b.maxSizeChan)
	}
	return b.topics[name]
}
