package sse

import "sync"

// простой hub для SSE: подписчики сгруппированы по id запуска

const subBuffer = 16

var (
	mu   sync.Mutex
	subs = map[string]map[chan string]struct{}{}
)

// Subscribe подписывает клиента на id, возвращает канал и функцию-unsubscribe.
// Канал закрывается хабом при Close(id).
func Subscribe(id string) (chan string, func()) {
	ch := make(chan string, subBuffer)

	mu.Lock()
	set := subs[id]
	if set == nil {
		set = map[chan string]struct{}{}
		subs[id] = set
	}
	set[ch] = struct{}{}
	mu.Unlock()

	cancel := func() {
		mu.Lock()
		defer mu.Unlock()
		if set, ok := subs[id]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(subs, id)
			}
		}
	}

	return ch, cancel
}

// Publish отсылает сообщение всем подписчикам id; если канал подписчика
// забит, сообщение для него молча отбрасывается
func Publish(id, msg string) {
	mu.Lock()
	defer mu.Unlock()

	for ch := range subs[id] {
		select {
		case ch <- msg:
		default:
		}
	}
}

// Close снимает всех подписчиков id и закрывает их каналы —
// вызывается по завершении запуска, чтобы списки не копились
func Close(id string) {
	mu.Lock()
	set := subs[id]
	delete(subs, id)
	mu.Unlock()

	for ch := range set {
		close(ch)
	}
}
