package orchestrator

import (
	"context"
	"sync"
)

// View — хэндл живости вьюхи-владельца слотов. Поздний результат для
// размонтированной вьюхи отбрасывается молча (это не ошибка); контекст
// вьюхи отменяется при размонтировании, так что висящая транспортная
// работа действительно прерывается, а не просто игнорируется.
type View struct {
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	alive  bool
}

func NewView() *View {
	ctx, cancel := context.WithCancel(context.Background())
	return &View{ctx: ctx, cancel: cancel, alive: true}
}

// Alive — вьюха ещё смонтирована и готова принимать коммиты.
func (v *View) Alive() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.alive
}

// Context — отменяется при Unmount; передаётся во все запросы вьюхи.
func (v *View) Context() context.Context {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.ctx
}

// Unmount — размонтирование; повторный вызов безопасен.
func (v *View) Unmount() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.alive {
		return
	}
	v.alive = false
	v.cancel()
}
