// Пакет session — контекст аутентифицированной сессии: идентичность, токен
// и кэшированный профиль. Единственная разделяемая изменяемая сущность ядра;
// все мутации идут через именованные операции, прямых записей в поля нет.
package session

import (
	"sync"
	"time"

	"github.com/Gunvolt24/wb_storefront/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// Snapshot — копия состояния сессии на момент вызова.
type Snapshot struct {
	UserID        string
	Token         string
	Name          string
	Location      *domain.Location
	Authenticated bool
}

// Context — владелец состояния сессии. Потокобезопасен.
type Context struct {
	mu       sync.RWMutex
	userID   string
	token    string
	name     string
	location *domain.Location
}

func New() *Context { return &Context{} }

// Login — вход: фиксирует идентичность, токен и имя профиля.
func (c *Context) Login(userID, token, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userID = userID
	c.token = token
	c.name = name
	c.location = nil
}

// Logout — выход: состояние сессии уничтожается целиком.
func (c *Context) Logout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userID = ""
	c.token = ""
	c.name = ""
	c.location = nil
}

// UpdateProfile — обновление имени профиля.
func (c *Context) UpdateProfile(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.name = name
}

// SetLocation — запись геопозиции профиля. Вызывается только пайплайном
// геолокации после успешного сохранения на сервере; частичные значения
// не принимаются.
func (c *Context) SetLocation(loc domain.Location) {
	if !loc.Valid() || loc.Address == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := loc
	c.location = &cp
}

// Snapshot — согласованная копия: читатели не видят промежуточных состояний.
func (c *Context) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var loc *domain.Location
	if c.location != nil {
		cp := *c.location
		loc = &cp
	}
	return Snapshot{
		UserID:        c.userID,
		Token:         c.token,
		Name:          c.name,
		Location:      loc,
		Authenticated: c.userID != "" && tokenUsable(c.token),
	}
}

// Authenticated — есть идентичность и пригодный токен.
func (c *Context) Authenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID != "" && tokenUsable(c.token)
}

func (c *Context) UserID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID
}

func (c *Context) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// tokenUsable — пустой токен непригоден; JWT с истёкшим exp непригоден.
// Подпись здесь не проверяется — сервер остаётся арбитром; клиент лишь
// избегает заведомо мёртвых запросов.
func tokenUsable(token string) bool {
	if token == "" {
		return false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		// непарсящийся токен считаем непрозрачными учётными данными
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return exp.After(time.Now())
}
