// Пакет location — пайплайн определения геопозиции:
// Idle -> Acquiring -> Resolving -> Persisting -> Idle.
// Ошибка на любом шаге возвращает пайплайн в Idle с классифицированной
// причиной; новый запуск во время активного игнорируется (не ставится
// в очередь) — пользователь ждёт завершения или повторяет вручную.
package location

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Gunvolt24/wb_storefront/internal/bus"
	"github.com/Gunvolt24/wb_storefront/internal/domain"
	"github.com/Gunvolt24/wb_storefront/internal/ports"
	"github.com/Gunvolt24/wb_storefront/internal/session"
	"github.com/Gunvolt24/wb_storefront/pkg/apperr"
	"github.com/Gunvolt24/wb_storefront/pkg/metrics"
)

// ErrDetectionActive — определение уже идёт; новый триггер проигнорирован.
var ErrDetectionActive = errors.New("location detection already active")

// State — фаза пайплайна.
type State int

const (
	StateIdle State = iota
	StateAcquiring
	StateResolving
	StatePersisting
)

func (s State) String() string {
	switch s {
	case StateAcquiring:
		return "acquiring"
	case StateResolving:
		return "resolving"
	case StatePersisting:
		return "persisting"
	default:
		return "idle"
	}
}

// Config — параметры запроса позиции устройства и задержка авто-запуска.
type Config struct {
	Timeout      time.Duration
	MaxCacheAge  time.Duration
	HighAccuracy bool
	SettleDelay  time.Duration
}

// Pipeline — однопоточный по существу: в любой момент активна максимум
// одна последовательность Acquiring/Resolving/Persisting.
type Pipeline struct {
	locator  ports.Geolocator
	geocoder ports.Geocoder
	api      ports.StorefrontAPI
	sess     *session.Context
	events   *bus.Bus
	log      ports.Logger
	cfg      Config

	mu      sync.Mutex
	state   State
	current *domain.Location // последняя определённая позиция, в т.ч. несинхронизированная
	lastErr error
}

func New(
	locator ports.Geolocator,
	geocoder ports.Geocoder,
	api ports.StorefrontAPI,
	sess *session.Context,
	events *bus.Bus,
	log ports.Logger,
	cfg Config,
) *Pipeline {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = 1500 * time.Millisecond
	}
	return &Pipeline{
		locator:  locator,
		geocoder: geocoder,
		api:      api,
		sess:     sess,
		events:   events,
		log:      log,
		cfg:      cfg,
	}
}

// State — текущая фаза.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Current — последняя определённая позиция (копия) и был ли результат вообще.
func (p *Pipeline) Current() (domain.Location, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return domain.Location{}, false
	}
	return *p.current, true
}

// LastError — причина последнего неуспеха (nil после успешного прогона).
func (p *Pipeline) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Detect — полный прогон пайплайна. Возвращает определённую позицию;
// Synced=false означает, что адрес показан пользователю, но в профиле
// не сохранён (повторная попытка — только по явному действию).
func (p *Pipeline) Detect(ctx context.Context) (domain.Location, error) {
	p.mu.Lock()
	if p.state != StateIdle {
		p.mu.Unlock()
		metrics.GeoDetections.WithLabelValues("ignored").Inc()
		return domain.Location{}, ErrDetectionActive
	}
	p.state = StateAcquiring
	p.mu.Unlock()

	loc, err := p.detect(ctx)

	p.mu.Lock()
	p.state = StateIdle
	p.lastErr = err
	if err == nil {
		cp := loc
		p.current = &cp
	}
	p.mu.Unlock()

	if err != nil {
		metrics.GeoDetections.WithLabelValues("error").Inc()
		return domain.Location{}, err
	}
	metrics.GeoDetections.WithLabelValues("ok").Inc()
	return loc, nil
}

func (p *Pipeline) detect(ctx context.Context) (domain.Location, error) {
	// Acquiring: ограниченное ожидание вместо бесконечного висения.
	acquireCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	lon, lat, err := p.locator.Current(acquireCtx, ports.FixOptions{
		Timeout:      p.cfg.Timeout,
		HighAccuracy: p.cfg.HighAccuracy,
		MaxCacheAge:  p.cfg.MaxCacheAge,
	})
	if err != nil {
		p.log.Warnf(ctx, "geolocation acquire failed: %v", err)
		return domain.Location{}, err
	}

	p.setState(StateResolving)

	// Resolving: пустой ответ геокодера — не ошибка, есть запасной текст.
	address, err := p.geocoder.Reverse(ctx, lat, lon)
	if err != nil {
		p.log.Warnf(ctx, "reverse geocode failed: %v", err)
		return domain.Location{}, fmt.Errorf("%w: reverse geocode: %v", apperr.ErrTransport, err)
	}
	if address == "" {
		address = domain.FormatCoordinates(lat, lon)
		metrics.GeoDetections.WithLabelValues("fallback").Inc()
	}

	loc := domain.Location{Coordinates: [2]float64{lon, lat}, Address: address}

	// Persisting: только для аутентифицированной сессии.
	if !p.sess.Authenticated() {
		// позиция разово ведёт выборку магазинов, профиль не трогаем
		p.events.Publish(bus.LocationChanged{Location: loc})
		return loc, nil
	}

	p.setState(StatePersisting)

	if err := p.api.UpdateProfileLocation(ctx, loc); err != nil {
		// адрес остаётся у пользователя, но помечен несинхронизированным;
		// автоматических повторов нет
		p.log.Warnf(ctx, "profile location persist failed: %v", err)
		loc.Synced = false
		return loc, nil
	}

	loc.Synced = true
	p.sess.SetLocation(loc)
	p.events.Publish(bus.LocationChanged{Location: loc})
	return loc, nil
}

func (p *Pipeline) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

// ArmAutoDetect — авто-запуск для свежесмонтированной вьюхи: через
// SettleDelay (чтобы не гоняться со стартовым пакетом запросов), не более
// одного раза за маунт и только если адрес ещё не известен.
func (p *Pipeline) ArmAutoDetect(ctx context.Context) {
	go func() {
		select {
		case <-ctx.Done():
			return
		case <-time.After(p.cfg.SettleDelay):
		}

		snap := p.sess.Snapshot()
		if !snap.Authenticated {
			return
		}
		if snap.Location != nil && snap.Location.Address != "" {
			return
		}

		if _, err := p.Detect(ctx); err != nil && !errors.Is(err, ErrDetectionActive) {
			p.log.Warnf(ctx, "auto detect failed: %v", err)
		}
	}()
}

// UserMessage — по одной конкретной фразе на вид геоошибки; показывается
// рядом с элементом управления (не исчезающим тостом), пока пользователь
// не повторит попытку.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, apperr.ErrGeoPermissionDenied):
		return "Доступ к геолокации запрещён — разрешите его в настройках"
	case errors.Is(err, apperr.ErrGeoUnavailable):
		return "Не удалось определить позицию устройства"
	case errors.Is(err, apperr.ErrGeoTimeout):
		return "Определение позиции заняло слишком много времени"
	case err == nil:
		return ""
	default:
		return "Не удалось определить адрес — попробуйте ещё раз"
	}
}
