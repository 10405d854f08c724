// Пакет app — сборка ядра витрины: сессия, шлюз REST, кэш заказов,
// оркестратор выборок, геопайплайн, живой канал заказов и мутатор корзины.
package app

import (
	"context"
	"sync"

	"github.com/Gunvolt24/wb_storefront/config"
	"github.com/Gunvolt24/wb_storefront/internal/bus"
	"github.com/Gunvolt24/wb_storefront/internal/cart"
	"github.com/Gunvolt24/wb_storefront/internal/channel"
	"github.com/Gunvolt24/wb_storefront/internal/channel/ws"
	"github.com/Gunvolt24/wb_storefront/internal/gateway"
	"github.com/Gunvolt24/wb_storefront/internal/geo"
	"github.com/Gunvolt24/wb_storefront/internal/location"
	"github.com/Gunvolt24/wb_storefront/internal/orchestrator"
	"github.com/Gunvolt24/wb_storefront/internal/ports"
	"github.com/Gunvolt24/wb_storefront/internal/session"
	"github.com/Gunvolt24/wb_storefront/internal/store/memory"
	"github.com/Gunvolt24/wb_storefront/pkg/httpx"
	"github.com/Gunvolt24/wb_storefront/pkg/logger"
	"github.com/Gunvolt24/wb_storefront/pkg/metrics"
	"github.com/Gunvolt24/wb_storefront/pkg/notify"
	"github.com/Gunvolt24/wb_storefront/pkg/telemetry"
)

// App — собранное ядро и его подсистемы.
type App struct {
	Logger        ports.Logger
	Session       *session.Context
	Events        *bus.Bus
	Orders        *memory.OrderStore
	Orchestrator  *orchestrator.Orchestrator
	Pipeline      *location.Pipeline
	Channel       *channel.Subscription
	Cart          *cart.Mutator
	Notifications *notify.Feed

	fetch config.Fetch

	mu    sync.Mutex
	slots *orchestrator.Slots // слоты активной вьюхи (nil между маунтами)
}

// Cleanup — функция освобождения ресурсов.
type Cleanup func()

// Bootstrap — собирает зависимости и возвращает приложение, функцию очистки
// и ошибку.
func Bootstrap(ctx context.Context, cfg *config.Config) (*App, Cleanup, error) {
	logg, cleanupLogger, err := logger.NewZapLogger(cfg.Logger.IsProd)
	if err != nil {
		return nil, func() {}, err
	}

	metrics.MustRegister()

	// Трейсинг OTEL (при включённой конфигурации); по умолчанию — no-op.
	shutdownTrace := func(context.Context) error { return nil }
	if cfg.Tracing.Enabled {
		setup, tErr := telemetry.SetupTracing(ctx, cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
		if tErr != nil {
			logg.Warnf(ctx, "failed to setup tracing: %v", tErr)
		} else {
			logg.Infof(ctx, "otel tracing enabled service=%s endpoint=%s sample=%.2f",
				cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
			shutdownTrace = setup
		}
	}

	sess := session.New()
	events := bus.New()

	api, err := gateway.New(cfg.API.BaseURL, cfg.API.Timeout, sess, logg)
	if err != nil {
		cleanup(ctx, logg, cleanupLogger, shutdownTrace)
		return nil, func() {}, err
	}

	// Уведомления: лента для оболочки + дублирование в лог.
	feed := notify.NewFeed(100)
	notifier := notify.NewTee(feed, notify.NewLogNotifier(logg))

	orders := memory.NewOrderStore()
	orch := orchestrator.New(api, orders, notifier, logg, events)

	locator, err := geo.NewLocator(cfg.Geo.PositionURL, logg)
	if err != nil {
		cleanup(ctx, logg, cleanupLogger, shutdownTrace)
		return nil, func() {}, err
	}
	geocoder, err := geo.NewGeocoder(cfg.Geo.GeocodeURL)
	if err != nil {
		cleanup(ctx, logg, cleanupLogger, shutdownTrace)
		return nil, func() {}, err
	}

	pipeline := location.New(locator, geocoder, api, sess, events, logg, location.Config{
		Timeout:      cfg.Geo.Timeout,
		MaxCacheAge:  cfg.Geo.MaxCacheAge,
		HighAccuracy: cfg.Geo.HighAccuracy,
		SettleDelay:  cfg.Fetch.SettleDelay,
	})

	transport := ws.New(cfg.Push.URL, cfg.Push.HandshakeTimeout, logg)
	mutator := cart.New(api, sess, notifier, logg)

	app := &App{
		fetch:         cfg.Fetch,
		Logger:        logg,
		Session:       sess,
		Events:        events,
		Orders:        orders,
		Orchestrator:  orch,
		Pipeline:      pipeline,
		Cart:          mutator,
		Notifications: feed,
	}

	// Канал заказов сверяет кэш полным перечитыванием после каждого события;
	// перечитывание идёт через слоты активной вьюхи.
	app.Channel = channel.New(transport, orders, notifier, logg, func(ctx context.Context) {
		app.refetchOrders(ctx)
	})

	cleanupAll := func() {
		if err := app.Channel.Close(); err != nil {
			logg.Warnf(ctx, "order channel close: %v", err)
		}
		cleanup(ctx, logg, cleanupLogger, shutdownTrace)
	}
	return app, cleanupAll, nil
}

func cleanup(ctx context.Context, logg ports.Logger, cleanupLogger func() error, shutdownTrace func(context.Context) error) {
	if terr := shutdownTrace(context.Background()); terr != nil {
		logg.Warnf(ctx, "shutdown tracing: %v", terr)
	}
	if cerr := cleanupLogger(); cerr != nil {
		logg.Warnf(ctx, "cleanup logger: %v", cerr)
	}
}

func (a *App) refetchOrders(_ context.Context) {
	a.mu.Lock()
	s := a.slots
	a.mu.Unlock()
	if s == nil || !s.View().Alive() {
		return
	}
	a.Orchestrator.FetchOrders(s)
}

// Run — жизненный цикл одной вьюхи: маунт, стартовый пакет выборок,
// авто-определение позиции, подписка на канал заказов (для залогиненного
// пользователя), ожидание отмены контекста и разбор в обратном порядке.
func (a *App) Run(ctx context.Context) error {
	view := orchestrator.NewView()
	slots := a.Orchestrator.NewSlots(view)

	a.mu.Lock()
	a.slots = slots
	a.mu.Unlock()

	snap := a.Session.Snapshot()
	a.Orchestrator.LoadBundle(slots, a.defaultCatalogQuery(), snap.Location)
	a.Pipeline.ArmAutoDetect(view.Context())

	if snap.Authenticated {
		if err := a.Channel.Subscribe(ctx, snap.UserID); err != nil {
			a.Logger.Warnf(ctx, "order channel subscribe: %v", err)
		}
	}

	<-ctx.Done()
	a.Logger.Infof(ctx, "shutdown requested")

	if err := a.Channel.Close(); err != nil {
		a.Logger.Warnf(ctx, "order channel close: %v", err)
	}
	slots.Close()
	view.Unmount()

	a.mu.Lock()
	a.slots = nil
	a.mu.Unlock()

	return nil
}

func (a *App) defaultCatalogQuery() ports.CatalogQuery {
	limit := httpx.ClampInt(a.fetch.DefaultLimit, 1, a.fetch.MaxLimit)
	return ports.CatalogQuery{Page: 1, Limit: limit, SortBy: "newest"}
}
