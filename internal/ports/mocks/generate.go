//go:generate mockgen -source=../storefront.go     -destination=./mock_storefront.go     -package=mocks
//go:generate mockgen -source=../geo.go            -destination=./mock_geo.go            -package=mocks
//go:generate mockgen -source=../notifier.go       -destination=./mock_notifier.go       -package=mocks
//go:generate mockgen -source=../push_transport.go -destination=./mock_push_transport.go -package=mocks
//go:generate mockgen -source=../logger.go         -destination=./mock_logger.go         -package=mocks

package mocks
