package httpx

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// ClampInt — ограничение значения v в диапазоне [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ParsePageLimit — читает page/limit из query с дефолтами и границами.
// Страницы 1-базовые; нулевая или отрицательная страница приводится к первой.
func ParsePageLimit(c *gin.Context, defaultLimit, maxLimit int) (page, limit int) {
	page = 1
	if v, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && v >= 1 {
		page = v
	}
	limit = defaultLimit
	if v, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit))); err == nil {
		limit = ClampInt(v, 1, maxLimit)
	}
	return
}

// ParseFloat — читает float из query; при отсутствии или мусоре возвращает def.
func ParseFloat(c *gin.Context, key string, def float64) float64 {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return v
}
