package middleware

import (
	"net/http"
	"strconv"
	"time"

	"backoffice/utils"
	"github.com/gin-gonic/gin"
)

// RateLimit ограничивает частоту запросов с одного IP
func RateLimit(limiter *utils.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Получаем IP-адрес клиента
		clientIP := c.ClientIP()

		// Проверяем лимит
		if !limiter.Allow(clientIP) {
			c.Header("Retry-After", strconv.Itoa(int(time.Until(limiter.GetResetTime(clientIP)).Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests",
				"reset": limiter.GetResetTime(clientIP),
			})
			return
		}

		// Добавляем заголовки с информацией о лимитах
		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.GetRemaining(clientIP)))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(limiter.GetResetTime(clientIP).Unix(), 10))

		c.Next()
	}
}

// Logger логирует запросы и пишет метрики
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Начало запроса
		startTime := time.Now()

		// Обработка запроса
		c.Next()

		// Время выполнения
		duration := time.Since(startTime)
		status := c.Writer.Status()
		utils.GetMetrics().RecordRequest(duration, status >= http.StatusInternalServerError)

		// Логируем информацию о запросе
		utils.LogInfo("Request: %s %s - Status: %d - Duration: %v",
			c.Request.Method,
			c.Request.URL.Path,
			status,
			duration,
		)

		// Логируем ошибки
		for _, e := range c.Errors {
			utils.LogError("Error: %v", e.Err)
		}
	}
}

// Recovery отвечает 500 на панику обработчика
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				// Логируем панику
				utils.LogError("Panic recovered: %v", err)

				// Отправляем ответ клиенту
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "internal server error",
				})
			}
		}()

		c.Next()
	}
}

// CORSMiddleware разрешает запросы с origin из конфигурации
func CORSMiddleware(origin string) gin.HandlerFunc {
	if origin == "" {
		origin = "*"
	}
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		if origin != "*" {
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Add("Vary", "Origin")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
