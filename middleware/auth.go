package middleware

import (
	"backoffice/models"
	"backoffice/utils"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

type LoggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
}

func (lrw *LoggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *LoggingResponseWriter) Write(b []byte) (int, error) {
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

// LoggingMiddleware логирует запросы к служебному серверу (net/http)
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Создаем обертку для ResponseWriter
		lrw := &LoggingResponseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		// Обрабатываем запрос
		next.ServeHTTP(lrw, r)

		// Логируем информацию
		utils.LogDebug(
			"Method: %s, Path: %s, Status: %d, Duration: %v, Bytes: %d",
			r.Method,
			r.URL.Path,
			lrw.statusCode,
			time.Since(start),
			lrw.size,
		)
	})
}

// TokenParser проверяет токен и возвращает пользователя
type TokenParser interface {
	ParseToken(token string) (models.Actor, error)
}

// Auth проверяет JWT токен и кладет models.Actor в контекст запроса
func Auth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Получаем токен из заголовка
		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header is required"})
			return
		}

		// Убираем префикс "Bearer " если он есть
		tokenString = strings.TrimSpace(strings.TrimPrefix(tokenString, "Bearer "))

		actor, err := parser.ParseToken(tokenString)
		if err != nil {
			utils.LogDebug("Rejected token: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// RequireRole пропускает администратора и пользователей с одной из ролей
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if !actor.IsAdmin() && !actor.HasRole(roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}
		c.Next()
	}
}

// ActorFrom получает пользователя запроса из контекста
func ActorFrom(c *gin.Context) (models.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return models.Actor{}, false
	}
	actor, ok := v.(models.Actor)
	return actor, ok
}
