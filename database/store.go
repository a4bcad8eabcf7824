package database

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// Result - итог Run: идентификатор новой строки для INSERT, иначе число затронутых строк
type Result struct {
	LastInsertID int64
	RowsAffected int64
}

// Store - единый контракт сырого SQL поверх встроенной (sqlite) и сетевой (postgres) базы.
// Вызывающий код пишет плейсхолдеры в одном стиле, '?' или $1..$n, и не знает о движке.
type Store interface {
	Run(ctx context.Context, query string, args ...interface{}) (Result, error)
	Get(ctx context.Context, dest interface{}, query string, args ...interface{}) (bool, error)
	All(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

var _ Store = (*Database)(nil)

var (
	insertRe    = regexp.MustCompile(`(?is)^\s*insert\s`)
	returningRe = regexp.MustCompile(`(?is)\sreturning\s`)
)

// Run выполняет изменяющий запрос.
// Для INSERT возвращает идентификатор созданной строки (через RETURNING id на обоих движках).
func (d *Database) Run(ctx context.Context, query string, args ...interface{}) (Result, error) {
	q, a, err := Rebind(query, args)
	if err != nil {
		return Result{}, err
	}

	if insertRe.MatchString(q) {
		if !returningRe.MatchString(q) {
			q = strings.TrimRight(q, "; \t\r\n") + " RETURNING id"
		}
		var id int64
		res := d.DB.WithContext(ctx).Raw(q, a...).Scan(&id)
		if res.Error != nil {
			return Result{}, res.Error
		}
		return Result{LastInsertID: id, RowsAffected: res.RowsAffected}, nil
	}

	res := d.DB.WithContext(ctx).Exec(q, a...)
	if res.Error != nil {
		return Result{}, res.Error
	}
	return Result{RowsAffected: res.RowsAffected}, nil
}

// Get читает первую строку результата в dest.
// Отсутствие строк - не ошибка: возвращается false.
func (d *Database) Get(ctx context.Context, dest interface{}, query string, args ...interface{}) (bool, error) {
	q, a, err := Rebind(query, args)
	if err != nil {
		return false, err
	}
	res := d.DB.WithContext(ctx).Raw(q, a...).Scan(dest)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// All читает все строки в срез, на который указывает dest. Пустой результат - пустой срез, не nil.
func (d *Database) All(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("all: dest must be a pointer to a slice, got %T", dest)
	}

	q, a, err := Rebind(query, args)
	if err != nil {
		return err
	}
	if err := d.DB.WithContext(ctx).Raw(q, a...).Scan(dest).Error; err != nil {
		return err
	}
	if rv.Elem().IsNil() {
		rv.Elem().Set(reflect.MakeSlice(rv.Elem().Type(), 0, 0))
	}
	return nil
}

// WithTx возвращает копию Database, работающую внутри транзакции tx
func (d *Database) WithTx(tx *gorm.DB) *Database {
	return &Database{DB: tx, Driver: d.Driver}
}

// Transaction выполняет fn в одной транзакции: ошибка fn откатывает все изменения
func (d *Database) Transaction(ctx context.Context, fn func(tx *Database) error) error {
	return d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(d.WithTx(tx))
	})
}

// Rebind приводит плейсхолдеры $1..$n к '?' и раскладывает аргументы в порядке появления.
// Дальше gorm подставляет плейсхолдеры нужного движка. Содержимое строковых литералов не трогается.
func Rebind(query string, args []interface{}) (string, []interface{}, error) {
	if !strings.Contains(query, "$") {
		return query, args, nil
	}

	var (
		b        strings.Builder
		out      []interface{}
		numbered bool
		question bool
		quote    byte
	)
	b.Grow(len(query))

	for i := 0; i < len(query); i++ {
		c := query[i]
		if quote != 0 {
			b.WriteByte(c)
			if c == quote {
				quote = 0
			}
			continue
		}

		switch {
		case c == '\'' || c == '"':
			quote = c
			b.WriteByte(c)
		case c == '?':
			question = true
			b.WriteByte(c)
		case c == '$' && i+1 < len(query) && isDigit(query[i+1]):
			j := i + 1
			for j < len(query) && isDigit(query[j]) {
				j++
			}
			n, _ := strconv.Atoi(query[i+1 : j])
			if n < 1 || n > len(args) {
				return "", nil, fmt.Errorf("placeholder $%d out of range (%d args)", n, len(args))
			}
			out = append(out, args[n-1])
			numbered = true
			b.WriteByte('?')
			i = j - 1
		default:
			b.WriteByte(c)
		}
	}

	if !numbered {
		return query, args, nil
	}
	if question {
		return "", nil, fmt.Errorf("mixed placeholder styles in query")
	}
	return b.String(), out, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
