package database

import (
	"backoffice/models"
	"strings"

	"gorm.io/gorm"
)

// Predicate - неизменяемый набор условий, соединяемых через AND.
// Каждый метод возвращает новый Predicate, поэтому базовый фильтр можно переиспользовать.
type Predicate struct {
	conds []cond
}

type cond struct {
	sql  string
	args []interface{}
}

// Where создает пустой предикат
func Where() Predicate {
	return Predicate{}
}

// And добавляет произвольное условие с плейсхолдерами '?'
func (p Predicate) And(sql string, args ...interface{}) Predicate {
	next := make([]cond, len(p.conds), len(p.conds)+1)
	copy(next, p.conds)
	next = append(next, cond{sql: sql, args: args})
	return Predicate{conds: next}
}

// Eq добавляет column = value
func (p Predicate) Eq(column string, value interface{}) Predicate {
	return p.And(column+" = ?", value)
}

// Between ограничивает строковую дату YYYY-MM-DD; пустая граница пропускается
func (p Predicate) Between(column, from, to string) Predicate {
	if from != "" {
		p = p.And(column+" >= ?", from)
	}
	if to != "" {
		p = p.And(column+" <= ?", to)
	}
	return p
}

// OwnedBy ограничивает выборку записями, созданными пользователем. Для администратора ничего не добавляет.
func (p Predicate) OwnedBy(actor models.Actor, column string) Predicate {
	if actor.IsAdmin() {
		return p
	}
	return p.Eq(column, actor.UserID)
}

// Empty сообщает, что условий нет
func (p Predicate) Empty() bool {
	return len(p.conds) == 0
}

// SQL собирает условия в "a = ? AND b >= ?" и список аргументов
func (p Predicate) SQL() (string, []interface{}) {
	if p.Empty() {
		return "", nil
	}
	parts := make([]string, 0, len(p.conds))
	var args []interface{}
	for _, c := range p.conds {
		parts = append(parts, "("+c.sql+")")
		args = append(args, c.args...)
	}
	return strings.Join(parts, " AND "), args
}

// Clause возвращает " WHERE ..." или пустую строку
func (p Predicate) Clause() (string, []interface{}) {
	sql, args := p.SQL()
	if sql == "" {
		return "", nil
	}
	return " WHERE " + sql, args
}

// Scope применяет предикат к запросу gorm: db.Scopes(p.Scope)
func (p Predicate) Scope(db *gorm.DB) *gorm.DB {
	sql, args := p.SQL()
	if sql == "" {
		return db
	}
	return db.Where(sql, args...)
}
