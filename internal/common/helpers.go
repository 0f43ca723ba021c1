// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: плюрализация, обрезка строк, разбор пагинации.
package common

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Pluralize возвращает форму слова для числа n: one для 1 и -1, many для остальных.
//
// Примеры:
//
//	Pluralize(1, "point", "points")  → "point"
//	Pluralize(0, "point", "points")  → "points"
//	Pluralize(21, "point", "points") → "points"
func Pluralize(n int, one, many string) string {
	if int(math.Abs(float64(n))) == 1 {
		return one
	}
	return many
}

// Truncate обрезает строку до max символов (рун), добавляя "…" в конце.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:max-1])) + "…"
}

// ClampLimit разбирает limit из query-строки.
// Пусто или мусор → def, больше max → max, меньше 1 → def.
func ClampLimit(raw string, def, max int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

// ParseOffset разбирает offset; отрицательные и некорректные значения → 0.
func ParseOffset(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
