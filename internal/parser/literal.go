package parser

import (
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

func stripUnderscores(s string) string {
	return strings.ReplaceAll(s, "_", "")
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

// unquote снимает кавычки и раскрывает escape-последовательности,
// которые пропускает лексер; неизвестные оставляет как есть.
// Результат приводится к NFC, чтобы байтовые границы срезов не зависели
// от того, как редактор записал составные символы.
func unquote(raw string) string {
	if len(raw) < 2 {
		return raw
	}
	body := raw[1 : len(raw)-1]
	if !strings.ContainsRune(body, '\\') {
		return norm.NFC.String(body)
	}
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 >= len(body) {
			b.WriteByte(c)
			continue
		}
		i++
		switch body[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '0':
			b.WriteByte(0)
		default:
			b.WriteByte(body[i])
		}
	}
	return norm.NFC.String(b.String())
}
