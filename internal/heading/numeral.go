package heading

import (
	"strconv"
	"strings"
)

var digitNames = []string{"零", "一", "二", "三", "四", "五", "六", "七", "八", "九"}

// ChineseNumeral renders n for heading prefixes: 一..十, 十一..十九, and
// 二十..九十九 with a zero ones digit omitted. Values outside 1..99 fall back
// to Arabic digits.
func ChineseNumeral(n int) string {
	switch {
	case n >= 1 && n <= 9:
		return digitNames[n]
	case n == 10:
		return "十"
	case n > 10 && n < 20:
		return "十" + digitNames[n-10]
	case n >= 20 && n <= 99:
		s := digitNames[n/10] + "十"
		if n%10 != 0 {
			s += digitNames[n%10]
		}
		return s
	default:
		return itoa(n)
	}
}

// ParseChineseNumeral reads a Chinese numeral up to 9999. Arabic digits are
// accepted too.
func ParseChineseNumeral(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}

	total, current := 0, 0
	seenDigit := false
	for _, r := range s {
		switch r {
		case '零', '〇':
			seenDigit = true
		case '一':
			current, seenDigit = 1, true
		case '二', '两':
			current, seenDigit = 2, true
		case '三':
			current, seenDigit = 3, true
		case '四':
			current, seenDigit = 4, true
		case '五':
			current, seenDigit = 5, true
		case '六':
			current, seenDigit = 6, true
		case '七':
			current, seenDigit = 7, true
		case '八':
			current, seenDigit = 8, true
		case '九':
			current, seenDigit = 9, true
		case '十', '百', '千':
			unit := map[rune]int{'十': 10, '百': 100, '千': 1000}[r]
			if current == 0 {
				current = 1
			}
			total += current * unit
			current = 0
			seenDigit = true
		default:
			return 0, false
		}
	}
	if !seenDigit {
		return 0, false
	}
	return total + current, true
}

func itoa(n int) string { return strconv.Itoa(n) }
