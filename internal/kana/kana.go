// Package kana holds small rune-level helpers for Japanese text shared by
// the lookup and morphology packages: katakana/hiragana conversion and
// pitch-accent mora counting.
package kana

// ToHiragana converts katakana runes to hiragana, leaving everything else
// untouched. Ported verbatim from the teacher's dictionary.ToHiragana.
func ToHiragana(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		if r >= 0x30A1 && r <= 0x30F6 {
			runes[i] = r - 0x60
		}
	}
	return string(runes)
}

// IsAllKatakana reports whether every rune in s is in the katakana block
// (empty strings are not considered all-katakana).
func IsAllKatakana(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < 0x30A0 || r > 0x30FF {
			return false
		}
	}
	return true
}

// smallKana excludes the three small kana ゃ/ゅ/ょ from mora counts. The
// canonical set is exactly these three distinct runes.
var smallKana = map[rune]bool{
	'ゃ': true,
	'ゅ': true,
	'ょ': true,
}

// CountMora counts the mora in a hiragana reading, excluding small-kana
// carriers (ゃ, ゅ, ょ) which combine with the preceding mora rather than
// forming their own.
func CountMora(reading string) int {
	count := 0
	for _, r := range reading {
		if smallKana[r] {
			continue
		}
		count++
	}
	return count
}
