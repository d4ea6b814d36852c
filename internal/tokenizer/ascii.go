package tokenizer

import "unicode"

var punctuationTable [256]bool

func init() {
	// ASCII punctuation and symbols:
	// [33, 47] - ! " # $ % & ' ( ) * + , - . /
	// [58, 64] - : ; < = > ? @
	// [91, 96] - [ \ ] ^ _ `
	// [123, 126] - { | } ~
	for i := 0; i < 256; i++ {
		if (i >= 33 && i <= 47) || (i >= 58 && i <= 64) || (i >= 91 && i <= 96) || (i >= 123 && i <= 126) {
			punctuationTable[i] = true
		}
	}
}

// isPunctuation checks the lookup table for ASCII and falls back to unicode classes.
func isPunctuation(r rune) bool {
	if r < 128 {
		return punctuationTable[r]
	}
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
