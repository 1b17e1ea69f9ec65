package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

var fullWidthReplacer = strings.NewReplacer("＃", "#", "＊", "*")

// NormalizeUSSDText maps full-width glyphs to ASCII, drops whitespace and keeps
// only the selections after the last '#' of a full dial string.
func NormalizeUSSDText(text string) string {
	t := fullWidthReplacer.Replace(strings.TrimSpace(text))
	t = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, t)
	if i := strings.LastIndex(t, "#"); i >= 0 {
		t = t[i+1:]
	}
	return t
}

// ParseSteps splits dialed text into the ordered list of menu selections
func ParseSteps(text string) []string {
	steps := []string{}
	for _, s := range strings.Split(NormalizeUSSDText(text), "*") {
		if s = strings.TrimSpace(s); s != "" {
			steps = append(steps, s)
		}
	}
	return steps
}

// PickField returns the first non-empty value among the given aliases
func PickField(payload map[string]string, aliases []string) string {
	for _, key := range aliases {
		if v := strings.TrimSpace(payload[key]); v != "" {
			return v
		}
	}
	return ""
}

// ParseUSSDResponse splits a "CON "/"END " prefixed reply into the
// continue flag and the message shown to the subscriber.
func ParseUSSDResponse(text string) (bool, string) {
	switch {
	case strings.HasPrefix(text, "CON "):
		return true, text[len("CON "):]
	case strings.HasPrefix(text, "END "):
		return false, text[len("END "):]
	}
	return false, text
}

// DeriveRef builds a deterministic reference from its parts so that retries of
// the same operation address the same record.
func DeriveRef(prefix string, parts ...string) string {
	h := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return prefix + "-" + strings.ToUpper(hex.EncodeToString(h[:])[:16])
}

// MaskMsisdn hides the middle digits of a phone number for logging
func MaskMsisdn(msisdn string) string {
	if len(msisdn) > 6 {
		return msisdn[:3] + "******" + msisdn[len(msisdn)-3:]
	}
	return "******"
}
