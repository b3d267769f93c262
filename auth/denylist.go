package auth

import "strings"

// commonPasswords is a small built-in denylist of the passwords seen most
// often in public breach corpora. The check runs entirely offline.
var commonPasswords = map[string]struct{}{
	"123456":     {},
	"password":   {},
	"123456789":  {},
	"12345678":   {},
	"12345":      {},
	"1234567":    {},
	"qwerty":     {},
	"qwerty123":  {},
	"abc123":     {},
	"football":   {},
	"monkey":     {},
	"letmein":    {},
	"111111":     {},
	"000000":     {},
	"dragon":     {},
	"baseball":   {},
	"iloveyou":   {},
	"trustno1":   {},
	"sunshine":   {},
	"master":     {},
	"welcome":    {},
	"shadow":     {},
	"michael":    {},
	"ninja":      {},
	"mustang":    {},
	"princess":   {},
	"starwars":   {},
	"admin":      {},
	"login":      {},
	"password1":  {},
	"passw0rd":   {},
	"zaq12wsx":   {},
	"hunter2":    {},
	"1q2w3e4r":   {},
	"qwertyuiop": {},
}

// IsCommonPassword reports whether pw appears in the built-in denylist.
// The comparison is case-insensitive.
func IsCommonPassword(pw string) bool {
	_, ok := commonPasswords[strings.ToLower(pw)]
	return ok
}
