package validation

import "strings"

// commonPasswords holds frequently leaked passwords that are rejected regardless of length.
var commonPasswords = map[string]struct{}{}

func init() {
	for _, p := range strings.Fields(`
		123456 123456789 12345678 password qwerty123 qwerty1 111111 12345 secret
		123123 1234567890 1234567 000000 qwerty abc123 password1 iloveyou
		dragon monkey 123321 654321 666666 121212 letmein football baseball
		welcome welcome1 sunshine princess admin admin123 master shadow
		superman michael trustno1 batman starwars passw0rd password123
		qwertyuiop 1q2w3e4r 1q2w3e4r5t zaq12wsx asdfghjkl charlie jennifer
		computer freedom whatever killer hello123 login changeme access
		mustang 987654321 88888888 11111111 00000000 abcd1234 aa123456
	`) {
		commonPasswords[p] = struct{}{}
	}
}

func isCommonPassword(password string) bool {
	_, ok := commonPasswords[strings.ToLower(strings.TrimSpace(password))]
	return ok
}
