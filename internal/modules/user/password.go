package user

import (
	"strings"
	"unicode"
)

const (
	minPasswordLength   = 8
	maxSimilarity       = 0.7
	minSimilarityLength = 3
)

// commonPasswords holds the most used passwords; lookups are lower-case.
var commonPasswords = map[string]struct{}{}

func init() {
	for _, p := range strings.Fields(`
		123456 password 12345678 qwerty 123456789 12345 1234 111111 1234567 dragon
		123123 baseball abc123 football monkey letmein 696969 shadow master 666666
		qwertyuiop 123321 mustang 1234567890 michael 654321 superman 1qaz2wsx 7777777
		121212 000000 qazwsx 123qwe killer trustno1 jordan jennifer zxcvbnm asdfgh
		hunter buster soccer harley batman andrew tigger sunshine iloveyou 2000
		charlie robert thomas hockey ranger daniel starwars klaster 112233 george
		computer michelle jessica pepper 1111 zxcvbn 555555 11111111 131313 freedom
		777777 pass maggie 159753 aaaaaa ginger princess joshua cheese amanda summer
		love ashley nicole chelsea biteme matthew access yankees 987654321 dallas
		austin thunder taylor matrix password1 password123 welcome admin admin123
		qwerty123 passw0rd abcd1234 changeme secret 11223344 iloveyou1
		letmein1 welcome1 monkey1 football1 baseball1 sunshine1 princess1 dragon1
	`) {
		commonPasswords[p] = struct{}{}
	}
}

// ValidatePassword returns the problems with password, or nil. attrs are user
// attributes (username, email, names) the password must not resemble.
func ValidatePassword(password string, attrs ...string) []string {
	var problems []string

	for _, attr := range attrs {
		if tooSimilar(password, attr) {
			problems = append(problems, "The password is too similar to the user's details.")
			break
		}
	}
	if len([]rune(password)) < minPasswordLength {
		problems = append(problems, "This password is too short. It must contain at least 8 characters.")
	}
	if _, ok := commonPasswords[strings.ToLower(strings.TrimSpace(password))]; ok {
		problems = append(problems, "This password is too common.")
	}
	if password != "" && strings.IndexFunc(password, func(r rune) bool { return !unicode.IsDigit(r) }) == -1 {
		problems = append(problems, "This password is entirely numeric.")
	}
	return problems
}

// tooSimilar compares password with attr and with each word of attr
// (email local part and domain split on punctuation).
func tooSimilar(password, attr string) bool {
	password = strings.ToLower(password)
	attr = strings.ToLower(strings.TrimSpace(attr))
	if len(attr) < minSimilarityLength {
		return false
	}
	parts := append([]string{attr}, strings.FieldsFunc(attr, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})...)
	for _, part := range parts {
		if len(part) < minSimilarityLength {
			continue
		}
		if similarity(password, part) >= maxSimilarity {
			return true
		}
	}
	return false
}

// similarity is 2*M/T where M is the longest common subsequence length and
// T the combined length, in [0, 1].
func similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra)+len(rb) == 0 {
		return 1
	}
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			switch {
			case ra[i-1] == rb[j-1]:
				cur[j] = prev[j-1] + 1
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
			default:
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return 2 * float64(prev[len(rb)]) / float64(len(ra)+len(rb))
}
