package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
)

// Base30 charset without the ambiguous 0, O, 1, I, L — tokens get typed and
// read aloud by users.
const charsetBase30 = "ABCDEFGHJKMNPQRSTUVWXYZ2345678"

const (
	prefix     = "PANTRY-"
	codeLength = 7
)

var planDurations = map[string]int{
	"trial":     7,
	"coffee":    15,
	"snack":     30,
	"supporter": 60,
}

var formatPattern = regexp.MustCompile(`^PANTRY-[ABCDEFGHJKMNPQRSTUVWXYZ2345678]{7}$`)

// Generate returns a plain-text access token of the form PANTRY-XXXXXXX,
// drawn from a CSPRNG.
func Generate() (string, error) {
	var buf [codeLength]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	code := make([]byte, codeLength)
	for i, b := range buf {
		code[i] = charsetBase30[int(b)%len(charsetBase30)]
	}
	return prefix + string(code), nil
}

// Hash returns the SHA-256 hex digest of a plain-text token. Only the hash
// is ever stored.
func Hash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// DurationForPlan maps a plan name to its duration in days.
func DurationForPlan(plan string) (int, error) {
	days, ok := planDurations[plan]
	if !ok {
		return 0, fmt.Errorf("unknown plan: %q (valid: %v)", plan, Plans())
	}
	return days, nil
}

// ValidFormat checks the token shape only, not its existence.
func ValidFormat(token string) bool {
	return formatPattern.MatchString(token)
}

func Plans() []string {
	out := make([]string, 0, len(planDurations))
	for plan := range planDurations {
		out = append(out, plan)
	}
	sort.Strings(out)
	return out
}
